package export

import "context"

// Decision is the user's answer to a blocked export
type Decision int

const (
	// DecisionAcknowledge accepts the failure
	DecisionAcknowledge Decision = iota
	// DecisionRetry asks for the blocked strategy to be tried once more
	DecisionRetry
)

// Prompt is shown to the user when a surface is blocked
type Prompt struct {
	DocumentID string
	Strategy   string
	Reason     string
	Remedy     string
}

// Confirmer is a blocking confirmation surface. Implementations must return
// when ctx is done.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (Decision, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface
type ConfirmerFunc func(ctx context.Context, p Prompt) (Decision, error)

// Confirm calls f
func (f ConfirmerFunc) Confirm(ctx context.Context, p Prompt) (Decision, error) {
	return f(ctx, p)
}
