package export

import (
	"errors"
	"fmt"
)

var (
	// ErrRenderingUnavailable means the file renderer failed or produced an
	// unusable artifact. It is recovered by the print fallback.
	ErrRenderingUnavailable = errors.New("rendering unavailable")

	// ErrFallbackBlocked means the print surface could not be opened. It is
	// surfaced with a remedy.
	ErrFallbackBlocked = errors.New("print surface blocked")

	// ErrPrintSurfaceFailed means the print surface markup could not be built
	ErrPrintSurfaceFailed = errors.New("print surface could not be produced")

	// ErrArtifactStore means a rendered artifact could not be written to the
	// artifact store. Rendering itself worked.
	ErrArtifactStore = errors.New("artifact could not be stored")

	// ErrConcurrentExport is returned as a busy result while another export
	// of the same document is in flight
	ErrConcurrentExport = errors.New("export already in progress")

	// ErrShareUnsupported means the share surface cannot hand off. It is
	// recovered by returning clipboard text.
	ErrShareUnsupported = errors.New("share surface unsupported")

	// ErrShareBlocked means the share target refused the hand-off
	ErrShareBlocked = errors.New("share surface blocked")

	ErrInvalidRequest = errors.New("invalid export request")
)

// Remedies shown to the user alongside a failed export
const (
	RemedyAllowPopups = "Allow pop-ups for this app and try again"
	RemedyPrintToPDF  = "Use Print → Save as PDF instead"
	RemedyCopyText    = "Copy the text and paste it into your messaging app"
	RemedyWait        = "Wait for the current export to finish"
	RemedyFixRequest  = "Check the export options and try again"
	RemedyRetry       = "Try again; if it persists, free disk space or use another template"
)

// Error represents an export failure with the strategy that produced it and
// the action the user can take
type Error struct {
	Op       string
	Strategy string
	Err      error
	Remedy   string
}

func (e *Error) Error() string {
	if e.Strategy != "" {
		return fmt.Sprintf("export %s failed in %s strategy: %v", e.Op, e.Strategy, e.Err)
	}
	return fmt.Sprintf("export %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error
func NewError(op, strategy string, err error, remedy string) *Error {
	return &Error{Op: op, Strategy: strategy, Err: err, Remedy: remedy}
}

// RemedyFor returns the remedy attached to err, if any
func RemedyFor(err error) string {
	var exportErr *Error
	if errors.As(err, &exportErr) {
		return exportErr.Remedy
	}
	return ""
}

// IsBusy returns true if err reports a concurrent export
func IsBusy(err error) bool {
	return errors.Is(err, ErrConcurrentExport)
}

// IsBlocked returns true if err reports a blocked surface
func IsBlocked(err error) bool {
	return errors.Is(err, ErrFallbackBlocked) || errors.Is(err, ErrShareBlocked)
}

func wrap(sentinel, cause error) error {
	if cause == nil || errors.Is(cause, sentinel) {
		if cause == nil {
			return sentinel
		}
		return cause
	}
	return fmt.Errorf("%w: %v", sentinel, cause)
}
