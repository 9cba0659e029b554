package export

import (
	"time"

	"salesdoc/internal/models"
)

// Status is the outcome of an export as seen by the caller
type Status string

const (
	StatusOK     Status = "ok"
	StatusBusy   Status = "busy"
	StatusFailed Status = "failed"
)

// Attempt records one strategy run
type Attempt struct {
	Strategy string        `json:"strategy"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Result is what an export hands back. On success Artifact is set; on
// failure Reason and Remedy tell the user what happened and what to do.
type Result struct {
	Status   Status           `json:"status"`
	Artifact *models.Artifact `json:"artifact,omitempty"`
	Reason   string           `json:"reason,omitempty"`
	Remedy   string           `json:"remedy,omitempty"`
	Strategy string           `json:"strategy,omitempty"`
	Degraded bool             `json:"degraded"`
	Attempts []Attempt        `json:"attempts,omitempty"`

	// Err is the terminal error for failed and busy results
	Err error `json:"-"`
}

// OK reports whether the export produced an artifact
func (r Result) OK() bool {
	return r.Status == StatusOK && r.Artifact != nil
}
