package analysis

import (
	"fmt"

	"github.com/rasadhq/rasad/pkg/common"
)

// ValidationError rejects a malformed request before anything is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InvalidStateError rejects an operation the job's current status does not
// allow, for example cancelling a completed run.
type InvalidStateError struct {
	ID     int64
	Status common.AnalysisStatus
	Op     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s analysis %d in status %s", e.Op, e.ID, e.Status)
}
