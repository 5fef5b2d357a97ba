package quest

import "errors"

// ErrForbidden is returned when the acting user may not perform an operation.
var ErrForbidden = errors.New("forbidden")

// Outcome reports what a persisting operation actually did.
type Outcome int

const (
	// OutcomeSaved means the entry was written.
	OutcomeSaved Outcome = iota
	// OutcomeSkippedNoEntry means there is no backing entry to write to.
	OutcomeSkippedNoEntry
	// OutcomeSkippedNoPermission means the acting user may not update the entry.
	OutcomeSkippedNoPermission
	// OutcomeFailed accompanies a non-nil error from the store.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeSkippedNoEntry:
		return "skipped: no entry"
	case OutcomeSkippedNoPermission:
		return "skipped: no permission"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Skipped reports whether the operation was a silent no-op.
func (o Outcome) Skipped() bool {
	return o == OutcomeSkippedNoEntry || o == OutcomeSkippedNoPermission
}

// DeleteResult lists what Delete touched so callers can refresh their views.
type DeleteResult struct {
	DeletedID string
	SavedIDs  []string
}
