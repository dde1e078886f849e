package transfer

// State is the transfer workflow's position in its lifecycle.
type State int

const (
	// StateIdle: no transfer in progress; the form is closed.
	StateIdle State = iota
	// StateEditing: the form is open; no preview is pending or shown.
	StateEditing
	// StatePreviewPending: the draft is structurally valid and a debounced
	// preview fetch is scheduled or in flight.
	StatePreviewPending
	// StatePreviewReady: a preview (possibly with exchange terms) is shown.
	StatePreviewReady
	// StateSubmitting: the transfer request is in flight.
	StateSubmitting
	// StateSucceeded: the transfer went through; the workflow auto-closes
	// after the success display interval.
	StateSucceeded
	// StateFailed: submission failed; any edit re-enters Editing.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StatePreviewPending:
		return "preview-pending"
	case StatePreviewReady:
		return "preview-ready"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
