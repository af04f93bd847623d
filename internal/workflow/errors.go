package workflow

import "errors"

var (
	// ErrNotFound means the referenced shipment id does not exist.
	ErrNotFound = errors.New("shipment not found")
	// ErrInvalidTransition means the operation was invoked while the
	// shipment is not in the required state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrConflict means the shipment was updated concurrently; the caller
	// may re-read and retry.
	ErrConflict = errors.New("concurrent update conflict")
)
