package booking

import "errors"

var (
	// ErrNotFound means the id did not resolve to a record the actor may
	// see. Ownership misses report the same error as true misses so a
	// patient cannot probe other patients' bookings.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the lifecycle transition is not allowed from the
	// record's current state, e.g. deleting a booking that is still active.
	ErrInvalidState = errors.New("invalid appointment state")

	// ErrValidation means the input was missing or malformed. Wrap it with
	// a caller-facing message: fmt.Errorf("%w: pick a time slot", ErrValidation).
	ErrValidation = errors.New("validation failed")
)
