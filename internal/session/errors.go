package session

import "errors"

// Error kinds returned by the lifecycle manager and its stores.
// Handlers map these to HTTP statuses; callers test with errors.Is.
var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrSetNotFound     = errors.New("set not found")

	// ErrInvalidState means the session is not in_progress. Completed
	// and cancelled are terminal; no operation transitions out of them.
	ErrInvalidState = errors.New("session is not in progress")

	// ErrSetAlreadyCompleted means the set's actual values were already
	// recorded. A logged set is immutable.
	ErrSetAlreadyCompleted = errors.New("set already completed")

	// ErrValidation covers malformed input, e.g. supplying only one of
	// actual_reps/actual_weight. Wrapped with detail via fmt.Errorf.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is a lost compare-and-set race. Safe to retry.
	ErrConflict = errors.New("concurrent modification")
)
