package repository

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when the requested document does not exist
	// (including ids that cannot possibly exist, such as malformed ones).
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable wraps connectivity and other infrastructure failures.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate")
)

// ConstraintError is the store-side validation failure: the write reached the
// store but was rejected by a declared constraint.
type ConstraintError struct {
	Messages []string
}

func (e *ConstraintError) Error() string {
	return "constraint violation: " + strings.Join(e.Messages, ", ")
}
