package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")

	// ErrNotFound is returned by point lookups for a (date, asset) with no
	// stored observation. A valid outcome, not a fault.
	ErrNotFound = errors.New("storage: observation not found")
)

// ConflictError reports a write that would violate source precedence: the
// incoming observation disagrees with the stored one and is not allowed to
// replace it. The stored value is preserved.
type ConflictError struct {
	Key       Key
	Existing  Observation
	Attempted Observation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("storage: conflicting write for %s: stored %s (%s), attempted %s (%s)",
		e.Key, e.Existing.Value, e.Existing.Source, e.Attempted.Value, e.Attempted.Source)
}

// DurabilityError wraps a persistence failure. Fatal to the current
// operation; the batch transaction is rolled back so readers never see a
// partially written record.
type DurabilityError struct {
	Op  string
	Err error
}

func (e *DurabilityError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *DurabilityError) Unwrap() error { return e.Err }
