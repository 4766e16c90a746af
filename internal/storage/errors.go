package storage

import "errors"

// Sentinel errors shared by every store backend. Implementations map their
// driver errors onto these before returning, so callers only ever match with
// errors.Is.
var (
	// ErrNotFound reports a lookup that matched no record.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey reports an insert that collided with an existing key.
	// Run artifacts are append-only; a collision means the caller replayed
	// a write, never that an update is wanted.
	ErrDuplicateKey = errors.New("duplicate key in append-only store")

	// ErrInvalidInput reports a nil record or one missing its key fields.
	ErrInvalidInput = errors.New("invalid store input")
)
