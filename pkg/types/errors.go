package types

import "errors"

// Directory operation errors. Callers match them with errors.Is; operations
// wrap them with the offending value.
var (
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrCorruptedState = errors.New("corrupted state")
	ErrForbidden      = errors.New("forbidden")
)

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrInvalidKey      = errors.New("invalid storage key")
)
