package progression

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTarget is returned for non-positive levels, levels missing from
	// the catalog and paths that do not belong to the current tier.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrNotFound is returned when a contact, path or instance does not exist.
	ErrNotFound = errors.New("not found")

	ErrRequiresCompletion = errors.New("requires completion")
	ErrPersistence        = errors.New("persistence failure")
	ErrActivePath         = errors.New("active path exists")
)

// RequiresCompletionError blocks advancing past an incomplete level.
type RequiresCompletionError struct {
	Level int
}

func (e *RequiresCompletionError) Error() string {
	return fmt.Sprintf("Complete Level %d first.", e.Level)
}

func (e *RequiresCompletionError) Is(target error) bool {
	return target == ErrRequiresCompletion
}

// PersistenceError wraps a collaborator read or write failure. Callers may
// retry the whole operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Retryable is always true; persistence failures never leave partial state.
func (e *PersistenceError) Retryable() bool { return true }

// ActivePathError is returned when starting a path while another instance is
// still active for the same contact.
type ActivePathError struct {
	InstanceID string
}

func (e *ActivePathError) Error() string {
	return fmt.Sprintf("path instance %s is still active; end or skip it first", e.InstanceID)
}

func (e *ActivePathError) Is(target error) bool {
	return target == ErrActivePath
}
