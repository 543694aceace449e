package service

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/rapport/internal/progression"
	"github.com/alexanderramin/rapport/internal/repository"
)

// businessErrors pass through classify unchanged.
var businessErrors = []error{
	progression.ErrNotFound,
	progression.ErrInvalidTarget,
	progression.ErrRequiresCompletion,
	progression.ErrActivePath,
	progression.ErrPersistence,
}

// classify turns anything that is not a business error into a retryable
// PersistenceError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, progression.ErrNotFound)
	}
	return &progression.PersistenceError{Op: op, Err: err}
}

func contactNotFound(contactID string) error {
	return fmt.Errorf("contact %s: %w", contactID, progression.ErrNotFound)
}
