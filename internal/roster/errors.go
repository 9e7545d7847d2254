package roster

import (
	"errors"
	"fmt"
)

// ValidationError is a user-facing rejection of a draft. Only the three
// sentinel values below are ever returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrInvalidEmail = &ValidationError{Message: "Please enter a valid email!"}
	ErrEmailTaken   = &ValidationError{Message: "Email must be unique!"}
	ErrRequired     = &ValidationError{Message: "Name, email, and to-do are required!"}
)

// ErrNoRecord is returned for a position outside the store.
var ErrNoRecord = errors.New("no record at position")

// StorageReadError means the stored list could not be read or parsed.
// The controller recovers by starting from an empty store.
type StorageReadError struct {
	Err error
}

func (e *StorageReadError) Error() string { return fmt.Sprintf("read stored records: %v", e.Err) }
func (e *StorageReadError) Unwrap() error { return e.Err }

// StorageWriteError means a mutation was applied in memory but could not
// be persisted.
type StorageWriteError struct {
	Err error
}

func (e *StorageWriteError) Error() string { return fmt.Sprintf("write stored records: %v", e.Err) }
func (e *StorageWriteError) Unwrap() error { return e.Err }
