package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record addressed by id does not exist.
var ErrNotFound = errors.New("feedback not found")

// StorageError wraps an I/O failure of the backing store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
