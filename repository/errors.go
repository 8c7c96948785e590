package repository

import (
	"errors"
	"fmt"
)

// ErrImageNotFound is returned by FindByName when no record matches.
var ErrImageNotFound = errors.New("image not found")

// StoreError wraps a connectivity or constraint failure from a metadata store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("metadata store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
