package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyFilename = errors.New("file name is empty")
	ErrEmptyName     = errors.New("image name is empty")
)

// UploadError reports which step of an upload failed.
type UploadError struct {
	Op  string
	Key string
	Err error
}

func (e *UploadError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("upload %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("upload %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// DeleteError reports which step of a delete failed.
type DeleteError struct {
	Op   string
	Name string
	Err  error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete %s %s: %v", e.Op, e.Name, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }
