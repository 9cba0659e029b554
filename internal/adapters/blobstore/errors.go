package blobstore

import (
	"errors"
	"fmt"
)

// Common store error types
var (
	ErrBlobNotFound      = errors.New("blob not found")
	ErrBlobAlreadyExists = errors.New("blob already exists")
	ErrInvalidKey        = errors.New("invalid blob key")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrStoreClosed       = errors.New("store closed")
	ErrTimeout           = errors.New("operation timeout")
)

// StoreError represents a store operation error with additional context
type StoreError struct {
	Op        string // Operation that failed (e.g., "Put", "Get")
	Key       string
	Err       error
	Retryable bool
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("blobstore %s failed for key '%s': %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("blobstore %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError
func NewStoreError(op, key string, err error, retryable bool) *StoreError {
	return &StoreError{
		Op:        op,
		Key:       key,
		Err:       err,
		Retryable: retryable,
	}
}

// IsNotFound returns true if the error indicates a blob was not found
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBlobNotFound)
}

// IsRetryable returns true if the error indicates a retryable condition
func IsRetryable(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Retryable
	}

	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrTimeout)
}
