package screening

import "fmt"

// InvalidInputError reports a candidate name the engine refuses to screen,
// such as an empty string or one that normalizes to nothing. This is the
// only error a Validate call surfaces to its caller.
type InvalidInputError struct {
	// Name is the rejected input as submitted.
	Name string

	// Message describes why the input was rejected.
	Message string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid name %q: %s", e.Name, e.Message)
}

// StorageError represents a cache store read or write failure. The engine
// recovers locally (a failed read falls through to a fresh validation, a
// failed write is logged) but the typed error keeps backends uniform.
type StorageError struct {
	// Backend is the store implementation ("sqlite", "memory").
	Backend string

	// Op is the operation that failed ("get", "put", "clear", ...).
	Op string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("cache %s: %s failed: %v", e.Backend, e.Op, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a StorageError for the given backend and operation.
func NewStorageError(backend, op string, cause error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Cause: cause}
}
