package persist

import (
	"errors"
	"fmt"
)

// ErrAuthorizationDenied reports that the acting user may not modify
// the targeted content item.
var ErrAuthorizationDenied = errors.New("persist: authorization denied")

// ValidationError is returned by a field validator that rejects the
// submitted value outright instead of sanitizing it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("persist: field %q: %s", e.Field, e.Reason)
}

// UploadError records a single failed upload. The saver logs it and
// moves on to the next upload, so it surfaces in logs rather than as a
// Save return value.
type UploadError struct {
	Field string
	Index int
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("persist: upload %d for field %q: %v", e.Index, e.Field, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
