package common

import (
	"fmt"

	"github.com/google/uuid"
)

// ServerError is a downstream failure (store or directory) that is reported
// to callers only through its opaque reference.
type ServerError struct {
	Ref string
	Op  string
	Err error
}

// NewServerError wraps err under a freshly generated reference.
func NewServerError(op string, err error) *ServerError {
	return &ServerError{Ref: uuid.NewString(), Op: op, Err: err}
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s (ref %s): %v", ErrorInternal, e.Op, e.Ref, e.Err)
}

func (e *ServerError) Unwrap() error { return e.Err }

// Is reports ServerError as ErrorInternal.
func (e *ServerError) Is(target error) bool {
	return target == ErrorInternal
}
