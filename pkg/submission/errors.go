package submission

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-dynform/pkg/model"
)

// ErrUnsupportedMethod is returned for submission methods other than POST
// and PATCH.
var ErrUnsupportedMethod = errors.New("submission: unsupported method")

// StatusError reports a non-2xx API response. Body keeps the raw response so
// callers can decode error resources.
type StatusError struct {
	Code   int
	Status string
	Method string
	URL    string
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("submission: %s %s: %s", e.Method, e.URL, e.Status)
}

// ValidationFailure is returned when the server rejected a submission with
// 422. Errors were already applied to the form; Err is the status error.
type ValidationFailure struct {
	Errors []model.ValidationError
	Err    error
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("submission: %d validation error(s): %v", len(e.Errors), e.Err)
}

func (e *ValidationFailure) Unwrap() error { return e.Err }
