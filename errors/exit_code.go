package errors

import "github.com/cockroachdb/errors"

// Process exit codes.
const (
	ExitCodeSuccess  = 0
	ExitCodeFailure  = 1
	ExitCodeUsage    = 2
	ExitCodeMismatch = 3
)

type exitCoder struct {
	cause error
	code  int
}

func (e *exitCoder) Error() string { return e.cause.Error() }

func (e *exitCoder) Cause() error { return e.cause }

func (e *exitCoder) Unwrap() error { return e.cause }

func (e *exitCoder) ExitCode() int { return e.code }

// WithExitCode attaches an exit code to err. A nil err stays nil.
func WithExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &exitCoder{cause: err, code: code}
}

// GetExitCode returns 0 for nil, the attached code if one exists, or 1.
func GetExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var ec *exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return ExitCodeFailure
}
