package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrJobFile         = errors.New("job description unreadable")
	ErrDocumentMissing = errors.New("document not found")
	ErrFragmentRead    = errors.New("fragment read failed")
	ErrInterrupted     = errors.New("run interrupted")
	ErrReportWrite     = errors.New("report write failed")
)

// Exit codes returned by the CLI.
const (
	ExitFailure     = 1
	ExitConfig      = 2
	ExitInterrupted = 130
)

type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: codeFor(sentinel),
	}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: codeFor(sentinel),
	}
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.ExitCode != 0 {
		return appErr.ExitCode
	}
	return codeFor(err)
}

func codeFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrJobFile), errors.Is(err, ErrDocumentMissing):
		return ExitConfig
	case errors.Is(err, ErrInterrupted):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}
