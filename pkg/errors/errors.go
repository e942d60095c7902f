// Package errors defines the closed error taxonomy shared by the digest engine,
// the random generator and the CLI. Every fallible operation returns one of the
// sentinels below (possibly wrapped with context); callers classify failures with
// errors.Is, which matches on the machine-readable code.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes used by the CLI.
const (
	ExitSuccess  = 0 // Successful execution
	ExitGeneral  = 1 // General/unknown error
	ExitInput    = 2 // Invalid input or misuse of the API
	ExitIO       = 3 // File or entropy source failure
	ExitNotFound = 4 // Resource not found
)

// CoreError is the structured error type returned by cryptocore.
type CoreError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for the caller
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *CoreError) Error() string {
	msg := e.Message

	// Sorted for deterministic output
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *CoreError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for CoreError.
func (e *CoreError) Is(target error) bool {
	var t *CoreError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &CoreError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	// ErrUnsupportedAlgorithm is returned for unknown digest identifiers and for
	// algorithms compiled out of the binary. No state is mutated.
	ErrUnsupportedAlgorithm = &CoreError{
		Code:     "UNSUPPORTED_ALGORITHM",
		Message:  "unsupported digest algorithm",
		ExitCode: ExitInput,
	}

	// ErrInvalidState is returned when an operation is called out of sequence,
	// e.g. Update before Start or Finish twice without a new Start.
	ErrInvalidState = &CoreError{
		Code:     "INVALID_STATE",
		Message:  "operation called in invalid state",
		ExitCode: ExitInput,
	}

	// ErrBufferTooSmall is returned when a caller-provided output buffer cannot
	// hold the result.
	ErrBufferTooSmall = &CoreError{
		Code:     "BUFFER_TOO_SMALL",
		Message:  "output buffer too small",
		ExitCode: ExitInput,
	}

	// ErrIO is returned when a file cannot be opened or read.
	ErrIO = &CoreError{
		Code:     "IO_ERROR",
		Message:  "i/o failure",
		ExitCode: ExitIO,
	}

	// ErrEntropyExhausted is returned when the entropy source cannot supply the
	// bytes required to seed or reseed a generator. The generator must be
	// recreated.
	ErrEntropyExhausted = &CoreError{
		Code:     "ENTROPY_EXHAUSTED",
		Message:  "entropy source failed",
		ExitCode: ExitIO,
	}

	// ErrDigestMismatch is returned when a computed digest differs from the
	// value the caller expected.
	ErrDigestMismatch = &CoreError{
		Code:     "DIGEST_MISMATCH",
		Message:  "digest does not match expected value",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &CoreError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &CoreError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	// Config-specific errors.
	ErrConfigNotFound = &CoreError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &CoreError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}
)

// New creates a new CoreError with the given code and message.
func New(code, message string) *CoreError {
	return &CoreError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var ce *CoreError
	if errors.As(err, &ce) {
		return &CoreError{
			Code:       ce.Code,
			Message:    fmt.Sprintf("%s: %s", msg, ce.Message),
			Details:    ce.Details,
			Suggestion: ce.Suggestion,
			Cause:      err,
			ExitCode:   ce.ExitCode,
		}
	}

	return &CoreError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithCause classifies a foreign error (typically from the os or io packages)
// under the given sentinel while keeping it reachable through errors.Is/As.
func WithCause(sentinel *CoreError, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &CoreError{
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Cause:    cause,
		ExitCode: sentinel.ExitCode,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var ce *CoreError
	if errors.As(err, &ce) {
		return &CoreError{
			Code:       ce.Code,
			Message:    ce.Message,
			Details:    details,
			Suggestion: ce.Suggestion,
			Cause:      ce.Cause,
			ExitCode:   ce.ExitCode,
		}
	}

	return &CoreError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var ce *CoreError
	if errors.As(err, &ce) {
		return &CoreError{
			Code:       ce.Code,
			Message:    ce.Message,
			Details:    ce.Details,
			Suggestion: suggestion,
			Cause:      ce.Cause,
			ExitCode:   ce.ExitCode,
		}
	}

	return &CoreError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
