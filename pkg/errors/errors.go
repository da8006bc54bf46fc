// Package errors provides structured error handling for deeplink.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess  = 0 // Successful execution
	ExitGeneral  = 1 // General/unknown error
	ExitInput    = 2 // Invalid input
	ExitNotFound = 4 // Resource not found
	ExitConflict = 6 // Operation conflicts with in-flight work
)

// DeeplinkError is the structured error type for deeplink.
type DeeplinkError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *DeeplinkError) Error() string {
	msg := e.Message

	// Details are sorted for deterministic output
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

func (e *DeeplinkError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for DeeplinkError.
func (e *DeeplinkError) Is(target error) bool {
	var t *DeeplinkError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &DeeplinkError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &DeeplinkError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &DeeplinkError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	// Wallet-specific errors.
	ErrWalletNotFound = &DeeplinkError{
		Code:     "WALLET_NOT_FOUND",
		Message:  "wallet not found",
		ExitCode: ExitNotFound,
	}

	ErrUnsupportedAction = &DeeplinkError{
		Code:     "UNSUPPORTED_ACTION",
		Message:  "action not supported by wallet",
		ExitCode: ExitInput,
	}

	ErrWalletRejected = &DeeplinkError{
		Code:     "WALLET_REJECTED",
		Message:  "wallet reported an error",
		ExitCode: ExitGeneral,
	}

	// Dispatch-specific errors.
	ErrDispatchInFlight = &DeeplinkError{
		Code:     "DISPATCH_IN_FLIGHT",
		Message:  "a deeplink attempt is already pending for this wallet",
		ExitCode: ExitConflict,
	}

	ErrNavigationFailed = &DeeplinkError{
		Code:     "NAVIGATION_FAILED",
		Message:  "failed to navigate to target",
		ExitCode: ExitGeneral,
	}

	// Response-specific errors.
	ErrMalformedResponse = &DeeplinkError{
		Code:     "MALFORMED_RESPONSE_URL",
		Message:  "malformed response URL",
		ExitCode: ExitInput,
	}

	// Config-specific errors.
	ErrConfigNotFound = &DeeplinkError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &DeeplinkError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	// State-specific errors.
	ErrStateCorrupted = &DeeplinkError{
		Code:     "STATE_CORRUPTED",
		Message:  "connector state file is corrupted",
		ExitCode: ExitInput,
	}
)

// New creates a new DeeplinkError with the given code and message.
func New(code, message string) *DeeplinkError {
	return &DeeplinkError{
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

	var de *DeeplinkError
	if errors.As(err, &de) {
		return &DeeplinkError{
			Code:       de.Code,
			Message:    fmt.Sprintf("%s: %s", msg, de.Message),
			Details:    de.Details,
			Suggestion: de.Suggestion,
			Cause:      err,
			ExitCode:   de.ExitCode,
		}
	}

	return &DeeplinkError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var de *DeeplinkError
	if errors.As(err, &de) {
		return &DeeplinkError{
			Code:       de.Code,
			Message:    de.Message,
			Details:    details,
			Suggestion: de.Suggestion,
			Cause:      de.Cause,
			ExitCode:   de.ExitCode,
		}
	}

	return &DeeplinkError{
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

	var de *DeeplinkError
	if errors.As(err, &de) {
		return &DeeplinkError{
			Code:       de.Code,
			Message:    de.Message,
			Details:    de.Details,
			Suggestion: suggestion,
			Cause:      de.Cause,
			ExitCode:   de.ExitCode,
		}
	}

	return &DeeplinkError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// WithCause attaches an underlying cause to a sentinel error.
func WithCause(sentinel *DeeplinkError, cause error) error {
	return &DeeplinkError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Details:    sentinel.Details,
		Suggestion: sentinel.Suggestion,
		Cause:      cause,
		ExitCode:   sentinel.ExitCode,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var de *DeeplinkError
	if errors.As(err, &de) {
		return de.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var de *DeeplinkError
	if errors.As(err, &de) {
		return de.Code
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
