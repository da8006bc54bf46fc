package output

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	dlerr "github.com/mrz1836/deeplink/pkg/errors"
)

// ErrorOutput represents a structured error for JSON output.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// NewErrorDetail converts an error to its structured form.
func NewErrorDetail(err error) ErrorDetail {
	var de *dlerr.DeeplinkError
	if errors.As(err, &de) {
		d := ErrorDetail{
			Code:       de.Code,
			Message:    de.Message,
			Details:    de.Details,
			Suggestion: de.Suggestion,
			ExitCode:   de.ExitCode,
		}
		if de.Cause != nil {
			d.Cause = de.Cause.Error()
		}
		return d
	}

	return ErrorDetail{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		ExitCode: dlerr.ExitGeneral,
	}
}

// FormatError formats an error for display.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}

	if format == FormatJSON {
		return WriteJSON(w, ErrorOutput{Error: NewErrorDetail(err)})
	}
	return formatErrorText(w, err)
}

// formatErrorText outputs error in text format with details sorted by key.
func formatErrorText(w io.Writer, err error) error {
	var sb strings.Builder

	var de *dlerr.DeeplinkError
	if errors.As(err, &de) {
		sb.WriteString(fmt.Sprintf("Error: %s\n", de.Message))
		if de.Cause != nil {
			sb.WriteString(fmt.Sprintf("Cause: %v\n", de.Cause))
		}

		if len(de.Details) > 0 {
			keys := make([]string, 0, len(de.Details))
			for k := range de.Details {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			sb.WriteString("\nDetails:\n")
			for _, k := range keys {
				sb.WriteString(fmt.Sprintf("  %s: %s\n", k, de.Details[k]))
			}
		}

		if de.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("\nSuggestion: %s\n", de.Suggestion))
		}
	} else {
		sb.WriteString(fmt.Sprintf("Error: %s\n", err.Error()))
	}

	_, writeErr := io.WriteString(w, sb.String())
	return writeErr
}

// FormatSuccess formats a success message.
func FormatSuccess(w io.Writer, message string, format Format) error {
	if format == FormatJSON {
		return WriteJSON(w, map[string]string{"status": "success", "message": message})
	}
	_, err := fmt.Fprintln(w, message)
	return err
}
