package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	walleterr "github.com/nimbuswallet/core/pkg/errors"
)

// ErrorOutput represents a structured error for JSON output.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Kind     string            `json:"kind"`
	Message  string            `json:"message"`
	Details  map[string]string `json:"details,omitempty"`
	ExitCode int               `json:"exit_code"`
}

// FormatError formats an error for display.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}

	if format == FormatJSON {
		return formatErrorJSON(w, err)
	}
	return formatErrorText(w, err)
}

// formatErrorJSON outputs error in JSON format.
func formatErrorJSON(w io.Writer, err error) error {
	var ce *walleterr.CoreError
	if errors.As(err, &ce) {
		output := ErrorOutput{
			Error: ErrorDetail{
				Kind:     string(ce.Kind),
				Message:  ce.Message,
				Details:  ce.Details,
				ExitCode: walleterr.ExitCode(err),
			},
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	output := ErrorOutput{
		Error: ErrorDetail{
			Kind:     "GENERAL_ERROR",
			Message:  err.Error(),
			ExitCode: walleterr.ExitGeneral,
		},
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// formatErrorText outputs error in text format.
func formatErrorText(w io.Writer, err error) error {
	var sb strings.Builder

	var ce *walleterr.CoreError
	if errors.As(err, &ce) {
		sb.WriteString(fmt.Sprintf("Error: %s\n", ce.Message))

		if len(ce.Details) > 0 {
			sb.WriteString("\nDetails:\n")
			for k, v := range ce.Details {
				sb.WriteString(fmt.Sprintf("  %s: %s\n", k, v))
			}
		}
	} else {
		sb.WriteString(fmt.Sprintf("Error: %s\n", err.Error()))
	}

	_, writeErr := w.Write([]byte(sb.String()))
	return writeErr
}

// FormatSuccess formats a success message.
func FormatSuccess(w io.Writer, message string, format Format) error {
	if format == FormatJSON {
		output := map[string]string{"status": "success", "message": message}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}
	_, err := fmt.Fprintln(w, message)
	return err
}
