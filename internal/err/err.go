package err

import (
	"encoding/json"
	"errors"
	"strings"
)

// ConfigurationError represents errors that are a result of bad flags, combinations of
// flags, configuration settings, environment values, or other command usage issues.
type ConfigurationError struct {
	Err error
}

// ExecutionError represents errors that occur after a command has been validated and an
// unsuccessful result occurs. Platform errors, invalid credentials and partial writes
// are examples of ExecutionError.
type ExecutionError struct {
	// friendly error message to display to the user
	Msg string
	// Err is the error that occurred during execution
	Err error
	// Optional attributes that can be used to provide additional context to the error
	Attrs []any
}

func (e *ConfigurationError) Error() string {
	return e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Error() string {
	return e.Err.Error()
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// TryConvertErrorToAttrs tries to json unmarshal an error string into a slice that
// matches the slog variadic convention (alternating key value pairs).
func TryConvertErrorToAttrs(err error) []any {
	var result map[string]any
	umError := json.Unmarshal([]byte(err.Error()), &result)
	if umError != nil {
		return nil
	}
	attrs := make([]any, 0, len(result)*2)
	for k, v := range result {
		attrs = append(attrs, k, v)
	}
	return attrs
}

// ErrorsBucket groups several independent failures under one message.
type ErrorsBucket struct {
	Msg    string
	Errors []error
}

// NewErrorsBucket returns nil when errs holds no non-nil error.
func NewErrorsBucket(msg string, errs ...error) *ErrorsBucket {
	var kept []error
	for _, e := range errs {
		if e != nil {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return &ErrorsBucket{Msg: msg, Errors: kept}
}

func (e *ErrorsBucket) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Msg)
	for _, err := range e.Errors {
		sb.WriteString("\n\t")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

func (e *ErrorsBucket) Unwrap() []error {
	return e.Errors
}

// IsConfigurationError reports whether err, or anything it wraps, is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
