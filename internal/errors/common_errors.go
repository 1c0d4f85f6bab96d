package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// ErrorType classifies why a run failed
type ErrorType string

const (
	// ErrTypeParsing marks malformed input files
	ErrTypeParsing ErrorType = "PARSING"
	// ErrTypeStorage marks failures writing outputs or talking to the result store
	ErrTypeStorage ErrorType = "STORAGE"
	// ErrTypeValidation marks records or arguments outside their allowed range
	ErrTypeValidation ErrorType = "VALIDATION"
	// ErrTypeNotFound marks missing input files and unknown countries
	ErrTypeNotFound ErrorType = "NOT_FOUND"
	// ErrTypeConfig marks unusable configuration, including unsupported years
	ErrTypeConfig ErrorType = "CONFIG"
	// ErrTypeMatching marks inconsistent manual match directives
	ErrTypeMatching ErrorType = "MATCHING"
	// ErrTypeAborted marks a run stopped because a warning was not acknowledged
	ErrTypeAborted ErrorType = "ABORTED"
)

// AppError is a classified error with optional structured context
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches key to the error and returns it for chaining
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// LogValue renders the error as a group with its type, message, cause and
// context keys in sorted order
func (e *AppError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", string(e.Type)),
		slog.String("message", e.Message),
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	for _, k := range slices.Sorted(maps.Keys(e.Context)) {
		attrs = append(attrs, slog.Any(k, e.Context[k]))
	}
	return slog.GroupValue(attrs...)
}

// NewAppError creates an error of the given type
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewNotFoundError reports that resource does not exist
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, resource+" not found", nil)
}

func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

func NewMatchingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeMatching, message, cause)
}

func NewAbortedError(message string, cause error) *AppError {
	return NewAppError(ErrTypeAborted, message, cause)
}

// TypeOf returns the type of the outermost AppError wrapped by err
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}

// IsType reports whether err wraps an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	t, ok := TypeOf(err)
	return ok && t == errType
}
