// Package errors defines the application error types for json2nest.
//
// Sentinels are created with github.com/cockroachdb/errors so they carry
// stack traces and can be decorated with user hints.
package errors

import (
	"fmt"
	"strings"

	crdb "github.com/cockroachdb/errors"
)

// Re-exports used across the module.
var (
	New  = crdb.New
	Wrap = crdb.Wrap
	Is   = crdb.Is
	As   = crdb.As
)

// TopLevelArrayMessage is reported when the document root is an array.
const TopLevelArrayMessage = "Does not handle Array, please use a valid JSON!"

// Standard application errors
var (
	ErrEmptyInput      = crdb.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = crdb.New("invalid JSON format")
	ErrMultipleJSON    = crdb.Wrap(ErrInvalidJSON, "multiple JSON values found at the root, only one is allowed")
	ErrTopLevelArray   = crdb.New(TopLevelArrayMessage)
	ErrFileNotFound    = crdb.New("file not found")
	ErrFileEmpty       = crdb.New("file is empty")
	ErrNoInput         = crdb.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath = crdb.New("invalid file path")
	ErrInvalidConfig   = crdb.New("invalid configuration")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput    ErrorType = "input"
	ErrorTypeParsing  ErrorType = "parsing"
	ErrorTypeShape    ErrorType = "shape"
	ErrorTypeAnalysis ErrorType = "analysis"
	ErrorTypeGenerate ErrorType = "generate"
	ErrorTypeFormat   ErrorType = "format"
	ErrorTypeOutput   ErrorType = "output"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeServer   ErrorType = "server"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func newAppError(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return newAppError(ErrorTypeInput, message, err)
}

// NewParsingError creates a new error related to JSON parsing.
// message is surfaced verbatim to library callers.
func NewParsingError(message string, err error) *AppError {
	return newAppError(ErrorTypeParsing, message, err)
}

// NewTopLevelArrayError reports a document whose root is an array.
func NewTopLevelArrayError() *AppError {
	return newAppError(ErrorTypeShape, TopLevelArrayMessage,
		crdb.WithHint(ErrTopLevelArray, "wrap the array in an object, e.g. {\"items\": [...]}"))
}

// NewAnalysisError creates a new error related to type analysis
func NewAnalysisError(message string, err error) *AppError {
	return newAppError(ErrorTypeAnalysis, message, err)
}

// NewGenerateError creates a new error related to code generation
func NewGenerateError(message string, err error) *AppError {
	return newAppError(ErrorTypeGenerate, message, err)
}

// NewFormatError creates a new error related to code formatting
func NewFormatError(message string, err error) *AppError {
	return newAppError(ErrorTypeFormat, message, err)
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return newAppError(ErrorTypeOutput, message, err)
}

// NewConfigError creates a new error related to configuration loading
func NewConfigError(message string, err error) *AppError {
	return newAppError(ErrorTypeConfig, message, err)
}

// NewServerError creates a new error related to the HTTP service
func NewServerError(message string, err error) *AppError {
	return newAppError(ErrorTypeServer, message, err)
}

// Message returns the message to surface to library callers: the AppError
// message when err is one, the plain error text otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if crdb.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// UserFriendlyError returns a user-friendly error message.
// Hints are read from the AppError when there is one, so they survive
// errors.Join wrapping.
func UserFriendlyError(err error) string {
	msg := userFriendlyMessage(err)
	hintSource := err
	var appErr *AppError
	if crdb.As(err, &appErr) {
		hintSource = appErr
	}
	if hints := crdb.GetAllHints(hintSource); len(hints) > 0 {
		msg += "\nHint: " + strings.Join(hints, "\nHint: ")
	}
	return msg
}

func userFriendlyMessage(err error) string {
	var appErr *AppError
	if crdb.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeShape:
			return fmt.Sprintf("Unsupported JSON: %s", appErr.Message)
		case ErrorTypeAnalysis:
			return fmt.Sprintf("Type analysis error: %s", appErr.Message)
		case ErrorTypeGenerate:
			return fmt.Sprintf("Code generation error: %s", appErr.Message)
		case ErrorTypeFormat:
			return fmt.Sprintf("Code formatting error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeServer:
			return fmt.Sprintf("Server error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	if crdb.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if crdb.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON object."
	}
	if crdb.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if crdb.Is(err, ErrTopLevelArray) {
		return "Error: " + TopLevelArrayMessage
	}
	if crdb.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if crdb.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if crdb.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."
	}
	if crdb.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}

	return fmt.Sprintf("Error: %v", err)
}
