package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is the structured error type for localfiles.
// It provides rich context for error handling, logging, and user presentation.
type Error struct {
	// Code is the unique error code (e.g., "ERR_201_NOT_INDEXED").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Storage, File, Query, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with *Error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// New creates a new Error with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates an Error from an existing error.
// The error's message becomes the Error message.
func Wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// StorageError reports an index directory that cannot be created, opened or removed.
func StorageError(message string, cause error) *Error {
	return New(ErrCodeStorage, message, cause)
}

// CommitError reports a failed flush of pending index mutations.
func CommitError(cause error) *Error {
	return New(ErrCodeCommit, "failed to commit index changes", cause)
}

// NotIndexedError reports a read of a path that is not in the index.
func NotIndexedError(path string) *Error {
	return New(ErrCodeNotIndexed, fmt.Sprintf("file not indexed: %s", path), nil).
		WithDetail("path", path).
		WithSuggestion("index the file or its directory with index_paths first")
}

// PathNotFoundError reports a path that does not exist on disk.
func PathNotFoundError(path string) *Error {
	return New(ErrCodePathNotFound, fmt.Sprintf("path does not exist: %s", path), nil).
		WithDetail("path", path)
}

// QuerySyntaxError reports a malformed free-text query.
func QuerySyntaxError(message string) *Error {
	return New(ErrCodeQuerySyntax, message, nil).
		WithSuggestion(`check quotes and parentheses; qualify fields as ext:, dir:, name: or content:`)
}

// WatchError reports a path that could not be registered with the watcher.
func WatchError(path string, cause error) *Error {
	return New(ErrCodeWatchRegister, fmt.Sprintf("failed to watch %s", path), cause).
		WithDetail("path", path)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *Error {
	return New(ErrCodeConfigInvalid, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *Error {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code anywhere in the chain.
// Returns empty string if no *Error is found.
func GetCode(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code string) bool {
	return stderrors.Is(err, &Error{Code: code})
}

// GetCategory extracts the category from an *Error.
func GetCategory(err error) Category {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Category
	}
	return ""
}
