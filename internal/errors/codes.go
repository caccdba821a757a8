// Package errors provides structured error handling for localfiles.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Storage errors (index directory, commit, lock)
//   - 2XX: File errors (not indexed, missing, unreadable)
//   - 3XX: Query errors
//   - 4XX: Watcher errors
//   - 5XX: Configuration errors
//   - 9XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryStorage indicates on-disk index errors.
	CategoryStorage Category = "STORAGE"
	// CategoryFile indicates errors about a single file or path.
	CategoryFile Category = "FILE"
	// CategoryQuery indicates malformed or failed queries.
	CategoryQuery Category = "QUERY"
	// CategoryWatch indicates change notification errors.
	CategoryWatch Category = "WATCH"
	// CategoryConfig indicates configuration errors.
	CategoryConfig Category = "CONFIG"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Storage errors (100-199)
	ErrCodeStorage        = "ERR_101_STORAGE"
	ErrCodeSchemaMismatch = "ERR_102_SCHEMA_MISMATCH"
	ErrCodeCommit         = "ERR_103_COMMIT"
	ErrCodeIndexLocked    = "ERR_104_INDEX_LOCKED"

	// File errors (200-299)
	ErrCodeNotIndexed   = "ERR_201_NOT_INDEXED"
	ErrCodePathNotFound = "ERR_202_PATH_NOT_FOUND"
	ErrCodeFileRead     = "ERR_203_FILE_READ"

	// Query errors (300-399)
	ErrCodeQuerySyntax  = "ERR_301_QUERY_SYNTAX"
	ErrCodeSearchFailed = "ERR_302_SEARCH_FAILED"

	// Watcher errors (400-499)
	ErrCodeWatchRegister = "ERR_401_WATCH_REGISTER"
	ErrCodeEventApply    = "ERR_402_EVENT_APPLY"

	// Config errors (500-599)
	ErrCodeConfigInvalid = "ERR_501_CONFIG_INVALID"

	// Internal errors (900-999)
	ErrCodeInternal = "ERR_901_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_STORAGE")
	switch code[4] {
	case '1':
		return CategoryStorage
	case '2':
		return CategoryFile
	case '3':
		return CategoryQuery
	case '4':
		return CategoryWatch
	case '5':
		return CategoryConfig
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeStorage, ErrCodeIndexLocked:
		return SeverityFatal
	case ErrCodeSchemaMismatch:
		return SeverityInfo
	case ErrCodeCommit, ErrCodeEventApply:
		return SeverityWarning
	}
	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
// A failed commit is re-attempted by the next batch's commit.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeCommit, ErrCodeIndexLocked:
		return true
	default:
		return false
	}
}
