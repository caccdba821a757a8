package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("permission denied")

	// When: wrapping it as a storage error
	err := StorageError("cannot create index directory", originalErr)

	// Then: unwrapping returns the original error
	require.NotNil(t, err)
	assert.Equal(t, originalErr, errors.Unwrap(err))
	assert.True(t, errors.Is(err, originalErr))
}

func TestError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "storage error",
			err:      New(ErrCodeStorage, "cannot open index", nil),
			expected: "[ERR_101_STORAGE] cannot open index",
		},
		{
			name:     "not indexed",
			err:      NotIndexedError("/tmp/a.txt"),
			expected: "[ERR_201_NOT_INDEXED] file not indexed: /tmp/a.txt",
		},
		{
			name:     "query syntax",
			err:      QuerySyntaxError("unbalanced quote"),
			expected: "[ERR_301_QUERY_SYNTAX] unbalanced quote",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestError_Is_MatchesByCode(t *testing.T) {
	// Given: two errors with the same code and different messages
	err1 := NotIndexedError("/a")
	err2 := NotIndexedError("/b")

	// Then: they match by code
	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, PathNotFoundError("/a")))
}

func TestHasCode_FindsCodeThroughWrapping(t *testing.T) {
	// Given: a structured error wrapped by fmt.Errorf
	err := fmt.Errorf("index_paths: %w", WatchError("/src", errors.New("too many watches")))

	// Then: the code is found in the chain
	assert.True(t, HasCode(err, ErrCodeWatchRegister))
	assert.False(t, HasCode(err, ErrCodeStorage))
	assert.Equal(t, ErrCodeWatchRegister, GetCode(err))
	assert.Equal(t, CategoryWatch, GetCategory(err))
}

func TestNew_DerivesCategorySeverityAndRetry(t *testing.T) {
	tests := []struct {
		code      string
		category  Category
		severity  Severity
		retryable bool
	}{
		{ErrCodeStorage, CategoryStorage, SeverityFatal, false},
		{ErrCodeSchemaMismatch, CategoryStorage, SeverityInfo, false},
		{ErrCodeCommit, CategoryStorage, SeverityWarning, true},
		{ErrCodeIndexLocked, CategoryStorage, SeverityFatal, true},
		{ErrCodeNotIndexed, CategoryFile, SeverityError, false},
		{ErrCodeQuerySyntax, CategoryQuery, SeverityError, false},
		{ErrCodeEventApply, CategoryWatch, SeverityWarning, false},
		{ErrCodeConfigInvalid, CategoryConfig, SeverityError, false},
		{ErrCodeInternal, CategoryInternal, SeverityError, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "msg", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
			assert.Equal(t, tt.retryable, err.Retryable)
		})
	}
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestIsFatal_AndIsRetryable(t *testing.T) {
	assert.True(t, IsFatal(StorageError("x", nil)))
	assert.False(t, IsFatal(NotIndexedError("/x")))
	assert.False(t, IsFatal(errors.New("plain")))

	assert.True(t, IsRetryable(CommitError(errors.New("disk full"))))
	assert.False(t, IsRetryable(nil))
}

func TestFormatForCLI_IncludesHintAndCode(t *testing.T) {
	// Given: an error with a suggestion
	err := NotIndexedError("/tmp/notes.md")

	// When: formatting for the terminal
	out := FormatForCLI(err)

	// Then: message, hint and code are all present
	assert.Contains(t, out, "Error: file not indexed: /tmp/notes.md")
	assert.Contains(t, out, "Hint: index the file")
	assert.Contains(t, out, "Code: ERR_201_NOT_INDEXED")
}

func TestFormatForCLI_PlainErrorIsMessageOnly(t *testing.T) {
	assert.Equal(t, "Error: boom\n", FormatForCLI(errors.New("boom")))
	assert.Empty(t, FormatForCLI(nil))
}

func TestFormatJSON_PlainErrorBecomesInternal(t *testing.T) {
	data, jerr := FormatJSON(errors.New("boom"))
	require.NoError(t, jerr)
	assert.Contains(t, string(data), `"code":"`+ErrCodeInternal+`"`)
	assert.Contains(t, string(data), `"cause":"boom"`)
}

func TestFormatJSON_IncludesCause(t *testing.T) {
	err := CommitError(errors.New("disk full"))

	data, jerr := FormatJSON(err)
	require.NoError(t, jerr)
	assert.Contains(t, string(data), `"code":"ERR_103_COMMIT"`)
	assert.Contains(t, string(data), `"cause":"disk full"`)
	assert.Contains(t, string(data), `"retryable":true`)
}

func TestFormatForLog_IncludesDetails(t *testing.T) {
	// Given: a structured error with details
	err := PathNotFoundError("/missing")

	// When: formatting for logs
	fields := FormatForLog(err)

	// Then: details are prefixed
	assert.Equal(t, ErrCodePathNotFound, fields["error_code"])
	assert.Equal(t, "/missing", fields["detail_path"])

	// And: plain errors fall back to a single field
	assert.Equal(t, map[string]any{"error": "plain"}, FormatForLog(errors.New("plain")))
}

func TestLogArgs_SortedPairs(t *testing.T) {
	args := LogArgs(errors.New("plain"))
	assert.Equal(t, []any{"error", "plain"}, args)

	args = LogArgs(NotIndexedError("/x"))
	require.Equal(t, 0, len(args)%2)
	assert.Equal(t, "category", args[0])
}
