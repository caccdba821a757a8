package preflight

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStatus_String(t *testing.T) {
	tests := []struct {
		status CheckStatus
		want   string
	}{
		{StatusPass, "PASS"},
		{StatusWarn, "WARN"},
		{StatusFail, "FAIL"},
		{CheckStatus(9), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestCheckResult_JSONUsesStatusName(t *testing.T) {
	data, err := json.Marshal(CheckResult{Name: "x", Status: StatusWarn})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"WARN"`)
}

func TestSummaryStatus(t *testing.T) {
	c := New()

	tests := []struct {
		name    string
		results []CheckResult
		want    string
	}{
		{"all pass", []CheckResult{{Status: StatusPass, Required: true}}, "ready"},
		{"warning", []CheckResult{{Status: StatusPass}, {Status: StatusWarn}}, "ready_with_warnings"},
		{"optional failure", []CheckResult{{Status: StatusFail}}, "ready_with_warnings"},
		{"required failure", []CheckResult{{Status: StatusWarn}, {Status: StatusFail, Required: true}}, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.SummaryStatus(tt.results))
			assert.Equal(t, tt.want == "failed", c.HasCriticalFailures(tt.results))
		})
	}
}

func TestCheckIndexDirectory_MissingDirUsesParent(t *testing.T) {
	// Given: an index path that does not exist yet
	parent := t.TempDir()
	path := filepath.Join(parent, "a", "b")

	// When: checking it
	result := New().CheckIndexDirectory(path)

	// Then: the parent is writable and nothing was created
	assert.Equal(t, StatusPass, result.Status)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCheckIndexDirectory_FileInTheWay(t *testing.T) {
	// Given: a regular file where the index should go
	path := filepath.Join(t.TempDir(), "index")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	// When: checking it
	result := New().CheckIndexDirectory(path)

	// Then: it is a critical failure
	assert.True(t, result.IsCritical())
}

func TestCheckDiskSpace_NonexistentPath(t *testing.T) {
	result := New().CheckDiskSpace(filepath.Join(t.TempDir(), "not", "yet"))
	assert.NotEqual(t, "", result.Message)
	assert.True(t, result.Required)
}

func TestCheckPaths(t *testing.T) {
	dir := t.TempDir()
	c := New()

	assert.Equal(t, StatusWarn, c.CheckPaths(nil).Status)

	result := c.CheckPaths([]string{dir, filepath.Join(dir, "gone")})
	assert.Equal(t, StatusWarn, result.Status)
	assert.Contains(t, result.Details, "gone")

	assert.Equal(t, StatusPass, c.CheckPaths([]string{dir}).Status)
}

func TestCheckWatchCapacity(t *testing.T) {
	// Given: a tree with three directories and a fake limit file
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0o755))
	limitFile := filepath.Join(t.TempDir(), "max_user_watches")

	tests := []struct {
		name  string
		limit string
		want  CheckStatus
	}{
		{"under limit", "8192\n", StatusPass},
		{"over limit", "2\n", StatusWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(limitFile, []byte(tt.limit), 0o644))
			c := New(WithWatchLimitPath(limitFile))

			result := c.CheckWatchCapacity(context.Background(), []string{root})

			assert.Equal(t, tt.want, result.Status)
			assert.Contains(t, result.Message, "3 directories")
		})
	}
}

func TestCheckWatchCapacity_NoLimitFilePasses(t *testing.T) {
	c := New(WithWatchLimitPath(filepath.Join(t.TempDir(), "absent")))
	result := c.CheckWatchCapacity(context.Background(), []string{t.TempDir()})
	assert.Equal(t, StatusPass, result.Status)
}

func TestPrintResults(t *testing.T) {
	// Given: one pass and one warning with details
	buf := &bytes.Buffer{}
	c := New(WithOutput(buf), WithNoColor(true))
	results := []CheckResult{
		{Name: "disk_space", Status: StatusPass, Message: "5.0 GB free", Required: true},
		{Name: "paths", Status: StatusWarn, Message: "no paths configured", Details: "add some"},
	}

	// When: printing
	c.PrintResults(results)

	// Then: each line, the warning details and the summary appear
	out := buf.String()
	assert.Contains(t, out, "[PASS] disk_space: 5.0 GB free")
	assert.Contains(t, out, "[WARN] paths: no paths configured")
	assert.Contains(t, out, "add some")
	assert.Contains(t, out, "Status: READY_WITH_WARNINGS")
}

func TestFileLimitResult(t *testing.T) {
	tests := []struct {
		name       string
		soft, hard uint64
		want       CheckStatus
		details    string
	}{
		{"enough", 4096, 8192, StatusPass, ""},
		{"soft low, hard fine", 256, 10240, StatusFail, "ulimit -n 10240"},
		{"both low", 256, 512, StatusFail, "hard limit is also too low"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := fileLimitResult(tt.soft, tt.hard)
			assert.Equal(t, tt.want, result.Status)
			assert.Contains(t, result.Details, tt.details)
		})
	}
}
