package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupWorkspace isolates config and index locations and changes into a
// fresh working directory.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("LOCALFILES_INDEX_PATH", filepath.Join(t.TempDir(), "index"))
	t.Setenv("LOCALFILES_PATHS", "")
	t.Setenv("NO_COLOR", "1")

	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	// Given: the root command
	root := NewRootCmd()

	// Then: every subcommand is registered
	for _, name := range []string{"serve", "index", "search", "status", "list", "read", "init", "logs", "doctor", "version"} {
		found, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}
}

func TestIndexSearchListRead_EndToEnd(t *testing.T) {
	// Given: a directory with two files
	dir := setupWorkspace(t)
	notes := writeFile(t, filepath.Join(dir, "notes", "pool.md"), "# Notes\nconnection pool sizing\n")
	writeFile(t, filepath.Join(dir, "notes", "other.txt"), "unrelated words\n")

	// When: indexing the directory
	stdout, _, err := execute(t, "index", filepath.Join(dir, "notes"))

	// Then: plain progress and both files are reported
	require.NoError(t, err)
	assert.Contains(t, stdout, "[INDEX] 0/2 - "+filepath.Join(dir, "notes"))
	assert.Contains(t, stdout, "[INDEX] 2/2 - "+filepath.Join(dir, "notes"))
	assert.Contains(t, stdout, "Indexed 2 file(s)")

	// When: searching
	stdout, _, err = execute(t, "search", "connection", "pool")
	require.NoError(t, err)
	assert.Contains(t, stdout, notes+":2")
	assert.Contains(t, stdout, "1 result(s)")

	// When: listing with an extension filter
	stdout, _, err = execute(t, "list", "--ext", "md")
	require.NoError(t, err)
	assert.Equal(t, notes+"\n", stdout)

	// When: reading the file
	stdout, _, err = execute(t, "read", notes)
	require.NoError(t, err)
	assert.Equal(t, "# Notes\nconnection pool sizing\n", stdout)
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	// Given: an indexed file
	dir := setupWorkspace(t)
	path := writeFile(t, filepath.Join(dir, "a.go"), "package a\nfunc Retry() {}\n")
	_, _, err := execute(t, "index", path)
	require.NoError(t, err)

	// When: searching with --json
	stdout, _, err := execute(t, "search", "retry", "--json")
	require.NoError(t, err)

	// Then: the response decodes with the file as the only result
	var resp struct {
		Results []struct {
			FilePath string `json:"file_path"`
		} `json:"results"`
		TotalCount int `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, path, resp.Results[0].FilePath)
	assert.Equal(t, 1, resp.TotalCount)
}

func TestIndexCmd_MissingPathFails(t *testing.T) {
	// Given: a workspace
	dir := setupWorkspace(t)

	// When: indexing a path that does not exist
	stdout, _, err := execute(t, "index", filepath.Join(dir, "nope"))

	// Then: the error is reported and the command fails
	require.Error(t, err)
	assert.Contains(t, stdout, "path does not exist")
}

func TestReadCmd_NotIndexed(t *testing.T) {
	// Given: a file that exists but was never indexed
	dir := setupWorkspace(t)
	path := writeFile(t, filepath.Join(dir, "secret.txt"), "x")
	_, _, err := execute(t, "index", writeFile(t, filepath.Join(dir, "other.txt"), "y"))
	require.NoError(t, err)

	// When: reading it
	_, _, err = execute(t, "read", path)

	// Then: it is refused
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not indexed")
}

func TestStatusCmd_NoIndex(t *testing.T) {
	// Given: a workspace with no index
	setupWorkspace(t)

	// When: running status
	_, _, err := execute(t, "status")

	// Then: it reports the missing index
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no index found")
}

func TestStatusCmd_JSON(t *testing.T) {
	// Given: an index holding one file
	dir := setupWorkspace(t)
	docs := filepath.Join(dir, "docs")
	writeFile(t, filepath.Join(docs, "a.txt"), "alpha")
	_, _, err := execute(t, "index", docs)
	require.NoError(t, err)

	// When: running status --json
	stdout, _, err := execute(t, "status", "--json")
	require.NoError(t, err)

	// Then: the count and on-disk size are reported
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.EqualValues(t, 1, info["num_files"])
	assert.Equal(t, false, info["watching"])
	size, ok := info["index_size_bytes"].(float64)
	require.True(t, ok)
	assert.Greater(t, size, 0.0)
}

func TestListCmd_EmptyIndex(t *testing.T) {
	// Given: an empty index
	setupWorkspace(t)

	// When: listing
	stdout, stderr, err := execute(t, "list")

	// Then: nothing goes to stdout and a note goes to stderr
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "No indexed files.")
}

func TestLogsCmd_TailFiltersLevel(t *testing.T) {
	// Given: a log file with mixed levels
	setupWorkspace(t)
	logFile := writeFile(t, filepath.Join(t.TempDir(), "server.log"), strings.Join([]string{
		`{"time":"2026-01-02T10:00:00Z","level":"INFO","msg":"index opened"}`,
		`{"time":"2026-01-02T10:00:01Z","level":"WARN","msg":"watcher error"}`,
	}, "\n")+"\n")

	// When: viewing warnings only
	stdout, stderr, err := execute(t, "logs", "--file", logFile, "--level", "warn", "--no-color")

	// Then: only the warning is printed
	require.NoError(t, err)
	assert.Contains(t, stderr, logFile)
	assert.Contains(t, stdout, "watcher error")
	assert.NotContains(t, stdout, "index opened")
}

func TestLogsCmd_MissingFile(t *testing.T) {
	setupWorkspace(t)
	_, _, err := execute(t, "logs", "--file", filepath.Join(t.TempDir(), "missing.log"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log file not found")
}

func TestDoctorCmd_JSON(t *testing.T) {
	// Given: a workspace with one configured path
	dir := setupWorkspace(t)
	t.Setenv("LOCALFILES_PATHS", dir)

	// When: running doctor --json
	stdout, _, err := execute(t, "doctor", "--json")
	require.NoError(t, err)

	// Then: every check is reported by name
	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	var names []string
	for _, r := range results {
		names = append(names, r["name"].(string))
	}
	assert.Equal(t, []string{"index_directory", "disk_space", "file_descriptors", "paths", "watch_capacity"}, names)
}

func TestRootCmd_ProfileFlagsWriteFiles(t *testing.T) {
	// Given: a heap profile path
	setupWorkspace(t)
	heap := filepath.Join(t.TempDir(), "heap.prof")

	// When: running any command with --profile-mem
	_, _, err := execute(t, "version", "--profile-mem", heap)

	// Then: the profile is written
	require.NoError(t, err)
	info, err := os.Stat(heap)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestReportError_HumanAndJSON(t *testing.T) {
	setupWorkspace(t)

	// Given: a read of a file that was never indexed
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"read", writeFile(t, filepath.Join(t.TempDir(), "x.txt"), "x")})
	executed, err := root.ExecuteC()
	require.Error(t, err)

	// When: reporting it for a terminal
	var human bytes.Buffer
	reportError(&human, executed, err)

	// Then: the message, hint and code are printed
	assert.Contains(t, human.String(), "Error: file not indexed")
	assert.Contains(t, human.String(), "Code: ERR_201_NOT_INDEXED")

	// When: the failing command was asked for JSON
	search := newSearchCmd()
	require.NoError(t, search.Flags().Set("json", "true"))
	var machine bytes.Buffer
	reportError(&machine, search, err)

	// Then: the error is a JSON object
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(machine.Bytes(), &decoded))
	assert.Equal(t, "ERR_201_NOT_INDEXED", decoded["code"])
}

func TestReportError_PlainError(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, nil, assert.AnError)
	assert.Equal(t, "Error: "+assert.AnError.Error()+"\n", buf.String())
}
