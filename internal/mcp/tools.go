package mcp

import "github.com/Aman-CERP/localfiles/internal/telemetry"

// SearchInput defines the input schema for the search tool.
type SearchInput struct {
	Query      string `json:"query,omitempty" jsonschema:"free-text query; supports AND, OR, NOT, quoted phrases and ext:, dir:, name:, content: qualifiers"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
	Extension  string `json:"extension,omitempty" jsonschema:"only files with this extension, e.g. rs or .md"`
	PathPrefix string `json:"path_prefix,omitempty" jsonschema:"slash-separated directory names that must all appear in the file's directory"`
}

// SearchOutput defines the output schema for the search tool.
type SearchOutput struct {
	Results    []SearchResultOutput `json:"results" jsonschema:"ranked matches"`
	TotalCount int                  `json:"total_count" jsonschema:"number of returned results"`
}

// SearchResultOutput is one search match.
type SearchResultOutput struct {
	FilePath string  `json:"file_path" jsonschema:"absolute path of the file"`
	FileName string  `json:"file_name" jsonschema:"base name of the file"`
	Score    float64 `json:"score" jsonschema:"relevance score"`
	Snippet  string  `json:"snippet" jsonschema:"excerpt around the first matched term"`
	Line     int     `json:"line,omitempty" jsonschema:"1-based line of the first matched term"`
}

// IndexPathsInput defines the input schema for the index_paths tool.
type IndexPathsInput struct {
	Paths []string `json:"paths" jsonschema:"files or directories to index and watch"`
}

// IndexPathsOutput defines the output schema for the index_paths tool.
type IndexPathsOutput struct {
	IndexedCount int      `json:"indexed_count" jsonschema:"files visited"`
	Errors       []string `json:"errors" jsonschema:"one message per failed path"`
}

// StatusInput defines the input schema for the status tool (no parameters).
type StatusInput struct{}

// StatusOutput defines the output schema for the status tool.
type StatusOutput struct {
	NumFiles      int                `json:"num_files" jsonschema:"number of indexed files"`
	WatchedPaths  []string           `json:"watched_paths" jsonschema:"directories indexed as roots"`
	IndexPath     string             `json:"index_path" jsonschema:"index storage directory"`
	SchemaVersion int                `json:"schema_version" jsonschema:"index schema version"`
	Watching      bool               `json:"watching" jsonschema:"whether changes are being ingested"`
	Queries       telemetry.Snapshot `json:"queries" jsonschema:"search traffic since the server started"`
}

// ReadFileInput defines the input schema for the read_file tool.
type ReadFileInput struct {
	Path string `json:"path" jsonschema:"path of an indexed file"`
}

// ReadFileOutput defines the output schema for the read_file tool.
type ReadFileOutput struct {
	Path     string `json:"path"`
	MIMEType string `json:"mime_type"`
	Content  string `json:"content"`
}

// ListFilesInput defines the input schema for the list_files tool.
type ListFilesInput struct {
	Extension  string `json:"extension,omitempty" jsonschema:"only files with this extension"`
	PathPrefix string `json:"path_prefix,omitempty" jsonschema:"only paths containing this substring"`
}

// ListFilesOutput defines the output schema for the list_files tool.
type ListFilesOutput struct {
	Files []string `json:"files" jsonschema:"sorted indexed paths"`
	Count int      `json:"count"`
}
