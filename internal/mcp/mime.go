package mcp

import (
	"path/filepath"
	"strings"
)

// mimeTypes maps indexed file extensions to MIME types.
var mimeTypes = map[string]string{
	".go":   "text/x-go",
	".rs":   "text/x-rust",
	".py":   "text/x-python",
	".rb":   "text/x-ruby",
	".php":  "text/x-php",
	".java": "text/x-java",
	".c":    "text/x-c",
	".h":    "text/x-c",
	".cpp":  "text/x-c++",
	".hpp":  "text/x-c++",

	".ts":  "text/typescript",
	".tsx": "text/typescript",
	".js":  "text/javascript",
	".jsx": "text/javascript",

	".html": "text/html",
	".css":  "text/css",
	".scss": "text/x-scss",

	".json": "application/json",
	".yaml": "text/x-yaml",
	".yml":  "text/x-yaml",
	".toml": "text/x-toml",
	".xml":  "text/xml",
	".csv":  "text/csv",
	".sql":  "text/x-sql",

	".md": "text/markdown",

	".sh":   "text/x-sh",
	".bash": "text/x-sh",
	".zsh":  "text/x-sh",
}

// specialFilenames maps lowercase extensionless names to MIME types.
var specialFilenames = map[string]string{
	"dockerfile": "text/x-dockerfile",
	"makefile":   "text/x-makefile",
}

// MimeTypeForPath returns the MIME type for path, "text/plain" when the
// name is not recognized.
func MimeTypeForPath(path string) string {
	if mime, ok := specialFilenames[strings.ToLower(filepath.Base(path))]; ok {
		return mime
	}
	if mime, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "text/plain"
}
