// Package document decides which files are indexable and turns a file on
// disk into the stored field set of one index document.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Aman-CERP/localfiles/internal/store"
)

// DefaultMaxFileSize is the size ceiling above which files are skipped.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// supportedExtensions lists text-like formats, lowercase, without the dot.
var supportedExtensions = map[string]struct{}{
	"txt": {}, "md": {}, "rs": {}, "py": {}, "js": {}, "ts": {}, "jsx": {}, "tsx": {},
	"json": {}, "toml": {}, "yaml": {}, "yml": {}, "html": {}, "css": {}, "scss": {},
	"sh": {}, "bash": {}, "zsh": {}, "c": {}, "cpp": {}, "h": {}, "hpp": {},
	"java": {}, "go": {}, "rb": {}, "php": {}, "sql": {}, "xml": {}, "csv": {},
	"log": {}, "cfg": {}, "conf": {}, "ini": {}, "env": {},
	"makefile": {}, "dockerfile": {},
}

// supportedNames lists extensionless file names, lowercase.
var supportedNames = map[string]struct{}{
	"makefile":   {},
	"dockerfile": {},
}

// Document is the searchable state of one file.
type Document struct {
	Path         string
	Name         string
	Content      string
	LastModified string
	Extension    string
	Directory    string
}

// Fields returns the document as the store's field map.
func (d *Document) Fields() map[string]string {
	return map[string]string{
		store.FieldPath:         d.Path,
		store.FieldName:         d.Name,
		store.FieldContent:      d.Content,
		store.FieldLastModified: d.LastModified,
		store.FieldExtension:    d.Extension,
		store.FieldDirectory:    d.Directory,
	}
}

// Extension returns the lowercase extension of path without the dot, or ""
// when there is none. A leading dot starts a name, not an extension, so
// ".env" has none while ".env.local" has "local".
func Extension(path string) string {
	base := filepath.Base(path)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

// FormatModTime renders seconds since the epoch as stored in last_modified.
func FormatModTime(info os.FileInfo) string {
	return fmt.Sprintf("%ds", info.ModTime().Unix())
}

// Codec builds documents under a size ceiling.
type Codec struct {
	maxFileSize int64
}

// NewCodec returns a Codec; a non-positive maxFileSize uses DefaultMaxFileSize.
func NewCodec(maxFileSize int64) *Codec {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Codec{maxFileSize: maxFileSize}
}

// IsSupported reports whether path has an allow-listed extension or an
// allow-listed extensionless name. Both checks ignore case.
func (c *Codec) IsSupported(path string) bool {
	if _, ok := supportedExtensions[Extension(path)]; ok {
		return true
	}
	_, ok := supportedNames[strings.ToLower(filepath.Base(path))]
	return ok
}

// Build reads path and returns its document.
//
// It returns (nil, nil) when the file is skipped by policy: unsupported
// name, larger than the ceiling, not a regular file, or not valid UTF-8.
// An error means the file could not be examined or read at all.
func (c *Codec) Build(path string) (*Document, error) {
	if !c.IsSupported(path) {
		return nil, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() || info.Size() > c.maxFileSize {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	// The file may have grown between stat and read.
	if int64(len(data)) > c.maxFileSize || !utf8.Valid(data) {
		return nil, nil
	}

	return &Document{
		Path:         path,
		Name:         filepath.Base(path),
		Content:      string(data),
		LastModified: FormatModTime(info),
		Extension:    Extension(path),
		Directory:    filepath.Dir(path),
	}, nil
}
