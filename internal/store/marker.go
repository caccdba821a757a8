package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// markerFile holds the schema version as a plain integer.
	markerFile = "schema_version"

	// engineDir is the bleve index directory inside the storage directory.
	engineDir = "bleve"
)

// readSchemaVersion returns the persisted version, or ok=false when the
// marker is missing or unparseable.
func readSchemaVersion(dir string) (version int, ok bool) {
	data, err := os.ReadFile(filepath.Join(dir, markerFile))
	if err != nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	return v, true
}

func writeSchemaVersion(dir string, version int) error {
	path := filepath.Join(dir, markerFile)
	if err := os.WriteFile(path, []byte(strconv.Itoa(version)+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}
	return nil
}

// validateEngineIntegrity checks the bleve metadata before opening, so an
// index left half-written by a crash is recreated instead of failing later.
func validateEngineIntegrity(path string) error {
	metaPath := filepath.Join(path, "index_meta.json")
	info, err := os.Stat(metaPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("index_meta.json missing")
	}
	if err != nil {
		return fmt.Errorf("cannot stat index_meta.json: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("index_meta.json is empty")
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("cannot read index_meta.json: %w", err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("index_meta.json is corrupt: %w", err)
	}
	return nil
}
