package ui

import (
	"encoding/json"
	"fmt"
	"io"
)

// StatusInfo contains index health information.
type StatusInfo struct {
	NumFiles      int      `json:"num_files"`
	WatchedPaths  []string `json:"watched_paths"`
	IndexPath     string   `json:"index_path"`
	SchemaVersion int      `json:"schema_version"`
	IndexSize     int64    `json:"index_size_bytes"`
	Watching      bool     `json:"watching"`
}

// StatusRenderer displays index status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{out: out, styles: GetStyles(noColor)}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Index Status"))

	_, _ = fmt.Fprintf(r.out, "  %s %d\n", r.styles.Label.Render("Files:   "), info.NumFiles)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.styles.Label.Render("Location:"), info.IndexPath)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.styles.Label.Render("Size:    "), FormatBytes(info.IndexSize))
	_, _ = fmt.Fprintf(r.out, "  %s %d\n", r.styles.Label.Render("Schema:  "), info.SchemaVersion)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.styles.Label.Render("Watcher: "), r.renderWatching(info.Watching))

	if len(info.WatchedPaths) > 0 {
		_, _ = fmt.Fprintf(r.out, "\n  %s\n", r.styles.Label.Render("Roots:"))
		for _, p := range info.WatchedPaths {
			_, _ = fmt.Fprintf(r.out, "    %s\n", p)
		}
	}
	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

func (r *StatusRenderer) renderWatching(on bool) string {
	if on {
		return r.styles.Success.Render("running")
	}
	return r.styles.Warning.Render("stopped")
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
