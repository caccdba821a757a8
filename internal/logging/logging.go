package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config describes where and how much to log.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string
	// FilePath is the log file; empty means DefaultLogPath.
	FilePath string
	// MaxSizeMB rotates the file once it grows past this size.
	MaxSizeMB int
	// MaxFiles is how many rotated files are kept.
	MaxFiles int
	// WriteToStderr mirrors every record to stderr. Never set it in MCP mode.
	WriteToStderr bool
}

// DefaultConfig logs info and above to DefaultLogPath, rotating at 10 MB
// and keeping five old files.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		FilePath:  DefaultLogPath(),
		MaxSizeMB: 10,
		MaxFiles:  5,
	}
}

// Setup opens the log file and returns a JSON logger over it. The cleanup
// function flushes and closes the file; call it once on exit.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	writer, err := openWriter(&cfg)
	if err != nil {
		return nil, nil, err
	}

	var sink io.Writer = writer
	if cfg.WriteToStderr {
		sink = io.MultiWriter(writer, os.Stderr)
	}

	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}
	return slog.New(newHandler(sink, LevelFromString(cfg.Level))), cleanup, nil
}

func openWriter(cfg *Config) (*RotatingWriter, error) {
	if cfg.FilePath == "" {
		cfg.FilePath = DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
}

// newHandler emits JSON records. Debug logs carry the source location.
func newHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	})
}

// LevelFromString converts a level name to slog.Level; unknown names are
// info.
func LevelFromString(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
