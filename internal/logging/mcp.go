package logging

import (
	"log/slog"
)

// SetupMCPMode initializes logging for MCP server mode and installs it as
// the default logger. Records go to the log file only, never stdout or
// stderr: stdout is reserved for JSON-RPC.
func SetupMCPMode(cfg Config) (func(), error) {
	cfg.WriteToStderr = false

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)
	slog.Info("MCP mode logging initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level))

	return cleanup, nil
}
