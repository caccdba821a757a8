// Package logging provides file-based structured logging with rotation for localfiles.
// Logs are JSON lines written to ~/.localfiles/logs/server.log.
//
// In MCP stdio mode the log file is the only sink: stdout carries the
// JSON-RPC stream and nothing else may write to it.
package logging
