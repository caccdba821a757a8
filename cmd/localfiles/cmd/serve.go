package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	lferrors "github.com/Aman-CERP/localfiles/internal/errors"
	"github.com/Aman-CERP/localfiles/internal/logging"
	"github.com/Aman-CERP/localfiles/internal/mcp"
	"github.com/Aman-CERP/localfiles/internal/watcher"
	"github.com/Aman-CERP/localfiles/pkg/version"
)

type serveOptions struct {
	transport string
	paths     []string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve [paths...]",
		Short: "Start the MCP server",
		Long: `Start the MCP server on stdio.

The server opens the index, refreshes entries that changed while it was
not running, indexes and watches the configured paths (plus any given as
arguments) and then answers tool calls until the client disconnects.

Stdout carries JSON-RPC only; logs go to ~/.localfiles/logs/server.log.`,
		Example: `  # Serve the paths listed in .localfiles.yaml
  localfiles serve

  # Also index and watch ./docs
  localfiles serve ./docs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.paths = args
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", "stdio", "Transport to serve on (stdio)")

	return cmd
}

// runServe wires the index, watcher and ingestor behind the MCP server and
// blocks until the server stops. Nothing may be written to stdout here.
func runServe(ctx context.Context, opts serveOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.transport == "" {
		opts.transport = cfg.Server.Transport
	}

	logCleanup, err := logging.SetupMCPMode(loggingConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logCleanup()

	slog.Info("localfiles starting",
		slog.String("version", version.Version),
		slog.String("index_path", cfg.Index.Path))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	coord, err := openCoordinator(ctx, cfg)
	if err != nil {
		slog.Error("failed to open index", lferrors.LogArgs(err)...)
		return err
	}
	defer func() {
		if err := coord.Close(); err != nil {
			slog.Error("failed to close index", lferrors.LogArgs(err)...)
		}
	}()

	if _, err := coord.Reconcile(ctx); err != nil {
		slog.Warn("reconcile failed", lferrors.LogArgs(err)...)
	}

	w, err := watcher.New(watcher.Options{EventBufferSize: cfg.Watcher.BufferSize})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	ingestor := watcher.NewIngestor(w.Events(), coord, watcher.IngestorOptions{
		Quiescence: cfg.DebounceDuration(),
		MaxWait:    cfg.MaxWaitDuration(),
	})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ingestor.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		for err := range w.Errors() {
			slog.Warn("watcher error", lferrors.LogArgs(err)...)
		}
	}()
	coord.SetWatching(true)

	// Closing the watcher closes its channels, which ends both goroutines
	// after the ingestor applies whatever was still buffered.
	defer func() {
		coord.SetWatching(false)
		_ = w.Close()
		wg.Wait()
		slog.Info("watcher stopped",
			slog.Uint64("batches", ingestor.Batches()),
			slog.Uint64("events", ingestor.AppliedEvents()))
	}()

	startup := append(append([]string{}, cfg.Index.Paths...), opts.paths...)
	if len(startup) > 0 {
		result := coord.IndexPaths(ctx, startup, w)
		for _, msg := range result.Errors {
			slog.Warn("startup indexing error", slog.String("error", msg))
		}
	}

	server, err := mcp.NewServer(coord, w, cfg)
	if err != nil {
		return err
	}

	err = server.Serve(ctx, opts.transport)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
