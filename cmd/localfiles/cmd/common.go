package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/Aman-CERP/localfiles/internal/config"
	"github.com/Aman-CERP/localfiles/internal/index"
)

// loadConfig loads configuration for the current working directory.
func loadConfig() (*config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return config.Load(dir)
}

// indexOptions maps configuration onto index.Open options.
func indexOptions(cfg *config.Config) index.Options {
	return index.Options{
		Path:          cfg.Index.Path,
		MaxFileSize:   cfg.Index.MaxFileSize,
		Workers:       cfg.Index.Workers,
		SnippetWindow: cfg.Search.SnippetWindow,
		CacheSize:     cfg.Search.CacheSize,
	}
}

// openCoordinator opens the configured index behind a Coordinator. The
// caller must Close it.
func openCoordinator(ctx context.Context, cfg *config.Config) (*index.Coordinator, error) {
	fi, err := index.Open(ctx, indexOptions(cfg))
	if err != nil {
		return nil, err
	}
	return index.NewCoordinator(fi), nil
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
