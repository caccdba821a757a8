package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/localfiles/internal/output"
	"github.com/Aman-CERP/localfiles/internal/ui"
)

func newIndexCmd() *cobra.Command {
	var noTUI bool

	cmd := &cobra.Command{
		Use:   "index <paths...>",
		Short: "Index files and directories",
		Long: `Index the given files and directories (recursively) and commit.

Paths are not watched; run 'localfiles serve' to keep them current.
The command fails if another process holds the index.`,
		Example: `  localfiles index ~/notes
  localfiles index ./docs README.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runIndex(ctx, cmd, args, noTUI)
		},
	}

	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Print plain progress lines instead of the progress bar")
	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, paths []string, noTUI bool) error {
	out := output.New(cmd.OutOrStdout())

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	coord, err := openCoordinator(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = coord.Close() }()

	out.Statusf("📁", "Indexing %d path(s) into %s", len(paths), cfg.Index.Path)
	renderer := ui.NewProgressRenderer(cmd.OutOrStdout(), noTUI)
	if err := renderer.Start(ctx); err != nil {
		slog.Warn("failed to start progress renderer", slog.String("error", err.Error()))
	}
	result := coord.IndexPathsWithProgress(ctx, paths, nil, func(root string, done, total int) {
		renderer.Update(ui.ProgressEvent{Root: root, Done: done, Total: total})
	})
	_ = renderer.Stop()

	for _, msg := range result.Errors {
		out.Warning(msg)
	}
	out.Successf("Indexed %d file(s)", result.IndexedCount)

	if len(result.Errors) > 0 {
		return fmt.Errorf("%d path(s) reported errors", len(result.Errors))
	}
	return nil
}
