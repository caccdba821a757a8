package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/localfiles/internal/index"
	"github.com/Aman-CERP/localfiles/internal/ui"
)

type searchOptions struct {
	limit     int
	extension string
	prefix    string
	jsonOut   bool
	noColor   bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the index",
		Long: `Search indexed files by keyword.

The query supports quoted phrases, AND/OR/NOT, +required and -excluded
terms, trailing * wildcards and field qualifiers (ext:, dir:, name:,
content:).

Examples:
  localfiles search "connection pool"
  localfiles search retry --ext go
  localfiles search 'timeout -test' --prefix /srv/app --limit 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum results (default from config)")
	cmd.Flags().StringVar(&opts.extension, "ext", "", "Only files with this extension")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "Only files under this path")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	coord, err := openCoordinator(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = coord.Close() }()

	limit := opts.limit
	if limit <= 0 {
		limit = cfg.Search.DefaultLimit
	}
	if limit > cfg.Search.MaxLimit {
		limit = cfg.Search.MaxLimit
	}

	resp, err := coord.Search(ctx, index.SearchRequest{
		Query:      query,
		Limit:      limit,
		Extension:  opts.extension,
		PathPrefix: opts.prefix,
	})
	if err != nil {
		return err
	}

	renderer := ui.NewSearchRenderer(cmd.OutOrStdout(), ui.NoColorFor(cmd.OutOrStdout(), opts.noColor))
	if opts.jsonOut {
		return renderer.RenderJSON(resp)
	}
	return renderer.Render(resp)
}
