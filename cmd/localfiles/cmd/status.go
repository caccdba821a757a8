package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/localfiles/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var jsonOut, noColor bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index status",
		Long:  `Show the number of indexed files, indexed roots, index location and size.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if _, err := os.Stat(cfg.Index.Path); os.IsNotExist(err) {
				return fmt.Errorf("no index found at %s\nrun 'localfiles index <path>' first", cfg.Index.Path)
			}

			coord, err := openCoordinator(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			st := coord.Status()
			if err := coord.Close(); err != nil {
				return err
			}

			info := ui.StatusInfo{
				NumFiles:      st.NumFiles,
				WatchedPaths:  st.WatchedPaths,
				IndexPath:     st.IndexPath,
				SchemaVersion: st.SchemaVersion,
				IndexSize:     dirSize(st.IndexPath),
				Watching:      st.Watching,
			}

			renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), ui.NoColorFor(cmd.OutOrStdout(), noColor))
			if jsonOut {
				return renderer.RenderJSON(info)
			}
			return renderer.Render(info)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output status as JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

// dirSize sums regular file sizes below dir, ignoring unreadable entries.
func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
