package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/localfiles/internal/output"
)

func newListCmd() *cobra.Command {
	var ext, contains string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed files",
		Long:  `List indexed file paths in sorted order, optionally filtered by extension or path substring.`,
		Example: `  localfiles list --ext md
  localfiles list --contains /docs/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			coord, err := openCoordinator(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = coord.Close() }()

			files := coord.ListFiles(ext, contains)
			w := cmd.OutOrStdout()
			for _, f := range files {
				_, _ = fmt.Fprintln(w, f)
			}
			if len(files) == 0 {
				output.New(cmd.ErrOrStderr()).Line("No indexed files.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ext, "ext", "", "Only files with this extension")
	cmd.Flags().StringVar(&contains, "contains", "", "Only paths containing this substring")

	return cmd
}
