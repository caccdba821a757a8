package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/localfiles/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var format struct{ json, short bool }

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, git commit, build date, Go toolchain and platform.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			switch {
			case format.short:
				_, err := fmt.Fprintln(w, version.Short())
				return err
			case format.json:
				return writeJSON(w, version.GetInfo())
			default:
				_, err := fmt.Fprintln(w, version.String())
				return err
			}
		},
	}

	cmd.Flags().BoolVar(&format.json, "json", false, "Print build info as JSON")
	cmd.Flags().BoolVar(&format.short, "short", false, "Print only the version number (wins over --json)")

	return cmd
}
