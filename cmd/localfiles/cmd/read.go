package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <path>",
		Short: "Print an indexed file",
		Long:  `Print the current contents of a file. The file must be in the index.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			coord, err := openCoordinator(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = coord.Close() }()

			content, err := coord.ReadFile(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		},
	}
}
