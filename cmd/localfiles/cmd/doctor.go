package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/localfiles/internal/preflight"
	"github.com/Aman-CERP/localfiles/internal/ui"
)

func newDoctorCmd() *cobra.Command {
	var jsonOut, verbose, noColor bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the server can run here",
		Long: `Check the index directory, free disk space, the open file limit,
the configured paths and the kernel watch limit.

Exits non-zero when a required check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			checker := preflight.New(
				preflight.WithOutput(cmd.OutOrStdout()),
				preflight.WithVerbose(verbose),
				preflight.WithNoColor(ui.NoColorFor(cmd.OutOrStdout(), noColor)),
			)
			results := checker.RunAll(cmd.Context(), cfg.Index.Path, cfg.Index.Paths)

			if jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else {
				checker.PrintResults(results)
			}

			if checker.HasCriticalFailures(results) {
				return errors.New("system check failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show details for passing checks")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
