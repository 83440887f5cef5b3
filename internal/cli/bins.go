package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewResolveBINsCommand creates the resolve-bins command.
func NewResolveBINsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve-bins",
		Short: "Fill in missing building identifiers",
		Long: `Resolve the BIN (Building Identification Number) for every configured
address that does not have one stored yet. Configured BINs are stored
directly; the rest are scraped from the BIS profile page.

Example:
  bismon resolve-bins --config config.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setupMonitor(rootOpts)
			if err != nil {
				return err
			}
			defer env.close()

			results, err := env.engine.ResolveBINs(cmdContext(cmd), env.cfg.Addresses)
			if err != nil {
				return WrapExitError(ExitFailure, "bin resolution failed", err)
			}

			if rootOpts.Format == "json" {
				formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
				return formatter.Success(results)
			}
			for _, r := range results {
				if r.BIN != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%-15s %s  BIN %s\n", r.Status, r.Address, r.BIN)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%-15s %s\n", r.Status, r.Address)
				}
			}
			return nil
		},
	}
}
