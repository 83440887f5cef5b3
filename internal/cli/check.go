package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kt1928/building-monitor/internal/building"
	"github.com/kt1928/building-monitor/internal/engine"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	OwnerID int64
}

// checkSummary is the success payload of a check run.
type checkSummary struct {
	Checked    int `json:"checked"`
	Changes    int `json:"changes"`
	Complaints int `json:"new_complaints"`
	Failed     int `json:"failed"`
	Delivered  int `json:"notifications_delivered,omitempty"`
}

func (s checkSummary) String() string {
	return fmt.Sprintf("Checked %d address(es): %d change(s), %d new complaint(s), %d failure(s)",
		s.Checked, s.Changes, s.Complaints, s.Failed)
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one monitoring pass now",
		Long: `Run a single monitoring pass over the configured addresses.

With --owner, only the addresses assigned to that owner are checked and
only that owner is notified.

Example:
  bismon check --config config.yaml
  bismon check --owner 3 --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.OwnerID, "owner", 0, "check only this owner's addresses")

	return cmd
}

func runCheck(opts *CheckOptions, cmd *cobra.Command) error {
	env, err := setupMonitor(opts.RootOptions)
	if err != nil {
		return err
	}
	defer env.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	report, err := env.engine.Run(ctx, engine.RunOptions{
		Addresses:     env.cfg.Addresses,
		OwnerID:       opts.OwnerID,
		GlobalWebhook: env.cfg.Webhook,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "monitoring run failed", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return formatter.Success(summarize(report))
}

func summarize(report *building.Report) checkSummary {
	s := checkSummary{Checked: len(report.Checked), Failed: len(report.Failed)}
	for _, changes := range report.StatusChanges {
		s.Changes += len(changes)
	}
	for _, alerts := range report.NewComplaints {
		s.Complaints += len(alerts)
	}
	return s
}
