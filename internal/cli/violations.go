package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kt1928/building-monitor/internal/address"
	"github.com/kt1928/building-monitor/internal/building"
	"github.com/kt1928/building-monitor/internal/provider"
)

// ViolationsOptions holds flags for the violations command.
type ViolationsOptions struct {
	*RootOptions
	Address string
	Limit   int
}

// violationListing is the success payload of the violations command.
type violationListing struct {
	BIN string               `json:"bin"`
	DOB []building.Violation `json:"dob"`
	ECB []building.Violation `json:"ecb"`
}

// NewViolationsCommand creates the violations command.
func NewViolationsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ViolationsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "violations [bin]",
		Short: "List DOB and OATH/ECB violations for a building",
		Long: `List open-data violation records for a building, keyed by BIN.

Pass the BIN directly, or use --address to look up the BIN stored for a
monitored address (see resolve-bins).

Example:
  bismon violations 3046974
  bismon violations --address "10 Main St, Brooklyn, NY 11201"`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runViolations(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Address, "address", "", "monitored address to look the BIN up for")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "maximum records to print per dataset")

	return cmd
}

func runViolations(opts *ViolationsOptions, cmd *cobra.Command, args []string) error {
	bin, err := resolveTargetBIN(opts, cmd, args)
	if err != nil {
		return err
	}

	ctx := cmdContext(cmd)
	feed := provider.NewOpenDataClient()

	dob, err := feed.ViolationsByBIN(ctx, bin)
	if err != nil {
		return WrapExitError(ExitFailure, "dob violations query failed", err)
	}
	ecb, err := feed.ECBViolationsByBIN(ctx, bin)
	if err != nil {
		return WrapExitError(ExitFailure, "ecb violations query failed", err)
	}

	listing := violationListing{BIN: bin, DOB: dob, ECB: ecb}
	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return formatter.Success(listing)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "BIN %s: %d DOB violation(s), %d OATH/ECB violation(s)\n", bin, len(dob), len(ecb))
	printViolations(out, "DOB", dob, opts.Limit)
	printViolations(out, "OATH/ECB", ecb, opts.Limit)
	return nil
}

// resolveTargetBIN picks the BIN from the positional argument or the
// stored record for --address.
func resolveTargetBIN(opts *ViolationsOptions, cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && opts.Address != "" {
		return "", NewExitError(ExitCommandError, "pass a BIN or --address, not both")
	}
	if len(args) == 1 {
		return args[0], nil
	}
	if opts.Address == "" {
		return "", NewExitError(ExitCommandError, "a BIN argument or --address is required")
	}

	_, st, err := openStore(opts.RootOptions)
	if err != nil {
		return "", err
	}
	defer st.Close()

	bin, err := st.BIN(cmdContext(cmd), address.Normalize(opts.Address))
	if err != nil {
		return "", WrapExitError(ExitCommandError, "bin lookup failed", err)
	}
	if bin == "" {
		return "", NewExitError(ExitCommandError,
			fmt.Sprintf("no BIN stored for %q, run resolve-bins first", opts.Address))
	}
	return bin, nil
}

func printViolations(out io.Writer, label string, violations []building.Violation, limit int) {
	for i, v := range violations {
		if i >= limit {
			fmt.Fprintf(out, "  ... and %d more %s record(s)\n", len(violations)-limit, label)
			return
		}
		desc := v.Description
		if desc == "" {
			desc = v.ViolationType
		}
		fmt.Fprintf(out, "  [%s] %s  %s  %s\n", label, v.IssueDate, v.Status, desc)
	}
}
