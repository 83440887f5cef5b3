package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kt1928/building-monitor/internal/address"
	"github.com/kt1928/building-monitor/internal/building"
	"github.com/kt1928/building-monitor/internal/store"
)

// NewOwnersCommand creates the owners command group.
func NewOwnersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "owners",
		Short: "Manage notification recipients",
	}

	cmd.AddCommand(newOwnersAddCommand(rootOpts))
	cmd.AddCommand(newOwnersUpdateCommand(rootOpts))
	cmd.AddCommand(newOwnersListCommand(rootOpts))
	cmd.AddCommand(newOwnersAssignCommand(rootOpts))
	cmd.AddCommand(newOwnersUnassignCommand(rootOpts))
	cmd.AddCommand(newOwnersRemoveCommand(rootOpts))

	return cmd
}

func newOwnersAddCommand(rootOpts *RootOptions) *cobra.Command {
	var owner building.Owner

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a notification recipient",
		Long: `Add an owner who can be assigned monitored addresses.

Example:
  bismon owners add --name "Main St LLC" --webhook https://discord.com/api/webhooks/...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			id, err := st.AddOwner(cmdContext(cmd), owner)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to add owner", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added owner %d: %s\n", id, owner.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner.Name, "name", "", "owner name (required)")
	cmd.Flags().StringVar(&owner.Webhook, "webhook", "", "webhook URL for alerts")
	cmd.Flags().StringVar(&owner.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&owner.Phone, "phone", "", "contact phone")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newOwnersUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var webhook, email, phone string

	cmd := &cobra.Command{
		Use:           "update <owner-id>",
		Short:         "Update a recipient's notification endpoints",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid owner id %q", args[0]))
			}

			_, st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmdContext(cmd)
			if _, err := st.Owner(ctx, ownerID); err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("owner %d not found", ownerID), err)
			}
			if err := st.UpdateOwnerSinks(ctx, ownerID, webhook, email, phone); err != nil {
				return WrapExitError(ExitCommandError, "failed to update owner", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated owner %d\n", ownerID)
			return nil
		},
	}

	cmd.Flags().StringVar(&webhook, "webhook", "", "webhook URL for alerts")
	cmd.Flags().StringVar(&email, "email", "", "contact email")
	cmd.Flags().StringVar(&phone, "phone", "", "contact phone")

	return cmd
}

// ownerListing is one row of the owners list output.
type ownerListing struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Webhook   bool     `json:"webhook"`
	Addresses []string `json:"addresses"`
}

func newOwnersListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List recipients and their assigned addresses",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmdContext(cmd)
			owners, err := st.Owners(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list owners", err)
			}

			listings := make([]ownerListing, 0, len(owners))
			for _, o := range owners {
				addrs, err := st.AddressesForOwner(ctx, o.ID)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to list addresses", err)
				}
				listings = append(listings, ownerListing{
					ID: o.ID, Name: o.Name, Webhook: o.Webhook != "", Addresses: addrs,
				})
			}

			if rootOpts.Format == "json" {
				formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
				return formatter.Success(listings)
			}

			if len(listings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No owners configured.")
				return nil
			}
			for _, l := range listings {
				hook := "no webhook"
				if l.Webhook {
					hook = "webhook set"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t(%s)\n", l.ID, l.Name, hook)
				for _, a := range l.Addresses {
					fmt.Fprintf(cmd.OutOrStdout(), "\t- %s\n", a)
				}
			}
			return nil
		},
	}
}

func newOwnersAssignCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <owner-id> <address>",
		Short: "Assign an address to a recipient",
		Long: `Assign a monitored address to an owner. The address is normalized
before storage, so casing and spacing do not matter.

Example:
  bismon owners assign 3 "10 Main St, Brooklyn, NY 11201"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssignment(rootOpts, cmd, args, (*store.Store).Assign, "Assigned")
		},
	}
}

func newOwnersUnassignCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "unassign <owner-id> <address>",
		Short:         "Remove an address assignment",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssignment(rootOpts, cmd, args, (*store.Store).Unassign, "Unassigned")
		},
	}
}

func runAssignment(rootOpts *RootOptions, cmd *cobra.Command, args []string,
	op func(*store.Store, context.Context, string, int64) error, verb string) error {

	ownerID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid owner id %q", args[0]))
	}
	key := address.Normalize(args[1])
	if key == "" {
		return NewExitError(ExitCommandError, "address must not be empty")
	}

	_, st, err := openStore(rootOpts)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmdContext(cmd)
	if _, err := st.Owner(ctx, ownerID); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("owner %d not found", ownerID), err)
	}
	if err := op(st, ctx, key, ownerID); err != nil {
		return WrapExitError(ExitCommandError, strings.ToLower(verb)+" failed", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s for owner %d\n", verb, key, ownerID)
	return nil
}

func newOwnersRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <owner-id>",
		Short:         "Delete a recipient and its assignments",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid owner id %q", args[0]))
			}

			_, st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteOwner(cmdContext(cmd), ownerID); err != nil {
				return WrapExitError(ExitCommandError, "failed to delete owner", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed owner %d\n", ownerID)
			return nil
		},
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
