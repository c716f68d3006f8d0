package cli

import (
	"fmt"
	"time"

	"github.com/nilayanand/fluxbot/internal/app"
	"github.com/nilayanand/fluxbot/internal/usecase"
	"github.com/spf13/cobra"
)

// newCooldownCommand creates the cooldown command and its subcommands.
func newCooldownCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cooldown",
		Short:   "Show the claim cooldown (local and server view)",
		GroupID: groupBot,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := login(ctx, c); err != nil {
				return err
			}

			out, err := c.SyncCooldownUseCase().Execute(ctx, usecase.SyncCooldownInput{Quiet: true})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !out.Active {
				fmt.Fprintln(w, styleOK.Render("no cooldown, claiming is allowed"))
				return nil
			}
			fmt.Fprintln(w, styleBlocked.Render("cooldown active"))
			fmt.Fprintln(w, renderKV("Unblocks", fmt.Sprintf("%s (%s left)",
				renderClock(out.End, c.Config.Notify.Location),
				renderDuration(out.Remaining))))
			if out.Adopted {
				fmt.Fprintln(w, styleLabel.Render("  (adopted from server just now)"))
			}
			return nil
		},
	}

	cmd.AddCommand(newCooldownClearCommand(c))
	return cmd
}

// newCooldownClearCommand creates the cooldown clear subcommand.
func newCooldownClearCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop the locally stored cooldown record",
		Long: `Drop the locally stored cooldown record.

This only clears local state. If the server still enforces a cooldown
the next sync adopts it again; use this after the server state changed
out of band (support reset, account change).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.Cooldown.Set(time.Time{})
			fmt.Fprintln(cmd.OutOrStdout(), "local cooldown record cleared")
			return nil
		},
	}
}
