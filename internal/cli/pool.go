package cli

import (
	"fmt"

	"github.com/nilayanand/fluxbot/internal/app"
	"github.com/nilayanand/fluxbot/internal/domain"
	"github.com/spf13/cobra"
)

// newPoolCommand creates the pool command for inspecting claimable tasks.
func newPoolCommand(c *app.Container) *cobra.Command {
	var showRejected bool

	cmd := &cobra.Command{
		Use:     "pool",
		Short:   "List pool tasks and how the safety filter judges them",
		GroupID: groupTask,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := login(ctx, c); err != nil {
				return err
			}

			tasks, err := c.Client.FetchPool(ctx)
			if err != nil {
				return err
			}

			claimable, rejected := domain.SelectClaimable(tasks, c.Config.Claim.AllowedTypes, c.Filter)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styleHeading.Render(fmt.Sprintf("pool: %d tasks, %d claimable", len(tasks), len(claimable))))

			for _, task := range claimable {
				line := fmt.Sprintf("  %s %s", styleOK.Render("✓"), styleEmphasis.Render(task.Key()))
				if sub := task.DisplaySubreddit(); sub != "" {
					line += " " + sub
				}
				if task.Price != "" {
					line += styleLabel.Render(" $" + task.Price)
				}
				fmt.Fprintln(out, line)
			}

			if showRejected {
				for _, r := range rejected {
					fmt.Fprintf(out, "  %s %s %s\n",
						styleBlocked.Render("✗"),
						r.Task.Key(),
						styleLabel.Render(r.Reason))
				}
			} else if len(rejected) > 0 {
				fmt.Fprintln(out, styleLabel.Render(fmt.Sprintf("  (%d rejected, use --rejected to list)", len(rejected))))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showRejected, "rejected", false, "Also list rejected tasks with reasons")
	return cmd
}
