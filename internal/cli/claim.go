package cli

import (
	"fmt"

	"github.com/nilayanand/fluxbot/internal/app"
	"github.com/nilayanand/fluxbot/internal/usecase"
	"github.com/spf13/cobra"
)

// newClaimCommand creates the claim command for a one-shot claim attempt.
func newClaimCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "claim [TASK_ID]",
		Short:   "Claim a pool task (the first safe one by default)",
		GroupID: groupTask,
		Long: `Attempt a single claim outside the polling loop.

Without an argument the first task that passes the type and safety
checks is claimed. With a TASK_ID only that task is considered, and it
still has to pass the safety filter.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := login(ctx, c); err != nil {
				return err
			}

			in := usecase.ClaimTaskInput{Quiet: !c.HasNotifier()}
			if len(args) == 1 {
				in.TaskID = args[0]
			}

			out, err := c.ClaimTaskUseCase().Execute(ctx, in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !out.Claimed {
				if in.TaskID != "" {
					return fmt.Errorf("task %s was not claimable (gone, wrong type, or unsafe)", in.TaskID)
				}
				fmt.Fprintln(w, styleLabel.Render(fmt.Sprintf(
					"nothing claimed: %d in pool, %d claimable", out.PoolSize, out.Claimable)))
				return nil
			}

			rec := c.Deadline.Record()
			fmt.Fprintf(w, "%s %s\n", styleOK.Render("claimed"), styleEmphasis.Render(rec.TaskID))
			fmt.Fprintln(w, renderKV("Deadline", fmt.Sprintf("%s (%s to complete)",
				renderClock(rec.Deadline, c.Config.Notify.Location),
				renderDuration(rec.Deadline.Sub(rec.ClaimedAt)))))
			return nil
		},
	}
	return cmd
}
