package cli

import (
	"context"
	"fmt"

	"github.com/nilayanand/fluxbot/internal/app"
	"github.com/nilayanand/fluxbot/internal/domain"
	"github.com/nilayanand/fluxbot/internal/usecase"
	"github.com/spf13/cobra"
)

// newStatusCommand creates the status command.
func newStatusCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Show the bot's current phase and earnings",
		GroupID: groupBot,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := login(ctx, c); err != nil {
				return err
			}

			// Reconcile quietly so the printed phase reflects the server.
			checkOut, err := c.CheckAssignmentUseCase().Execute(ctx, usecase.CheckAssignmentInput{Quiet: true})
			if err != nil {
				return err
			}
			if !checkOut.Assigned {
				if _, err := c.SyncCooldownUseCase().Execute(ctx, usecase.SyncCooldownInput{Quiet: true}); err != nil {
					return err
				}
			}

			now := c.Clock.Now()
			location := c.Config.Notify.Location
			phase := domain.DerivePhase(c.Deadline, c.Cooldown, now)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styleHeading.Render("fluxbot status"))
			fmt.Fprintln(out, renderKV("Phase", renderPhase(phase)))

			switch phase {
			case domain.PhaseAssigned:
				rec := c.Deadline.Record()
				fmt.Fprintln(out, renderKV("Task", styleEmphasis.Render(rec.TaskID)))
				fmt.Fprintln(out, renderKV("Deadline", fmt.Sprintf("%s (%s left)",
					renderClock(rec.Deadline, location),
					renderDuration(rec.Deadline.Sub(now)))))
			case domain.PhaseCooldown:
				end, _ := c.Cooldown.End()
				fmt.Fprintln(out, renderKV("Unblocks", fmt.Sprintf("%s (%s left)",
					renderClock(end, location),
					renderDuration(end.Sub(now)))))
			case domain.PhaseIdle:
			}

			// Earnings are decoration; a summary failure only hides them.
			if summary, err := c.Client.Summary(ctx); err == nil {
				fmt.Fprintln(out, renderKV("Earned", fmt.Sprintf("$%.2f total, $%.2f paid out, $%.2f pending",
					summary.TotalAmount, summary.TotalPayouts, summary.RemainingPayout)))
			}
			return nil
		},
	}
	return cmd
}

// login authenticates the container's client once per command invocation.
func login(ctx context.Context, c *app.Container) error {
	result, err := c.Client.Login(ctx)
	if err != nil {
		return err
	}
	// Resume deadline tracking when the server already reports our task.
	if task := result.AssignedTask; task != nil && !c.Deadline.Active() {
		claimedAt := task.AssignedAt
		if claimedAt.IsZero() {
			claimedAt = c.Clock.Now()
		}
		c.Deadline.Begin(task.Key(), task.Type, claimedAt, task.Deadline)
	}
	return nil
}
