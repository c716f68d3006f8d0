package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/nilayanand/fluxbot/internal/app"
	"github.com/nilayanand/fluxbot/internal/domain"
	"github.com/nilayanand/fluxbot/internal/usecase"
	"github.com/spf13/cobra"
)

// newRunCommand creates the run command for the polling loop.
func newRunCommand(c *app.Container) *cobra.Command {
	var continuous bool

	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the polling loop",
		GroupID: groupBot,
		Long: `Run the bot until interrupted.

Each poll cycle works through a strict priority ladder:
  1. An assigned task is watched for deadline warnings and completion.
  2. An active cooldown is waited out (with ending-soon notices).
  3. Otherwise the pool is scanned and the first safe task is claimed.

The loop requires an ntfy topic URL so lifecycle events reach your
phone; set it in [notify] or via FLUXBOT_NTFY_URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !c.HasNotifier() {
				return fmt.Errorf("%w: set [notify] url or FLUXBOT_NTFY_URL", domain.ErrMissingNotifyURL)
			}
			if continuous {
				c.Config.ApplyContinuousMode()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out, err := c.RunBotUseCase().Execute(ctx, usecase.RunBotInput{})
			if err != nil {
				return err
			}
			c.Logger.Info("polling loop finished", "ticks", out.Ticks)
			return nil
		},
	}

	cmd.Flags().BoolVar(&continuous, "continuous", false, "Tighten pool intervals for rapid checking")
	return cmd
}
