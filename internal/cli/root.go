// Package cli provides the command-line interface for fluxbot.
package cli

import (
	"fmt"

	"github.com/nilayanand/fluxbot/internal/app"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupBot  = "bot"
	groupTask = "task"
)

// NewRootCommand creates the root command for fluxbot.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "fluxbot",
		Short: "TaskFlux polling bot",
		Long: `fluxbot watches the TaskFlux pool for Reddit micro-work tasks,
claims the ones that pass its content-safety filter, and tracks the
claim/cooldown/deadline lifecycle with push notifications over ntfy.

Credentials come from fluxbot.toml or the FLUXBOT_EMAIL and
FLUXBOT_PASSWORD environment variables. Safety-rule overrides are read
from rules.yaml next to the config file.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil {
				return nil
			}
			for _, w := range c.Config.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
	}

	root.AddGroup(
		&cobra.Group{ID: groupBot, Title: "Bot Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Commands:"},
	)

	root.AddCommand(
		newRunCommand(c),
		newStatusCommand(c),
		newWatchCommand(c),
		newPoolCommand(c),
		newClaimCommand(c),
		newSubmitCommand(c),
		newCooldownCommand(c),
		newConfigCommand(c),
	)

	return root
}
