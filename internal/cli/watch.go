package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nilayanand/fluxbot/internal/app"
	"github.com/nilayanand/fluxbot/internal/tui/status"
	"github.com/spf13/cobra"
)

// newWatchCommand creates the watch command launching the live dashboard.
func newWatchCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		Short:   "Live terminal dashboard of the bot's state",
		GroupID: groupBot,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := login(ctx, c); err != nil {
				return err
			}
			program := tea.NewProgram(status.New(c), tea.WithContext(ctx))
			_, err := program.Run()
			return err
		},
	}
}
