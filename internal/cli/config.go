package cli

import (
	"fmt"
	"strings"

	"github.com/nilayanand/fluxbot/internal/app"
	"github.com/spf13/cobra"
)

// newConfigCommand creates the config command showing the effective,
// merged configuration.
func newConfigCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "config",
		Short:   "Show the effective configuration",
		GroupID: groupBot,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.Config
			w := cmd.OutOrStdout()

			fmt.Fprintln(w, styleHeading.Render("[api]"))
			fmt.Fprintln(w, renderKV("base_url", cfg.API.BaseURL))
			fmt.Fprintln(w, renderKV("email", maskSecret(cfg.API.Email)))
			fmt.Fprintln(w, renderKV("password", maskSecret(cfg.API.Password)))

			fmt.Fprintln(w, styleHeading.Render("[notify]"))
			fmt.Fprintln(w, renderKV("url", cfg.Notify.URL))
			fmt.Fprintln(w, renderKV("location", cfg.Notify.Location))

			fmt.Fprintln(w, styleHeading.Render("[poll]"))
			fmt.Fprintln(w, renderKV("continuous", fmt.Sprintf("%t", cfg.Poll.Continuous)))
			fmt.Fprintln(w, renderKV("assigned", cfg.Poll.AssignedInterval.String()))
			fmt.Fprintln(w, renderKV("pool", fmt.Sprintf("%s .. %s (step %s after %d empty)",
				cfg.Poll.PoolInterval, cfg.Poll.PoolMaxInterval,
				cfg.Poll.PoolBackoffStep, cfg.Poll.EmptyChecksBeforeBackoff)))

			fmt.Fprintln(w, styleHeading.Render("[claim]"))
			fmt.Fprintln(w, renderKV("types", strings.Join(cfg.Claim.AllowedTypes, ", ")))
			fmt.Fprintln(w, renderKV("window", cfg.Claim.Window.String()))
			fmt.Fprintln(w, renderKV("cooldown", cfg.Claim.Cooldown.String()))
			fmt.Fprintln(w, renderKV("warnings", fmt.Sprintf("%s / %s before deadline",
				cfg.Claim.WarnAt, cfg.Claim.FinalWarnAt)))

			fmt.Fprintln(w, styleHeading.Render("[filter]"))
			fmt.Fprintln(w, renderKV("denylist", fmt.Sprintf("%d phrases", len(cfg.Filter.Denylist))))
			fmt.Fprintln(w, renderKV("thresholds", fmt.Sprintf(
				"uppercase %.2f, special %.2f, emoji %d, min length %d, max run %d",
				cfg.Filter.MaxUppercaseRatio, cfg.Filter.MaxSpecialCharRatio,
				cfg.Filter.MaxPromoEmoji, cfg.Filter.MinContentLength, cfg.Filter.MaxCharRun)))

			fmt.Fprintln(w, styleHeading.Render("[hours]"))
			if cfg.Hours.Enabled {
				fmt.Fprintln(w, renderKV("window", fmt.Sprintf("%02d:00-%02d:59 %s",
					cfg.Hours.Start, cfg.Hours.End, cfg.Hours.Location)))
			} else {
				fmt.Fprintln(w, renderKV("window", "disabled (claims at any hour)"))
			}
			return nil
		},
	}
}

// maskSecret hides all but a hint of a credential.
func maskSecret(s string) string {
	if s == "" {
		return styleLabel.Render("(unset)")
	}
	if i := strings.IndexByte(s, '@'); i > 2 {
		return s[:2] + "***" + s[i:]
	}
	return "***"
}
