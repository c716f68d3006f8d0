package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/nilayanand/fluxbot/internal/domain"
)

// Colors used in command output.
var (
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Amber
	colorError   = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#9CA3AF") // Light gray
	colorAccent  = lipgloss.Color("#7C3AED") // Purple
)

var (
	styleHeading  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleLabel    = lipgloss.NewStyle().Foreground(colorMuted)
	styleOK       = lipgloss.NewStyle().Foreground(colorSuccess)
	styleWarn     = lipgloss.NewStyle().Foreground(colorWarning)
	styleBlocked  = lipgloss.NewStyle().Foreground(colorError)
	styleEmphasis = lipgloss.NewStyle().Bold(true)
)

// renderPhase colors the phase name by its meaning.
func renderPhase(phase domain.Phase) string {
	switch phase {
	case domain.PhaseAssigned:
		return styleWarn.Render(phase.Display())
	case domain.PhaseCooldown:
		return styleBlocked.Render(phase.Display())
	default:
		return styleOK.Render(phase.Display())
	}
}

// renderKV prints an aligned label/value pair.
func renderKV(label, value string) string {
	return fmt.Sprintf("  %s %s", styleLabel.Render(fmt.Sprintf("%-12s", label+":")), value)
}

// renderDuration renders a duration as compact hours/minutes text.
func renderDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// renderClock renders an instant in the configured display timezone.
func renderClock(t time.Time, location string) string {
	if location != "" {
		if loc, err := time.LoadLocation(location); err == nil {
			t = t.In(loc)
		}
	}
	return t.Format("Mon 2 Jan 15:04 MST")
}
