package status

import "github.com/charmbracelet/lipgloss"

// Colors used in the status dashboard.
var (
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorMuted   = lipgloss.Color("#9CA3AF") // Light gray
)

// Styles holds the styles for the status dashboard.
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Idle     lipgloss.Style
	Assigned lipgloss.Style
	Cooldown lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
	Frame    lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1),
		Label:    lipgloss.NewStyle().Foreground(ColorMuted).Width(10),
		Value:    lipgloss.NewStyle().Bold(true),
		Idle:     lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Assigned: lipgloss.NewStyle().Foreground(ColorWarning).Bold(true),
		Cooldown: lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(ColorError),
		Help:     lipgloss.NewStyle().Foreground(ColorMuted).MarginTop(1),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(1, 2),
	}
}
