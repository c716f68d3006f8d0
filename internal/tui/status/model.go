// Package status implements the live dashboard behind `fluxbot watch`.
package status

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nilayanand/fluxbot/internal/app"
	"github.com/nilayanand/fluxbot/internal/domain"
	"github.com/nilayanand/fluxbot/internal/usecase"
)

const (
	refreshEvery   = 30 * time.Second
	refreshTimeout = 20 * time.Second
)

// Model is the status dashboard model. It redraws the countdowns every
// second and refreshes server state every half minute (or on demand).
// Fields are ordered to minimize memory padding.
type Model struct {
	container *app.Container
	summary   *domain.Summary
	err       error

	spinner spinner.Model
	styles  Styles

	state    State
	now      time.Time
	lastSync time.Time
	width    int

	refreshing bool
}

// New creates a new status dashboard model.
func New(c *app.Container) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	now := c.Clock.Now()
	return &Model{
		container: c,
		spinner:   sp,
		styles:    DefaultStyles(),
		state:     snapshotState(c, now),
		now:       now,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.refreshing = true
	return tea.Batch(m.spinner.Tick, m.tickCmd(), m.refreshCmd())
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if !m.refreshing {
				m.refreshing = true
				return m, m.refreshCmd()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case MsgTick:
		m.now = msg.Now
		cmds := []tea.Cmd{m.tickCmd()}
		if !m.refreshing && msg.Now.Sub(m.lastSync) >= refreshEvery {
			m.refreshing = true
			cmds = append(cmds, m.refreshCmd())
		}
		return m, tea.Batch(cmds...)

	case MsgRefreshed:
		m.refreshing = false
		m.err = msg.Err
		m.lastSync = msg.At
		m.state = msg.State
		if msg.Err == nil {
			m.summary = msg.Summary
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the dashboard.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("fluxbot"))
	b.WriteString("\n")

	b.WriteString(m.row("Phase", m.renderPhase(m.state.Phase)))

	switch m.state.Phase {
	case domain.PhaseAssigned:
		b.WriteString(m.row("Task", m.styles.Value.Render(m.state.TaskID)))
		b.WriteString(m.row("Deadline", fmt.Sprintf("%s (%s)",
			m.state.Deadline.Format("Mon 15:04"), countdown(m.state.Deadline.Sub(m.now)))))
	case domain.PhaseCooldown:
		b.WriteString(m.row("Unblocks", fmt.Sprintf("%s (%s)",
			m.state.CooldownEnd.Format("Mon 15:04"), countdown(m.state.CooldownEnd.Sub(m.now)))))
	case domain.PhaseIdle:
		b.WriteString(m.row("Pool", "claiming is allowed"))
	}

	if m.summary != nil {
		b.WriteString(m.row("Earned", fmt.Sprintf("$%.2f total · $%.2f pending",
			m.summary.TotalAmount, m.summary.RemainingPayout)))
	}

	switch {
	case m.refreshing:
		b.WriteString(m.row("Sync", m.spinner.View()+" refreshing"))
	case m.err != nil:
		b.WriteString(m.row("Sync", m.styles.Error.Render(m.err.Error())))
	case !m.lastSync.IsZero():
		b.WriteString(m.row("Sync", fmt.Sprintf("%ds ago", int(m.now.Sub(m.lastSync).Seconds()))))
	}

	b.WriteString(m.styles.Help.Render("r refresh · q quit"))
	return m.styles.Frame.Render(b.String())
}

func (m *Model) row(label, value string) string {
	return m.styles.Label.Render(label) + " " + value + "\n"
}

func (m *Model) renderPhase(phase domain.Phase) string {
	switch phase {
	case domain.PhaseAssigned:
		return m.styles.Assigned.Render(phase.Display())
	case domain.PhaseCooldown:
		return m.styles.Cooldown.Render(phase.Display())
	default:
		return m.styles.Idle.Render(phase.Display())
	}
}

// tickCmd schedules the next per-second redraw.
func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return MsgTick{Now: t}
	})
}

// refreshCmd reconciles trackers with the server off the UI goroutine.
// The trackers are only touched here (the refreshing flag keeps a single
// refresh in flight) and the result is delivered as a State snapshot, so
// View never reads them concurrently.
func (m *Model) refreshCmd() tea.Cmd {
	c := m.container
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		out, err := c.CheckAssignmentUseCase().Execute(ctx, usecase.CheckAssignmentInput{Quiet: true})
		if err != nil {
			return MsgRefreshed{Err: err, State: snapshotState(c, c.Clock.Now()), At: c.Clock.Now()}
		}
		if !out.Assigned {
			if _, err := c.SyncCooldownUseCase().Execute(ctx, usecase.SyncCooldownInput{Quiet: true}); err != nil {
				return MsgRefreshed{Err: err, State: snapshotState(c, c.Clock.Now()), At: c.Clock.Now()}
			}
		}

		// Earnings are optional decoration on the dashboard.
		summary, _ := c.Client.Summary(ctx)
		return MsgRefreshed{Summary: summary, State: snapshotState(c, c.Clock.Now()), At: c.Clock.Now()}
	}
}

// snapshotState copies the tracker state into a State. Safe only where
// nothing else is touching the trackers: during New, before the program
// starts, and at the end of the single in-flight refresh goroutine.
func snapshotState(c *app.Container, now time.Time) State {
	st := State{Phase: domain.DerivePhase(c.Deadline, c.Cooldown, now)}
	if rec := c.Deadline.Record(); rec != nil {
		st.TaskID = rec.TaskID
		st.Deadline = rec.Deadline
	}
	if end, ok := c.Cooldown.End(); ok {
		st.CooldownEnd = end
	}
	return st
}

// countdown renders a remaining duration as h:mm:ss.
func countdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	mnt := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, mnt, s)
}
