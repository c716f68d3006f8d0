package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/nilayanand/fluxbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand_Help(t *testing.T) {
	root := NewRootCommand(nil, "test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--help"})

	err := root.Execute()

	require.NoError(t, err)
	help := out.String()
	assert.Contains(t, help, "fluxbot")
	for _, name := range []string{"run", "status", "watch", "pool", "claim", "submit", "cooldown", "config"} {
		assert.Contains(t, help, name)
	}
}

func TestNewRootCommand_Version(t *testing.T) {
	root := NewRootCommand(nil, "1.2.3")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "1.2.3")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "bo***@example.com", maskSecret("bot@example.com"))
	assert.Equal(t, "***", maskSecret("hunter2"))
	assert.Contains(t, maskSecret(""), "unset")
}

func TestRenderDuration(t *testing.T) {
	assert.Equal(t, "2h 5m", renderDuration(2*time.Hour+5*time.Minute))
	assert.Equal(t, "2h", renderDuration(2*time.Hour))
	assert.Equal(t, "45m", renderDuration(45*time.Minute))
	assert.Equal(t, "0m", renderDuration(-time.Minute))
}

func TestRenderPhase(t *testing.T) {
	// Styles may be stripped in tests; the display text must survive.
	assert.Contains(t, renderPhase(domain.PhaseAssigned), "Task Assigned")
	assert.Contains(t, renderPhase(domain.PhaseCooldown), "Cooldown")
	assert.Contains(t, renderPhase(domain.PhaseIdle), "Idle")
}
