package domain

import "time"

// Phase is the bot's derived lifecycle phase. It is never stored; it is
// recomputed from the trackers on every check so it cannot drift from the
// primary data. The three phases are mutually exclusive, in priority order
// Assigned > Cooldown > Idle.
type Phase string

const (
	PhaseAssigned Phase = "assigned" // A claimed task is being tracked
	PhaseCooldown Phase = "cooldown" // A cooldown end is stored and in the future
	PhaseIdle     Phase = "idle"     // Neither
)

// DerivePhase computes the current phase from the trackers.
func DerivePhase(deadline *DeadlineTracker, cooldown *CooldownTracker, now time.Time) Phase {
	if deadline.Active() {
		return PhaseAssigned
	}
	if cooldown.IsActive(now) {
		return PhaseCooldown
	}
	return PhaseIdle
}

// Display returns a human-readable representation of the phase.
func (p Phase) Display() string {
	switch p {
	case PhaseAssigned:
		return "Task Assigned"
	case PhaseCooldown:
		return "Cooldown"
	case PhaseIdle:
		return "Idle"
	default:
		return string(p)
	}
}
