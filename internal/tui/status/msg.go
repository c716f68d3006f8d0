package status

import (
	"time"

	"github.com/nilayanand/fluxbot/internal/domain"
)

// MsgTick drives the per-second countdown redraw.
type MsgTick struct {
	Now time.Time
}

// State is a point-in-time copy of the tracker state. The trackers are
// shared with the refresh goroutine and are not safe for concurrent use,
// so View renders from the last snapshot instead of reading them.
type State struct {
	Deadline    time.Time
	CooldownEnd time.Time
	TaskID      string
	Phase       domain.Phase
}

// MsgRefreshed is sent when a server refresh finished. It always carries
// a fresh State, even on error.
type MsgRefreshed struct {
	Summary *domain.Summary
	State   State
	Err     error
	At      time.Time
}
