package domain

import "time"

// ClaimRecord tracks the task this identity currently holds. It is created
// when a claim succeeds or when a server-side assignment is discovered, and
// deliberately does not survive restarts: on startup the orchestrator
// re-discovers any assignment from the server instead of trusting memory.
// Fields are ordered to minimize memory padding.
type ClaimRecord struct {
	ClaimedAt      time.Time
	Deadline       time.Time
	TaskID         string
	TaskType       string
	WarnedTwoHours bool // 2h-remaining warning sent (monotonic per claim)
	WarnedFinal    bool // 30m-remaining warning sent (monotonic per claim)
}

// DeadlineEvent is a threshold crossing reported by a deadline check.
type DeadlineEvent int

const (
	EventNone DeadlineEvent = iota
	EventWarnTwoHours
	EventWarnFinal
	EventExpired
)

// DeadlineTracker is the Idle -> Claimed -> {Completed, Expired} -> Idle
// state machine for the claimed task. It holds no timers; every poll tick
// re-derives the state from the record and the current time, so the machine
// is re-entrant across process restarts.
type DeadlineTracker struct {
	rec         *ClaimRecord
	window      time.Duration
	warnAt      time.Duration
	finalWarnAt time.Duration
}

// NewDeadlineTracker creates a tracker granting the given completion window
// on claim, with warnings at warnAt and finalWarnAt before the deadline.
func NewDeadlineTracker(window, warnAt, finalWarnAt time.Duration) *DeadlineTracker {
	return &DeadlineTracker{
		window:      window,
		warnAt:      warnAt,
		finalWarnAt: finalWarnAt,
	}
}

// Begin transitions Idle -> Claimed. Both entry paths (a successful local
// claim and passive discovery of a server-side assignment) go through here
// and both reset the warning flags. serverDeadline, when non-zero, takes
// precedence over the computed claimedAt+window deadline.
func (t *DeadlineTracker) Begin(taskID, taskType string, claimedAt, serverDeadline time.Time) {
	deadline := claimedAt.Add(t.window)
	if !serverDeadline.IsZero() {
		deadline = serverDeadline
	}
	t.rec = &ClaimRecord{
		ClaimedAt: claimedAt,
		Deadline:  deadline,
		TaskID:    taskID,
		TaskType:  taskType,
	}
}

// Active reports whether a claimed task is being tracked.
func (t *DeadlineTracker) Active() bool {
	return t.rec != nil
}

// Record returns the current claim record, or nil when idle.
func (t *DeadlineTracker) Record() *ClaimRecord {
	return t.rec
}

// Remaining returns the time left until the deadline, or false when idle.
func (t *DeadlineTracker) Remaining(now time.Time) (time.Duration, bool) {
	if t.rec == nil {
		return 0, false
	}
	return t.rec.Deadline.Sub(now), true
}

// Check evaluates the deadline against now and returns at most one event.
// Expiry always wins; each warning fires exactly once per claim. The caller
// handles the event (notification, cooldown synthesis) and calls Clear on
// Expired or Completed.
func (t *DeadlineTracker) Check(now time.Time) DeadlineEvent {
	if t.rec == nil {
		return EventNone
	}

	remaining := t.rec.Deadline.Sub(now)
	switch {
	case remaining <= 0:
		return EventExpired
	case remaining <= t.warnAt && !t.rec.WarnedTwoHours:
		t.rec.WarnedTwoHours = true
		return EventWarnTwoHours
	case remaining <= t.finalWarnAt && !t.rec.WarnedFinal:
		t.rec.WarnedFinal = true
		return EventWarnFinal
	}
	return EventNone
}

// Clear transitions back to Idle, dropping the record entirely.
func (t *DeadlineTracker) Clear() {
	t.rec = nil
}
