package domain

import (
	"context"
	"time"
)

// PoolClient talks to the TaskFlux API. Implementations belong to infra;
// the core treats every call as fallible and degrades instead of crashing.
type PoolClient interface {
	// Login establishes an authenticated session.
	Login(ctx context.Context) (*LoginResult, error)

	// FetchPool retrieves the publicly claimable tasks.
	FetchPool(ctx context.Context) ([]Task, error)

	// Claim attempts to take ownership of a pool task. A refusal (for
	// example the task was claimed by someone else first) is a normal
	// outcome reported via ClaimResult, not an error.
	Claim(ctx context.Context, taskID string) (*ClaimResult, error)

	// Submit posts the completed work for an assigned task.
	Submit(ctx context.Context, taskID string, payload SubmissionPayload) error

	// AssignmentStatus reports whether this identity currently holds a
	// server-side assignment.
	AssignmentStatus(ctx context.Context) (*AssignmentStatus, error)

	// CooldownStatus reports the server's claim-restriction state.
	CooldownStatus(ctx context.Context) (*CooldownStatus, error)

	// Summary retrieves earnings totals.
	Summary(ctx context.Context) (*Summary, error)
}

// LoginResult carries the authenticated identity and, when the server
// includes it, the task already assigned to that identity.
type LoginResult struct {
	AssignedTask *Task
	UserID       string
}

// ClaimResult is the outcome of a claim attempt.
type ClaimResult struct {
	Task    *Task // Server's snapshot of the claimed task (may be nil)
	Claimed bool
}

// SubmissionPayload is the body of a task submission.
type SubmissionPayload struct {
	Content  string `json:"content"`
	ProofURL string `json:"proofUrl,omitempty"`
}

// AssignmentStatus describes the server-side assignment state.
// Fields are ordered to minimize memory padding.
type AssignmentStatus struct {
	Task     *Task  // Snapshot of the assigned task, when available
	Reason   string // Server-provided reason text
	Assigned bool
}

// CooldownStatus describes the server-side claim restriction.
// A Blocked status with a zero AllowedAfter means the server reported a
// cooldown whose end time could not be parsed; callers must degrade to a
// conservative local estimate rather than permitting unbounded claims.
type CooldownStatus struct {
	AllowedAfter time.Time
	Reason       string
	Blocked      bool
}

// Summary holds earnings totals from the task-summary endpoint.
type Summary struct {
	TotalAmount     float64
	TotalPayouts    float64
	RemainingPayout float64
}

// Notifier delivers human-readable push alerts. Delivery is best-effort;
// implementations retry a small fixed number of times and the core only
// logs ultimate failures.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Notification is a single push alert.
type Notification struct {
	Title    string
	Body     string
	Priority Priority
	Tags     []string
}

// Priority is the ntfy delivery priority.
type Priority string

const (
	PriorityLow     Priority = "low"
	PriorityDefault Priority = "default"
	PriorityHigh    Priority = "high"
	PriorityUrgent  Priority = "urgent"
)

// CooldownStore persists the single cooldown record across restarts.
// A zero time means "no cooldown known".
type CooldownStore interface {
	// Load reads the stored cooldown end. Missing, empty, or corrupt
	// storage yields a zero time, never an error the caller must fear.
	Load() (time.Time, error)

	// Save overwrites the stored record wholesale. A zero end clears it.
	Save(end time.Time) error
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
