package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nilayanand/fluxbot/internal/domain"
)

// CheckAssignmentInput contains the parameters for an assignment check.
type CheckAssignmentInput struct {
	Quiet bool // Suppress notifications (startup reconciliation)
}

// CheckAssignmentOutput contains the result of an assignment check.
// Fields are ordered to minimize memory padding.
type CheckAssignmentOutput struct {
	Record     *domain.ClaimRecord // Claim record after the check (nil when idle)
	Assigned   bool                // A claimed task is being tracked after the check
	Discovered bool                // A server-side assignment was adopted this check
	Completed  bool                // The tracked task was completed out of band
	Expired    bool                // The tracked task missed its deadline
}

// CheckAssignment drives the claimed-task state machine for one tick. It
// reconciles the local claim record with the server's assignment state,
// fires deadline warnings, and handles expiry.
//
// Completion is inferred, never observed directly: when the server stops
// reporting an assignment and starts reporting a cooldown, the task was
// submitted out of band and the record is cleared.
type CheckAssignment struct {
	client   domain.PoolClient
	notifier domain.Notifier
	deadline *domain.DeadlineTracker
	cooldown *domain.CooldownTracker
	clock    domain.Clock
	logger   *slog.Logger
	claim    domain.ClaimConfig
	notify   domain.NotifyConfig
}

// NewCheckAssignment creates a new CheckAssignment use case.
func NewCheckAssignment(
	client domain.PoolClient,
	notifier domain.Notifier,
	deadline *domain.DeadlineTracker,
	cooldown *domain.CooldownTracker,
	clock domain.Clock,
	logger *slog.Logger,
	claim domain.ClaimConfig,
	notify domain.NotifyConfig,
) *CheckAssignment {
	return &CheckAssignment{
		client:   client,
		notifier: notifier,
		deadline: deadline,
		cooldown: cooldown,
		clock:    clock,
		logger:   logger,
		claim:    claim,
		notify:   notify,
	}
}

// Execute performs one assignment check.
// Processing:
//   - Idle: adopt any server-side assignment (passive discovery)
//   - Tracking: detect out-of-band completion via the server state
//   - Tracking: fire at most one deadline event (warning or expiry)
func (uc *CheckAssignment) Execute(ctx context.Context, in CheckAssignmentInput) (*CheckAssignmentOutput, error) {
	now := uc.clock.Now()
	out := &CheckAssignmentOutput{}

	status, err := uc.client.AssignmentStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("check assignment: %w", err)
	}

	switch {
	case !uc.deadline.Active() && status.Assigned:
		uc.adoptAssignment(ctx, status.Task, now, in.Quiet)
		out.Discovered = true

	case uc.deadline.Active() && !status.Assigned:
		uc.resolveVanishedAssignment(ctx, now, in.Quiet, out)
	}

	if uc.deadline.Active() {
		uc.handleDeadlineEvent(ctx, now, out)
	}

	out.Assigned = uc.deadline.Active()
	out.Record = uc.deadline.Record()
	return out, nil
}

// adoptAssignment starts tracking an assignment the server reports but the
// local record does not. This is how the machine survives restarts: the
// record is rebuilt from server state rather than persisted.
func (uc *CheckAssignment) adoptAssignment(ctx context.Context, task *domain.Task, now time.Time, quiet bool) {
	taskID, taskType := "", ""
	claimedAt, serverDeadline := now, time.Time{}
	if task != nil {
		taskID = task.Key()
		taskType = task.Type
		if !task.AssignedAt.IsZero() {
			claimedAt = task.AssignedAt
		}
		serverDeadline = task.Deadline
	}
	uc.deadline.Begin(taskID, taskType, claimedAt, serverDeadline)

	rec := uc.deadline.Record()
	uc.logger.Info("assignment discovered",
		"task", taskID, "deadline", rec.Deadline)

	if quiet {
		return
	}
	uc.sendNotification(ctx, domain.Notification{
		Title: "Task Assigned",
		Body: fmt.Sprintf("Tracking assigned task %s.\nDeadline: %s (%s left)",
			displayTaskID(taskID),
			formatClock(rec.Deadline, uc.notify.Location),
			formatDuration(rec.Deadline.Sub(now))),
		Priority: domain.PriorityHigh,
		Tags:     []string{"clipboard"},
	})
}

// resolveVanishedAssignment handles the server no longer reporting an
// assignment while a record is still tracked. A server cooldown means the
// task was submitted out of band; no cooldown means it was released.
func (uc *CheckAssignment) resolveVanishedAssignment(ctx context.Context, now time.Time, quiet bool, out *CheckAssignmentOutput) {
	rec := uc.deadline.Record()
	uc.deadline.Clear()

	cd, err := uc.client.CooldownStatus(ctx)
	if err != nil {
		uc.logger.Warn("cooldown check after assignment ended", "error", err)
		return
	}
	if !cd.Blocked {
		uc.logger.Info("assignment released by server", "task", rec.TaskID)
		return
	}

	out.Completed = true
	end := cd.AllowedAfter
	if end.IsZero() {
		// Blocked but unparsable end: assume the full cooldown.
		end = now.Add(uc.claim.Cooldown)
	}
	uc.cooldown.SyncFromServer(end, now)
	uc.logger.Info("task completed out of band",
		"task", rec.TaskID, "cooldown_until", end)

	if quiet {
		return
	}
	uc.sendNotification(ctx, domain.Notification{
		Title: "Task Completed",
		Body: fmt.Sprintf("Task %s was submitted.\nNext claim after %s.",
			displayTaskID(rec.TaskID),
			formatClock(end, uc.notify.Location)),
		Priority: domain.PriorityDefault,
		Tags:     []string{"tada"},
	})
}

// handleDeadlineEvent fires at most one deadline event for this tick.
func (uc *CheckAssignment) handleDeadlineEvent(ctx context.Context, now time.Time, out *CheckAssignmentOutput) {
	rec := uc.deadline.Record()
	switch uc.deadline.Check(now) {
	case domain.EventWarnTwoHours:
		uc.sendNotification(ctx, domain.Notification{
			Title: "Deadline Approaching",
			Body: fmt.Sprintf("Task %s is due in %s.\nDeadline: %s",
				displayTaskID(rec.TaskID),
				formatDuration(rec.Deadline.Sub(now)),
				formatClock(rec.Deadline, uc.notify.Location)),
			Priority: domain.PriorityHigh,
			Tags:     []string{"warning"},
		})

	case domain.EventWarnFinal:
		uc.sendNotification(ctx, domain.Notification{
			Title: "Deadline Imminent",
			Body: fmt.Sprintf("Task %s is due in %s. Submit now or it expires.",
				displayTaskID(rec.TaskID),
				formatDuration(rec.Deadline.Sub(now))),
			Priority: domain.PriorityUrgent,
			Tags:     []string{"rotating_light"},
		})

	case domain.EventExpired:
		out.Expired = true
		uc.deadline.Clear()
		uc.startExpiryCooldown(ctx, now)
		uc.sendNotification(ctx, domain.Notification{
			Title: "Task Expired",
			Body: fmt.Sprintf("Task %s missed its deadline and was lost.",
				displayTaskID(rec.TaskID)),
			Priority: domain.PriorityUrgent,
			Tags:     []string{"x"},
		})

	case domain.EventNone:
	}
}

// startExpiryCooldown records the cooldown following a missed deadline. The
// server's value wins when it reports one; otherwise the full local
// cooldown is assumed so the bot does not hammer a blocked claim endpoint.
func (uc *CheckAssignment) startExpiryCooldown(ctx context.Context, now time.Time) {
	cd, err := uc.client.CooldownStatus(ctx)
	if err == nil && cd.Blocked && !cd.AllowedAfter.IsZero() {
		uc.cooldown.SyncFromServer(cd.AllowedAfter, now)
		return
	}
	if err != nil {
		uc.logger.Warn("cooldown check after expiry", "error", err)
	}
	uc.cooldown.Set(now.Add(uc.claim.Cooldown))
}

func (uc *CheckAssignment) sendNotification(ctx context.Context, n domain.Notification) {
	if err := uc.notifier.Notify(ctx, n); err != nil {
		uc.logger.Warn("notification failed", "title", n.Title, "error", err)
	}
}
