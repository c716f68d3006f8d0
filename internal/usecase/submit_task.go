package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nilayanand/fluxbot/internal/domain"
)

// SubmitTaskInput contains the parameters for submitting completed work.
type SubmitTaskInput struct {
	TaskID   string // Defaults to the tracked claim when empty
	Content  string // The completed work
	ProofURL string // Link to the published comment (optional)
	Quiet    bool   // Suppress notifications
}

// SubmitTaskOutput contains the result of a submission.
type SubmitTaskOutput struct {
	CooldownEnd time.Time       // When claiming unblocks again
	Summary     *domain.Summary // Earnings totals, when the server provided them
	TaskID      string
}

// SubmitTask posts completed work and transitions the state machine:
// the claim record is cleared and the post-submission cooldown starts
// immediately, without waiting for the server to report it.
type SubmitTask struct {
	client   domain.PoolClient
	notifier domain.Notifier
	deadline *domain.DeadlineTracker
	cooldown *domain.CooldownTracker
	clock    domain.Clock
	logger   *slog.Logger
	claim    domain.ClaimConfig
	notify   domain.NotifyConfig
}

// NewSubmitTask creates a new SubmitTask use case.
func NewSubmitTask(
	client domain.PoolClient,
	notifier domain.Notifier,
	deadline *domain.DeadlineTracker,
	cooldown *domain.CooldownTracker,
	clock domain.Clock,
	logger *slog.Logger,
	claim domain.ClaimConfig,
	notify domain.NotifyConfig,
) *SubmitTask {
	return &SubmitTask{
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

// Execute submits the work for a task.
// Preconditions:
//   - A task ID is given or a claim is being tracked
//
// Processing:
//   - Submit the work
//   - Clear the claim record and start the local cooldown
//   - Announce completion with earnings totals (best-effort)
func (uc *SubmitTask) Execute(ctx context.Context, in SubmitTaskInput) (*SubmitTaskOutput, error) {
	taskID := in.TaskID
	if taskID == "" {
		rec := uc.deadline.Record()
		if rec == nil {
			return nil, domain.ErrNoClaimRecord
		}
		taskID = rec.TaskID
	}
	if taskID == "" {
		return nil, domain.ErrNoTaskID
	}

	err := uc.client.Submit(ctx, taskID, domain.SubmissionPayload{
		Content:  in.Content,
		ProofURL: in.ProofURL,
	})
	if err != nil {
		return nil, fmt.Errorf("submit task %s: %w", taskID, err)
	}

	now := uc.clock.Now()
	uc.deadline.Clear()
	cooldownEnd := now.Add(uc.claim.Cooldown)
	uc.cooldown.Set(cooldownEnd)
	uc.logger.Info("task submitted", "task", taskID, "cooldown_until", cooldownEnd)

	out := &SubmitTaskOutput{
		CooldownEnd: cooldownEnd,
		TaskID:      taskID,
	}

	// Totals are decoration on the notification; a summary failure must
	// not turn a successful submission into an error.
	summary, err := uc.client.Summary(ctx)
	if err != nil {
		uc.logger.Warn("fetch summary after submit", "error", err)
	} else {
		out.Summary = summary
	}

	if !in.Quiet {
		uc.sendNotification(ctx, domain.Notification{
			Title:    "Task Completed",
			Body:     submitBody(taskID, out.Summary),
			Priority: domain.PriorityDefault,
			Tags:     []string{"tada"},
		})
		uc.sendNotification(ctx, domain.Notification{
			Title: "Cooldown Started",
			Body: fmt.Sprintf("Next claim after %s (%s).",
				formatClock(cooldownEnd, uc.notify.Location),
				formatDuration(uc.claim.Cooldown)),
			Priority: domain.PriorityLow,
			Tags:     []string{"hourglass_flowing_sand"},
		})
	}
	return out, nil
}

func submitBody(taskID string, summary *domain.Summary) string {
	body := fmt.Sprintf("Task %s submitted.", displayTaskID(taskID))
	if summary != nil {
		body += fmt.Sprintf("\nEarned: $%.2f total, $%.2f paid out, $%.2f pending",
			summary.TotalAmount, summary.TotalPayouts, summary.RemainingPayout)
	}
	return body
}

func (uc *SubmitTask) sendNotification(ctx context.Context, n domain.Notification) {
	if err := uc.notifier.Notify(ctx, n); err != nil {
		uc.logger.Warn("notification failed", "title", n.Title, "error", err)
	}
}
