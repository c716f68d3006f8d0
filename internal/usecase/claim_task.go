package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nilayanand/fluxbot/internal/domain"
)

// ClaimTaskInput contains the parameters for a claim attempt.
type ClaimTaskInput struct {
	TaskID string // Claim this specific task instead of scanning the pool
	Quiet  bool   // Suppress the claim notification
}

// ClaimTaskOutput contains the result of a claim attempt.
// Fields are ordered to minimize memory padding.
type ClaimTaskOutput struct {
	Task       *domain.Task       // The claimed task (nil when nothing was claimed)
	Rejections []domain.Rejection // Pool tasks skipped and why
	PoolSize   int                // Tasks seen in the pool
	Claimable  int                // Tasks that passed type and safety checks
	Claimed    bool
}

// ClaimTask scans the pool and claims the first task that passes the type
// and content-safety checks. A refusal (another worker claimed it first)
// is a normal outcome, not an error; the next poll retries.
type ClaimTask struct {
	client   domain.PoolClient
	notifier domain.Notifier
	deadline *domain.DeadlineTracker
	filter   *domain.SafetyFilter
	clock    domain.Clock
	logger   *slog.Logger
	claim    domain.ClaimConfig
	notify   domain.NotifyConfig
}

// NewClaimTask creates a new ClaimTask use case.
func NewClaimTask(
	client domain.PoolClient,
	notifier domain.Notifier,
	deadline *domain.DeadlineTracker,
	filter *domain.SafetyFilter,
	clock domain.Clock,
	logger *slog.Logger,
	claim domain.ClaimConfig,
	notify domain.NotifyConfig,
) *ClaimTask {
	return &ClaimTask{
		client:   client,
		notifier: notifier,
		deadline: deadline,
		filter:   filter,
		clock:    clock,
		logger:   logger,
		claim:    claim,
		notify:   notify,
	}
}

// Execute performs one claim attempt.
// Processing:
//   - Fetch the pool and split it into claimable and rejected tasks
//   - Claim the first claimable task (pool order decides ties)
//   - On success, start deadline tracking and announce the claim
func (uc *ClaimTask) Execute(ctx context.Context, in ClaimTaskInput) (*ClaimTaskOutput, error) {
	tasks, err := uc.client.FetchPool(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch pool: %w", err)
	}

	out := &ClaimTaskOutput{PoolSize: len(tasks)}

	claimable, rejected := domain.SelectClaimable(tasks, uc.claim.AllowedTypes, uc.filter)
	out.Rejections = rejected
	out.Claimable = len(claimable)
	for _, r := range rejected {
		uc.logger.Debug("task skipped", "task", r.Task.Key(), "reason", r.Reason)
	}

	target, ok := uc.pickTarget(claimable, in.TaskID)
	if !ok {
		uc.logger.Debug("nothing claimable", "pool", out.PoolSize)
		return out, nil
	}

	result, err := uc.client.Claim(ctx, target.Key())
	if err != nil {
		return nil, fmt.Errorf("claim task %s: %w", target.Key(), err)
	}
	if !result.Claimed {
		uc.logger.Info("claim refused", "task", target.Key())
		return out, nil
	}

	// The server's snapshot of the claimed task supersedes the pool one:
	// it may carry the authoritative deadline.
	claimed := target
	if result.Task != nil {
		claimed = *result.Task
		if claimed.Key() == "" {
			claimed.ID = target.Key()
		}
	}

	now := uc.clock.Now()
	uc.deadline.Begin(claimed.Key(), claimed.Type, now, claimed.Deadline)
	rec := uc.deadline.Record()
	uc.logger.Info("task claimed",
		"task", rec.TaskID, "type", rec.TaskType, "deadline", rec.Deadline)

	out.Claimed = true
	out.Task = &claimed

	if !in.Quiet {
		uc.sendNotification(ctx, domain.Notification{
			Title:    "Task Claimed",
			Body:     claimBody(&claimed, rec, uc.notify.Location),
			Priority: domain.PriorityHigh,
			Tags:     []string{"white_check_mark"},
		})
	}
	return out, nil
}

// pickTarget chooses the task to claim: the requested ID when given and
// still claimable, otherwise the first claimable task.
func (uc *ClaimTask) pickTarget(claimable []domain.Task, taskID string) (domain.Task, bool) {
	if taskID == "" {
		if len(claimable) == 0 {
			return domain.Task{}, false
		}
		return claimable[0], true
	}
	for _, task := range claimable {
		if task.Key() == taskID {
			return task, true
		}
	}
	return domain.Task{}, false
}

func claimBody(task *domain.Task, rec *domain.ClaimRecord, location string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Claimed %s", displayTaskID(rec.TaskID))
	if sub := task.DisplaySubreddit(); sub != "" {
		fmt.Fprintf(&b, " in %s", sub)
	}
	if task.Price != "" {
		fmt.Fprintf(&b, " ($%s)", task.Price)
	}
	fmt.Fprintf(&b, ".\nDeadline: %s (%s to complete)",
		formatClock(rec.Deadline, location),
		formatDuration(rec.Deadline.Sub(rec.ClaimedAt)))
	if task.Title != "" {
		fmt.Fprintf(&b, "\n%s", task.Title)
	}
	if task.SubmitURL != "" {
		fmt.Fprintf(&b, "\nSubmit: %s", task.SubmitURL)
	}
	return b.String()
}

func (uc *ClaimTask) sendNotification(ctx context.Context, n domain.Notification) {
	if err := uc.notifier.Notify(ctx, n); err != nil {
		uc.logger.Warn("notification failed", "title", n.Title, "error", err)
	}
}
