package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nilayanand/fluxbot/internal/domain"
)

// sleepChunk bounds each sleep slice so a cancelled context is noticed
// within about a second even during long cooldown waits.
const sleepChunk = time.Second

// RunBotInput contains the parameters for the polling loop.
type RunBotInput struct{}

// RunBotOutput contains the result of a finished polling loop.
type RunBotOutput struct {
	Ticks int // Completed poll cycles
}

// RunBot is the long-running orchestrator. Each tick works through a
// strict priority ladder: an assigned task is watched first, an active
// cooldown is waited out second, and only an idle bot scans the pool.
// Every tick failure backs off and retries; only login failure and
// context cancellation end the loop.
type RunBot struct {
	client   domain.PoolClient
	notifier domain.Notifier
	deadline *domain.DeadlineTracker
	cooldown *domain.CooldownTracker
	clock    domain.Clock
	logger   *slog.Logger
	config   *domain.Config

	check   *CheckAssignment
	sync    *SyncCooldown
	claimer *ClaimTask

	// Ending-notice bookkeeping: one notice per threshold per cooldown.
	noticeEnd   time.Time
	noticesSent map[time.Duration]bool
	emptyChecks int
}

// NewRunBot creates a new RunBot use case.
func NewRunBot(
	client domain.PoolClient,
	notifier domain.Notifier,
	deadline *domain.DeadlineTracker,
	cooldown *domain.CooldownTracker,
	clock domain.Clock,
	logger *slog.Logger,
	config *domain.Config,
	check *CheckAssignment,
	sync *SyncCooldown,
	claimer *ClaimTask,
) *RunBot {
	return &RunBot{
		client:      client,
		notifier:    notifier,
		deadline:    deadline,
		cooldown:    cooldown,
		clock:       clock,
		logger:      logger,
		config:      config,
		check:       check,
		sync:        sync,
		claimer:     claimer,
		noticesSent: make(map[time.Duration]bool),
	}
}

// Execute runs the polling loop until the context is cancelled.
// Processing:
//   - Login and reconcile local state with the server (quietly)
//   - Announce the starting phase once
//   - Tick forever: check assignment, sync cooldown, maybe claim
func (uc *RunBot) Execute(ctx context.Context, _ RunBotInput) (*RunBotOutput, error) {
	if err := uc.startup(ctx); err != nil {
		return nil, err
	}

	out := &RunBotOutput{}
	for {
		if ctx.Err() != nil {
			break
		}

		interval, err := uc.tick(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			uc.logger.Error("poll tick failed", "error", err)
			interval = uc.config.Poll.ErrorBackoff
		} else {
			out.Ticks++
		}

		if !uc.sleep(ctx, interval) {
			break
		}
	}

	uc.announceStop()
	return out, nil
}

// startup logs in and rebuilds local state from the server before the
// first tick, so a restart resumes mid-claim or mid-cooldown without
// replaying notifications.
func (uc *RunBot) startup(ctx context.Context) error {
	login, err := uc.client.Login(ctx)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	uc.logger.Info("logged in", "user", login.UserID)

	if task := login.AssignedTask; task != nil && !uc.deadline.Active() {
		claimedAt := task.AssignedAt
		if claimedAt.IsZero() {
			claimedAt = uc.clock.Now()
		}
		uc.deadline.Begin(task.Key(), task.Type, claimedAt, task.Deadline)
		uc.logger.Info("resuming assigned task", "task", task.Key())
	}

	if _, err := uc.check.Execute(ctx, CheckAssignmentInput{Quiet: true}); err != nil {
		uc.logger.Warn("startup assignment check", "error", err)
	}
	if !uc.deadline.Active() {
		if _, err := uc.sync.Execute(ctx, SyncCooldownInput{Quiet: true}); err != nil {
			uc.logger.Warn("startup cooldown sync", "error", err)
		}
	}

	uc.announceStart(ctx)
	return nil
}

// announceStart sends exactly one startup notification reflecting the
// reconciled phase.
func (uc *RunBot) announceStart(ctx context.Context) {
	now := uc.clock.Now()
	location := uc.config.Notify.Location

	var n domain.Notification
	switch domain.DerivePhase(uc.deadline, uc.cooldown, now) {
	case domain.PhaseAssigned:
		rec := uc.deadline.Record()
		n = domain.Notification{
			Title: "Task Assigned",
			Body: fmt.Sprintf("Bot started with task %s in progress.\nDeadline: %s (%s left)",
				displayTaskID(rec.TaskID),
				formatClock(rec.Deadline, location),
				formatDuration(rec.Deadline.Sub(now))),
			Priority: domain.PriorityHigh,
			Tags:     []string{"clipboard"},
		}
	case domain.PhaseCooldown:
		end, _ := uc.cooldown.End()
		n = domain.Notification{
			Title: "Cooldown Active",
			Body: fmt.Sprintf("Bot started during cooldown.\nNext claim after %s (%s left).",
				formatClock(end, location),
				formatDuration(end.Sub(now))),
			Priority: domain.PriorityDefault,
			Tags:     []string{"hourglass_flowing_sand"},
		}
	default:
		n = domain.Notification{
			Title:    "Bot Ready",
			Body:     "Watching the task pool.",
			Priority: domain.PriorityLow,
			Tags:     []string{"robot"},
		}
	}
	uc.sendNotification(ctx, n)
}

// announceStop runs after the loop's context is gone, so delivery gets a
// short grace context of its own.
func (uc *RunBot) announceStop() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	uc.sendNotification(ctx, domain.Notification{
		Title:    "Bot Stopped",
		Body:     "Polling loop exited.",
		Priority: domain.PriorityLow,
		Tags:     []string{"octagonal_sign"},
	})
}

// tick runs one poll cycle and returns how long to sleep before the next.
func (uc *RunBot) tick(ctx context.Context) (time.Duration, error) {
	checkOut, err := uc.check.Execute(ctx, CheckAssignmentInput{})
	if err != nil {
		return 0, err
	}
	if checkOut.Assigned {
		// Short interval: completion can only be observed, not awaited.
		return uc.config.Poll.AssignedInterval, nil
	}

	syncOut, err := uc.sync.Execute(ctx, SyncCooldownInput{})
	if err != nil {
		return 0, err
	}
	if syncOut.Active {
		uc.maybeWarnEnding(ctx, syncOut)
		return uc.cooldownSleep(syncOut), nil
	}

	if now := uc.clock.Now(); !uc.config.Hours.InAllowedHours(now) {
		wait := uc.config.Hours.NextOpen(now).Sub(now)
		if wait < sleepChunk {
			wait = sleepChunk
		}
		uc.logger.Debug("outside allowed claiming hours", "resume_in", wait)
		return wait, nil
	}

	claimOut, err := uc.claimer.Execute(ctx, ClaimTaskInput{})
	if err != nil {
		return 0, err
	}
	switch {
	case claimOut.Claimed:
		uc.emptyChecks = 0
		return uc.config.Poll.AssignedInterval, nil
	case claimOut.Claimable > 0:
		// Claim was refused; someone else was faster. Retry promptly.
		uc.emptyChecks = 0
		return uc.config.Poll.PoolInterval, nil
	default:
		uc.emptyChecks++
		return uc.adaptiveInterval(), nil
	}
}

// maybeWarnEnding fires each configured ending-soon notice exactly once
// per cooldown. When several thresholds match at once (long sleep, clock
// jump) a single notification covers them all.
func (uc *RunBot) maybeWarnEnding(ctx context.Context, syncOut *SyncCooldownOutput) {
	if !uc.noticeEnd.Equal(syncOut.End) {
		uc.noticeEnd = syncOut.End
		uc.noticesSent = make(map[time.Duration]bool)
	}

	thresholds := append([]time.Duration(nil), uc.config.Claim.EndingWarnings...)
	sort.Slice(thresholds, func(i, j int) bool { return thresholds[i] > thresholds[j] })

	fired := false
	for _, threshold := range thresholds {
		if syncOut.Remaining > threshold || uc.noticesSent[threshold] {
			continue
		}
		uc.noticesSent[threshold] = true
		if fired {
			continue
		}
		fired = true
		uc.sendNotification(ctx, domain.Notification{
			Title: "Cooldown Ending Soon",
			Body: fmt.Sprintf("Claiming unblocks in %s (at %s).",
				formatDuration(syncOut.Remaining),
				formatClock(syncOut.End, uc.config.Notify.Location)),
			Priority: domain.PriorityDefault,
			Tags:     []string{"alarm_clock"},
		})
	}
}

// cooldownSleep sleeps toward the cooldown end but wakes up in time for
// any ending notice that has not fired yet.
func (uc *RunBot) cooldownSleep(syncOut *SyncCooldownOutput) time.Duration {
	target := syncOut.Remaining + uc.config.Poll.CooldownBuffer
	for _, threshold := range uc.config.Claim.EndingWarnings {
		if uc.noticesSent[threshold] || syncOut.Remaining <= threshold {
			continue
		}
		if wake := syncOut.Remaining - threshold; wake < target {
			target = wake
		}
	}
	if target < sleepChunk {
		target = sleepChunk
	}
	return target
}

// adaptiveInterval stretches the pool interval after repeated empty
// checks, up to the configured ceiling.
func (uc *RunBot) adaptiveInterval() time.Duration {
	interval := uc.config.Poll.PoolInterval
	extra := uc.emptyChecks - uc.config.Poll.EmptyChecksBeforeBackoff
	if extra > 0 {
		interval += time.Duration(extra) * uc.config.Poll.PoolBackoffStep
	}
	if interval > uc.config.Poll.PoolMaxInterval {
		interval = uc.config.Poll.PoolMaxInterval
	}
	return interval
}

// sleep waits for d in small slices, returning false when the context was
// cancelled mid-wait.
func (uc *RunBot) sleep(ctx context.Context, d time.Duration) bool {
	for remaining := d; remaining > 0; remaining -= sleepChunk {
		chunk := sleepChunk
		if remaining < chunk {
			chunk = remaining
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(chunk):
		}
	}
	return ctx.Err() == nil
}

func (uc *RunBot) sendNotification(ctx context.Context, n domain.Notification) {
	if err := uc.notifier.Notify(ctx, n); err != nil {
		uc.logger.Warn("notification failed", "title", n.Title, "error", err)
	}
}
