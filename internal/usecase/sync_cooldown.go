package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nilayanand/fluxbot/internal/domain"
)

// SyncCooldownInput contains the parameters for a cooldown sync.
type SyncCooldownInput struct {
	Quiet bool // Suppress the new-cooldown notification (startup reconciliation)
}

// SyncCooldownOutput contains the result of a cooldown sync.
// Fields are ordered to minimize memory padding.
type SyncCooldownOutput struct {
	End       time.Time     // Cooldown end after the sync (zero when inactive)
	Remaining time.Duration // Time left until the end (zero when inactive)
	Active    bool          // A cooldown is in effect after the sync
	Adopted   bool          // The server value replaced the local one this sync
}

// SyncCooldown reconciles the local cooldown record with the server's
// claim-restriction state. The server is authoritative beyond the sync
// tolerance; smaller disagreements keep the local value so formatting
// jitter cannot retrigger the cooldown alert.
type SyncCooldown struct {
	client   domain.PoolClient
	notifier domain.Notifier
	cooldown *domain.CooldownTracker
	clock    domain.Clock
	logger   *slog.Logger
	claim    domain.ClaimConfig
	notify   domain.NotifyConfig
}

// NewSyncCooldown creates a new SyncCooldown use case.
func NewSyncCooldown(
	client domain.PoolClient,
	notifier domain.Notifier,
	cooldown *domain.CooldownTracker,
	clock domain.Clock,
	logger *slog.Logger,
	claim domain.ClaimConfig,
	notify domain.NotifyConfig,
) *SyncCooldown {
	return &SyncCooldown{
		client:   client,
		notifier: notifier,
		cooldown: cooldown,
		clock:    clock,
		logger:   logger,
		claim:    claim,
		notify:   notify,
	}
}

// Execute performs one cooldown sync.
// Processing:
//   - Fetch the server's claim-restriction state
//   - Blocked with an unparsable end degrades to the full local cooldown
//   - Reconcile via the tracker; a newly adopted cooldown is announced once
func (uc *SyncCooldown) Execute(ctx context.Context, in SyncCooldownInput) (*SyncCooldownOutput, error) {
	now := uc.clock.Now()

	status, err := uc.client.CooldownStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync cooldown: %w", err)
	}

	var candidate time.Time
	if status.Blocked {
		candidate = status.AllowedAfter
		if candidate.IsZero() {
			// Server says blocked but we cannot tell until when. Assume
			// the full cooldown rather than hammering the claim endpoint.
			candidate = now.Add(uc.claim.Cooldown)
			uc.logger.Warn("server cooldown without usable end, assuming full window",
				"until", candidate, "reason", status.Reason)
		}
	}

	adopted := uc.cooldown.SyncFromServer(candidate, now)
	if adopted {
		end, _ := uc.cooldown.End()
		uc.logger.Info("cooldown adopted from server", "until", end)
		if !in.Quiet {
			uc.sendNotification(ctx, domain.Notification{
				Title: "Cooldown Active",
				Body: fmt.Sprintf("Claiming is blocked until %s (%s left).",
					formatClock(end, uc.notify.Location),
					formatDuration(end.Sub(now))),
				Priority: domain.PriorityDefault,
				Tags:     []string{"hourglass_flowing_sand"},
			})
		}
	}

	out := &SyncCooldownOutput{Adopted: adopted}
	if remaining, ok := uc.cooldown.Remaining(now); ok {
		end, _ := uc.cooldown.End()
		out.Active = true
		out.End = end
		out.Remaining = remaining
	}
	return out, nil
}

func (uc *SyncCooldown) sendNotification(ctx context.Context, n domain.Notification) {
	if err := uc.notifier.Notify(ctx, n); err != nil {
		uc.logger.Warn("notification failed", "title", n.Title, "error", err)
	}
}
