package usecase

import (
	"io"
	"log/slog"
	"time"

	"github.com/nilayanand/fluxbot/internal/domain"
	"github.com/nilayanand/fluxbot/internal/testutil"
)

// fixture wires the use cases with mocks and shared trackers the way the
// container does in production.
type fixture struct {
	client   *testutil.MockPoolClient
	notifier *testutil.MockNotifier
	store    *testutil.MockCooldownStore
	clock    *testutil.MockClock
	deadline *domain.DeadlineTracker
	cooldown *domain.CooldownTracker
	logger   *slog.Logger
	cfg      *domain.Config
}

func newFixture() *fixture {
	cfg := domain.DefaultConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &testutil.MockCooldownStore{}
	return &fixture{
		client:   testutil.NewMockPoolClient(),
		notifier: &testutil.MockNotifier{},
		store:    store,
		clock:    &testutil.MockClock{NowTime: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)},
		deadline: domain.NewDeadlineTracker(cfg.Claim.Window, cfg.Claim.WarnAt, cfg.Claim.FinalWarnAt),
		cooldown: domain.NewCooldownTracker(store, cfg.Claim.SyncTolerance, logger),
		logger:   logger,
		cfg:      cfg,
	}
}

func (f *fixture) now() time.Time {
	return f.clock.NowTime
}

func (f *fixture) checkAssignment() *CheckAssignment {
	return NewCheckAssignment(f.client, f.notifier, f.deadline, f.cooldown,
		f.clock, f.logger, f.cfg.Claim, f.cfg.Notify)
}

func (f *fixture) syncCooldown() *SyncCooldown {
	return NewSyncCooldown(f.client, f.notifier, f.cooldown,
		f.clock, f.logger, f.cfg.Claim, f.cfg.Notify)
}

func (f *fixture) claimTask() *ClaimTask {
	filter := domain.NewSafetyFilter(f.cfg.Filter)
	return NewClaimTask(f.client, f.notifier, f.deadline, filter,
		f.clock, f.logger, f.cfg.Claim, f.cfg.Notify)
}

func (f *fixture) submitTask() *SubmitTask {
	return NewSubmitTask(f.client, f.notifier, f.deadline, f.cooldown,
		f.clock, f.logger, f.cfg.Claim, f.cfg.Notify)
}

func (f *fixture) runBot() *RunBot {
	return NewRunBot(f.client, f.notifier, f.deadline, f.cooldown,
		f.clock, f.logger, f.cfg,
		f.checkAssignment(), f.syncCooldown(), f.claimTask())
}
