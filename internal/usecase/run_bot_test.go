package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/nilayanand/fluxbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastPoll shrinks the loop intervals so tests finish in milliseconds.
func fastPoll(f *fixture) {
	f.cfg.Poll.AssignedInterval = time.Millisecond
	f.cfg.Poll.PoolInterval = time.Millisecond
	f.cfg.Poll.PoolMaxInterval = 5 * time.Millisecond
	f.cfg.Poll.PoolBackoffStep = time.Millisecond
	f.cfg.Poll.ErrorBackoff = time.Millisecond
}

func TestRunBot_Execute_IdleStartAndStop(t *testing.T) {
	f := newFixture()
	fastPoll(f)
	uc := f.runBot()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	out, err := uc.Execute(ctx, RunBotInput{})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, out.Ticks, 1)
	assert.Equal(t, 1, f.client.LoginCalls)

	titles := f.notifier.Titles()
	require.NotEmpty(t, titles)
	assert.Equal(t, "Bot Ready", titles[0])
	assert.Equal(t, "Bot Stopped", titles[len(titles)-1])
}

func TestRunBot_Execute_LoginFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.client.LoginErr = domain.ErrLoginFailed
	uc := f.runBot()

	_, err := uc.Execute(context.Background(), RunBotInput{})

	assert.ErrorIs(t, err, domain.ErrLoginFailed)
	assert.Empty(t, f.notifier.Sent)
}

func TestRunBot_Execute_ResumesLoginAssignment(t *testing.T) {
	f := newFixture()
	fastPoll(f)
	f.client.LoginResult = &domain.LoginResult{
		UserID: "user-1",
		AssignedTask: &domain.Task{
			ID:         "t-1",
			Type:       "redditCommentTask",
			AssignedAt: f.now().Add(-time.Hour),
		},
	}
	f.client.AssignmentResult = &domain.AssignmentStatus{Assigned: true}
	uc := f.runBot()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := uc.Execute(ctx, RunBotInput{})

	require.NoError(t, err)
	titles := f.notifier.Titles()
	require.NotEmpty(t, titles)
	assert.Equal(t, "Task Assigned", titles[0], "startup announces the resumed claim")
	require.True(t, f.deadline.Active())
	assert.Equal(t, "t-1", f.deadline.Record().TaskID)
}

func TestRunBot_Execute_CooldownStartAndEndingNotice(t *testing.T) {
	f := newFixture()
	fastPoll(f)
	f.cooldown.Set(f.now().Add(4 * time.Minute))
	uc := f.runBot()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := uc.Execute(ctx, RunBotInput{})

	require.NoError(t, err)
	titles := f.notifier.Titles()
	require.NotEmpty(t, titles)
	assert.Equal(t, "Cooldown Active", titles[0])
	// 4m remaining matches both the 10m and 5m thresholds; a single
	// notice covers both, and it never repeats.
	assert.Equal(t, 1, countTitle(titles, "Cooldown Ending Soon"))
	assert.Equal(t, "Bot Stopped", titles[len(titles)-1])
}

func TestRunBot_Execute_ClaimsFromPool(t *testing.T) {
	f := newFixture()
	fastPoll(f)
	f.client.PoolTasks = []domain.Task{
		{ID: "t-1", Type: "redditCommentTask", Content: "A perfectly reasonable comment."},
	}
	f.client.ClaimResult = &domain.ClaimResult{Claimed: true}
	uc := f.runBot()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := uc.Execute(ctx, RunBotInput{})

	require.NoError(t, err)
	assert.Contains(t, f.notifier.Titles(), "Task Claimed")
	assert.Contains(t, f.client.ClaimedIDs, "t-1")
}

func TestRunBot_TickSleepsUntilAllowedHoursOpen(t *testing.T) {
	f := newFixture()
	// Clock sits at 12:00 UTC; the window opens at 14:00.
	f.cfg.Hours = domain.HoursConfig{Enabled: true, Location: "UTC", Start: 14, End: 20}
	uc := f.runBot()

	interval, err := uc.tick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, interval)
	assert.Zero(t, f.client.FetchCalls, "no pool scan outside the window")
}

func TestRunBot_AdaptiveInterval(t *testing.T) {
	f := newFixture()
	uc := f.runBot()

	// Defaults: 3m base, 30s step after 3 empty checks, 10m cap.
	uc.emptyChecks = 2
	assert.Equal(t, 3*time.Minute, uc.adaptiveInterval())

	uc.emptyChecks = 5
	assert.Equal(t, 4*time.Minute, uc.adaptiveInterval())

	uc.emptyChecks = 100
	assert.Equal(t, 10*time.Minute, uc.adaptiveInterval())
}

func TestRunBot_CooldownSleepWakesForNotices(t *testing.T) {
	f := newFixture()
	uc := f.runBot()

	// 30m remaining with unsent 10m/5m notices: wake at the 10m mark.
	sleep := uc.cooldownSleep(&SyncCooldownOutput{
		Active:    true,
		Remaining: 30 * time.Minute,
		End:       f.now().Add(30 * time.Minute),
	})
	assert.Equal(t, 20*time.Minute, sleep)

	// All notices sent: sleep through to the end plus buffer.
	uc.noticesSent[10*time.Minute] = true
	uc.noticesSent[5*time.Minute] = true
	sleep = uc.cooldownSleep(&SyncCooldownOutput{
		Active:    true,
		Remaining: 30 * time.Minute,
		End:       f.now().Add(30 * time.Minute),
	})
	assert.Equal(t, 30*time.Minute+f.cfg.Poll.CooldownBuffer, sleep)
}

func countTitle(titles []string, want string) int {
	n := 0
	for _, title := range titles {
		if title == want {
			n++
		}
	}
	return n
}
