package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeadlineTracker() *DeadlineTracker {
	return NewDeadlineTracker(6*time.Hour, 2*time.Hour, 30*time.Minute)
}

func TestDeadlineTracker_BeginComputesSixHourDeadline(t *testing.T) {
	claimedAt := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	tracker := newTestDeadlineTracker()

	tracker.Begin("t1", "RedditCommentTask", claimedAt, time.Time{})

	require.True(t, tracker.Active())
	rec := tracker.Record()
	assert.Equal(t, claimedAt.Add(6*time.Hour), rec.Deadline)
	assert.False(t, rec.WarnedTwoHours)
	assert.False(t, rec.WarnedFinal)
}

func TestDeadlineTracker_ServerDeadlineTakesPrecedence(t *testing.T) {
	claimedAt := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	serverDeadline := claimedAt.Add(4 * time.Hour)
	tracker := newTestDeadlineTracker()

	tracker.Begin("t1", "RedditCommentTask", claimedAt, serverDeadline)

	assert.Equal(t, serverDeadline, tracker.Record().Deadline)
}

func TestDeadlineTracker_NoWarningFarFromDeadline(t *testing.T) {
	claimedAt := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	tracker := newTestDeadlineTracker()
	tracker.Begin("t1", "RedditCommentTask", claimedAt, time.Time{})

	// 5h59m before the deadline: outside both thresholds.
	event := tracker.Check(claimedAt.Add(time.Minute))
	assert.Equal(t, EventNone, event)
	assert.False(t, tracker.Record().WarnedTwoHours)
	assert.False(t, tracker.Record().WarnedFinal)
}

func TestDeadlineTracker_TwoHourWarningFiresExactlyOnce(t *testing.T) {
	claimedAt := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	tracker := newTestDeadlineTracker()
	tracker.Begin("t1", "RedditCommentTask", claimedAt, time.Time{})

	now := claimedAt.Add(4*time.Hour + time.Minute) // 1h59m remaining
	assert.Equal(t, EventWarnTwoHours, tracker.Check(now))
	assert.True(t, tracker.Record().WarnedTwoHours)

	// Repeated checks at the same threshold stay silent.
	assert.Equal(t, EventNone, tracker.Check(now))
	assert.Equal(t, EventNone, tracker.Check(now.Add(time.Minute)))
	assert.False(t, tracker.Record().WarnedFinal)
}

func TestDeadlineTracker_BothWarningsFireNearDeadline(t *testing.T) {
	claimedAt := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	tracker := newTestDeadlineTracker()
	tracker.Begin("t1", "RedditCommentTask", claimedAt, time.Time{})

	// 29m remaining: the 2h warning fires first, the final warning on the
	// next check. Both flags end up set.
	now := claimedAt.Add(5*time.Hour + 31*time.Minute)
	assert.Equal(t, EventWarnTwoHours, tracker.Check(now))
	assert.Equal(t, EventWarnFinal, tracker.Check(now))
	assert.Equal(t, EventNone, tracker.Check(now))

	rec := tracker.Record()
	assert.True(t, rec.WarnedTwoHours)
	assert.True(t, rec.WarnedFinal)
}

func TestDeadlineTracker_ExpiresPastDeadline(t *testing.T) {
	claimedAt := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	tracker := newTestDeadlineTracker()
	tracker.Begin("t1", "RedditCommentTask", claimedAt, time.Time{})

	event := tracker.Check(claimedAt.Add(6*time.Hour + time.Second))
	assert.Equal(t, EventExpired, event)

	// Expiry wins even when warnings never fired.
	assert.False(t, tracker.Record().WarnedTwoHours)
}

func TestDeadlineTracker_BeginResetsWarningFlags(t *testing.T) {
	claimedAt := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	tracker := newTestDeadlineTracker()
	tracker.Begin("t1", "RedditCommentTask", claimedAt, time.Time{})
	tracker.Check(claimedAt.Add(5 * time.Hour))
	require.True(t, tracker.Record().WarnedTwoHours)

	// A new claim (or passive rediscovery) starts with clean flags.
	tracker.Begin("t2", "RedditReplyTask", claimedAt.Add(7*time.Hour), time.Time{})
	assert.False(t, tracker.Record().WarnedTwoHours)
	assert.False(t, tracker.Record().WarnedFinal)
}

func TestDeadlineTracker_ClearReturnsToIdle(t *testing.T) {
	claimedAt := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	tracker := newTestDeadlineTracker()
	tracker.Begin("t1", "RedditCommentTask", claimedAt, time.Time{})

	tracker.Clear()

	assert.False(t, tracker.Active())
	assert.Nil(t, tracker.Record())
	assert.Equal(t, EventNone, tracker.Check(claimedAt.Add(10*time.Hour)))
}

func TestDerivePhase_PriorityOrder(t *testing.T) {
	now := time.Date(2025, 11, 6, 12, 0, 0, 0, time.UTC)
	deadline := newTestDeadlineTracker()
	cooldown := newTestTracker(&memStore{})

	assert.Equal(t, PhaseIdle, DerivePhase(deadline, cooldown, now))

	cooldown.Set(now.Add(time.Hour))
	assert.Equal(t, PhaseCooldown, DerivePhase(deadline, cooldown, now))

	// Assigned outranks cooldown.
	deadline.Begin("t1", "RedditCommentTask", now, time.Time{})
	assert.Equal(t, PhaseAssigned, DerivePhase(deadline, cooldown, now))

	deadline.Clear()
	cooldown.Set(time.Time{})
	assert.Equal(t, PhaseIdle, DerivePhase(deadline, cooldown, now))
}
