package domain

import (
	"log/slog"
	"time"
)

// CooldownTracker holds the single optional cooldown end instant and keeps
// it in sync with durable storage. The in-memory value is authoritative for
// the process lifetime; persistence failures only cost durability across
// restarts, so they are logged and swallowed.
type CooldownTracker struct {
	store     CooldownStore
	logger    *slog.Logger
	end       time.Time // zero = no cooldown known
	tolerance time.Duration
}

// NewCooldownTracker creates a tracker backed by store and loads any
// persisted cooldown. A missing or corrupt record loads as "no cooldown".
func NewCooldownTracker(store CooldownStore, tolerance time.Duration, logger *slog.Logger) *CooldownTracker {
	t := &CooldownTracker{
		store:     store,
		logger:    logger,
		tolerance: tolerance,
	}
	end, err := store.Load()
	if err != nil {
		logger.Warn("load cooldown state", "error", err)
		return t
	}
	t.end = end
	return t
}

// IsActive reports whether a cooldown end is stored and strictly in the
// future. A stored end in the past is equivalent to no cooldown and is
// lazily cleared.
func (t *CooldownTracker) IsActive(now time.Time) bool {
	if t.end.IsZero() {
		return false
	}
	if !t.end.After(now) {
		t.Set(time.Time{})
		return false
	}
	return true
}

// Remaining returns the time left until the cooldown ends, or false if no
// cooldown is active.
func (t *CooldownTracker) Remaining(now time.Time) (time.Duration, bool) {
	if !t.IsActive(now) {
		return 0, false
	}
	return t.end.Sub(now), true
}

// End returns the stored cooldown end, or false if none is stored.
func (t *CooldownTracker) End() (time.Time, bool) {
	if t.end.IsZero() {
		return time.Time{}, false
	}
	return t.end, true
}

// Set overwrites the cooldown end (zero clears it) and persists the new
// state immediately.
func (t *CooldownTracker) Set(end time.Time) {
	t.end = end
	if err := t.store.Save(end); err != nil {
		t.logger.Warn("persist cooldown state", "error", err)
	}
}

// SyncFromServer reconciles the tracker with an authoritative server value.
// The server wins when no local end is stored or when the two disagree by
// more than the tolerance; a small disagreement keeps the local value to
// avoid notification churn from formatting jitter. The return value reports
// whether the adopted cooldown is new, which gates the one-time alert.
//
// A zero candidate means the server reports no cooldown: an already-expired
// local record is cleared, but an unexpired one is kept.
func (t *CooldownTracker) SyncFromServer(candidate, now time.Time) bool {
	if candidate.IsZero() {
		if !t.end.IsZero() && !t.end.After(now) {
			t.Set(time.Time{})
		}
		return false
	}

	if t.end.IsZero() {
		t.Set(candidate)
		return true
	}

	diff := t.end.Sub(candidate)
	if diff < 0 {
		diff = -diff
	}
	if diff > t.tolerance {
		t.Set(candidate)
		return true
	}
	return false
}
