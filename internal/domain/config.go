package domain

import "time"

// ConfigFileName is the name of the local configuration file.
const ConfigFileName = "fluxbot.toml"

// RulesFileName is the name of the optional safety-rule override file.
const RulesFileName = "rules.yaml"

// Config is the application configuration. Every interval, threshold, and
// warning point of the bot is a named value here; nothing is hardcoded in
// the state machine.
type Config struct {
	API      APIConfig     // [api] settings
	Notify   NotifyConfig  // [notify] settings
	Poll     PollConfig    // [poll] settings
	Claim    ClaimConfig   // [claim] settings
	Filter   FilterOptions // [filter] settings (merged with rules.yaml)
	Hours    HoursConfig   // [hours] settings
	Log      LogConfig     // [log] settings
	Warnings []string      // Unknown-key warnings collected while loading
}

// APIConfig holds TaskFlux connection settings from the [api] section.
type APIConfig struct {
	BaseURL  string // Server base URL
	Email    string // Account email (or FLUXBOT_EMAIL)
	Password string // Account password (or FLUXBOT_PASSWORD)
}

// NotifyConfig holds push-notification settings from the [notify] section.
type NotifyConfig struct {
	URL      string // ntfy topic URL (or FLUXBOT_NTFY_URL)
	Location string // Display timezone for notification texts
}

// PollConfig holds loop timing from the [poll] section.
// Fields are ordered to minimize memory padding.
type PollConfig struct {
	AssignedInterval         time.Duration // Sleep while a task is assigned (fast completion re-detection)
	PoolInterval             time.Duration // Minimum sleep between pool checks
	PoolMaxInterval          time.Duration // Ceiling for the adaptive pool interval
	PoolBackoffStep          time.Duration // Adaptive increment per consecutive empty check
	CooldownBuffer           time.Duration // Extra sleep past a cooldown's end
	ErrorBackoff             time.Duration // Sleep after an unexpected tick failure
	EmptyChecksBeforeBackoff int           // Empty pool checks before the interval stretches
	Continuous               bool          // Rapid-checking mode (public tasks disappear fast)
}

// ClaimConfig holds the claim lifecycle policy from the [claim] section.
type ClaimConfig struct {
	AllowedTypes   []string        // Task-type markers the bot will claim
	Window         time.Duration   // Completion window granted on claim
	Cooldown       time.Duration   // Local cooldown after submission or a missed deadline
	WarnAt         time.Duration   // First deadline warning threshold
	FinalWarnAt    time.Duration   // Final deadline warning threshold
	SyncTolerance  time.Duration   // Local/server cooldown disagreement tolerance
	EndingWarnings []time.Duration // Cooldown ending-soon notice thresholds
}

// HoursConfig is the optional local-time claiming window from [hours].
// Outside the window the bot skips pool checks and waits.
type HoursConfig struct {
	Location string // Timezone the window is expressed in
	Start    int    // First allowed hour, inclusive
	End      int    // Last allowed hour, inclusive
	Enabled  bool
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string // debug, info, warn, error
}

// DefaultConfig returns the configuration defaults. Timing values are the
// adaptive-mode ones; Continuous mode tightens the pool intervals via
// ApplyContinuousMode.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://taskflux.net",
		},
		Notify: NotifyConfig{
			Location: "Asia/Kolkata",
		},
		Poll: PollConfig{
			AssignedInterval:         time.Minute,
			PoolInterval:             3 * time.Minute,
			PoolMaxInterval:          10 * time.Minute,
			PoolBackoffStep:          30 * time.Second,
			CooldownBuffer:           5 * time.Second,
			ErrorBackoff:             time.Minute,
			EmptyChecksBeforeBackoff: 3,
		},
		Claim: ClaimConfig{
			AllowedTypes:   DefaultAllowedTypes(),
			Window:         6 * time.Hour,
			Cooldown:       24 * time.Hour,
			WarnAt:         2 * time.Hour,
			FinalWarnAt:    30 * time.Minute,
			SyncTolerance:  5 * time.Minute,
			EndingWarnings: []time.Duration{10 * time.Minute, 5 * time.Minute},
		},
		Filter: DefaultFilterOptions(),
		Hours: HoursConfig{
			Location: "Asia/Kolkata",
			Start:    8,
			End:      23,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyContinuousMode tightens the pool polling intervals for rapid
// checking. Explicitly configured intervals are left alone.
func (c *Config) ApplyContinuousMode() {
	defaults := DefaultConfig()
	c.Poll.Continuous = true
	if c.Poll.PoolInterval == defaults.Poll.PoolInterval {
		c.Poll.PoolInterval = 30 * time.Second
	}
	if c.Poll.PoolMaxInterval == defaults.Poll.PoolMaxInterval {
		c.Poll.PoolMaxInterval = 2 * time.Minute
	}
	if c.Poll.PoolBackoffStep == defaults.Poll.PoolBackoffStep {
		c.Poll.PoolBackoffStep = 15 * time.Second
	}
}

// InAllowedHours reports whether now falls inside the claiming window.
// A disabled gate or an unloadable timezone fails open.
func (h HoursConfig) InAllowedHours(now time.Time) bool {
	if !h.Enabled {
		return true
	}
	loc, err := time.LoadLocation(h.Location)
	if err != nil {
		return true
	}
	hour := now.In(loc).Hour()
	return hour >= h.Start && hour <= h.End
}

// NextOpen returns the next instant the claiming window opens. When the
// window is already open (or the gate fails open) it returns now.
func (h HoursConfig) NextOpen(now time.Time) time.Time {
	if h.InAllowedHours(now) {
		return now
	}
	loc, err := time.LoadLocation(h.Location)
	if err != nil {
		return now
	}
	local := now.In(loc)
	open := time.Date(local.Year(), local.Month(), local.Day(), h.Start, 0, 0, 0, loc)
	if !open.After(local) {
		open = open.AddDate(0, 0, 1)
	}
	return open
}
