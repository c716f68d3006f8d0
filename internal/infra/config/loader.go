// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nilayanand/fluxbot/internal/domain"
	"github.com/pelletier/go-toml/v2"
)

// Loader loads configuration from TOML files. The global file at
// $XDG_CONFIG_HOME/fluxbot/config.toml is merged under the local
// fluxbot.toml (local wins), and environment variables override credentials
// last.
type Loader struct {
	localDir      string // Directory holding the local fluxbot.toml
	globalConfDir string // Global config directory (e.g. ~/.config/fluxbot)
}

// NewLoader creates a new Loader rooted at the given working directory.
func NewLoader(localDir string) *Loader {
	return &Loader{
		localDir:      localDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config
// directory. This is useful for testing.
func NewLoaderWithGlobalDir(localDir, globalConfDir string) *Loader {
	return &Loader{
		localDir:      localDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "fluxbot")
}

// Load returns the merged configuration: defaults, then global file, then
// local file, then environment overrides.
func (l *Loader) Load() (*domain.Config, error) {
	cfg := domain.DefaultConfig()

	if l.globalConfDir != "" {
		globalPath := filepath.Join(l.globalConfDir, "config.toml")
		if err := l.applyFile(globalPath, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	localPath := filepath.Join(l.localDir, domain.ConfigFileName)
	if err := l.applyFile(localPath, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	applyEnv(cfg)

	if cfg.Poll.Continuous {
		cfg.ApplyContinuousMode()
	}

	sort.Strings(cfg.Warnings)
	return cfg, nil
}

// applyFile reads a TOML file and applies its values onto cfg.
func (l *Loader) applyFile(path string, cfg *domain.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	applyRaw(raw, cfg)
	return nil
}

// applyEnv applies environment variable overrides. Credentials are the
// usual thing kept out of config files.
func applyEnv(cfg *domain.Config) {
	if v := os.Getenv("FLUXBOT_EMAIL"); v != "" {
		cfg.API.Email = v
	}
	if v := os.Getenv("FLUXBOT_PASSWORD"); v != "" {
		cfg.API.Password = v
	}
	if v := os.Getenv("FLUXBOT_NTFY_URL"); v != "" {
		cfg.Notify.URL = v
	}
	if v := os.Getenv("FLUXBOT_CONTINUOUS"); v == "true" || v == "1" {
		cfg.Poll.Continuous = true
	}
}

// applyRaw walks the raw TOML map, applying known keys and collecting
// warnings for unknown ones.
func applyRaw(raw map[string]any, cfg *domain.Config) {
	warn := func(format string, args ...any) {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf(format, args...))
	}

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warn("unknown top-level key: %s", section)
			continue
		}
		switch section {
		case "api":
			applySection(m, warn, section, map[string]applyFn{
				"base_url": setString(&cfg.API.BaseURL),
				"email":    setString(&cfg.API.Email),
				"password": setString(&cfg.API.Password),
			})
		case "notify":
			applySection(m, warn, section, map[string]applyFn{
				"url":      setString(&cfg.Notify.URL),
				"location": setString(&cfg.Notify.Location),
			})
		case "poll":
			applySection(m, warn, section, map[string]applyFn{
				"continuous":                  setBool(&cfg.Poll.Continuous),
				"assigned_interval":           setDuration(&cfg.Poll.AssignedInterval, warn),
				"pool_interval":               setDuration(&cfg.Poll.PoolInterval, warn),
				"pool_max_interval":           setDuration(&cfg.Poll.PoolMaxInterval, warn),
				"pool_backoff_step":           setDuration(&cfg.Poll.PoolBackoffStep, warn),
				"cooldown_buffer":             setDuration(&cfg.Poll.CooldownBuffer, warn),
				"error_backoff":               setDuration(&cfg.Poll.ErrorBackoff, warn),
				"empty_checks_before_backoff": setInt(&cfg.Poll.EmptyChecksBeforeBackoff),
			})
		case "claim":
			applySection(m, warn, section, map[string]applyFn{
				"allowed_types":  setStringSlice(&cfg.Claim.AllowedTypes),
				"window":         setDuration(&cfg.Claim.Window, warn),
				"cooldown":       setDuration(&cfg.Claim.Cooldown, warn),
				"warn_at":        setDuration(&cfg.Claim.WarnAt, warn),
				"final_warn_at":  setDuration(&cfg.Claim.FinalWarnAt, warn),
				"sync_tolerance": setDuration(&cfg.Claim.SyncTolerance, warn),
			})
		case "filter":
			applySection(m, warn, section, map[string]applyFn{
				"min_letters_for_case_check": setInt(&cfg.Filter.MinLettersForCaseCheck),
				"max_uppercase_ratio":        setFloat(&cfg.Filter.MaxUppercaseRatio),
				"max_special_char_ratio":     setFloat(&cfg.Filter.MaxSpecialCharRatio),
				"max_promo_emoji":            setInt(&cfg.Filter.MaxPromoEmoji),
				"min_content_length":         setInt(&cfg.Filter.MinContentLength),
				"max_char_run":               setInt(&cfg.Filter.MaxCharRun),
			})
		case "hours":
			applySection(m, warn, section, map[string]applyFn{
				"enabled":  setBool(&cfg.Hours.Enabled),
				"start":    setInt(&cfg.Hours.Start),
				"end":      setInt(&cfg.Hours.End),
				"location": setString(&cfg.Hours.Location),
			})
		case "log":
			applySection(m, warn, section, map[string]applyFn{
				"level": setString(&cfg.Log.Level),
			})
		default:
			warn("unknown section: %s", section)
		}
	}
}

type applyFn func(key string, value any) bool

type warnFn func(format string, args ...any)

func applySection(m map[string]any, warn warnFn, section string, keys map[string]applyFn) {
	for k, v := range m {
		fn, ok := keys[k]
		if !ok {
			warn("unknown key in [%s]: %s", section, k)
			continue
		}
		if !fn(k, v) {
			warn("invalid value in [%s]: %s", section, k)
		}
	}
}

func setString(dst *string) applyFn {
	return func(_ string, value any) bool {
		s, ok := value.(string)
		if ok {
			*dst = s
		}
		return ok
	}
}

func setBool(dst *bool) applyFn {
	return func(_ string, value any) bool {
		b, ok := value.(bool)
		if ok {
			*dst = b
		}
		return ok
	}
}

func setInt(dst *int) applyFn {
	return func(_ string, value any) bool {
		n, ok := value.(int64)
		if ok {
			*dst = int(n)
		}
		return ok
	}
}

func setFloat(dst *float64) applyFn {
	return func(_ string, value any) bool {
		switch n := value.(type) {
		case float64:
			*dst = n
			return true
		case int64:
			*dst = float64(n)
			return true
		}
		return false
	}
}

func setStringSlice(dst *[]string) applyFn {
	return func(_ string, value any) bool {
		items, ok := value.([]any)
		if !ok {
			return false
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return false
			}
			out = append(out, s)
		}
		*dst = out
		return true
	}
}

func setDuration(dst *time.Duration, warn warnFn) applyFn {
	return func(key string, value any) bool {
		s, ok := value.(string)
		if !ok {
			return false
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			warn("cannot parse duration %s=%q: %v", key, s, err)
			return true // Already warned with detail
		}
		*dst = d
		return true
	}
}
