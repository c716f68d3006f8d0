// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/nilayanand/fluxbot/internal/domain"
	"github.com/nilayanand/fluxbot/internal/infra/config"
	"github.com/nilayanand/fluxbot/internal/infra/cooldownstore"
	"github.com/nilayanand/fluxbot/internal/infra/logging"
	"github.com/nilayanand/fluxbot/internal/infra/ntfy"
	"github.com/nilayanand/fluxbot/internal/infra/rules"
	"github.com/nilayanand/fluxbot/internal/infra/taskflux"
	"github.com/nilayanand/fluxbot/internal/usecase"
)

// Paths holds the application's filesystem layout.
type Paths struct {
	WorkDir      string // Directory holding fluxbot.toml and rules.yaml
	StateDir     string // Directory for runtime state (cooldown record, logs)
	CooldownPath string // Path to cooldown.json
	RulesPath    string // Path to rules.yaml
}

// newPaths derives the filesystem layout from the working directory.
func newPaths(workDir string) Paths {
	stateDir := filepath.Join(workDir, ".fluxbot")
	return Paths{
		WorkDir:      workDir,
		StateDir:     stateDir,
		CooldownPath: filepath.Join(stateDir, "cooldown.json"),
		RulesPath:    filepath.Join(workDir, domain.RulesFileName),
	}
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Client   domain.PoolClient
	Notifier domain.Notifier
	Store    domain.CooldownStore
	Clock    domain.Clock

	// Shared trackers (one claim, one cooldown per identity)
	Deadline *domain.DeadlineTracker
	Cooldown *domain.CooldownTracker
	Filter   *domain.SafetyFilter

	Logger    *slog.Logger
	LogCloser io.Closer

	Config *domain.Config
	Paths  Paths
}

// New creates a new Container rooted at the given working directory. It
// loads configuration and safety rules, opens the log file, and wires the
// trackers to durable storage.
func New(workDir string) (*Container, error) {
	paths := newPaths(workDir)

	cfg, err := config.NewLoader(workDir).Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := rules.Apply(paths.RulesPath, &cfg.Filter); err != nil {
		return nil, fmt.Errorf("load safety rules: %w", err)
	}

	logger, closer, err := logging.New(paths.StateDir, logging.ParseLevel(cfg.Log.Level))
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	client, err := taskflux.New(cfg.API, logger)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	// Without a topic URL notifications are logged and dropped; the run
	// command insists on a real notifier, read-only commands do not.
	var notifier domain.Notifier
	if cfg.Notify.URL != "" {
		notifier, err = ntfy.New(cfg.Notify.URL, logger)
		if err != nil {
			_ = closer.Close()
			return nil, err
		}
	} else {
		notifier = &logNotifier{logger: logger}
	}

	store := cooldownstore.New(paths.CooldownPath)

	return &Container{
		Client:    client,
		Notifier:  notifier,
		Store:     store,
		Clock:     domain.RealClock{},
		Deadline:  domain.NewDeadlineTracker(cfg.Claim.Window, cfg.Claim.WarnAt, cfg.Claim.FinalWarnAt),
		Cooldown:  domain.NewCooldownTracker(store, cfg.Claim.SyncTolerance, logger),
		Filter:    domain.NewSafetyFilter(cfg.Filter),
		Logger:    logger,
		LogCloser: closer,
		Config:    cfg,
		Paths:     paths,
	}, nil
}

// Close releases the container's resources.
func (c *Container) Close() error {
	if c.LogCloser != nil {
		return c.LogCloser.Close()
	}
	return nil
}

// HasNotifier reports whether a real push notifier is configured.
func (c *Container) HasNotifier() bool {
	_, isLog := c.Notifier.(*logNotifier)
	return !isLog
}

// CheckAssignmentUseCase creates a CheckAssignment use case.
func (c *Container) CheckAssignmentUseCase() *usecase.CheckAssignment {
	return usecase.NewCheckAssignment(c.Client, c.Notifier, c.Deadline, c.Cooldown,
		c.Clock, c.Logger, c.Config.Claim, c.Config.Notify)
}

// SyncCooldownUseCase creates a SyncCooldown use case.
func (c *Container) SyncCooldownUseCase() *usecase.SyncCooldown {
	return usecase.NewSyncCooldown(c.Client, c.Notifier, c.Cooldown,
		c.Clock, c.Logger, c.Config.Claim, c.Config.Notify)
}

// ClaimTaskUseCase creates a ClaimTask use case.
func (c *Container) ClaimTaskUseCase() *usecase.ClaimTask {
	return usecase.NewClaimTask(c.Client, c.Notifier, c.Deadline, c.Filter,
		c.Clock, c.Logger, c.Config.Claim, c.Config.Notify)
}

// SubmitTaskUseCase creates a SubmitTask use case.
func (c *Container) SubmitTaskUseCase() *usecase.SubmitTask {
	return usecase.NewSubmitTask(c.Client, c.Notifier, c.Deadline, c.Cooldown,
		c.Clock, c.Logger, c.Config.Claim, c.Config.Notify)
}

// RunBotUseCase creates the RunBot orchestrator.
func (c *Container) RunBotUseCase() *usecase.RunBot {
	return usecase.NewRunBot(c.Client, c.Notifier, c.Deadline, c.Cooldown,
		c.Clock, c.Logger, c.Config,
		c.CheckAssignmentUseCase(), c.SyncCooldownUseCase(), c.ClaimTaskUseCase())
}

// logNotifier drops notifications into the log. It stands in when no ntfy
// topic is configured so read-only commands work without one.
type logNotifier struct {
	logger *slog.Logger
}

func (n *logNotifier) Notify(_ context.Context, note domain.Notification) error {
	n.logger.Info("notification (no topic configured)",
		"title", note.Title, "priority", note.Priority)
	return nil
}
