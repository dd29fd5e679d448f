// Package bot drives the search and apply flows: prompt, agent, parse, track.
package bot

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-bot/internal/ai"
	"github.com/spigell/job-bot/internal/portal"
	"github.com/spigell/job-bot/internal/scoring"
	"github.com/spigell/job-bot/internal/tracking"
	"github.com/spigell/job-bot/internal/utils"
)

const (
	DefaultMaxSteps       = 60
	DefaultPortalDelay    = 5 * time.Second
	DefaultApplyDelay     = 10 * time.Second
	DefaultRawResultLimit = 1000
)

// Allocation is how many applications one portal gets per run.
type Allocation struct {
	Portal string `mapstructure:"portal"`
	Jobs   int    `mapstructure:"jobs"`
}

func DefaultAllocation() []Allocation {
	return []Allocation{
		{Portal: portal.LinkedInKey, Jobs: 3},
		{Portal: portal.WorkAtAStartupKey, Jobs: 2},
	}
}

type Config struct {
	Allocation     []Allocation
	SessionDir     string
	ResumePath     string
	MaxSteps       int
	PortalDelay    time.Duration
	RawResultLimit int
}

func (c Config) withDefaults() Config {
	if len(c.Allocation) == 0 {
		c.Allocation = DefaultAllocation()
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	if c.PortalDelay <= 0 {
		c.PortalDelay = DefaultPortalDelay
	}
	if c.RawResultLimit <= 0 {
		c.RawResultLimit = DefaultRawResultLimit
	}
	return c
}

type Bot struct {
	cfg     Config
	portals *portal.Registry
	tracker *tracking.Tracker
	agent   ai.Agent
	scorer  *scoring.Scorer
	logger  *zap.Logger
	now     func() time.Time
	wait    func(ctx context.Context, d time.Duration) error
}

type Option func(*Bot)

// WithClock replaces time.Now for record dates.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

func New(cfg Config, portals *portal.Registry, tracker *tracking.Tracker, agent ai.Agent, scorer *scoring.Scorer, logger *zap.Logger, opts ...Option) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Bot{
		cfg:     cfg.withDefaults(),
		portals: portals,
		tracker: tracker,
		agent:   agent,
		scorer:  scorer,
		logger:  logger,
		now:     time.Now,
		wait:    utils.WaitFor,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Allocation returns the configured per-portal allocation.
func (b *Bot) Allocation() []Allocation {
	return append([]Allocation(nil), b.cfg.Allocation...)
}

// Stats returns the tracker summary.
func (b *Bot) Stats() (*tracking.Summary, error) {
	return b.tracker.Summary()
}

func (b *Bot) task(key, prompt string) ai.Task {
	t := ai.Task{Portal: key, Prompt: prompt, MaxSteps: b.cfg.MaxSteps}
	if b.cfg.SessionDir != "" {
		t.SessionDir = filepath.Join(b.cfg.SessionDir, key)
	}
	if b.cfg.ResumePath != "" {
		t.Files = []string{b.cfg.ResumePath}
	}
	return t
}
