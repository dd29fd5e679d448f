package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/job-bot/internal/ai"
	"github.com/spigell/job-bot/internal/ai/browser"
	"github.com/spigell/job-bot/internal/ai/gemini"
	"github.com/spigell/job-bot/internal/bot"
	"github.com/spigell/job-bot/internal/coverletter"
	"github.com/spigell/job-bot/internal/portal"
	"github.com/spigell/job-bot/internal/scoring"
	"github.com/spigell/job-bot/internal/secrets"
	"github.com/spigell/job-bot/internal/task"
	"github.com/spigell/job-bot/internal/tools"
	"github.com/spigell/job-bot/internal/tracking"
)

const sqliteFile = "jobs.db"

// components holds everything a command may need. Fields stay nil when the
// command did not ask for them.
type components struct {
	backend tracking.Backend
	tracker *tracking.Tracker
	scorer  *scoring.Scorer
	client  *genai.Client
	tools   []ai.Tool
	bot     *bot.Bot
}

func (c *components) Close(log *zap.Logger) {
	if c.backend == nil {
		return
	}
	if err := c.backend.Close(); err != nil {
		log.Warn("closing storage", zap.Error(err))
	}
}

func openTracker(config *Config) (*tracking.Tracker, tracking.Backend, error) {
	path := config.DataDir
	if config.Storage == tracking.BackendSQLite {
		path = filepath.Join(config.DataDir, sqliteFile)
	}

	backend, err := tracking.OpenBackend(config.Storage, path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s storage: %w", config.Storage, err)
	}

	return tracking.New(backend, limits(config.Limits)), backend, nil
}

// limits merges configured limits over the defaults per portal.
func limits(configured tracking.Limits) tracking.Limits {
	merged := tracking.DefaultLimits()
	for key, limit := range configured {
		merged[key] = limit
	}
	return merged
}

// newClient returns nil when no Gemini key is configured.
func newClient(ctx context.Context, config *GeminiConfig) (*genai.Client, error) {
	key, err := secrets.Optional(secrets.Source{
		Name:  "gemini api key",
		Value: config.APIKey,
		File:  config.APIKeyFile,
		Env:   "GOOGLE_API_KEY",
	})
	if err != nil || key == "" {
		return nil, err
	}

	return gemini.NewClient(ctx, key)
}

func geminiConfig(config *GeminiConfig) gemini.Config {
	return gemini.Config{
		Model:        config.Model,
		MaxRetries:   config.MaxRetries,
		MaxLogLength: config.MaxLogLength,
	}
}

// newTools builds the agent tools. The cover letter writer falls back to
// templates when there is no Gemini client.
func newTools(config *Config, scorer *scoring.Scorer, client *genai.Client, log *zap.Logger) []ai.Tool {
	var generator ai.Generator
	if client != nil {
		generator = gemini.NewGenerator(client, geminiConfig(config.AI.Gemini), log)
	} else {
		log.Warn("gemini api key is not set, cover letters will use templates")
	}

	writer := coverletter.New(generator, *config.Candidate, config.AI.Gemini.MaxLogLength, log)

	return tools.New(scorer, writer)
}

func newAgent(config *Config, client *genai.Client, agentTools []ai.Tool, log *zap.Logger) (ai.Agent, error) {
	switch config.Agent.Provider {
	case "", agentBrowser:
		return browser.New(browser.Config{
			Command:      config.Agent.Command,
			Model:        config.Agent.Model,
			Timeout:      config.Agent.Timeout,
			MaxLogLength: config.AI.Gemini.MaxLogLength,
		}, log)
	case agentGemini:
		if client == nil {
			return nil, fmt.Errorf("agent provider %q needs a gemini api key", agentGemini)
		}
		cfg := geminiConfig(config.AI.Gemini)
		cfg.Model = config.Agent.Model
		return gemini.NewAgent(client, cfg, agentTools, log), nil
	default:
		return nil, fmt.Errorf("unknown agent provider %q", config.Agent.Provider)
	}
}

func newRegistry(config *Config, scorer *scoring.Scorer) (*portal.Registry, error) {
	builder, err := task.New(task.Config{
		Candidate:  *config.Candidate,
		Criteria:   scorer.Criteria(),
		Blacklist:  scorer.Blacklist(),
		MinScore:   scorer.MinScore(),
		ResumePath: config.Resume,
	})
	if err != nil {
		return nil, err
	}

	linkedin, err := credentials("linkedin", config.Portals.LinkedIn, "LINKEDIN_USER", "LINKEDIN_PASS")
	if err != nil {
		return nil, err
	}
	workatastartup, err := credentials("workatastartup", config.Portals.WorkAtAStartup, "WORKATASTARTUP_USER", "WORKATASTARTUP_PASS")
	if err != nil {
		return nil, err
	}

	return portal.NewRegistry(
		portal.NewLinkedIn(builder, linkedin, config.Portals.LinkedIn.Keywords),
		portal.NewWorkAtAStartup(builder, workatastartup),
	), nil
}

// credentials may be empty: the agent then relies on a saved session.
func credentials(name string, config *PortalConfig, userEnv, passEnv string) (portal.Credentials, error) {
	user, err := secrets.Optional(secrets.Source{Name: name + " username", Value: config.Username, Env: userEnv})
	if err != nil {
		return portal.Credentials{}, err
	}
	pass, err := secrets.Optional(secrets.Source{
		Name:  name + " password",
		Value: config.Password,
		File:  config.PasswordFile,
		Env:   passEnv,
	})
	if err != nil {
		return portal.Credentials{}, err
	}

	return portal.Credentials{Username: user, Password: pass}, nil
}

// setup wires the storage and scoring, plus the agent and the orchestrator
// when withBot is set.
func setup(ctx context.Context, config *Config, log *zap.Logger, withBot bool) (*components, error) {
	c := &components{scorer: scoring.New(config.Scoring.build())}

	tracker, backend, err := openTracker(config)
	if err != nil {
		return nil, err
	}
	c.tracker, c.backend = tracker, backend

	c.client, err = newClient(ctx, config.AI.Gemini)
	if err != nil {
		c.Close(log)
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	c.tools = newTools(config, c.scorer, c.client, log)

	if !withBot {
		return c, nil
	}

	if err := c.buildBot(config, log); err != nil {
		c.Close(log)
		return nil, err
	}

	return c, nil
}

// buildBot creates the agent, the portals and the orchestrator on top of the
// already opened storage. It is a no-op once the bot exists.
func (c *components) buildBot(config *Config, log *zap.Logger) error {
	if c.bot != nil {
		return nil
	}

	if !fileExists(config.Resume) {
		log.Warn("resume file not found, uploads will fail", zap.String("path", config.Resume))
	}

	agent, err := newAgent(config, c.client, c.tools, log)
	if err != nil {
		return fmt.Errorf("creating agent: %w", err)
	}

	registry, err := newRegistry(config, c.scorer)
	if err != nil {
		return fmt.Errorf("creating portals: %w", err)
	}

	c.bot = bot.New(bot.Config{
		Allocation: config.Allocation,
		SessionDir: config.SessionDir,
		ResumePath: config.Resume,
		MaxSteps:   config.Agent.MaxSteps,
	}, registry, c.tracker, agent, c.scorer, log)

	return nil
}
