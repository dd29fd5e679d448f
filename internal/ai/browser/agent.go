// Package browser bridges to an external browser-automation command.
package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-bot/internal/ai"
	"github.com/spigell/job-bot/internal/utils"
)

const (
	Provider = "browser"

	EnvPortal     = "JOB_BOT_PORTAL"
	EnvSessionDir = "JOB_BOT_SESSION_DIR"
	EnvFiles      = "JOB_BOT_FILES"
	EnvMaxSteps   = "JOB_BOT_MAX_STEPS"
	EnvModel      = "JOB_BOT_MODEL"

	defaultMaxLogLength = 200
)

type Config struct {
	// Command is the argv of the automation runner. The prompt is written to
	// its stdin and its stdout is the result.
	Command      []string
	Model        string
	Env          []string
	Timeout      time.Duration
	MaxLogLength int
}

type Agent struct {
	cfg    Config
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Agent, error) {
	if len(cfg.Command) == 0 || strings.TrimSpace(cfg.Command[0]) == "" {
		return nil, errors.New("browser agent command is required")
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Agent{cfg: cfg, logger: logger.With(zap.String("ai_provider", Provider))}, nil
}

func (a *Agent) Run(ctx context.Context, task ai.Task) (string, error) {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	if task.SessionDir != "" {
		if err := os.MkdirAll(task.SessionDir, 0o750); err != nil {
			return "", fmt.Errorf("create session dir: %w", err)
		}
	}

	cmd := exec.CommandContext(ctx, a.cfg.Command[0], a.cfg.Command[1:]...)
	cmd.Stdin = strings.NewReader(task.Prompt)
	cmd.Env = append(os.Environ(), a.cfg.Env...)
	cmd.Env = append(cmd.Env,
		EnvPortal+"="+task.Portal,
		EnvSessionDir+"="+task.SessionDir,
		EnvFiles+"="+strings.Join(task.Files, string(filepath.ListSeparator)),
		EnvMaxSteps+"="+strconv.Itoa(task.MaxSteps),
		EnvModel+"="+a.cfg.Model,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log := a.logger.With(zap.String("portal", task.Portal), zap.String("command", a.cfg.Command[0]))
	log.Debug("starting browser agent",
		zap.String("prompt_preview", utils.TruncateForLog(task.Prompt, a.cfg.MaxLogLength)),
	)

	started := time.Now()
	err := cmd.Run()
	log.Debug("browser agent exited",
		zap.Duration("elapsed", time.Since(started)),
		zap.String("stderr", utils.TruncateForLog(stderr.String(), a.cfg.MaxLogLength)),
	)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("browser agent: %w", ctxErr)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("browser agent: %w: %s", err, utils.TruncateForLog(msg, a.cfg.MaxLogLength))
		}
		return "", fmt.Errorf("browser agent: %w", err)
	}

	result := strings.TrimSpace(stdout.String())
	if result == "" {
		return "", ai.ErrEmptyResult
	}

	return result, nil
}
