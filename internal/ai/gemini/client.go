package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/job-bot/internal/logger"
	"github.com/spigell/job-bot/internal/utils"
)

const (
	Provider = "gemini"

	DefaultModel        = "gemini-2.5-flash"
	DefaultMaxRetries   = 3
	defaultMaxLogLength = 200

	retryBaseDelay = 2 * time.Second
	// Quota errors asking to wait longer than this are not retried.
	maxQuotaDelay = 30 * time.Second
)

var (
	sleep = time.Sleep

	retryAfter = regexp.MustCompile(`(?i)retry (?:after|in) ([0-9.]+)\s*s`)
)

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

// clientChats adapts genai.Chats to chatCreator.
type clientChats struct {
	chats *genai.Chats
}

func (c clientChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := c.chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

type Config struct {
	Model        string
	MaxRetries   int
	MaxLogLength int
}

// Generator sends one-shot chat prompts to Gemini.
type Generator struct {
	chats      chatCreator
	model      string
	maxRetries int
	maxLogLen  int
	logger     *zap.Logger
}

// NewClient creates the Gemini API client shared by Generator and Agent.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return client, nil
}

func NewGenerator(client *genai.Client, cfg Config, log *zap.Logger) *Generator {
	cfg = cfg.withDefaults()

	return &Generator{
		chats:      clientChats{chats: client.Chats},
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		maxLogLen:  cfg.MaxLogLength,
		logger:     logger.WithCommonFields(log, Provider, cfg.Model),
	}
}

func (c Config) withDefaults() Config {
	if c.Model = strings.TrimSpace(c.Model); c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.MaxLogLength <= 0 {
		c.MaxLogLength = defaultMaxLogLength
	}
	return c
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// GenerateContent opens a fresh chat per attempt and returns the text reply.
func (g *Generator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	if g == nil || g.chats == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("message must not be empty")
	}

	config := &genai.GenerateContentConfig{}
	if system = strings.TrimSpace(system); system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	g.logger.Debug("gemini generate content request",
		zap.Int("message_length", utf8.RuneCountInString(message)),
		zap.String("message_preview", utils.TruncateForLog(message, g.maxLogLen)),
	)

	resp, err := withRetry(ctx, g.logger, g.maxRetries, func() (*genai.GenerateContentResponse, error) {
		chat, err := g.chats.Create(ctx, g.model, config, nil)
		if err != nil {
			return nil, fmt.Errorf("create chat: %w", err)
		}
		return chat.SendMessage(ctx, genai.Part{Text: message})
	})
	if err != nil {
		return "", err
	}

	output := responseText(resp)
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	g.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
	)

	return output, nil
}

// withRetry calls fn up to attempts times while the error is temporary.
func withRetry(ctx context.Context, log *zap.Logger, attempts int, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		lastErr = err

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == attempts {
			break
		}

		log.Warn("gemini request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sleep(delay)
	}

	return nil, fmt.Errorf("gemini request: %w", lastErr)
}

// retryDelay decides whether err is temporary and how long to wait.
// Server errors back off linearly. Quota errors honour the delay the API
// asks for, unless it is too long to be worth waiting.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	backoff := time.Duration(attempt) * retryBaseDelay

	switch {
	case apiErr.Code >= http.StatusInternalServerError:
		return backoff, true
	case apiErr.Code == http.StatusTooManyRequests:
		m := retryAfter.FindStringSubmatch(apiErr.Message)
		if m == nil {
			return backoff, true
		}
		seconds, perr := strconv.ParseFloat(m[1], 64)
		if perr != nil {
			return backoff, true
		}
		delay := time.Duration(seconds * float64(time.Second))
		if delay > maxQuotaDelay {
			return 0, false
		}
		return delay, true
	default:
		return 0, false
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}
