package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/job-bot/internal/ai"
	"github.com/spigell/job-bot/internal/logger"
	"github.com/spigell/job-bot/internal/utils"
)

const (
	DefaultMaxSteps = 60

	agentSystem = "You are a job application assistant. Follow the task exactly. " +
		"Use the provided tools for scoring and cover letters instead of guessing. " +
		"Finish with the result block the task asks for."
)

var ErrMaxSteps = errors.New("agent exceeded max steps")

// Agent runs a task as a Gemini chat with function calling over ai.Tools.
// It has no browser of its own: it works from the text in the prompt.
type Agent struct {
	chats      chatCreator
	model      string
	maxRetries int
	maxLogLen  int
	tools      map[string]ai.Tool
	decls      []*genai.FunctionDeclaration
	logger     *zap.Logger
}

func NewAgent(client *genai.Client, cfg Config, tools []ai.Tool, log *zap.Logger) *Agent {
	return newAgent(clientChats{chats: client.Chats}, cfg, tools, log)
}

func newAgent(chats chatCreator, cfg Config, tools []ai.Tool, log *zap.Logger) *Agent {
	cfg = cfg.withDefaults()

	a := &Agent{
		chats:      chats,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		maxLogLen:  cfg.MaxLogLength,
		tools:      make(map[string]ai.Tool, len(tools)),
		logger:     logger.WithCommonFields(log, Provider, cfg.Model),
	}

	for _, tool := range tools {
		a.tools[tool.Name] = tool
		a.decls = append(a.decls, declaration(tool))
	}

	return a
}

func declaration(tool ai.Tool) *genai.FunctionDeclaration {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(tool.Params)),
	}
	for _, p := range tool.Params {
		schema.Properties[p.Name] = &genai.Schema{Type: genai.TypeString, Description: p.Description}
		schema.Required = append(schema.Required, p.Name)
	}

	return &genai.FunctionDeclaration{
		Name:        tool.Name,
		Description: tool.Description,
		Parameters:  schema,
	}
}

func (a *Agent) Run(ctx context.Context, task ai.Task) (string, error) {
	maxSteps := task.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	log := a.logger.With(zap.String("portal", task.Portal))

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: agentSystem}}},
	}
	if len(a.decls) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: a.decls}}
	}

	chat, err := a.chats.Create(ctx, a.model, config, nil)
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}

	log.Debug("gemini agent task",
		zap.Int("prompt_length", utf8.RuneCountInString(task.Prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(task.Prompt, a.maxLogLen)),
	)

	parts := []genai.Part{{Text: task.Prompt}}
	for step := 1; step <= maxSteps; step++ {
		resp, err := withRetry(ctx, log, a.maxRetries, func() (*genai.GenerateContentResponse, error) {
			return chat.SendMessage(ctx, parts...)
		})
		if err != nil {
			return "", err
		}

		calls := functionCalls(resp)
		if len(calls) == 0 {
			text := responseText(resp)
			if text == "" {
				return "", ai.ErrEmptyResult
			}
			log.Debug("gemini agent finished", zap.Int("steps", step))
			return text, nil
		}

		parts = make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			parts = append(parts, genai.Part{FunctionResponse: a.invoke(ctx, log, call)})
		}
	}

	return "", fmt.Errorf("%w (%d)", ErrMaxSteps, maxSteps)
}

func (a *Agent) invoke(ctx context.Context, log *zap.Logger, call *genai.FunctionCall) *genai.FunctionResponse {
	resp := &genai.FunctionResponse{ID: call.ID, Name: call.Name}

	tool, ok := a.tools[call.Name]
	if !ok {
		resp.Response = map[string]any{"error": "unknown tool " + call.Name}
		return resp
	}

	args := make(map[string]string, len(call.Args))
	for k, v := range call.Args {
		args[k] = strings.TrimSpace(fmt.Sprint(v))
	}

	if missing := tool.Missing(args); len(missing) > 0 {
		resp.Response = map[string]any{"error": "missing arguments: " + strings.Join(missing, ", ")}
		return resp
	}

	out, err := tool.Call(ctx, args)
	if err != nil {
		log.Warn("tool call failed", zap.String("tool", call.Name), zap.Error(err))
		resp.Response = map[string]any{"error": err.Error()}
		return resp
	}

	log.Debug("tool call", zap.String("tool", call.Name), zap.String("output", utils.TruncateForLog(out, a.maxLogLen)))
	resp.Response = map[string]any{"output": out}
	return resp
}

func functionCalls(resp *genai.GenerateContentResponse) []*genai.FunctionCall {
	if resp == nil {
		return nil
	}

	var calls []*genai.FunctionCall
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.FunctionCall != nil {
				calls = append(calls, part.FunctionCall)
			}
		}
	}
	return calls
}
