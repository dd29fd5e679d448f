// Package coverletter writes cover letters, by LLM when available and from
// role templates otherwise.
package coverletter

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/job-bot/internal/ai"
	"github.com/spigell/job-bot/internal/candidate"
	"github.com/spigell/job-bot/internal/utils"
)

const (
	MethodAI       = "ai"
	methodTemplate = "template:"

	KeyAIEngineer = "ai_engineer"
	KeyPlatform   = "platform"
	KeyDevOps     = "devops"
	KeyBackend    = "backend"
	KeyDefault    = "default"

	defaultMaxLogLength = 200

	system = "You write short, specific cover letters. Reply with the letter text only."
)

//go:embed prompt.md letters.tmpl
var files embed.FS

var (
	promptTmpl  = template.Must(template.ParseFS(files, "prompt.md"))
	letterTmpls = template.Must(template.ParseFS(files, "letters.tmpl"))
)

// matchers are checked in order, the first hit wins.
var matchers = []struct {
	key      string
	keywords []string
}{
	{KeyAIEngineer, []string{"ai engineer", "ai developer", "llm", "langchain", "agentic",
		"machine learning", "ml engineer", "nlp", "artificial intelligence"}},
	{KeyPlatform, []string{"platform engineer", "api engineer", "extensibility",
		"infrastructure engineer", "developer experience"}},
	{KeyDevOps, []string{"devops", "sre", "site reliability", "infrastructure",
		"cloud engineer", "systems engineer"}},
	{KeyBackend, []string{"backend", "back-end", "server-side", "node.js", "nodejs",
		"golang", "typescript", "graphql", "microservices"}},
}

type Writer struct {
	generator ai.Generator
	profile   candidate.Profile
	maxLogLen int
	logger    *zap.Logger
}

// New returns a Writer. A nil generator means templates only.
func New(generator ai.Generator, profile candidate.Profile, maxLogLength int, logger *zap.Logger) *Writer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Writer{
		generator: generator,
		profile:   profile,
		maxLogLen: maxLogLength,
		logger:    logger,
	}
}

// Match returns the template key for a job.
func Match(title, description string) string {
	text := strings.ToLower(title + " " + description)
	for _, m := range matchers {
		for _, kw := range m.keywords {
			if strings.Contains(text, kw) {
				return m.key
			}
		}
	}
	return KeyDefault
}

// Generate returns the letter and the method used: "ai" or "template:<key>".
// It always returns a letter.
func (w *Writer) Generate(ctx context.Context, title, company, description string) (string, string) {
	log := w.logger.With(zap.String("company", company), zap.String("title", title))

	letter, err := w.generateAI(ctx, title, company, description)
	if err == nil {
		return letter, MethodAI
	}

	key := Match(title, description)
	log.Warn("ai cover letter failed, using template", zap.String("template", key), zap.Error(err))

	return w.Template(key, title, company), methodTemplate + key
}

func (w *Writer) generateAI(ctx context.Context, title, company, description string) (string, error) {
	if w.generator == nil {
		return "", errors.New("no generator configured")
	}

	var buf bytes.Buffer
	err := promptTmpl.Execute(&buf, map[string]string{
		"Title":       title,
		"Company":     company,
		"Description": description,
		"Profile":     w.profile.Compact(),
		"Contact":     w.contact(),
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	prompt := buf.String()

	w.logger.Debug("cover letter request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, w.maxLogLen)),
	)

	letter, err := w.generator.GenerateContent(ctx, system, prompt)
	if err != nil {
		return "", err
	}
	if letter = strings.TrimSpace(letter); letter == "" {
		return "", ai.ErrEmptyResult
	}

	return letter, nil
}

// Template renders the fallback letter for key. Unknown keys use the default.
func (w *Writer) Template(key, title, company string) string {
	if letterTmpls.Lookup(key) == nil {
		key = KeyDefault
	}

	data := struct {
		Title     string
		Company   string
		Candidate candidate.Profile
		Stack     string
		Highlight string
	}{
		Title:     title,
		Company:   company,
		Candidate: w.profile,
		Stack:     sentence("My core stack covers", w.profile.Stack),
		Highlight: sentence("Recently I", lowerFirst(w.profile.Highlights)),
	}

	var buf bytes.Buffer
	if err := letterTmpls.ExecuteTemplate(&buf, key, data); err != nil {
		w.logger.Error("render cover letter template", zap.String("template", key), zap.Error(err))
		return fmt.Sprintf("Dear Hiring Team,\n\nI would like to apply for the %s position at %s.\n\nBest regards,\n%s\n%s",
			title, company, w.profile.Name, w.contact())
	}

	return strings.TrimSpace(buf.String())
}

func (w *Writer) contact() string {
	parts := []string{w.profile.Contact.Email}
	if w.profile.Contact.GitHub != "" {
		parts = append(parts, w.profile.Contact.GitHub)
	}
	return strings.Join(parts, " | ")
}

func sentence(prefix string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) > 2 {
		items = items[:2]
	}
	return prefix + " " + strings.Join(items, "; ") + "."
}

func lowerFirst(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(s)
		out = append(out, strings.ToLower(string(r))+s[size:])
	}
	return out
}
