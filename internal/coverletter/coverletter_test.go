package coverletter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-bot/internal/candidate"
)

type fakeGenerator struct {
	reply   string
	err     error
	system  string
	message string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, system, message string) (string, error) {
	f.system, f.message = system, message
	return f.reply, f.err
}

func TestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title       string
		description string
		expect      string
	}{
		{title: "LLM Engineer", expect: KeyAIEngineer},
		{title: "Backend Engineer", description: "build agentic workflows", expect: KeyAIEngineer},
		{title: "Platform Engineer", description: "backend heavy", expect: KeyPlatform},
		{title: "SRE", expect: KeyDevOps},
		{title: "Software Engineer", description: "Golang microservices", expect: KeyBackend},
		{title: "Product Manager", expect: KeyDefault},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			t.Parallel()
			if got := Match(tt.title, tt.description); got != tt.expect {
				t.Fatalf("expected %s, got %s", tt.expect, got)
			}
		})
	}
}

func TestGenerateUsesAI(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{reply: "  Dear Acme, hire me.  "}
	w := New(gen, candidate.Default(), 0, zap.NewNop())

	letter, method := w.Generate(context.Background(), "Backend Engineer", "Acme", "Go and AWS")
	if method != MethodAI || letter != "Dear Acme, hire me." {
		t.Fatalf("unexpected result %q via %s", letter, method)
	}

	for _, want := range []string{"Position: Backend Engineer at Acme", "Job Description: Go and AWS", "Candidate: Alex Example", "alex@example.com | github.com/alex-example"} {
		if !strings.Contains(gen.message, want) {
			t.Fatalf("prompt missing %q:\n%s", want, gen.message)
		}
	}
	if gen.system == "" {
		t.Fatal("expected a system instruction")
	}
}

func TestGenerateFallsBackToTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{name: "generator error", gen: &fakeGenerator{err: errors.New("quota")}},
		{name: "empty reply", gen: &fakeGenerator{reply: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.WarnLevel)
			w := New(tt.gen, candidate.Default(), 0, zap.New(core))

			letter, method := w.Generate(context.Background(), "DevOps Engineer", "Initech", "Kubernetes")
			if method != "template:devops" {
				t.Fatalf("unexpected method %s", method)
			}
			if !strings.Contains(letter, "DevOps Engineer role at Initech") || !strings.HasSuffix(letter, "alex@example.com | github.com/alex-example") {
				t.Fatalf("unexpected letter:\n%s", letter)
			}
			if logs.FilterMessage("ai cover letter failed, using template").Len() != 1 {
				t.Fatal("expected fallback warning")
			}
		})
	}
}

func TestTemplatesRenderForEveryKey(t *testing.T) {
	t.Parallel()

	w := New(nil, candidate.Default(), 0, nil)

	for _, key := range []string{KeyAIEngineer, KeyPlatform, KeyDevOps, KeyBackend, KeyDefault, "unknown"} {
		letter := w.Template(key, "Engineer", "Globex")
		if !strings.HasPrefix(letter, "Dear Hiring Team,") || !strings.Contains(letter, "Globex") || !strings.Contains(letter, "Alex Example") {
			t.Fatalf("template %s rendered unexpectedly:\n%s", key, letter)
		}
		if strings.Contains(letter, "<no value>") {
			t.Fatalf("template %s has missing values:\n%s", key, letter)
		}
	}

	letter, method := w.Generate(context.Background(), "Cook", "Diner", "")
	if method != "template:default" || letter == "" {
		t.Fatalf("expected default template without generator, got %s", method)
	}
}
