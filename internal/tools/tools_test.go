package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/spigell/job-bot/internal/ai"
	"github.com/spigell/job-bot/internal/scoring"
)

type fakeWriter struct{}

func (fakeWriter) Generate(_ context.Context, title, company, _ string) (string, string) {
	return "Dear " + company + ", re: " + title, "template:backend"
}

func newTools(t *testing.T, writer LetterWriter) map[string]ai.Tool {
	t.Helper()

	cfg := scoring.DefaultConfig()
	cfg.Blacklist = []string{"Evil Corp"}

	byName := make(map[string]ai.Tool)
	for _, tool := range New(scoring.New(cfg), writer) {
		byName[tool.Name] = tool
	}
	return byName
}

func call(t *testing.T, tool ai.Tool, title, company, description string) string {
	t.Helper()

	out, err := tool.Call(context.Background(), map[string]string{
		"job_title":       title,
		"company":         company,
		"job_description": description,
	})
	if err != nil {
		t.Fatalf("%s: %v", tool.Name, err)
	}
	return out
}

func TestCalculateMatchScore(t *testing.T) {
	t.Parallel()

	tool := newTools(t, nil)[CalculateMatchScore]

	tests := []struct {
		name        string
		title       string
		company     string
		description string
		expect      string
	}{
		{name: "apply", title: "Backend Engineer", company: "Acme", description: "Node.js AWS remote 4+ years", expect: "Score: 39/100 - APPLY"},
		{name: "too low", title: "Software Engineer", company: "Acme", description: "python", expect: "Score: 0/100 - SKIP"},
		{name: "blacklisted", title: "Backend Engineer", company: " evil corp ", description: "", expect: "SKIP:  evil corp  is in the blacklist"},
		{name: "negative", title: "Frontend Developer", company: "Acme", description: "", expect: "SKIP: Score -50 (contains negative keywords)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := call(t, tool, tt.title, tt.company, tt.description); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestAnalyzeJob(t *testing.T) {
	t.Parallel()

	tool := newTools(t, nil)[AnalyzeJob]

	out := call(t, tool, "Backend Engineer", "Acme", "Node.js AWS remote 4+ years")
	expect := strings.Join([]string{
		"Score: 39/100",
		"Recommendation: MAYBE (score: 39)",
		"Should Apply: Yes",
		"",
		"Matched Required Keywords: backend, node, aws",
		"Matched Bonus Keywords: None",
	}, "\n")
	if out != expect {
		t.Fatalf("unexpected analysis:\n%s\nexpected:\n%s", out, expect)
	}

	out = call(t, tool, "Frontend Developer", "Evil Corp", "")
	if !strings.Contains(out, "WARNING: Company is blacklisted!") || !strings.Contains(out, "Should Apply: No") {
		t.Fatalf("expected blacklist warning:\n%s", out)
	}

	out = call(t, tool, "Frontend Developer", "Acme", "")
	if !strings.Contains(out, "WARNING - Negative Keywords Found: frontend") {
		t.Fatalf("expected negative warning:\n%s", out)
	}
}

func TestGenerateCoverLetter(t *testing.T) {
	t.Parallel()

	if _, ok := newTools(t, nil)[GenerateCoverLetter]; ok {
		t.Fatal("cover letter tool should be absent without a writer")
	}

	tool, ok := newTools(t, fakeWriter{})[GenerateCoverLetter]
	if !ok {
		t.Fatal("expected cover letter tool")
	}

	out := call(t, tool, "Backend Engineer", "Acme", "Go")
	if out != "[Generated via template:backend]\n\nDear Acme, re: Backend Engineer" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestToolsDeclareParams(t *testing.T) {
	t.Parallel()

	for name, tool := range newTools(t, fakeWriter{}) {
		if len(tool.Params) != 3 || tool.Description == "" {
			t.Fatalf("tool %s is underspecified: %+v", name, tool)
		}
		if missing := tool.Missing(map[string]string{"company": "x"}); len(missing) != 2 {
			t.Fatalf("tool %s: unexpected missing %v", name, missing)
		}
	}
}
