package portal

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/spigell/job-bot/internal/candidate"
	"github.com/spigell/job-bot/internal/task"
	"github.com/spigell/job-bot/internal/tracking"
)

func newTestRegistry(t *testing.T) (*Registry, *LinkedIn, *WorkAtAStartup) {
	t.Helper()

	builder, err := task.New(task.Config{Candidate: candidate.Default(), MinScore: 30})
	if err != nil {
		t.Fatalf("task builder: %v", err)
	}

	li := NewLinkedIn(builder, Credentials{Username: "li-user", Password: "li-pass"}, "")
	waas := NewWorkAtAStartup(builder, Credentials{})

	return NewRegistry(li, waas), li, waas
}

func TestLinkedInSearchURL(t *testing.T) {
	t.Parallel()

	_, li, _ := newTestRegistry(t)

	tests := []struct {
		freshness string
		expect    string
	}{
		{freshness: "1h", expect: "r3600"},
		{freshness: "24h", expect: "r86400"},
		{freshness: "7d", expect: "r604800"},
		{freshness: "30d", expect: "r2592000"},
		{freshness: "", expect: "r86400"},
		{freshness: "bogus", expect: "r86400"},
	}

	for _, tt := range tests {
		t.Run(tt.freshness, func(t *testing.T) {
			t.Parallel()

			u, err := url.Parse(li.SearchURL(tt.freshness))
			if err != nil {
				t.Fatalf("parse url: %v", err)
			}
			q := u.Query()

			if q.Get("f_TPR") != tt.expect {
				t.Fatalf("expected f_TPR=%s, got %s", tt.expect, q.Get("f_TPR"))
			}
			if q.Get("f_WT") != "2" || q.Get("f_E") != "3,4" || q.Get("sortBy") != "DD" {
				t.Fatalf("unexpected filters: %v", q)
			}
			if !strings.Contains(q.Get("keywords"), "Backend Engineer") {
				t.Fatalf("unexpected keywords: %q", q.Get("keywords"))
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg, _, _ := newTestRegistry(t)

	if keys := reg.Keys(); len(keys) != 2 || keys[0] != LinkedInKey || keys[1] != WorkAtAStartupKey {
		t.Fatalf("unexpected keys: %v", keys)
	}

	if _, err := reg.Get("indeed"); !errors.Is(err, ErrUnknownPortal) {
		t.Fatalf("expected unknown portal error, got %v", err)
	}

	tests := map[string]string{
		"https://www.workatastartup.com/jobs/78968":  WorkAtAStartupKey,
		"https://www.LinkedIn.com/jobs/view/4000000": LinkedInKey,
	}
	for u, expect := range tests {
		p, ok := reg.ForURL(u)
		if !ok || p.Key() != expect {
			t.Fatalf("url %s: expected %s, got %v", u, expect, p)
		}
	}

	if _, ok := reg.ForURL("https://jobs.example.com/1"); ok {
		t.Fatal("expected no portal for unknown url")
	}
}

func TestLinkedInPrompts(t *testing.T) {
	t.Parallel()

	_, li, _ := newTestRegistry(t)

	prompt, err := li.SearchPrompt(Options{Freshness: "1h", Applied: []string{"Acme - Backend (linkedin)"}})
	if err != nil {
		t.Fatalf("search prompt: %v", err)
	}
	for _, want := range []string{"on LinkedIn", "f_TPR=r3600", "Time posted: Past hour", "Enter Email/Username: li-user", "  - Acme - Backend (linkedin)"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("search prompt missing %q:\n%s", want, prompt)
		}
	}

	prompt, err = li.ApplyURLPrompt("https://www.linkedin.com/jobs/view/1", Options{})
	if err != nil {
		t.Fatalf("apply url prompt: %v", err)
	}
	if !strings.Contains(prompt, "JOB URL: https://www.linkedin.com/jobs/view/1") {
		t.Fatalf("unexpected apply url prompt:\n%s", prompt)
	}
}

func TestWorkAtAStartupWarning(t *testing.T) {
	t.Parallel()

	_, _, waas := newTestRegistry(t)

	plenty := Options{JobNumber: 1, TotalJobs: 2, RateLimit: tracking.RateLimitStatus{
		Type: tracking.Weekly, Used: 0, Limit: 5, Remaining: 5, CanApply: true, ResetInfo: "Resets in 3 day(s)",
	}}
	prompt, err := waas.ApplyPrompt(plenty)
	if err != nil {
		t.Fatalf("apply prompt: %v", err)
	}
	if strings.Contains(prompt, "WEEKLY LIMIT WARNING") {
		t.Fatalf("did not expect warning with 5 remaining:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Weekly limit: 5/5 applications remaining") {
		t.Fatalf("expected remaining note:\n%s", prompt)
	}

	low := plenty
	low.RateLimit.Used, low.RateLimit.Remaining = 3, 2
	prompt, err = waas.SearchPrompt(low)
	if err != nil {
		t.Fatalf("search prompt: %v", err)
	}
	if !strings.Contains(prompt, "WEEKLY LIMIT WARNING:\n- Used: 3/5 applications\n- Remaining: 2") {
		t.Fatalf("expected warning:\n%s", prompt)
	}

	spent := plenty
	spent.RateLimit.Used, spent.RateLimit.Remaining, spent.RateLimit.CanApply = 5, 0, false
	if _, err := waas.ApplyPrompt(spent); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected limit error, got %v", err)
	}
}

func TestParseSearchResult(t *testing.T) {
	t.Parallel()

	_, li, _ := newTestRegistry(t)

	raw := `---JOB_FOUND---
Portal: someplace-else
Company: Acme
Title: Backend Engineer
Score: 45/100
TechStack: Go, AWS
---END---
---JOB_FOUND---
Company: Globex
Title: Platform Engineer
---END---`

	records, err := li.ParseSearchResult(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Portal != LinkedInKey {
			t.Fatalf("expected portal to be pinned, got %q", rec.Portal)
		}
	}
	if records[0].Score != 45 || len(records[0].TechStack) != 2 {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
}

func TestParseApplyResult(t *testing.T) {
	t.Parallel()

	_, li, waas := newTestRegistry(t)

	rec, err := li.ParseApplyResult("Used Easy Apply.\n---JOB_APPLIED---\nCompany: Acme\nStatus: success\n---END---")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !rec.EasyApply || rec.Company != "Acme" || rec.Status != "success" || rec.Portal != LinkedInKey {
		t.Fatalf("unexpected linkedin record: %+v", rec)
	}

	rec, _ = waas.ParseApplyResult("---JOB_APPLIED---\nCompany: Initech (W23)\nStatus: failed\n---END---")
	if rec.YCBatch != "W23" || rec.Portal != WorkAtAStartupKey {
		t.Fatalf("unexpected waas record: %+v", rec)
	}

	rec, _ = waas.ParseApplyResult("")
	if rec.Portal != WorkAtAStartupKey || rec.YCBatch != "" {
		t.Fatalf("unexpected empty record: %+v", rec)
	}
}
