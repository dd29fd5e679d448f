package task

import (
	"fmt"
	"strings"
	"testing"

	"github.com/spigell/job-bot/internal/candidate"
)

func newBuilder(t *testing.T, blacklist ...string) *Builder {
	t.Helper()

	b, err := New(Config{
		Candidate:  candidate.Default(),
		Criteria:   "JOB SCORING CRITERIA:\n- Minimum score to apply: 30",
		Blacklist:  blacklist,
		MinScore:   30,
		ResumePath: "/tmp/resume.pdf",
	})
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}

	return b
}

func testSite() Site {
	return Site{
		Key:          "linkedin",
		Name:         "LinkedIn",
		StartURL:     "https://www.linkedin.com/jobs/search/?keywords=go",
		FilterIntro:  "The URL already includes these filters:",
		Filters:      []string{"Remote only"},
		SearchChecks: []string{`Note if "Easy Apply" button is present (preferred)`},
		ApplySteps:   []string{`Click "Easy Apply" if available`},
		NotesTitle:   "LINKEDIN-SPECIFIC NOTES",
		SearchNotes:  []string{"Prefer Easy Apply jobs"},
		ApplyNotes:   []string{"Some jobs redirect to company websites"},
	}
}

func assertContains(t *testing.T, text string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(text, want) {
			t.Fatalf("prompt missing %q:\n%s", want, text)
		}
	}
}

func assertNotContains(t *testing.T, text string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(text, u) {
			t.Fatalf("prompt unexpectedly contains %q:\n%s", u, text)
		}
	}
}

func TestSearchPrompt(t *testing.T) {
	t.Parallel()

	prompt, err := newBuilder(t).Search(Request{Site: testSite()})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	assertContains(t, prompt,
		"TASK: Search and list matching jobs on LinkedIn",
		"CANDIDATE PROFILE:",
		"ALREADY APPLIED (DO NOT LIST THESE):\n  None yet",
		"BLACKLISTED COMPANIES (SKIP THESE):\nNone",
		"1. Navigate to https://www.linkedin.com/jobs/search/?keywords=go\n",
		"2. The URL already includes these filters:\n   - Remote only",
		"---JOB_FOUND---",
		"   Portal: linkedin",
		"LINKEDIN-SPECIFIC NOTES:\n- Prefer Easy Apply jobs",
		"Only list jobs scoring >= 30",
	)
	assertNotContains(t, prompt, "SALARY RANGE FILTER", "Enter Password")
}

func TestSearchPromptWithSalaryAndLogin(t *testing.T) {
	t.Parallel()

	site := testSite()
	site.Username = "user@example.com"
	site.Password = "secret"

	prompt, err := newBuilder(t, "Globex", "Initech").Search(Request{Site: site, RequireSalary: true})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	assertContains(t, prompt,
		"SALARY RANGE FILTER (REQUIRED):",
		"CHECK: Verify salary range is visible before proceeding",
		"ONLY list jobs that have a visible salary range",
		"   - Enter Email/Username: user@example.com\n   - Enter Password: secret",
		"Globex, Initech",
	)
}

func TestAppliedListIsLimited(t *testing.T) {
	t.Parallel()

	applied := make([]string, 0, 35)
	for i := 0; i < 35; i++ {
		applied = append(applied, fmt.Sprintf("job-%d", i))
	}

	prompt, err := newBuilder(t).Apply(Request{Site: testSite(), Applied: applied, JobNumber: 1, TotalJobs: 1})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	assertContains(t, prompt, "AGAIN):\n  - job-5\n", "  - job-34\n")
	assertNotContains(t, prompt, "  - job-4\n", "  - job-0\n")
}

func TestApplyPrompt(t *testing.T) {
	t.Parallel()

	prompt, err := newBuilder(t).Apply(Request{
		Site:      testSite(),
		JobNumber: 2,
		TotalJobs: 3,
		Warning:   "WEEKLY LIMIT WARNING:\n- Remaining: 1",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	assertContains(t, prompt,
		"TASK: Apply to job 2 of 3 on LinkedIn",
		"WEEKLY LIMIT WARNING:",
		`   - Click "Easy Apply" if available`,
		"Upload resume if prompted (path: /tmp/resume.pdf)",
		"Years of experience: 4+",
		"---JOB_APPLIED---",
		"   URL: [job url]",
		"Only apply if score >= 30",
	)
}

func TestApplyURLPrompt(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)

	if _, err := b.ApplyURL(Request{Site: testSite()}); err == nil {
		t.Fatal("expected error for empty url")
	}

	url := "https://www.linkedin.com/jobs/view/123"
	prompt, err := b.ApplyURL(Request{Site: testSite(), URL: url})
	if err != nil {
		t.Fatalf("apply url: %v", err)
	}

	assertContains(t, prompt,
		"JOB URL: "+url,
		"   URL: "+url,
		"   Score: N/A",
		"* Email: alex@example.com",
	)
}
