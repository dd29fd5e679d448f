package portal

import (
	"fmt"
	"regexp"

	"github.com/spigell/job-bot/internal/job"
	"github.com/spigell/job-bot/internal/task"
)

const (
	WorkAtAStartupKey = "workatastartup"

	workAtAStartupURL   = "https://www.workatastartup.com/"
	workAtAStartupRoles = "Backend Engineer, Software Engineer, Platform Engineer, AI Developer, AI Engineer, LLM Engineer"

	// warnRemaining triggers the limit warning in prompts.
	warnRemaining = 2
)

var ycBatch = regexp.MustCompile(`\(([WS]\d{2})\)`)

// WorkAtAStartup is YC's job board. It has no URL filters, so the agent
// applies them through the UI.
type WorkAtAStartup struct {
	base
}

func NewWorkAtAStartup(builder *task.Builder, creds Credentials) *WorkAtAStartup {
	return &WorkAtAStartup{
		base: base{
			key:     WorkAtAStartupKey,
			name:    "Work at a Startup",
			domain:  "workatastartup.com",
			creds:   creds,
			builder: builder,
		},
	}
}

func (w *WorkAtAStartup) site(opts Options) task.Site {
	site := w.base.site()
	site.StartURL = workAtAStartupURL
	site.FilterIntro = "Apply filters using the UI:"
	site.Filters = []string{
		"Click on filter options",
		`Select "Remote only" if available`,
		"Filter by company stage: Seed, Series A, Series B",
		"Filter by roles: " + workAtAStartupRoles,
		"PRIORITIZE roles mentioning: LangChain, agentic workflows, automated workflows with LLMs",
	}
	site.ApplySteps = []string{
		"Click on the job to view details",
		`Click "Apply" or "Quick Apply" button`,
	}
	site.SearchNotes = []string{
		"All companies are YC-backed startups",
		"Look for batch information (e.g., W23, S22) - indicates YC cohort",
		"Check for funding stage (Seed, Series A, B)",
		"Note if company is actively hiring vs. just listing",
		`Some jobs show "Quick Apply" - prefer these`,
	}
	site.ApplyNotes = []string{
		"All companies are YC-backed startups",
		"Application process is usually simpler than LinkedIn",
		"Cover letter is often required - use generate_cover_letter",
		"Some companies may have custom questions",
	}
	if opts.RateLimit.Limit > 0 {
		site.ApplyNotes = append(site.ApplyNotes,
			fmt.Sprintf("Weekly limit: %d/%d applications remaining", opts.RateLimit.Remaining, opts.RateLimit.Limit),
			opts.RateLimit.ResetInfo,
			"Be aware of the weekly limit - apply to best matches first!",
		)
	}
	return site
}

// limitWarning is empty unless the weekly budget is nearly spent.
func (w *WorkAtAStartup) limitWarning(opts Options) string {
	status := opts.RateLimit
	if status.Limit == 0 || status.Remaining > warnRemaining {
		return ""
	}

	return fmt.Sprintf(`WEEKLY LIMIT WARNING:
- Used: %d/%d applications
- Remaining: %d
- %s
- Apply carefully - you have limited applications left!`,
		status.Used, status.Limit, status.Remaining, status.ResetInfo)
}

func (w *WorkAtAStartup) SearchPrompt(opts Options) (string, error) {
	return w.builder.Search(task.Request{
		Site:          w.site(opts),
		Applied:       opts.Applied,
		RequireSalary: opts.RequireSalary,
		Warning:       w.limitWarning(opts),
	})
}

func (w *WorkAtAStartup) ApplyPrompt(opts Options) (string, error) {
	if opts.RateLimit.Limit > 0 && !opts.RateLimit.CanApply {
		return "", fmt.Errorf("%s: %w (%s)", w.key, ErrLimitReached, opts.RateLimit.ResetInfo)
	}

	return w.builder.Apply(task.Request{
		Site:          w.site(opts),
		Applied:       opts.Applied,
		RequireSalary: opts.RequireSalary,
		Warning:       w.limitWarning(opts),
		JobNumber:     opts.JobNumber,
		TotalJobs:     opts.TotalJobs,
	})
}

func (w *WorkAtAStartup) ApplyURLPrompt(url string, opts Options) (string, error) {
	return w.applyURLPrompt(url, w.site(opts), opts)
}

func (w *WorkAtAStartup) ParseSearchResult(raw string) ([]*job.Record, error) {
	return w.parseSearch(raw)
}

// ParseApplyResult also extracts the YC batch, e.g. "(W23)".
func (w *WorkAtAStartup) ParseApplyResult(raw string) (*job.Record, error) {
	rec, err := w.parseApply(raw)
	if m := ycBatch.FindStringSubmatch(raw); m != nil {
		rec.YCBatch = m[1]
	}
	return rec, err
}
