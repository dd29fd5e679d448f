package portal

import (
	"net/url"
	"strings"

	"github.com/spigell/job-bot/internal/job"
	"github.com/spigell/job-bot/internal/task"
)

const (
	LinkedInKey = "linkedin"

	linkedInSearchURL = "https://www.linkedin.com/jobs/search/"
	linkedInKeywords  = "Backend Engineer Node.js TypeScript Remote AI Developer LangChain Agentic Workflows"

	DefaultFreshness = "24h"
)

// Freshness maps menu values to LinkedIn's f_TPR parameter.
var Freshness = map[string]string{
	"1h":  "r3600",
	"24h": "r86400",
	"7d":  "r604800",
	"30d": "r2592000",
}

// FreshnessChoices is the display order for the interactive menu.
var FreshnessChoices = []string{"1h", "24h", "7d", "30d"}

type LinkedIn struct {
	base
	keywords string
}

func NewLinkedIn(builder *task.Builder, creds Credentials, keywords string) *LinkedIn {
	if keywords == "" {
		keywords = linkedInKeywords
	}

	return &LinkedIn{
		base: base{
			key:     LinkedInKey,
			name:    "LinkedIn",
			domain:  "linkedin.com",
			creds:   creds,
			builder: builder,
		},
		keywords: keywords,
	}
}

// SearchURL builds the filtered search URL: remote only, mid/senior level,
// newest first.
func (l *LinkedIn) SearchURL(freshness string) string {
	tpr, ok := Freshness[freshness]
	if !ok {
		tpr = Freshness[DefaultFreshness]
	}

	params := url.Values{}
	params.Set("keywords", l.keywords)
	params.Set("f_TPR", tpr)
	params.Set("sortBy", "DD")
	params.Set("f_WT", "2")
	params.Set("f_E", "3,4")

	return linkedInSearchURL + "?" + params.Encode()
}

func (l *LinkedIn) site(opts Options) task.Site {
	site := l.base.site()
	site.StartURL = l.SearchURL(opts.Freshness)
	site.FilterIntro = "The URL already includes these filters:"
	site.Filters = []string{
		"Time posted: " + FreshnessLabel(opts.Freshness),
		"Remote only",
		"Mid-Senior level experience",
		"Sorted by date (newest first)",
	}
	site.SearchChecks = []string{`Note if "Easy Apply" button is present (preferred)`}
	site.ApplySteps = []string{
		`Click "Easy Apply" if available`,
		"If external application, follow the link and complete there",
	}
	site.SearchNotes = []string{
		`Prefer "Easy Apply" jobs (faster application process)`,
		"Check if job requires external application",
		"Note any application questions visible",
		`Skip "Promoted" listings if possible (usually lower quality)`,
		"Skip jobs already in the applied list",
	}
	site.ApplyNotes = []string{
		`"Easy Apply" is faster and preferred`,
		"Some jobs redirect to company websites",
		"Watch for multi-step application forms",
		"Skip jobs that require assessment tests",
	}
	return site
}

func (l *LinkedIn) SearchPrompt(opts Options) (string, error) {
	return l.builder.Search(task.Request{
		Site:          l.site(opts),
		Applied:       opts.Applied,
		RequireSalary: opts.RequireSalary,
	})
}

func (l *LinkedIn) ApplyPrompt(opts Options) (string, error) {
	return l.builder.Apply(task.Request{
		Site:          l.site(opts),
		Applied:       opts.Applied,
		RequireSalary: opts.RequireSalary,
		JobNumber:     opts.JobNumber,
		TotalJobs:     opts.TotalJobs,
	})
}

func (l *LinkedIn) ApplyURLPrompt(url string, opts Options) (string, error) {
	return l.applyURLPrompt(url, l.site(opts), opts)
}

func (l *LinkedIn) ParseSearchResult(raw string) ([]*job.Record, error) {
	return l.parseSearch(raw)
}

// ParseApplyResult also flags Easy Apply when the agent mentions it.
func (l *LinkedIn) ParseApplyResult(raw string) (*job.Record, error) {
	rec, err := l.parseApply(raw)
	rec.EasyApply = strings.Contains(strings.ToLower(raw), "easy apply")
	return rec, err
}

// FreshnessLabel is the human-readable name of a freshness value.
func FreshnessLabel(freshness string) string {
	switch freshness {
	case "1h":
		return "Past hour"
	case "7d":
		return "Past week"
	case "30d":
		return "Past month"
	default:
		return "Past 24 hours"
	}
}
