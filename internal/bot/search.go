package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-bot/internal/filtering"
	"github.com/spigell/job-bot/internal/job"
	"github.com/spigell/job-bot/internal/logger"
	"github.com/spigell/job-bot/internal/portal"
	"github.com/spigell/job-bot/internal/utils"
)

const (
	topJobs        = 10
	previewLength  = 500
	notSpecified   = "Not specified"
	unknownDisplay = "Unknown"
)

type SearchOptions struct {
	// Portals to search, in order. Empty means every allocated portal.
	Portals       []string
	RequireSalary bool
	Freshness     string
	DryRun        bool
}

type SearchResult struct {
	Found         []*job.Record
	Selected      []*job.Record
	Rejected      []filtering.Rejection
	RequireSalary bool
	MinScore      int
}

// Search browses every portal and triages what the agent found.
// A failing portal is logged and contributes no jobs.
func (b *Bot) Search(ctx context.Context, opts SearchOptions) (*SearchResult, error) {
	keys := opts.Portals
	if len(keys) == 0 {
		for _, a := range b.cfg.Allocation {
			keys = append(keys, a.Portal)
		}
	}

	result := &SearchResult{RequireSalary: opts.RequireSalary, MinScore: b.scorer.MinScore()}

	for i, key := range keys {
		found, err := b.searchPortal(ctx, key, opts)
		if err != nil {
			b.logger.Error("search failed", zap.String("portal", key), zap.Error(err))
		} else {
			result.Found = append(result.Found, found.records...)
			result.Selected = append(result.Selected, found.kept...)
			result.Rejected = append(result.Rejected, found.rejected...)
		}

		if i < len(keys)-1 && !opts.DryRun {
			b.logger.Info("waiting before next portal", zap.Duration("delay", b.cfg.PortalDelay))
			if err := b.wait(ctx, b.cfg.PortalDelay); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

type portalFindings struct {
	records  []*job.Record
	kept     []*job.Record
	rejected []filtering.Rejection
}

func (b *Bot) searchPortal(ctx context.Context, key string, opts SearchOptions) (*portalFindings, error) {
	p, err := b.portals.Get(key)
	if err != nil {
		return nil, err
	}
	log := b.logger.With(zap.String("portal", key))

	applied, err := b.tracker.AppliedIdentifiers()
	if err != nil {
		return nil, fmt.Errorf("load applied jobs: %w", err)
	}
	limit, err := b.tracker.RateLimitStatus(key)
	if err != nil {
		return nil, fmt.Errorf("rate limit status: %w", err)
	}

	prompt, err := p.SearchPrompt(portal.Options{
		RequireSalary: opts.RequireSalary,
		Freshness:     opts.Freshness,
		Applied:       applied,
		RateLimit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("build search prompt: %w", err)
	}

	if opts.DryRun {
		log.Info("dry run, not searching", zap.String("prompt_preview", utils.TruncateForLog(prompt, previewLength)))
		return &portalFindings{}, nil
	}

	log.Info("searching for jobs", zap.String("name", p.Name()))

	raw, err := b.agent.Run(ctx, b.task(key, prompt))
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}

	records, err := p.ParseSearchResult(raw)
	if err != nil {
		log.Debug("some job fields were not decoded", zap.Error(err))
	}

	pipeline := filtering.New([]filtering.Filter{
		filtering.NewAppliedHistory(b.tracker, log),
		filtering.NewSalaryRange(opts.RequireSalary),
		filtering.NewScore(b.scorer, log),
	}, log)

	jobs := filtering.NewJobs(records)
	jobs.Score(b.scorer)

	triaged, err := pipeline.Run(ctx, jobs)
	if err != nil {
		return nil, fmt.Errorf("triage: %w", err)
	}

	b.track(log, records, triaged)

	log.Info("search finished",
		zap.Int("found", len(records)),
		zap.Int("selected", triaged.Len()),
		zap.Int("rejected", len(triaged.Rejected)),
	)

	return &portalFindings{records: records, kept: triaged.Items, rejected: triaged.Rejected}, nil
}

// track persists every sighting as viewed, then as selected or rejected.
// Store errors are logged and do not stop the loop.
func (b *Bot) track(log *zap.Logger, records []*job.Record, triaged *filtering.Jobs) {
	for _, rec := range records {
		if _, err := b.tracker.SaveViewed(rec); err != nil {
			log.Error("saving viewed job", append(logger.JobFields(rec), zap.Error(err))...)
		}
	}
	for _, rec := range triaged.Items {
		if _, err := b.tracker.SaveSelected(rec); err != nil {
			log.Error("saving selected job", append(logger.JobFields(rec), zap.Error(err))...)
		}
	}
	for _, r := range triaged.Rejected {
		if _, err := b.tracker.SaveRejected(r.Record, r.Reason, r.Analysis); err != nil {
			log.Error("saving rejected job", append(logger.JobFields(r.Record), zap.Error(err))...)
		}
	}
}

func (r *SearchResult) String() string {
	var sb strings.Builder

	sb.WriteString("SEARCH SUMMARY\n")

	jobs := r.Found
	if r.RequireSalary {
		withSalary := make([]*job.Record, 0, len(jobs))
		for _, rec := range jobs {
			if rec.HasSalaryRange() {
				withSalary = append(withSalary, rec)
			}
		}
		fmt.Fprintf(&sb, "Filtered to jobs with salary range: %d jobs\n", len(withSalary))
		jobs = withSalary
	}

	fmt.Fprintf(&sb, "Total jobs found: %d\n", len(jobs))

	high := 0
	for _, rec := range jobs {
		if rec.Score >= r.MinScore {
			high++
		}
	}
	fmt.Fprintf(&sb, "Jobs with score >= %d: %d\n", r.MinScore, high)
	fmt.Fprintf(&sb, "Selected: %d, Rejected: %d", len(r.Selected), len(r.Rejected))

	if len(jobs) == 0 {
		return sb.String()
	}

	sorted := append([]*job.Record(nil), jobs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	if len(sorted) > topJobs {
		sorted = sorted[:topJobs]
	}

	fmt.Fprintf(&sb, "\n\nTop %d jobs by score:", topJobs)
	for i, rec := range sorted {
		fmt.Fprintf(&sb, "\n  %d. %s - %s (Score: %d, Salary: %s)",
			i+1, orDefault(rec.Company, unknownDisplay), orDefault(rec.Title, unknownDisplay),
			rec.Score, orDefault(rec.SalaryRange, notSpecified))
	}

	return sb.String()
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
