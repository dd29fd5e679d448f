package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-bot/internal/job"
	"github.com/spigell/job-bot/internal/logger"
	"github.com/spigell/job-bot/internal/portal"
	"github.com/spigell/job-bot/internal/tracking"
	"github.com/spigell/job-bot/internal/utils"
)

const errUnknownPortal = "Unknown portal"

type ApplyOptions struct {
	RequireSalary bool
	Freshness     string
	DryRun        bool
	// Allocation overrides the configured one when set.
	Allocation []Allocation
}

type PortalResult struct {
	Portal    string
	Name      string
	Succeeded int
	Total     int
}

// ApplyReport collects the outcome of one application run.
type ApplyReport struct {
	Results []*job.Record
	Portals []PortalResult
}

// ApplyAll applies on every portal in allocation order. It only returns an
// error when ctx is cancelled; agent failures become failed records.
func (b *Bot) ApplyAll(ctx context.Context, opts ApplyOptions) (*ApplyReport, error) {
	allocation := opts.Allocation
	if len(allocation) == 0 {
		allocation = b.cfg.Allocation
	}

	total := 0
	for _, a := range allocation {
		total += a.Jobs
	}

	report := &ApplyReport{}
	counter := 0

	for _, a := range allocation {
		name := a.Portal
		if p, err := b.portals.Get(a.Portal); err == nil {
			name = p.Name()
		}
		report.Portals = append(report.Portals, PortalResult{Portal: a.Portal, Name: name})

		if a.Jobs <= 0 {
			continue
		}

		b.logger.Info("starting portal", zap.String("portal", a.Portal), zap.Int("jobs", a.Jobs))

		for i := 1; i <= a.Jobs; i++ {
			counter++
			report.Results = append(report.Results, b.ApplyOne(ctx, a.Portal, i, a.Jobs, opts))

			if counter < total && !opts.DryRun {
				delay := b.tracker.Limit(a.Portal).Delay
				if delay <= 0 {
					delay = DefaultApplyDelay
				}
				b.logger.Info("waiting before next application", zap.Duration("delay", delay))
				if err := b.wait(ctx, delay); err != nil {
					report.tally()
					return report, err
				}
			}
		}
	}

	report.tally()
	return report, nil
}

// ApplyOne applies to the next matching job on one portal. It never fails:
// problems are reported through the record status.
func (b *Bot) ApplyOne(ctx context.Context, key string, number, total int, opts ApplyOptions) *job.Record {
	log := b.logger.With(zap.String("portal", key), zap.Int("job_number", number), zap.Int("total_jobs", total))

	p, err := b.portals.Get(key)
	if err != nil {
		return b.failed(log, &job.Record{Portal: key, JobNumber: number}, err)
	}

	status, err := b.tracker.RateLimitStatus(key)
	if err != nil {
		return b.failed(log, &job.Record{Portal: key, JobNumber: number}, fmt.Errorf("rate limit status: %w", err))
	}
	if !status.CanApply {
		return b.limitReached(log, &job.Record{Portal: key}, status)
	}

	applied, err := b.tracker.AppliedIdentifiers()
	if err != nil {
		return b.failed(log, &job.Record{Portal: key, JobNumber: number}, fmt.Errorf("load applied jobs: %w", err))
	}

	prompt, err := p.ApplyPrompt(portal.Options{
		JobNumber:     number,
		TotalJobs:     total,
		RequireSalary: opts.RequireSalary,
		Freshness:     opts.Freshness,
		Applied:       applied,
		RateLimit:     status,
	})
	switch {
	case errors.Is(err, portal.ErrLimitReached):
		return b.limitReached(log, &job.Record{Portal: key}, status)
	case err != nil:
		return b.failed(log, &job.Record{Portal: key, JobNumber: number}, fmt.Errorf("build apply prompt: %w", err))
	}

	if opts.DryRun {
		log.Info("dry run, not applying", zap.String("rate_limit", status.String()))
		return &job.Record{Portal: key, JobNumber: number, Status: job.StatusDryRun, Date: b.date()}
	}

	log.Info("applying", zap.String("name", p.Name()), zap.String("rate_limit", status.String()))

	raw, err := b.agent.Run(ctx, b.task(key, prompt))
	if err != nil {
		return b.failed(log, &job.Record{Portal: key, JobNumber: number}, err)
	}

	rec, err := p.ParseApplyResult(raw)
	if err != nil {
		log.Debug("some job fields were not decoded", zap.Error(err))
	}
	rec.Portal = key
	rec.JobNumber = number
	return b.applied(log, rec, raw)
}

// ApplyURL applies to one posting. The portal is picked from the URL.
func (b *Bot) ApplyURL(ctx context.Context, url string, dryRun bool) *job.Record {
	log := b.logger.With(zap.String("url", url))

	p, ok := b.portals.ForURL(url)
	if !ok {
		log.Warn("unknown portal for url", zap.Strings("supported", b.portals.Keys()))
		return &job.Record{URL: url, Status: job.StatusFailed, Error: errUnknownPortal}
	}
	key := p.Key()
	log = log.With(zap.String("portal", key))

	status, err := b.tracker.RateLimitStatus(key)
	if err != nil {
		return b.failed(log, &job.Record{Portal: key, URL: url}, fmt.Errorf("rate limit status: %w", err))
	}
	if !status.CanApply {
		return b.limitReached(log, &job.Record{Portal: key, URL: url}, status)
	}

	applied, err := b.tracker.AppliedIdentifiers()
	if err != nil {
		return b.failed(log, &job.Record{Portal: key, URL: url}, fmt.Errorf("load applied jobs: %w", err))
	}

	prompt, err := p.ApplyURLPrompt(url, portal.Options{Applied: applied, RateLimit: status})
	if err != nil {
		return b.failed(log, &job.Record{Portal: key, URL: url}, fmt.Errorf("build apply prompt: %w", err))
	}

	if dryRun {
		log.Info("dry run, not applying", zap.String("prompt_preview", utils.TruncateForLog(prompt, previewLength)))
		return &job.Record{Portal: key, URL: url, Status: job.StatusDryRun, Date: b.date()}
	}

	log.Info("applying to url", zap.String("name", p.Name()))

	raw, err := b.agent.Run(ctx, b.task(key, prompt))
	if err != nil {
		return b.failed(log, &job.Record{Portal: key, URL: url}, err)
	}

	rec, err := p.ParseApplyResult(raw)
	if err != nil {
		log.Debug("some job fields were not decoded", zap.Error(err))
	}
	rec.Portal = key
	rec.URL = url
	return b.applied(log, rec, raw)
}

func (b *Bot) applied(log *zap.Logger, rec *job.Record, raw string) *job.Record {
	rec.Date = b.date()
	rec.RawResult = utils.Truncate(raw, b.cfg.RawResultLimit)

	if err := b.tracker.SaveApplied(rec); err != nil {
		log.Error("saving applied job", append(logger.JobFields(rec), zap.Error(err))...)
	}

	log.Info("application finished", logger.JobFields(rec)...)
	return rec
}

// failed persists the attempt with status failed.
func (b *Bot) failed(log *zap.Logger, rec *job.Record, err error) *job.Record {
	rec.Status = job.StatusFailed
	rec.Error = err.Error()
	rec.Date = b.date()

	log.Error("application failed", zap.Error(err))

	if err := b.tracker.SaveApplied(rec); err != nil {
		log.Error("saving failed application", zap.Error(err))
	}
	return rec
}

func (b *Bot) limitReached(log *zap.Logger, rec *job.Record, status tracking.RateLimitStatus) *job.Record {
	log.Warn("rate limit reached",
		zap.Int("used", status.Used),
		zap.Int("limit", status.Limit),
		zap.String("reset", status.ResetInfo),
	)

	rec.Status = job.StatusSkipped
	rec.Reason = job.ReasonRateLimitReached
	return rec
}

func (b *Bot) date() string {
	return b.now().Format(job.DateLayout)
}

func (r *ApplyReport) tally() {
	for i := range r.Portals {
		p := &r.Portals[i]
		p.Succeeded, p.Total = 0, 0
		for _, rec := range r.Results {
			if rec.Portal != p.Portal {
				continue
			}
			p.Total++
			if rec.Status == job.StatusSuccess {
				p.Succeeded++
			}
		}
	}
}

func (r *ApplyReport) Succeeded() int {
	return r.count(func(rec *job.Record) bool { return rec.Status == job.StatusSuccess })
}

func (r *ApplyReport) Failed() int {
	return r.count(func(rec *job.Record) bool { return rec.Status == job.StatusFailed || rec.Error != "" })
}

func (r *ApplyReport) Skipped() int {
	return r.count(func(rec *job.Record) bool {
		return rec.Status == job.StatusSkipped || rec.Status == job.StatusDryRun
	})
}

func (r *ApplyReport) count(match func(*job.Record) bool) int {
	n := 0
	for _, rec := range r.Results {
		if match(rec) {
			n++
		}
	}
	return n
}

func (r *ApplyReport) String() string {
	var sb strings.Builder

	sb.WriteString("APPLICATION SUMMARY\n")
	fmt.Fprintf(&sb, "Total attempted: %d\n", len(r.Results))
	fmt.Fprintf(&sb, "Successful: %d\n", r.Succeeded())
	fmt.Fprintf(&sb, "Failed: %d\n", r.Failed())
	fmt.Fprintf(&sb, "Skipped: %d\n", r.Skipped())
	sb.WriteString("\nBy Portal:")
	for _, p := range r.Portals {
		fmt.Fprintf(&sb, "\n  - %s: %d/%d", p.Name, p.Succeeded, p.Total)
	}

	return sb.String()
}

// Describe renders a single application outcome.
func Describe(rec *job.Record) string {
	score := "N/A"
	if rec.Score != 0 {
		score = fmt.Sprint(rec.Score)
	}

	lines := []string{
		"APPLICATION RESULT",
		"Company: " + orDefault(rec.Company, unknownDisplay),
		"Title: " + orDefault(rec.Title, unknownDisplay),
		"Status: " + orDefault(rec.Status, "unknown"),
		"Score: " + score,
		fmt.Sprintf("Cover Letter Used: %t", rec.CoverLetterUsed),
		fmt.Sprintf("Resume Uploaded: %t", rec.ResumeUploaded),
	}
	if rec.Notes != "" {
		lines = append(lines, "Notes: "+rec.Notes)
	}
	if rec.Reason != "" {
		lines = append(lines, "Reason: "+rec.Reason)
	}
	if rec.Error != "" {
		lines = append(lines, "Error: "+rec.Error)
	}
	return strings.Join(lines, "\n")
}
