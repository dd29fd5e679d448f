// Package filtering triages parsed search results into kept and rejected
// jobs through a sequence of steps.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-bot/internal/job"
	"github.com/spigell/job-bot/internal/scoring"
)

// Filter represents a single triage step.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, jobs *Jobs) (*Jobs, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Rejection is a job dropped by a step.
type Rejection struct {
	Record   *job.Record
	Step     string
	Reason   string
	Analysis *scoring.Analysis
}

// Jobs is the working set passed between steps.
type Jobs struct {
	Items    []*job.Record
	Rejected []Rejection

	analyses map[*job.Record]*scoring.Analysis
}

func NewJobs(records []*job.Record) *Jobs {
	return &Jobs{Items: append([]*job.Record(nil), records...)}
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

// Score analyzes every job still in the set and stamps the score and matched
// keywords on it. Any later rejection carries the analysis, whichever step
// drops the job.
func (j *Jobs) Score(scorer *scoring.Scorer) {
	for _, rec := range j.Items {
		j.analyze(scorer, rec)
	}
}

// analyze returns the cached analysis of rec, scoring it on first use.
// A score reported by the agent wins over a keyword score of zero.
func (j *Jobs) analyze(scorer *scoring.Scorer, rec *job.Record) *scoring.Analysis {
	if analysis, ok := j.analyses[rec]; ok {
		return analysis
	}

	analysis := scorer.Analyze(rec.Title, rec.Company, rec.Description())
	if analysis.Score != 0 || rec.Score == 0 {
		rec.Score = analysis.Score
	}
	rec.MatchedRequired = analysis.MatchedRequired
	rec.MatchedBonus = analysis.MatchedBonus
	rec.MatchedNegative = analysis.MatchedNegative

	if j.analyses == nil {
		j.analyses = make(map[*job.Record]*scoring.Analysis, len(j.Items))
	}
	j.analyses[rec] = analysis
	return analysis
}

// drop moves every record for which reject returns a reason into Rejected.
func (j *Jobs) drop(step string, reject func(*job.Record) (string, *scoring.Analysis)) Step {
	initial := j.Len()

	kept := j.Items[:0]
	for _, rec := range j.Items {
		reason, analysis := reject(rec)
		if reason == "" {
			kept = append(kept, rec)
			continue
		}
		if analysis == nil {
			analysis = j.analyses[rec]
		}
		j.Rejected = append(j.Rejected, Rejection{Record: rec, Step: step, Reason: reason, Analysis: analysis})
	}
	j.Items = kept

	return Step{Initial: initial, Dropped: initial - j.Len(), Left: j.Len()}
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

type Filtering struct {
	steps  []Filter
	logger *zap.Logger
}

func New(steps []Filter, logger *zap.Logger) *Filtering {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filtering{steps: steps, logger: logger}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func (f *Filtering) DisableByName(name, reason string) {
	for _, step := range f.steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the filters sequentially.
func (f *Filtering) Run(ctx context.Context, jobs *Jobs) (*Jobs, error) {
	for _, step := range f.steps {
		if !step.IsEnabled() {
			f.logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, jobs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		f.logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		jobs = next
	}

	return jobs, nil
}

// Describe returns status entries for the configured filters.
func (f *Filtering) Describe() []Status {
	statuses := make([]Status, 0, len(f.steps))
	for _, step := range f.steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
