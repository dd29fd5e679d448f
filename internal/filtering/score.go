package filtering

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/job-bot/internal/job"
	"github.com/spigell/job-bot/internal/scoring"
)

type scoreFilter struct {
	scorer   *scoring.Scorer
	logger   *zap.Logger
	disabled bool
	reason   string
}

// NewScore creates the keyword scoring step. Jobs not yet scored through
// Jobs.Score are stamped here. Those that do not pass are dropped.
func NewScore(scorer *scoring.Scorer, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &scoreFilter{scorer: scorer, logger: logger}
}

func (f *scoreFilter) Name() string { return "score" }

func (f *scoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *scoreFilter) IsEnabled() bool { return !f.disabled }

func (f *scoreFilter) Apply(_ context.Context, jobs *Jobs) (*Jobs, Step, error) {
	step := jobs.drop(f.Name(), func(rec *job.Record) (string, *scoring.Analysis) {
		analysis := jobs.analyze(f.scorer, rec)
		score := rec.Score

		if analysis.RejectionReason == scoring.ReasonPassed || score >= f.scorer.MinScore() {
			return "", nil
		}

		f.logger.Debug("job rejected by score",
			zap.String("job", rec.Identifier()),
			zap.Int("score", score),
			zap.String("reason", analysis.RejectionReason),
		)
		return analysis.RejectionReason, analysis
	})

	return jobs, step, nil
}

func (f *scoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_score": strconv.Itoa(f.scorer.MinScore())},
	}
}
