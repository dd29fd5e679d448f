package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/job-bot/internal/job"
	"github.com/spigell/job-bot/internal/scoring"
)

const ReasonAlreadyApplied = "already_applied"

// AppliedChecker is implemented by tracking.Tracker.
type AppliedChecker interface {
	IsAlreadyApplied(company, title, portal string) (bool, error)
}

type appliedHistoryFilter struct {
	checker  AppliedChecker
	logger   *zap.Logger
	disabled bool
	reason   string
}

// NewAppliedHistory creates a filter that removes jobs already in the applied store.
func NewAppliedHistory(checker AppliedChecker, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &appliedHistoryFilter{checker: checker, logger: logger}
}

func (f *appliedHistoryFilter) Name() string { return "applied_history" }

func (f *appliedHistoryFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *appliedHistoryFilter) IsEnabled() bool { return !f.disabled }

func (f *appliedHistoryFilter) Apply(_ context.Context, jobs *Jobs) (*Jobs, Step, error) {
	if f.checker == nil {
		return jobs, Step{}, fmt.Errorf("applied history checker is required")
	}

	var lookupErr error
	step := jobs.drop(f.Name(), func(rec *job.Record) (string, *scoring.Analysis) {
		if lookupErr != nil {
			return "", nil
		}
		applied, err := f.checker.IsAlreadyApplied(rec.Company, rec.Title, rec.Portal)
		if err != nil {
			lookupErr = err
			return "", nil
		}
		if applied {
			f.logger.Info("excluding already applied job", zap.String("job", rec.Identifier()))
			return ReasonAlreadyApplied, nil
		}
		return "", nil
	})
	if lookupErr != nil {
		return jobs, Step{}, fmt.Errorf("check applied history: %w", lookupErr)
	}

	return jobs, step, nil
}

func (f *appliedHistoryFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"exclude_applied": strconv.FormatBool(!f.disabled)},
	}
}
