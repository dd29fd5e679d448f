package filtering

import (
	"context"

	"github.com/spigell/job-bot/internal/job"
	"github.com/spigell/job-bot/internal/scoring"
)

const ReasonNoSalaryRange = "no_salary_range"

type salaryRangeFilter struct {
	enabled bool
	reason  string
}

// NewSalaryRange creates a filter that drops jobs without a visible salary.
// It starts disabled unless required is set.
func NewSalaryRange(required bool) Filter {
	f := &salaryRangeFilter{enabled: required}
	if !required {
		f.reason = "salary filter is off"
	}
	return f
}

func (f *salaryRangeFilter) Name() string { return "salary_range" }

func (f *salaryRangeFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *salaryRangeFilter) IsEnabled() bool { return f.enabled }

func (f *salaryRangeFilter) Apply(_ context.Context, jobs *Jobs) (*Jobs, Step, error) {
	step := jobs.drop(f.Name(), func(rec *job.Record) (string, *scoring.Analysis) {
		if rec.HasSalaryRange() {
			return "", nil
		}
		return ReasonNoSalaryRange, nil
	})
	return jobs, step, nil
}

func (f *salaryRangeFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.enabled, Reason: f.reason}
}
