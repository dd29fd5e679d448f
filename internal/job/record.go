package job

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
	StatusDryRun  = "dry_run"

	ReasonRateLimitReached = "rate_limit_reached"

	// DateLayout is used for the per-record date field.
	DateLayout = "2006-01-02"
)

// Record is a single job sighting or application outcome.
// It is created once when the agent returns and never updated in place.
type Record struct {
	ID     string `json:"id,omitempty" mapstructure:"id"`
	Portal string `json:"portal,omitempty" mapstructure:"portal"`

	Company     string   `json:"company,omitempty" mapstructure:"company"`
	Title       string   `json:"title,omitempty" mapstructure:"title"`
	URL         string   `json:"url,omitempty" mapstructure:"url"`
	Score       int      `json:"score,omitempty" mapstructure:"score"`
	Status      string   `json:"status,omitempty" mapstructure:"status"`
	TechStack   []string `json:"tech_stack,omitempty" mapstructure:"tech_stack"`
	SalaryRange string   `json:"salary_range,omitempty" mapstructure:"salary_range"`
	Remote      string   `json:"remote,omitempty" mapstructure:"remote"`
	Experience  string   `json:"experience,omitempty" mapstructure:"experience"`
	Notes       string   `json:"notes,omitempty" mapstructure:"notes"`

	CoverLetterUsed bool   `json:"cover_letter_used,omitempty" mapstructure:"cover_letter_used"`
	ResumeUploaded  bool   `json:"resume_uploaded,omitempty" mapstructure:"resume_uploaded"`
	EasyApply       bool   `json:"easy_apply,omitempty" mapstructure:"easy_apply"`
	YCBatch         string `json:"yc_batch,omitempty" mapstructure:"yc_batch"`

	JobNumber int    `json:"job_number,omitempty" mapstructure:"job_number"`
	Date      string `json:"date,omitempty" mapstructure:"date"`
	RawResult string `json:"raw_result,omitempty" mapstructure:"raw_result"`
	Error     string `json:"error,omitempty" mapstructure:"error"`
	Reason    string `json:"reason,omitempty" mapstructure:"reason"`

	RejectionReason string   `json:"rejection_reason,omitempty" mapstructure:"rejection_reason"`
	MatchedRequired []string `json:"matched_required,omitempty" mapstructure:"matched_required"`
	MatchedBonus    []string `json:"matched_bonus,omitempty" mapstructure:"matched_bonus"`
	MatchedNegative []string `json:"matched_negative,omitempty" mapstructure:"matched_negative"`

	AppliedAt  *time.Time `json:"applied_at,omitempty" mapstructure:"applied_at"`
	ViewedAt   *time.Time `json:"viewed_at,omitempty" mapstructure:"viewed_at"`
	SelectedAt *time.Time `json:"selected_at,omitempty" mapstructure:"selected_at"`
	RejectedAt *time.Time `json:"rejected_at,omitempty" mapstructure:"rejected_at"`
}

// Identifier returns the display string used for de-duplication.
// It is not a stable key, only an equality check on what a human would read.
func Identifier(company, title, portal string) string {
	return fmt.Sprintf("%s - %s (%s)", company, title, portal)
}

func (r *Record) Identifier() string {
	return Identifier(r.Company, r.Title, r.Portal)
}

// Clone returns a shallow copy with its own slices, so stores can stamp
// their own metadata without touching the caller's record.
func (r *Record) Clone() *Record {
	c := *r
	c.TechStack = append([]string(nil), r.TechStack...)
	c.MatchedRequired = append([]string(nil), r.MatchedRequired...)
	c.MatchedBonus = append([]string(nil), r.MatchedBonus...)
	c.MatchedNegative = append([]string(nil), r.MatchedNegative...)
	return &c
}

// Description assembles a pseudo description from the structured fields.
// Search results rarely carry the full posting text, so scoring runs on this.
func (r *Record) Description() string {
	parts := make([]string, 0, len(r.TechStack)+2)
	parts = append(parts, r.TechStack...)
	if r.Experience != "" {
		parts = append(parts, r.Experience)
	}
	if r.Remote != "" {
		parts = append(parts, r.Remote)
	}
	if len(parts) == 0 {
		return r.Title
	}

	return strings.Join(parts, " ")
}

// HasSalaryRange reports whether the agent saw a salary range.
func (r *Record) HasSalaryRange() bool {
	switch normalize(r.SalaryRange) {
	case "", "not specified", "n/a":
		return false
	default:
		return true
	}
}
