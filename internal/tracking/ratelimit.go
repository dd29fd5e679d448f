package tracking

import (
	"fmt"
	"time"

	"github.com/spigell/job-bot/internal/job"
)

const (
	Daily  = "daily"
	Weekly = "weekly"

	defaultLimit   = 25
	unlimitedLimit = 999
)

// Limit is the application cap of one portal.
type Limit struct {
	Type  string        `mapstructure:"type"`
	Limit int           `mapstructure:"limit"`
	Delay time.Duration `mapstructure:"delay"`
}

// Limits maps portal keys to their caps.
type Limits map[string]Limit

func DefaultLimits() Limits {
	return Limits{
		"linkedin":       {Type: Daily, Limit: 1, Delay: 10 * time.Second},
		"workatastartup": {Type: Weekly, Limit: 1, Delay: 5 * time.Second},
	}
}

// For returns the portal limit, falling back to a daily cap of 25.
func (l Limits) For(portal string) Limit {
	if limit, ok := l[portal]; ok {
		return limit
	}
	return Limit{Type: Daily, Limit: defaultLimit}
}

type RateLimitStatus struct {
	Type      string `json:"type"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	CanApply  bool   `json:"can_apply"`
	ResetInfo string `json:"reset_info"`
}

func (s RateLimitStatus) String() string {
	return fmt.Sprintf("%d/%d remaining (%s)", s.Remaining, s.Limit, s.ResetInfo)
}

// windowStart returns the key of the window containing now: the date itself
// for daily limits, the Monday of the week for weekly ones.
func windowStart(typ string, now time.Time) string {
	switch typ {
	case Daily:
		return now.Format(job.DateLayout)
	case Weekly:
		return now.AddDate(0, 0, -weekdayOffset(now)).Format(job.DateLayout)
	default:
		return ""
	}
}

// weekdayOffset counts days since Monday.
func weekdayOffset(now time.Time) int {
	return (int(now.Weekday()) + 6) % 7
}

// currentUsage resets lazily: a counter from another window counts as zero.
func currentUsage(limit Limit, counter *Counter, now time.Time) int {
	if counter == nil || counter.Type != limit.Type {
		return 0
	}
	if counter.WindowStart != windowStart(limit.Type, now) {
		return 0
	}
	return counter.Used
}

func computeStatus(limit Limit, counter *Counter, now time.Time) RateLimitStatus {
	status := RateLimitStatus{Type: limit.Type}

	switch limit.Type {
	case Daily:
		status.Used = currentUsage(limit, counter, now)
		status.Limit = limit.Limit
		status.ResetInfo = "Resets at midnight"
	case Weekly:
		status.Used = currentUsage(limit, counter, now)
		status.Limit = limit.Limit
		status.ResetInfo = fmt.Sprintf("Resets in %d day(s)", 7-weekdayOffset(now))
	default:
		status.Limit = unlimitedLimit
		status.ResetInfo = "No limit"
	}

	status.Remaining = max(0, status.Limit-status.Used)
	status.CanApply = status.Remaining > 0

	return status
}

func bump(doc *Document, portal string, limit Limit, now time.Time) {
	if limit.Type != Daily && limit.Type != Weekly {
		return
	}

	used := currentUsage(limit, doc.RateLimits[portal], now)
	doc.RateLimits[portal] = &Counter{
		Type:        limit.Type,
		Used:        used + 1,
		WindowStart: windowStart(limit.Type, now),
	}
}
