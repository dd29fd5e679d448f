package tracking

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spigell/job-bot/internal/job"
)

type PortalSummary struct {
	Portal    string          `json:"portal"`
	Total     int             `json:"total"`
	RateLimit RateLimitStatus `json:"rate_limit"`
}

type Summary struct {
	TotalApplied int             `json:"total_applied"`
	Succeeded    int             `json:"succeeded"`
	AvgScore     float64         `json:"avg_score"`
	Portals      []PortalSummary `json:"portals"`

	Viewed           int            `json:"viewed"`
	Selected         int            `json:"selected"`
	Rejected         int            `json:"rejected"`
	RejectedByReason map[string]int `json:"rejected_by_reason"`
}

func (t *Tracker) Summary() (*Summary, error) {
	applied, err := t.stores[Applied].Load()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalApplied: applied.Stats.Total,
		Succeeded:    applied.Stats.ByStatus[job.StatusSuccess],
		AvgScore:     applied.Stats.AvgScore,
	}

	portals := make([]string, 0, len(applied.Stats.ByPortal))
	for portal := range applied.Stats.ByPortal {
		portals = append(portals, portal)
	}
	sort.Strings(portals)

	now := t.now()
	for _, portal := range portals {
		summary.Portals = append(summary.Portals, PortalSummary{
			Portal:    portal,
			Total:     applied.Stats.ByPortal[portal],
			RateLimit: computeStatus(t.limits.For(portal), applied.RateLimits[portal], now),
		})
	}

	for kind, dst := range map[Kind]*int{Viewed: &summary.Viewed, Selected: &summary.Selected} {
		doc, err := t.stores[kind].Load()
		if err != nil {
			return nil, err
		}
		*dst = doc.Stats.Total
	}

	rejected, err := t.stores[Rejected].Load()
	if err != nil {
		return nil, err
	}
	summary.Rejected = rejected.Stats.Total
	summary.RejectedByReason = rejected.Stats.ByReason

	return summary, nil
}

func (s *Summary) String() string {
	lines := []string{
		fmt.Sprintf("Total Applied: %d", s.TotalApplied),
		fmt.Sprintf("Success Rate: %d/%d", s.Succeeded, s.TotalApplied),
		fmt.Sprintf("Average Score: %s", strconv.FormatFloat(s.AvgScore, 'f', -1, 64)),
		fmt.Sprintf("Viewed: %d, Selected: %d, Rejected: %d", s.Viewed, s.Selected, s.Rejected),
		"",
		"By Portal:",
	}

	for _, p := range s.Portals {
		lines = append(lines, fmt.Sprintf("  - %s: %d total, %s", p.Portal, p.Total, p.RateLimit))
	}

	if len(s.RejectedByReason) > 0 {
		reasons := make([]string, 0, len(s.RejectedByReason))
		for reason := range s.RejectedByReason {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)

		lines = append(lines, "", "Rejected By Reason:")
		for _, reason := range reasons {
			lines = append(lines, fmt.Sprintf("  - %s: %d", reason, s.RejectedByReason[reason]))
		}
	}

	return strings.Join(lines, "\n")
}
