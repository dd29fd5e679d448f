// Package scoring rates job postings against the candidate profile with
// plain case-insensitive substring matching.
package scoring

import (
	"fmt"
	"strings"
)

const (
	// Blacklisted is returned by Score for blacklisted companies.
	Blacklisted = -1

	minScore = -100
	maxScore = 100

	// Verdicts returned by Verdict.
	VerdictApply = "APPLY"
	VerdictSkip  = "SKIP"

	// Rejection reasons set on Analysis.RejectionReason. ReasonPassed means
	// the job cleared every scoring rule.
	ReasonBlacklisted = "blacklisted_company"
	ReasonNegative    = "negative_keywords"
	ReasonTooLow      = "score_too_low"
	ReasonPassed      = "passed"
)

// Analysis is the detailed view of a single scoring run.
type Analysis struct {
	Score           int      `json:"score"`
	Recommendation  string   `json:"recommendation"`
	ShouldApply     bool     `json:"should_apply"`
	MatchedRequired []string `json:"matched_required"`
	MatchedBonus    []string `json:"matched_bonus"`
	MatchedNegative []string `json:"matched_negative"`
	IsBlacklisted   bool     `json:"is_blacklisted"`
	RejectionReason string   `json:"rejection_reason"`
}

// Scorer rates jobs against one Config. It is safe for concurrent use.
type Scorer struct {
	cfg       Config
	blacklist map[string]struct{}
}

// New returns a Scorer over a copy of cfg.
func New(cfg Config) *Scorer {
	cfg = cfg.clone()

	blacklist := make(map[string]struct{}, len(cfg.Blacklist))
	for _, c := range cfg.Blacklist {
		blacklist[normalize(c)] = struct{}{}
	}

	return &Scorer{cfg: cfg, blacklist: blacklist}
}

// Config returns a copy of the scorer configuration.
func (s *Scorer) Config() Config {
	return s.cfg.clone()
}

// MinScore is the lowest score that still qualifies for an application.
func (s *Scorer) MinScore() int {
	return s.cfg.MinScore
}

// IsBlacklisted matches company against the blacklist ignoring case and
// surrounding whitespace.
func (s *Scorer) IsBlacklisted(company string) bool {
	_, ok := s.blacklist[normalize(company)]
	return ok
}

// Score returns the clamped match score, or Blacklisted.
// Negative keyword penalties stack per matched keyword.
func (s *Scorer) Score(title, company, description string) int {
	if s.IsBlacklisted(company) {
		return Blacklisted
	}

	text := searchText(title, description)
	score := 0

	score += s.cfg.NegativePenalty * len(matches(text, s.cfg.Negative))
	score += s.cfg.RequiredWeight * len(matches(text, s.cfg.Required))
	score += s.cfg.BonusWeight * len(matches(text, s.cfg.Bonus))

	if len(matches(text, s.cfg.ExperiencePatterns)) > 0 {
		score += s.cfg.ExperienceWeight
	}

	if strings.Contains(text, "remote") {
		score += s.cfg.RemoteWeight
	}

	return clamp(score)
}

// Analyze scores a job and reports the matched keywords and the reason it
// would be rejected, if any.
func (s *Scorer) Analyze(title, company, description string) *Analysis {
	text := searchText(title, description)
	score := s.Score(title, company, description)
	blacklisted := s.IsBlacklisted(company)

	reason := ReasonPassed
	switch {
	case blacklisted:
		reason = ReasonBlacklisted
	case score < 0:
		reason = ReasonNegative
	case score < s.cfg.MinScore:
		reason = ReasonTooLow
	}

	return &Analysis{
		Score:           score,
		Recommendation:  s.Recommendation(score),
		ShouldApply:     s.ShouldApply(score),
		MatchedRequired: matches(text, s.cfg.Required),
		MatchedBonus:    matches(text, s.cfg.Bonus),
		MatchedNegative: matches(text, s.cfg.Negative),
		IsBlacklisted:   blacklisted,
		RejectionReason: reason,
	}
}

// ShouldApply reports whether score reaches MinScore.
func (s *Scorer) ShouldApply(score int) bool {
	return score >= s.cfg.MinScore
}

// Verdict is the one-word answer handed to the agent.
func (s *Scorer) Verdict(score int) string {
	if s.ShouldApply(score) {
		return VerdictApply
	}
	return VerdictSkip
}

// Recommendation is a short human-readable label for score.
func (s *Scorer) Recommendation(score int) string {
	switch {
	case score == Blacklisted:
		return "SKIP (blacklisted company)"
	case score < 0:
		return fmt.Sprintf("SKIP (negative keywords, score: %d)", score)
	case score < s.cfg.MinScore:
		return fmt.Sprintf("SKIP (score %d < min %d)", score, s.cfg.MinScore)
	case score < 50:
		return fmt.Sprintf("MAYBE (score: %d)", score)
	case score < 70:
		return fmt.Sprintf("GOOD MATCH (score: %d)", score)
	default:
		return fmt.Sprintf("EXCELLENT MATCH (score: %d)", score)
	}
}

// Criteria renders the scoring rules as prompt text.
func (s *Scorer) Criteria() string {
	var b strings.Builder
	b.WriteString("JOB SCORING CRITERIA:\n")
	fmt.Fprintf(&b, "- Required keywords (+%d each): %s\n", s.cfg.RequiredWeight, strings.Join(s.cfg.Required, ", "))
	fmt.Fprintf(&b, "- Bonus keywords (+%d each): %s\n", s.cfg.BonusWeight, strings.Join(s.cfg.Bonus, ", "))
	fmt.Fprintf(&b, "- Experience match: +%d for %s\n", s.cfg.ExperienceWeight, strings.Join(s.cfg.ExperiencePatterns, ", "))
	fmt.Fprintf(&b, "- Remote: +%d bonus\n", s.cfg.RemoteWeight)
	fmt.Fprintf(&b, "- Minimum score to apply: %d", s.cfg.MinScore)
	return b.String()
}

// Blacklist returns the configured blacklist in its original spelling.
func (s *Scorer) Blacklist() []string {
	return append([]string(nil), s.cfg.Blacklist...)
}

func matches(text string, keywords []string) []string {
	found := make([]string, 0)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			found = append(found, kw)
		}
	}
	return found
}

func searchText(title, description string) string {
	return strings.ToLower(title + " " + description)
}

func clamp(score int) int {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
