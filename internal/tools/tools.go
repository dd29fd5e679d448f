// Package tools defines the functions an agent may call mid-task.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/job-bot/internal/ai"
	"github.com/spigell/job-bot/internal/scoring"
)

const (
	CalculateMatchScore = "calculate_match_score"
	AnalyzeJob          = "analyze_job"
	GenerateCoverLetter = "generate_cover_letter"
)

var jobParams = []ai.Param{
	{Name: "job_title", Description: "Job title as shown in the posting"},
	{Name: "job_description", Description: "Full job description text"},
	{Name: "company", Description: "Company name"},
}

// LetterWriter is implemented by coverletter.Writer.
type LetterWriter interface {
	Generate(ctx context.Context, title, company, description string) (string, string)
}

// New returns the agent tools. Cover letters are left out when writer is nil.
func New(scorer *scoring.Scorer, writer LetterWriter) []ai.Tool {
	tools := []ai.Tool{
		{
			Name:        CalculateMatchScore,
			Description: "Calculate job match score based on requirements",
			Params:      jobParams,
			Call: func(_ context.Context, args map[string]string) (string, error) {
				return matchScore(scorer, args["job_title"], args["company"], args["job_description"]), nil
			},
		},
		{
			Name:        AnalyzeJob,
			Description: "Analyze a job posting in detail",
			Params:      jobParams,
			Call: func(_ context.Context, args map[string]string) (string, error) {
				return analyze(scorer, args["job_title"], args["company"], args["job_description"]), nil
			},
		},
	}

	if writer != nil {
		tools = append(tools, ai.Tool{
			Name:        GenerateCoverLetter,
			Description: "Generate a tailored cover letter for the job application",
			Params: []ai.Param{
				{Name: "job_title", Description: "Job title as shown in the posting"},
				{Name: "company", Description: "Company name"},
				{Name: "job_description", Description: "Full job description text"},
			},
			Call: func(ctx context.Context, args map[string]string) (string, error) {
				letter, method := writer.Generate(ctx, args["job_title"], args["company"], args["job_description"])
				return fmt.Sprintf("[Generated via %s]\n\n%s", method, letter), nil
			},
		})
	}

	return tools
}

func matchScore(scorer *scoring.Scorer, title, company, description string) string {
	score := scorer.Score(title, company, description)

	switch {
	case score == scoring.Blacklisted && scorer.IsBlacklisted(company):
		return fmt.Sprintf("SKIP: %s is in the blacklist", company)
	case score < 0:
		return fmt.Sprintf("SKIP: Score %d (contains negative keywords)", score)
	default:
		return fmt.Sprintf("Score: %d/100 - %s", score, scorer.Verdict(score))
	}
}

func analyze(scorer *scoring.Scorer, title, company, description string) string {
	a := scorer.Analyze(title, company, description)

	lines := []string{
		fmt.Sprintf("Score: %d/100", a.Score),
		"Recommendation: " + a.Recommendation,
		"Should Apply: " + yesNo(a.ShouldApply),
		"",
		"Matched Required Keywords: " + joinOrNone(a.MatchedRequired),
		"Matched Bonus Keywords: " + joinOrNone(a.MatchedBonus),
	}
	if len(a.MatchedNegative) > 0 {
		lines = append(lines, "WARNING - Negative Keywords Found: "+strings.Join(a.MatchedNegative, ", "))
	}
	if a.IsBlacklisted {
		lines = append(lines, "WARNING: Company is blacklisted!")
	}

	return strings.Join(lines, "\n")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
