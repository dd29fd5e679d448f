// Package candidate holds the applicant profile injected into agent prompts
// and cover letters.
package candidate

import (
	"fmt"
	"strings"
)

type Contact struct {
	Email    string `mapstructure:"email"`
	Phone    string `mapstructure:"phone"`
	GitHub   string `mapstructure:"github"`
	LinkedIn string `mapstructure:"linkedin"`
}

// Profile is read from the "candidate" config section.
type Profile struct {
	Name         string   `mapstructure:"name"`
	Title        string   `mapstructure:"title"`
	Experience   string   `mapstructure:"experience"`
	Years        string   `mapstructure:"years"`
	Contact      Contact  `mapstructure:"contact"`
	Stack        []string `mapstructure:"stack"`
	Highlights   []string `mapstructure:"highlights"`
	Strengths    []string `mapstructure:"strengths"`
	TargetRoles  []string `mapstructure:"target-roles"`
	Relocation   string   `mapstructure:"relocation"`
	WorkAuthNote string   `mapstructure:"work-authorization"`
}

// Default is a placeholder profile used until the config provides one.
func Default() Profile {
	return Profile{
		Name:       "Alex Example",
		Title:      "Senior Backend Engineer",
		Experience: "4+ years building B2B SaaS backends",
		Years:      "4+",
		Contact: Contact{
			Email:    "alex@example.com",
			Phone:    "+1 555 0100",
			GitHub:   "github.com/alex-example",
			LinkedIn: "linkedin.com/in/alex-example",
		},
		Stack: []string{
			"Languages: Go, Node.js, TypeScript, GraphQL, Python",
			"Backend: PostgreSQL, MongoDB, Redis, REST APIs, Microservices",
			"Cloud: AWS (Lambda, SQS, SNS, EventBridge, S3), Docker, CI/CD",
			"AI/LLM: LangChain, LangGraph, agentic workflows, RAG",
		},
		Highlights: []string{
			"Owned a public-facing API service used by external customers",
			"Led a zero-downtime migration to a unified SaaS architecture",
			"Built event-driven systems handling 100M+ monthly requests",
		},
		Strengths: []string{
			"Remote and async native, strong written communication",
			"Pragmatic about performance, measures before optimizing",
		},
		TargetRoles: []string{
			"Senior Backend Engineer", "Backend Engineer", "Platform Engineer",
			"DevOps Engineer", "AI Engineer", "LLM Engineer",
		},
		Relocation:   "Depends on role (prefer remote)",
		WorkAuthNote: "Yes (for remote roles)",
	}
}

// Text renders the full profile block for agent prompts.
func (p Profile) Text() string {
	var b strings.Builder

	b.WriteString("CANDIDATE PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	fmt.Fprintf(&b, "- Title: %s\n", p.Title)
	fmt.Fprintf(&b, "- Experience: %s\n", p.Experience)
	fmt.Fprintf(&b, "- Contact: %s | %s\n", p.Contact.Email, p.Contact.Phone)
	if p.Contact.GitHub != "" {
		fmt.Fprintf(&b, "- GitHub: %s\n", p.Contact.GitHub)
	}
	if p.Contact.LinkedIn != "" {
		fmt.Fprintf(&b, "- LinkedIn: %s\n", p.Contact.LinkedIn)
	}

	writeSection(&b, "CORE STACK", p.Stack)
	writeSection(&b, "KEY ACHIEVEMENTS", p.Highlights)
	writeSection(&b, "PROFESSIONAL STRENGTHS", p.Strengths)
	writeSection(&b, "TARGET ROLES", p.TargetRoles)

	return strings.TrimRight(b.String(), "\n")
}

// Compact is the short form used for cover letter generation.
func (p Profile) Compact() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Candidate: %s, %s\n", p.Name, p.Title)
	fmt.Fprintf(&b, "- %s\n", p.Experience)
	for _, line := range p.Stack {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	for _, line := range p.Highlights {
		fmt.Fprintf(&b, "- %s\n", line)
	}

	return strings.TrimRight(b.String(), "\n")
}

// Screening renders the answers to common screening questions.
func (p Profile) Screening() []string {
	return []string{
		"Years of experience: " + p.Years,
		"Work authorization: " + p.WorkAuthNote,
		"Willing to relocate: " + p.Relocation,
	}
}

// ContactLines lists the fields an application form usually asks for.
func (p Profile) ContactLines() []string {
	return []string{
		"Name: " + p.Name,
		"Email: " + p.Contact.Email,
		"Phone: " + p.Contact.Phone,
		"GitHub: " + p.Contact.GitHub,
		"LinkedIn: " + p.Contact.LinkedIn,
		"Experience: " + p.Experience,
	}
}

func writeSection(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}

	fmt.Fprintf(b, "\n%s:\n", title)
	for _, line := range lines {
		fmt.Fprintf(b, "- %s\n", line)
	}
}
