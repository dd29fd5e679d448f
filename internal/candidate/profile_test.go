package candidate

import (
	"strings"
	"testing"
)

func TestProfileText(t *testing.T) {
	t.Parallel()

	p := Default()
	p.Strengths = nil
	p.Contact.GitHub = ""

	text := p.Text()

	for _, want := range []string{"CANDIDATE PROFILE:", "- Name: Alex Example", "CORE STACK:", "TARGET ROLES:"} {
		if !strings.Contains(text, want) {
			t.Fatalf("profile text is missing %q:\n%s", want, text)
		}
	}
	for _, unwanted := range []string{"PROFESSIONAL STRENGTHS", "GitHub:"} {
		if strings.Contains(text, unwanted) {
			t.Fatalf("profile text should skip %q:\n%s", unwanted, text)
		}
	}
	if strings.HasSuffix(text, "\n") {
		t.Fatal("profile text should not end with a newline")
	}
}

func TestProfileCompact(t *testing.T) {
	t.Parallel()

	p := Profile{Name: "Sam", Title: "Platform Engineer", Experience: "6 years", Stack: []string{"Go"}}

	want := "Candidate: Sam, Platform Engineer\n- 6 years\n- Go"
	if got := p.Compact(); got != want {
		t.Fatalf("Compact() = %q, want %q", got, want)
	}
}
