// Package task renders the natural-language instructions handed to the
// browser agent.
package task

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/spigell/job-bot/internal/candidate"
)

//go:embed templates/*.tmpl
var templates embed.FS

const (
	DefaultAppliedLimit = 30
	DefaultMaxListed    = 20

	searchTemplate   = "search.tmpl"
	applyTemplate    = "apply.tmpl"
	applyURLTemplate = "apply_url.tmpl"
)

// Config is fixed for the lifetime of a Builder.
type Config struct {
	Candidate    candidate.Profile
	Criteria     string
	Blacklist    []string
	MinScore     int
	ResumePath   string
	AppliedLimit int
	MaxListed    int
}

// Site carries the per-portal parts of a prompt.
type Site struct {
	Key      string
	Name     string
	StartURL string
	Username string
	Password string

	FilterIntro  string
	Filters      []string
	SearchChecks []string
	ApplySteps   []string

	NotesTitle  string
	SearchNotes []string
	ApplyNotes  []string
}

type Request struct {
	Site          Site
	Applied       []string
	RequireSalary bool
	Warning       string

	JobNumber int
	TotalJobs int
	URL       string
}

type view struct {
	Request

	Candidate  string
	Blacklist  string
	Criteria   string
	MinScore   int
	MaxListed  int
	ResumePath string
	Screening  []string
	Contact    []string
}

type Builder struct {
	cfg  Config
	tmpl *template.Template
}

func New(cfg Config) (*Builder, error) {
	if cfg.AppliedLimit <= 0 {
		cfg.AppliedLimit = DefaultAppliedLimit
	}
	if cfg.MaxListed <= 0 {
		cfg.MaxListed = DefaultMaxListed
	}
	cfg.Blacklist = append([]string(nil), cfg.Blacklist...)

	tmpl, err := template.New("task").Option("missingkey=error").ParseFS(templates, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse task templates: %w", err)
	}

	return &Builder{cfg: cfg, tmpl: tmpl}, nil
}

func (b *Builder) Search(req Request) (string, error) {
	return b.render(searchTemplate, req)
}

func (b *Builder) Apply(req Request) (string, error) {
	return b.render(applyTemplate, req)
}

func (b *Builder) ApplyURL(req Request) (string, error) {
	if req.URL == "" {
		return "", fmt.Errorf("apply to url: empty url")
	}
	return b.render(applyURLTemplate, req)
}

func (b *Builder) render(name string, req Request) (string, error) {
	var buf bytes.Buffer
	if err := b.tmpl.ExecuteTemplate(&buf, name, b.view(req)); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}

	return strings.TrimSpace(buf.String()) + "\n", nil
}

func (b *Builder) view(req Request) view {
	if len(req.Applied) > b.cfg.AppliedLimit {
		req.Applied = req.Applied[len(req.Applied)-b.cfg.AppliedLimit:]
	}
	if req.Site.NotesTitle == "" {
		req.Site.NotesTitle = strings.ToUpper(req.Site.Name) + " NOTES"
	}

	blacklist := "None"
	if len(b.cfg.Blacklist) > 0 {
		blacklist = strings.Join(b.cfg.Blacklist, ", ")
	}

	return view{
		Request:    req,
		Candidate:  b.cfg.Candidate.Text(),
		Blacklist:  blacklist,
		Criteria:   b.cfg.Criteria,
		MinScore:   b.cfg.MinScore,
		MaxListed:  b.cfg.MaxListed,
		ResumePath: b.cfg.ResumePath,
		Screening:  b.cfg.Candidate.Screening(),
		Contact:    b.cfg.Candidate.ContactLines(),
	}
}
