// Package portal describes each supported job board as prompt fragments and
// result parsers. Nothing here talks to the sites directly.
package portal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/job-bot/internal/job"
	"github.com/spigell/job-bot/internal/task"
	"github.com/spigell/job-bot/internal/tracking"
)

var (
	ErrUnknownPortal = errors.New("unknown portal")
	ErrLimitReached  = errors.New("application limit reached")
)

type Credentials struct {
	Username string
	Password string
}

// Options tune a single prompt.
type Options struct {
	JobNumber     int
	TotalJobs     int
	RequireSalary bool
	Freshness     string
	Applied       []string
	RateLimit     tracking.RateLimitStatus
}

type Portal interface {
	Key() string
	Name() string
	MatchesURL(url string) bool

	SearchPrompt(opts Options) (string, error)
	ApplyPrompt(opts Options) (string, error)
	ApplyURLPrompt(url string, opts Options) (string, error)

	ParseSearchResult(raw string) ([]*job.Record, error)
	ParseApplyResult(raw string) (*job.Record, error)
}

// base holds what every portal shares.
type base struct {
	key     string
	name    string
	domain  string
	creds   Credentials
	builder *task.Builder
}

func (b *base) Key() string {
	return b.key
}

func (b *base) Name() string {
	return b.name
}

func (b *base) MatchesURL(url string) bool {
	return strings.Contains(strings.ToLower(url), b.domain)
}

func (b *base) site() task.Site {
	return task.Site{
		Key:        b.key,
		Name:       b.name,
		Username:   b.creds.Username,
		Password:   b.creds.Password,
		NotesTitle: strings.ToUpper(b.key) + "-SPECIFIC NOTES",
	}
}

func (b *base) applyURLPrompt(url string, site task.Site, opts Options) (string, error) {
	if url == "" {
		return "", fmt.Errorf("%s: empty job url", b.key)
	}

	return b.builder.ApplyURL(task.Request{
		Site:    site,
		Applied: opts.Applied,
		URL:     url,
	})
}

// parseSearch decodes every found block and pins the portal key. Records
// are returned even when some of their fields failed to decode.
func (b *base) parseSearch(raw string) ([]*job.Record, error) {
	blocks := job.ParseBlocks(raw, job.MarkerFound)
	records := make([]*job.Record, 0, len(blocks))

	var errs []error
	for i, fields := range blocks {
		rec, err := job.Decode(fields)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s block %d: %w", b.key, i+1, err))
		}
		rec.Portal = b.key
		records = append(records, rec)
	}

	return records, errors.Join(errs...)
}

func (b *base) parseApply(raw string) (*job.Record, error) {
	rec, err := job.Decode(job.ParseFields(raw))
	rec.Portal = b.key
	if err != nil {
		return rec, fmt.Errorf("%s: %w", b.key, err)
	}
	return rec, nil
}
