package tracking

import (
	"fmt"
	"time"

	"github.com/spigell/job-bot/internal/job"
	"github.com/spigell/job-bot/internal/scoring"
)

// Tracker is the single writer over the four stores.
type Tracker struct {
	stores map[Kind]*Store
	limits Limits
	now    func() time.Time
}

type Option func(*Tracker)

// WithClock replaces time.Now for timestamps and rate-limit windows.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

func New(backend Backend, limits Limits, opts ...Option) *Tracker {
	if limits == nil {
		limits = DefaultLimits()
	}

	t := &Tracker{
		stores: make(map[Kind]*Store, len(Kinds)),
		limits: limits,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	for _, kind := range Kinds {
		store := NewStore(kind, backend)
		store.now = t.now
		t.stores[kind] = store
	}

	return t
}

func (t *Tracker) Store(kind Kind) *Store {
	return t.stores[kind]
}

func (t *Tracker) Limit(portal string) Limit {
	return t.limits.For(portal)
}

// SaveApplied records an application attempt. Only successful attempts
// count towards the portal rate limit.
func (t *Tracker) SaveApplied(rec *job.Record) error {
	_, err := t.stores[Applied].append(rec, func(doc *Document, stored *job.Record) {
		if stored.Status != job.StatusSuccess {
			return
		}
		portal := portalKey(stored.Portal)
		bump(doc, portal, t.limits.For(portal), t.now())
	})
	if err != nil {
		return fmt.Errorf("save applied job: %w", err)
	}
	return nil
}

func (t *Tracker) SaveViewed(rec *job.Record) (bool, error) {
	return t.stores[Viewed].Append(rec)
}

func (t *Tracker) SaveSelected(rec *job.Record) (bool, error) {
	return t.stores[Selected].Append(rec)
}

// SaveRejected stores rec with the rejection reason and the keyword matches
// that led to it.
func (t *Tracker) SaveRejected(rec *job.Record, reason string, analysis *scoring.Analysis) (bool, error) {
	rejected := rec.Clone()
	rejected.RejectionReason = reason
	if analysis != nil {
		rejected.MatchedRequired = analysis.MatchedRequired
		rejected.MatchedBonus = analysis.MatchedBonus
		rejected.MatchedNegative = analysis.MatchedNegative
	}

	return t.stores[Rejected].Append(rejected)
}

func (t *Tracker) AppliedIdentifiers() ([]string, error) {
	return t.stores[Applied].Identifiers()
}

func (t *Tracker) IsAlreadyApplied(company, title, portal string) (bool, error) {
	return t.stores[Applied].Exists(company, title, portal)
}

func (t *Tracker) RateLimitStatus(portal string) (RateLimitStatus, error) {
	doc, err := t.stores[Applied].Load()
	if err != nil {
		return RateLimitStatus{}, err
	}

	return computeStatus(t.limits.For(portal), doc.RateLimits[portal], t.now()), nil
}
