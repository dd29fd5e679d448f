// Package tracking persists applied, viewed, selected and rejected jobs and
// derives per-portal rate-limit windows from them.
package tracking

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/job-bot/internal/job"
)

// Kind names one of the four stores.
type Kind string

const (
	Applied  Kind = "applied"
	Viewed   Kind = "viewed"
	Selected Kind = "selected"
	Rejected Kind = "rejected"
)

// Kinds lists every store in a stable order.
var Kinds = []Kind{Applied, Viewed, Selected, Rejected}

const unknownPortal = "unknown"

// DocumentName is the backend key for a store, e.g. "applied_jobs".
func (k Kind) DocumentName() string {
	return string(k) + "_jobs"
}

// deduplicated stores drop repeated sightings of the same job.
func (k Kind) deduplicated() bool {
	return k != Applied
}

type Stats struct {
	Total    int            `json:"total"`
	ByPortal map[string]int `json:"by_portal"`
	ByStatus map[string]int `json:"by_status,omitempty"`
	ByReason map[string]int `json:"by_reason,omitempty"`
	AvgScore float64        `json:"avg_score,omitempty"`
}

// Counter is the persisted usage of one portal inside its current window.
type Counter struct {
	Type        string `json:"type"`
	Used        int    `json:"used"`
	WindowStart string `json:"window_start"`
}

type Document struct {
	Jobs       []*job.Record       `json:"jobs"`
	Stats      Stats               `json:"stats"`
	RateLimits map[string]*Counter `json:"rate_limits,omitempty"`
}

// Store is one JSON document on a Backend. Every append rewrites the whole
// document.
type Store struct {
	kind    Kind
	backend Backend
	now     func() time.Time
	newID   func() string

	mu sync.Mutex
}

func NewStore(kind Kind, backend Backend) *Store {
	return &Store{
		kind:    kind,
		backend: backend,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

func (s *Store) Kind() Kind {
	return s.kind
}

// Load returns the stored document. A missing document is empty, and stats
// are always rebuilt from the job list so older layouts load cleanly.
func (s *Store) Load() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *Store) Save(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(doc)
}

// Append stores a copy of rec with a fresh id and timestamp. It reports false
// when a deduplicated store already holds the same identifier.
func (s *Store) Append(rec *job.Record) (bool, error) {
	return s.append(rec, nil)
}

func (s *Store) Exists(company, title, portal string) (bool, error) {
	doc, err := s.Load()
	if err != nil {
		return false, err
	}

	return contains(doc, job.Identifier(company, title, portal)), nil
}

// Identifiers returns the display identifiers of all stored jobs in order.
func (s *Store) Identifiers() ([]string, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(doc.Jobs))
	for _, rec := range doc.Jobs {
		ids = append(ids, rec.Identifier())
	}

	return ids, nil
}

func (s *Store) append(rec *job.Record, after func(doc *Document, stored *job.Record)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return false, err
	}

	if s.kind.deduplicated() && contains(doc, rec.Identifier()) {
		return false, nil
	}

	stored := rec.Clone()
	stored.ID = s.newID()
	s.stamp(stored)

	doc.Jobs = append(doc.Jobs, stored)
	if after != nil {
		after(doc, stored)
	}

	if err := s.save(doc); err != nil {
		return false, err
	}

	return true, nil
}

func (s *Store) stamp(rec *job.Record) {
	now := s.now()
	switch s.kind {
	case Applied:
		rec.AppliedAt = &now
	case Viewed:
		rec.ViewedAt = &now
	case Selected:
		rec.ViewedAt = nil
		rec.SelectedAt = &now
	case Rejected:
		rec.ViewedAt = nil
		rec.SelectedAt = nil
		rec.RejectedAt = &now
	}
}

func (s *Store) load() (*Document, error) {
	doc := &Document{}

	data, err := s.backend.Read(s.kind.DocumentName())
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("read %s store: %w", s.kind, err)
	default:
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("decode %s store: %w", s.kind, err)
		}
	}

	if doc.Jobs == nil {
		doc.Jobs = []*job.Record{}
	}
	if doc.RateLimits == nil {
		doc.RateLimits = map[string]*Counter{}
	}
	doc.Stats = computeStats(s.kind, doc.Jobs)

	return doc, nil
}

func (s *Store) save(doc *Document) error {
	doc.Stats = computeStats(s.kind, doc.Jobs)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s store: %w", s.kind, err)
	}

	if err := s.backend.Write(s.kind.DocumentName(), data); err != nil {
		return fmt.Errorf("write %s store: %w", s.kind, err)
	}

	return nil
}

func contains(doc *Document, id string) bool {
	for _, rec := range doc.Jobs {
		if rec.Identifier() == id {
			return true
		}
	}
	return false
}

func computeStats(kind Kind, jobs []*job.Record) Stats {
	stats := Stats{
		Total:    len(jobs),
		ByPortal: map[string]int{},
	}

	for _, rec := range jobs {
		stats.ByPortal[portalKey(rec.Portal)]++
	}

	switch kind {
	case Applied:
		stats.ByStatus = map[string]int{job.StatusSuccess: 0, job.StatusFailed: 0}

		sum, n := 0, 0
		for _, rec := range jobs {
			if rec.Status == job.StatusSuccess || rec.Status == job.StatusFailed {
				stats.ByStatus[rec.Status]++
			}
			if rec.Score != 0 {
				sum += rec.Score
				n++
			}
		}
		if n > 0 {
			stats.AvgScore = math.Round(float64(sum)/float64(n)*10) / 10
		}
	case Rejected:
		stats.ByReason = map[string]int{}
		for _, rec := range jobs {
			stats.ByReason[rec.RejectionReason]++
		}
	}

	return stats
}

func portalKey(portal string) string {
	if portal == "" {
		return unknownPortal
	}
	return portal
}
