// Package store provides persistence backends for Venille.
//
// It includes an in-memory store plus SQLite and PostgreSQL implementations of
// the same interface, selected by DSN at startup.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/venille-ai/venille/internal/models"
)

// Store is the persistence gateway consumed by the bot and the reminder scanner.
type Store interface {
	// GetUser returns the profile for a JID, or nil when none exists.
	GetUser(jid string) (*models.User, error)

	// UpsertUser inserts the profile on first contact or refreshes the display
	// name and last-seen timestamp on every later message.
	UpsertUser(jid, name string) error

	UpdateLanguage(jid, language string) error
	UpdatePeriod(jid string, last, next time.Time) error
	UpdateReminder(jid string, wants bool) error

	// AddSymptom appends one symptom entry. Entries are never mutated.
	AddSymptom(jid, symptom string) error

	// ListSymptoms returns a user's symptom entries, most recent first.
	ListSymptoms(jid string) ([]models.SymptomEntry, error)

	// AddFeedback appends one completed feedback entry.
	AddFeedback(jid, response1, response2 string) error

	// ListReminderCandidates returns users with the reminder flag set and a
	// non-null predicted next period date.
	ListReminderCandidates() ([]models.ReminderCandidate, error)

	Close() error
}

// Opts holds configuration options for database-backed stores.
type Opts struct {
	DSN string
}

// Option defines a configuration option for a store.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType reports "postgres" for PostgreSQL-style DSNs and "sqlite3" for
// anything else (file paths).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite3"
}

// InMemoryStore is a Store implementation backed by process memory. It is used
// in tests and when no database DSN is configured.
type InMemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	symptoms []models.SymptomEntry
	feedback []models.FeedbackEntry
	now      func() time.Time
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users: make(map[string]*models.User),
		now:   time.Now,
	}
}

// SetClock injects the time source (for tests).
func (s *InMemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *InMemoryStore) GetUser(jid string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[jid]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (s *InMemoryStore) UpsertUser(jid, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if u, ok := s.users[jid]; ok {
		u.Name = name
		u.LastSeen = now
		return nil
	}
	s.users[jid] = &models.User{JID: jid, Name: name, FirstSeen: now, LastSeen: now}
	return nil
}

func (s *InMemoryStore) UpdateLanguage(jid, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[jid]; ok {
		u.Language = language
	}
	return nil
}

func (s *InMemoryStore) UpdatePeriod(jid string, last, next time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[jid]; ok {
		u.LastPeriod = &last
		u.NextPeriod = &next
	}
	return nil
}

func (s *InMemoryStore) UpdateReminder(jid string, wants bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[jid]; ok {
		u.WantsReminder = wants
	}
	return nil
}

func (s *InMemoryStore) AddSymptom(jid, symptom string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symptoms = append(s.symptoms, models.SymptomEntry{JID: jid, Symptom: symptom, LoggedAt: s.now()})
	return nil
}

func (s *InMemoryStore) ListSymptoms(jid string) ([]models.SymptomEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []models.SymptomEntry
	for _, e := range s.symptoms {
		if e.JID == jid {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LoggedAt.After(entries[j].LoggedAt)
	})
	return entries, nil
}

func (s *InMemoryStore) AddFeedback(jid, response1, response2 string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, models.FeedbackEntry{JID: jid, Response1: response1, Response2: response2, CreatedAt: s.now()})
	return nil
}

// ListFeedback returns all feedback entries (for tests and operator tooling).
func (s *InMemoryStore) ListFeedback() []models.FeedbackEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.FeedbackEntry, len(s.feedback))
	copy(out, s.feedback)
	return out
}

func (s *InMemoryStore) ListReminderCandidates() ([]models.ReminderCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ReminderCandidate
	for _, u := range s.users {
		if u.WantsReminder && u.NextPeriod != nil {
			out = append(out, models.ReminderCandidate{JID: u.JID, NextPeriod: *u.NextPeriod, Language: u.Language})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JID < out[j].JID })
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
