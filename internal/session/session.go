// Package session provides the in-memory per-user conversation state.
//
// Sessions are created lazily on first access and expire after an idle TTL.
// The bot's state machine is the only mutator of Step and Data; callers must
// hold the session lock for the duration of one message handling pass.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/venille-ai/venille/internal/i18n"
)

// Step identifies the active flow state for one conversation.
type Step string

// Conversation steps. StepIdle means no multi-turn flow is active.
const (
	StepIdle        Step = ""
	StepAskDate     Step = "ask_date"
	StepAskReminder Step = "ask_reminder"
	StepSymptomLoop Step = "symptom_loop"
	StepEducation   Step = "education"
	StepLanguage    Step = "language"
	StepFeedbackQ1  Step = "feedback_q1"
	StepFeedbackQ2  Step = "feedback_q2"
	StepOrder       Step = "order"
)

// FlowData is the flow-scoped scratch state. Its fields are meaningful only
// while the owning flow is active and are zeroed whenever a flow exits.
type FlowData struct {
	SymptomCount   int    // symptom_loop: entries captured so far
	FeedbackAccess string // feedback_q1 answer ("1" or "2")
}

// Session holds the transient conversation state for one identity.
type Session struct {
	Step     Step
	Data     FlowData
	Language string // cached display language, refreshed per message

	mu         sync.Mutex
	lastActive time.Time
}

// Lock serializes message handling for this identity.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the per-identity handling lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Reset returns the session to idle and clears all flow scratch data.
func (s *Session) Reset() {
	s.Step = StepIdle
	s.Data = FlowData{}
}

// Default store configuration.
const (
	DefaultIdleTTL       = 24 * time.Hour
	DefaultSweepInterval = time.Minute
)

// Opts holds configuration options for the session store.
type Opts struct {
	IdleTTL time.Duration
	Now     func() time.Time
}

// Option defines a configuration option for the session store.
type Option func(*Opts)

// WithIdleTTL overrides how long an untouched session is kept.
func WithIdleTTL(ttl time.Duration) Option {
	return func(o *Opts) { o.IdleTTL = ttl }
}

// WithClock injects the time source (for tests).
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// Store owns all sessions, keyed by identity. Get-or-create is atomic so two
// concurrent first messages for the same identity share one session.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	idleTTL   time.Duration
	now       func() time.Time
	nextSweep time.Time
}

// NewStore creates a session store, applying any provided options.
func NewStore(opts ...Option) *Store {
	cfg := Opts{IdleTTL: DefaultIdleTTL, Now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{
		sessions: make(map[string]*Session),
		idleTTL:  cfg.IdleTTL,
		now:      cfg.Now,
	}
}

// Get returns the session for an identity, creating an idle one on first
// access. The access refreshes the session's idle timer.
func (st *Store) Get(jid string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.maybeSweep(now)

	s, ok := st.sessions[jid]
	if !ok {
		s = &Session{Language: i18n.ReferenceLanguage}
		st.sessions[jid] = s
		slog.Debug("SessionStore created session", "jid", jid)
	}
	s.lastActive = now
	return s
}

// SetLanguage refreshes the cached display language for an identity.
func (st *Store) SetLanguage(jid, lang string) {
	s := st.Get(jid)
	if lang == "" {
		lang = i18n.ReferenceLanguage
	}
	s.Language = lang
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// maybeSweep drops idle sessions. Runs at most once per DefaultSweepInterval;
// caller must hold st.mu.
func (st *Store) maybeSweep(now time.Time) {
	if now.Before(st.nextSweep) {
		return
	}
	st.nextSweep = now.Add(DefaultSweepInterval)

	var dropped int
	for jid, s := range st.sessions {
		if now.Sub(s.lastActive) > st.idleTTL {
			delete(st.sessions, jid)
			dropped++
		}
	}
	if dropped > 0 {
		slog.Debug("SessionStore swept idle sessions", "dropped", dropped, "remaining", len(st.sessions))
	}
}
