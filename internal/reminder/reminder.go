// Package reminder implements the daily upcoming-period scan.
//
// The scan runs once per scheduler tick, looks at every user who opted in to
// reminders, and notifies those whose predicted next period starts in exactly
// the configured number of whole days. There is no catch-up: a day the process
// was down is simply missed.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/venille-ai/venille/internal/i18n"
	"github.com/venille-ai/venille/internal/messaging"
	"github.com/venille-ai/venille/internal/store"
)

// DefaultLeadDays is how many days before the predicted start the reminder fires.
const DefaultLeadDays = 3

// Scanner performs the daily reminder scan.
type Scanner struct {
	store    store.Store
	msg      messaging.Service
	catalog  *i18n.Catalog
	leadDays int
	now      func() time.Time
}

// Option defines a configuration option for the scanner.
type Option func(*Scanner)

// WithLeadDays overrides how many days ahead the reminder fires.
func WithLeadDays(days int) Option {
	return func(s *Scanner) { s.leadDays = days }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// NewScanner creates a reminder scanner.
func NewScanner(st store.Store, svc messaging.Service, catalog *i18n.Catalog, opts ...Option) *Scanner {
	s := &Scanner{store: st, msg: svc, catalog: catalog, leadDays: DefaultLeadDays, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one scan. Individual send failures are logged and skipped; the
// scan itself only fails if the candidate query does.
func (s *Scanner) Run(ctx context.Context) error {
	candidates, err := s.store.ListReminderCandidates()
	if err != nil {
		return fmt.Errorf("failed to list reminder candidates: %w", err)
	}

	now := s.now()
	sent := 0
	for _, c := range candidates {
		diff := int(math.Floor(c.NextPeriod.Sub(now).Hours() / 24))
		if diff != s.leadDays {
			continue
		}
		body := s.catalog.Render(c.Language, i18n.KeyReminderDue, c.NextPeriod.Format("02/01/2006"))
		if err := s.msg.SendMessage(ctx, c.JID, body); err != nil {
			slog.Warn("Reminder send failed", "error", err, "jid", c.JID)
			continue
		}
		sent++
	}
	slog.Info("Reminder scan complete", "candidates", len(candidates), "sent", sent)
	return nil
}
