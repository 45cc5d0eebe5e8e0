// Package bot implements the per-user conversational state machine.
//
// Each inbound message is interpreted against the sender's session step. The
// handler refreshes the user's profile row and cached language before any state
// logic, honors the universal menu/greeting escape hatch, then dispatches to the
// active flow. Handling for one identity is serialized on the session lock.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/venille-ai/venille/internal/i18n"
	"github.com/venille-ai/venille/internal/messaging"
	"github.com/venille-ai/venille/internal/models"
	"github.com/venille-ai/venille/internal/session"
	"github.com/venille-ai/venille/internal/store"
)

// Default bot configuration.
const (
	// DefaultCycleDays is the fixed cycle length used to predict the next period start.
	DefaultCycleDays = 28
	// DefaultSalesContactURL is the link included in order confirmations.
	DefaultSalesContactURL = "https://wa.me/1234567890"
	// MaxSymptomHistory caps how many entries the symptom history view shows.
	MaxSymptomHistory = 5
)

// Opts holds configuration options for the bot handler.
type Opts struct {
	VendorJID       string // optional vendor/sales notification target
	SalesContactURL string
	CycleDays       int
}

// Option defines a configuration option for the bot handler.
type Option func(*Opts)

// WithVendorJID sets the vendor notification target for pad orders.
func WithVendorJID(jid string) Option {
	return func(o *Opts) { o.VendorJID = jid }
}

// WithSalesContactURL sets the sales contact link in order confirmations.
func WithSalesContactURL(url string) Option {
	return func(o *Opts) { o.SalesContactURL = url }
}

// WithCycleDays overrides the cycle length used for next-period prediction.
func WithCycleDays(days int) Option {
	return func(o *Opts) { o.CycleDays = days }
}

// Handler is the conversation state machine.
type Handler struct {
	store    store.Store
	sessions *session.Store
	msg      messaging.Service
	catalog  *i18n.Catalog
	cfg      Opts
}

// NewHandler creates a bot handler, applying any provided options.
func NewHandler(st store.Store, sessions *session.Store, svc messaging.Service, catalog *i18n.Catalog, opts ...Option) *Handler {
	cfg := Opts{SalesContactURL: DefaultSalesContactURL, CycleDays: DefaultCycleDays}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Handler{store: st, sessions: sessions, msg: svc, catalog: catalog, cfg: cfg}
}

// Run consumes inbound messages until the context is cancelled or the
// messaging service closes its response channel. Handler errors are logged;
// a failed message never stops the loop.
func (h *Handler) Run(ctx context.Context) {
	slog.Info("Bot handler processing messages")
	for {
		select {
		case resp, ok := <-h.msg.Responses():
			if !ok {
				slog.Debug("Bot responses channel closed")
				return
			}
			if err := h.HandleMessage(ctx, resp); err != nil {
				slog.Error("Bot failed to handle message", "error", err, "from", resp.From)
			}
		case <-ctx.Done():
			slog.Debug("Bot stopping due to context cancellation")
			return
		}
	}
}

// HandleMessage processes one inbound message end to end.
func (h *Handler) HandleMessage(ctx context.Context, resp models.Response) error {
	jid := resp.From
	raw := strings.TrimSpace(resp.Body)
	token := Normalize(raw)

	sess := h.sessions.Get(jid)
	sess.Lock()
	defer sess.Unlock()

	// Bookkeeping before any state logic: profile row and language cache.
	if err := h.store.UpsertUser(jid, resp.Name); err != nil {
		return fmt.Errorf("failed to refresh profile for %s: %w", jid, err)
	}
	h.refreshLanguage(sess, jid)

	// Universal escape hatch: a greeting, "menu" or "back" resets any flow.
	if isGreeting(raw) || token == "menu" || token == "back" {
		sess.Reset()
		h.safeSend(ctx, jid, h.text(sess, i18n.KeyMenu))
		return nil
	}

	switch sess.Step {
	case session.StepAskDate:
		return h.handleAskDate(ctx, sess, jid, raw)
	case session.StepAskReminder:
		return h.handleAskReminder(ctx, sess, jid, token)
	case session.StepSymptomLoop:
		return h.handleSymptomLoop(ctx, sess, jid, raw, token)
	case session.StepEducation:
		// Topic content is informational only; unmatched input gets the fallback
		// below and the step stays put until the user types menu/back.
	case session.StepLanguage:
		return h.handleLanguage(ctx, sess, jid, raw)
	case session.StepFeedbackQ1:
		return h.handleFeedbackQ1(ctx, sess, jid, token)
	case session.StepFeedbackQ2:
		return h.handleFeedbackQ2(ctx, sess, jid, raw)
	case session.StepOrder:
		return h.handleOrder(ctx, sess, jid, resp.Name, token)
	}

	if sess.Step == session.StepIdle {
		for _, entry := range menuTable {
			if entry.matches(token) {
				return entry.action(h, ctx, sess, jid)
			}
		}
	}

	h.safeSend(ctx, jid, h.text(sess, i18n.KeyFallback))
	return nil
}

// refreshLanguage re-reads the stored language so DB-side changes are picked up
// within one message. Read failures degrade to the reference language.
func (h *Handler) refreshLanguage(sess *session.Session, jid string) {
	u, err := h.store.GetUser(jid)
	if err != nil {
		slog.Warn("Bot language refresh failed, using reference language", "error", err, "jid", jid)
	}
	lang := i18n.ReferenceLanguage
	if u != nil && u.Language != "" {
		lang = u.Language
	}
	sess.Language = lang
}

// text resolves a localized template for this session's cached language.
func (h *Handler) text(sess *session.Session, key i18n.Key, args ...any) string {
	return h.catalog.Render(sess.Language, key, args...)
}

// safeSend delivers best-effort: send failures are logged and swallowed so the
// conversation proceeds as if sent.
func (h *Handler) safeSend(ctx context.Context, to, body string) {
	if err := h.msg.SendMessage(ctx, to, body); err != nil {
		slog.Warn("Bot send failed", "error", err, "to", to)
	}
}

// --- period tracking ---

func (h *Handler) startTrackPeriod(ctx context.Context, sess *session.Session, jid string) error {
	sess.Step = session.StepAskDate
	h.safeSend(ctx, jid, h.text(sess, i18n.KeyTrackPrompt))
	return nil
}

func (h *Handler) handleAskDate(ctx context.Context, sess *session.Session, jid, raw string) error {
	last, err := parseDate(raw)
	if err == errDateFormat {
		h.safeSend(ctx, jid, h.text(sess, i18n.KeyInvalidDate))
		return nil
	}
	if err != nil {
		h.safeSend(ctx, jid, h.text(sess, i18n.KeyNotValidDate))
		return nil
	}

	next := last.AddDate(0, 0, h.cfg.CycleDays)
	// Persist before the transition so a failed write leaves the step retryable.
	if err := h.store.UpdatePeriod(jid, last, next); err != nil {
		return fmt.Errorf("failed to save period dates for %s: %w", jid, err)
	}
	sess.Step = session.StepAskReminder
	h.safeSend(ctx, jid, h.text(sess, i18n.KeyAskReminder, formatDate(next)))
	return nil
}

func (h *Handler) handleAskReminder(ctx context.Context, sess *session.Session, jid, token string) error {
	// "y..." and "e..." cover the affirmative spellings across shipped languages.
	wants := strings.HasPrefix(token, "y") || strings.HasPrefix(token, "e")
	if err := h.store.UpdateReminder(jid, wants); err != nil {
		return fmt.Errorf("failed to save reminder flag for %s: %w", jid, err)
	}
	sess.Reset()
	key := i18n.KeyReminderNo
	if wants {
		key = i18n.KeyReminderYes
	}
	h.safeSend(ctx, jid, h.text(sess, key))
	return nil
}

// --- symptom logging ---

func (h *Handler) startSymptomLog(ctx context.Context, sess *session.Session, jid string) error {
	sess.Step = session.StepSymptomLoop
	sess.Data = session.FlowData{}
	h.safeSend(ctx, jid, h.text(sess, i18n.KeySymptomPrompt))
	return nil
}

func (h *Handler) handleSymptomLoop(ctx context.Context, sess *session.Session, jid, raw, token string) error {
	switch token {
	case "done":
		count := sess.Data.SymptomCount
		sess.Reset()
		if count == 0 {
			h.safeSend(ctx, jid, h.text(sess, i18n.KeySymptomsNothingSaved))
		} else {
			h.safeSend(ctx, jid, h.text(sess, i18n.KeySymptomsDone, count, plural(count)))
		}
		return nil
	case "cancel":
		// Entries persisted so far are kept; only the report is discarded.
		sess.Reset()
		h.safeSend(ctx, jid, h.text(sess, i18n.KeySymptomsCancel))
		return nil
	}

	if err := h.store.AddSymptom(jid, raw); err != nil {
		return fmt.Errorf("failed to save symptom for %s: %w", jid, err)
	}
	sess.Data.SymptomCount++
	h.safeSend(ctx, jid, h.text(sess, i18n.KeySavedSymptom))
	return nil
}

// --- education ---

func (h *Handler) startEducation(ctx context.Context, sess *session.Session, jid string) error {
	sess.Step = session.StepEducation
	h.safeSend(ctx, jid, h.text(sess, i18n.KeyEduTopics))
	return nil
}

// --- cycle and symptom views ---

func (h *Handler) showCycle(ctx context.Context, sess *session.Session, jid string) error {
	u, err := h.store.GetUser(jid)
	if err != nil {
		slog.Warn("Bot cycle lookup failed, treating as unrecorded", "error", err, "jid", jid)
	}
	if u == nil || u.LastPeriod == nil || u.NextPeriod == nil {
		h.safeSend(ctx, jid, h.text(sess, i18n.KeyNoPeriod))
		return nil
	}
	h.safeSend(ctx, jid, h.text(sess, i18n.KeyCycleInfo, formatDate(*u.LastPeriod), formatDate(*u.NextPeriod)))
	return nil
}

func (h *Handler) showSymptoms(ctx context.Context, sess *session.Session, jid string) error {
	entries, err := h.store.ListSymptoms(jid)
	if err != nil {
		slog.Warn("Bot symptom lookup failed, treating as empty", "error", err, "jid", jid)
	}
	if len(entries) == 0 {
		h.safeSend(ctx, jid, h.text(sess, i18n.KeyNoSymptoms))
		return nil
	}
	if len(entries) > MaxSymptomHistory {
		entries = entries[:MaxSymptomHistory]
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("• %s  _(%s)_", e.Symptom, formatDate(e.LoggedAt)))
	}
	h.safeSend(ctx, jid, h.text(sess, i18n.KeySymptomsHistory, strings.Join(lines, "\n")))
	return nil
}

// --- language change ---

func (h *Handler) startLanguage(ctx context.Context, sess *session.Session, jid string) error {
	sess.Step = session.StepLanguage
	h.safeSend(ctx, jid, h.text(sess, i18n.KeyLangPrompt))
	return nil
}

func (h *Handler) handleLanguage(ctx context.Context, sess *session.Session, jid, raw string) error {
	// Prefix-match against known bundles; an unknown language is stored as typed
	// and simply always falls back to the reference bundle.
	lang, _ := h.catalog.MatchLanguage(raw)
	if err := h.store.UpdateLanguage(jid, lang); err != nil {
		return fmt.Errorf("failed to save language for %s: %w", jid, err)
	}
	sess.Language = lang
	sess.Reset()
	h.safeSend(ctx, jid, h.text(sess, i18n.KeyLanguageSet, lang))
	return nil
}

// --- feedback ---

func (h *Handler) startFeedback(ctx context.Context, sess *session.Session, jid string) error {
	sess.Step = session.StepFeedbackQ1
	h.safeSend(ctx, jid, h.text(sess, i18n.KeyFeedbackQ1))
	return nil
}

func (h *Handler) handleFeedbackQ1(ctx context.Context, sess *session.Session, jid, token string) error {
	if token != "1" && token != "2" {
		// Anything else is ignored entirely: no re-prompt, no transition.
		return nil
	}
	sess.Data.FeedbackAccess = token
	sess.Step = session.StepFeedbackQ2
	h.safeSend(ctx, jid, h.text(sess, i18n.KeyFeedbackQ2))
	return nil
}

func (h *Handler) handleFeedbackQ2(ctx context.Context, sess *session.Session, jid, raw string) error {
	if err := h.store.AddFeedback(jid, sess.Data.FeedbackAccess, raw); err != nil {
		return fmt.Errorf("failed to save feedback for %s: %w", jid, err)
	}
	sess.Reset()
	h.safeSend(ctx, jid, h.text(sess, i18n.KeyFeedbackThanks))
	return nil
}

// --- pad orders ---

func (h *Handler) startOrder(ctx context.Context, sess *session.Session, jid string) error {
	sess.Step = session.StepOrder
	h.safeSend(ctx, jid, h.text(sess, i18n.KeyOrderQuantityPrompt))
	return nil
}

func (h *Handler) handleOrder(ctx context.Context, sess *session.Session, jid, name, token string) error {
	qty, err := strconv.Atoi(token)
	if err != nil || qty < 1 || qty > 99 {
		h.safeSend(ctx, jid, h.text(sess, i18n.KeyOrderQuantityInvalid))
		return nil
	}

	h.safeSend(ctx, jid, h.text(sess, i18n.KeyOrderConfirmation, qty, plural(qty), h.cfg.SalesContactURL))
	if h.cfg.VendorJID != "" {
		ref := uuid.New().String()
		h.safeSend(ctx, h.cfg.VendorJID, h.text(sess, i18n.KeyOrderVendorMessage, name, jid, qty, plural(qty), ref))
	}
	sess.Reset()
	return nil
}
