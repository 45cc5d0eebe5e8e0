package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/venille-ai/venille/internal/i18n"
	"github.com/venille-ai/venille/internal/messaging"
	"github.com/venille-ai/venille/internal/models"
	"github.com/venille-ai/venille/internal/session"
	"github.com/venille-ai/venille/internal/store"
)

const testJID = "2348011111111"

type fixture struct {
	handler  *Handler
	store    *store.InMemoryStore
	msg      *messaging.MockService
	sessions *session.Store
	catalog  *i18n.Catalog
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	st := store.NewInMemoryStore()
	msg := messaging.NewMockService()
	catalog := i18n.NewCatalog()
	sessions := session.NewStore()
	return &fixture{
		handler:  NewHandler(st, sessions, msg, catalog, opts...),
		store:    st,
		msg:      msg,
		sessions: sessions,
		catalog:  catalog,
	}
}

// send drives one inbound message through the handler.
func (f *fixture) send(t *testing.T, body string) {
	t.Helper()
	err := f.handler.HandleMessage(context.Background(), models.Response{
		From: testJID,
		Name: "Amina",
		Body: body,
		Time: time.Now().Unix(),
	})
	if err != nil {
		t.Fatalf("HandleMessage(%q) returned error: %v", body, err)
	}
}

// lastReply returns the most recent message sent to the test user.
func (f *fixture) lastReply(t *testing.T) string {
	t.Helper()
	replies := f.msg.SentTo(testJID)
	if len(replies) == 0 {
		t.Fatal("no messages sent to user")
	}
	return replies[len(replies)-1]
}

func (f *fixture) english(key i18n.Key, args ...any) string {
	return f.catalog.Render(i18n.ReferenceLanguage, key, args...)
}

func TestGreetingShowsMenu(t *testing.T) {
	f := newFixture(t)
	f.send(t, "Hello!")
	if got, want := f.lastReply(t), f.english(i18n.KeyMenu); got != want {
		t.Errorf("greeting reply = %q, want menu", got)
	}
	if u, _ := f.store.GetUser(testJID); u == nil || u.Name != "Amina" {
		t.Error("greeting did not upsert the user profile")
	}
}

func TestMenuResetsActiveFlow(t *testing.T) {
	f := newFixture(t)
	f.send(t, "1")
	if got := f.sessions.Get(testJID).Step; got != session.StepAskDate {
		t.Fatalf("step after menu pick = %q, want ask_date", got)
	}
	f.send(t, "menu")
	sess := f.sessions.Get(testJID)
	if sess.Step != session.StepIdle {
		t.Errorf("step after menu = %q, want idle", sess.Step)
	}
	if got, want := f.lastReply(t), f.english(i18n.KeyMenu); got != want {
		t.Errorf("menu reply = %q, want menu text", got)
	}
}

func TestUnknownInputGetsFallback(t *testing.T) {
	f := newFixture(t)
	f.send(t, "what is this")
	if got, want := f.lastReply(t), f.english(i18n.KeyFallback); got != want {
		t.Errorf("fallback reply = %q, want %q", got, want)
	}
}

func TestMenuPickByKeywordAndNumberForms(t *testing.T) {
	f := newFixture(t)
	for _, input := range []string{"track my period", "1", "1.", "1)"} {
		f.sessions.Get(testJID).Reset()
		f.send(t, input)
		if got := f.sessions.Get(testJID).Step; got != session.StepAskDate {
			t.Errorf("input %q: step = %q, want ask_date", input, got)
		}
		if got, want := f.lastReply(t), f.english(i18n.KeyTrackPrompt); got != want {
			t.Errorf("input %q: reply = %q, want track prompt", input, got)
		}
	}
}

func TestPeriodTrackingHappyPath(t *testing.T) {
	f := newFixture(t)
	f.send(t, "1")
	f.send(t, "12/05/2025")

	want := f.english(i18n.KeyAskReminder, "09/06/2025")
	if got := f.lastReply(t); got != want {
		t.Errorf("ask-reminder reply = %q, want %q", got, want)
	}
	if got := f.sessions.Get(testJID).Step; got != session.StepAskReminder {
		t.Errorf("step = %q, want ask_reminder", got)
	}

	u, _ := f.store.GetUser(testJID)
	if u.LastPeriod == nil || u.NextPeriod == nil {
		t.Fatal("period dates not persisted")
	}
	if got := formatDate(*u.NextPeriod); got != "09/06/2025" {
		t.Errorf("next period = %q, want 09/06/2025", got)
	}

	f.send(t, "yes")
	if got, want := f.lastReply(t), f.english(i18n.KeyReminderYes); got != want {
		t.Errorf("reminder-yes reply = %q, want %q", got, want)
	}
	u, _ = f.store.GetUser(testJID)
	if !u.WantsReminder {
		t.Error("reminder flag not persisted")
	}
	if got := f.sessions.Get(testJID).Step; got != session.StepIdle {
		t.Errorf("step after flow = %q, want idle", got)
	}
}

func TestPeriodTrackingCustomCycleLength(t *testing.T) {
	f := newFixture(t, WithCycleDays(30))
	f.send(t, "1")
	f.send(t, "01/01/2025")
	u, _ := f.store.GetUser(testJID)
	if got := formatDate(*u.NextPeriod); got != "31/01/2025" {
		t.Errorf("next period = %q, want 31/01/2025", got)
	}
}

func TestPeriodTrackingRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	f.send(t, "1")

	f.send(t, "last tuesday")
	if got, want := f.lastReply(t), f.english(i18n.KeyInvalidDate); got != want {
		t.Errorf("format-error reply = %q, want %q", got, want)
	}
	if got := f.sessions.Get(testJID).Step; got != session.StepAskDate {
		t.Errorf("step after format error = %q, want ask_date", got)
	}

	f.send(t, "31/02/2025")
	if got, want := f.lastReply(t), f.english(i18n.KeyNotValidDate); got != want {
		t.Errorf("impossible-date reply = %q, want %q", got, want)
	}
	if got := f.sessions.Get(testJID).Step; got != session.StepAskDate {
		t.Errorf("step after impossible date = %q, want ask_date", got)
	}
	if u, _ := f.store.GetUser(testJID); u.LastPeriod != nil {
		t.Error("rejected date must not be persisted")
	}
}

func TestReminderDeclined(t *testing.T) {
	f := newFixture(t)
	f.send(t, "1")
	f.send(t, "12/05/2025")
	f.send(t, "no")
	if got, want := f.lastReply(t), f.english(i18n.KeyReminderNo); got != want {
		t.Errorf("reminder-no reply = %q, want %q", got, want)
	}
	if u, _ := f.store.GetUser(testJID); u.WantsReminder {
		t.Error("declined reminder must not set the flag")
	}
}

func TestSymptomLoop(t *testing.T) {
	f := newFixture(t)
	f.send(t, "2")
	if got, want := f.lastReply(t), f.english(i18n.KeySymptomPrompt); got != want {
		t.Errorf("symptom prompt = %q, want %q", got, want)
	}

	f.send(t, "cramps")
	if got, want := f.lastReply(t), f.english(i18n.KeySavedSymptom); got != want {
		t.Errorf("saved reply = %q, want %q", got, want)
	}
	f.send(t, "fatigue")
	f.send(t, "done")

	want := f.english(i18n.KeySymptomsDone, 2, "s")
	if got := f.lastReply(t); got != want {
		t.Errorf("done reply = %q, want %q", got, want)
	}
	entries, _ := f.store.ListSymptoms(testJID)
	if len(entries) != 2 {
		t.Fatalf("persisted symptoms = %d, want 2", len(entries))
	}
	if got := f.sessions.Get(testJID).Step; got != session.StepIdle {
		t.Errorf("step after done = %q, want idle", got)
	}
}

func TestSymptomLoopSingularCount(t *testing.T) {
	f := newFixture(t)
	f.send(t, "2")
	f.send(t, "headache")
	f.send(t, "done")
	want := f.english(i18n.KeySymptomsDone, 1, "")
	if got := f.lastReply(t); got != want {
		t.Errorf("done reply = %q, want %q", got, want)
	}
}

func TestSymptomLoopEmptyDone(t *testing.T) {
	f := newFixture(t)
	f.send(t, "2")
	f.send(t, "done")
	if got, want := f.lastReply(t), f.english(i18n.KeySymptomsNothingSaved); got != want {
		t.Errorf("empty-done reply = %q, want %q", got, want)
	}
}

func TestSymptomLoopCancelKeepsSavedEntries(t *testing.T) {
	f := newFixture(t)
	f.send(t, "2")
	f.send(t, "cramps")
	f.send(t, "cancel")
	if got, want := f.lastReply(t), f.english(i18n.KeySymptomsCancel); got != want {
		t.Errorf("cancel reply = %q, want %q", got, want)
	}
	entries, _ := f.store.ListSymptoms(testJID)
	if len(entries) != 1 {
		t.Errorf("persisted symptoms after cancel = %d, want 1", len(entries))
	}
}

func TestEducationTopicsThenFallback(t *testing.T) {
	f := newFixture(t)
	f.send(t, "3")
	if got, want := f.lastReply(t), f.english(i18n.KeyEduTopics); got != want {
		t.Errorf("edu reply = %q, want %q", got, want)
	}
	// Follow-up input in the education step is not a flow: it gets the fallback
	// and menu picks stay blocked until a menu/greeting reset.
	f.send(t, "1")
	if got, want := f.lastReply(t), f.english(i18n.KeyFallback); got != want {
		t.Errorf("edu follow-up reply = %q, want fallback", got)
	}
	if got := f.sessions.Get(testJID).Step; got != session.StepEducation {
		t.Errorf("step = %q, want education", got)
	}
}

func TestShowCycleBeforeAndAfterTracking(t *testing.T) {
	f := newFixture(t)
	f.send(t, "5")
	if got, want := f.lastReply(t), f.english(i18n.KeyNoPeriod); got != want {
		t.Errorf("empty cycle reply = %q, want %q", got, want)
	}

	f.send(t, "1")
	f.send(t, "12/05/2025")
	f.send(t, "no")
	f.send(t, "5")
	want := f.english(i18n.KeyCycleInfo, "12/05/2025", "09/06/2025")
	if got := f.lastReply(t); got != want {
		t.Errorf("cycle reply = %q, want %q", got, want)
	}
}

func TestShowSymptomsHistory(t *testing.T) {
	f := newFixture(t)
	base := time.Now()
	tick := 0
	f.store.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
	f.send(t, "6")
	if got, want := f.lastReply(t), f.english(i18n.KeyNoSymptoms); got != want {
		t.Errorf("empty history reply = %q, want %q", got, want)
	}

	f.send(t, "2")
	for _, s := range []string{"cramps", "fatigue", "nausea", "bloating", "headache", "acne", "cravings"} {
		f.send(t, s)
	}
	f.send(t, "done")
	f.send(t, "6")

	got := f.lastReply(t)
	if !strings.Contains(got, "cravings") || !strings.Contains(got, "acne") {
		t.Errorf("history missing recent entries: %q", got)
	}
	if strings.Contains(got, "cramps") || strings.Contains(got, "fatigue") {
		t.Errorf("history should cap at %d most recent entries: %q", MaxSymptomHistory, got)
	}
}

func TestLanguageChange(t *testing.T) {
	f := newFixture(t)
	f.send(t, "7")
	if got, want := f.lastReply(t), f.english(i18n.KeyLangPrompt); got != want {
		t.Errorf("lang prompt = %q, want %q", got, want)
	}

	f.send(t, "hausa")
	want := f.catalog.Render("Hausa", i18n.KeyLanguageSet, "Hausa")
	if got := f.lastReply(t); got != want {
		t.Errorf("language-set reply = %q, want Hausa confirmation %q", got, want)
	}
	u, _ := f.store.GetUser(testJID)
	if u.Language != "Hausa" {
		t.Errorf("persisted language = %q, want Hausa", u.Language)
	}

	// Subsequent messages render in the stored language.
	f.send(t, "hi")
	if got, want := f.lastReply(t), f.catalog.Render("Hausa", i18n.KeyMenu); got != want {
		t.Errorf("menu after language change = %q, want Hausa menu", got)
	}
}

func TestLanguageChangeUnknownFallsBack(t *testing.T) {
	f := newFixture(t)
	f.send(t, "7")
	f.send(t, "Klingon")
	u, _ := f.store.GetUser(testJID)
	if u.Language != "Klingon" {
		t.Errorf("persisted language = %q, want Klingon stored as typed", u.Language)
	}
	// Unknown languages render via the reference bundle.
	f.send(t, "hi")
	if got, want := f.lastReply(t), f.english(i18n.KeyMenu); got != want {
		t.Errorf("menu for unknown language = %q, want English menu", got)
	}
}

func TestFeedbackFlow(t *testing.T) {
	f := newFixture(t)
	f.send(t, "8")
	if got, want := f.lastReply(t), f.english(i18n.KeyFeedbackQ1); got != want {
		t.Errorf("feedback q1 = %q, want %q", got, want)
	}

	f.send(t, "2")
	if got, want := f.lastReply(t), f.english(i18n.KeyFeedbackQ2); got != want {
		t.Errorf("feedback q2 = %q, want %q", got, want)
	}

	f.send(t, "Pads are too expensive here")
	if got, want := f.lastReply(t), f.english(i18n.KeyFeedbackThanks); got != want {
		t.Errorf("feedback thanks = %q, want %q", got, want)
	}

	entries := f.store.ListFeedback()
	if len(entries) != 1 {
		t.Fatalf("feedback entries = %d, want 1", len(entries))
	}
	if entries[0].Response1 != "2" || entries[0].Response2 != "Pads are too expensive here" {
		t.Errorf("feedback entry = %+v, want verbatim answers", entries[0])
	}
}

func TestFeedbackQ1IgnoresInvalidInput(t *testing.T) {
	f := newFixture(t)
	f.send(t, "8")
	before := len(f.msg.SentTo(testJID))

	f.send(t, "maybe")
	if after := len(f.msg.SentTo(testJID)); after != before {
		t.Errorf("invalid q1 answer triggered %d replies, want none", after-before)
	}
	if got := f.sessions.Get(testJID).Step; got != session.StepFeedbackQ1 {
		t.Errorf("step = %q, want feedback_q1", got)
	}

	f.send(t, "1")
	if got := f.sessions.Get(testJID).Step; got != session.StepFeedbackQ2 {
		t.Errorf("step after valid answer = %q, want feedback_q2", got)
	}
}

func TestOrderFlow(t *testing.T) {
	f := newFixture(t, WithVendorJID("2349099999999"), WithSalesContactURL("https://wa.me/2340000000"))
	f.send(t, "4")
	if got, want := f.lastReply(t), f.english(i18n.KeyOrderQuantityPrompt); got != want {
		t.Errorf("order prompt = %q, want %q", got, want)
	}

	for _, bad := range []string{"0", "100", "abc"} {
		f.send(t, bad)
		if got, want := f.lastReply(t), f.english(i18n.KeyOrderQuantityInvalid); got != want {
			t.Errorf("input %q: reply = %q, want invalid-quantity", bad, got)
		}
		if got := f.sessions.Get(testJID).Step; got != session.StepOrder {
			t.Errorf("input %q: step = %q, want order", bad, got)
		}
	}

	f.send(t, "2")
	want := f.english(i18n.KeyOrderConfirmation, 2, "s", "https://wa.me/2340000000")
	if got := f.lastReply(t); got != want {
		t.Errorf("order confirmation = %q, want %q", got, want)
	}
	if got := f.sessions.Get(testJID).Step; got != session.StepIdle {
		t.Errorf("step after order = %q, want idle", got)
	}

	vendor := f.msg.SentTo("2349099999999")
	if len(vendor) != 1 {
		t.Fatalf("vendor messages = %d, want 1", len(vendor))
	}
	for _, fragment := range []string{"Amina", testJID, "2 packs", "Ref  : "} {
		if !strings.Contains(vendor[0], fragment) {
			t.Errorf("vendor message missing %q: %q", fragment, vendor[0])
		}
	}
}

func TestOrderWithoutVendorConfigured(t *testing.T) {
	f := newFixture(t)
	f.send(t, "4")
	f.send(t, "3")
	for _, s := range f.msg.Sent {
		if s.To != testJID {
			t.Errorf("unexpected message to %q with no vendor configured", s.To)
		}
	}
}

func TestStoreFailureLeavesStepUnchanged(t *testing.T) {
	f := newFixture(t)
	f.send(t, "1")

	failing := &failingStore{InMemoryStore: f.store}
	f.handler.store = failing

	err := f.handler.HandleMessage(context.Background(), models.Response{From: testJID, Body: "12/05/2025"})
	if err == nil {
		t.Fatal("expected error from failing store")
	}
	if got := f.sessions.Get(testJID).Step; got != session.StepAskDate {
		t.Errorf("step after failed write = %q, want ask_date", got)
	}
}

func TestSendFailureDoesNotFailHandling(t *testing.T) {
	f := newFixture(t)
	f.msg.SendErr = context.DeadlineExceeded
	f.send(t, "hi")
	// Delivery is best-effort; the user row is still written.
	if u, _ := f.store.GetUser(testJID); u == nil {
		t.Error("user not persisted when send fails")
	}
}

// failingStore wraps InMemoryStore and rejects period writes.
type failingStore struct {
	*store.InMemoryStore
}

func (s *failingStore) UpdatePeriod(jid string, last, next time.Time) error {
	return context.DeadlineExceeded
}
