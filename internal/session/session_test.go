package session

import (
	"testing"
	"time"

	"github.com/venille-ai/venille/internal/i18n"
)

func TestGetCreatesIdleSession(t *testing.T) {
	st := NewStore()
	s := st.Get("123456")
	if s.Step != StepIdle {
		t.Errorf("new session step = %q, want idle", s.Step)
	}
	if s.Language != i18n.ReferenceLanguage {
		t.Errorf("new session language = %q, want reference", s.Language)
	}
	if st.Len() != 1 {
		t.Errorf("store length = %d, want 1", st.Len())
	}
}

func TestGetReturnsSameSession(t *testing.T) {
	st := NewStore()
	a := st.Get("123456")
	a.Step = StepOrder
	b := st.Get("123456")
	if a != b {
		t.Error("Get returned a different session for the same identity")
	}
	if b.Step != StepOrder {
		t.Errorf("session step = %q, want order", b.Step)
	}
}

func TestResetClearsFlowData(t *testing.T) {
	s := &Session{Step: StepSymptomLoop, Data: FlowData{SymptomCount: 3, FeedbackAccess: "1"}}
	s.Reset()
	if s.Step != StepIdle {
		t.Errorf("step after reset = %q, want idle", s.Step)
	}
	if s.Data != (FlowData{}) {
		t.Errorf("data after reset = %+v, want zero", s.Data)
	}
}

func TestIdleSessionsAreEvicted(t *testing.T) {
	now := time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)
	st := NewStore(WithIdleTTL(time.Hour), WithClock(func() time.Time { return now }))

	st.Get("111111")
	st.Get("222222")
	if st.Len() != 2 {
		t.Fatalf("store length = %d, want 2", st.Len())
	}

	// Advance past both the TTL and the sweep interval, keep one active.
	now = now.Add(30 * time.Minute)
	st.Get("222222")
	now = now.Add(45 * time.Minute)
	st.Get("333333")

	if st.Len() != 2 {
		t.Errorf("store length after sweep = %d, want 2 (idle session evicted)", st.Len())
	}
	fresh := st.Get("111111")
	if fresh.Step != StepIdle {
		t.Errorf("recreated session step = %q, want idle", fresh.Step)
	}
}

func TestSetLanguage(t *testing.T) {
	st := NewStore()
	st.SetLanguage("123456", "Hausa")
	if got := st.Get("123456").Language; got != "Hausa" {
		t.Errorf("language = %q, want Hausa", got)
	}
	st.SetLanguage("123456", "")
	if got := st.Get("123456").Language; got != i18n.ReferenceLanguage {
		t.Errorf("empty language = %q, want reference", got)
	}
}
