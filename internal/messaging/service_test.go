package messaging

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/venille-ai/venille/internal/models"
)

func TestCanonicalizePhone(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"+234 801 111 1111", "2348011111111", false},
		{"(234) 801-111-1111", "2348011111111", false},
		{"2348011111111", "2348011111111", false},
		{"120363041234567890@g.us", "120363041234567890@g.us", false},
		{"2348011111111@s.whatsapp.net", "2348011111111@s.whatsapp.net", false},
		{"", "", true},
		{"abc", "", true},
		{"12345", "", true},
	}
	for _, c := range cases {
		got, err := canonicalizePhone(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("canonicalizePhone(%q) = %q, want error", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("canonicalizePhone(%q) failed: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("canonicalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalizeEmptyRecipientSentinel(t *testing.T) {
	if _, err := canonicalizePhone(""); err != models.ErrEmptyRecipient {
		t.Errorf("empty recipient error = %v, want ErrEmptyRecipient", err)
	}
}

func TestMockServiceRecordsSends(t *testing.T) {
	m := NewMockService()
	if err := m.SendMessage(t.Context(), "123456", "hello"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if got := m.SentTo("123456"); len(got) != 1 || got[0] != "hello" {
		t.Errorf("SentTo = %v", got)
	}
}

func TestTwilioWebhookEmitsResponse(t *testing.T) {
	svc := NewTwilioService(nil)

	form := url.Values{}
	form.Set("From", "whatsapp:+2348011111111")
	form.Set("Body", "hi")
	form.Set("ProfileName", "Amina")
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	svc.WebhookHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("webhook status = %d, want 200", rec.Code)
	}
	select {
	case resp := <-svc.Responses():
		if resp.From != "2348011111111" {
			t.Errorf("response from = %q, want canonical digits", resp.From)
		}
		if resp.Body != "hi" || resp.Name != "Amina" {
			t.Errorf("response = %+v", resp)
		}
	default:
		t.Fatal("no response emitted by webhook")
	}
}

func TestTwilioWebhookRejectsMissingFields(t *testing.T) {
	svc := NewTwilioService(nil)

	form := url.Values{}
	form.Set("From", "whatsapp:+2348011111111")
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	svc.WebhookHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("webhook status = %d, want 400", rec.Code)
	}
}

func TestTwilioStoppedServiceDropsInbound(t *testing.T) {
	svc := NewTwilioService(nil)
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Errorf("second Stop should be a no-op, got %v", err)
	}
	if err := svc.SendMessage(t.Context(), "2348011111111", "hi"); err != models.ErrServiceStopped {
		t.Errorf("SendMessage after Stop = %v, want ErrServiceStopped", err)
	}
}
