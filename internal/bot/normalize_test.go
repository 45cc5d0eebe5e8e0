package bot

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Track My Period ", "trackmyperiod"},
		{"1.", "1"},
		{"2)", "2"},
		{"DONE", "done"},
		{"log symptoms!", "logsymptoms"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsGreeting(t *testing.T) {
	greetings := []string{"hi", "Hello there", "HEY", "yo", "good morning", "Good  Evening"}
	for _, g := range greetings {
		if !isGreeting(g) {
			t.Errorf("isGreeting(%q) = false, want true", g)
		}
	}
	// "higher" starts with "hi": prefix matching deliberately treats anything
	// greeting-shaped as a reset.
	if !isGreeting("higher prices") {
		t.Errorf("isGreeting(%q) = false, want true (prefix match)", "higher prices")
	}
	for _, g := range []string{"", "track my period", "goodbye"} {
		if isGreeting(g) {
			t.Errorf("isGreeting(%q) = true, want false", g)
		}
	}
}

func TestParseDateValid(t *testing.T) {
	got, err := parseDate("I think 12/05/2025 or so")
	if err != nil {
		t.Fatalf("parseDate returned error: %v", err)
	}
	want := time.Date(2025, time.May, 12, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("parseDate = %v, want %v", got, want)
	}
}

func TestParseDateTwoDigitYear(t *testing.T) {
	got, err := parseDate("12/05/25")
	if err != nil {
		t.Fatalf("parseDate returned error: %v", err)
	}
	if got.Year() != 2025 {
		t.Errorf("parseDate year = %d, want 2025", got.Year())
	}
}

func TestParseDateDashSeparator(t *testing.T) {
	got, err := parseDate("1-2-2025")
	if err != nil {
		t.Fatalf("parseDate returned error: %v", err)
	}
	if got.Day() != 1 || got.Month() != time.February {
		t.Errorf("parseDate = %v, want 1 Feb 2025", got)
	}
}

func TestParseDateNoDate(t *testing.T) {
	if _, err := parseDate("sometime last week"); err != errDateFormat {
		t.Errorf("parseDate error = %v, want errDateFormat", err)
	}
}

func TestParseDateImpossibleDate(t *testing.T) {
	cases := []string{"31/02/2025", "00/01/2025", "15/13/2025"}
	for _, in := range cases {
		if _, err := parseDate(in); err != errDateInvalid {
			t.Errorf("parseDate(%q) error = %v, want errDateInvalid", in, err)
		}
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, time.June, 9, 0, 0, 0, 0, time.Local)
	if got := formatDate(d); got != "09/06/2025" {
		t.Errorf("formatDate = %q, want %q", got, "09/06/2025")
	}
}

func TestPlural(t *testing.T) {
	if plural(1) != "" {
		t.Errorf("plural(1) = %q, want empty", plural(1))
	}
	if plural(2) != "s" {
		t.Errorf("plural(2) = %q, want \"s\"", plural(2))
	}
}

func TestMenuEntryMatches(t *testing.T) {
	e := menuEntry{number: 4, keyword: "ordervenillepads"}
	for _, token := range []string{"4", "ordervenillepads"} {
		if !e.matches(token) {
			t.Errorf("matches(%q) = false, want true", token)
		}
	}
	// Normalize strips punctuation before matching, so "4." and "4)" arrive as
	// "4"; the raw-token forms still match for callers that skip normalization.
	if e.matches("5") || e.matches("order") {
		t.Error("matches accepted wrong token")
	}
}
