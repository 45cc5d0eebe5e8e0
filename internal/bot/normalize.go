package bot

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateDisplayLayout renders dates the way users type them (day first).
const dateDisplayLayout = "02/01/2006"

var (
	nonAlnumRE = regexp.MustCompile(`[^a-z0-9]`)
	greetingRE = regexp.MustCompile(`(?i)^(hi|hello|hey|yo|good\s*(morning|afternoon|evening))`)
	dateRE     = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})`)
)

var (
	errDateFormat  = errors.New("input does not contain a date")
	errDateInvalid = errors.New("date is not a valid calendar date")
)

// Normalize derives the canonical matching token from raw message text:
// trimmed, lowercased, with every character outside [a-z0-9] removed.
// Only menu/command matching uses this; content capture keeps the raw text.
func Normalize(s string) string {
	return nonAlnumRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
}

// isGreeting reports whether the raw text opens with a greeting phrase.
func isGreeting(raw string) bool {
	return greetingRE.MatchString(raw)
}

// parseDate extracts a day-first D/M/Y date from raw text. errDateFormat means
// nothing date-shaped was found; errDateInvalid means the digits matched but do
// not name a real calendar date (e.g. 31/02/2025).
func parseDate(raw string) (time.Time, error) {
	m := dateRE.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, errDateFormat
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, errDateInvalid
	}
	return t, nil
}

// formatDate renders a date for user-facing messages.
func formatDate(t time.Time) string {
	return t.Format(dateDisplayLayout)
}

// plural returns the English-style plural suffix used by the count templates.
func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
