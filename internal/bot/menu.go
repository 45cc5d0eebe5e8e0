package bot

import (
	"context"
	"strconv"

	"github.com/venille-ai/venille/internal/session"
)

// menuAction starts (or directly serves) one main-menu item.
type menuAction func(h *Handler, ctx context.Context, sess *session.Session, jid string) error

// menuEntry declares the literal tokens that select one menu item: the keyword
// phrase plus the numbered forms N, "N." and "N)". Tokens are compared against
// the normalized input, never the raw text.
type menuEntry struct {
	number  int
	keyword string
	action  menuAction
}

// menuTable is evaluated in order for each idle-state message.
var menuTable = []menuEntry{
	{1, "trackmyperiod", (*Handler).startTrackPeriod},
	{2, "logsymptoms", (*Handler).startSymptomLog},
	{3, "learnaboutsexualhealth", (*Handler).startEducation},
	{4, "ordervenillepads", (*Handler).startOrder},
	{5, "viewmycycle", (*Handler).showCycle},
	{6, "viewmysymptoms", (*Handler).showSymptoms},
	{7, "changelanguage", (*Handler).startLanguage},
	{8, "givefeedback", (*Handler).startFeedback},
}

func (e menuEntry) matches(token string) bool {
	n := strconv.Itoa(e.number)
	switch token {
	case e.keyword, n, n + ".", n + ")":
		return true
	}
	return false
}
