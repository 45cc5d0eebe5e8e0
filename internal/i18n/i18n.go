// Package i18n provides the localized message catalog for Venille.
//
// Templates use positional placeholders ({0}, {1}, ...). Lookup falls back from the
// user's language to the reference language and finally to the empty string, so
// rendering never fails regardless of stored language values.
package i18n

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ReferenceLanguage is the designated fallback bundle.
const ReferenceLanguage = "English"

// Key identifies one message template in a bundle.
type Key string

// Message keys shared across flows.
const (
	KeyMenu                 Key = "menu"
	KeyFallback             Key = "fallback"
	KeyTrackPrompt          Key = "trackPrompt"
	KeyLangPrompt           Key = "langPrompt"
	KeySavedSymptom         Key = "savedSymptom"
	KeyAskReminder          Key = "askReminder"
	KeyReminderYes          Key = "reminderYes"
	KeyReminderNo           Key = "reminderNo"
	KeyReminderDue          Key = "reminderDue"
	KeyInvalidDate          Key = "invalidDate"
	KeyNotValidDate         Key = "notValidDate"
	KeySymptomsDone         Key = "symptomsDone"
	KeySymptomsCancel       Key = "symptomsCancel"
	KeySymptomsNothingSaved Key = "symptomsNothingSaved"
	KeySymptomPrompt        Key = "symptomPrompt"
	KeyEduTopics            Key = "eduTopics"
	KeyLanguageSet          Key = "languageSet"
	KeyNoPeriod             Key = "noPeriod"
	KeyCycleInfo            Key = "cycleInfo"
	KeyNoSymptoms           Key = "noSymptoms"
	KeySymptomsHistory      Key = "symptomsHistory"
	KeyFeedbackQ1           Key = "feedbackQ1"
	KeyFeedbackQ2           Key = "feedbackQ2"
	KeyFeedbackThanks       Key = "feedbackThanks"
	KeyOrderQuantityPrompt  Key = "orderQuantityPrompt"
	KeyOrderQuantityInvalid Key = "orderQuantityInvalid"
	KeyOrderConfirmation    Key = "orderConfirmation"
	KeyOrderVendorMessage   Key = "orderVendorMessage"
)

// Bundle holds the templates for one language.
type Bundle map[Key]string

// Catalog resolves (language, key, args) to a rendered string.
type Catalog struct {
	bundles   map[string]Bundle
	reference string
}

// NewCatalog creates a catalog preloaded with the built-in bundles.
func NewCatalog() *Catalog {
	return &Catalog{
		bundles:   builtinBundles,
		reference: ReferenceLanguage,
	}
}

// Render resolves key in the given language and substitutes positional arguments.
// Missing bundles and missing keys fall back to the reference language; if the key
// is absent there too the result is the empty string. Render never fails.
func (c *Catalog) Render(lang string, key Key, args ...any) string {
	tmpl, ok := c.lookup(lang, key)
	if !ok {
		slog.Debug("i18n key missing in all bundles", "lang", lang, "key", key)
		return ""
	}
	return Format(tmpl, args...)
}

func (c *Catalog) lookup(lang string, key Key) (string, bool) {
	if bundle, ok := c.bundles[lang]; ok {
		if tmpl, ok := bundle[key]; ok {
			return tmpl, true
		}
	}
	if bundle, ok := c.bundles[c.reference]; ok {
		if tmpl, ok := bundle[key]; ok {
			return tmpl, true
		}
	}
	return "", false
}

// MatchLanguage matches input as a case-insensitive prefix of a known bundle
// language name. It returns the canonical name on a match, or input unchanged
// when no bundle matches (an unknown language simply always falls back).
func (c *Catalog) MatchLanguage(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return input, false
	}
	lower := strings.ToLower(trimmed)
	for _, name := range c.Languages() {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			return name, true
		}
	}
	return trimmed, false
}

// Languages returns the known bundle language names, sorted for determinism.
func (c *Catalog) Languages() []string {
	names := make([]string, 0, len(c.bundles))
	for name := range c.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var placeholderRE = regexp.MustCompile(`\{(\d+)\}`)

// Format substitutes {i} placeholders with the i-th argument, stringified.
// An index with no matching argument is left as the literal placeholder text.
func Format(tmpl string, args ...any) string {
	return placeholderRE.ReplaceAllStringFunc(tmpl, func(match string) string {
		idx, err := strconv.Atoi(match[1 : len(match)-1])
		if err != nil || idx < 0 || idx >= len(args) {
			return match
		}
		return fmt.Sprint(args[idx])
	})
}
