// Package wakeword matches transcript fragments against configured wake
// phrases.
package wakeword

import "strings"

// Matcher holds the normalized, immutable wake-phrase set. Multiple
// spellings of the same phrase compensate for recognizer misrecognition
// (homophone variants), so matching is plain substring containment rather
// than word-boundary aware.
type Matcher struct {
	phrases []string
}

// NewMatcher lowercases and trims the configured phrases, dropping blanks.
func NewMatcher(phrases []string) *Matcher {
	normalized := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		phrase = normalize(phrase)
		if phrase == "" {
			continue
		}
		normalized = append(normalized, phrase)
	}
	return &Matcher{phrases: normalized}
}

// Phrases returns the normalized phrase set in configuration order.
func (m *Matcher) Phrases() []string {
	out := make([]string, len(m.phrases))
	copy(out, m.phrases)
	return out
}

// Match reports whether any configured phrase occurs in text.
func (m *Matcher) Match(text string) bool {
	_, ok := m.MatchPhrase(text)
	return ok
}

// MatchPhrase returns the first configured phrase contained in text.
func (m *Matcher) MatchPhrase(text string) (string, bool) {
	text = normalize(text)
	if text == "" {
		return "", false
	}
	for _, phrase := range m.phrases {
		if strings.Contains(text, phrase) {
			return phrase, true
		}
	}
	return "", false
}

// normalize lowercases and collapses runs of whitespace to single spaces.
func normalize(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	return strings.Join(strings.Fields(raw), " ")
}
