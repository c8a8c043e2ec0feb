package wakeword

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func defaultPhrases() []string {
	return []string{"hey waiterix", "hey waitrix", "waiterix", "hey wait trix"}
}

func TestMatchConfiguredVariants(t *testing.T) {
	m := NewMatcher(defaultPhrases())

	require.True(t, m.Match("I said hey waiterix please"))
	require.True(t, m.Match("hey waitrix"))
	require.True(t, m.Match("waiterix"))
	require.True(t, m.Match("hey wait trix"))
}

func TestNoMatchWithoutConfiguredSubstring(t *testing.T) {
	m := NewMatcher(defaultPhrases())

	require.False(t, m.Match("hey waiter, can I get the check"))
	require.False(t, m.Match(""))
	require.False(t, m.Match("   "))
}

func TestMatchIsCaseAndWhitespaceInsensitive(t *testing.T) {
	m := NewMatcher([]string{"  Hey Waiterix  "})

	phrase, ok := m.MatchPhrase("well...  HEY   WAITERIX over here")
	require.True(t, ok)
	require.Equal(t, "hey waiterix", phrase)
}

func TestMatchPhraseReturnsFirstConfiguredHit(t *testing.T) {
	m := NewMatcher(defaultPhrases())

	phrase, ok := m.MatchPhrase("hey waiterix")
	require.True(t, ok)
	require.Equal(t, "hey waiterix", phrase)

	// "waiterix" alone hits the third configured spelling.
	phrase, ok = m.MatchPhrase("the waiterix thing")
	require.True(t, ok)
	require.Equal(t, "waiterix", phrase)
}

func TestNewMatcherDropsBlankPhrases(t *testing.T) {
	m := NewMatcher([]string{" ", "", "waiterix"})
	require.Equal(t, []string{"waiterix"}, m.Phrases())
}

func TestEmptyMatcherNeverMatches(t *testing.T) {
	m := NewMatcher(nil)
	require.False(t, m.Match("hey waiterix"))
}
