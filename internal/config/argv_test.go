package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseArgvQuoting(t *testing.T) {
	argv, err := parseArgv(`notify-send -u low "wake word" 'heard you'`)
	require.NoError(t, err)
	require.Equal(t, []string{"notify-send", "-u", "low", "wake word", "heard you"}, argv)
}

func TestParseArgvEscapes(t *testing.T) {
	argv, err := parseArgv(`echo one\ two`)
	require.NoError(t, err)
	require.Equal(t, []string{"echo", "one two"}, argv)
}

func TestParseArgvEmptyAndComment(t *testing.T) {
	argv, err := parseArgv("   ")
	require.NoError(t, err)
	require.Nil(t, argv)

	argv, err = parseArgv("# disabled")
	require.NoError(t, err)
	require.Nil(t, argv)
}

func TestParseArgvUnterminatedQuote(t *testing.T) {
	_, err := parseArgv(`echo "oops`)
	require.Error(t, err)
}
