package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, CommandHelp, parsed.Command)
	require.True(t, parsed.ShowHelp)
}

func TestParseCommands(t *testing.T) {
	for _, name := range []string{"listen", "enable", "disable", "status", "devices", "doctor", "version"} {
		parsed, err := Parse([]string{name})
		require.NoError(t, err)
		require.Equal(t, Command(name), parsed.Command)
		require.False(t, parsed.ShowHelp)
	}
}

func TestParseConfigFlag(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/earshot.conf", "listen"})
	require.NoError(t, err)
	require.Equal(t, CommandListen, parsed.Command)
	require.Equal(t, "/tmp/earshot.conf", parsed.ConfigPath)
}

func TestParseDebugFlag(t *testing.T) {
	parsed, err := Parse([]string{"--debug", "listen"})
	require.NoError(t, err)
	require.True(t, parsed.Debug)
}

func TestParseConfigRequiresPath(t *testing.T) {
	_, err := Parse([]string{"--config"})
	require.Error(t, err)
}

func TestParseRejectsUnknownCommand(t *testing.T) {
	_, err := Parse([]string{"bogus"})
	require.Error(t, err)
}

func TestParseRejectsUnknownFlag(t *testing.T) {
	_, err := Parse([]string{"--bogus"})
	require.Error(t, err)
}

func TestParseRejectsTrailingArgs(t *testing.T) {
	_, err := Parse([]string{"listen", "extra"})
	require.Error(t, err)
}

func TestParseVersionFlag(t *testing.T) {
	parsed, err := Parse([]string{"--version"})
	require.NoError(t, err)
	require.Equal(t, CommandVersion, parsed.Command)
}

func TestHelpTextMentionsCommands(t *testing.T) {
	text := HelpText("earshot")
	require.Contains(t, text, "earshot")
	require.Contains(t, text, "listen")
	require.Contains(t, text, "doctor")
	require.Contains(t, text, "--config")
}
