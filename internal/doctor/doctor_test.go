package doctor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "config", Pass: true, Message: "loaded"},
		{Name: "engine.api_key", Pass: false, Message: "missing"},
	}}

	rendered := report.String()
	require.Contains(t, rendered, "[OK] config: loaded")
	require.Contains(t, rendered, "[FAIL] engine.api_key: missing")
	require.False(t, report.OK())
}

func TestReportOKWhenAllPass(t *testing.T) {
	report := Report{Checks: []Check{{Name: "a", Pass: true}, {Name: "b", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckPhrases(t *testing.T) {
	check := checkPhrases([]string{"  Hey Waiterix  ", ""})
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "1 phrase(s)")
	require.Contains(t, check.Message, "hey waiterix")

	check = checkPhrases([]string{"", "   "})
	require.False(t, check.Pass)
}

func TestCheckEndpoint(t *testing.T) {
	require.True(t, checkEndpoint("wss://api.deepgram.com/v1/listen").Pass)
	require.True(t, checkEndpoint("ws://localhost:8080/v1/listen").Pass)
	require.False(t, checkEndpoint("https://api.deepgram.com/v1/listen").Pass)
	require.False(t, checkEndpoint("").Pass)
}

func TestCheckAPIKey(t *testing.T) {
	t.Setenv("EARSHOT_TEST_KEY", "secret")
	check := checkAPIKey("EARSHOT_TEST_KEY")
	require.True(t, check.Pass)
	require.NotContains(t, check.Message, "secret")

	t.Setenv("EARSHOT_TEST_KEY", "")
	require.False(t, checkAPIKey("EARSHOT_TEST_KEY").Pass)

	require.True(t, checkAPIKey("").Pass)
}

func TestCheckBinary(t *testing.T) {
	require.True(t, checkBinary("sh", "shell available").Pass)
	require.False(t, checkBinary("definitely-not-a-real-binary-xyz", "").Pass)
}
