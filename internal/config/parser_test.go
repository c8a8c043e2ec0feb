package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEmptyReturnsDefaults(t *testing.T) {
	cfg, _, err := Parse("", Default())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestParseOverlaysOntoDefaults(t *testing.T) {
	content := `{
		// wake section with a comment
		"wake": {
			"phrases": ["ok computer"],
			"language": "en-GB",
		},
		"engine": {
			"endpoint": "ws://localhost:8080/v1/listen",
			"sample_rate": 8000,
		},
		"restart": {
			"error_gap_ms": 5000,
		},
	}`

	cfg, warnings, err := Parse(content, Default())
	require.NoError(t, err)
	require.Empty(t, warnings)

	require.Equal(t, []string{"ok computer"}, cfg.Wake.Phrases)
	require.Equal(t, "en-GB", cfg.Wake.Language)
	require.Equal(t, "ws://localhost:8080/v1/listen", cfg.Engine.Endpoint)
	require.Equal(t, 8000, cfg.Engine.SampleRate)
	require.Equal(t, 5000, cfg.Restart.ErrorGapMS)

	// Untouched sections keep their defaults.
	require.Equal(t, Default().Engine.Model, cfg.Engine.Model)
	require.Equal(t, Default().Restart.ErrorDelayMS, cfg.Restart.ErrorDelayMS)
	require.Equal(t, Default().Audio.Input, cfg.Audio.Input)
}

func TestParsePhrasesAcceptCommaString(t *testing.T) {
	cfg, _, err := Parse(`{"wake": {"phrases": "hey alpha, hey beta , "}}`, Default())
	require.NoError(t, err)
	require.Equal(t, []string{"hey alpha", "hey beta"}, cfg.Wake.Phrases)
}

func TestParseDetectCmd(t *testing.T) {
	cfg, _, err := Parse(`{"detect_cmd": "notify-send 'wake word'"}`, Default())
	require.NoError(t, err)
	require.Equal(t, []string{"notify-send", "wake word"}, cfg.Detect.Argv)
	require.Equal(t, "notify-send 'wake word'", cfg.Detect.Raw)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, _, err := Parse(`{"wak": {"phrases": ["x"]}}`, Default())
	require.Error(t, err)
}

func TestParseReportsSyntaxErrorLocation(t *testing.T) {
	_, _, err := Parse("{\n  \"wake\": {\n    \"language\": en-US\n  }\n}", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 3")
}

func TestParseBlockCommentAndTrailingComma(t *testing.T) {
	content := `{
		/* selects the
		   input device */
		"audio": {"input": "usb-mic",},
	}`
	cfg, _, err := Parse(content, Default())
	require.NoError(t, err)
	require.Equal(t, "usb-mic", cfg.Audio.Input)
}

func TestParseUnterminatedBlockComment(t *testing.T) {
	_, _, err := Parse(`{"audio": {}} /* oops`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unterminated block comment")
}

func TestParseRejectsMultipleDocuments(t *testing.T) {
	_, _, err := Parse(`{} {}`, Default())
	require.Error(t, err)
}

func TestParseCommentInsideStringIsKept(t *testing.T) {
	cfg, _, err := Parse(`{"engine": {"model": "nova-2 // not a comment"}}`, Default())
	require.NoError(t, err)
	require.Equal(t, "nova-2 // not a comment", cfg.Engine.Model)
}
