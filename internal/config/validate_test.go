package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaultsPass(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateRejectsNoPhrases(t *testing.T) {
	cfg := Default()
	cfg.Wake.Phrases = []string{"", "   "}
	_, err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "wake.phrases")
}

func TestValidateRejectsBadEndpointScheme(t *testing.T) {
	cfg := Default()
	cfg.Engine.Endpoint = "https://api.deepgram.com/v1/listen"
	_, err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ws or wss")
}

func TestValidateRejectsStereo(t *testing.T) {
	cfg := Default()
	cfg.Engine.Channels = 2
	_, err := Validate(cfg)
	require.Error(t, err)
}

func TestValidateRejectsNegativeRestartValues(t *testing.T) {
	cfg := Default()
	cfg.Restart.EndDelayMS = -1
	_, err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "restart.end_delay_ms")
}

func TestValidateWarnsOnMissingAPIKeyEnv(t *testing.T) {
	cfg := Default()
	cfg.Engine.APIKeyEnv = ""
	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "api_key_env")
}
