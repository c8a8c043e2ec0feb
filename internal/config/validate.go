package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks a materialized configuration, returning non-fatal warnings
// and a hard error for values the daemon cannot run with.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	phrases := 0
	for _, phrase := range cfg.Wake.Phrases {
		if strings.TrimSpace(phrase) != "" {
			phrases++
		}
	}
	if phrases == 0 {
		return nil, fmt.Errorf("wake.phrases must contain at least one non-blank phrase")
	}

	if strings.TrimSpace(cfg.Wake.Language) == "" {
		warnings = append(warnings, Warning{
			Message: "wake.language is empty; the engine default will be used",
		})
	}

	endpoint := strings.TrimSpace(cfg.Engine.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("engine.endpoint must not be empty")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("engine.endpoint is not a valid URL: %w", err)
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return nil, fmt.Errorf("engine.endpoint scheme must be ws or wss, got %q", parsed.Scheme)
	}

	if strings.TrimSpace(cfg.Engine.APIKeyEnv) == "" {
		warnings = append(warnings, Warning{
			Message: "engine.api_key_env is empty; the engine will connect without credentials",
		})
	}

	if cfg.Engine.SampleRate <= 0 {
		return nil, fmt.Errorf("engine.sample_rate must be positive, got %d", cfg.Engine.SampleRate)
	}
	if cfg.Engine.Channels != 1 {
		return nil, fmt.Errorf("engine.channels must be 1 (mono capture), got %d", cfg.Engine.Channels)
	}
	if cfg.Engine.NoSpeechTimeoutMS < 0 {
		return nil, fmt.Errorf("engine.no_speech_timeout_ms must not be negative, got %d", cfg.Engine.NoSpeechTimeoutMS)
	}

	for _, field := range []struct {
		name  string
		value int
	}{
		{"restart.error_gap_ms", cfg.Restart.ErrorGapMS},
		{"restart.error_delay_ms", cfg.Restart.ErrorDelayMS},
		{"restart.end_gap_ms", cfg.Restart.EndGapMS},
		{"restart.end_delay_ms", cfg.Restart.EndDelayMS},
	} {
		if field.value < 0 {
			return nil, fmt.Errorf("%s must not be negative, got %d", field.name, field.value)
		}
	}

	return warnings, nil
}
