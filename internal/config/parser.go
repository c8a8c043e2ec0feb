package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse reads configuration content as JSONC. An empty document yields the
// base configuration unchanged.
func Parse(content string, base Config) (Config, []Warning, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		warnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, warnings, nil
	}

	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	if err := payload.applyTo(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

type jsoncConfig struct {
	Wake    *jsoncWake    `json:"wake"`
	Engine  *jsoncEngine  `json:"engine"`
	Audio   *jsoncAudio   `json:"audio"`
	Restart *jsoncRestart `json:"restart"`

	DetectCmd *string `json:"detect_cmd"`
}

type jsoncWake struct {
	Phrases  *jsoncStringList `json:"phrases"`
	Language *string          `json:"language"`
}

type jsoncEngine struct {
	Endpoint          *string `json:"endpoint"`
	APIKeyEnv         *string `json:"api_key_env"`
	Model             *string `json:"model"`
	SampleRate        *int    `json:"sample_rate"`
	Channels          *int    `json:"channels"`
	NoSpeechTimeoutMS *int    `json:"no_speech_timeout_ms"`
	HealthGRPC        *string `json:"health_grpc"`
}

type jsoncAudio struct {
	Input *string `json:"input"`
}

type jsoncRestart struct {
	ErrorGapMS   *int `json:"error_gap_ms"`
	ErrorDelayMS *int `json:"error_delay_ms"`
	EndGapMS     *int `json:"end_gap_ms"`
	EndDelayMS   *int `json:"end_delay_ms"`
}

// jsoncStringList accepts either a JSON string array or one comma-delimited
// string.
type jsoncStringList []string

func (l *jsoncStringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		parts := strings.Split(single, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
		*l = out
		return nil
	}

	return fmt.Errorf("expected string array or comma-delimited string")
}

func (payload jsoncConfig) applyTo(cfg *Config) error {
	if payload.Wake != nil {
		if payload.Wake.Phrases != nil {
			cfg.Wake.Phrases = append([]string(nil), *payload.Wake.Phrases...)
		}
		if payload.Wake.Language != nil {
			cfg.Wake.Language = strings.TrimSpace(*payload.Wake.Language)
		}
	}

	if payload.Engine != nil {
		if payload.Engine.Endpoint != nil {
			cfg.Engine.Endpoint = strings.TrimSpace(*payload.Engine.Endpoint)
		}
		if payload.Engine.APIKeyEnv != nil {
			cfg.Engine.APIKeyEnv = strings.TrimSpace(*payload.Engine.APIKeyEnv)
		}
		if payload.Engine.Model != nil {
			cfg.Engine.Model = strings.TrimSpace(*payload.Engine.Model)
		}
		if payload.Engine.SampleRate != nil {
			cfg.Engine.SampleRate = *payload.Engine.SampleRate
		}
		if payload.Engine.Channels != nil {
			cfg.Engine.Channels = *payload.Engine.Channels
		}
		if payload.Engine.NoSpeechTimeoutMS != nil {
			cfg.Engine.NoSpeechTimeoutMS = *payload.Engine.NoSpeechTimeoutMS
		}
		if payload.Engine.HealthGRPC != nil {
			cfg.Engine.HealthGRPC = strings.TrimSpace(*payload.Engine.HealthGRPC)
		}
	}

	if payload.Audio != nil && payload.Audio.Input != nil {
		cfg.Audio.Input = strings.TrimSpace(*payload.Audio.Input)
	}

	if payload.Restart != nil {
		if payload.Restart.ErrorGapMS != nil {
			cfg.Restart.ErrorGapMS = *payload.Restart.ErrorGapMS
		}
		if payload.Restart.ErrorDelayMS != nil {
			cfg.Restart.ErrorDelayMS = *payload.Restart.ErrorDelayMS
		}
		if payload.Restart.EndGapMS != nil {
			cfg.Restart.EndGapMS = *payload.Restart.EndGapMS
		}
		if payload.Restart.EndDelayMS != nil {
			cfg.Restart.EndDelayMS = *payload.Restart.EndDelayMS
		}
	}

	if payload.DetectCmd != nil {
		raw := *payload.DetectCmd
		argv, err := parseArgv(raw)
		if err != nil {
			return fmt.Errorf("invalid detect_cmd: %w", err)
		}
		cfg.Detect = CommandConfig{Raw: raw, Argv: argv}
	}

	return nil
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var offset int64 = -1

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return err
	}

	line, col := offsetToLineCol(content, offset)
	return fmt.Errorf("line %d column %d: %w", line, col, err)
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line, col := 1, 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
