// Package config resolves, parses, validates, and defaults earshot configuration.
package config

// Config is the fully materialized runtime configuration used by earshot.
type Config struct {
	Wake    WakeConfig
	Engine  EngineConfig
	Audio   AudioConfig
	Restart RestartConfig
	Detect  CommandConfig
}

// WakeConfig controls trigger phrases and recognition language.
type WakeConfig struct {
	Phrases  []string
	Language string
}

// EngineConfig controls the streaming recognition backend.
type EngineConfig struct {
	Endpoint          string
	APIKeyEnv         string
	Model             string
	SampleRate        int
	Channels          int
	NoSpeechTimeoutMS int
	HealthGRPC        string
}

// AudioConfig controls input-source selection.
type AudioConfig struct {
	Input string
}

// RestartConfig controls session restart debouncing, in milliseconds.
type RestartConfig struct {
	ErrorGapMS   int
	ErrorDelayMS int
	EndGapMS     int
	EndDelayMS   int
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
