package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Wake: WakeConfig{
			Phrases: []string{
				"hey waiterix",
				"hey waitrix",
				"waiterix",
				"hey wait trix",
			},
			Language: "en-US",
		},
		Engine: EngineConfig{
			Endpoint:          "wss://api.deepgram.com/v1/listen",
			APIKeyEnv:         "DEEPGRAM_API_KEY",
			Model:             "nova-2",
			SampleRate:        16000,
			Channels:          1,
			NoSpeechTimeoutMS: 15000,
			HealthGRPC:        "",
		},
		Audio: AudioConfig{
			Input: "default",
		},
		Restart: RestartConfig{
			ErrorGapMS:   3000,
			ErrorDelayMS: 2000,
			EndGapMS:     1000,
			EndDelayMS:   1000,
		},
		Detect: CommandConfig{},
	}
}
