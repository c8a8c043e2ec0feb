package deepgram

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/waiterix/earshot/internal/engine"
)

// listenResponse is the subset of the live-transcription message schema the
// engine consumes. Both the single-channel and multi-channel layouts appear
// in the wild, so the transcript accessor checks both.
type listenResponse struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`

	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func (r listenResponse) transcript() string {
	if len(r.Channel.Alternatives) > 0 {
		if text := strings.TrimSpace(r.Channel.Alternatives[0].Transcript); text != "" {
			return text
		}
	}
	if len(r.Results.Channels) > 0 && len(r.Results.Channels[0].Alternatives) > 0 {
		return strings.TrimSpace(r.Results.Channels[0].Alternatives[0].Transcript)
	}
	return ""
}

// buildListenURL renders the websocket URL with streaming parameters. The
// configured endpoint may use an http(s) scheme; it is rewritten to ws(s).
func buildListenURL(opts Options, cfg engine.Config) (string, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return "", fmt.Errorf("engine endpoint is empty")
	}

	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint = "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		endpoint = "ws://" + strings.TrimPrefix(endpoint, "http://")
	}

	listenURL, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid engine endpoint: %w", err)
	}
	if listenURL.Scheme != "ws" && listenURL.Scheme != "wss" {
		return "", fmt.Errorf("engine endpoint scheme must be ws or wss, got %q", listenURL.Scheme)
	}

	sampleRate := opts.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	channels := opts.Channels
	if channels <= 0 {
		channels = 1
	}

	query := listenURL.Query()
	query.Set("encoding", "linear16")
	query.Set("sample_rate", fmt.Sprintf("%d", sampleRate))
	query.Set("channels", fmt.Sprintf("%d", channels))
	query.Set("interim_results", fmt.Sprintf("%t", cfg.InterimResults))
	if opts.Model != "" {
		query.Set("model", opts.Model)
	}
	if cfg.Language != "" {
		query.Set("language", cfg.Language)
	}
	listenURL.RawQuery = query.Encode()

	return listenURL.String(), nil
}
