// Package deepgram implements the recognition engine contract on top of a
// Deepgram live-transcription websocket, feeding it microphone PCM.
package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/waiterix/earshot/internal/audio"
	"github.com/waiterix/earshot/internal/engine"
)

// Options carries host-level engine settings resolved from configuration.
type Options struct {
	Endpoint        string
	APIKey          string
	Model           string
	SampleRate      int
	Channels        int
	NoSpeechTimeout time.Duration
	Input           string
}

// NewFactory returns an engine factory bound to these options. Construction
// fails with engine.ErrUnsupported when no API key is available, which the
// controller reports as "recognition unsupported on this host".
func NewFactory(logger *slog.Logger, opts Options) engine.Factory {
	return func(cfg engine.Config, handlers engine.Handlers) (engine.Engine, error) {
		if strings.TrimSpace(opts.APIKey) == "" {
			return nil, fmt.Errorf("%w: no engine API key configured", engine.ErrUnsupported)
		}
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		return &Live{logger: logger, opts: opts, cfg: cfg, handlers: handlers}, nil
	}
}

// Live is one reusable engine instance. Each Start opens a fresh capture
// stream and websocket; OnEnd fires exactly once per started session.
type Live struct {
	logger   *slog.Logger
	opts     Options
	cfg      engine.Config
	handlers engine.Handlers

	mu            sync.Mutex
	active        bool
	stopRequested bool
	silenced      bool
	cancel        context.CancelFunc
	conn          *websocket.Conn
	capture       *audio.Capture
}

// Start launches a recognition session. It returns engine.ErrAlreadyStarted
// while a previous session is still winding down; all session work happens
// on background goroutines, so handlers never run inside this call.
func (l *Live) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active {
		return engine.ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.active = true
	l.stopRequested = false
	l.silenced = false
	l.cancel = cancel

	go l.run(ctx)
	return nil
}

// Stop requests a graceful end: capture is flushed, the close-stream message
// is sent, and the session ends once the server hangs up.
func (l *Live) Stop() {
	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return
	}
	l.stopRequested = true
	capture := l.capture
	l.mu.Unlock()

	if capture != nil {
		capture.Stop()
	}
}

// Abort tears the session down immediately without waiting for the server.
func (l *Live) Abort() {
	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return
	}
	l.stopRequested = true
	cancel := l.cancel
	capture := l.capture
	conn := l.conn
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if capture != nil {
		capture.Stop()
	}
	if conn != nil {
		_ = conn.Close()
	}
}

// run owns the whole session lifecycle on its own goroutine.
func (l *Live) run(ctx context.Context) {
	defer l.finish()

	device, err := audio.SelectInput(ctx, l.opts.Input)
	if err != nil {
		l.logger.Warn("audio input selection failed", "error", err.Error())
		l.emitError(engine.KindAudioCapture)
		return
	}

	capture, err := audio.StartCapture(ctx, device, l.opts.SampleRate)
	if err != nil {
		l.logger.Warn("audio capture failed", "error", err.Error())
		l.emitError(engine.KindAudioCapture)
		return
	}
	defer capture.Close()

	wsURL, err := buildListenURL(l.opts, l.cfg)
	if err != nil {
		l.logger.Error("bad engine endpoint", "error", err.Error())
		l.emitError(engine.KindNetwork)
		return
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+l.opts.APIKey)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		l.logger.Warn("engine dial failed", "error", err.Error(), "status", status)
		l.emitError(kindForDialStatus(status))
		return
	}
	defer conn.Close()

	l.mu.Lock()
	if l.stopRequested {
		l.mu.Unlock()
		return
	}
	l.conn = conn
	l.capture = capture
	l.mu.Unlock()

	if h := l.handlers.OnStart; h != nil {
		h()
	}
	l.logger.Info("recognition session open", "device", device.ID, "model", l.opts.Model)

	watchdog := l.armWatchdog(conn)
	if watchdog != nil {
		defer watchdog.Stop()
	}

	go l.writeLoop(conn, capture)
	l.readLoop(ctx, conn, watchdog)
}

// writeLoop forwards PCM until capture closes, then signals end of audio.
func (l *Live) writeLoop(conn *websocket.Conn, capture *audio.Capture) {
	for chunk := range capture.Chunks() {
		if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
			l.logger.Debug("audio send failed", "error", err.Error())
			return
		}
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
		l.logger.Debug("close-stream send failed", "error", err.Error())
	}
}

// readLoop consumes transcript messages until the socket closes.
func (l *Live) readLoop(ctx context.Context, conn *websocket.Conn, watchdog *time.Timer) {
	resultIndex := 0

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			l.mu.Lock()
			expected := l.stopRequested || l.silenced
			l.mu.Unlock()
			if expected || ctx.Err() != nil {
				return
			}
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				// Server closed cleanly; surface as a plain session end.
				return
			}
			l.logger.Warn("engine read failed", "error", err.Error())
			l.emitError(engine.KindNetwork)
			return
		}

		var response listenResponse
		if err := json.Unmarshal(payload, &response); err != nil {
			continue
		}

		if strings.EqualFold(response.Type, "Error") {
			message := strings.TrimSpace(response.Message)
			if message == "" {
				message = "engine returned an unknown error"
			}
			l.logger.Warn("engine error message", "message", message)
			l.emitError(engine.KindNetwork)
			return
		}

		text := response.transcript()
		if text == "" {
			continue
		}

		if watchdog != nil {
			watchdog.Reset(l.opts.NoSpeechTimeout)
		}

		final := response.IsFinal || response.SpeechFinal
		ev := engine.ResultEvent{
			ResultIndex: resultIndex,
			Fragments: []engine.Fragment{{
				Text:  text,
				Final: final,
				Index: resultIndex,
			}},
		}
		if final {
			resultIndex++
		}

		if h := l.handlers.OnResult; h != nil {
			h(ev)
		}
	}
}

// armWatchdog reports prolonged silence as a no-speech error and ends the
// session so the controller's restart policy takes over.
func (l *Live) armWatchdog(conn *websocket.Conn) *time.Timer {
	if l.opts.NoSpeechTimeout <= 0 {
		return nil
	}
	return time.AfterFunc(l.opts.NoSpeechTimeout, func() {
		l.mu.Lock()
		if !l.active || l.stopRequested || l.silenced {
			l.mu.Unlock()
			return
		}
		l.silenced = true
		l.mu.Unlock()

		l.logger.Info("no speech detected; recycling session")
		l.emitError(engine.KindNoSpeech)
		_ = conn.Close()
	})
}

// finish releases session state and fires the single end notification.
func (l *Live) finish() {
	l.mu.Lock()
	l.active = false
	cancel := l.cancel
	l.cancel = nil
	l.conn = nil
	capture := l.capture
	l.capture = nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if capture != nil {
		capture.Stop()
	}
	if h := l.handlers.OnEnd; h != nil {
		h()
	}
}

func (l *Live) emitError(kind string) {
	if h := l.handlers.OnError; h != nil {
		h(engine.ErrorEvent{Kind: kind})
	}
}

// kindForDialStatus maps websocket handshake failures onto the error
// taxonomy: credential rejections are fatal, everything else transient.
func kindForDialStatus(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return engine.KindServiceNotAllowed
	default:
		return engine.KindNetwork
	}
}
