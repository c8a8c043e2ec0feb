// Package listener owns the continuous wake-word recognition session:
// enable/disable lifecycle, engine event handling, and debounced restarts.
package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/waiterix/earshot/internal/engine"
	"github.com/waiterix/earshot/internal/fsm"
	"github.com/waiterix/earshot/internal/ipc"
	"github.com/waiterix/earshot/internal/wakeword"
)

// Config carries controller construction parameters.
type Config struct {
	Phrases    []string
	Language   string
	OnDetected func(phrase string)
	Policy     RestartPolicy
	Clock      Clock
}

// Status is the externally visible controller state. Only the fatal error
// class is surfaced; transient failures are handled internally.
type Status struct {
	Listening  bool
	Supported  bool
	FatalError string
}

// pendingRestart tracks one armed restart so Disable/Close can cancel it.
// Scheduling deliberately does not replace an earlier outstanding schedule;
// the state re-check in restartDue keeps overlapping fires harmless.
type pendingRestart struct {
	timer Timer
}

// Controller drives one recognition engine instance. All mutable session
// state lives behind mu and is written only by controller methods; engine
// callbacks are bound back here so no state is shared through closures.
type Controller struct {
	logger     *slog.Logger
	matcher    *wakeword.Matcher
	onDetected func(phrase string)
	policy     RestartPolicy
	clock      Clock

	mu            sync.Mutex
	eng           engine.Engine
	supported     bool
	state         fsm.State
	enabled       bool
	userStopped   bool
	fatalKind     string
	lastRestartAt time.Time
	pending       []*pendingRestart
	closed        bool
}

// NewController builds the controller and probes engine support once. The
// recognition session itself is not started until Enable.
func NewController(logger *slog.Logger, newEngine engine.Factory, cfg Config) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Policy == (RestartPolicy{}) {
		cfg.Policy = DefaultRestartPolicy()
	}

	c := &Controller{
		logger:     logger,
		matcher:    wakeword.NewMatcher(cfg.Phrases),
		onDetected: cfg.OnDetected,
		policy:     cfg.Policy,
		clock:      cfg.Clock,
		state:      fsm.StateIdle,
	}

	if newEngine == nil {
		logger.Warn("wake listening unavailable", "reason", "no engine factory")
		return c
	}

	eng, err := newEngine(engine.Config{
		Continuous:     true,
		InterimResults: true,
		Language:       cfg.Language,
	}, engine.Handlers{
		OnStart:  c.handleStart,
		OnResult: c.handleResult,
		OnError:  c.handleError,
		OnEnd:    c.handleEnd,
	})
	if err != nil {
		if errors.Is(err, engine.ErrUnsupported) {
			logger.Warn("wake listening unavailable", "error", err.Error())
		} else {
			logger.Error("engine construction failed", "error", err.Error())
		}
		return c
	}

	c.eng = eng
	c.supported = true
	return c
}

// Enable requests a continuous recognition session. It is a no-op when the
// engine is unsupported, after a fatal error, and while a session is
// already starting or listening.
func (c *Controller) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.supported || c.closed || c.fatalKind != "" {
		return
	}
	if c.state != fsm.StateIdle {
		return
	}

	c.enabled = true
	c.userStopped = false
	c.startLocked()
}

// Disable stops listening. State settles to idle synchronously even though
// the engine's own stop is asynchronous, and every armed restart is
// cancelled so nothing fires afterward.
func (c *Controller) Disable() {
	c.mu.Lock()
	c.userStopped = true
	c.enabled = false
	c.cancelRestartsLocked()
	c.state, _ = fsm.Transition(c.state, fsm.EventDisable)
	eng := c.eng
	c.mu.Unlock()

	if eng != nil {
		eng.Stop()
	}
	c.logger.Info("wake listening disabled")
}

// Close tears the controller down: timers cancelled, engine aborted. The
// controller is unusable afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.userStopped = true
	c.enabled = false
	c.cancelRestartsLocked()
	c.state, _ = fsm.Transition(c.state, fsm.EventDisable)
	eng := c.eng
	c.mu.Unlock()

	if eng != nil {
		eng.Abort()
	}
}

// IsListening reports whether a recognition session is live.
func (c *Controller) IsListening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == fsm.StateListening
}

// IsSupported reports whether the recognition primitive exists on this host.
func (c *Controller) IsSupported() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.supported
}

// Status returns a consistent snapshot of the externally visible state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Listening:  c.state == fsm.StateListening,
		Supported:  c.supported,
		FatalError: c.fatalKind,
	}
}

// Handle serves daemon control commands.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status":
		status := c.Status()
		c.mu.Lock()
		state := string(c.state)
		c.mu.Unlock()
		resp := ipc.Response{OK: true, State: state, Listening: status.Listening}
		if status.FatalError != "" {
			resp.Message = fmt.Sprintf("listening disabled after fatal error: %s", status.FatalError)
		}
		return resp
	case "enable":
		status := c.Status()
		if !status.Supported {
			return ipc.Response{OK: false, State: string(fsm.StateIdle), Error: "recognition engine unavailable"}
		}
		if status.FatalError != "" {
			return ipc.Response{OK: false, State: string(fsm.StateIdle), Error: fmt.Sprintf("listening disabled after fatal error: %s", status.FatalError)}
		}
		c.Enable()
		c.mu.Lock()
		state := string(c.state)
		c.mu.Unlock()
		return ipc.Response{OK: true, State: state, Message: "listening enabled"}
	case "disable":
		c.Disable()
		return ipc.Response{OK: true, State: string(fsm.StateIdle), Message: "listening disabled"}
	default:
		c.mu.Lock()
		state := string(c.state)
		c.mu.Unlock()
		return ipc.Response{OK: false, State: state, Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

// startLocked requests an engine start from idle. Callers hold c.mu; the
// engine contract guarantees handlers never run synchronously inside Start.
func (c *Controller) startLocked() {
	next, err := fsm.Transition(c.state, fsm.EventEnable)
	if err != nil {
		return
	}
	c.state = next

	err = c.eng.Start()
	switch {
	case err == nil:
		c.logger.Info("recognition start requested", "phrases", len(c.matcher.Phrases()))
	case errors.Is(err, engine.ErrAlreadyStarted):
		// Start race: another session is already live. Treat as success.
		c.state = fsm.StateListening
		c.logger.Warn("recognition already started; assuming listening")
	default:
		c.state = fsm.StateIdle
		c.logger.Error("recognition start failed", "error", err.Error())
	}
}

// handleStart marks the session live once the engine confirms startup.
func (c *Controller) handleStart() {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, fsm.EventStarted)
	if err != nil {
		// A start confirmation can trail a disable; nothing to do.
		c.logger.Debug("late engine start ignored", "state", string(c.state))
		return
	}
	c.state = next
	c.logger.Info("wake listening active")
}

// handleResult checks every fragment independently; a match fires the
// detection callback without ending the session, so one event carrying
// several matching fragments fires it several times.
func (c *Controller) handleResult(ev engine.ResultEvent) {
	c.mu.Lock()
	if c.closed || c.userStopped || !c.enabled {
		c.mu.Unlock()
		return
	}
	matched := make([]string, 0, 1)
	for _, fragment := range ev.Fragments {
		if phrase, ok := c.matcher.MatchPhrase(fragment.Text); ok {
			matched = append(matched, phrase)
		}
	}
	onDetected := c.onDetected
	c.mu.Unlock()

	for _, phrase := range matched {
		c.logger.Info("wake phrase detected", "phrase", phrase, "result_index", ev.ResultIndex)
		if onDetected != nil {
			onDetected(phrase)
		}
	}
}

// handleError classifies engine errors. Fatal kinds latch the controller
// off; transient kinds arm a debounced restart that only matters if the
// engine also ends; anything else is logged and left to handleEnd.
func (c *Controller) handleError(ev engine.ErrorEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch engine.Classify(ev.Kind) {
	case engine.ClassFatal:
		c.enabled = false
		c.fatalKind = ev.Kind
		c.cancelRestartsLocked()
		c.state, _ = fsm.Transition(c.state, fsm.EventFatal)
		c.logger.Error("fatal recognition error; wake listening disabled", "kind", ev.Kind)
	case engine.ClassTransient:
		if c.closed || c.userStopped || !c.enabled {
			return
		}
		c.logger.Warn("transient recognition error", "kind", ev.Kind)
		c.scheduleRestartLocked(TriggerTransientError)
	default:
		c.logger.Warn("recognition error", "kind", ev.Kind)
	}
}

// handleEnd settles to idle and, unless the stop was user-initiated, arms a
// debounced restart.
func (c *Controller) handleEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state, _ = fsm.Transition(c.state, fsm.EventEnd)
	if c.closed || c.userStopped || !c.enabled {
		c.logger.Debug("recognition session ended", "restart", false)
		return
	}

	c.logger.Info("recognition session ended; considering restart")
	c.scheduleRestartLocked(TriggerSessionEnd)
}

// scheduleRestartLocked arms a delayed session reattempt when the debounce
// policy permits one. The shared timestamp is updated at scheduling time so
// overlapping error/end events for one termination cannot both pass.
func (c *Controller) scheduleRestartLocked(trigger Trigger) {
	now := c.clock.Now()
	delay, ok := c.policy.Decide(trigger, now, c.lastRestartAt)
	if !ok {
		c.logger.Debug("restart suppressed by debounce", "trigger", trigger.String())
		return
	}

	c.lastRestartAt = now
	restart := &pendingRestart{}
	restart.timer = c.clock.AfterFunc(delay, func() { c.restartDue(restart) })
	c.pending = append(c.pending, restart)
	c.logger.Info("restart scheduled", "trigger", trigger.String(), "delay", delay.String())
}

// restartDue runs when a scheduled restart elapses. The session may have
// been disabled, fatally stopped, or restarted by another schedule in the
// meantime, so everything is re-checked under the lock.
func (c *Controller) restartDue(restart *pendingRestart) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removePendingLocked(restart)
	if c.closed || !c.enabled || c.userStopped || c.fatalKind != "" {
		return
	}
	if c.state != fsm.StateIdle {
		return
	}
	c.startLocked()
}

func (c *Controller) cancelRestartsLocked() {
	for _, restart := range c.pending {
		restart.timer.Stop()
	}
	c.pending = nil
}

func (c *Controller) removePendingLocked(target *pendingRestart) {
	for i, restart := range c.pending {
		if restart == target {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}
