// Package engine defines the contract between the wake-word session
// controller and a continuous speech-recognition primitive.
package engine

import "errors"

// ErrAlreadyStarted is returned by Start when a session is already active.
// Callers treat it as a successful idempotent no-op.
var ErrAlreadyStarted = errors.New("recognition session already started")

// ErrUnsupported is returned by a Factory when the recognition primitive is
// absent on this host (for example no credentials or no audio server).
var ErrUnsupported = errors.New("recognition engine unavailable on this host")

// Config selects recognition behavior for one engine instance.
type Config struct {
	Continuous     bool
	InterimResults bool
	Language       string
}

// Fragment is one alternative transcript for one recognized span.
type Fragment struct {
	Text  string
	Final bool
	Index int
}

// ResultEvent carries all fragments delivered by one recognition result,
// starting at ResultIndex. A single event may mix interim and final
// fragments.
type ResultEvent struct {
	ResultIndex int
	Fragments   []Fragment
}

// ErrorEvent carries the engine's error-kind string (see kind constants).
type ErrorEvent struct {
	Kind string
}

// Handlers receives engine events. All fields are optional. Engines must
// invoke handlers from their own goroutines, never from inside a
// Start/Stop/Abort call, so callers may hold locks across commands.
type Handlers struct {
	OnStart  func()
	OnResult func(ResultEvent)
	OnError  func(ErrorEvent)
	OnEnd    func()
}

// Engine is one continuous recognition session driver. Start is
// non-blocking: it returns only immediate refusals (ErrAlreadyStarted, a
// dead engine); failures during session startup arrive through OnError and
// OnEnd. Stop requests a graceful end (a final OnEnd still fires); Abort
// tears the session down immediately.
type Engine interface {
	Start() error
	Stop()
	Abort()
}

// Factory builds an engine bound to a handler set, or reports
// ErrUnsupported when the host cannot provide the primitive.
type Factory func(cfg Config, handlers Handlers) (Engine, error)
