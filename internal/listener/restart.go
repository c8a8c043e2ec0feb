package listener

import "time"

// Trigger identifies why a restart is being considered.
type Trigger int

const (
	// TriggerTransientError follows a recoverable engine error.
	TriggerTransientError Trigger = iota
	// TriggerSessionEnd follows a normal engine end while still enabled.
	TriggerSessionEnd
)

func (t Trigger) String() string {
	switch t {
	case TriggerTransientError:
		return "transient-error"
	case TriggerSessionEnd:
		return "session-end"
	default:
		return "unknown"
	}
}

// RestartPolicy decides whether a new session attempt may be scheduled and
// how long to wait before it runs. Each trigger kind carries a minimum gap
// since the last scheduling (measured against a timestamp shared across
// both kinds, so an error and an end caused by the same termination cannot
// both pass) and a delay before the actual reattempt.
type RestartPolicy struct {
	ErrorMinGap time.Duration
	ErrorDelay  time.Duration
	EndMinGap   time.Duration
	EndDelay    time.Duration
}

// DefaultRestartPolicy returns the production debounce windows.
func DefaultRestartPolicy() RestartPolicy {
	return RestartPolicy{
		ErrorMinGap: 3000 * time.Millisecond,
		ErrorDelay:  2000 * time.Millisecond,
		EndMinGap:   1000 * time.Millisecond,
		EndDelay:    1000 * time.Millisecond,
	}
}

// Decide returns the reattempt delay and whether scheduling is permitted.
// lastScheduled is the shared last-scheduling timestamp; its zero value
// means no restart has ever been scheduled.
func (p RestartPolicy) Decide(trigger Trigger, now time.Time, lastScheduled time.Time) (time.Duration, bool) {
	minGap, delay := p.EndMinGap, p.EndDelay
	if trigger == TriggerTransientError {
		minGap, delay = p.ErrorMinGap, p.ErrorDelay
	}

	if !lastScheduled.IsZero() && now.Sub(lastScheduled) < minGap {
		return 0, false
	}
	return delay, true
}
