package production

import (
	"sync/atomic"
	"time"
)

// EventType identifies a readiness-loop lifecycle event.
type EventType string

const (
	// EventIterationStarted fires when a loop pass begins.
	EventIterationStarted EventType = "iteration_started"
	// EventIterationValidated fires when a pass has its report.
	EventIterationValidated EventType = "iteration_validated"
	// EventConverged fires when a pass meets the tier's standards.
	EventConverged EventType = "converged"
	// EventExhausted fires when the loop hits its iteration ceiling.
	EventExhausted EventType = "exhausted"
	// EventHardening fires per hardening check.
	EventHardening EventType = "hardening"
	// EventFinished fires when the ProductionResult is final.
	EventFinished EventType = "finished"
)

// Event is one readiness-loop notification.
type Event struct {
	// Type is the event kind.
	Type EventType
	// TaskID identifies the task.
	TaskID string
	// Iteration is the 1-based pass number, 0 for loop-level events.
	Iteration int
	// Score is the readiness or hardening score the event refers to.
	Score float64
	// Message is a human-readable description.
	Message string
	// Timestamp is when the event was emitted.
	Timestamp time.Time
}

// emitter delivers events on a buffered channel. Sends never block: a
// full channel drops the event and bumps a counter, so a slow consumer
// cannot stall the loop.
type emitter struct {
	ch      chan Event
	dropped atomic.Uint64
}

func newEmitter(buffer int) *emitter {
	if buffer <= 0 {
		buffer = 64
	}
	return &emitter{ch: make(chan Event, buffer)}
}

func (e *emitter) emit(ev Event) {
	ev.Timestamp = time.Now()
	select {
	case e.ch <- ev:
	default:
		e.dropped.Add(1)
	}
}
