package ensemble

import (
	"sync/atomic"
	"time"
)

// EventType identifies an orchestrator lifecycle event.
type EventType string

const (
	// EventRosterSelected fires after the composer picks the roster.
	EventRosterSelected EventType = "roster_selected"
	// EventContributionsReady fires after the barrier join.
	EventContributionsReady EventType = "contributions_ready"
	// EventSynthesized fires when a merged result exists.
	EventSynthesized EventType = "synthesized"
	// EventRunFailed fires when an ensemble run ends in error.
	EventRunFailed EventType = "run_failed"
)

// Event is one orchestrator lifecycle notification.
type Event struct {
	// Type is the event kind.
	Type EventType
	// RunID identifies the ensemble run.
	RunID string
	// TaskID identifies the task.
	TaskID string
	// Message is a human-readable description.
	Message string
	// Timestamp is when the event was emitted.
	Timestamp time.Time
}

// emitter delivers events on a buffered channel. Sends never block: a
// full channel drops the event and bumps a counter, so a slow consumer
// cannot stall the pipeline.
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
