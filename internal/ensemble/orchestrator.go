package ensemble

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/kwhitfield/quorum/pkg/models"
)

// ErrEmptyEnsemble is returned when every producer in the roster
// failed and zero contributions survived. It is fatal to the ensemble
// run only; callers above the run recover from it.
var ErrEmptyEnsemble = fmt.Errorf("ensemble produced zero contributions")

// Orchestrator wires composer, engine, cross-validator, scorer,
// execution validator, and synthesizer into one ensemble run. All
// collaborators are injected at construction; the orchestrator holds
// no ambient globals.
type Orchestrator struct {
	composer *Composer
	engine   *Engine
	cross    *CrossValidator
	synth    *Synthesizer
	scorer   *ConfidenceScorer
	execval  *ExecutionValidator
	events   *emitter
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithExecutionValidator enables execution-backed confidence
// adjustment of contributions before synthesis.
func WithExecutionValidator(v *ExecutionValidator) Option {
	return func(o *Orchestrator) { o.execval = v }
}

// NewOrchestrator creates an Orchestrator around a producer backend.
func NewOrchestrator(gen Generator, engine *Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		composer: NewComposer(),
		engine:   engine,
		cross:    NewCrossValidator(),
		synth:    NewSynthesizer(),
		scorer:   NewConfidenceScorer(),
		events:   newEmitter(64),
	}
	if o.engine == nil {
		o.engine = NewEngine(gen, 0)
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Events returns the orchestrator's event stream.
func (o *Orchestrator) Events() <-chan Event {
	return o.events.ch
}

// DroppedEventCount returns how many events were dropped by slow
// consumers.
func (o *Orchestrator) DroppedEventCount() uint64 {
	return o.events.dropped.Load()
}

// RunEnsemble performs one full ensemble run: roster selection, fan
// out, cross-validation, and synthesis. It returns ErrEmptyEnsemble
// when no producer survived; all per-branch failures below that are
// recovered and logged inside the engine.
func (o *Orchestrator) RunEnsemble(ctx context.Context, task models.Task, cfg models.EnsembleConfig) (*models.SynthesizedResult, error) {
	cfg = cfg.Normalize()
	runID := uuid.New().String()[:8]

	roster := o.composer.Select(task, cfg)
	o.events.emit(Event{
		Type: EventRosterSelected, RunID: runID, TaskID: task.ID,
		Message: fmt.Sprintf("%d producers selected", len(roster)),
	})
	log.Printf("[ensemble] run %s: %d producers for task %s", runID, len(roster), task.ID)

	contributions := o.engine.Run(ctx, roster, task, cfg.Parallel)
	o.events.emit(Event{
		Type: EventContributionsReady, RunID: runID, TaskID: task.ID,
		Message: fmt.Sprintf("%d/%d contributions survived", len(contributions), len(roster)),
	})
	if len(contributions) == 0 {
		o.events.emit(Event{Type: EventRunFailed, RunID: runID, TaskID: task.ID, Message: "empty ensemble"})
		return nil, fmt.Errorf("run %s: %w", runID, ErrEmptyEnsemble)
	}

	o.refineConfidence(ctx, contributions)
	contributions = o.cross.Revalidate(contributions, cfg)

	result, err := o.synth.Synthesize(contributions, task, cfg)
	if err != nil {
		o.events.emit(Event{Type: EventRunFailed, RunID: runID, TaskID: task.ID, Message: err.Error()})
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	o.events.emit(Event{
		Type: EventSynthesized, RunID: runID, TaskID: task.ID,
		Message: fmt.Sprintf("method=%s confidence=%.2f", result.Method, result.Confidence),
	})
	return result, nil
}

// refineConfidence blends each contribution's self-reported confidence
// with the static scorer, then applies the bounded execution boost.
// Only the implementer's code is executed: it is the candidate base
// artifact and sandbox runs are the expensive step.
func (o *Orchestrator) refineConfidence(ctx context.Context, contributions []models.Contribution) {
	for i := range contributions {
		c := &contributions[i]
		static := o.scorer.Score(c.Artifact, 0, 0)
		c.Confidence = models.Clamp01(0.6*c.Confidence + 0.4*static)

		if o.execval != nil && c.Role == models.RoleImplementer && c.Artifact.Code != "" {
			outcome := o.execval.Validate(ctx, c.Artifact.Code, c.Artifact.Tests)
			c.Confidence = models.Clamp01(c.Confidence + outcome.ConfidenceBoost)
		}
	}
}
