package production

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/kwhitfield/quorum/pkg/models"
)

// feedbackContextKey carries the previous iteration's validation
// issues into the next generation pass.
const feedbackContextKey = "validation_feedback"

// ReportValidator is the validation side of the loop, satisfied by
// *Validator.
type ReportValidator interface {
	Validate(ctx context.Context, art models.Artifact, cfg models.TierConfig, language string) *models.ValidationReport
}

// Loop is the iterative readiness loop: generate, validate, test,
// decide, at most MaxIterations times, then harden. It is the only
// component allowed to hold cross-iteration state.
type Loop struct {
	ensemble  EnsembleRunner
	validator ReportValidator
	tests     TestService
	recorder  Recorder
	configs   map[models.ProductionTier]models.TierConfig
	events    *emitter

	cfgMu       sync.RWMutex
	ensembleCfg models.EnsembleConfig
}

// LoopOption customizes a Loop.
type LoopOption func(*Loop)

// WithTestService enables test generation and execution for tiers
// that require it.
func WithTestService(svc TestService) LoopOption {
	return func(l *Loop) { l.tests = svc }
}

// WithRecorder enables best-effort outcome recording.
func WithRecorder(rec Recorder) LoopOption {
	return func(l *Loop) { l.recorder = rec }
}

// WithTierConfigs replaces the default tier table.
func WithTierConfigs(configs map[models.ProductionTier]models.TierConfig) LoopOption {
	return func(l *Loop) { l.configs = configs }
}

// WithEnsembleConfig sets the ensemble configuration used on every
// generation pass.
func WithEnsembleConfig(cfg models.EnsembleConfig) LoopOption {
	return func(l *Loop) { l.ensembleCfg = cfg }
}

// NewLoop creates a readiness loop around an ensemble runner and a
// validator.
func NewLoop(ensemble EnsembleRunner, validator ReportValidator, opts ...LoopOption) *Loop {
	l := &Loop{
		ensemble:    ensemble,
		validator:   validator,
		configs:     models.DefaultTierConfigs(),
		ensembleCfg: models.DefaultEnsembleConfig(),
		events:      newEmitter(64),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetEnsembleConfig swaps the ensemble configuration used by later
// generation passes. Safe to call while a run is in flight; the next
// iteration picks it up. This is the hook the config hot-reload
// watcher uses.
func (l *Loop) SetEnsembleConfig(cfg models.EnsembleConfig) {
	l.cfgMu.Lock()
	l.ensembleCfg = cfg.Normalize()
	l.cfgMu.Unlock()
}

func (l *Loop) ensembleConfig() models.EnsembleConfig {
	l.cfgMu.RLock()
	defer l.cfgMu.RUnlock()
	return l.ensembleCfg
}

// Events returns the loop's event stream.
func (l *Loop) Events() <-chan Event {
	return l.events.ch
}

// DroppedEventCount returns how many events were dropped by slow
// consumers.
func (l *Loop) DroppedEventCount() uint64 {
	return l.events.dropped.Load()
}

// GenerateProductionCode runs the full readiness loop for the task at
// the given tier. It always returns a ProductionResult and never an
// error: total failure is encoded as a failed result with zero
// confidence.
func (l *Loop) GenerateProductionCode(ctx context.Context, task models.Task, tier models.ProductionTier, override *models.TierConfig) *models.ProductionResult {
	cfg := TierConfigFor(l.configs, tier)
	if override != nil {
		cfg = mergeTierConfig(cfg, *override)
	}
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = 1
	}
	if cfg.MaxIterations > maxLoopIterations {
		cfg.MaxIterations = maxLoopIterations
	}

	result := &models.ProductionResult{TaskID: task.ID, Tier: tier}
	var best *models.IterationRecord
	var lastErr error
	converged := false
	current := task

	for i := 1; i <= cfg.MaxIterations; i++ {
		result.Iterations = i
		l.events.emit(Event{Type: EventIterationStarted, TaskID: task.ID, Iteration: i})
		log.Printf("[readiness] task %s: iteration %d/%d (tier %s)", task.ID, i, cfg.MaxIterations, tier)

		synth, err := l.ensemble.RunEnsemble(ctx, current, l.ensembleConfig())
		if err != nil {
			lastErr = err
			log.Printf("[readiness] task %s: iteration %d generation failed: %v", task.ID, i, err)
			continue
		}

		report := l.validator.Validate(ctx, synth.Artifact(), cfg, task.Language)
		tests := l.runTests(ctx, synth, cfg, task.Language)

		score := readinessScore(report, tests)
		rec := &models.IterationRecord{
			Index:          i,
			Result:         synth,
			Report:         report,
			Tests:          tests,
			ReadinessScore: score,
			MeetsStandards: meetsStandards(score, cfg, report, tests),
		}
		l.events.emit(Event{
			Type: EventIterationValidated, TaskID: task.ID, Iteration: i, Score: score,
			Message: fmt.Sprintf("status=%s", report.Status),
		})

		if best == nil || score > best.ReadinessScore {
			best = rec
		}
		if rec.MeetsStandards {
			converged = true
			l.events.emit(Event{Type: EventConverged, TaskID: task.ID, Iteration: i, Score: score})
			break
		}
		current = task.WithContext(feedbackContextKey, report.IssueSummary())
	}

	if best == nil {
		result.Status = models.ProductionStatusFailed
		result.Confidence = 0
		result.FailureReason = "every generation attempt failed"
		if lastErr != nil {
			result.FailureReason = fmt.Sprintf("every generation attempt failed, last error: %v", lastErr)
		}
		l.events.emit(Event{Type: EventFinished, TaskID: task.ID, Message: result.FailureReason})
		return result
	}
	if !converged {
		l.events.emit(Event{Type: EventExhausted, TaskID: task.ID, Iteration: result.Iterations, Score: best.ReadinessScore})
	}

	hardening := runHardening(tier, best)
	for _, h := range hardening {
		l.events.emit(Event{Type: EventHardening, TaskID: task.ID, Score: h.Score, Message: h.Name})
	}
	final := blendHardening(best.ReadinessScore, hardening)

	result.Best = best
	result.Hardening = hardening
	result.Confidence = final
	result.ProductionReady = converged && final >= models.ReadinessThreshold(tier)
	if result.ProductionReady {
		result.Status = models.ProductionStatusReady
	} else {
		result.Status = models.ProductionStatusNotReady
	}

	l.record(task, tier, result)
	l.events.emit(Event{
		Type: EventFinished, TaskID: task.ID, Score: final,
		Message: string(result.Status),
	})
	return result
}

// runTests generates and executes the test suite when the tier asks
// for it. A failing test service degrades to no summary, never to a
// loop failure.
func (l *Loop) runTests(ctx context.Context, synth *models.SynthesizedResult, cfg models.TierConfig, language string) *models.TestSummary {
	if l.tests == nil || !cfg.Enables(models.CheckTests) {
		return nil
	}

	suite := synth.Tests
	if suite == "" {
		generated, err := l.tests.GenerateTests(ctx, synth.Code, language, cfg.TargetTestCoverage)
		if err != nil {
			log.Printf("[readiness] test generation failed: %v", err)
			return nil
		}
		suite = generated
	}
	if suite == "" {
		return nil
	}

	summary, err := l.tests.RunTests(ctx, synth.Code, suite, language)
	if err != nil {
		log.Printf("[readiness] test execution failed: %v", err)
		return nil
	}
	return &summary
}

// record hands the outcome to the recorder. Recording is best-effort
// and never affects the returned result.
func (l *Loop) record(task models.Task, tier models.ProductionTier, result *models.ProductionResult) {
	if l.recorder == nil || result.Best == nil {
		return
	}
	l.recorder.Record(PatternRecord{
		TaskID:     task.ID,
		Complexity: task.Complexity,
		Tier:       tier,
		Strategy:   result.Best.Result.Method,
		Readiness:  result.Confidence,
		Ready:      result.ProductionReady,
		Iterations: result.Iterations,
	})
}

// readinessScore blends the validation, quality, test, and security
// signals into one 0-1 score. With no test run, the test term falls
// back to the validator's confidence so untested tiers are not
// penalized for a check they never enable.
func readinessScore(report *models.ValidationReport, tests *models.TestSummary) float64 {
	testQuality := report.ConfidenceScore
	if tests != nil {
		testQuality = 0.7*tests.PassRate() + 0.3*tests.Coverage
	}
	score := 0.3*report.ConfidenceScore +
		0.3*(report.Metrics.OverallScore/100) +
		0.25*testQuality +
		0.15*(report.Metrics.SecurityScore/100)
	return models.Clamp01(score)
}

// meetsStandards decides whether one iteration clears the tier's bar.
// Production and MissionCritical additionally require zero Critical
// and Blocker findings regardless of score.
func meetsStandards(score float64, cfg models.TierConfig, report *models.ValidationReport, tests *models.TestSummary) bool {
	if score < cfg.TargetConfidence {
		return false
	}
	if !report.Status.Acceptable() {
		return false
	}
	if tests != nil && tests.Failed > 0 {
		return false
	}
	if cfg.Tier.AtLeast(models.TierProduction) {
		if report.CountSeverity(models.SeverityCritical) > 0 || report.CountSeverity(models.SeverityBlocker) > 0 {
			return false
		}
	}
	return true
}
