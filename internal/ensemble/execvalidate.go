package ensemble

import (
	"context"
	"log"
	"time"
)

// maxBoost bounds the confidence adjustment from execution validation.
const maxBoost = 0.2

// ExecutionOutcome is the result of validating one artifact through
// static analysis and sandboxed execution.
type ExecutionOutcome struct {
	// Executable is true when the sandbox ran the code successfully.
	Executable bool
	// Issues lists analyzer findings and execution errors.
	Issues []string
	// ConfidenceBoost is the bounded adjustment in [-0.2, +0.2].
	ConfidenceBoost float64
}

// ExecutionValidator converts analyzer and sandbox results into a
// bounded confidence adjustment. Both collaborators are optional and
// time-bounded; a timed-out or erroring call counts as a failed check.
type ExecutionValidator struct {
	analyzers Analyzers
	sandbox   Sandbox
	language  string
	timeout   time.Duration
}

// NewExecutionValidator creates an ExecutionValidator. A zero timeout
// defaults to 30s per collaborator call.
func NewExecutionValidator(analyzers Analyzers, sandbox Sandbox, language string, timeout time.Duration) *ExecutionValidator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ExecutionValidator{
		analyzers: analyzers,
		sandbox:   sandbox,
		language:  language,
		timeout:   timeout,
	}
}

// Validate analyzes and executes the artifact and derives the
// confidence boost. It never blocks past its timeouts and never
// returns an error.
func (v *ExecutionValidator) Validate(ctx context.Context, code, tests string) ExecutionOutcome {
	outcome := ExecutionOutcome{}

	passRatio := v.analyze(ctx, code, &outcome)
	v.execute(ctx, code, tests, &outcome)

	// Boost combines analyzer pass ratio, executability, and the issue
	// count. Each term is small so the clamp rarely saturates.
	boost := (passRatio - 0.5) * 0.2
	if outcome.Executable {
		boost += 0.1
	} else {
		boost -= 0.1
	}
	boost -= 0.02 * float64(len(outcome.Issues))

	if boost > maxBoost {
		boost = maxBoost
	}
	if boost < -maxBoost {
		boost = -maxBoost
	}
	outcome.ConfidenceBoost = boost
	return outcome
}

// analyze runs the static analyzers and returns the pass ratio.
// With no analyzers configured the ratio is neutral (0.5).
func (v *ExecutionValidator) analyze(ctx context.Context, code string, outcome *ExecutionOutcome) float64 {
	if v.analyzers == nil {
		return 0.5
	}

	actx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	reports := v.analyzers.Analyze(actx, code)
	if len(reports) == 0 {
		return 0.5
	}

	passed := 0
	for _, rep := range reports {
		if rep.Passed {
			passed++
		} else {
			outcome.Issues = append(outcome.Issues, rep.Findings...)
		}
	}
	return float64(passed) / float64(len(reports))
}

// execute runs the sandbox check and records executability.
func (v *ExecutionValidator) execute(ctx context.Context, code, tests string, outcome *ExecutionOutcome) {
	if v.sandbox == nil {
		return
	}

	sctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	res, err := v.sandbox.Execute(sctx, code, v.language, tests)
	if err != nil {
		log.Printf("[execvalidate] sandbox unavailable: %v", err)
		outcome.Issues = append(outcome.Issues, "sandbox unavailable: "+err.Error())
		return
	}
	outcome.Executable = res.Success
	if !res.Success && res.Error != "" {
		outcome.Issues = append(outcome.Issues, res.Error)
	}
}
