package ensemble

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kwhitfield/quorum/pkg/models"
)

// Engine fans the roster out to the producer backend. In parallel mode
// every slot runs concurrently and a failed slot is dropped, never
// aborting the batch. In sequential mode slots run in roster order and
// each prior artifact is threaded into the next slot's context.
type Engine struct {
	gen     Generator
	timeout time.Duration
}

// NewEngine creates an Engine. A zero timeout defaults to two minutes
// per producer call.
func NewEngine(gen Generator, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Engine{gen: gen, timeout: timeout}
}

// Run executes the roster and returns the surviving contributions in
// roster order. An empty roster or total producer failure yields an
// empty slice, not an error: the ensemble orchestrator decides whether
// that is fatal.
func (e *Engine) Run(ctx context.Context, roster []RosterEntry, task models.Task, parallel bool) []models.Contribution {
	if parallel {
		return e.runParallel(ctx, roster, task)
	}
	return e.runSequential(ctx, roster, task)
}

// runParallel launches one goroutine per slot and joins at a barrier.
// Slots write only their own index, so no shared state is mutated by
// more than one branch.
func (e *Engine) runParallel(ctx context.Context, roster []RosterEntry, task models.Task) []models.Contribution {
	slots := make([]*models.Contribution, len(roster))
	var wg sync.WaitGroup

	for i, entry := range roster {
		wg.Add(1)
		go func(i int, entry RosterEntry) {
			defer wg.Done()
			c, err := e.callOne(ctx, entry, task)
			if err != nil {
				log.Printf("[engine] %s/%s producer failed: %v", entry.Role, entry.Tier, err)
				return
			}
			slots[i] = c
		}(i, entry)
	}
	wg.Wait()

	contributions := make([]models.Contribution, 0, len(roster))
	for _, c := range slots {
		if c != nil {
			contributions = append(contributions, *c)
		}
	}
	return contributions
}

// runSequential runs slots one at a time, injecting every prior
// artifact into the next slot's context.
func (e *Engine) runSequential(ctx context.Context, roster []RosterEntry, task models.Task) []models.Contribution {
	contributions := make([]models.Contribution, 0, len(roster))
	current := task

	for _, entry := range roster {
		c, err := e.callOne(ctx, entry, current)
		if err != nil {
			log.Printf("[engine] %s/%s producer failed: %v", entry.Role, entry.Tier, err)
			continue
		}
		contributions = append(contributions, *c)
		current = current.WithContext(
			fmt.Sprintf("prior_%s", entry.Role),
			priorSummary(c.Artifact),
		)
	}
	return contributions
}

// callOne performs a single bounded producer call.
func (e *Engine) callOne(ctx context.Context, entry RosterEntry, task models.Task) (*models.Contribution, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	artifact, confidence, err := e.gen.Generate(callCtx, entry.Role, entry.Tier, task)
	if err != nil {
		return nil, err
	}

	confidence = models.Clamp01(confidence)
	return &models.Contribution{
		ProducerID:      fmt.Sprintf("%s-%s", entry.Role, uuid.New().String()[:8]),
		Role:            entry.Role,
		Tier:            entry.Tier,
		Artifact:        artifact,
		Confidence:      confidence,
		ValidationScore: confidence,
		ExecutionTime:   time.Since(start),
	}, nil
}

// priorSummary renders an artifact for context threading. Code is
// carried whole; the other fields are noted by presence only to keep
// prompts bounded.
func priorSummary(a models.Artifact) string {
	out := a.Code
	if a.Tests != "" {
		out += "\n\n# tests provided"
	}
	if a.SecurityNotes != "" {
		out += "\n# security notes provided"
	}
	return out
}
