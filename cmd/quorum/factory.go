package main

import (
	"context"
	"fmt"

	"github.com/kwhitfield/quorum/internal/analyzer"
	"github.com/kwhitfield/quorum/internal/api"
	"github.com/kwhitfield/quorum/internal/config"
	"github.com/kwhitfield/quorum/internal/ensemble"
	"github.com/kwhitfield/quorum/internal/exec"
	"github.com/kwhitfield/quorum/internal/patterns"
	"github.com/kwhitfield/quorum/internal/production"
	"github.com/kwhitfield/quorum/internal/sandbox"
)

// app bundles the wired collaborators behind the CLI commands.
type app struct {
	cfg          *config.Config
	client       *api.Client
	orchestrator *ensemble.Orchestrator
	loop         *production.Loop
	store        *patterns.Store
	recorder     *patterns.AsyncRecorder
}

// buildApp constructs the full pipeline from config: API client,
// ensemble orchestrator, validator, readiness loop, and outcome store.
func buildApp(language string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if language == "" {
		language = cfg.Defaults.Language
	}

	client, err := api.NewClient(api.ClientConfig{
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}

	cmdRunner := exec.NewRunner()
	sandboxSvc := sandbox.NewService(cmdRunner, cfg.Timeouts.Sandbox)
	analyzerSvc := analyzer.NewService(language, cmdRunner, cfg.Timeouts.Analyzer)

	gen := api.NewGenerator(client)
	engine := ensemble.NewEngine(gen, cfg.Timeouts.Generation)
	execval := ensemble.NewExecutionValidator(
		analyzerAdapter{analyzerSvc},
		ensembleSandbox{sandboxSvc},
		language,
		cfg.Timeouts.Sandbox,
	)
	orchestrator := ensemble.NewOrchestrator(gen, engine, ensemble.WithExecutionValidator(execval))

	tierConfigs, err := production.LoadTierConfigs(cfg.Defaults.TierFile)
	if err != nil {
		return nil, fmt.Errorf("load tier configs: %w", err)
	}

	validator := production.NewValidator(productionSandbox{sandboxSvc}, cfg.Timeouts.Sandbox)
	testSvc := production.NewLLMTestService(api.NewRunner(client), productionSandbox{sandboxSvc})

	opts := []production.LoopOption{
		production.WithTierConfigs(tierConfigs),
		production.WithEnsembleConfig(cfg.Ensemble),
		production.WithTestService(testSvc),
	}

	a := &app{cfg: cfg, client: client, orchestrator: orchestrator}

	if cfg.Patterns.Enabled {
		dbPath := cfg.Patterns.DBPath
		if dbPath == "" {
			dbPath = patterns.DefaultDBPath()
		}
		store, err := patterns.NewStore(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open pattern store: %w", err)
		}
		a.store = store
		a.recorder = patterns.NewAsyncRecorder(store, 0)
		opts = append(opts, production.WithRecorder(recorderAdapter{a.recorder}))
	}

	a.loop = production.NewLoop(orchestrator, validator, opts...)
	return a, nil
}

// Close flushes the recorder and closes the store.
func (a *app) Close() {
	if a.recorder != nil {
		a.recorder.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}

// analyzerAdapter bridges the analyzer service to the ensemble contract.
type analyzerAdapter struct {
	svc *analyzer.Service
}

func (a analyzerAdapter) Analyze(ctx context.Context, code string) []ensemble.AnalyzerReport {
	reports := a.svc.Analyze(ctx, code)
	out := make([]ensemble.AnalyzerReport, len(reports))
	for i, r := range reports {
		out[i] = ensemble.AnalyzerReport{Name: r.Name, Passed: r.Passed, Findings: r.Findings}
	}
	return out
}

// ensembleSandbox bridges the sandbox service to the ensemble contract.
type ensembleSandbox struct {
	svc *sandbox.Service
}

func (s ensembleSandbox) Execute(ctx context.Context, code, language, tests string) (ensemble.ExecutionResult, error) {
	res, err := s.svc.Execute(ctx, code, language, tests)
	if err != nil {
		return ensemble.ExecutionResult{}, err
	}
	return ensemble.ExecutionResult{
		Success:  res.Success,
		Output:   res.Output,
		Error:    res.Error,
		Duration: res.Duration,
	}, nil
}

// productionSandbox bridges the sandbox service to the production contract.
type productionSandbox struct {
	svc *sandbox.Service
}

func (s productionSandbox) Execute(ctx context.Context, code, language, tests string) (production.ExecutionResult, error) {
	res, err := s.svc.Execute(ctx, code, language, tests)
	if err != nil {
		return production.ExecutionResult{}, err
	}
	return production.ExecutionResult{
		Success: res.Success,
		Output:  res.Output,
		Error:   res.Error,
	}, nil
}

// recorderAdapter converts loop records into store outcomes.
type recorderAdapter struct {
	rec *patterns.AsyncRecorder
}

func (r recorderAdapter) Record(rec production.PatternRecord) {
	r.rec.Record(patterns.Outcome{
		TaskID:     rec.TaskID,
		Complexity: rec.Complexity,
		Tier:       rec.Tier,
		Strategy:   rec.Strategy,
		Readiness:  rec.Readiness,
		Ready:      rec.Ready,
		Iterations: rec.Iterations,
	})
}
