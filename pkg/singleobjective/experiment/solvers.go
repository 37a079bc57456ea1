package experiment

import (
	"context"
	"errors"

	"k8s.io/klog/v2"

	"github.com/mihai-snyk/emas/pkg/singleobjective/algorithms/emas"
	"github.com/mihai-snyk/emas/pkg/singleobjective/algorithms/ga"
	"github.com/mihai-snyk/emas/pkg/singleobjective/framework"
)

// Outcome is the result of one solver run.
type Outcome struct {
	// BestFitness may include progress made after the budget ran out in the
	// solver's last step. Run reads budget-bound results from Trace.
	BestFitness float64
	BestX       []float64
	Evaluations int
	Trace       framework.Trace
}

// Solver runs one independent optimization. Implementations must not share
// mutable state between calls, since trials run concurrently.
type Solver interface {
	framework.Algorithm
	Solve(ctx context.Context, problem framework.Problem, seed uint64, maxEvaluations int) (Outcome, error)
}

// EMASSolver runs the evolutionary multi-agent system.
type EMASSolver struct {
	Config emas.Config
	// Iterations caps the run when no evaluation budget is given.
	Iterations int
	// Metrics is optional.
	Metrics *emas.Metrics
}

var _ Solver = &EMASSolver{}

func (s *EMASSolver) Name() string {
	return emas.Name
}

func (s *EMASSolver) Solve(ctx context.Context, problem framework.Problem, seed uint64, maxEvaluations int) (Outcome, error) {
	cfg := s.Config
	cfg.Seed = seed
	cfg.MaxEvaluations = maxEvaluations

	var opts []emas.Option
	if s.Metrics != nil {
		opts = append(opts, emas.WithObserver(s.Metrics.Observer(problem.Name())))
	}
	e, err := emas.New(problem, cfg, opts...)
	if err != nil {
		return Outcome{}, err
	}

	iterations := s.Iterations
	if maxEvaluations > 0 {
		// Every iteration spends at least one evaluation unless nobody can
		// reproduce, in which case the population cannot improve anyway.
		iterations = maxEvaluations
	}

	res, err := e.Run(ctx, iterations)
	if errors.Is(err, emas.ErrPopulationExtinct) {
		klog.FromContext(ctx).Info("EMAS population died out, keeping partial trace",
			"problem", problem.Name(), "seed", seed, "iterations", res.Iterations)
		err = nil
	}
	if err != nil {
		return Outcome{}, err
	}

	best := res.BestFitness
	if n := len(res.Trace); n > 0 {
		best = res.Trace[n-1].BestFitness
	}
	return Outcome{
		BestFitness: best,
		BestX:       res.BestX,
		Evaluations: res.Evaluations,
		Trace:       res.Trace,
	}, nil
}

// GASolver runs the genetic algorithm baseline.
type GASolver struct {
	Config ga.Config
}

var _ Solver = &GASolver{}

func (s *GASolver) Name() string {
	return ga.Name
}

func (s *GASolver) Solve(ctx context.Context, problem framework.Problem, seed uint64, maxEvaluations int) (Outcome, error) {
	cfg := s.Config
	cfg.Seed = seed
	if maxEvaluations > 0 {
		cfg.MaxEvaluations = maxEvaluations
		cfg.NumGenerations = maxEvaluations/cfg.PopSize + 1
	}

	g, err := ga.New(problem, cfg)
	if err != nil {
		return Outcome{}, err
	}
	res, err := g.Run(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		BestFitness: res.Best.Fitness,
		BestX:       res.Best.Variables,
		Evaluations: res.Evaluations,
		Trace:       res.Trace,
	}, nil
}
