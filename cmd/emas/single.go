package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mihai-snyk/emas/pkg/singleobjective/algorithms/emas"
	"github.com/mihai-snyk/emas/pkg/singleobjective/benchmarks"
	"github.com/mihai-snyk/emas/pkg/singleobjective/util"
)

// single runs EMAS once on the first configured problem and reports the best
// agent found.
func single(ctx context.Context, logger logr.Logger, o *options) error {
	cfg, err := o.emasConfig()
	if err != nil {
		return err
	}
	problem, err := benchmarks.New(o.problems[0], o.dimensions)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := emas.NewMetrics(reg)
	if err != nil {
		return err
	}
	progress := emas.ObserverFunc(func(s emas.IterationStats) {
		logger.V(1).Info("Iteration",
			"iteration", s.Iteration,
			"population", s.PopulationSize,
			"bestFitness", s.BestFitness,
			"averageEnergy", s.AverageEnergy)
	})
	e, err := emas.New(problem, cfg,
		emas.WithObserver(metrics.Observer(problem.Name())),
		emas.WithObserver(progress))
	if err != nil {
		return err
	}

	logger.Info("Starting EMAS",
		"problem", problem.Name(),
		"dimensions", o.dimensions,
		"agents", cfg.InitialPopulation,
		"iterations", o.iterations)
	res, err := e.Run(ctx, o.iterations)
	if errors.Is(err, emas.ErrPopulationExtinct) {
		logger.Info("Population died out, reporting the partial run", "iterations", res.Iterations)
	} else if err != nil {
		return err
	}

	fmt.Printf("%s on %s (%d dimensions)\n", emas.Name, problem.Name(), o.dimensions)
	fmt.Printf("  iterations:   %s\n", humanize.Comma(int64(res.Iterations)))
	fmt.Printf("  evaluations:  %s\n", humanize.Comma(int64(res.Evaluations)))
	fmt.Printf("  best fitness: %s\n", humanize.Commaf(res.BestFitness))
	if optimum, ok := problem.KnownOptimum(); ok {
		fmt.Printf("  known optimum: %s\n", humanize.Commaf(optimum))
	}
	fmt.Printf("  best x (rounded): %v\n", res.RoundedX)

	if len(res.History) > 0 {
		path := outputPath(o, fmt.Sprintf("%s_%s_convergence.html", problem.Name(), emas.Name))
		if err := util.PlotConvergence(res.History, problem.Name(), path); err != nil {
			return err
		}
		logger.Info("Wrote convergence chart", "path", path)
	}
	return writeMetrics(logger, o, reg)
}

func writeMetrics(logger logr.Logger, o *options, g prometheus.Gatherer) error {
	if o.metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(o.metricsFile, g); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	if fi, err := os.Stat(o.metricsFile); err == nil {
		logger.Info("Wrote metrics", "path", o.metricsFile, "size", humanize.Bytes(uint64(fi.Size())))
	}
	return nil
}
