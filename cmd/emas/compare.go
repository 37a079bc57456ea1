package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mihai-snyk/emas/pkg/singleobjective/algorithms/emas"
	"github.com/mihai-snyk/emas/pkg/singleobjective/algorithms/ga"
	"github.com/mihai-snyk/emas/pkg/singleobjective/benchmarks"
	"github.com/mihai-snyk/emas/pkg/singleobjective/experiment"
	"github.com/mihai-snyk/emas/pkg/singleobjective/framework"
	"github.com/mihai-snyk/emas/pkg/singleobjective/util"
)

// compare runs EMAS and the genetic algorithm on every configured problem
// under the same evaluation budget and writes results and charts.
func compare(ctx context.Context, logger logr.Logger, o *options) error {
	cfg, err := o.emasConfig()
	if err != nil {
		return err
	}

	problems := make([]framework.Problem, 0, len(o.problems))
	for _, name := range o.problems {
		p, err := benchmarks.New(name, o.dimensions)
		if err != nil {
			return err
		}
		problems = append(problems, p)
	}

	reg := prometheus.NewRegistry()
	metrics, err := emas.NewMetrics(reg)
	if err != nil {
		return err
	}

	spec := experiment.Spec{
		Solvers: []experiment.Solver{
			&experiment.EMASSolver{Config: cfg, Metrics: metrics},
			&experiment.GASolver{Config: ga.DefaultConfig()},
		},
		Problems:       problems,
		Trials:         o.trials,
		MaxEvaluations: o.maxEvaluations,
		Checkpoints:    o.checkpoints,
		Parallelism:    o.parallelism,
		BaseSeed:       o.seed,
	}
	logger.Info("Starting comparison",
		"problems", o.problems,
		"dimensions", o.dimensions,
		"trials", o.trials,
		"maxEvaluations", o.maxEvaluations,
		"parallelism", o.parallelism)

	report, err := experiment.Run(ctx, spec)
	if err != nil {
		return err
	}

	paths, err := report.Save(o.outputDir)
	if err != nil {
		return err
	}
	charts, err := util.PlotComparison(report, o.outputDir)
	if err != nil {
		return err
	}
	paths = append(paths, charts...)
	if o.png {
		for _, p := range problems {
			path := outputPath(o, fmt.Sprintf("%s_%s_comparison.png", report.RunID, p.Name()))
			if err := util.SaveComparisonPNG(report, p.Name(), path); err != nil {
				return err
			}
			paths = append(paths, path)
			for i := range report.Algorithms {
				ar := &report.Algorithms[i]
				path := outputPath(o, fmt.Sprintf("%s_%s_%s_trials.png", report.RunID, ar.Name, p.Name()))
				if err := util.SaveTrialsPNG(ar, p.Name(), path, max(1, len(report.Labels)/10)); err != nil {
					return err
				}
				paths = append(paths, path)
			}
		}
	}
	for _, path := range paths {
		logger.V(1).Info("Wrote result file", "path", filepath.Clean(path))
	}

	printSummaries(report)
	fmt.Printf("Finished %s trials in %s, results in %s\n",
		humanize.Comma(int64(o.trials*len(problems)*len(spec.Solvers))), report.Elapsed.Round(time.Millisecond), o.outputDir)
	return writeMetrics(logger, o, reg)
}

func printSummaries(report *experiment.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALGORITHM\tPROBLEM\tMEAN\tSTDDEV\tBEST\tWORST")
	for _, s := range report.Summaries() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Algorithm, s.Problem,
			humanize.FtoaWithDigits(s.Mean, 4),
			humanize.FtoaWithDigits(s.StdDev, 4),
			humanize.FtoaWithDigits(s.Best, 4),
			humanize.FtoaWithDigits(s.Worst, 4))
	}
	w.Flush()
}
