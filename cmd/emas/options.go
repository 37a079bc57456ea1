package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/pflag"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/mihai-snyk/emas/pkg/singleobjective/algorithms/emas"
	"github.com/mihai-snyk/emas/pkg/singleobjective/benchmarks"
	"github.com/mihai-snyk/emas/pkg/singleobjective/experiment"
)

type options struct {
	configFile  string
	problems    []string
	dimensions  int
	iterations  int
	seed        uint64
	outputDir   string
	metricsFile string

	compare        bool
	trials         int
	maxEvaluations int
	checkpoints    int
	parallelism    int
	png            bool
}

func newOptions() *options {
	return &options{
		problems:       []string{benchmarks.RastriginName},
		dimensions:     100,
		iterations:     200,
		outputDir:      "results",
		trials:         15,
		maxEvaluations: 5000,
		checkpoints:    experiment.DefaultCheckpoints,
		parallelism:    runtime.GOMAXPROCS(0),
	}
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.configFile, "config", o.configFile, "EMAS configuration file (.yaml, .json or .toml). Defaults are used when empty.")
	fs.StringSliceVar(&o.problems, "problems", o.problems, fmt.Sprintf("Benchmark problems to optimize, any of %v.", benchmarks.Names()))
	fs.IntVar(&o.dimensions, "dimensions", o.dimensions, "Number of decision variables.")
	fs.IntVar(&o.iterations, "iterations", o.iterations, "EMAS iterations of a single run.")
	fs.Uint64Var(&o.seed, "seed", o.seed, "Seed of a single run, or base seed of a comparison. Zero keeps the configured seed.")
	fs.StringVar(&o.outputDir, "output-dir", o.outputDir, "Directory for result files and charts.")
	fs.StringVar(&o.metricsFile, "metrics-file", o.metricsFile, "Write Prometheus metrics in text format to this file when done.")

	fs.BoolVar(&o.compare, "compare", o.compare, "Compare EMAS with the genetic algorithm over repeated trials instead of a single run.")
	fs.IntVar(&o.trials, "trials", o.trials, "Trials per algorithm and problem in comparison mode.")
	fs.IntVar(&o.maxEvaluations, "max-evaluations", o.maxEvaluations, "Fitness evaluation budget of every trial in comparison mode.")
	fs.IntVar(&o.checkpoints, "checkpoints", o.checkpoints, "Evaluation checkpoints the convergence curves are sampled at.")
	fs.IntVar(&o.parallelism, "parallelism", o.parallelism, "Trials run concurrently in comparison mode.")
	fs.BoolVar(&o.png, "png", o.png, "Also render PNG charts in comparison mode.")
}

func (o *options) validate() error {
	var allErrs field.ErrorList
	known := benchmarks.Names()
	for i, name := range o.problems {
		if _, err := benchmarks.New(name, 1); err != nil {
			allErrs = append(allErrs, field.NotSupported(field.NewPath("problems").Index(i), name, known))
		}
	}
	if len(o.problems) == 0 {
		allErrs = append(allErrs, field.Required(field.NewPath("problems"), ""))
	}
	if o.dimensions <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("dimensions"), o.dimensions, "must be positive"))
	}
	if o.iterations < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("iterations"), o.iterations, "must be non-negative"))
	}
	if o.trials <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("trials"), o.trials, "must be positive"))
	}
	if o.maxEvaluations <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("max-evaluations"), o.maxEvaluations, "must be positive"))
	}
	if o.parallelism <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("parallelism"), o.parallelism, "must be positive"))
	}
	return allErrs.ToAggregate()
}

func (o *options) emasConfig() (emas.Config, error) {
	cfg := emas.DefaultConfig()
	if o.configFile != "" {
		var err error
		if cfg, err = emas.LoadConfig(o.configFile); err != nil {
			return cfg, err
		}
	}
	if o.seed != 0 {
		cfg.Seed = o.seed
	}
	return cfg, nil
}
