// Package experiment runs repeated, seeded optimizer trials over a set of
// benchmark problems and aggregates their convergence traces.
package experiment

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"

	"github.com/mihai-snyk/emas/pkg/singleobjective/framework"
)

// DefaultCheckpoints is the number of evaluation checkpoints used when Spec
// leaves it unset.
const DefaultCheckpoints = 50

// Spec describes a comparison run. Every solver is run Trials times on every
// problem, trial t using seed BaseSeed+t+1.
type Spec struct {
	Solvers  []Solver
	Problems []framework.Problem

	Trials         int
	MaxEvaluations int
	Checkpoints    int
	// Parallelism bounds the number of concurrent trials. Defaults to
	// GOMAXPROCS.
	Parallelism int
	BaseSeed    uint64

	// Clock is used to time the run. Defaults to the real clock.
	Clock clock.PassiveClock
}

// Validate reports every invalid field of s at once.
func (s *Spec) Validate() error {
	var allErrs field.ErrorList
	if len(s.Solvers) == 0 {
		allErrs = append(allErrs, field.Required(field.NewPath("solvers"), "at least one solver is needed"))
	}
	if len(s.Problems) == 0 {
		allErrs = append(allErrs, field.Required(field.NewPath("problems"), "at least one problem is needed"))
	}
	if s.Trials <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("trials"), s.Trials, "must be positive"))
	}
	if s.MaxEvaluations <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("maxEvaluations"), s.MaxEvaluations, "must be positive"))
	}
	if s.Checkpoints < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("checkpoints"), s.Checkpoints, "must be non-negative"))
	}
	if s.Parallelism < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("parallelism"), s.Parallelism, "must be non-negative"))
	}
	return allErrs.ToAggregate()
}

// Report holds the aggregated results of a comparison run.
type Report struct {
	RunID string `json:"runId"`
	// Labels are the evaluation counts every trace was resampled at.
	Labels     []int             `json:"labels"`
	Algorithms []AlgorithmReport `json:"algorithms"`
	Elapsed    time.Duration     `json:"elapsed"`
}

// AlgorithmReport holds the results of one solver across all problems.
type AlgorithmReport struct {
	Name      string           `json:"name"`
	Labels    []int            `json:"labels"`
	Functions []FunctionReport `json:"functions"`
}

// FunctionReport holds the results of one solver on one problem.
type FunctionReport struct {
	Name string `json:"name"`
	// Results holds one resampled best-so-far curve per trial.
	Results [][]float64 `json:"results"`
	// Avg is the per-checkpoint mean of Results.
	Avg []float64 `json:"avg"`
	// Final holds the best fitness each trial reached within MaxEvaluations.
	Final []float64 `json:"final"`
}

// Function returns the report for the named problem.
func (a *AlgorithmReport) Function(name string) (*FunctionReport, bool) {
	for i := range a.Functions {
		if a.Functions[i].Name == name {
			return &a.Functions[i], true
		}
	}
	return nil, false
}

// Run executes the experiment described by spec. Trials run concurrently; the first failing trial
// cancels the rest and its error is returned.
func Run(ctx context.Context, spec Spec) (*Report, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid experiment: %w", err)
	}
	logger := klog.FromContext(ctx)

	clk := spec.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	checkpoints := spec.Checkpoints
	if checkpoints == 0 {
		checkpoints = DefaultCheckpoints
	}
	parallelism := spec.Parallelism
	if parallelism == 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	start := clk.Now()
	labels := Checkpoints(spec.MaxEvaluations, checkpoints)
	report := &Report{
		RunID:      strconv.FormatInt(start.Unix(), 10),
		Labels:     labels,
		Algorithms: make([]AlgorithmReport, len(spec.Solvers)),
	}
	for a, solver := range spec.Solvers {
		ar := AlgorithmReport{
			Name:      solver.Name(),
			Labels:    labels,
			Functions: make([]FunctionReport, len(spec.Problems)),
		}
		for f, problem := range spec.Problems {
			ar.Functions[f] = FunctionReport{
				Name:    problem.Name(),
				Results: make([][]float64, spec.Trials),
				Final:   make([]float64, spec.Trials),
			}
		}
		report.Algorithms[a] = ar
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for a, solver := range spec.Solvers {
		for f, problem := range spec.Problems {
			for trial := range spec.Trials {
				g.Go(func() error {
					seed := spec.BaseSeed + uint64(trial) + 1
					out, err := solver.Solve(gctx, problem, seed, spec.MaxEvaluations)
					if err != nil {
						return fmt.Errorf("%s on %s, trial %d: %w", solver.Name(), problem.Name(), trial, err)
					}
					fr := &report.Algorithms[a].Functions[f]
					fr.Results[trial] = Resample(out.Trace, labels)
					// Solvers may overshoot the budget within their last step;
					// the last label is MaxEvaluations itself.
					fr.Final[trial] = fr.Results[trial][len(labels)-1]
					logger.V(3).Info("Trial finished",
						"algorithm", solver.Name(),
						"problem", problem.Name(),
						"trial", trial,
						"evaluations", out.Evaluations,
						"bestFitness", out.BestFitness)
					return nil
				})
			}
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for a := range report.Algorithms {
		for f := range report.Algorithms[a].Functions {
			fr := &report.Algorithms[a].Functions[f]
			fr.Avg = averageCurves(fr.Results, len(labels))
		}
	}
	report.Elapsed = clk.Since(start)
	logger.V(2).Info("Experiment finished",
		"runID", report.RunID,
		"solvers", len(spec.Solvers),
		"problems", len(spec.Problems),
		"trials", spec.Trials,
		"elapsed", report.Elapsed)
	return report, nil
}

// Checkpoints splits maxEvaluations into n evenly spaced evaluation counts,
// the last one being maxEvaluations itself.
func Checkpoints(maxEvaluations, n int) []int {
	if n <= 0 || maxEvaluations <= 0 {
		return nil
	}
	n = min(n, maxEvaluations)
	labels := make([]int, n)
	for i := range n {
		labels[i] = (i + 1) * maxEvaluations / n
	}
	return labels
}

// Resample maps a trace onto the given evaluation counts. Each label takes the
// lowest fitness recorded at or before it; labels before the first point take
// the first point. An empty trace yields NaN everywhere.
func Resample(trace framework.Trace, labels []int) []float64 {
	out := make([]float64, len(labels))
	if len(trace) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	best := trace[0].BestFitness
	j := 0
	for i, label := range labels {
		for j < len(trace) && trace[j].Evaluations <= label {
			best = math.Min(best, trace[j].BestFitness)
			j++
		}
		out[i] = best
	}
	return out
}

func averageCurves(curves [][]float64, n int) []float64 {
	avg := make([]float64, n)
	column := make([]float64, len(curves))
	for k := range n {
		for t, curve := range curves {
			column[t] = curve[k]
		}
		avg[k] = stat.Mean(column, nil)
	}
	return avg
}

// Summary condenses the final fitness of every trial of one solver on one
// problem.
type Summary struct {
	Algorithm string
	Problem   string
	Mean      float64
	StdDev    float64
	Best      float64
	Worst     float64
}

// Summaries returns one Summary per solver and problem, in report order.
func (r *Report) Summaries() []Summary {
	var out []Summary
	for _, ar := range r.Algorithms {
		for _, fr := range ar.Functions {
			mean, std := stat.PopMeanStdDev(fr.Final, nil)
			s := Summary{
				Algorithm: ar.Name,
				Problem:   fr.Name,
				Mean:      mean,
				StdDev:    std,
				Best:      math.Inf(1),
				Worst:     math.Inf(-1),
			}
			for _, v := range fr.Final {
				s.Best = math.Min(s.Best, v)
				s.Worst = math.Max(s.Worst, v)
			}
			out = append(out, s)
		}
	}
	return out
}
