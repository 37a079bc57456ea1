package experiment

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/sets"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/mihai-snyk/emas/pkg/singleobjective/algorithms/emas"
	"github.com/mihai-snyk/emas/pkg/singleobjective/algorithms/ga"
	"github.com/mihai-snyk/emas/pkg/singleobjective/benchmarks"
	"github.com/mihai-snyk/emas/pkg/singleobjective/framework"
)

// stubSolver reports a two-point trace derived from the seed: seed*10 right
// after initialization and seed once the budget is spent.
type stubSolver struct {
	name string
	err  error

	mu    sync.Mutex
	seeds sets.Set[uint64]
}

func (s *stubSolver) Name() string { return s.name }

func (s *stubSolver) Solve(_ context.Context, _ framework.Problem, seed uint64, maxEvaluations int) (Outcome, error) {
	s.mu.Lock()
	if s.seeds == nil {
		s.seeds = sets.New[uint64]()
	}
	s.seeds.Insert(seed)
	s.mu.Unlock()

	if s.err != nil {
		return Outcome{}, s.err
	}
	f := float64(seed)
	return Outcome{
		BestFitness: f,
		Evaluations: maxEvaluations,
		Trace: framework.Trace{
			{Evaluations: 0, BestFitness: f * 10},
			{Evaluations: maxEvaluations, BestFitness: f},
		},
	}, nil
}

func TestCheckpoints(t *testing.T) {
	tests := []struct {
		name string
		max  int
		n    int
		want []int
	}{
		{name: "even split", max: 1000, n: 4, want: []int{250, 500, 750, 1000}},
		{name: "more checkpoints than evaluations", max: 3, n: 10, want: []int{1, 2, 3}},
		{name: "uneven split ends at max", max: 10, n: 3, want: []int{3, 6, 10}},
		{name: "no checkpoints", max: 10, n: 0, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Checkpoints(tt.max, tt.n)); diff != "" {
				t.Errorf("Checkpoints() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResample(t *testing.T) {
	trace := framework.Trace{
		{Evaluations: 10, BestFitness: 5},
		{Evaluations: 20, BestFitness: 3},
		{Evaluations: 40, BestFitness: 4},
		{Evaluations: 50, BestFitness: 1},
	}
	got := Resample(trace, []int{5, 10, 30, 45, 60})
	assert.Equal(t, []float64{5, 5, 3, 3, 1}, got)
}

func TestResampleEmptyTrace(t *testing.T) {
	got := Resample(nil, []int{1, 2})
	require.Len(t, got, 2)
	for _, v := range got {
		assert.True(t, math.IsNaN(v))
	}
}

func TestRunAggregatesTrials(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	solver := &stubSolver{name: "stub"}
	spec := Spec{
		Solvers:        []Solver{solver},
		Problems:       []framework.Problem{benchmarks.NewSphere(2), benchmarks.NewRastrigin(2)},
		Trials:         3,
		MaxEvaluations: 100,
		Checkpoints:    2,
		Parallelism:    2,
		Clock:          clocktesting.NewFakePassiveClock(t0),
	}

	report, err := Run(context.Background(), spec)
	require.NoError(t, err)

	assert.Equal(t, "1714564800", report.RunID)
	assert.Equal(t, []int{50, 100}, report.Labels)
	assert.Zero(t, report.Elapsed)
	assert.True(t, solver.seeds.Equal(sets.New[uint64](1, 2, 3)))

	require.Len(t, report.Algorithms, 1)
	ar := report.Algorithms[0]
	assert.Equal(t, "stub", ar.Name)
	require.Len(t, ar.Functions, 2)

	for _, name := range []string{benchmarks.SphereName, benchmarks.RastriginName} {
		fr, ok := ar.Function(name)
		require.True(t, ok, name)
		want := FunctionReport{
			Name:    name,
			Results: [][]float64{{10, 1}, {20, 2}, {30, 3}},
			Avg:     []float64{20, 2},
			Final:   []float64{1, 2, 3},
		}
		if diff := cmp.Diff(want, *fr); diff != "" {
			t.Errorf("%s report mismatch (-want +got):\n%s", name, diff)
		}
	}
	_, ok := ar.Function("missing")
	assert.False(t, ok)
}

// overshootingSolver finishes its last step past the evaluation budget.
type overshootingSolver struct{}

func (overshootingSolver) Name() string { return "overshoot" }

func (overshootingSolver) Solve(_ context.Context, _ framework.Problem, _ uint64, maxEvaluations int) (Outcome, error) {
	return Outcome{
		BestFitness: 1,
		Evaluations: maxEvaluations + 30,
		Trace: framework.Trace{
			{Evaluations: 50, BestFitness: 5},
			{Evaluations: maxEvaluations + 30, BestFitness: 1},
		},
	}, nil
}

func TestRunIgnoresProgressPastBudget(t *testing.T) {
	spec := Spec{
		Solvers:        []Solver{overshootingSolver{}},
		Problems:       []framework.Problem{benchmarks.NewSphere(2)},
		Trials:         2,
		MaxEvaluations: 100,
		Checkpoints:    2,
	}
	report, err := Run(context.Background(), spec)
	require.NoError(t, err)

	fr := report.Algorithms[0].Functions[0]
	assert.Equal(t, []float64{5, 5}, fr.Final)
	assert.Equal(t, [][]float64{{5, 5}, {5, 5}}, fr.Results)
}

func TestRunPropagatesSolverError(t *testing.T) {
	boom := errors.New("boom")
	spec := Spec{
		Solvers:        []Solver{&stubSolver{name: "broken", err: boom}},
		Problems:       []framework.Problem{benchmarks.NewSphere(2)},
		Trials:         2,
		MaxEvaluations: 10,
	}
	_, err := Run(context.Background(), spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken on sphere")
}

func TestRunRejectsInvalidSpec(t *testing.T) {
	_, err := Run(context.Background(), Spec{Trials: -1})
	require.Error(t, err)
	for _, field := range []string{"solvers", "problems", "trials", "maxEvaluations"} {
		assert.Contains(t, err.Error(), field)
	}
}

func newRealSpec(t *testing.T) Spec {
	t.Helper()
	emasCfg := emas.DefaultConfig()
	emasCfg.InitialPopulation = 20
	return Spec{
		Solvers: []Solver{
			&EMASSolver{Config: emasCfg},
			&GASolver{Config: ga.DefaultConfig()},
		},
		Problems:       []framework.Problem{benchmarks.NewSphere(5)},
		Trials:         2,
		MaxEvaluations: 500,
		Checkpoints:    5,
		BaseSeed:       7,
		Clock:          clocktesting.NewFakePassiveClock(time.Unix(0, 0)),
	}
}

func TestRunWithRealSolvers(t *testing.T) {
	report, err := Run(context.Background(), newRealSpec(t))
	require.NoError(t, err)
	require.Len(t, report.Algorithms, 2)
	assert.Equal(t, emas.Name, report.Algorithms[0].Name)
	assert.Equal(t, ga.Name, report.Algorithms[1].Name)

	for _, ar := range report.Algorithms {
		fr, ok := ar.Function(benchmarks.SphereName)
		require.True(t, ok)
		require.Len(t, fr.Results, 2)
		require.Len(t, fr.Avg, 5)
		for k := 1; k < len(fr.Avg); k++ {
			assert.LessOrEqual(t, fr.Avg[k], fr.Avg[k-1], "%s average must not increase", ar.Name)
		}
		for trial, final := range fr.Final {
			assert.LessOrEqual(t, final, fr.Results[trial][0], "%s trial %d", ar.Name, trial)
		}
	}
}

func TestRunIsReproducible(t *testing.T) {
	first, err := Run(context.Background(), newRealSpec(t))
	require.NoError(t, err)
	second, err := Run(context.Background(), newRealSpec(t))
	require.NoError(t, err)
	if diff := cmp.Diff(first.Algorithms, second.Algorithms); diff != "" {
		t.Errorf("same seeds gave different reports (-first +second):\n%s", diff)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, newRealSpec(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveAndLoad(t *testing.T) {
	report := &Report{
		RunID:  "42",
		Labels: []int{5, 10},
		Algorithms: []AlgorithmReport{
			{
				Name:   "EMAS",
				Labels: []int{5, 10},
				Functions: []FunctionReport{
					{Name: "sphere", Results: [][]float64{{3, 1}}, Avg: []float64{3, 1}, Final: []float64{1}},
				},
			},
			{Name: "GA", Labels: []int{5, 10}},
		},
	}

	dir := filepath.Join(t.TempDir(), "results")
	paths, err := report.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "42_EMAS.json"),
		filepath.Join(dir, "42_GA.json"),
	}, paths)

	for i, path := range paths {
		_, err := os.Stat(path)
		require.NoError(t, err)
		got, err := LoadAlgorithmReport(path)
		require.NoError(t, err)
		if diff := cmp.Diff(report.Algorithms[i], *got); diff != "" {
			t.Errorf("round trip of %s mismatch (-want +got):\n%s", path, diff)
		}
	}
}

func TestSummaries(t *testing.T) {
	report := &Report{
		Algorithms: []AlgorithmReport{{
			Name:      "EMAS",
			Functions: []FunctionReport{{Name: "sphere", Final: []float64{1, 3}}},
		}},
	}
	got := report.Summaries()
	want := []Summary{{Algorithm: "EMAS", Problem: "sphere", Mean: 2, StdDev: 1, Best: 1, Worst: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summaries() mismatch (-want +got):\n%s", diff)
	}
}

func TestAveragingIdenticalCurvesIsIdentity(t *testing.T) {
	curve := []float64{9, 4, 4, 1}
	got := averageCurves([][]float64{curve, curve, curve}, len(curve))
	assert.Equal(t, curve, got)
}
