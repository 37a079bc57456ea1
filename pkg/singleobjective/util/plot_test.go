package util

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihai-snyk/emas/pkg/singleobjective/algorithms/emas"
	"github.com/mihai-snyk/emas/pkg/singleobjective/experiment"
)

func sampleReport() *experiment.Report {
	labels := []int{100, 200, 300}
	return &experiment.Report{
		RunID:  "1700000000",
		Labels: labels,
		Algorithms: []experiment.AlgorithmReport{
			{
				Name:   "EMAS",
				Labels: labels,
				Functions: []experiment.FunctionReport{{
					Name:    "sphere",
					Results: [][]float64{{9, 4, 1}, {7, 3, 2}},
					Avg:     []float64{8, 3.5, 1.5},
					Final:   []float64{1, 2},
				}},
			},
			{
				Name:   "GA",
				Labels: labels,
				Functions: []experiment.FunctionReport{{
					Name:    "sphere",
					Results: [][]float64{{10, 6, 5}, {8, 6, 4}},
					Avg:     []float64{9, 6, 4.5},
					Final:   []float64{5, 4},
				}},
			},
		},
	}
}

func TestPlotConvergence(t *testing.T) {
	history := []emas.IterationStats{
		{Iteration: 1, PopulationSize: 10, BestFitness: 5, AverageFitness: 9, AverageEnergy: 100},
		{Iteration: 2, PopulationSize: 8, BestFitness: 3, AverageFitness: 6, AverageEnergy: 125},
	}
	path := filepath.Join(t.TempDir(), "convergence.html")
	require.NoError(t, PlotConvergence(history, "sphere", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "EMAS convergence on sphere")
	assert.Contains(t, string(data), "Average energy")
}

func TestPlotConvergenceWithExtinction(t *testing.T) {
	history := []emas.IterationStats{
		{Iteration: 1, PopulationSize: 2, BestFitness: 5, AverageFitness: 9, AverageEnergy: 100},
		{Iteration: 2, PopulationSize: 0, Deaths: 2},
	}
	path := filepath.Join(t.TempDir(), "extinct.html")
	require.NoError(t, PlotConvergence(history, "sphere", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"-"`)
}

func TestPlotConvergenceEmptyHistory(t *testing.T) {
	err := PlotConvergence(nil, "sphere", filepath.Join(t.TempDir(), "x.html"))
	assert.ErrorContains(t, err, "no iterations recorded")
}

func TestPlotComparison(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	paths, err := PlotComparison(sampleReport(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "1700000000_sphere_comparison.html")}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	for _, want := range []string{"Average best fitness on sphere", "Final best fitness on sphere", "EMAS", "GA"} {
		assert.Contains(t, string(data), want)
	}
}

func TestPlotComparisonEmptyReport(t *testing.T) {
	_, err := PlotComparison(&experiment.Report{RunID: "1"}, t.TempDir())
	assert.Error(t, err)
}

func TestFiveNumberSummary(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, FiveNumberSummary([]float64{5, 3, 1, 4, 2}))
	assert.Equal(t, []float64{7, 7, 7, 7, 7}, FiveNumberSummary([]float64{7}))
	assert.Nil(t, FiveNumberSummary(nil))
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestSaveComparisonPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sphere.png")
	require.NoError(t, SaveComparisonPNG(sampleReport(), "sphere", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestSaveComparisonPNGUnknownProblem(t *testing.T) {
	err := SaveComparisonPNG(sampleReport(), "rastrigin", filepath.Join(t.TempDir(), "r.png"))
	assert.ErrorContains(t, err, "no results for rastrigin")
}

func TestSaveTrialsPNG(t *testing.T) {
	report := sampleReport()
	path := filepath.Join(t.TempDir(), "emas_trials.png")
	require.NoError(t, SaveTrialsPNG(&report.Algorithms[0], "sphere", path, 2))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}
