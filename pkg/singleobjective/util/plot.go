package util

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"gonum.org/v1/gonum/stat"

	"github.com/mihai-snyk/emas/pkg/singleobjective/algorithms/emas"
	"github.com/mihai-snyk/emas/pkg/singleobjective/experiment"
)

// PlotConvergence renders the per-iteration statistics of a single EMAS run
// as an HTML page at path: fitness curves on top, population size and
// average energy below.
func PlotConvergence(history []emas.IterationStats, problemName, path string) error {
	if len(history) == 0 {
		return fmt.Errorf("no iterations recorded for %s", problemName)
	}

	iterations := make([]int, len(history))
	best := make([]opts.LineData, len(history))
	avg := make([]opts.LineData, len(history))
	population := make([]opts.LineData, len(history))
	energy := make([]opts.LineData, len(history))
	for i, s := range history {
		iterations[i] = s.Iteration
		if s.PopulationSize == 0 {
			// echarts draws "-" as a gap.
			best[i] = opts.LineData{Value: "-"}
			avg[i] = opts.LineData{Value: "-"}
		} else {
			best[i] = opts.LineData{Value: s.BestFitness}
			avg[i] = opts.LineData{Value: s.AverageFitness}
		}
		population[i] = opts.LineData{Value: s.PopulationSize}
		energy[i] = opts.LineData{Value: s.AverageEnergy}
	}

	fitness := newLine(fmt.Sprintf("EMAS convergence on %s", problemName), "iteration", "fitness")
	fitness.SetXAxis(iterations).
		AddSeries("Best fitness", best).
		AddSeries("Average fitness", avg)

	agents := newLine(fmt.Sprintf("EMAS population on %s", problemName), "iteration", "")
	agents.SetXAxis(iterations).
		AddSeries("Population size", population).
		AddSeries("Average energy", energy)

	page := components.NewPage()
	page.AddCharts(fitness, agents)
	return renderTo(path, page)
}

// PlotComparison renders one HTML page per problem in the report into dir,
// comparing the averaged convergence curves of every algorithm and the
// spread of their final results. It returns the written paths.
func PlotComparison(report *experiment.Report, dir string) ([]string, error) {
	if len(report.Algorithms) == 0 {
		return nil, fmt.Errorf("report %s has no algorithms", report.RunID)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var paths []string
	for _, fn := range report.Algorithms[0].Functions {
		line := newLine(fmt.Sprintf("Average best fitness on %s", fn.Name), "evaluations", "fitness")
		line.SetXAxis(report.Labels)

		box := charts.NewBoxPlot()
		box.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{
				Title: fmt.Sprintf("Final best fitness on %s", fn.Name),
			}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithInitializationOpts(opts.Initialization{
				Theme: types.ThemeWesteros,
			}))
		names := make([]string, 0, len(report.Algorithms))
		boxes := make([]opts.BoxPlotData, 0, len(report.Algorithms))

		for _, ar := range report.Algorithms {
			fr, ok := ar.Function(fn.Name)
			if !ok {
				continue
			}
			avg := make([]opts.LineData, len(fr.Avg))
			for i, v := range fr.Avg {
				avg[i] = opts.LineData{Value: v}
			}
			line.AddSeries(ar.Name, avg)

			names = append(names, ar.Name)
			boxes = append(boxes, opts.BoxPlotData{Name: ar.Name, Value: FiveNumberSummary(fr.Final)})
		}
		box.SetXAxis(names).AddSeries("final", boxes)

		page := components.NewPage()
		page.AddCharts(line, box)
		path := filepath.Join(dir, fmt.Sprintf("%s_%s_comparison.html", report.RunID, fn.Name))
		if err := renderTo(path, page); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// FiveNumberSummary returns min, lower quartile, median, upper quartile and
// max of values, the layout box plots expect.
func FiveNumberSummary(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return []float64{
		sorted[0],
		stat.Quantile(0.25, stat.Empirical, sorted, nil),
		stat.Quantile(0.5, stat.Empirical, sorted, nil),
		stat.Quantile(0.75, stat.Empirical, sorted, nil),
		sorted[len(sorted)-1],
	}
}

func newLine(title, xName, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: xName,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: yName,
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}))
	return line
}

func renderTo(path string, page *components.Page) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return page.Render(f)
}
