package util

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/mihai-snyk/emas/pkg/singleobjective/experiment"
)

// SaveComparisonPNG draws the averaged convergence curve of every algorithm
// on the named problem into a PNG (or any format gonum/plot infers from the
// extension) at path.
func SaveComparisonPNG(report *experiment.Report, problemName, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Average best fitness on %s", problemName)
	p.X.Label.Text = "Evaluations"
	p.Y.Label.Text = "Fitness"

	drawn := 0
	for i, ar := range report.Algorithms {
		fr, ok := ar.Function(problemName)
		if !ok {
			continue
		}
		line, err := plotter.NewLine(labelled(report.Labels, fr.Avg))
		if err != nil {
			return fmt.Errorf("%s curve: %w", ar.Name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(ar.Name, line)
		drawn++
	}
	if drawn == 0 {
		return fmt.Errorf("no results for %s in report %s", problemName, report.RunID)
	}
	p.Legend.Top = true

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// SaveTrialsPNG draws one algorithm's averaged curve on the named problem
// together with a box plot of the individual trials at every nth checkpoint.
func SaveTrialsPNG(ar *experiment.AlgorithmReport, problemName, path string, everyNth int) error {
	fr, ok := ar.Function(problemName)
	if !ok {
		return fmt.Errorf("no results for %s on %s", ar.Name, problemName)
	}
	if everyNth <= 0 {
		everyNth = 1
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s on %s", ar.Name, problemName)
	p.X.Label.Text = "Evaluations"
	p.Y.Label.Text = "Fitness"

	avg, err := plotter.NewLine(labelled(ar.Labels, fr.Avg))
	if err != nil {
		return err
	}
	avg.Color = plotutil.Color(0)
	p.Add(avg)
	p.Legend.Add("avg", avg)

	for k := everyNth - 1; k < len(ar.Labels); k += everyNth {
		column := make(plotter.Values, len(fr.Results))
		for t, curve := range fr.Results {
			column[t] = curve[k]
		}
		box, err := plotter.NewBoxPlot(vg.Points(8), float64(ar.Labels[k]), column)
		if err != nil {
			return fmt.Errorf("checkpoint %d: %w", ar.Labels[k], err)
		}
		p.Add(box)
	}
	p.Legend.Top = true

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func labelled(labels []int, values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i := range values {
		pts[i].X = float64(labels[i])
		pts[i].Y = values[i]
	}
	return pts
}
