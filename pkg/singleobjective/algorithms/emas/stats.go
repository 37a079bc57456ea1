package emas

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// IterationStats summarizes the population after one iteration. When the
// iteration left no agents only the counters are set.
type IterationStats struct {
	Iteration      int     `json:"iteration"`
	Evaluations    int     `json:"evaluations"`
	PopulationSize int     `json:"populationSize"`
	Offspring      int     `json:"offspring"`
	Deaths         int     `json:"deaths"`
	BestFitness    float64 `json:"bestFitness"`
	AverageFitness float64 `json:"averageFitness"`
	BestEnergy     int     `json:"bestEnergy"`
	AverageEnergy  float64 `json:"averageEnergy"`
	// MinStdDev and MaxStdDev are the extremes of the per-dimension population
	// standard deviation, a coarse diversity signal.
	MinStdDev float64 `json:"minStdDev"`
	MaxStdDev float64 `json:"maxStdDev"`
}

// populationStats fills the population-derived fields of IterationStats.
// agents must not be empty.
func populationStats(agents []*Agent) IterationStats {
	fitness := make([]float64, len(agents))
	energy := make([]float64, len(agents))
	best := agents[0]
	for i, a := range agents {
		fitness[i] = a.Fitness
		energy[i] = float64(a.Energy)
		if a.Fitness < best.Fitness {
			best = a
		}
	}

	stds := dimensionStdDevs(agents)
	return IterationStats{
		PopulationSize: len(agents),
		BestFitness:    best.Fitness,
		AverageFitness: stat.Mean(fitness, nil),
		BestEnergy:     best.Energy,
		AverageEnergy:  stat.Mean(energy, nil),
		MinStdDev:      floats.Min(stds),
		MaxStdDev:      floats.Max(stds),
	}
}

// dimensionStdDevs returns the population standard deviation of every
// coordinate across the agents.
func dimensionStdDevs(agents []*Agent) []float64 {
	dims := len(agents[0].X)
	stds := make([]float64, dims)
	if len(agents) < 2 {
		return stds
	}

	column := make([]float64, len(agents))
	for d := range dims {
		for i, a := range agents {
			column[i] = a.X[d]
		}
		_, stds[d] = stat.PopMeanStdDev(column, nil)
	}
	return stds
}

func averageFitness(agents []*Agent) float64 {
	fitness := make([]float64, len(agents))
	for i, a := range agents {
		fitness[i] = a.Fitness
	}
	return stat.Mean(fitness, nil)
}
