package emas

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "emas"

// Metrics exports iteration statistics as Prometheus collectors, labelled by
// problem name. The collectors are safe to share between controllers
// running in parallel.
type Metrics struct {
	PopulationSize *prometheus.GaugeVec
	BestFitness    *prometheus.GaugeVec
	AverageFitness *prometheus.GaugeVec
	AverageEnergy  *prometheus.GaugeVec
	Births         *prometheus.CounterVec
	Deaths         *prometheus.CounterVec
	Iterations     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	labels := []string{"problem"}
	m := &Metrics{
		PopulationSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "population_size",
			Help:      "Number of live agents after the last iteration.",
		}, labels),
		BestFitness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "best_fitness",
			Help:      "Fitness of the best live agent after the last iteration.",
		}, labels),
		AverageFitness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "average_fitness",
			Help:      "Average fitness of the live agents after the last iteration.",
		}, labels),
		AverageEnergy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "average_energy",
			Help:      "Average energy of the live agents after the last iteration.",
		}, labels),
		Births: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "births_total",
			Help:      "Offspring merged into the population.",
		}, labels),
		Deaths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "deaths_total",
			Help:      "Agents removed for running out of energy.",
		}, labels),
		Iterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "iterations_total",
			Help:      "Completed iterations.",
		}, labels),
	}

	for _, c := range []prometheus.Collector{
		m.PopulationSize, m.BestFitness, m.AverageFitness, m.AverageEnergy,
		m.Births, m.Deaths, m.Iterations,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observer returns an Observer that records into the series of problem.
func (m *Metrics) Observer(problem string) Observer {
	return ObserverFunc(func(s IterationStats) {
		m.PopulationSize.WithLabelValues(problem).Set(float64(s.PopulationSize))
		m.AverageEnergy.WithLabelValues(problem).Set(s.AverageEnergy)
		// An extinct population has no fitness; keep the last known values.
		if s.PopulationSize > 0 {
			m.BestFitness.WithLabelValues(problem).Set(s.BestFitness)
			m.AverageFitness.WithLabelValues(problem).Set(s.AverageFitness)
		}
		m.Births.WithLabelValues(problem).Add(float64(s.Offspring))
		m.Deaths.WithLabelValues(problem).Add(float64(s.Deaths))
		m.Iterations.WithLabelValues(problem).Inc()
	})
}
