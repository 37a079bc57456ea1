package emas

import (
	"github.com/mihai-snyk/emas/pkg/singleobjective/framework"
)

// reproduce charges both parents ceil(energy*ReproduceLossEnergy), crosses
// them and returns the fitter of the two newborns. Both newborns are endowed
// with the sum of the parents' losses; the other one is discarded.
func (e *EMAS) reproduce(parent1, parent2 *Agent, avgFitness float64) *Agent {
	loss1 := energyLoss(parent1.Energy, e.config.ReproduceLossEnergy)
	parent1.Energy -= loss1
	loss2 := energyLoss(parent2.Energy, e.config.ReproduceLossEnergy)
	parent2.Energy -= loss2

	// The crossover always happens; the probability only picks the order.
	var x1, x2 []float64
	if e.rng.Float64() < e.config.CrossoverProbability {
		x1, x2 = framework.PMXCrossover(e.rng, parent1.X, parent2.X)
	} else {
		x1, x2 = framework.PMXCrossover(e.rng, parent2.X, parent1.X)
	}
	f1, f2 := e.evaluator.Evaluate(x1), e.evaluator.Evaluate(x2)

	mutationProbability1 := e.adaptMutationProbability(f1, avgFitness)
	mutationProbability2 := e.adaptMutationProbability(f2, avgFitness)

	// One draw gates both newborns.
	r := e.rng.Float64()
	if r < mutationProbability1 {
		x1 = e.mutate(x1)
		f1 = e.evaluator.Evaluate(x1)
	}
	if r < mutationProbability2 {
		x2 = e.mutate(x2)
		f2 = e.evaluator.Evaluate(x2)
	}

	endowment := loss1 + loss2
	newborn1 := &Agent{X: x1, Fitness: f1, Energy: endowment}
	newborn2 := &Agent{X: x2, Fitness: f2, Energy: endowment}
	if newborn1.Fitness < newborn2.Fitness {
		return newborn1
	}
	return newborn2
}

// adaptMutationProbability halves the base probability for newborns better
// than the population average and doubles it for the rest.
func (e *EMAS) adaptMutationProbability(fitness, avgFitness float64) float64 {
	if fitness < avgFitness {
		return e.config.MutationProbability / 2
	}
	return e.config.MutationProbability * 2
}

func (e *EMAS) mutate(x []float64) []float64 {
	return framework.PolynomialMutation(e.rng, x, e.lower, e.upper,
		e.config.DistributionIndex, e.config.MutationElementProbability)
}
