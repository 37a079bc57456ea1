package emas

import (
	"math"
	"slices"
)

// Agent is one candidate solution together with its energy balance.
// Fitness always belongs to the current X: X is only ever replaced together
// with a fresh evaluation.
type Agent struct {
	X       []float64
	Fitness float64
	Energy  int
}

// Dead reports whether the agent has run out of energy.
func (a *Agent) Dead() bool {
	return a.Energy <= 0
}

func (a *Agent) clone() Agent {
	return Agent{
		X:       slices.Clone(a.X),
		Fitness: a.Fitness,
		Energy:  a.Energy,
	}
}

// Fight lets the fitter agent take all of the other's energy. On equal
// fitness the second agent wins.
func Fight(agent1, agent2 *Agent) {
	if agent1.Fitness < agent2.Fitness {
		agent1.Energy += agent2.Energy
		agent2.Energy = 0
	} else {
		agent2.Energy += agent1.Energy
		agent1.Energy = 0
	}
}

// AttritionalFight moves ceil(max(loser.Energy*lossFraction, minLoss)) energy
// from the loser to the winner, never more than the loser has. On equal
// fitness the second agent wins.
func AttritionalFight(agent1, agent2 *Agent, lossFraction, minLoss float64) {
	winner, loser := agent2, agent1
	if agent1.Fitness < agent2.Fitness {
		winner, loser = agent1, agent2
	}

	transfer := int(math.Ceil(math.Max(float64(loser.Energy)*lossFraction, minLoss)))
	transfer = max(0, min(transfer, loser.Energy))

	winner.Energy += transfer
	loser.Energy -= transfer
}

// energyLoss is the energy an agent gives up when spending fraction of it.
// Any positive fraction of a positive balance costs at least one unit.
func energyLoss(energy int, fraction float64) int {
	return int(math.Ceil(float64(energy) * fraction))
}
