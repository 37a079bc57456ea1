package emas

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"k8s.io/klog/v2"

	"github.com/mihai-snyk/emas/pkg/singleobjective/framework"
)

const (
	Name = "EMAS"
)

// ErrPopulationExtinct is returned when an iteration leaves no live agent.
var ErrPopulationExtinct = errors.New("population extinguished")

// EMAS is the population controller of an Evolutionary Multi-Agent System.
// An instance owns its agents, configuration and random stream; it is not
// safe for concurrent use, but separate instances never share state.
type EMAS struct {
	problem   framework.Problem
	config    Config
	lower     []float64
	upper     []float64
	evaluator *framework.Evaluator
	rng       *rand.Rand
	observers []Observer

	agents      []*Agent
	initialized bool
	iteration   int
	history     []IterationStats
	trace       framework.Trace
}

var _ framework.Algorithm = &EMAS{}

// Option customizes an EMAS instance.
type Option func(*EMAS)

// WithObserver registers an observer called after every iteration.
func WithObserver(o Observer) Option {
	return func(e *EMAS) {
		e.observers = append(e.observers, o)
	}
}

// WithRand replaces the random stream derived from Config.Seed.
func WithRand(rng *rand.Rand) Option {
	return func(e *EMAS) {
		e.rng = rng
	}
}

// New creates a controller for problem. The population is created by
// Initialize or lazily by Run.
func New(problem framework.Problem, cfg Config, opts ...Option) (*EMAS, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid EMAS configuration: %w", err)
	}

	lower, upper := problem.LowerBounds(), problem.UpperBounds()
	if len(lower) == 0 || len(lower) != len(upper) {
		return nil, fmt.Errorf("problem %s has invalid bounds: %d lower, %d upper", problem.Name(), len(lower), len(upper))
	}
	for i := range lower {
		if lower[i] > upper[i] {
			return nil, fmt.Errorf("problem %s: lower bound %v above upper bound %v in dimension %d", problem.Name(), lower[i], upper[i], i)
		}
	}

	e := &EMAS{
		problem:   problem,
		config:    cfg,
		lower:     lower,
		upper:     upper,
		evaluator: framework.NewEvaluator(problem),
		rng:       newRand(cfg.Seed),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

func (e *EMAS) Name() string {
	return Name
}

// Initialize replaces the population with InitialPopulation random agents
// holding StartEnergy each.
func (e *EMAS) Initialize() {
	e.agents = make([]*Agent, 0, e.config.InitialPopulation)
	for range e.config.InitialPopulation {
		x := framework.RandomVector(e.rng, e.lower, e.upper)
		e.agents = append(e.agents, &Agent{
			X:       x,
			Fitness: e.evaluator.Evaluate(x),
			Energy:  e.config.StartEnergy,
		})
	}
	e.initialized = true
	e.iteration = 0
	e.history = nil
	e.trace = nil
	e.recordProgress()
}

// RunIteration performs one cycle: shuffle, reproduce, fight, merge the
// offspring and clear the dead. It returns ErrPopulationExtinct when no
// agent survives the clearing.
func (e *EMAS) RunIteration(ctx context.Context) (IterationStats, error) {
	logger := klog.FromContext(ctx)
	if !e.initialized {
		e.Initialize()
	}
	if len(e.agents) == 0 {
		return IterationStats{}, fmt.Errorf("iteration %d: %w", e.iteration, ErrPopulationExtinct)
	}

	e.rng.Shuffle(len(e.agents), func(i, j int) {
		e.agents[i], e.agents[j] = e.agents[j], e.agents[i]
	})

	offspring := e.reproducePhase()
	fights := e.fightPhase()
	e.agents = append(e.agents, offspring...)
	deaths := e.clear()
	e.iteration++

	var stats IterationStats
	if len(e.agents) > 0 {
		stats = populationStats(e.agents)
	}
	stats.Iteration = e.iteration
	stats.Evaluations = e.evaluator.Count()
	stats.Offspring = len(offspring)
	stats.Deaths = deaths
	e.history = append(e.history, stats)

	if len(e.agents) == 0 {
		logger.Info("EMAS population extinguished", "problem", e.problem.Name(), "iteration", e.iteration, "deaths", deaths)
		e.notify(stats)
		return stats, fmt.Errorf("iteration %d: %w", e.iteration, ErrPopulationExtinct)
	}
	e.recordProgress()

	logger.V(5).Info("EMAS iteration done",
		"problem", e.problem.Name(),
		"iteration", stats.Iteration,
		"population", stats.PopulationSize,
		"born", stats.Offspring,
		"dead", stats.Deaths,
		"fights", fights,
		"bestFitness", stats.BestFitness)

	e.notify(stats)
	return stats, nil
}

func (e *EMAS) notify(stats IterationStats) {
	for _, o := range e.observers {
		o.Update(stats)
	}
}

// reproducePhase pairs agents whose energy exceeds ReproduceReqEnergy and
// returns one offspring per pair.
func (e *EMAS) reproducePhase() []*Agent {
	req := e.config.ReproduceReqEnergy
	avg := averageFitness(e.agents)

	pairs := pairEligible(e.rng, len(e.agents), func(i int) bool {
		return float64(e.agents[i].Energy) > req
	})
	offspring := make([]*Agent, 0, len(pairs))
	for _, p := range pairs {
		offspring = append(offspring, e.reproduce(e.agents[p.first], e.agents[p.second], avg))
	}
	return offspring
}

// fightPhase pairs agents whose energy exceeds FightReqEnergy and lets every
// pair fight once. It returns the number of fights.
func (e *EMAS) fightPhase() int {
	req := e.config.FightReqEnergy

	pairs := pairEligible(e.rng, len(e.agents), func(i int) bool {
		return float64(e.agents[i].Energy) > req
	})
	for _, p := range pairs {
		e.fight(e.agents[p.first], e.agents[p.second])
	}
	return len(pairs)
}

func (e *EMAS) fight(agent1, agent2 *Agent) {
	switch e.config.FightPolicy {
	case Attritional:
		AttritionalFight(agent1, agent2, e.config.FightLossEnergy, e.config.MinFightEnergyLoss)
	default:
		Fight(agent1, agent2)
	}
}

// clear removes every agent without energy and returns how many were removed.
func (e *EMAS) clear() int {
	before := len(e.agents)
	e.agents = slices.DeleteFunc(e.agents, (*Agent).Dead)
	return before - len(e.agents)
}

// recordProgress appends the best fitness seen so far to the trace.
func (e *EMAS) recordProgress() {
	best := math.Inf(1)
	if n := len(e.trace); n > 0 {
		best = e.trace[n-1].BestFitness
	}
	for _, a := range e.agents {
		best = math.Min(best, a.Fitness)
	}
	e.trace = append(e.trace, framework.ProgressPoint{
		Evaluations: e.evaluator.Count(),
		BestFitness: best,
	})
}

// Result is the outcome of Run.
type Result struct {
	// BestFitness and BestX describe the best agent of the final population.
	// BestX is nil when the population went extinct.
	BestFitness float64
	BestX       []float64
	// RoundedX is BestX rounded to two decimals for reporting.
	RoundedX    []float64
	Iterations  int
	Evaluations int
	History     []IterationStats
	// Trace holds the best fitness seen so far, including agents that died since.
	Trace framework.Trace
}

// Run executes up to iterations iterations. It stops early when the
// evaluation budget is spent, the context is done or the population dies out;
// in the latter two cases the partial result is returned with the error.
func (e *EMAS) Run(ctx context.Context, iterations int) (*Result, error) {
	logger := klog.FromContext(ctx)
	if !e.initialized {
		e.Initialize()
	}

	for range iterations {
		if e.budgetSpent() {
			logger.V(4).Info("EMAS evaluation budget spent", "problem", e.problem.Name(), "evaluations", e.evaluator.Count())
			break
		}
		if err := ctx.Err(); err != nil {
			return e.result(), err
		}
		if _, err := e.RunIteration(ctx); err != nil {
			return e.result(), err
		}
	}

	res := e.result()
	logger.V(2).Info("EMAS run finished",
		"problem", e.problem.Name(),
		"iterations", res.Iterations,
		"evaluations", res.Evaluations,
		"bestFitness", res.BestFitness)
	return res, nil
}

func (e *EMAS) budgetSpent() bool {
	return e.config.MaxEvaluations > 0 && e.evaluator.Count() >= e.config.MaxEvaluations
}

func (e *EMAS) result() *Result {
	res := &Result{
		BestFitness: math.Inf(1),
		Iterations:  e.iteration,
		Evaluations: e.evaluator.Count(),
		History:     slices.Clone(e.history),
		Trace:       slices.Clone(e.trace),
	}
	if best, ok := e.Best(); ok {
		res.BestFitness = best.Fitness
		res.BestX = best.X
		res.RoundedX = make([]float64, len(best.X))
		for i, v := range best.X {
			res.RoundedX[i] = math.Round(v*100) / 100
		}
	}
	return res
}

// Best returns a copy of the fittest live agent.
func (e *EMAS) Best() (Agent, bool) {
	if len(e.agents) == 0 {
		return Agent{}, false
	}
	best := e.agents[0]
	for _, a := range e.agents[1:] {
		if a.Fitness < best.Fitness {
			best = a
		}
	}
	return best.clone(), true
}

// Agents returns copies of the live agents.
func (e *EMAS) Agents() []Agent {
	agents := make([]Agent, len(e.agents))
	for i, a := range e.agents {
		agents[i] = a.clone()
	}
	return agents
}

// Iteration returns the number of completed iterations.
func (e *EMAS) Iteration() int {
	return e.iteration
}

// Evaluations returns the number of fitness evaluations spent so far.
func (e *EMAS) Evaluations() int {
	return e.evaluator.Count()
}

// History returns the statistics of every completed iteration.
func (e *EMAS) History() []IterationStats {
	return slices.Clone(e.history)
}
