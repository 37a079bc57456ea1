package ga

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/klog/v2"

	"github.com/mihai-snyk/emas/pkg/singleobjective/framework"
)

const (
	Name = "GA"
)

// Config holds the genetic algorithm parameters.
type Config struct {
	PopSize        int     `json:"popSize"`
	NumGenerations int     `json:"numGenerations"`
	CrossoverRate  float64 `json:"crossoverRate"`
	// DistributionIndex is shared by SBX and polynomial mutation.
	DistributionIndex float64 `json:"distributionIndex"`
	// MutationRate is the per-element mutation probability. Zero means 1/n.
	MutationRate   float64 `json:"mutationRate"`
	MaxEvaluations int     `json:"maxEvaluations"`
	Seed           uint64  `json:"seed"`
}

func DefaultConfig() Config {
	return Config{
		PopSize:           20,
		NumGenerations:    250,
		CrossoverRate:     0.9,
		DistributionIndex: 20,
	}
}

func (c *Config) Validate() error {
	var allErrs field.ErrorList
	if c.PopSize < 2 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("popSize"), c.PopSize, "must be at least 2"))
	}
	if c.NumGenerations < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("numGenerations"), c.NumGenerations, "must be non-negative"))
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("crossoverRate"), c.CrossoverRate, "must be in [0, 1]"))
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("mutationRate"), c.MutationRate, "must be in [0, 1]"))
	}
	if c.DistributionIndex <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("distributionIndex"), c.DistributionIndex, "must be positive"))
	}
	if c.MaxEvaluations < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("maxEvaluations"), c.MaxEvaluations, "must be non-negative"))
	}
	return allErrs.ToAggregate()
}

// Individual represents a solution in the population
type Individual struct {
	Variables []float64
	Fitness   float64
}

// GA is a generational, elitist genetic algorithm: binary tournament, SBX,
// polynomial mutation and (mu+lambda) survivor selection.
type GA struct {
	problem   framework.Problem
	config    Config
	lower     []float64
	upper     []float64
	evaluator *framework.Evaluator
	rng       *rand.Rand
}

var _ framework.Algorithm = &GA{}

// New creates a new instance of the GA for problem.
func New(problem framework.Problem, cfg Config) (*GA, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid GA configuration: %w", err)
	}
	lower, upper := problem.LowerBounds(), problem.UpperBounds()
	if len(lower) == 0 || len(lower) != len(upper) {
		return nil, fmt.Errorf("problem %s has invalid bounds: %d lower, %d upper", problem.Name(), len(lower), len(upper))
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &GA{
		problem:   problem,
		config:    cfg,
		lower:     lower,
		upper:     upper,
		evaluator: framework.NewEvaluator(problem),
		rng:       rand.New(rand.NewPCG(seed, seed)),
	}, nil
}

func (g *GA) Name() string {
	return Name
}

// Initialize creates an initial random population of individuals
func (g *GA) Initialize() []Individual {
	population := make([]Individual, g.config.PopSize)
	for i := range population {
		vars := framework.RandomVector(g.rng, g.lower, g.upper)
		population[i] = Individual{
			Variables: vars,
			Fitness:   g.evaluator.Evaluate(vars),
		}
	}
	return population
}

// TournamentSelect runs a binary tournament.
func (g *GA) TournamentSelect(population []Individual) Individual {
	best := population[g.rng.IntN(len(population))]
	contestant := population[g.rng.IntN(len(population))]
	if contestant.Fitness < best.Fitness {
		best = contestant
	}
	return best
}

func (g *GA) breed(population []Individual) []Individual {
	offspring := make([]Individual, 0, g.config.PopSize)
	for len(offspring) < g.config.PopSize {
		parent1 := g.TournamentSelect(population)
		parent2 := g.TournamentSelect(population)

		child1, child2 := framework.SBXCrossover(g.rng, parent1.Variables, parent2.Variables,
			g.lower, g.upper, g.config.CrossoverRate, g.config.DistributionIndex)

		for _, child := range [][]float64{child1, child2} {
			if len(offspring) == g.config.PopSize {
				break
			}
			child = framework.PolynomialMutation(g.rng, child, g.lower, g.upper,
				g.config.DistributionIndex, g.config.MutationRate)
			offspring = append(offspring, Individual{
				Variables: child,
				Fitness:   g.evaluator.Evaluate(child),
			})
		}
	}
	return offspring
}

// Result is the outcome of Run.
type Result struct {
	Best        Individual
	Generations int
	Evaluations int
	Trace       framework.Trace
}

// Run executes the GA until the generation or evaluation budget is spent.
func (g *GA) Run(ctx context.Context) (*Result, error) {
	logger := klog.FromContext(ctx)

	population := g.Initialize()
	byFitness := func(a, b Individual) int {
		switch {
		case a.Fitness < b.Fitness:
			return -1
		case a.Fitness > b.Fitness:
			return 1
		}
		return 0
	}
	slices.SortStableFunc(population, byFitness)

	res := &Result{}
	record := func() {
		res.Trace = append(res.Trace, framework.ProgressPoint{
			Evaluations: g.evaluator.Count(),
			BestFitness: population[0].Fitness,
		})
	}
	record()

	for gen := 0; gen < g.config.NumGenerations; gen++ {
		if err := ctx.Err(); err != nil {
			res.Best = population[0]
			res.Evaluations = g.evaluator.Count()
			return res, err
		}

		combined := append(slices.Clone(population), g.breed(population)...)
		slices.SortStableFunc(combined, byFitness)
		population = combined[:g.config.PopSize]

		res.Generations++
		record()
		logger.V(5).Info("GA generation done", "problem", g.problem.Name(), "generation", res.Generations, "bestFitness", population[0].Fitness)

		if g.config.MaxEvaluations > 0 && g.evaluator.Count() >= g.config.MaxEvaluations {
			break
		}
	}

	res.Best = population[0]
	res.Evaluations = g.evaluator.Count()
	logger.V(2).Info("GA run finished", "problem", g.problem.Name(), "generations", res.Generations, "evaluations", res.Evaluations, "bestFitness", res.Best.Fitness)
	return res, nil
}
