package emas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"sigs.k8s.io/yaml"
)

// FightPolicy selects how energy moves between two fighting agents.
type FightPolicy string

const (
	// WinnerTakesAll moves the loser's whole balance to the winner.
	WinnerTakesAll FightPolicy = "winner-takes-all"
	// Attritional moves only a fraction (FightLossEnergy) of the loser's balance.
	Attritional FightPolicy = "attritional"
)

// Config holds the EMAS hyperparameters. It is immutable for the lifetime of a run.
type Config struct {
	// StartEnergy is the energy of every agent of the initial population.
	StartEnergy int `json:"startEnergy" toml:"startEnergy"`
	// MutationProbability is the base gate for mutating a newborn. It is halved
	// for newborns better than the population average and doubled otherwise.
	MutationProbability float64 `json:"mutation_probability" toml:"mutation_probability"`
	// MutationElementProbability is the per-element mutation probability.
	// Zero means 1/n.
	MutationElementProbability float64 `json:"mutation_element_probability" toml:"mutation_element_probability"`
	// CrossoverProbability selects the parent order handed to the crossover.
	CrossoverProbability float64 `json:"crossover_probability" toml:"crossover_probability"`
	// DistributionIndex is the shape parameter of the polynomial mutation.
	DistributionIndex float64 `json:"distribution_index" toml:"distribution_index"`
	// FightLossEnergy is the fraction of the loser's energy transferred by an
	// attritional fight. Winner-takes-all fights ignore it.
	FightLossEnergy float64 `json:"fightLossEnergy" toml:"fightLossEnergy"`
	// MinFightEnergyLoss is the lower bound of an attritional transfer.
	MinFightEnergyLoss float64 `json:"minFightEnergyLoss" toml:"minFightEnergyLoss"`
	// ReproduceLossEnergy is the fraction of each parent's energy spent on reproduction.
	ReproduceLossEnergy float64 `json:"reproduceLossEnergy" toml:"reproduceLossEnergy"`
	// FightReqEnergy is the energy an agent must exceed to fight.
	FightReqEnergy float64 `json:"fightReqEnergy" toml:"fightReqEnergy"`
	// ReproduceReqEnergy is the energy an agent must exceed to reproduce.
	ReproduceReqEnergy float64 `json:"reproduceReqEnergy" toml:"reproduceReqEnergy"`
	FightPolicy        FightPolicy `json:"fightPolicy" toml:"fightPolicy"`

	// InitialPopulation is the number of agents created by Initialize.
	InitialPopulation int `json:"numberOfAgents" toml:"numberOfAgents"`
	// MaxEvaluations stops Run once this many fitness evaluations were spent.
	// Zero disables the limit.
	MaxEvaluations int `json:"maxEvaluations" toml:"maxEvaluations"`
	// Seed of the instance random stream. Zero picks a random seed.
	Seed uint64 `json:"seed" toml:"seed"`
}

// DefaultConfig returns the reference settings.
func DefaultConfig() Config {
	return Config{
		StartEnergy:                100,
		MutationProbability:        0.5,
		MutationElementProbability: 0,
		CrossoverProbability:       0.5,
		DistributionIndex:          0.2,
		FightLossEnergy:            0.2,
		MinFightEnergyLoss:         0,
		ReproduceLossEnergy:        0.25,
		FightReqEnergy:             0,
		ReproduceReqEnergy:         0,
		FightPolicy:                WinnerTakesAll,
		InitialPopulation:          50,
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var allErrs field.ErrorList

	if c.StartEnergy < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("startEnergy"), c.StartEnergy, "must be non-negative"))
	}
	probabilities := []struct {
		name  string
		value float64
	}{
		{"mutation_probability", c.MutationProbability},
		{"mutation_element_probability", c.MutationElementProbability},
		{"crossover_probability", c.CrossoverProbability},
		{"fightLossEnergy", c.FightLossEnergy},
		{"reproduceLossEnergy", c.ReproduceLossEnergy},
	}
	for _, p := range probabilities {
		if p.value < 0 || p.value > 1 {
			allErrs = append(allErrs, field.Invalid(field.NewPath(p.name), p.value, "must be in [0, 1]"))
		}
	}
	if c.DistributionIndex <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("distribution_index"), c.DistributionIndex, "must be positive"))
	}
	if c.MinFightEnergyLoss < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("minFightEnergyLoss"), c.MinFightEnergyLoss, "must be non-negative"))
	}
	switch c.FightPolicy {
	case WinnerTakesAll, Attritional:
	default:
		allErrs = append(allErrs, field.NotSupported(field.NewPath("fightPolicy"), c.FightPolicy, []string{string(WinnerTakesAll), string(Attritional)}))
	}
	if c.InitialPopulation <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("numberOfAgents"), c.InitialPopulation, "must be positive"))
	}
	if c.MaxEvaluations < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("maxEvaluations"), c.MaxEvaluations, "must be non-negative"))
	}

	return allErrs.ToAggregate()
}

// LoadConfig overlays the settings found in path on top of DefaultConfig.
// YAML and JSON files are decoded with their JSON field names, .toml files
// with their TOML keys.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml", ".json":
		err = yaml.UnmarshalStrict(data, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("decoding %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid EMAS configuration in %s: %w", path, err)
	}
	return cfg, nil
}
