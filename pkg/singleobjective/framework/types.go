package framework

// ObjectiveFunc maps a candidate vector to a scalar cost. Lower is better.
type ObjectiveFunc func([]float64) float64

// Problem describes the contract a single-objective minimization problem needs to implement.
// The dimensionality of the problem is len(LowerBounds()).
type Problem interface {
	Name() string

	LowerBounds() []float64
	UpperBounds() []float64

	ObjectiveFunc() ObjectiveFunc

	// KnownOptimum is optional. Problems without a known global minimum
	// return false.
	KnownOptimum() (float64, bool)
}

// Algorithm describes the contract that an optimizer needs to implement.
type Algorithm interface {
	Name() string
}

// ProgressPoint is one sample of an optimizer's convergence trace: the best
// fitness found after a given number of fitness evaluations.
type ProgressPoint struct {
	Evaluations int     `json:"evaluations"`
	BestFitness float64 `json:"bestFitness"`
}

// Trace is the convergence history of a single run, ordered by evaluations.
type Trace []ProgressPoint
