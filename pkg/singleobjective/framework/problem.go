package framework

import "math"

// Dimensions returns the number of decision variables of p.
func Dimensions(p Problem) int {
	return len(p.LowerBounds())
}

// UniformBounds expands scalar bounds into per-dimension slices.
func UniformBounds(n int, lower, upper float64) ([]float64, []float64) {
	lb := make([]float64, n)
	ub := make([]float64, n)
	for i := range n {
		lb[i] = lower
		ub[i] = upper
	}
	return lb, ub
}

// FuncProblem adapts a plain objective function and its box bounds to the
// Problem interface.
type FuncProblem struct {
	name  string
	f     ObjectiveFunc
	lower []float64
	upper []float64
}

var _ Problem = &FuncProblem{}

func NewFuncProblem(name string, f ObjectiveFunc, lower, upper []float64) *FuncProblem {
	return &FuncProblem{
		name:  name,
		f:     f,
		lower: lower,
		upper: upper,
	}
}

func (p *FuncProblem) Name() string {
	return p.name
}

func (p *FuncProblem) LowerBounds() []float64 {
	return p.lower
}

func (p *FuncProblem) UpperBounds() []float64 {
	return p.upper
}

func (p *FuncProblem) ObjectiveFunc() ObjectiveFunc {
	return p.f
}

func (p *FuncProblem) KnownOptimum() (float64, bool) {
	return math.NaN(), false
}

// Evaluator wraps a problem's objective function and counts every call.
// It is not safe for concurrent use; each optimizer instance owns one.
type Evaluator struct {
	f     ObjectiveFunc
	count int
}

func NewEvaluator(p Problem) *Evaluator {
	return &Evaluator{f: p.ObjectiveFunc()}
}

// Evaluate returns the cost of x.
func (e *Evaluator) Evaluate(x []float64) float64 {
	e.count++
	return e.f(x)
}

// Count returns the number of evaluations performed so far.
func (e *Evaluator) Count() int {
	return e.count
}
