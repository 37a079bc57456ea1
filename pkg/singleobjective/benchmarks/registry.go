package benchmarks

import (
	"fmt"
	"slices"

	"github.com/mihai-snyk/emas/pkg/singleobjective/framework"
)

// Factory builds a benchmark problem with the given dimensionality.
type Factory func(numVars int) framework.Problem

var registry = map[string]Factory{
	RastriginName: func(n int) framework.Problem { return NewRastrigin(n) },
	SphereName:    func(n int) framework.Problem { return NewSphere(n) },
	SchwefelName:  func(n int) framework.Problem { return NewSchwefel(n) },
	SchafferName:  func(n int) framework.Problem { return NewSchaffer(n) },
}

// New returns the named benchmark problem.
func New(name string, numVars int) (framework.Problem, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown benchmark %q, want one of %v", name, Names())
	}
	if numVars <= 0 {
		return nil, fmt.Errorf("benchmark %s needs a positive number of variables, got %d", name, numVars)
	}
	return f(numVars), nil
}

// Names lists the registered benchmarks in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
