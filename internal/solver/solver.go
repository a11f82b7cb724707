// Package solver hands an assembled program to an external LP/MIP solver
// and maps the result back to named variable values. The model builder
// stays solver-agnostic; adapters only deal in the lp IR.
package solver

import (
	"context"

	"transplan/internal/lp"
)

type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusInfeasible Status = "infeasible"
	StatusUnbounded  Status = "unbounded"
	StatusTimeLimit  Status = "time_limit"
	StatusError      Status = "error"
)

// Solution is the solver's answer. Values maps variable names to their
// primal values; it is populated for optimal and time-limit (incumbent)
// outcomes and empty otherwise.
type Solution struct {
	Status    Status
	Objective float64
	Values    map[string]float64
}

// Adapter solves one model. Implementations must honor ctx cancellation.
type Adapter interface {
	Solve(ctx context.Context, m *lp.Model) (*Solution, error)
}
