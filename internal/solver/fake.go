package solver

import (
	"context"

	"transplan/internal/lp"
)

// Fake returns a canned solution without running anything. Used in tests
// and in deployments that only want model validation and export.
type Fake struct {
	Status    Status
	Objective float64
	Values    map[string]float64
	Err       error
}

func (f *Fake) Solve(_ context.Context, m *lp.Model) (*Solution, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	st := f.Status
	if st == "" {
		st = StatusOptimal
	}
	vals := f.Values
	if vals == nil && (st == StatusOptimal || st == StatusTimeLimit) {
		// every variable at its lower bound keeps downstream mapping total
		vals = make(map[string]float64, len(m.Vars()))
		for _, v := range m.Vars() {
			vals[v.Name] = v.Lo
		}
	}
	return &Solution{Status: st, Objective: f.Objective, Values: vals}, nil
}
