package results

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transplan/internal/assemble"
	"transplan/internal/config"
	"transplan/internal/indexset"
	"transplan/internal/model"
	"transplan/internal/solver"
)

func years(v float64) []float64 { return []float64{v, v, v} }
func vints(v float64) []float64 { return []float64{v, v, v, v, v} }
func vintsInt(n int) []int      { return []int{n, n, n, n, n} }

func smallPlan(t *testing.T) *assemble.Plan {
	t.Helper()
	in := model.Input{
		Geos: []model.GeographicElement{
			{ID: 1, Name: "origin", Kind: model.GeoNode, CarbonPrice: years(0)},
			{ID: 2, Name: "destination", Kind: model.GeoNode, CarbonPrice: years(0)},
			{ID: 3, Name: "corridor", Kind: model.GeoEdge, LengthKM: 100, CarbonPrice: years(0)},
		},
		Paths:    []model.Path{{ID: 1, LengthKM: 100, ElementIDs: []int{1, 3, 2}}},
		Products: []model.Product{{ID: 1, Name: "freight"}},
		Fuels:    []model.Fuel{{ID: 1, Name: "diesel", CostPerKWh: years(0.1), EmissionFactor: 0.0003}},
		Technologies: []model.Technology{
			{ID: 1, Name: "ice", FuelID: 1},
		},
		Modes:        []model.Mode{{ID: 1, Name: "road", QuantifyByVehs: true, SpeedKPH: 60}},
		Vehicletypes: []model.Vehicletype{{ID: 1, Name: "truck", ModeID: 1, ProductIDs: []int{1}}},
		TechVehicles: []model.TechVehicle{
			{ID: 1, VehicletypeID: 1, TechnologyID: 1,
				CapitalCost: vints(100000), Subsidy: vints(0), MaintAnnual: vints(1000), MaintPerKM: vints(0.1),
				PayloadT: vints(20), SpecCons: vints(3), Lifetime: vintsInt(8), AnnualRange: vints(100000),
				TankKWh: vints(1000), PeakFuelKW: vints(500)},
		},
		Odpairs: []model.Odpair{{
			ID: 1, OriginID: 1, DestinationID: 2, PathIDs: []int{1},
			Demand: years(100000), ProductID: 1, FinancialStatusID: 1, RegiontypeID: 1,
		}},
		FinancialStatus: []model.FinancialStatus{{ID: 1, Name: "public"}},
		Regiontypes:     []model.Regiontype{{ID: 1, Name: "flat", SpeedFactor: 1}},
	}
	cfg := config.Default()
	cfg.HorizonStart = 2030
	cfg.HorizonYears = 3
	cfg.PreVintages = 2
	cfg.InfraPeriodYears = 3

	ref, err := model.Build(in, cfg.Horizon())
	require.NoError(t, err)
	plan, err := assemble.New(ref, indexset.Build(ref), cfg).Build()
	require.NoError(t, err)
	return plan
}

func fakeSolve(t *testing.T, plan *assemble.Plan) *solver.Solution {
	t.Helper()
	sol, err := (&solver.Fake{Objective: 7.25}).Solve(context.Background(), plan.Model)
	require.NoError(t, err)
	return sol
}

func TestFromSolutionExtractsRecords(t *testing.T) {
	plan := smallPlan(t)
	sol := fakeSolve(t, plan)
	sol.Values["f_o1_p1_v1_y2031_g2030"] = 1200
	sol.Values["f_o1_p1_v1_y2030_g2029"] = 800
	sol.Values["h_o1_v1_y2030_g2030"] = 5
	sol.Values["hpl_o1_v1_y2030_g2030"] = 5
	sol.Values["qf_f1_t0_l1_p2030"] = 150

	r, err := FromSolution(plan, sol)
	require.NoError(t, err)
	assert.Equal(t, solver.StatusOptimal, r.Status)
	assert.Equal(t, 7.25, r.Objective)

	require.Len(t, r.Flows, 2)
	// sorted by (odpair, path, vehicle, year, vintage)
	assert.Equal(t, 2030, r.Flows[0].Year)
	assert.Equal(t, 800.0, r.Flows[0].Tonnes)
	assert.Equal(t, 2031, r.Flows[1].Year)

	require.Len(t, r.Fleet, 1)
	fl := r.Fleet[0]
	assert.Equal(t, 1, fl.VehicleID)
	assert.Equal(t, 5.0, fl.Stock)
	assert.Equal(t, 5.0, fl.Purchased)
	assert.Zero(t, fl.Retired)

	require.Len(t, r.Fueling, 1)
	assert.Equal(t, FuelingExpansion{FuelID: 1, GeoID: 1, Period: 2030, KW: 150}, r.Fueling[0])

	assert.Empty(t, r.Budget, "no slack variables in an unbounded budget class")
	assert.Empty(t, r.Detours)
}

func TestFromSolutionSuppressesNoise(t *testing.T) {
	plan := smallPlan(t)
	sol := fakeSolve(t, plan)
	sol.Values["f_o1_p1_v1_y2030_g2030"] = 5e-10

	r, err := FromSolution(plan, sol)
	require.NoError(t, err)
	assert.Empty(t, r.Flows, "values at solver noise level must be dropped")
}

func TestFromSolutionWithoutValues(t *testing.T) {
	plan := smallPlan(t)
	r, err := FromSolution(plan, &solver.Solution{Status: solver.StatusInfeasible})
	require.NoError(t, err)
	assert.Equal(t, solver.StatusInfeasible, r.Status)
	assert.Empty(t, r.Flows)
	assert.Empty(t, r.Fleet)
}

func TestFromSolutionMissingVariable(t *testing.T) {
	plan := smallPlan(t)
	sol := fakeSolve(t, plan)
	delete(sol.Values, "h_o1_v1_y2030_g2030")

	_, err := FromSolution(plan, sol)
	assert.Error(t, err)
}
