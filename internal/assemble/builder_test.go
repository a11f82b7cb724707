package assemble

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transplan/internal/config"
	"transplan/internal/indexset"
	"transplan/internal/lp"
	"transplan/internal/model"
)

func years(v float64) []float64 { return []float64{v, v, v} }
func vints(v float64) []float64 { return []float64{v, v, v, v, v} }
func vintsInt(n int) []int      { return []int{n, n, n, n, n} }

func testCfg() config.Planner {
	cfg := config.Default()
	cfg.HorizonStart = 2030
	cfg.HorizonYears = 3
	cfg.PreVintages = 2
	cfg.InfraPeriodYears = 3
	return cfg
}

func baseInput() model.Input {
	return model.Input{
		Geos: []model.GeographicElement{
			{ID: 1, Name: "origin", Kind: model.GeoNode, CarbonPrice: years(0)},
			{ID: 2, Name: "destination", Kind: model.GeoNode, CarbonPrice: years(0)},
			{ID: 3, Name: "corridor", Kind: model.GeoEdge, LengthKM: 100, CarbonPrice: years(0)},
		},
		Paths:    []model.Path{{ID: 1, LengthKM: 100, ElementIDs: []int{1, 3, 2}}},
		Products: []model.Product{{ID: 1, Name: "freight"}},
		Fuels: []model.Fuel{
			{ID: 1, Name: "diesel", CostPerKWh: years(0.1), EmissionFactor: 0.0003},
			{ID: 2, Name: "electricity", CostPerKWh: years(0.05)},
		},
		Technologies: []model.Technology{
			{ID: 1, Name: "ice", FuelID: 1},
			{ID: 2, Name: "bev", FuelID: 2},
		},
		Modes: []model.Mode{
			{ID: 1, Name: "road", QuantifyByVehs: true, SpeedKPH: 60},
			{ID: 2, Name: "rail", SpeedKPH: 40, CostPerUkm: years(0.02), EmissionPerUkm: years(0.00001)},
		},
		Vehicletypes: []model.Vehicletype{{ID: 1, Name: "truck", ModeID: 1, ProductIDs: []int{1}}},
		TechVehicles: []model.TechVehicle{
			{ID: 1, VehicletypeID: 1, TechnologyID: 1,
				CapitalCost: vints(100000), Subsidy: vints(0), MaintAnnual: vints(1000), MaintPerKM: vints(0.1),
				PayloadT: vints(20), SpecCons: vints(3), Lifetime: vintsInt(8), AnnualRange: vints(100000),
				TankKWh: vints(1000), PeakFuelKW: vints(500)},
			{ID: 2, VehicletypeID: 1, TechnologyID: 2,
				CapitalCost: vints(150000), Subsidy: vints(10000), MaintAnnual: vints(800), MaintPerKM: vints(0.08),
				PayloadT: vints(18), SpecCons: vints(1.2), Lifetime: vintsInt(8), AnnualRange: vints(90000),
				TankKWh: vints(600), PeakFuelKW: vints(350)},
		},
		InitialStock: []model.InitialVehicleStock{{ID: 1, TechVehicleID: 1, PurchaseYear: 2029, Count: 5}},
		Odpairs: []model.Odpair{{
			ID: 1, OriginID: 1, DestinationID: 2, PathIDs: []int{1},
			Demand: years(100000), ProductID: 1, FinancialStatusID: 1, RegiontypeID: 1,
			InitialStockIDs: []int{1},
		}},
		FinancialStatus: []model.FinancialStatus{{ID: 1, Name: "public"}},
		Regiontypes:     []model.Regiontype{{ID: 1, Name: "flat", SpeedFactor: 1}},
	}
}

func buildPlan(t *testing.T, in model.Input, cfg config.Planner) *Plan {
	t.Helper()
	ref, err := model.Build(in, cfg.Horizon())
	require.NoError(t, err)
	plan, err := New(ref, indexset.Build(ref), cfg).Build()
	require.NoError(t, err)
	return plan
}

func findCon(t *testing.T, m *lp.Model, name string) lp.Constraint {
	t.Helper()
	for _, c := range m.Constraints() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("constraint %q not found", name)
	return lp.Constraint{}
}

func hasCon(m *lp.Model, name string) bool {
	for _, c := range m.Constraints() {
		if c.Name == name {
			return true
		}
	}
	return false
}

func TestBuildBasicShape(t *testing.T) {
	plan := buildPlan(t, baseInput(), testCfg())

	assert.Equal(t, indexset.LayoutSimple, plan.Layout)
	assert.Equal(t, plan.Model.Stats(), plan.Stats)
	assert.Positive(t, plan.Stats.Vars)
	assert.Positive(t, plan.Stats.Constraints)
	// quantified modes only, no detour rules, so the program stays an LP
	assert.Zero(t, plan.Stats.Binaries)
}

func TestBuildDeterministic(t *testing.T) {
	cfg := testCfg()
	a := buildPlan(t, baseInput(), cfg)
	b := buildPlan(t, baseInput(), cfg)

	av, bv := a.Model.Vars(), b.Model.Vars()
	require.Equal(t, len(av), len(bv))
	for i := range av {
		assert.Equal(t, av[i].Name, bv[i].Name, "variable order diverged at %d", i)
	}
	ac, bc := a.Model.Constraints(), b.Model.Constraints()
	require.Equal(t, len(ac), len(bc))
	for i := range ac {
		assert.Equal(t, ac[i].Name, bc[i].Name, "constraint order diverged at %d", i)
	}
}

func TestDemandRowsPerYear(t *testing.T) {
	plan := buildPlan(t, baseInput(), testCfg())
	for _, name := range []string{"demand_o1_y2030", "demand_o1_y2031", "demand_o1_y2032"} {
		c := findCon(t, plan.Model, name)
		assert.Equal(t, lp.EQ, c.Sense)
		assert.Equal(t, 100000.0, c.RHS)
		assert.NotEmpty(t, c.Expr.Terms)
	}
}

func TestSeedStockPinsCarriedVariable(t *testing.T) {
	plan := buildPlan(t, baseInput(), testCfg())

	id, ok := plan.Model.Lookup("hex_o1_v1_y2030_g2029")
	require.True(t, ok)
	v := plan.Model.Var(id)
	assert.Equal(t, 5.0, v.Lo)
	assert.Equal(t, 5.0, v.Hi)

	// the unseeded vehicle carries nothing into the first year
	id, ok = plan.Model.Lookup("hex_o1_v2_y2030_g2029")
	require.True(t, ok)
	v = plan.Model.Var(id)
	assert.Equal(t, 0.0, v.Lo)
	assert.Equal(t, 0.0, v.Hi)
}

func TestPseudoCohortsPinnedToZero(t *testing.T) {
	plan := buildPlan(t, baseInput(), testCfg())
	// pseudo vehicle 3 stands in for the rail mode; one synthetic cohort
	// per year, every quantity fixed at zero
	for _, name := range []string{"h_o1_v3_y2030_g2030", "hex_o1_v3_y2031_g2031", "hpl_o1_v3_y2032_g2032", "hmin_o1_v3_y2030_g2030"} {
		id, ok := plan.Model.Lookup(name)
		require.True(t, ok, name)
		v := plan.Model.Var(id)
		assert.Equal(t, 0.0, v.Lo, name)
		assert.Equal(t, 0.0, v.Hi, name)
	}
}

func TestCohortAccountingRows(t *testing.T) {
	plan := buildPlan(t, baseInput(), testCfg())

	// stock identity for every live cell
	c := findCon(t, plan.Model, "acct_o1_v1_y2030_g2029")
	assert.Equal(t, lp.EQ, c.Sense)

	// a cohort aging past the first year links to its previous stock
	c = findCon(t, plan.Model, "carry_o1_v1_y2031_g2030")
	assert.Equal(t, lp.EQ, c.Sense)
	assert.Equal(t, 0.0, c.RHS)
	assert.Len(t, c.Expr.Terms, 2)
}

func TestBudgetRowsOnlyWhenBounded(t *testing.T) {
	plan := buildPlan(t, baseInput(), testCfg())
	assert.False(t, hasCon(plan.Model, "budget_ub_o1_b2030"))
	assert.False(t, hasCon(plan.Model, "budget_lb_o1_b2030"))
	_, ok := plan.Model.Lookup("bov_o1_b2030")
	assert.False(t, ok, "unconstrained class must not get a slack variable")

	in := baseInput()
	in.FinancialStatus[0].PurchaseUB = 1e6
	plan = buildPlan(t, in, testCfg())
	c := findCon(t, plan.Model, "budget_ub_o1_b2030")
	assert.Equal(t, lp.LE, c.Sense)
	assert.Equal(t, 1e6, c.RHS)
	_, ok = plan.Model.Lookup("bov_o1_b2030")
	assert.True(t, ok)
	_, ok = plan.Model.Lookup("bun_o1_b2030")
	assert.False(t, ok, "no shortfall slack without a lower bound")
	assert.False(t, hasCon(plan.Model, "budget_lb_o1_b2030"))
}

func TestEmissionCapRow(t *testing.T) {
	in := baseInput()
	in.EmissionCaps = []model.EmissionCap{{ID: 1, Year: 2031, CapTonnes: 100}}
	plan := buildPlan(t, in, testCfg())

	c := findCon(t, plan.Model, "emicap_y2031_id1")
	assert.Equal(t, lp.LE, c.Sense)
	assert.Equal(t, 100.0, c.RHS)
	assert.NotEmpty(t, c.Expr.Terms)
	assert.False(t, hasCon(plan.Model, "emicap_y2030_id1"), "cap binds its own year only")
}

func TestShareTargetRow(t *testing.T) {
	in := baseInput()
	in.ShareTargets = []model.ShareTarget{
		{ID: 1, Kind: model.ShareTech, RefID: 2, Year: 2031, Share: 0.5, Sense: model.TargetGE},
	}
	plan := buildPlan(t, in, testCfg())

	c := findCon(t, plan.Model, "share_technology_r2_y2031_id1")
	assert.Equal(t, lp.GE, c.Sense)
	assert.Equal(t, 0.0, c.RHS)
	// subset terms at +1, total terms scaled by -share; the bev subset
	// flows appear in both and partially cancel, so nonzero terms remain
	assert.NotEmpty(t, c.Expr.Terms)
}

func TestDetourRulesAddBinaries(t *testing.T) {
	in := baseInput()
	in.DetourReductions = []model.DetourReduction{
		{ID: 1, GeoID: 1, FuelID: 2, ReductionHours: 0.5, ThresholdKW: 100},
	}
	plan := buildPlan(t, in, testCfg())

	id, ok := plan.Model.Lookup("z_r1_y2030")
	require.True(t, ok)
	v := plan.Model.Var(id)
	assert.Equal(t, lp.Binary, v.Domain)
	assert.Equal(t, 3, plan.Stats.Binaries)

	assert.True(t, hasCon(plan.Model, "detouract_r1_y2031"))
	assert.True(t, hasCon(plan.Model, "detour_o1_f2_y2032"))
	_, ok = plan.Model.Lookup("dt_o1_f2_y2030")
	assert.True(t, ok)
}

func TestInfraVarsFollowPeriods(t *testing.T) {
	cfg := testCfg()
	plan := buildPlan(t, baseInput(), cfg)

	// InfraPeriodYears equals the horizon length, so one period at 2030
	for _, name := range []string{"qf_f1_t0_l1_p2030", "qf_f2_t0_l2_p2030", "qm_m1_l3_p2030", "qs_f1_l1_p2030"} {
		_, ok := plan.Model.Lookup(name)
		assert.True(t, ok, name)
	}
	_, ok := plan.Model.Lookup("qf_f1_t0_l1_p2031")
	assert.False(t, ok, "no mid-period investment variables")

	cfg.InfraPeriodYears = 1
	plan = buildPlan(t, baseInput(), cfg)
	for _, y := range []int{2030, 2031, 2032} {
		_, ok := plan.Model.Lookup(fmt.Sprintf("qf_f1_t0_l1_p%d", y))
		assert.True(t, ok, y)
	}
}

func TestObjectiveNonEmpty(t *testing.T) {
	plan := buildPlan(t, baseInput(), testCfg())
	obj := plan.Model.Objective()
	assert.NotEmpty(t, obj.Terms)
}

// objCoef sums the objective coefficient on one named variable.
func objCoef(m *lp.Model, name string) (float64, bool) {
	id, ok := m.Lookup(name)
	if !ok {
		return 0, false
	}
	sum, found := 0.0, false
	for _, term := range m.Objective().Terms {
		if term.Var == id {
			sum += term.Coef
			found = true
		}
	}
	return sum, found
}

func TestObjectiveCapitalChargedAtPurchaseYear(t *testing.T) {
	plan := buildPlan(t, baseInput(), testCfg())

	// first-year money is undiscounted; capital lands on the purchase decision
	c, ok := objCoef(plan.Model, "hpl_o1_v1_y2030_g2030")
	require.True(t, ok)
	assert.InDelta(t, 100000.0, c, 1e-9)

	// net of subsidy for the bev variant
	c, ok = objCoef(plan.Model, "hpl_o1_v2_y2030_g2030")
	require.True(t, ok)
	assert.InDelta(t, 140000.0, c, 1e-9)

	// a later purchase is discounted
	c, ok = objCoef(plan.Model, "hpl_o1_v1_y2031_g2031")
	require.True(t, ok)
	assert.InDelta(t, 100000.0/1.05, c, 1e-6)

	// annual maintenance never hits the purchase-year cohort itself
	_, ok = objCoef(plan.Model, "h_o1_v1_y2030_g2030")
	assert.False(t, ok, "age-0 stock must not carry annual maintenance")

	// aged stock does, discounted to its year
	c, ok = objCoef(plan.Model, "h_o1_v1_y2031_g2030")
	require.True(t, ok)
	assert.InDelta(t, 1000.0/1.05, c, 1e-6)
}

func TestObjectiveBudgetOverrunPenalty(t *testing.T) {
	in := baseInput()
	in.FinancialStatus[0].PurchaseUB = 1e6
	cfg := testCfg()
	cfg.BudgetPenaltyUB = 42.5
	plan := buildPlan(t, in, cfg)

	c, ok := objCoef(plan.Model, "bov_o1_b2030")
	require.True(t, ok)
	assert.Equal(t, 42.5, c)

	_, ok = objCoef(plan.Model, "bun_o1_b2030")
	assert.False(t, ok, "no shortfall penalty without a lower bound")
}

func TestUndeclaredFlowLookupPanics(t *testing.T) {
	b := &Builder{vars: newVars()}
	assert.Panics(t, func() {
		b.flowVar(FlowKey{Odpair: 1, Path: 1, Vehicle: 1, Year: 2030, Vintage: 2030})
	})
}

func TestConfigValidationFailsBuild(t *testing.T) {
	cfg := testCfg()
	cfg.Gamma = 0
	ref, err := model.Build(baseInput(), testCfg().Horizon())
	require.NoError(t, err)
	_, err = New(ref, indexset.Build(ref), cfg).Build()
	assert.Error(t, err)
}
