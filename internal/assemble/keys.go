package assemble

import "transplan/internal/lp"

// Typed variable keys. Results are mapped back from the solver through
// these maps, so every family keeps the exact index tuple it was declared
// under.

// FlowKey indexes transported tonnes per year on one path by one vehicle
// cohort.
type FlowKey struct {
	Odpair  int
	Path    int
	Vehicle int
	Year    int
	Vintage int
}

// CohortKey indexes the four fleet quantities of one (route, vehicle,
// year, vintage) cell.
type CohortKey struct {
	Odpair  int
	Vehicle int
	Year    int
	Vintage int
}

// FuelInfraKey indexes a fueling-capacity expansion decision. Type is zero
// in the simple layout.
type FuelInfraKey struct {
	Fuel   int
	Type   int
	Geo    int
	Period int
}

type ModeInfraKey struct {
	Mode   int
	Geo    int
	Period int
}

type SupplyKey struct {
	Fuel   int
	Geo    int
	Period int
}

// BudgetKey indexes the soft-constraint slack of one odpair and budget
// block.
type BudgetKey struct {
	Odpair     int
	BlockStart int
}

// DetourKey indexes aggregate detour hours per odpair and fuel.
type DetourKey struct {
	Odpair int
	Fuel   int
	Year   int
}

// RuleKey indexes the activation binary of one detour reduction rule.
type RuleKey struct {
	Rule int
	Year int
}

// Vars collects every declared decision variable by its typed key.
type Vars struct {
	Flow      map[FlowKey]lp.VarID
	Stock     map[CohortKey]lp.VarID
	Carried   map[CohortKey]lp.VarID
	Purchased map[CohortKey]lp.VarID
	Retired   map[CohortKey]lp.VarID

	FuelInfra map[FuelInfraKey]lp.VarID
	ModeInfra map[ModeInfraKey]lp.VarID
	Supply    map[SupplyKey]lp.VarID

	BudgetOver  map[BudgetKey]lp.VarID
	BudgetUnder map[BudgetKey]lp.VarID

	Detour     map[DetourKey]lp.VarID
	RuleActive map[RuleKey]lp.VarID
}

func newVars() *Vars {
	return &Vars{
		Flow:        map[FlowKey]lp.VarID{},
		Stock:       map[CohortKey]lp.VarID{},
		Carried:     map[CohortKey]lp.VarID{},
		Purchased:   map[CohortKey]lp.VarID{},
		Retired:     map[CohortKey]lp.VarID{},
		FuelInfra:   map[FuelInfraKey]lp.VarID{},
		ModeInfra:   map[ModeInfraKey]lp.VarID{},
		Supply:      map[SupplyKey]lp.VarID{},
		BudgetOver:  map[BudgetKey]lp.VarID{},
		BudgetUnder: map[BudgetKey]lp.VarID{},
		Detour:      map[DetourKey]lp.VarID{},
		RuleActive:  map[RuleKey]lp.VarID{},
	}
}
