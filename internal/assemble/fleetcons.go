package assemble

import (
	"fmt"

	"transplan/internal/fleet"
	"transplan/internal/lp"
)

// fleetTransition turns the cohort declarations of the transition engine
// into variable bounds and linear rows. The engine owns the case split;
// this function only transcribes it.
func (b *Builder) fleetTransition() {
	for _, od := range b.ref.Odpairs() {
		for _, mv := range b.sets.VehiclesFor(b.ref, od) {
			if mv.Pseudo {
				continue // pseudo cohorts are declared pinned to zero
			}
			v := b.tv(mv.VehicleID)
			for _, c := range fleet.Transitions(b.fleetParams(od, v)) {
				b.emitCohort(od.ID, v.ID, c)
			}
		}
	}
}

func (b *Builder) emitCohort(odID, vehID int, c fleet.Cohort) {
	k := CohortKey{Odpair: odID, Vehicle: vehID, Year: c.Year, Vintage: c.Vintage}
	stock := b.cohortVar(b.vars.Stock, k)
	carried := b.cohortVar(b.vars.Carried, k)
	purchased := b.cohortVar(b.vars.Purchased, k)
	retired := b.cohortVar(b.vars.Retired, k)

	if c.Case == fleet.CaseNeverExisted {
		b.m.Fix(stock, 0)
		b.m.Fix(carried, 0)
		b.m.Fix(purchased, 0)
		b.m.Fix(retired, 0)
		return
	}

	if !c.StockFree {
		b.m.Fix(stock, 0)
	}
	if !c.PurchasedFree {
		b.m.Fix(purchased, 0)
	}
	if !c.RetiredFree && !c.RetireAll {
		b.m.Fix(retired, 0)
	}

	switch c.Carried {
	case fleet.CarriedZero:
		b.m.Fix(carried, 0)
	case fleet.CarriedSeed:
		b.m.Fix(carried, c.SeedCount)
	case fleet.CarriedPrevStock:
		prev := b.cohortVar(b.vars.Stock, CohortKey{Odpair: odID, Vehicle: vehID, Year: c.Year - 1, Vintage: c.Vintage})
		var link lp.Expr
		link.Add(1, carried).Add(-1, prev)
		b.m.AddEq(fmt.Sprintf("carry_o%d_v%d_y%d_g%d", odID, vehID, c.Year, c.Vintage), link, 0)
	}

	// stock = carried - retired + purchased
	var id lp.Expr
	id.Add(1, stock).Add(-1, carried).Add(1, retired).Add(-1, purchased)
	b.m.AddEq(fmt.Sprintf("acct_o%d_v%d_y%d_g%d", odID, vehID, c.Year, c.Vintage), id, 0)
}
