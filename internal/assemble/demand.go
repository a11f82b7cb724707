package assemble

import (
	"fmt"

	"transplan/internal/lp"
)

// demandCoverage forces the flow summed over paths, serving vehicles, and
// vintages to equal the odpair demand in every year. Excluded combinations
// simply have no flow variable, which is the sparse equivalent of forcing
// them to zero.
func (b *Builder) demandCoverage() {
	for _, od := range b.ref.Odpairs() {
		for _, y := range b.h.Years() {
			var e lp.Expr
			for _, pid := range od.PathIDs {
				for _, mv := range b.sets.VehiclesFor(b.ref, od) {
					if mv.Pseudo {
						e.Add(1, b.flowVar(FlowKey{Odpair: od.ID, Path: pid, Vehicle: mv.VehicleID, Year: y, Vintage: y}))
						continue
					}
					v := b.tv(mv.VehicleID)
					for _, g := range b.h.Vintages() {
						if g > y {
							break
						}
						if !b.flowAlive(v, y, g) {
							continue
						}
						e.Add(1, b.flowVar(FlowKey{Odpair: od.ID, Path: pid, Vehicle: mv.VehicleID, Year: y, Vintage: g}))
					}
				}
			}
			b.m.AddEq(fmt.Sprintf("demand_o%d_y%d", od.ID, y), e, od.Demand[b.h.YearIndex(y)])
		}
	}
}

// vehicleSizing ties flow to fleet: the vehicle-kilometers a cohort's flow
// requires may not exceed the utilized annual range of its stock. Modes not
// quantified by vehicles have no sizing rows; their fleet is pinned to
// zero and their flow participates in demand coverage alone.
func (b *Builder) vehicleSizing() {
	for _, od := range b.ref.Odpairs() {
		for _, mv := range b.sets.VehiclesFor(b.ref, od) {
			if mv.Pseudo {
				continue
			}
			v := b.tv(mv.VehicleID)
			for _, y := range b.h.Years() {
				for _, g := range b.h.Vintages() {
					if g > y {
						break
					}
					if !b.flowAlive(v, y, g) {
						continue
					}
					var e lp.Expr
					w := b.payload(v, g)
					ar := v.AnnualRange[b.h.VintageIndex(g)]
					for _, pid := range od.PathIDs {
						p := b.path(pid)
						// tonnes/yr -> vehicles: f * L / (W * AR)
						e.Add(p.LengthKM/(w*ar), b.flowVar(FlowKey{Odpair: od.ID, Path: pid, Vehicle: v.ID, Year: y, Vintage: g}))
					}
					e.Add(-b.cfg.Gamma, b.vars.Stock[CohortKey{Odpair: od.ID, Vehicle: v.ID, Year: y, Vintage: g}])
					b.m.AddLe(fmt.Sprintf("size_o%d_v%d_y%d_g%d", od.ID, v.ID, y, g), e, 0)
				}
			}
		}
	}
}
