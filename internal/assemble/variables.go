package assemble

import (
	"fmt"

	"transplan/internal/lp"
)

// declareFlowVars creates one flow variable per (product, odpair, path) x
// serving mode-vehicle x year x live vintage. Pseudo-vehicles carry a
// single synthetic vintage equal to the year: without unit tracking there
// is no cohort dimension to spread flow over.
func (b *Builder) declareFlowVars() {
	for _, op := range b.sets.OdPaths {
		od := b.odpair(op.OdpairID)
		for _, mv := range b.sets.VehiclesFor(b.ref, od) {
			for _, y := range b.h.Years() {
				if mv.Pseudo {
					k := FlowKey{Odpair: od.ID, Path: op.PathID, Vehicle: mv.VehicleID, Year: y, Vintage: y}
					b.vars.Flow[k] = b.m.AddContinuous(flowName(k))
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
					k := FlowKey{Odpair: od.ID, Path: op.PathID, Vehicle: mv.VehicleID, Year: y, Vintage: g}
					b.vars.Flow[k] = b.m.AddContinuous(flowName(k))
				}
			}
		}
	}
}

// declareFleetVars creates the four linked cohort quantities for every
// (odpair, vehicle, year, vintage) cell with vintage <= year. Cells the
// transition engine marks impossible keep their variables, pinned to zero,
// so stock accounting is total over the (y,g) table. Pseudo-vehicles get a
// single pinned-to-zero cohort per year: their modes are not quantified by
// vehicles.
func (b *Builder) declareFleetVars() {
	for _, od := range b.ref.Odpairs() {
		for _, mv := range b.sets.VehiclesFor(b.ref, od) {
			if mv.Pseudo {
				for _, y := range b.h.Years() {
					k := CohortKey{Odpair: od.ID, Vehicle: mv.VehicleID, Year: y, Vintage: y}
					b.vars.Stock[k] = b.m.AddFixed(cohortName("h", k), 0)
					b.vars.Carried[k] = b.m.AddFixed(cohortName("hex", k), 0)
					b.vars.Purchased[k] = b.m.AddFixed(cohortName("hpl", k), 0)
					b.vars.Retired[k] = b.m.AddFixed(cohortName("hmin", k), 0)
				}
				continue
			}
			for _, y := range b.h.Years() {
				for g := b.h.FirstVintage(); g <= y; g++ {
					k := CohortKey{Odpair: od.ID, Vehicle: mv.VehicleID, Year: y, Vintage: g}
					b.vars.Stock[k] = b.m.AddContinuous(cohortName("h", k))
					b.vars.Carried[k] = b.m.AddContinuous(cohortName("hex", k))
					b.vars.Purchased[k] = b.m.AddContinuous(cohortName("hpl", k))
					b.vars.Retired[k] = b.m.AddContinuous(cohortName("hmin", k))
				}
			}
		}
	}
}

// declareInfraVars creates the additive capacity expansion decisions, one
// per investment period. Fueling capacity follows the layout the index-set
// derivation chose; mode infrastructure lives on edges, supply on nodes.
func (b *Builder) declareInfraVars() {
	for _, fi := range b.sets.FuelInfra {
		for _, gid := range b.nodeLocs {
			for _, p := range b.periods {
				k := FuelInfraKey{Fuel: fi.FuelID, Type: fi.TypeID, Geo: gid, Period: p}
				b.vars.FuelInfra[k] = b.m.AddContinuous(fmt.Sprintf("qf_f%d_t%d_l%d_p%d", k.Fuel, k.Type, k.Geo, k.Period))
			}
		}
	}
	for _, m := range b.ref.Modes() {
		for _, gid := range b.edgeLocs {
			for _, p := range b.periods {
				k := ModeInfraKey{Mode: m.ID, Geo: gid, Period: p}
				b.vars.ModeInfra[k] = b.m.AddContinuous(fmt.Sprintf("qm_m%d_l%d_p%d", k.Mode, k.Geo, k.Period))
			}
		}
	}
	for _, f := range b.ref.Fuels() {
		for _, gid := range b.nodeLocs {
			for _, p := range b.periods {
				k := SupplyKey{Fuel: f.ID, Geo: gid, Period: p}
				b.vars.Supply[k] = b.m.AddContinuous(fmt.Sprintf("qs_f%d_l%d_p%d", k.Fuel, k.Geo, k.Period))
			}
		}
	}
}

func flowName(k FlowKey) string {
	return fmt.Sprintf("f_o%d_p%d_v%d_y%d_g%d", k.Odpair, k.Path, k.Vehicle, k.Year, k.Vintage)
}

func cohortName(prefix string, k CohortKey) string {
	return fmt.Sprintf("%s_o%d_v%d_y%d_g%d", prefix, k.Odpair, k.Vehicle, k.Year, k.Vintage)
}

// cohortVar fetches a declared cohort variable; absence is an assembler
// bug, never a data error.
func (b *Builder) cohortVar(m map[CohortKey]lp.VarID, k CohortKey) lp.VarID {
	id, ok := m[k]
	if !ok {
		panic(fmt.Sprintf("assemble: cohort variable missing for %+v", k))
	}
	return id
}

// flowVar fetches a declared flow variable. A bare map read would alias
// variable 0 on a miss; constraint families must only reference keys the
// declaration pass created.
func (b *Builder) flowVar(k FlowKey) lp.VarID {
	id, ok := b.vars.Flow[k]
	if !ok {
		panic(fmt.Sprintf("assemble: flow variable missing for %+v", k))
	}
	return id
}
