package assemble

import (
	"fmt"

	"transplan/internal/lp"
)

// detourTime models refueling detours for sparsely supplied fuels. Each
// reduction rule gets a yearly activation binary tied to installed
// capacity at its location; aggregate detour hours per (odpair, fuel)
// shrink as rules activate. Big-M linearization; the activation constant
// is the largest trip count the odpair's demand can generate.
func (b *Builder) detourTime() {
	for _, dt := range b.sets.DetourTuples {
		rule, err := b.ref.DetourReduction(dt.RuleID)
		if err != nil {
			panic(err)
		}
		for _, y := range b.h.Years() {
			rk := RuleKey{Rule: rule.ID, Year: y}
			z := b.m.AddVar(fmt.Sprintf("z_r%d_y%d", rule.ID, y), 0, 1, lp.Binary)
			b.vars.RuleActive[rk] = z

			// threshold * z - installed <= baseline
			var link lp.Expr
			link.Add(rule.ThresholdKW, z)
			base := 0.0
			for _, fi := range b.fuelPairs(rule.FuelID) {
				if rule.InfrastructureTypeID != 0 && fi.TypeID != rule.InfrastructureTypeID {
					continue
				}
				for _, p := range b.periods {
					if p > y {
						break
					}
					if q, ok := b.vars.FuelInfra[FuelInfraKey{Fuel: fi.FuelID, Type: fi.TypeID, Geo: rule.GeoID, Period: p}]; ok {
						link.Add(-1, q)
					}
				}
				base += b.fuelingBaselineKW(fi.FuelID, fi.TypeID, rule.GeoID)
			}
			b.m.AddLe(fmt.Sprintf("detouract_r%d_y%d", rule.ID, y), link, base)
		}
	}

	for _, od := range b.ref.Odpairs() {
		for _, f := range b.ref.Fuels() {
			rules := b.applicableRules(od.ID, f.ID)
			if len(rules) == 0 {
				continue
			}
			wmin := b.minPayload(f.ID)
			if wmin <= 0 {
				continue
			}
			base := 0.0
			for _, rid := range rules {
				r, _ := b.ref.DetourReduction(rid)
				base += r.ReductionHours
			}
			for _, y := range b.h.Years() {
				maxTrips := od.Demand[b.h.YearIndex(y)] / wmin
				dk := DetourKey{Odpair: od.ID, Fuel: f.ID, Year: y}
				dv := b.m.AddContinuous(fmt.Sprintf("dt_o%d_f%d_y%d", od.ID, f.ID, y))
				b.vars.Detour[dk] = dv

				// dt >= base * trips - sum_r reduction_r * maxTrips * z_r
				var e lp.Expr
				e.Add(1, dv)
				for _, pid := range od.PathIDs {
					for _, mv := range b.sets.VehiclesFor(b.ref, od) {
						if mv.Pseudo {
							continue
						}
						v := b.tv(mv.VehicleID)
						if b.vehicleFuel(v).ID != f.ID {
							continue
						}
						for _, g := range b.h.Vintages() {
							if g > y {
								break
							}
							if !b.flowAlive(v, y, g) {
								continue
							}
							e.Add(-base/b.payload(v, g), b.flowVar(FlowKey{Odpair: od.ID, Path: pid, Vehicle: v.ID, Year: y, Vintage: g}))
						}
					}
				}
				for _, rid := range rules {
					r, _ := b.ref.DetourReduction(rid)
					e.Add(r.ReductionHours*maxTrips, b.vars.RuleActive[RuleKey{Rule: rid, Year: y}])
				}
				b.m.AddGe(fmt.Sprintf("detour_o%d_f%d_y%d", od.ID, f.ID, y), e, 0)
			}
		}
	}
}

// applicableRules lists the detour rules of one fuel whose location lies on
// any path of the odpair, in ascending rule-id order.
func (b *Builder) applicableRules(odID, fuelID int) []int {
	od := b.odpair(odID)
	onPath := map[int]bool{}
	for _, pid := range od.PathIDs {
		for _, gid := range b.path(pid).ElementIDs {
			onPath[gid] = true
		}
	}
	var out []int
	for _, dt := range b.sets.DetourTuples {
		if dt.FuelID == fuelID && onPath[dt.GeoID] {
			out = append(out, dt.RuleID)
		}
	}
	return out
}

// minPayload returns the smallest payload over the vehicles and vintages
// of one fuel, the denominator of the big-M trip count.
func (b *Builder) minPayload(fuelID int) float64 {
	min := 0.0
	for _, v := range b.ref.TechVehicles() {
		if b.vehicleFuel(v).ID != fuelID {
			continue
		}
		for _, w := range v.PayloadT {
			if w > 0 && (min == 0 || w < min) {
				min = w
			}
		}
	}
	return min
}
