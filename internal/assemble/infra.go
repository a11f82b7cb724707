package assemble

import (
	"fmt"

	"transplan/internal/indexset"
	"transplan/internal/lp"
	"transplan/internal/model"
)

// fuelingInfraSizing requires utilized fueling capacity at every node to
// cover the energy the flows crossing it draw. In the extended layout the
// types of one fuel jointly cover its aggregate energy, and route-tracked
// types additionally serve each route on their own; the simple layout
// collapses the type dimension into one aggregate pair per fuel.
func (b *Builder) fuelingInfraSizing() {
	for _, gid := range b.nodeLocs {
		for _, f := range b.ref.Fuels() {
			pairs := b.fuelPairs(f.ID)
			if len(pairs) == 0 {
				continue
			}
			for _, y := range b.h.Years() {
				need := b.nodeEnergy(f.ID, gid, y, 0)
				if need.Empty() {
					continue
				}
				// aggregate coverage across the fuel's capacity pairs
				e := need
				base := 0.0
				for _, fi := range pairs {
					g := b.pairGamma(fi)
					for _, p := range b.periods {
						if p > y {
							break
						}
						e.Add(-g*HoursPerYear, b.vars.FuelInfra[FuelInfraKey{Fuel: fi.FuelID, Type: fi.TypeID, Geo: gid, Period: p}])
					}
					base += g * HoursPerYear * b.fuelingBaselineKW(fi.FuelID, fi.TypeID, gid)
				}
				b.m.AddLe(fmt.Sprintf("fuelcap_f%d_l%d_y%d", f.ID, gid, y), e, base)
			}
		}
	}

	// route-tracked pairs serve each route individually
	for _, fi := range b.sets.RouteTracked {
		g := b.pairGamma(fi)
		for _, gid := range b.nodeLocs {
			for _, od := range b.ref.Odpairs() {
				for _, y := range b.h.Years() {
					need := b.nodeEnergy(fi.FuelID, gid, y, od.ID)
					if need.Empty() {
						continue
					}
					e := need
					for _, p := range b.periods {
						if p > y {
							break
						}
						e.Add(-g*HoursPerYear, b.vars.FuelInfra[FuelInfraKey{Fuel: fi.FuelID, Type: fi.TypeID, Geo: gid, Period: p}])
					}
					base := g * HoursPerYear * b.fuelingBaselineKW(fi.FuelID, fi.TypeID, gid)
					b.m.AddLe(fmt.Sprintf("routecap_f%d_t%d_l%d_o%d_y%d", fi.FuelID, fi.TypeID, gid, od.ID, y), e, base)
				}
			}
		}
	}
}

// modeInfraSizing requires utilized mode capacity on every edge to cover
// the tonne-kilometers flowing over it, per mode.
func (b *Builder) modeInfraSizing() {
	for _, m := range b.ref.Modes() {
		for _, gid := range b.edgeLocs {
			lkm := b.geo(gid).LengthKM
			for _, y := range b.h.Years() {
				var e lp.Expr
				for _, q := range b.sets.EdgeElems {
					if q.GeoID != gid {
						continue
					}
					od := b.odpair(q.OdpairID)
					for _, mv := range b.sets.VehiclesFor(b.ref, od) {
						if mv.ModeID != m.ID {
							continue
						}
						for _, fk := range b.flowKeys(od.ID, q.PathID, mv, y) {
							e.Add(lkm, b.flowVar(fk))
						}
					}
				}
				if e.Empty() {
					continue
				}
				for _, p := range b.periods {
					if p > y {
						break
					}
					e.Add(-b.cfg.Gamma, b.vars.ModeInfra[ModeInfraKey{Mode: m.ID, Geo: gid, Period: p}])
				}
				base := b.cfg.Gamma * b.modeBaselineUkm(m.ID, gid)
				b.m.AddLe(fmt.Sprintf("modecap_m%d_l%d_y%d", m.ID, gid, y), e, base)
			}
		}
	}
}

// supplySizing bounds the energy drawn at a node by the fuel supply
// installed there, without a utilization discount.
func (b *Builder) supplySizing() {
	for _, f := range b.ref.Fuels() {
		for _, gid := range b.nodeLocs {
			for _, y := range b.h.Years() {
				e := b.nodeEnergy(f.ID, gid, y, 0)
				if e.Empty() {
					continue
				}
				for _, p := range b.periods {
					if p > y {
						break
					}
					e.Add(-HoursPerYear, b.vars.Supply[SupplyKey{Fuel: f.ID, Geo: gid, Period: p}])
				}
				base := HoursPerYear * b.supplyBaselineKW(f.ID, gid)
				b.m.AddLe(fmt.Sprintf("supply_f%d_l%d_y%d", f.ID, gid, y), e, base)
			}
		}
	}
}

// nodeEnergy builds the kWh/year the flows of one fuel draw at a node,
// attributing each path's route energy evenly over its nodes. odFilter
// restricts to one odpair when non-zero.
func (b *Builder) nodeEnergy(fuelID, geoID, year, odFilter int) lp.Expr {
	var e lp.Expr
	for _, q := range b.sets.NodeElems {
		if q.GeoID != geoID {
			continue
		}
		if odFilter != 0 && q.OdpairID != odFilter {
			continue
		}
		od := b.odpair(q.OdpairID)
		p := b.path(q.PathID)
		nn := b.pathNodeCount(p.ID)
		for _, mv := range b.sets.VehiclesFor(b.ref, od) {
			if mv.Pseudo {
				continue // non-vehicle modes draw no tracked fuel
			}
			v := b.tv(mv.VehicleID)
			if b.vehicleFuel(v).ID != fuelID {
				continue
			}
			for _, g := range b.h.Vintages() {
				if g > year {
					break
				}
				if !b.flowAlive(v, year, g) {
					continue
				}
				coef := b.specCons(v, g) * p.LengthKM / (b.payload(v, g) * float64(nn))
				e.Add(coef, b.flowVar(FlowKey{Odpair: od.ID, Path: p.ID, Vehicle: v.ID, Year: year, Vintage: g}))
			}
		}
	}
	return e
}

// flowKeys lists the live flow keys of one (odpair, path, mode-vehicle)
// in a year.
func (b *Builder) flowKeys(odID, pathID int, mv indexset.ModeVehicle, y int) []FlowKey {
	if mv.Pseudo {
		return []FlowKey{{Odpair: odID, Path: pathID, Vehicle: mv.VehicleID, Year: y, Vintage: y}}
	}
	v := b.tv(mv.VehicleID)
	var out []FlowKey
	for _, g := range b.h.Vintages() {
		if g > y {
			break
		}
		if !b.flowAlive(v, y, g) {
			continue
		}
		out = append(out, FlowKey{Odpair: odID, Path: pathID, Vehicle: v.ID, Year: y, Vintage: g})
	}
	return out
}

func (b *Builder) pathNodeCount(pathID int) int {
	n := 0
	for _, gid := range b.path(pathID).ElementIDs {
		if b.geo(gid).Kind == model.GeoNode {
			n++
		}
	}
	if n == 0 {
		n = 1
	}
	return n
}

func (b *Builder) pairGamma(fi indexset.FuelInfra) float64 {
	if fi.TypeID == 0 {
		return b.cfg.Gamma
	}
	return b.itype(fi.TypeID).Gamma
}

// fuelPairs returns the capacity pairs covering one fuel in the active
// layout.
func (b *Builder) fuelPairs(fuelID int) []indexset.FuelInfra {
	var out []indexset.FuelInfra
	for _, fi := range b.sets.FuelInfra {
		if fi.FuelID == fuelID {
			out = append(out, fi)
		}
	}
	return out
}

func (b *Builder) fuelingBaselineKW(fuelID, typeID, geoID int) float64 {
	total := 0.0
	for _, r := range b.ref.FuelingBaseline() {
		if r.FuelID == fuelID && r.InfrastructureTypeID == typeID && r.GeoID == geoID {
			total += r.InstalledKW
		}
	}
	return total
}

func (b *Builder) modeBaselineUkm(modeID, geoID int) float64 {
	total := 0.0
	for _, r := range b.ref.ModeBaseline() {
		if r.ModeID == modeID && r.GeoID == geoID {
			total += r.InstalledUkm
		}
	}
	return total
}

func (b *Builder) supplyBaselineKW(fuelID, geoID int) float64 {
	total := 0.0
	for _, r := range b.ref.SupplyBaseline() {
		if r.FuelID == fuelID && r.GeoID == geoID {
			total += r.InstalledKW
		}
	}
	return total
}
