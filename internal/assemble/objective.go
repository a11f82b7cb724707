package assemble

import "transplan/internal/model"

// objective accumulates the discounted system cost: energy and carbon,
// capital net of subsidy at the purchase year, maintenance within
// lifetime, infrastructure capex and opex, time value of travel including
// detours, and the soft-constraint penalties. Every term is attributed to
// exactly one (year, entity) combination.
func (b *Builder) objective() {
	b.flowCosts()
	b.fleetCosts()
	b.infraCosts()
	b.penaltyCosts()
	if b.sets.DetourEnabled {
		b.detourCosts()
	}
}

func (b *Builder) flowCosts() {
	for _, op := range b.sets.OdPaths {
		od := b.odpair(op.OdpairID)
		p := b.path(op.PathID)
		fs := b.fin(od.FinancialStatusID)
		rt := b.region(od.RegiontypeID)
		for _, mv := range b.sets.VehiclesFor(b.ref, od) {
			m := b.mode(mv.ModeID)
			speed := m.SpeedKPH * rt.SpeedFactor
			for _, y := range b.h.Years() {
				yi := b.h.YearIndex(y)
				disc := b.cfg.Discount(y)
				if mv.Pseudo {
					coef := p.LengthKM * m.CostPerUkm[yi]
					coef += b.pathCarbon(p, y) * m.EmissionPerUkm[yi]
					if speed > 0 {
						coef += fs.VoT * (p.LengthKM/speed + m.WaitingHours)
					}
					b.m.AddObjective(disc*coef, b.flowVar(FlowKey{Odpair: od.ID, Path: p.ID, Vehicle: mv.VehicleID, Year: y, Vintage: y}))
					continue
				}
				v := b.tv(mv.VehicleID)
				f := b.vehicleFuel(v)
				for _, g := range b.h.Vintages() {
					if g > y {
						break
					}
					if !b.flowAlive(v, y, g) {
						continue
					}
					w := b.payload(v, g)
					sc := b.specCons(v, g)
					coef := sc * p.LengthKM * f.CostPerKWh[yi] / w            // energy
					coef += sc * b.pathCarbon(p, y) * f.EmissionFactor / w    // carbon
					coef += v.MaintPerKM[b.h.VintageIndex(g)] * p.LengthKM / w // distance maintenance
					if speed > 0 {
						coef += fs.VoT * (p.LengthKM/speed + m.WaitingHours) / w
					}
					b.m.AddObjective(disc*coef, b.flowVar(FlowKey{Odpair: od.ID, Path: p.ID, Vehicle: v.ID, Year: y, Vintage: g}))
				}
			}
		}
	}
}

// pathCarbon sums length-weighted carbon prices over the edges of a path
// for one year; multiplied by an emission factor it prices the CO2 emitted
// along the path.
func (b *Builder) pathCarbon(p *model.Path, y int) float64 {
	total := 0.0
	yi := b.h.YearIndex(y)
	for _, gid := range p.ElementIDs {
		g := b.geo(gid)
		if g.Kind != model.GeoEdge {
			continue
		}
		total += g.LengthKM * g.CarbonPrice[yi]
	}
	return total
}

func (b *Builder) fleetCosts() {
	for _, od := range b.ref.Odpairs() {
		for _, mv := range b.sets.VehiclesFor(b.ref, od) {
			if mv.Pseudo {
				continue
			}
			v := b.tv(mv.VehicleID)
			for _, y := range b.h.Years() {
				disc := b.cfg.Discount(y)
				// capital net of subsidy, charged at the purchase year only
				gi := b.h.VintageIndex(y)
				capital := v.CapitalCost[gi] - v.Subsidy[gi]
				if capital != 0 {
					b.m.AddObjective(disc*capital, b.vars.Purchased[CohortKey{Odpair: od.ID, Vehicle: v.ID, Year: y, Vintage: y}])
				}
				// annual maintenance for aged cohorts still within lifetime
				for g := b.h.FirstVintage(); g < y; g++ {
					if y-g >= b.lifetime(v, g) {
						continue
					}
					ma := v.MaintAnnual[b.h.VintageIndex(g)]
					if ma == 0 {
						continue
					}
					b.m.AddObjective(disc*ma, b.vars.Stock[CohortKey{Odpair: od.ID, Vehicle: v.ID, Year: y, Vintage: g}])
				}
			}
		}
	}
}

// infraCosts charges each expansion its capex at the investment period and
// its opex in every later modeled year.
func (b *Builder) infraCosts() {
	opexSum := func(p int) float64 {
		s := 0.0
		for y := p; y <= b.h.End(); y++ {
			s += b.cfg.Discount(y)
		}
		return s
	}
	for _, fi := range b.sets.FuelInfra {
		for _, gid := range b.nodeLocs {
			for _, p := range b.periods {
				k := FuelInfraKey{Fuel: fi.FuelID, Type: fi.TypeID, Geo: gid, Period: p}
				capex, opexRate := b.fuelingCost(k)
				coef := b.cfg.Discount(p)*capex + opexSum(p)*opexRate*capex
				if coef != 0 {
					b.m.AddObjective(coef, b.vars.FuelInfra[k])
				}
			}
		}
	}
	for _, m := range b.ref.Modes() {
		for _, gid := range b.edgeLocs {
			for _, p := range b.periods {
				coef := b.cfg.Discount(p)*m.InfraCapexUkm + opexSum(p)*m.InfraOpexRate*m.InfraCapexUkm
				if coef != 0 {
					b.m.AddObjective(coef, b.vars.ModeInfra[ModeInfraKey{Mode: m.ID, Geo: gid, Period: p}])
				}
			}
		}
	}
	for _, f := range b.ref.Fuels() {
		for _, gid := range b.nodeLocs {
			for _, p := range b.periods {
				coef := b.cfg.Discount(p)*f.SupplyCapexKW + opexSum(p)*f.SupplyOpexRate*f.SupplyCapexKW
				if coef != 0 {
					b.m.AddObjective(coef, b.vars.Supply[SupplyKey{Fuel: f.ID, Geo: gid, Period: p}])
				}
			}
		}
	}
}

func (b *Builder) fuelingCost(k FuelInfraKey) (capex, opexRate float64) {
	if k.Type != 0 {
		it := b.itype(k.Type)
		return it.CapexKW, it.OpexRate
	}
	f := b.fuel(k.Fuel)
	return f.FuelingCapexKW, f.FuelingOpexRate
}

func (b *Builder) penaltyCosts() {
	for _, od := range b.ref.Odpairs() {
		for block := b.h.Start; block <= b.h.End(); block += b.cfg.BudgetBlockYears {
			bk := BudgetKey{Odpair: od.ID, BlockStart: block}
			if id, ok := b.vars.BudgetOver[bk]; ok {
				b.m.AddObjective(b.cfg.BudgetPenaltyUB, id)
			}
			if id, ok := b.vars.BudgetUnder[bk]; ok {
				b.m.AddObjective(b.cfg.BudgetPenaltyLB, id)
			}
		}
	}
}

func (b *Builder) detourCosts() {
	for _, od := range b.ref.Odpairs() {
		fs := b.fin(od.FinancialStatusID)
		for _, f := range b.ref.Fuels() {
			for _, y := range b.h.Years() {
				if id, ok := b.vars.Detour[DetourKey{Odpair: od.ID, Fuel: f.ID, Year: y}]; ok {
					b.m.AddObjective(b.cfg.Discount(y)*fs.VoT, id)
				}
			}
		}
	}
}
