package assemble

import (
	"fmt"

	"transplan/internal/lp"
)

// emissionCaps bounds total emissions in a capped year. Vehicle-quantified
// flows emit through the energy they draw; other modes emit per
// tonne-kilometer.
func (b *Builder) emissionCaps() {
	for _, cap := range b.ref.EmissionCaps() {
		e := b.emissionExpr(cap.Year)
		if e.Empty() {
			continue
		}
		b.m.AddLe(fmt.Sprintf("emicap_y%d_id%d", cap.Year, cap.ID), e, cap.CapTonnes)
	}
}

// emissionExpr builds modeled emissions (tonnes CO2) in one year.
func (b *Builder) emissionExpr(y int) lp.Expr {
	var e lp.Expr
	yi := b.h.YearIndex(y)
	for _, op := range b.sets.OdPaths {
		od := b.odpair(op.OdpairID)
		p := b.path(op.PathID)
		for _, mv := range b.sets.VehiclesFor(b.ref, od) {
			if mv.Pseudo {
				m := b.mode(mv.ModeID)
				// tonnes * km * t/ukm
				e.Add(p.LengthKM*m.EmissionPerUkm[yi], b.flowVar(FlowKey{Odpair: od.ID, Path: p.ID, Vehicle: mv.VehicleID, Year: y, Vintage: y}))
				continue
			}
			v := b.tv(mv.VehicleID)
			ef := b.vehicleFuel(v).EmissionFactor
			if ef == 0 {
				continue
			}
			for _, g := range b.h.Vintages() {
				if g > y {
					break
				}
				if !b.flowAlive(v, y, g) {
					continue
				}
				// trips/yr * km * kWh/km * t/kWh
				coef := p.LengthKM * b.specCons(v, g) * ef / b.payload(v, g)
				e.Add(coef, b.flowVar(FlowKey{Odpair: od.ID, Path: p.ID, Vehicle: v.ID, Year: y, Vintage: g}))
			}
		}
	}
	return e
}
