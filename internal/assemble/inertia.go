package assemble

import (
	"fmt"

	"transplan/internal/lp"
)

// turnoverInertia bounds the year-over-year change in aggregate stock per
// technology and in aggregate flow per mode:
//
//	|total(y) - total(y-1)| <= alpha*total(y) + beta*total(y-1)
//
// emitted as two one-sided rows per (entity, year).
func (b *Builder) turnoverInertia() {
	for _, t := range b.ref.Technologies() {
		for _, y := range b.h.Years() {
			if y == b.h.Start {
				continue
			}
			cur := b.techStock(t.ID, y)
			prev := b.techStock(t.ID, y-1)
			if cur.Empty() && prev.Empty() {
				continue
			}
			b.emitInertia(fmt.Sprintf("fleetinertia_t%d_y%d", t.ID, y), cur, prev, b.cfg.AlphaFleet, b.cfg.BetaFleet)
		}
	}
	for _, m := range b.ref.Modes() {
		for _, y := range b.h.Years() {
			if y == b.h.Start {
				continue
			}
			cur := b.modeFlow(m.ID, y)
			prev := b.modeFlow(m.ID, y-1)
			if cur.Empty() && prev.Empty() {
				continue
			}
			b.emitInertia(fmt.Sprintf("flowinertia_m%d_y%d", m.ID, y), cur, prev, b.cfg.AlphaFlow, b.cfg.BetaFlow)
		}
	}
}

func (b *Builder) emitInertia(name string, cur, prev lp.Expr, alpha, beta float64) {
	// cur - prev <= alpha*cur + beta*prev
	var up lp.Expr
	for _, t := range cur.Terms {
		up.Add(t.Coef*(1-alpha), t.Var)
	}
	for _, t := range prev.Terms {
		up.Add(-t.Coef*(1+beta), t.Var)
	}
	b.m.AddLe(name+"_up", up, 0)

	// prev - cur <= alpha*cur + beta*prev
	var down lp.Expr
	for _, t := range prev.Terms {
		down.Add(t.Coef*(1-beta), t.Var)
	}
	for _, t := range cur.Terms {
		down.Add(-t.Coef*(1+alpha), t.Var)
	}
	b.m.AddLe(name+"_down", down, 0)
}

// techStock sums the stock of every cohort of one technology in a year.
func (b *Builder) techStock(techID, y int) lp.Expr {
	var e lp.Expr
	for _, od := range b.ref.Odpairs() {
		for _, mv := range b.sets.VehiclesFor(b.ref, od) {
			if mv.Pseudo {
				continue
			}
			v := b.tv(mv.VehicleID)
			if v.TechnologyID != techID {
				continue
			}
			for g := b.h.FirstVintage(); g <= y; g++ {
				e.Add(1, b.vars.Stock[CohortKey{Odpair: od.ID, Vehicle: v.ID, Year: y, Vintage: g}])
			}
		}
	}
	return e
}

// modeFlow sums the flow carried by one mode in a year, over all odpairs,
// paths, and cohorts (pseudo-vehicles included).
func (b *Builder) modeFlow(modeID, y int) lp.Expr {
	var e lp.Expr
	for _, od := range b.ref.Odpairs() {
		for _, mv := range b.sets.VehiclesFor(b.ref, od) {
			if mv.ModeID != modeID {
				continue
			}
			for _, pid := range od.PathIDs {
				for _, fk := range b.flowKeys(od.ID, pid, mv, y) {
					e.Add(1, b.flowVar(fk))
				}
			}
		}
	}
	return e
}
