package assemble

import (
	"fmt"

	"transplan/internal/lp"
	"transplan/internal/model"
)

// shareTargets ties a flow or purchase subset to a fraction of the
// matching reference total, scoped by region type and year:
//
//	subset(y) <op> share * total(y)
func (b *Builder) shareTargets() {
	for _, t := range b.ref.ShareTargets() {
		var subset, total lp.Expr
		switch t.Kind {
		case model.ShareMode:
			subset = b.regionFlow(t.Year, t.RegiontypeID, func(mvMode, _ int) bool { return mvMode == t.RefID })
			total = b.regionFlow(t.Year, t.RegiontypeID, nil)
		case model.ShareTech:
			subset = b.regionFlow(t.Year, t.RegiontypeID, func(_, techID int) bool { return techID == t.RefID })
			total = b.regionFlow(t.Year, t.RegiontypeID, nil)
		case model.SharePurchase:
			subset = b.regionPurchases(t.Year, t.RegiontypeID, t.RefID)
			total = b.regionPurchases(t.Year, t.RegiontypeID, 0)
		}
		if total.Empty() {
			continue
		}
		var e lp.Expr
		for _, tm := range subset.Terms {
			e.Add(tm.Coef, tm.Var)
		}
		for _, tm := range total.Terms {
			e.Add(-t.Share*tm.Coef, tm.Var)
		}
		name := fmt.Sprintf("share_%s_r%d_y%d_id%d", t.Kind, t.RefID, t.Year, t.ID)
		switch t.Sense {
		case model.TargetLE:
			b.m.AddLe(name, e, 0)
		case model.TargetGE:
			b.m.AddGe(name, e, 0)
		default:
			b.m.AddEq(name, e, 0)
		}
	}
}

// regionFlow sums flows in one year over odpairs of the given region type
// (zero = all), filtered by a (mode, technology) predicate. Pseudo-vehicle
// flows carry technology id zero.
func (b *Builder) regionFlow(y, regionID int, keep func(modeID, techID int) bool) lp.Expr {
	var e lp.Expr
	for _, od := range b.ref.Odpairs() {
		if regionID != 0 && od.RegiontypeID != regionID {
			continue
		}
		for _, mv := range b.sets.VehiclesFor(b.ref, od) {
			if keep != nil {
				techID := 0
				if !mv.Pseudo {
					techID = b.tv(mv.VehicleID).TechnologyID
				}
				if !keep(mv.ModeID, techID) {
					continue
				}
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

// regionPurchases sums purchase decisions in one year, optionally
// restricted to one technology (zero = all).
func (b *Builder) regionPurchases(y, regionID, techID int) lp.Expr {
	var e lp.Expr
	for _, od := range b.ref.Odpairs() {
		if regionID != 0 && od.RegiontypeID != regionID {
			continue
		}
		for _, mv := range b.sets.VehiclesFor(b.ref, od) {
			if mv.Pseudo {
				continue
			}
			v := b.tv(mv.VehicleID)
			if techID != 0 && v.TechnologyID != techID {
				continue
			}
			e.Add(1, b.vars.Purchased[CohortKey{Odpair: od.ID, Vehicle: v.ID, Year: y, Vintage: y}])
		}
	}
	return e
}
