package assemble

import (
	"fmt"

	"transplan/internal/lp"
)

// monetaryBudget bounds the cumulative discounted purchase spend of each
// odpair inside rolling blocks of years by the band of its financial
// class. The bounds are soft: non-negative slack variables absorb the
// violation and are costed in the objective, so tightly budgeted scenarios
// stay solvable.
func (b *Builder) monetaryBudget() {
	for _, od := range b.ref.Odpairs() {
		fs := b.fin(od.FinancialStatusID)
		for block := b.h.Start; block <= b.h.End(); block += b.cfg.BudgetBlockYears {
			end := block + b.cfg.BudgetBlockYears - 1
			if end > b.h.End() {
				end = b.h.End()
			}
			if fs.PurchaseUB <= 0 && fs.PurchaseLB <= 0 {
				continue // class is unconstrained
			}
			spend := b.blockSpend(od.ID, block, end)
			if spend.Empty() {
				continue
			}
			bk := BudgetKey{Odpair: od.ID, BlockStart: block}
			if fs.PurchaseUB > 0 {
				over := b.m.AddContinuous(fmt.Sprintf("bov_o%d_b%d", od.ID, block))
				b.vars.BudgetOver[bk] = over
				ub := b.blockSpend(od.ID, block, end)
				ub.Add(-1, over)
				b.m.AddLe(fmt.Sprintf("budget_ub_o%d_b%d", od.ID, block), ub, fs.PurchaseUB)
			}
			if fs.PurchaseLB > 0 {
				under := b.m.AddContinuous(fmt.Sprintf("bun_o%d_b%d", od.ID, block))
				b.vars.BudgetUnder[bk] = under
				lb := spend
				lb.Add(1, under)
				b.m.AddGe(fmt.Sprintf("budget_lb_o%d_b%d", od.ID, block), lb, fs.PurchaseLB)
			}
		}
	}
}

// blockSpend builds the discounted purchase cost over [from, to]. Purchases
// only happen in the cohort's own vintage year, so the sum runs over the
// diagonal (y, y) cells.
func (b *Builder) blockSpend(odID, from, to int) lp.Expr {
	var e lp.Expr
	od := b.odpair(odID)
	for _, mv := range b.sets.VehiclesFor(b.ref, od) {
		if mv.Pseudo {
			continue
		}
		v := b.tv(mv.VehicleID)
		for y := from; y <= to; y++ {
			cost := v.CapitalCost[b.h.VintageIndex(y)]
			if cost == 0 {
				continue
			}
			e.Add(b.cfg.Discount(y)*cost, b.vars.Purchased[CohortKey{Odpair: odID, Vehicle: v.ID, Year: y, Vintage: y}])
		}
	}
	return e
}
