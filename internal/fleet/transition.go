// Package fleet classifies every (year, vintage) cohort of one route and
// vehicle into exactly one transition case and declares which of its four
// linked quantities are free decisions, which are forced, and where the
// carried-in stock comes from. The accounting identity
//
//	stock = carried - retired + purchased
//
// holds for every cohort; the constraint assembler turns these declarations
// into rows without re-deriving any of the logic here.
package fleet

import "transplan/internal/model"

// Case labels the mutually exclusive, exhaustive split over all g <= y.
type Case int

const (
	// CaseNeverExisted: the cohort cannot exist (vintage past its lifetime,
	// or not yet purchasable). All four quantities are exactly zero. This is
	// distinct from retirement: nothing was ever carried in.
	CaseNeverExisted Case = iota
	// CasePurchaseYear: y == g. Carried and retired are zero; stock equals
	// the free purchase decision.
	CasePurchaseYear
	// CaseForcedRetirement: y-g == lifetime(g). Stock and purchases are
	// forced to zero and everything carried in retires.
	CaseForcedRetirement
	// CaseAging: g < y and the cohort is still alive. Purchases are zero;
	// retirement is free only under the pre-age-sell policy.
	CaseAging
	// CasePreHorizonSeed: aging in the horizon-start year with a pre-horizon
	// vintage; carried-in stock comes from the recorded initial fleet.
	CasePreHorizonSeed
)

func (c Case) String() string {
	switch c {
	case CasePurchaseYear:
		return "purchase-year"
	case CaseForcedRetirement:
		return "forced-retirement"
	case CaseAging:
		return "aging"
	case CasePreHorizonSeed:
		return "pre-horizon-seed"
	default:
		return "never-existed"
	}
}

// CarriedSource states where stock_carried(y,g) comes from.
type CarriedSource int

const (
	CarriedZero      CarriedSource = iota
	CarriedPrevStock               // equals stock(y-1, g)
	CarriedSeed                    // equals the recorded initial stock count
)

// Cohort is the declaration for one (year, vintage) cell.
type Cohort struct {
	Year    int
	Vintage int
	Case    Case

	StockFree     bool
	PurchasedFree bool
	RetiredFree   bool

	Carried   CarriedSource
	SeedCount float64 // value when Carried == CarriedSeed
	RetireAll bool    // retired == carried (forced full retirement)
}

// Params configures one transition derivation. Lifetime and Seed are pure
// lookups into the reference model, keyed by vintage.
type Params struct {
	Horizon    model.Horizon
	Lifetime   func(vintage int) int
	Seed       func(vintage int) float64
	PreAgeSell bool
}

// Classify assigns the case for one (y, g) cell. Lifetime exhaustion is
// checked before purchase-year, so a zero-lifetime vintage bought and
// scrapped in the same year retires rather than entering service.
func Classify(y, g, lifetime int, h model.Horizon) Case {
	age := y - g
	switch {
	case g > y || age > lifetime || lifetime < 0:
		return CaseNeverExisted
	case age == lifetime:
		return CaseForcedRetirement
	case g == y:
		return CasePurchaseYear
	case y == h.Start && g < h.Start:
		return CasePreHorizonSeed
	default:
		return CaseAging
	}
}

// Transitions derives the full cohort table: every modeled year crossed
// with every vintage up to that year, in ascending (year, vintage) order.
// Pure function of its parameters.
func Transitions(p Params) []Cohort {
	h := p.Horizon
	out := make([]Cohort, 0, h.Length*h.VintageLen())
	for _, y := range h.Years() {
		for g := h.FirstVintage(); g <= y; g++ {
			out = append(out, derive(p, y, g))
		}
	}
	return out
}

func derive(p Params, y, g int) Cohort {
	h := p.Horizon
	c := Cohort{Year: y, Vintage: g, Case: Classify(y, g, p.Lifetime(g), h)}
	switch c.Case {
	case CaseNeverExisted:
		// everything stays forced to zero

	case CasePurchaseYear:
		c.PurchasedFree = true
		c.StockFree = true

	case CaseForcedRetirement:
		c.RetireAll = true
		c.Carried = carriedSource(h, y, g)

	case CaseAging:
		c.StockFree = true
		c.RetiredFree = p.PreAgeSell
		c.Carried = carriedSource(h, y, g)

	case CasePreHorizonSeed:
		c.StockFree = true
		c.RetiredFree = p.PreAgeSell
		c.Carried = CarriedSeed
	}
	if c.Carried == CarriedSeed {
		c.SeedCount = p.Seed(g)
	}
	return c
}

// carriedSource picks the carryover origin for a cohort that existed before
// this year: the previous year's stock inside the horizon, the recorded
// seed at horizon start, or zero for a same-year forced retirement.
func carriedSource(h model.Horizon, y, g int) CarriedSource {
	if g == y {
		return CarriedZero
	}
	if y == h.Start {
		return CarriedSeed
	}
	return CarriedPrevStock
}
