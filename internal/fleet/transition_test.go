package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transplan/internal/model"
)

var h = model.Horizon{Start: 2030, Length: 4, PreVintages: 2}

func constLifetime(n int) func(int) int     { return func(int) int { return n } }
func noSeed(int) float64                    { return 0 }
func seedOnly(g int, c float64) func(int) float64 {
	return func(v int) float64 {
		if v == g {
			return c
		}
		return 0
	}
}

func TestClassifyExhaustiveAndExclusive(t *testing.T) {
	lifetimes := []int{0, 1, 3, 10}
	for _, lt := range lifetimes {
		for _, y := range h.Years() {
			for _, g := range h.Vintages() {
				if g > y {
					continue
				}
				c := Classify(y, g, lt, h)
				age := y - g
				switch {
				case age > lt:
					assert.Equal(t, CaseNeverExisted, c, "y=%d g=%d lt=%d", y, g, lt)
				case age == lt:
					assert.Equal(t, CaseForcedRetirement, c, "y=%d g=%d lt=%d", y, g, lt)
				case g == y:
					assert.Equal(t, CasePurchaseYear, c, "y=%d g=%d lt=%d", y, g, lt)
				case y == h.Start && g < h.Start:
					assert.Equal(t, CasePreHorizonSeed, c, "y=%d g=%d lt=%d", y, g, lt)
				default:
					assert.Equal(t, CaseAging, c, "y=%d g=%d lt=%d", y, g, lt)
				}
			}
		}
	}
}

func TestClassifyLifetimeWinsOverPurchase(t *testing.T) {
	// a zero-lifetime vintage bought this year retires this year
	assert.Equal(t, CaseForcedRetirement, Classify(2031, 2031, 0, h))
	// a negative lifetime never exists
	assert.Equal(t, CaseNeverExisted, Classify(2031, 2031, -1, h))
	// future vintages never exist
	assert.Equal(t, CaseNeverExisted, Classify(2030, 2031, 10, h))
}

func TestTransitionsTableShape(t *testing.T) {
	cs := Transitions(Params{Horizon: h, Lifetime: constLifetime(10), Seed: noSeed})
	// for each year: vintages from FirstVintage to y inclusive
	want := 0
	for _, y := range h.Years() {
		want += y - h.FirstVintage() + 1
	}
	require.Len(t, cs, want)
	// ascending (year, vintage) order
	for i := 1; i < len(cs); i++ {
		prev, cur := cs[i-1], cs[i]
		ok := cur.Year > prev.Year || (cur.Year == prev.Year && cur.Vintage > prev.Vintage)
		assert.True(t, ok, "order violated at %d: %+v then %+v", i, prev, cur)
	}
}

func TestPurchaseYearCohort(t *testing.T) {
	cs := Transitions(Params{Horizon: h, Lifetime: constLifetime(10), Seed: noSeed})
	for _, c := range cs {
		if c.Case != CasePurchaseYear {
			continue
		}
		assert.True(t, c.StockFree)
		assert.True(t, c.PurchasedFree)
		assert.False(t, c.RetiredFree)
		assert.False(t, c.RetireAll)
		assert.Equal(t, CarriedZero, c.Carried)
	}
}

func TestLifetimeOneForcedRetirement(t *testing.T) {
	// vintage 2030 with lifetime 1: purchasable in 2030, everything carried
	// into 2031 retires there, gone afterwards
	cs := Transitions(Params{Horizon: h, Lifetime: constLifetime(1), Seed: noSeed})
	byCell := map[[2]int]Cohort{}
	for _, c := range cs {
		byCell[[2]int{c.Year, c.Vintage}] = c
	}

	buy := byCell[[2]int{2030, 2030}]
	require.Equal(t, CasePurchaseYear, buy.Case)

	retire := byCell[[2]int{2031, 2030}]
	require.Equal(t, CaseForcedRetirement, retire.Case)
	assert.True(t, retire.RetireAll)
	assert.False(t, retire.StockFree)
	assert.False(t, retire.PurchasedFree)
	assert.Equal(t, CarriedPrevStock, retire.Carried)

	gone := byCell[[2]int{2032, 2030}]
	assert.Equal(t, CaseNeverExisted, gone.Case)
}

func TestPreHorizonSeedCohort(t *testing.T) {
	cs := Transitions(Params{Horizon: h, Lifetime: constLifetime(10), Seed: seedOnly(2029, 7)})
	byCell := map[[2]int]Cohort{}
	for _, c := range cs {
		byCell[[2]int{c.Year, c.Vintage}] = c
	}

	seeded := byCell[[2]int{2030, 2029}]
	require.Equal(t, CasePreHorizonSeed, seeded.Case)
	assert.Equal(t, CarriedSeed, seeded.Carried)
	assert.Equal(t, 7.0, seeded.SeedCount)
	assert.True(t, seeded.StockFree)
	assert.False(t, seeded.PurchasedFree)

	// the year after, the same vintage carries from its previous stock
	aged := byCell[[2]int{2031, 2029}]
	require.Equal(t, CaseAging, aged.Case)
	assert.Equal(t, CarriedPrevStock, aged.Carried)
}

func TestForcedRetirementAtHorizonStartUsesSeed(t *testing.T) {
	// vintage 2028, lifetime 2: exhausted exactly at 2030, the first modeled
	// year, so the carried-in count comes from the seed
	cs := Transitions(Params{Horizon: h, Lifetime: constLifetime(2), Seed: seedOnly(2028, 3)})
	for _, c := range cs {
		if c.Year == 2030 && c.Vintage == 2028 {
			require.Equal(t, CaseForcedRetirement, c.Case)
			assert.Equal(t, CarriedSeed, c.Carried)
			assert.Equal(t, 3.0, c.SeedCount)
			assert.True(t, c.RetireAll)
			return
		}
	}
	t.Fatal("cohort (2030, 2028) not found")
}

func TestPreAgeSellTogglesRetirementFreedom(t *testing.T) {
	locked := Transitions(Params{Horizon: h, Lifetime: constLifetime(10), Seed: noSeed})
	for _, c := range locked {
		if c.Case == CaseAging || c.Case == CasePreHorizonSeed {
			assert.False(t, c.RetiredFree, "y=%d g=%d", c.Year, c.Vintage)
		}
	}
	free := Transitions(Params{Horizon: h, Lifetime: constLifetime(10), Seed: noSeed, PreAgeSell: true})
	for _, c := range free {
		if c.Case == CaseAging || c.Case == CasePreHorizonSeed {
			assert.True(t, c.RetiredFree, "y=%d g=%d", c.Year, c.Vintage)
		}
	}
}
