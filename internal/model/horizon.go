package model

// Horizon fixes the modeled time axis: calendar years [Start, Start+Length)
// and purchase vintages [Start-PreVintages, Start+Length).
type Horizon struct {
	Start       int // first modeled calendar year
	Length      int // number of modeled years
	PreVintages int // number of pre-horizon vintages carried in from initial stock
}

// End returns the last modeled year (inclusive).
func (h Horizon) End() int { return h.Start + h.Length - 1 }

// FirstVintage returns the oldest vintage the model accounts for.
func (h Horizon) FirstVintage() int { return h.Start - h.PreVintages }

// ContainsYear reports whether y is a modeled calendar year.
func (h Horizon) ContainsYear(y int) bool { return y >= h.Start && y <= h.End() }

// ContainsVintage reports whether g is an accounted vintage.
func (h Horizon) ContainsVintage(g int) bool { return g >= h.FirstVintage() && g <= h.End() }

// YearIndex maps a calendar year to its offset in year-indexed series.
// Caller must ensure ContainsYear(y).
func (h Horizon) YearIndex(y int) int { return y - h.Start }

// VintageIndex maps a vintage to its offset in vintage-indexed series.
// Caller must ensure ContainsVintage(g).
func (h Horizon) VintageIndex(g int) int { return g - h.FirstVintage() }

// Years returns the modeled calendar years in ascending order.
func (h Horizon) Years() []int {
	ys := make([]int, h.Length)
	for i := range ys {
		ys[i] = h.Start + i
	}
	return ys
}

// Vintages returns every accounted vintage in ascending order.
func (h Horizon) Vintages() []int {
	gs := make([]int, h.PreVintages+h.Length)
	for i := range gs {
		gs[i] = h.FirstVintage() + i
	}
	return gs
}

// VintageLen is the expected length of vintage-indexed parameter arrays.
func (h Horizon) VintageLen() int { return h.PreVintages + h.Length }
