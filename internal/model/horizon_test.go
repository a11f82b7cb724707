package model

import "testing"

func TestHorizonIndexing(t *testing.T) {
	h := Horizon{Start: 2030, Length: 5, PreVintages: 3}
	if got := h.End(); got != 2034 {
		t.Fatalf("End = %d, want 2034", got)
	}
	if got := h.FirstVintage(); got != 2027 {
		t.Fatalf("FirstVintage = %d, want 2027", got)
	}
	if got := h.VintageLen(); got != 8 {
		t.Fatalf("VintageLen = %d, want 8", got)
	}
	if got := h.YearIndex(2030); got != 0 {
		t.Fatalf("YearIndex(2030) = %d, want 0", got)
	}
	if got := h.VintageIndex(2027); got != 0 {
		t.Fatalf("VintageIndex(2027) = %d, want 0", got)
	}
	if got := h.VintageIndex(2034); got != 7 {
		t.Fatalf("VintageIndex(2034) = %d, want 7", got)
	}
}

func TestHorizonContains(t *testing.T) {
	h := Horizon{Start: 2030, Length: 5, PreVintages: 3}
	for _, y := range []int{2030, 2034} {
		if !h.ContainsYear(y) {
			t.Fatalf("ContainsYear(%d) = false", y)
		}
	}
	for _, y := range []int{2029, 2035} {
		if h.ContainsYear(y) {
			t.Fatalf("ContainsYear(%d) = true", y)
		}
	}
	if !h.ContainsVintage(2027) || h.ContainsVintage(2026) {
		t.Fatalf("vintage bounds wrong")
	}
}

func TestHorizonSequences(t *testing.T) {
	h := Horizon{Start: 2030, Length: 3, PreVintages: 2}
	ys := h.Years()
	if len(ys) != 3 || ys[0] != 2030 || ys[2] != 2032 {
		t.Fatalf("Years = %v", ys)
	}
	gs := h.Vintages()
	if len(gs) != 5 || gs[0] != 2028 || gs[4] != 2032 {
		t.Fatalf("Vintages = %v", gs)
	}
}
