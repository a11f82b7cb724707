package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func valid() Planner {
	cfg := Default()
	cfg.HorizonStart = 2030
	return cfg
}

func TestDefaultValidatesWithStart(t *testing.T) {
	if err := Default().Validate(); err == nil {
		t.Fatal("missing horizonStart must be rejected")
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("defaults with a start year must validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := map[string]func(*Planner){
		"zero horizon years":    func(c *Planner) { c.HorizonYears = 0 },
		"negative pre vintages": func(c *Planner) { c.PreVintages = -1 },
		"discount rate one":     func(c *Planner) { c.DiscountRate = 1 },
		"gamma zero":            func(c *Planner) { c.Gamma = 0 },
		"gamma above one":       func(c *Planner) { c.Gamma = 1.5 },
		"negative inertia":      func(c *Planner) { c.AlphaFleet = -0.1 },
		"zero budget block":     func(c *Planner) { c.BudgetBlockYears = 0 },
		"negative penalty":      func(c *Planner) { c.BudgetPenaltyUB = -1 },
		"zero infra period":     func(c *Planner) { c.InfraPeriodYears = 0 },
		"infra period too long": func(c *Planner) { c.InfraPeriodYears = 31 },
		"zero time limit":       func(c *Planner) { c.Solver.TimeLimitSec = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestDiscountFactors(t *testing.T) {
	cfg := valid()
	cfg.DiscountRate = 0.05
	if got := cfg.Discount(2030); got != 1 {
		t.Fatalf("first year factor = %g, want 1", got)
	}
	want := 1 / (1.05 * 1.05)
	if got := cfg.Discount(2032); math.Abs(got-want) > 1e-12 {
		t.Fatalf("factor(2032) = %g, want %g", got, want)
	}
	cfg.DiscountRate = 0
	if got := cfg.Discount(2050); got != 1 {
		t.Fatalf("zero rate must not discount, got %g", got)
	}
}

func TestHorizonDerivation(t *testing.T) {
	cfg := valid()
	cfg.HorizonYears = 3
	cfg.PreVintages = 2
	h := cfg.Horizon()
	if h.Start != 2030 || h.Length != 3 || h.PreVintages != 2 {
		t.Fatalf("horizon = %+v", h)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yaml")
	raw := "horizonStart: 2025\nhorizonYears: 10\nsolver:\n  command: cbc\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HorizonStart != 2025 || cfg.HorizonYears != 10 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Solver.Command != "cbc" {
		t.Fatalf("solver command = %q", cfg.Solver.Command)
	}
	// untouched fields keep their defaults
	if cfg.DiscountRate != 0.05 || cfg.BudgetBlockYears != 5 {
		t.Fatalf("defaults lost: %+v", cfg)
	}

	t.Setenv("SOLVER_CMD", "highs")
	t.Setenv("SOLVER_TIME_LIMIT_SEC", "120")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("load with env: %v", err)
	}
	if cfg.Solver.Command != "highs" || cfg.Solver.TimeLimitSec != 120 {
		t.Fatalf("env overrides not applied: %+v", cfg.Solver)
	}
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("SOLVER_TIME_LIMIT_SEC", "soon")
	if _, err := Load(""); err == nil {
		t.Fatal("non-numeric time limit must fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing config file must fail")
	}
}
