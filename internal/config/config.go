// Package config holds the recognized planner options and their defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"transplan/internal/model"
)

// Planner carries every option the model build recognizes. Zero values are
// replaced by the documented defaults in Default(); Validate runs before
// any assembly and fails fast on invalid combinations.
type Planner struct {
	// Time axis
	HorizonStart int `yaml:"horizonStart"` // first modeled year; required
	HorizonYears int `yaml:"horizonYears"` // default 30
	PreVintages  int `yaml:"preVintages"`  // pre-horizon vintage count, default 10

	// Economics
	DiscountRate float64 `yaml:"discountRate"` // default 0.05
	Gamma        float64 `yaml:"gamma"`        // utilization factor, default 0.8

	// Turnover inertia, fleet (by technology) and flow (by mode)
	AlphaFleet float64 `yaml:"alphaFleet"` // default 0.1
	BetaFleet  float64 `yaml:"betaFleet"`  // default 0.1
	AlphaFlow  float64 `yaml:"alphaFlow"`  // default 0.1
	BetaFlow   float64 `yaml:"betaFlow"`   // default 0.1

	// Monetary budget soft constraint
	BudgetBlockYears int     `yaml:"budgetBlockYears"` // rolling block size, default 5
	BudgetPenaltyUB  float64 `yaml:"budgetPenaltyUB"`  // overrun weight, default 1.0
	BudgetPenaltyLB  float64 `yaml:"budgetPenaltyLB"`  // shortfall weight, default 0.0

	// Infrastructure investment decisions are taken once per this many years.
	InfraPeriodYears int `yaml:"infraPeriodYears"` // default 5

	// Aging cohorts may retire before end of life only when true.
	PreAgeSell bool `yaml:"preAgeSell"` // default false

	Solver Solver `yaml:"solver"`
}

// Solver configures the external solve. The command receives the LP file
// path and a solution file path; numeric solving stays outside the core.
type Solver struct {
	Command      string `yaml:"command"`      // default "highs"
	TimeLimitSec int    `yaml:"timeLimitSec"` // default 3600
}

// Default returns the documented defaults. HorizonStart stays zero and must
// be provided by the scenario or config.
func Default() Planner {
	return Planner{
		HorizonYears:     30,
		PreVintages:      10,
		DiscountRate:     0.05,
		Gamma:            0.8,
		AlphaFleet:       0.1,
		BetaFleet:        0.1,
		AlphaFlow:        0.1,
		BetaFlow:         0.1,
		BudgetBlockYears: 5,
		BudgetPenaltyUB:  1.0,
		BudgetPenaltyLB:  0.0,
		InfraPeriodYears: 5,
		PreAgeSell:       false,
		Solver:           Solver{Command: "highs", TimeLimitSec: 3600},
	}
}

// Load reads a YAML config file over the defaults, then applies environment
// overrides (SOLVER_CMD, SOLVER_TIME_LIMIT_SEC).
func Load(path string) (Planner, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if v := os.Getenv("SOLVER_CMD"); v != "" {
		cfg.Solver.Command = v
	}
	if v := os.Getenv("SOLVER_TIME_LIMIT_SEC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("SOLVER_TIME_LIMIT_SEC: %w", err)
		}
		cfg.Solver.TimeLimitSec = n
	}
	return cfg, nil
}

// Validate checks option ranges and combinations. Called before assembly;
// a failure here is a configuration error, not a build defect.
func (c Planner) Validate() error {
	if c.HorizonStart <= 0 {
		return fmt.Errorf("horizonStart is required")
	}
	if c.HorizonYears <= 0 {
		return fmt.Errorf("horizonYears must be positive, got %d", c.HorizonYears)
	}
	if c.PreVintages < 0 {
		return fmt.Errorf("preVintages must be >= 0, got %d", c.PreVintages)
	}
	if c.DiscountRate < 0 || c.DiscountRate >= 1 {
		return fmt.Errorf("discountRate must be in [0,1), got %g", c.DiscountRate)
	}
	if c.Gamma <= 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in (0,1], got %g", c.Gamma)
	}
	if c.AlphaFleet < 0 || c.BetaFleet < 0 || c.AlphaFlow < 0 || c.BetaFlow < 0 {
		return fmt.Errorf("turnover inertia coefficients must be >= 0")
	}
	if c.BudgetBlockYears <= 0 {
		return fmt.Errorf("budgetBlockYears must be positive, got %d", c.BudgetBlockYears)
	}
	if c.BudgetPenaltyUB < 0 || c.BudgetPenaltyLB < 0 {
		return fmt.Errorf("budget penalty weights must be >= 0")
	}
	if c.InfraPeriodYears <= 0 {
		return fmt.Errorf("infraPeriodYears must be positive, got %d", c.InfraPeriodYears)
	}
	if c.InfraPeriodYears > c.HorizonYears {
		return fmt.Errorf("infraPeriodYears %d exceeds horizonYears %d", c.InfraPeriodYears, c.HorizonYears)
	}
	if c.Solver.TimeLimitSec <= 0 {
		return fmt.Errorf("solver timeLimitSec must be positive, got %d", c.Solver.TimeLimitSec)
	}
	return nil
}

// Horizon derives the model time axis from the validated options.
func (c Planner) Horizon() model.Horizon {
	return model.Horizon{Start: c.HorizonStart, Length: c.HorizonYears, PreVintages: c.PreVintages}
}

// Discount returns the discount factor applied to costs in year y.
func (c Planner) Discount(y int) float64 {
	f := 1.0
	for i := c.HorizonStart; i < y; i++ {
		f /= 1 + c.DiscountRate
	}
	return f
}
