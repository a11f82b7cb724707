// Package assemble translates the reference model, the derived index sets,
// and the fleet transition declarations into one linear program. Every
// constraint family consumes the tuples the indexset package derived;
// nothing in this package invents its own index combinations.
package assemble

import (
	"fmt"
	"sort"

	"transplan/internal/config"
	"transplan/internal/fleet"
	"transplan/internal/indexset"
	"transplan/internal/lp"
	"transplan/internal/model"
)

// HoursPerYear converts installed kW into kWh deliverable per year.
const HoursPerYear = 8760

// Plan is the assembled program plus the typed variable index needed to
// map a solution back.
type Plan struct {
	Model  *lp.Model
	Vars   *Vars
	Layout indexset.Layout
	Stats  lp.Stats
}

type Builder struct {
	ref  *model.Reference
	sets *indexset.Sets
	cfg  config.Planner
	h    model.Horizon

	m    *lp.Model
	vars *Vars

	periods  []int // infrastructure investment years, ascending
	nodeLocs []int // node geo ids appearing on any path, ascending
	edgeLocs []int // edge geo ids appearing on any path, ascending
}

// New prepares a builder. The index sets must come from the same reference
// model; mixing builds is a contract violation.
func New(ref *model.Reference, sets *indexset.Sets, cfg config.Planner) *Builder {
	b := &Builder{
		ref:  ref,
		sets: sets,
		cfg:  cfg,
		h:    ref.Horizon(),
		m:    lp.NewModel(),
		vars: newVars(),
	}
	for y := b.h.Start; y <= b.h.End(); y += cfg.InfraPeriodYears {
		b.periods = append(b.periods, y)
	}
	b.nodeLocs = uniqueGeos(sets.NodeElems)
	b.edgeLocs = uniqueGeos(sets.EdgeElems)
	return b
}

// Build assembles the full program. Deterministic: identical inputs yield
// an identical variable and constraint order.
func (b *Builder) Build() (*Plan, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("planner config: %w", err)
	}
	b.declareFlowVars()
	b.declareFleetVars()
	b.declareInfraVars()

	b.fleetTransition()
	b.demandCoverage()
	b.vehicleSizing()
	b.monetaryBudget()
	b.fuelingInfraSizing()
	b.modeInfraSizing()
	b.supplySizing()
	b.turnoverInertia()
	b.shareTargets()
	b.emissionCaps()
	if b.sets.DetourEnabled {
		b.detourTime()
	}
	b.objective()

	return &Plan{Model: b.m, Vars: b.vars, Layout: b.sets.Layout, Stats: b.m.Stats()}, nil
}

// Lookup helpers. The reference model resolved every key at build time, so
// a miss here is an internal inconsistency, not a user error.

func (b *Builder) tv(id int) *model.TechVehicle {
	v, err := b.ref.TechVehicle(id)
	if err != nil {
		panic(err)
	}
	return v
}

func (b *Builder) vtype(id int) *model.Vehicletype {
	v, err := b.ref.Vehicletype(id)
	if err != nil {
		panic(err)
	}
	return v
}

func (b *Builder) tech(id int) *model.Technology {
	t, err := b.ref.Technology(id)
	if err != nil {
		panic(err)
	}
	return t
}

func (b *Builder) fuel(id int) *model.Fuel {
	f, err := b.ref.Fuel(id)
	if err != nil {
		panic(err)
	}
	return f
}

func (b *Builder) mode(id int) *model.Mode {
	m, err := b.ref.Mode(id)
	if err != nil {
		panic(err)
	}
	return m
}

func (b *Builder) path(id int) *model.Path {
	p, err := b.ref.Path(id)
	if err != nil {
		panic(err)
	}
	return p
}

func (b *Builder) geo(id int) *model.GeographicElement {
	g, err := b.ref.Geo(id)
	if err != nil {
		panic(err)
	}
	return g
}

func (b *Builder) odpair(id int) *model.Odpair {
	o, err := b.ref.Odpair(id)
	if err != nil {
		panic(err)
	}
	return o
}

func (b *Builder) fin(id int) *model.FinancialStatus {
	f, err := b.ref.FinancialStatus(id)
	if err != nil {
		panic(err)
	}
	return f
}

func (b *Builder) region(id int) *model.Regiontype {
	r, err := b.ref.Regiontype(id)
	if err != nil {
		panic(err)
	}
	return r
}

func (b *Builder) itype(id int) *model.InfrastructureType {
	t, err := b.ref.InfrastructureType(id)
	if err != nil {
		panic(err)
	}
	return t
}

// vintage parameter accessors

func (b *Builder) lifetime(v *model.TechVehicle, g int) int {
	return v.Lifetime[b.h.VintageIndex(g)]
}

func (b *Builder) payload(v *model.TechVehicle, g int) float64 {
	return v.PayloadT[b.h.VintageIndex(g)]
}

func (b *Builder) specCons(v *model.TechVehicle, g int) float64 {
	return v.SpecCons[b.h.VintageIndex(g)]
}

// vehicleFuel resolves the fuel a tech vehicle runs on.
func (b *Builder) vehicleFuel(v *model.TechVehicle) *model.Fuel {
	return b.fuel(b.tech(v.TechnologyID).FuelID)
}

// flowAlive reports whether a cohort of this vehicle may operate in year y:
// purchased by then and not past its lifetime.
func (b *Builder) flowAlive(v *model.TechVehicle, y, g int) bool {
	return g <= y && y-g < b.lifetime(v, g)
}

func uniqueGeos(elems []indexset.OdPathElem) []int {
	seen := map[int]bool{}
	var out []int
	for _, e := range elems {
		if !seen[e.GeoID] {
			seen[e.GeoID] = true
			out = append(out, e.GeoID)
		}
	}
	sort.Ints(out)
	return out
}

// fleetParams builds the transition-engine parameters for one odpair and
// real tech vehicle.
func (b *Builder) fleetParams(od *model.Odpair, v *model.TechVehicle) fleet.Params {
	return fleet.Params{
		Horizon:    b.h,
		Lifetime:   func(g int) int { return b.lifetime(v, g) },
		Seed:       func(g int) float64 { return b.ref.SeedStock(od.ID, v.ID, g) },
		PreAgeSell: b.cfg.PreAgeSell,
	}
}
