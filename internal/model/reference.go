package model

import "sort"

// Input is the raw, already-parsed scenario content handed to Build.
// Schema and range validation happens upstream (internal/scenario); Build
// enforces relational integrity and horizon-consistent array lengths.
type Input struct {
	Geos             []GeographicElement
	Paths            []Path
	Products         []Product
	Fuels            []Fuel
	Technologies     []Technology
	Modes            []Mode
	Vehicletypes     []Vehicletype
	TechVehicles     []TechVehicle
	InitialStock     []InitialVehicleStock
	Odpairs          []Odpair
	FinancialStatus  []FinancialStatus
	Regiontypes      []Regiontype
	InfraTypes       []InfrastructureType
	DetourReductions []DetourReduction
	FuelingBaseline  []InitialFuelingInfr
	ModeBaseline     []InitialModeInfr
	SupplyBaseline   []InitialSupplyInfr
	EmissionCaps     []EmissionCap
	ShareTargets     []ShareTarget
}

// Reference is the frozen repository of planning entities. Lookups are O(1)
// and never mutate; iteration helpers return id-sorted slices so every
// derived structure is deterministic.
type Reference struct {
	horizon Horizon

	geos    map[int]*GeographicElement
	paths   map[int]*Path
	prods   map[int]*Product
	fuels   map[int]*Fuel
	techs   map[int]*Technology
	modes   map[int]*Mode
	vtypes  map[int]*Vehicletype
	tvs     map[int]*TechVehicle
	ivs     map[int]*InitialVehicleStock
	ods     map[int]*Odpair
	fins    map[int]*FinancialStatus
	regions map[int]*Regiontype
	itypes  map[int]*InfrastructureType
	detours map[int]*DetourReduction

	fuelingBase []InitialFuelingInfr
	modeBase    []InitialModeInfr
	supplyBase  []InitialSupplyInfr
	caps        []EmissionCap
	targets     []ShareTarget

	geoByName  map[string]int
	fuelByName map[string]int
	modeByName map[string]int

	// seed[(odpair, techVehicle, vintage)] = recorded pre-horizon count
	seed map[[3]int]float64
}

func (r *Reference) Horizon() Horizon { return r.horizon }

func (r *Reference) Geo(id int) (*GeographicElement, error) {
	if g, ok := r.geos[id]; ok {
		return g, nil
	}
	return nil, &NotFoundError{Kind: "geographic element", ID: id}
}

func (r *Reference) GeoByName(name string) (*GeographicElement, error) {
	if id, ok := r.geoByName[name]; ok {
		return r.geos[id], nil
	}
	return nil, &NotFoundError{Kind: "geographic element", Name: name}
}

func (r *Reference) Path(id int) (*Path, error) {
	if p, ok := r.paths[id]; ok {
		return p, nil
	}
	return nil, &NotFoundError{Kind: "path", ID: id}
}

func (r *Reference) Product(id int) (*Product, error) {
	if p, ok := r.prods[id]; ok {
		return p, nil
	}
	return nil, &NotFoundError{Kind: "product", ID: id}
}

func (r *Reference) Fuel(id int) (*Fuel, error) {
	if f, ok := r.fuels[id]; ok {
		return f, nil
	}
	return nil, &NotFoundError{Kind: "fuel", ID: id}
}

func (r *Reference) FuelByName(name string) (*Fuel, error) {
	if id, ok := r.fuelByName[name]; ok {
		return r.fuels[id], nil
	}
	return nil, &NotFoundError{Kind: "fuel", Name: name}
}

func (r *Reference) Technology(id int) (*Technology, error) {
	if t, ok := r.techs[id]; ok {
		return t, nil
	}
	return nil, &NotFoundError{Kind: "technology", ID: id}
}

func (r *Reference) Mode(id int) (*Mode, error) {
	if m, ok := r.modes[id]; ok {
		return m, nil
	}
	return nil, &NotFoundError{Kind: "mode", ID: id}
}

func (r *Reference) ModeByName(name string) (*Mode, error) {
	if id, ok := r.modeByName[name]; ok {
		return r.modes[id], nil
	}
	return nil, &NotFoundError{Kind: "mode", Name: name}
}

func (r *Reference) Vehicletype(id int) (*Vehicletype, error) {
	if v, ok := r.vtypes[id]; ok {
		return v, nil
	}
	return nil, &NotFoundError{Kind: "vehicle type", ID: id}
}

func (r *Reference) TechVehicle(id int) (*TechVehicle, error) {
	if v, ok := r.tvs[id]; ok {
		return v, nil
	}
	return nil, &NotFoundError{Kind: "tech vehicle", ID: id}
}

func (r *Reference) Odpair(id int) (*Odpair, error) {
	if o, ok := r.ods[id]; ok {
		return o, nil
	}
	return nil, &NotFoundError{Kind: "odpair", ID: id}
}

func (r *Reference) FinancialStatus(id int) (*FinancialStatus, error) {
	if f, ok := r.fins[id]; ok {
		return f, nil
	}
	return nil, &NotFoundError{Kind: "financial status", ID: id}
}

func (r *Reference) Regiontype(id int) (*Regiontype, error) {
	if rt, ok := r.regions[id]; ok {
		return rt, nil
	}
	return nil, &NotFoundError{Kind: "region type", ID: id}
}

func (r *Reference) InfrastructureType(id int) (*InfrastructureType, error) {
	if it, ok := r.itypes[id]; ok {
		return it, nil
	}
	return nil, &NotFoundError{Kind: "infrastructure type", ID: id}
}

func (r *Reference) DetourReduction(id int) (*DetourReduction, error) {
	if d, ok := r.detours[id]; ok {
		return d, nil
	}
	return nil, &NotFoundError{Kind: "detour reduction", ID: id}
}

// SeedStock returns the recorded pre-horizon stock for the exact
// (odpair, tech vehicle, vintage) tuple. Absence means no such fleet,
// never an error.
func (r *Reference) SeedStock(odpairID, techVehicleID, vintage int) float64 {
	return r.seed[[3]int{odpairID, techVehicleID, vintage}]
}

// Sorted iteration. The slices are built once and shared; callers must not
// reorder them.

func (r *Reference) Geos() []*GeographicElement {
	return sortedValues(r.geos, func(g *GeographicElement) int { return g.ID })
}

func (r *Reference) Paths() []*Path {
	return sortedValues(r.paths, func(p *Path) int { return p.ID })
}

func (r *Reference) Products() []*Product {
	return sortedValues(r.prods, func(p *Product) int { return p.ID })
}

func (r *Reference) Fuels() []*Fuel {
	return sortedValues(r.fuels, func(f *Fuel) int { return f.ID })
}

func (r *Reference) Technologies() []*Technology {
	return sortedValues(r.techs, func(t *Technology) int { return t.ID })
}

func (r *Reference) Modes() []*Mode {
	return sortedValues(r.modes, func(m *Mode) int { return m.ID })
}

func (r *Reference) Vehicletypes() []*Vehicletype {
	return sortedValues(r.vtypes, func(v *Vehicletype) int { return v.ID })
}

func (r *Reference) TechVehicles() []*TechVehicle {
	return sortedValues(r.tvs, func(v *TechVehicle) int { return v.ID })
}

func (r *Reference) Odpairs() []*Odpair {
	return sortedValues(r.ods, func(o *Odpair) int { return o.ID })
}

func (r *Reference) FinancialStatuses() []*FinancialStatus {
	return sortedValues(r.fins, func(f *FinancialStatus) int { return f.ID })
}

func (r *Reference) Regiontypes() []*Regiontype {
	return sortedValues(r.regions, func(rt *Regiontype) int { return rt.ID })
}

func (r *Reference) InfrastructureTypes() []*InfrastructureType {
	return sortedValues(r.itypes, func(it *InfrastructureType) int { return it.ID })
}

func (r *Reference) DetourReductions() []*DetourReduction {
	return sortedValues(r.detours, func(d *DetourReduction) int { return d.ID })
}

func (r *Reference) FuelingBaseline() []InitialFuelingInfr { return r.fuelingBase }
func (r *Reference) ModeBaseline() []InitialModeInfr       { return r.modeBase }
func (r *Reference) SupplyBaseline() []InitialSupplyInfr   { return r.supplyBase }
func (r *Reference) EmissionCaps() []EmissionCap           { return r.caps }
func (r *Reference) ShareTargets() []ShareTarget           { return r.targets }

func sortedValues[T any](m map[int]*T, id func(*T) int) []*T {
	out := make([]*T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}
