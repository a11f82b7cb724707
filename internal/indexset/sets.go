// Package indexset derives the sparse key tuples every variable and
// constraint family is indexed by. Each set is computed exactly once per
// build from the relational structure of the reference model; nothing here
// enumerates a dense cartesian product.
package indexset

import (
	"transplan/internal/model"
)

// Layout selects between the two structurally different model shapes: the
// simple layout aggregates fueling capacity per fuel, the extended layout
// disaggregates it per infrastructure type.
type Layout int

const (
	LayoutSimple Layout = iota
	LayoutExtended
)

func (l Layout) String() string {
	if l == LayoutExtended {
		return "extended"
	}
	return "simple"
}

// ModeVehicle pairs a mode with one of its tech vehicles, or with the
// synthetic pseudo-vehicle standing in for a mode that is not quantified
// by individual vehicles.
type ModeVehicle struct {
	ModeID    int
	VehicleID int // TechVehicle id, or a synthetic id past the max real id
	Pseudo    bool
}

// OdPath is a valid (product, odpair, path) triple.
type OdPath struct {
	ProductID int
	OdpairID  int
	PathID    int
}

// OdPathElem extends OdPath with one geographic element of the path.
type OdPathElem struct {
	ProductID int
	OdpairID  int
	PathID    int
	GeoID     int
}

// FuelInfra is a valid (fuel, infrastructure type) pair. TypeID is zero in
// the simple layout.
type FuelInfra struct {
	FuelID int
	TypeID int
}

// DetourTuple is a (location, reduction rule, fuel, infrastructure type)
// combination; TypeID zero means the rule applies to any type.
type DetourTuple struct {
	GeoID  int
	RuleID int
	FuelID int
	TypeID int
}

// Sets is the frozen result of one derivation pass. Slices are ordered by
// ascending ids, so identical reference data always yields identical sets,
// including identical pseudo-vehicle id allocation.
type Sets struct {
	Layout        Layout
	DetourEnabled bool

	ModeVehicles []ModeVehicle
	ByMode       map[int][]ModeVehicle // mode id -> its pairs
	VehicleMode  map[int]int           // vehicle id (real or pseudo) -> mode id
	PseudoByMode map[int]int           // mode id -> pseudo vehicle id

	OdPaths     []OdPath
	OdPathElems []OdPathElem
	EdgeElems   []OdPathElem
	NodeElems   []OdPathElem

	FuelInfra       []FuelInfra
	RouteTracked    []FuelInfra
	LocationTracked []FuelInfra

	DetourTuples []DetourTuple
}

// Build derives all sets from the reference model. Pure and deterministic:
// output depends only on the reference content, never on map iteration
// order.
func Build(ref *model.Reference) *Sets {
	s := &Sets{
		ByMode:       map[int][]ModeVehicle{},
		VehicleMode:  map[int]int{},
		PseudoByMode: map[int]int{},
	}

	s.buildModeVehicles(ref)
	s.buildOdPaths(ref)
	s.buildFuelInfra(ref)
	s.buildDetours(ref)

	if len(ref.InfrastructureTypes()) > 0 {
		s.Layout = LayoutExtended
	}
	s.DetourEnabled = len(s.DetourTuples) > 0
	return s
}

// buildModeVehicles pairs each vehicle-quantified mode with the tech
// vehicles whose type belongs to it, and allocates one pseudo-vehicle id
// per non-quantified mode. Pseudo ids start past the max real id and are
// assigned in ascending mode-id order.
func (s *Sets) buildModeVehicles(ref *model.Reference) {
	maxReal := 0
	for _, tv := range ref.TechVehicles() {
		if tv.ID > maxReal {
			maxReal = tv.ID
		}
	}
	next := maxReal + 1
	for _, m := range ref.Modes() {
		if !m.QuantifyByVehs {
			mv := ModeVehicle{ModeID: m.ID, VehicleID: next, Pseudo: true}
			next++
			s.ModeVehicles = append(s.ModeVehicles, mv)
			s.ByMode[m.ID] = append(s.ByMode[m.ID], mv)
			s.VehicleMode[mv.VehicleID] = m.ID
			s.PseudoByMode[m.ID] = mv.VehicleID
			continue
		}
		for _, tv := range ref.TechVehicles() {
			vt, err := ref.Vehicletype(tv.VehicletypeID)
			if err != nil {
				panic(err) // unreachable: reference build resolves all keys
			}
			if vt.ModeID != m.ID {
				continue
			}
			mv := ModeVehicle{ModeID: m.ID, VehicleID: tv.ID}
			s.ModeVehicles = append(s.ModeVehicles, mv)
			s.ByMode[m.ID] = append(s.ByMode[m.ID], mv)
			s.VehicleMode[tv.ID] = m.ID
		}
	}
}

func (s *Sets) buildOdPaths(ref *model.Reference) {
	for _, od := range ref.Odpairs() {
		for _, pid := range od.PathIDs {
			s.OdPaths = append(s.OdPaths, OdPath{ProductID: od.ProductID, OdpairID: od.ID, PathID: pid})
			p, err := ref.Path(pid)
			if err != nil {
				panic(err)
			}
			for _, gid := range p.ElementIDs {
				q := OdPathElem{ProductID: od.ProductID, OdpairID: od.ID, PathID: pid, GeoID: gid}
				s.OdPathElems = append(s.OdPathElems, q)
				g, err := ref.Geo(gid)
				if err != nil {
					panic(err)
				}
				if g.Kind == model.GeoEdge {
					s.EdgeElems = append(s.EdgeElems, q)
				} else {
					s.NodeElems = append(s.NodeElems, q)
				}
			}
		}
	}
}

// buildFuelInfra derives the fuel x infrastructure-type pairs. With no
// declared types the extended partition stays empty and the simple layout
// tracks one aggregate pair per fuel that some vehicle technology uses.
func (s *Sets) buildFuelInfra(ref *model.Reference) {
	types := ref.InfrastructureTypes()
	if len(types) == 0 {
		used := map[int]bool{}
		for _, t := range ref.Technologies() {
			used[t.FuelID] = true
		}
		for _, f := range ref.Fuels() {
			if !used[f.ID] {
				continue
			}
			fi := FuelInfra{FuelID: f.ID}
			s.FuelInfra = append(s.FuelInfra, fi)
			s.LocationTracked = append(s.LocationTracked, fi)
		}
		return
	}
	for _, it := range types {
		fi := FuelInfra{FuelID: it.FuelID, TypeID: it.ID}
		s.FuelInfra = append(s.FuelInfra, fi)
		if it.PerRoute {
			s.RouteTracked = append(s.RouteTracked, fi)
		} else {
			s.LocationTracked = append(s.LocationTracked, fi)
		}
	}
}

func (s *Sets) buildDetours(ref *model.Reference) {
	for _, d := range ref.DetourReductions() {
		s.DetourTuples = append(s.DetourTuples, DetourTuple{
			GeoID:  d.GeoID,
			RuleID: d.ID,
			FuelID: d.FuelID,
			TypeID: d.InfrastructureTypeID,
		})
	}
}

// VehiclesFor returns the mode-vehicle pairs able to serve the given
// odpair: real vehicles whose type carries the odpair's product, plus every
// pseudo-vehicle (non-quantified modes serve any product).
func (s *Sets) VehiclesFor(ref *model.Reference, od *model.Odpair) []ModeVehicle {
	var out []ModeVehicle
	for _, mv := range s.ModeVehicles {
		if mv.Pseudo {
			out = append(out, mv)
			continue
		}
		tv, err := ref.TechVehicle(mv.VehicleID)
		if err != nil {
			panic(err)
		}
		vt, err := ref.Vehicletype(tv.VehicletypeID)
		if err != nil {
			panic(err)
		}
		for _, pid := range vt.ProductIDs {
			if pid == od.ProductID {
				out = append(out, mv)
				break
			}
		}
	}
	return out
}
