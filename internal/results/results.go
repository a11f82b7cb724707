// Package results maps a solver solution back through the typed variable
// index of an assembled plan into structured, JSON-ready records.
package results

import (
	"fmt"
	"sort"

	"transplan/internal/assemble"
	"transplan/internal/lp"
	"transplan/internal/solver"
)

// eps suppresses solver noise; values at or below it are treated as zero
// and omitted from the records.
const eps = 1e-9

type FlowRecord struct {
	OdpairID  int     `json:"odpairId"`
	PathID    int     `json:"pathId"`
	VehicleID int     `json:"vehicleId"`
	Year      int     `json:"year"`
	Vintage   int     `json:"vintage"`
	Tonnes    float64 `json:"tonnes"`
}

type FleetRecord struct {
	OdpairID  int     `json:"odpairId"`
	VehicleID int     `json:"vehicleId"`
	Year      int     `json:"year"`
	Vintage   int     `json:"vintage"`
	Stock     float64 `json:"stock"`
	Purchased float64 `json:"purchased"`
	Retired   float64 `json:"retired"`
}

type FuelingExpansion struct {
	FuelID int     `json:"fuelId"`
	TypeID int     `json:"typeId,omitempty"`
	GeoID  int     `json:"geoId"`
	Period int     `json:"period"`
	KW     float64 `json:"kw"`
}

type ModeExpansion struct {
	ModeID int     `json:"modeId"`
	GeoID  int     `json:"geoId"`
	Period int     `json:"period"`
	Ukm    float64 `json:"ukm"`
}

type SupplyExpansion struct {
	FuelID int     `json:"fuelId"`
	GeoID  int     `json:"geoId"`
	Period int     `json:"period"`
	KW     float64 `json:"kw"`
}

// BudgetSlack reports how far an odpair's purchase spend escaped its band
// in one budget block. Zero-slack blocks are omitted.
type BudgetSlack struct {
	OdpairID   int     `json:"odpairId"`
	BlockStart int     `json:"blockStart"`
	Over       float64 `json:"over,omitempty"`
	Under      float64 `json:"under,omitempty"`
}

type DetourRecord struct {
	OdpairID int     `json:"odpairId"`
	FuelID   int     `json:"fuelId"`
	Year     int     `json:"year"`
	Hours    float64 `json:"hours"`
}

// Result is the full structured outcome of one solve.
type Result struct {
	Status    solver.Status `json:"status"`
	Objective float64       `json:"objective"`

	Flows   []FlowRecord       `json:"flows,omitempty"`
	Fleet   []FleetRecord      `json:"fleet,omitempty"`
	Fueling []FuelingExpansion `json:"fueling,omitempty"`
	Mode    []ModeExpansion    `json:"mode,omitempty"`
	Supply  []SupplyExpansion  `json:"supply,omitempty"`
	Budget  []BudgetSlack      `json:"budget,omitempty"`
	Detours []DetourRecord     `json:"detours,omitempty"`
}

// FromSolution extracts records from a solution. Non-optimal statuses
// without values yield a Result carrying only status and objective.
func FromSolution(plan *assemble.Plan, sol *solver.Solution) (*Result, error) {
	r := &Result{Status: sol.Status, Objective: sol.Objective}
	if sol.Values == nil {
		return r, nil
	}

	val := func(id lp.VarID) (float64, error) {
		name := plan.Model.Var(id).Name
		v, ok := sol.Values[name]
		if !ok {
			return 0, fmt.Errorf("results: solution missing variable %q", name)
		}
		return v, nil
	}

	for k, id := range plan.Vars.Flow {
		v, err := val(id)
		if err != nil {
			return nil, err
		}
		if v > eps {
			r.Flows = append(r.Flows, FlowRecord{
				OdpairID: k.Odpair, PathID: k.Path, VehicleID: k.Vehicle,
				Year: k.Year, Vintage: k.Vintage, Tonnes: v,
			})
		}
	}
	sort.Slice(r.Flows, func(i, j int) bool { return flowLess(r.Flows[i], r.Flows[j]) })

	for k, id := range plan.Vars.Stock {
		stock, err := val(id)
		if err != nil {
			return nil, err
		}
		var purchased, retired float64
		if pid, ok := plan.Vars.Purchased[k]; ok {
			if purchased, err = val(pid); err != nil {
				return nil, err
			}
		}
		if rid, ok := plan.Vars.Retired[k]; ok {
			if retired, err = val(rid); err != nil {
				return nil, err
			}
		}
		if stock > eps || purchased > eps || retired > eps {
			r.Fleet = append(r.Fleet, FleetRecord{
				OdpairID: k.Odpair, VehicleID: k.Vehicle, Year: k.Year, Vintage: k.Vintage,
				Stock: stock, Purchased: purchased, Retired: retired,
			})
		}
	}
	sort.Slice(r.Fleet, func(i, j int) bool { return fleetLess(r.Fleet[i], r.Fleet[j]) })

	for k, id := range plan.Vars.FuelInfra {
		v, err := val(id)
		if err != nil {
			return nil, err
		}
		if v > eps {
			r.Fueling = append(r.Fueling, FuelingExpansion{FuelID: k.Fuel, TypeID: k.Type, GeoID: k.Geo, Period: k.Period, KW: v})
		}
	}
	sort.Slice(r.Fueling, func(i, j int) bool {
		a, b := r.Fueling[i], r.Fueling[j]
		if a.FuelID != b.FuelID {
			return a.FuelID < b.FuelID
		}
		if a.TypeID != b.TypeID {
			return a.TypeID < b.TypeID
		}
		if a.GeoID != b.GeoID {
			return a.GeoID < b.GeoID
		}
		return a.Period < b.Period
	})

	for k, id := range plan.Vars.ModeInfra {
		v, err := val(id)
		if err != nil {
			return nil, err
		}
		if v > eps {
			r.Mode = append(r.Mode, ModeExpansion{ModeID: k.Mode, GeoID: k.Geo, Period: k.Period, Ukm: v})
		}
	}
	sort.Slice(r.Mode, func(i, j int) bool {
		a, b := r.Mode[i], r.Mode[j]
		if a.ModeID != b.ModeID {
			return a.ModeID < b.ModeID
		}
		if a.GeoID != b.GeoID {
			return a.GeoID < b.GeoID
		}
		return a.Period < b.Period
	})

	for k, id := range plan.Vars.Supply {
		v, err := val(id)
		if err != nil {
			return nil, err
		}
		if v > eps {
			r.Supply = append(r.Supply, SupplyExpansion{FuelID: k.Fuel, GeoID: k.Geo, Period: k.Period, KW: v})
		}
	}
	sort.Slice(r.Supply, func(i, j int) bool {
		a, b := r.Supply[i], r.Supply[j]
		if a.FuelID != b.FuelID {
			return a.FuelID < b.FuelID
		}
		if a.GeoID != b.GeoID {
			return a.GeoID < b.GeoID
		}
		return a.Period < b.Period
	})

	slack := map[assemble.BudgetKey]*BudgetSlack{}
	for k, id := range plan.Vars.BudgetOver {
		v, err := val(id)
		if err != nil {
			return nil, err
		}
		if v > eps {
			slack[k] = &BudgetSlack{OdpairID: k.Odpair, BlockStart: k.BlockStart, Over: v}
		}
	}
	for k, id := range plan.Vars.BudgetUnder {
		v, err := val(id)
		if err != nil {
			return nil, err
		}
		if v > eps {
			if s, ok := slack[k]; ok {
				s.Under = v
			} else {
				slack[k] = &BudgetSlack{OdpairID: k.Odpair, BlockStart: k.BlockStart, Under: v}
			}
		}
	}
	for _, s := range slack {
		r.Budget = append(r.Budget, *s)
	}
	sort.Slice(r.Budget, func(i, j int) bool {
		a, b := r.Budget[i], r.Budget[j]
		if a.OdpairID != b.OdpairID {
			return a.OdpairID < b.OdpairID
		}
		return a.BlockStart < b.BlockStart
	})

	for k, id := range plan.Vars.Detour {
		v, err := val(id)
		if err != nil {
			return nil, err
		}
		if v > eps {
			r.Detours = append(r.Detours, DetourRecord{OdpairID: k.Odpair, FuelID: k.Fuel, Year: k.Year, Hours: v})
		}
	}
	sort.Slice(r.Detours, func(i, j int) bool {
		a, b := r.Detours[i], r.Detours[j]
		if a.OdpairID != b.OdpairID {
			return a.OdpairID < b.OdpairID
		}
		if a.FuelID != b.FuelID {
			return a.FuelID < b.FuelID
		}
		return a.Year < b.Year
	})

	return r, nil
}

func flowLess(a, b FlowRecord) bool {
	if a.OdpairID != b.OdpairID {
		return a.OdpairID < b.OdpairID
	}
	if a.PathID != b.PathID {
		return a.PathID < b.PathID
	}
	if a.VehicleID != b.VehicleID {
		return a.VehicleID < b.VehicleID
	}
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	return a.Vintage < b.Vintage
}

func fleetLess(a, b FleetRecord) bool {
	if a.OdpairID != b.OdpairID {
		return a.OdpairID < b.OdpairID
	}
	if a.VehicleID != b.VehicleID {
		return a.VehicleID < b.VehicleID
	}
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	return a.Vintage < b.Vintage
}
