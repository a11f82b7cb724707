package model

import "fmt"

// Build freezes the raw input into a Reference. Every foreign key must
// resolve and every year/vintage-indexed array must match the horizon;
// violations are fatal and reported with the offending id and field.
func Build(in Input, h Horizon) (*Reference, error) {
	if h.Length <= 0 {
		return nil, fmt.Errorf("horizon length must be positive, got %d", h.Length)
	}
	if h.PreVintages < 0 {
		return nil, fmt.Errorf("pre-horizon vintage count must be >= 0, got %d", h.PreVintages)
	}

	r := &Reference{
		horizon:     h,
		geos:        map[int]*GeographicElement{},
		paths:       map[int]*Path{},
		prods:       map[int]*Product{},
		fuels:       map[int]*Fuel{},
		techs:       map[int]*Technology{},
		modes:       map[int]*Mode{},
		vtypes:      map[int]*Vehicletype{},
		tvs:         map[int]*TechVehicle{},
		ivs:         map[int]*InitialVehicleStock{},
		ods:         map[int]*Odpair{},
		fins:        map[int]*FinancialStatus{},
		regions:     map[int]*Regiontype{},
		itypes:      map[int]*InfrastructureType{},
		detours:     map[int]*DetourReduction{},
		fuelingBase: in.FuelingBaseline,
		modeBase:    in.ModeBaseline,
		supplyBase:  in.SupplyBaseline,
		caps:        in.EmissionCaps,
		targets:     in.ShareTargets,
		geoByName:   map[string]int{},
		fuelByName:  map[string]int{},
		modeByName:  map[string]int{},
		seed:        map[[3]int]float64{},
	}

	for i := range in.Geos {
		g := &in.Geos[i]
		if _, dup := r.geos[g.ID]; dup {
			return nil, &BuildError{Kind: "geographic element", ID: g.ID, Msg: "duplicate id"}
		}
		cp, err := yearSeries(h, "geographic element", g.ID, "carbonPrice", g.CarbonPrice)
		if err != nil {
			return nil, err
		}
		g.CarbonPrice = cp
		r.geos[g.ID] = g
		if g.Name != "" {
			if _, dup := r.geoByName[g.Name]; dup {
				return nil, &BuildError{Kind: "geographic element", ID: g.ID, Field: "name", Msg: "duplicate name " + g.Name}
			}
			r.geoByName[g.Name] = g.ID
		}
	}

	for i := range in.Paths {
		p := &in.Paths[i]
		if _, dup := r.paths[p.ID]; dup {
			return nil, &BuildError{Kind: "path", ID: p.ID, Msg: "duplicate id"}
		}
		if len(p.ElementIDs) == 0 {
			return nil, &BuildError{Kind: "path", ID: p.ID, Field: "elements", Msg: "empty element sequence"}
		}
		seenElem := map[int]bool{}
		for _, gid := range p.ElementIDs {
			if _, ok := r.geos[gid]; !ok {
				return nil, &BuildError{Kind: "path", ID: p.ID, Field: "elements", Msg: fmt.Sprintf("unresolved geographic element %d", gid)}
			}
			if seenElem[gid] {
				return nil, &BuildError{Kind: "path", ID: p.ID, Field: "elements", Msg: fmt.Sprintf("geographic element %d listed twice", gid)}
			}
			seenElem[gid] = true
		}
		r.paths[p.ID] = p
	}

	for i := range in.Products {
		p := &in.Products[i]
		if _, dup := r.prods[p.ID]; dup {
			return nil, &BuildError{Kind: "product", ID: p.ID, Msg: "duplicate id"}
		}
		r.prods[p.ID] = p
	}

	for i := range in.Fuels {
		f := &in.Fuels[i]
		if _, dup := r.fuels[f.ID]; dup {
			return nil, &BuildError{Kind: "fuel", ID: f.ID, Msg: "duplicate id"}
		}
		ck, err := yearSeries(h, "fuel", f.ID, "costPerKWh", f.CostPerKWh)
		if err != nil {
			return nil, err
		}
		f.CostPerKWh = ck
		r.fuels[f.ID] = f
		if f.Name != "" {
			r.fuelByName[f.Name] = f.ID
		}
	}

	for i := range in.Technologies {
		t := &in.Technologies[i]
		if _, dup := r.techs[t.ID]; dup {
			return nil, &BuildError{Kind: "technology", ID: t.ID, Msg: "duplicate id"}
		}
		if _, ok := r.fuels[t.FuelID]; !ok {
			return nil, &BuildError{Kind: "technology", ID: t.ID, Field: "fuel", Msg: fmt.Sprintf("unresolved fuel %d", t.FuelID)}
		}
		r.techs[t.ID] = t
	}

	for i := range in.Modes {
		m := &in.Modes[i]
		if _, dup := r.modes[m.ID]; dup {
			return nil, &BuildError{Kind: "mode", ID: m.ID, Msg: "duplicate id"}
		}
		if !m.QuantifyByVehs {
			cu, err := yearSeries(h, "mode", m.ID, "costPerUkm", m.CostPerUkm)
			if err != nil {
				return nil, err
			}
			m.CostPerUkm = cu
			eu, err := yearSeries(h, "mode", m.ID, "emissionPerUkm", m.EmissionPerUkm)
			if err != nil {
				return nil, err
			}
			m.EmissionPerUkm = eu
		}
		r.modes[m.ID] = m
		if m.Name != "" {
			r.modeByName[m.Name] = m.ID
		}
	}

	for i := range in.Vehicletypes {
		v := &in.Vehicletypes[i]
		if _, dup := r.vtypes[v.ID]; dup {
			return nil, &BuildError{Kind: "vehicle type", ID: v.ID, Msg: "duplicate id"}
		}
		if _, ok := r.modes[v.ModeID]; !ok {
			return nil, &BuildError{Kind: "vehicle type", ID: v.ID, Field: "mode", Msg: fmt.Sprintf("unresolved mode %d", v.ModeID)}
		}
		for _, pid := range v.ProductIDs {
			if _, ok := r.prods[pid]; !ok {
				return nil, &BuildError{Kind: "vehicle type", ID: v.ID, Field: "products", Msg: fmt.Sprintf("unresolved product %d", pid)}
			}
		}
		r.vtypes[v.ID] = v
	}

	for i := range in.TechVehicles {
		v := &in.TechVehicles[i]
		if _, dup := r.tvs[v.ID]; dup {
			return nil, &BuildError{Kind: "tech vehicle", ID: v.ID, Msg: "duplicate id"}
		}
		if _, ok := r.vtypes[v.VehicletypeID]; !ok {
			return nil, &BuildError{Kind: "tech vehicle", ID: v.ID, Field: "vehicletype", Msg: fmt.Sprintf("unresolved vehicle type %d", v.VehicletypeID)}
		}
		if _, ok := r.techs[v.TechnologyID]; !ok {
			return nil, &BuildError{Kind: "tech vehicle", ID: v.ID, Field: "technology", Msg: fmt.Sprintf("unresolved technology %d", v.TechnologyID)}
		}
		for field, n := range map[string]int{
			"capitalCost": len(v.CapitalCost),
			"subsidy":     len(v.Subsidy),
			"maintAnnual": len(v.MaintAnnual),
			"maintPerKm":  len(v.MaintPerKM),
			"payload":     len(v.PayloadT),
			"specCons":    len(v.SpecCons),
			"lifetime":    len(v.Lifetime),
			"annualRange": len(v.AnnualRange),
			"tankKWh":     len(v.TankKWh),
			"peakFuelKW":  len(v.PeakFuelKW),
		} {
			if n != h.VintageLen() {
				return nil, &BuildError{Kind: "tech vehicle", ID: v.ID, Field: field,
					Msg: fmt.Sprintf("vintage array length %d, want %d", n, h.VintageLen())}
			}
		}
		r.tvs[v.ID] = v
	}

	for i := range in.InitialStock {
		s := &in.InitialStock[i]
		if _, dup := r.ivs[s.ID]; dup {
			return nil, &BuildError{Kind: "initial vehicle stock", ID: s.ID, Msg: "duplicate id"}
		}
		if _, ok := r.tvs[s.TechVehicleID]; !ok {
			return nil, &BuildError{Kind: "initial vehicle stock", ID: s.ID, Field: "techVehicle", Msg: fmt.Sprintf("unresolved tech vehicle %d", s.TechVehicleID)}
		}
		if s.PurchaseYear < h.FirstVintage() || s.PurchaseYear >= h.Start {
			return nil, &BuildError{Kind: "initial vehicle stock", ID: s.ID, Field: "purchaseYear",
				Msg: fmt.Sprintf("%d is not a pre-horizon vintage in [%d,%d)", s.PurchaseYear, h.FirstVintage(), h.Start)}
		}
		r.ivs[s.ID] = s
	}

	for i := range in.FinancialStatus {
		f := &in.FinancialStatus[i]
		if _, dup := r.fins[f.ID]; dup {
			return nil, &BuildError{Kind: "financial status", ID: f.ID, Msg: "duplicate id"}
		}
		r.fins[f.ID] = f
	}

	for i := range in.Regiontypes {
		rt := &in.Regiontypes[i]
		if _, dup := r.regions[rt.ID]; dup {
			return nil, &BuildError{Kind: "region type", ID: rt.ID, Msg: "duplicate id"}
		}
		r.regions[rt.ID] = rt
	}

	for i := range in.Odpairs {
		o := &in.Odpairs[i]
		if _, dup := r.ods[o.ID]; dup {
			return nil, &BuildError{Kind: "odpair", ID: o.ID, Msg: "duplicate id"}
		}
		for field, gid := range map[string]int{"origin": o.OriginID, "destination": o.DestinationID} {
			g, ok := r.geos[gid]
			if !ok {
				return nil, &BuildError{Kind: "odpair", ID: o.ID, Field: field, Msg: fmt.Sprintf("unresolved geographic element %d", gid)}
			}
			if g.Kind != GeoNode {
				return nil, &BuildError{Kind: "odpair", ID: o.ID, Field: field, Msg: fmt.Sprintf("geographic element %d is not a node", gid)}
			}
		}
		if len(o.PathIDs) == 0 {
			return nil, &BuildError{Kind: "odpair", ID: o.ID, Field: "paths", Msg: "odpair has no paths"}
		}
		seenPath := map[int]bool{}
		for _, pid := range o.PathIDs {
			if _, ok := r.paths[pid]; !ok {
				return nil, &BuildError{Kind: "odpair", ID: o.ID, Field: "paths", Msg: fmt.Sprintf("unresolved path %d", pid)}
			}
			if seenPath[pid] {
				return nil, &BuildError{Kind: "odpair", ID: o.ID, Field: "paths", Msg: fmt.Sprintf("path %d listed twice", pid)}
			}
			seenPath[pid] = true
		}
		if err := yearLen(h, "odpair", o.ID, "demand", len(o.Demand)); err != nil {
			return nil, err
		}
		if _, ok := r.prods[o.ProductID]; !ok {
			return nil, &BuildError{Kind: "odpair", ID: o.ID, Field: "product", Msg: fmt.Sprintf("unresolved product %d", o.ProductID)}
		}
		if _, ok := r.fins[o.FinancialStatusID]; !ok {
			return nil, &BuildError{Kind: "odpair", ID: o.ID, Field: "financialStatus", Msg: fmt.Sprintf("unresolved financial status %d", o.FinancialStatusID)}
		}
		if _, ok := r.regions[o.RegiontypeID]; !ok {
			return nil, &BuildError{Kind: "odpair", ID: o.ID, Field: "regiontype", Msg: fmt.Sprintf("unresolved region type %d", o.RegiontypeID)}
		}
		for _, sid := range o.InitialStockIDs {
			s, ok := r.ivs[sid]
			if !ok {
				return nil, &BuildError{Kind: "odpair", ID: o.ID, Field: "initialStock", Msg: fmt.Sprintf("unresolved initial vehicle stock %d", sid)}
			}
			r.seed[[3]int{o.ID, s.TechVehicleID, s.PurchaseYear}] += s.Count
		}
		r.ods[o.ID] = o
	}

	for i := range in.InfraTypes {
		it := &in.InfraTypes[i]
		if _, dup := r.itypes[it.ID]; dup {
			return nil, &BuildError{Kind: "infrastructure type", ID: it.ID, Msg: "duplicate id"}
		}
		if _, ok := r.fuels[it.FuelID]; !ok {
			return nil, &BuildError{Kind: "infrastructure type", ID: it.ID, Field: "fuel", Msg: fmt.Sprintf("unresolved fuel %d", it.FuelID)}
		}
		if it.Gamma <= 0 || it.Gamma > 1 {
			return nil, &BuildError{Kind: "infrastructure type", ID: it.ID, Field: "gamma", Msg: "utilization factor must be in (0,1]"}
		}
		r.itypes[it.ID] = it
	}

	for i := range in.DetourReductions {
		d := &in.DetourReductions[i]
		if _, dup := r.detours[d.ID]; dup {
			return nil, &BuildError{Kind: "detour reduction", ID: d.ID, Msg: "duplicate id"}
		}
		if _, ok := r.geos[d.GeoID]; !ok {
			return nil, &BuildError{Kind: "detour reduction", ID: d.ID, Field: "geo", Msg: fmt.Sprintf("unresolved geographic element %d", d.GeoID)}
		}
		if _, ok := r.fuels[d.FuelID]; !ok {
			return nil, &BuildError{Kind: "detour reduction", ID: d.ID, Field: "fuel", Msg: fmt.Sprintf("unresolved fuel %d", d.FuelID)}
		}
		if d.InfrastructureTypeID != 0 {
			if _, ok := r.itypes[d.InfrastructureTypeID]; !ok {
				return nil, &BuildError{Kind: "detour reduction", ID: d.ID, Field: "infrastructureType", Msg: fmt.Sprintf("unresolved infrastructure type %d", d.InfrastructureTypeID)}
			}
		}
		r.detours[d.ID] = d
	}

	for i := range in.FuelingBaseline {
		b := &in.FuelingBaseline[i]
		if _, ok := r.fuels[b.FuelID]; !ok {
			return nil, &BuildError{Kind: "fueling baseline", ID: b.ID, Field: "fuel", Msg: fmt.Sprintf("unresolved fuel %d", b.FuelID)}
		}
		if _, ok := r.geos[b.GeoID]; !ok {
			return nil, &BuildError{Kind: "fueling baseline", ID: b.ID, Field: "geo", Msg: fmt.Sprintf("unresolved geographic element %d", b.GeoID)}
		}
		if b.InfrastructureTypeID != 0 {
			if _, ok := r.itypes[b.InfrastructureTypeID]; !ok {
				return nil, &BuildError{Kind: "fueling baseline", ID: b.ID, Field: "infrastructureType", Msg: fmt.Sprintf("unresolved infrastructure type %d", b.InfrastructureTypeID)}
			}
		}
	}
	for i := range in.ModeBaseline {
		b := &in.ModeBaseline[i]
		if _, ok := r.modes[b.ModeID]; !ok {
			return nil, &BuildError{Kind: "mode baseline", ID: b.ID, Field: "mode", Msg: fmt.Sprintf("unresolved mode %d", b.ModeID)}
		}
		if _, ok := r.geos[b.GeoID]; !ok {
			return nil, &BuildError{Kind: "mode baseline", ID: b.ID, Field: "geo", Msg: fmt.Sprintf("unresolved geographic element %d", b.GeoID)}
		}
	}
	for i := range in.SupplyBaseline {
		b := &in.SupplyBaseline[i]
		if _, ok := r.fuels[b.FuelID]; !ok {
			return nil, &BuildError{Kind: "supply baseline", ID: b.ID, Field: "fuel", Msg: fmt.Sprintf("unresolved fuel %d", b.FuelID)}
		}
		if _, ok := r.geos[b.GeoID]; !ok {
			return nil, &BuildError{Kind: "supply baseline", ID: b.ID, Field: "geo", Msg: fmt.Sprintf("unresolved geographic element %d", b.GeoID)}
		}
	}

	for i := range in.EmissionCaps {
		c := &in.EmissionCaps[i]
		if !h.ContainsYear(c.Year) {
			return nil, &BuildError{Kind: "emission cap", ID: c.ID, Field: "year", Msg: fmt.Sprintf("%d outside horizon", c.Year)}
		}
	}

	for i := range in.ShareTargets {
		t := &in.ShareTargets[i]
		if !h.ContainsYear(t.Year) {
			return nil, &BuildError{Kind: "share target", ID: t.ID, Field: "year", Msg: fmt.Sprintf("%d outside horizon", t.Year)}
		}
		switch t.Kind {
		case ShareMode:
			if _, ok := r.modes[t.RefID]; !ok {
				return nil, &BuildError{Kind: "share target", ID: t.ID, Field: "ref", Msg: fmt.Sprintf("unresolved mode %d", t.RefID)}
			}
		case ShareTech, SharePurchase:
			if _, ok := r.techs[t.RefID]; !ok {
				return nil, &BuildError{Kind: "share target", ID: t.ID, Field: "ref", Msg: fmt.Sprintf("unresolved technology %d", t.RefID)}
			}
		}
		if t.RegiontypeID != 0 {
			if _, ok := r.regions[t.RegiontypeID]; !ok {
				return nil, &BuildError{Kind: "share target", ID: t.ID, Field: "regiontype", Msg: fmt.Sprintf("unresolved region type %d", t.RegiontypeID)}
			}
		}
		if t.Share < 0 || t.Share > 1 {
			return nil, &BuildError{Kind: "share target", ID: t.ID, Field: "share", Msg: "share must be in [0,1]"}
		}
	}

	return r, nil
}

func yearLen(h Horizon, kind string, id int, field string, n int) error {
	if n != h.Length {
		return &BuildError{Kind: kind, ID: id, Field: field,
			Msg: fmt.Sprintf("year array length %d, want %d", n, h.Length)}
	}
	return nil
}

// yearSeries validates an optional per-year series. An omitted series
// defaults to zeros; a present one must match the horizon length.
func yearSeries(h Horizon, kind string, id int, field string, arr []float64) ([]float64, error) {
	if len(arr) == 0 {
		return make([]float64, h.Length), nil
	}
	if err := yearLen(h, kind, id, field, len(arr)); err != nil {
		return nil, err
	}
	return arr, nil
}
