// Package scenario reads planning scenarios from YAML. The file format is
// a direct, human-editable mirror of the reference input; structural
// validation happens here, referential validation in model.Build.
package scenario

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"transplan/internal/model"
)

var validate = validator.New()

// File is the root document of a scenario YAML file.
type File struct {
	Name    string   `yaml:"name"`
	Horizon *Horizon `yaml:"horizon"`

	GeographicElements []Geo                 `yaml:"geographicElements" validate:"min=1,dive"`
	Paths              []Path                `yaml:"paths" validate:"min=1,dive"`
	Products           []Named               `yaml:"products" validate:"min=1,dive"`
	Fuels              []Fuel                `yaml:"fuels" validate:"dive"`
	Technologies       []Technology          `yaml:"technologies" validate:"dive"`
	Modes              []Mode                `yaml:"modes" validate:"min=1,dive"`
	Vehicletypes       []Vehicletype         `yaml:"vehicletypes" validate:"dive"`
	TechVehicles       []TechVehicle         `yaml:"techVehicles" validate:"dive"`
	InitialStock       []InitialStock        `yaml:"initialVehicleStock" validate:"dive"`
	Odpairs            []Odpair              `yaml:"odpairs" validate:"min=1,dive"`
	FinancialStatus    []FinancialStatus     `yaml:"financialStatus" validate:"min=1,dive"`
	Regiontypes        []Regiontype          `yaml:"regiontypes" validate:"min=1,dive"`
	InfraTypes         []InfrastructureType  `yaml:"infrastructureTypes" validate:"dive"`
	DetourReductions   []DetourReduction     `yaml:"detourReductions" validate:"dive"`
	FuelingBaseline    []FuelingBaseline     `yaml:"initialFuelingInfr" validate:"dive"`
	ModeBaseline       []ModeBaseline        `yaml:"initialModeInfr" validate:"dive"`
	SupplyBaseline     []SupplyBaseline      `yaml:"initialSupplyInfr" validate:"dive"`
	EmissionCaps       []EmissionCap         `yaml:"emissionCaps" validate:"dive"`
	ShareTargets       []ShareTarget         `yaml:"shareTargets" validate:"dive"`
}

// Horizon optionally overrides the planner defaults per scenario.
type Horizon struct {
	Start       int `yaml:"start" validate:"required,min=1900"`
	Years       int `yaml:"years" validate:"required,min=1"`
	PreVintages int `yaml:"preVintages" validate:"min=0"`
}

type Named struct {
	ID   int    `yaml:"id" validate:"required,min=1"`
	Name string `yaml:"name" validate:"required"`
}

type Geo struct {
	ID          int       `yaml:"id" validate:"required,min=1"`
	Name        string    `yaml:"name"`
	Kind        string    `yaml:"kind" validate:"required,oneof=node edge"`
	LengthKM    float64   `yaml:"lengthKm" validate:"min=0"`
	CarbonPrice []float64 `yaml:"carbonPrice"`
}

type Path struct {
	ID       int     `yaml:"id" validate:"required,min=1"`
	Name     string  `yaml:"name"`
	LengthKM float64 `yaml:"lengthKm" validate:"gt=0"`
	Elements []int   `yaml:"elements" validate:"min=1"`
}

type Fuel struct {
	ID              int       `yaml:"id" validate:"required,min=1"`
	Name            string    `yaml:"name" validate:"required"`
	CostPerKWh      []float64 `yaml:"costPerKWh"`
	EmissionFactor  float64   `yaml:"emissionFactor" validate:"min=0"`
	FuelingCapexKW  float64   `yaml:"fuelingCapexKW" validate:"min=0"`
	FuelingOpexRate float64   `yaml:"fuelingOpexRate" validate:"min=0"`
	SupplyCapexKW   float64   `yaml:"supplyCapexKW" validate:"min=0"`
	SupplyOpexRate  float64   `yaml:"supplyOpexRate" validate:"min=0"`
}

type Technology struct {
	ID     int    `yaml:"id" validate:"required,min=1"`
	Name   string `yaml:"name" validate:"required"`
	FuelID int    `yaml:"fuel" validate:"required,min=1"`
}

type Mode struct {
	ID             int       `yaml:"id" validate:"required,min=1"`
	Name           string    `yaml:"name" validate:"required"`
	QuantifyByVehs bool      `yaml:"quantifyByVehs"`
	SpeedKPH       float64   `yaml:"speedKph" validate:"min=0"`
	CostPerUkm     []float64 `yaml:"costPerUkm"`
	EmissionPerUkm []float64 `yaml:"emissionPerUkm"`
	InfraCapexUkm  float64   `yaml:"infraCapexUkm" validate:"min=0"`
	InfraOpexRate  float64   `yaml:"infraOpexRate" validate:"min=0"`
	WaitingHours   float64   `yaml:"waitingHours" validate:"min=0"`
}

type Vehicletype struct {
	ID       int    `yaml:"id" validate:"required,min=1"`
	Name     string `yaml:"name" validate:"required"`
	ModeID   int    `yaml:"mode" validate:"required,min=1"`
	Products []int  `yaml:"products"`
}

type TechVehicle struct {
	ID            int    `yaml:"id" validate:"required,min=1"`
	Name          string `yaml:"name"`
	VehicletypeID int    `yaml:"vehicletype" validate:"required,min=1"`
	TechnologyID  int    `yaml:"technology" validate:"required,min=1"`

	CapitalCost []float64 `yaml:"capitalCost"`
	Subsidy     []float64 `yaml:"subsidy"`
	MaintAnnual []float64 `yaml:"maintAnnual"`
	MaintPerKM  []float64 `yaml:"maintPerKm"`
	PayloadT    []float64 `yaml:"payload"`
	SpecCons    []float64 `yaml:"specCons"`
	Lifetime    []int     `yaml:"lifetime"`
	AnnualRange []float64 `yaml:"annualRange"`
	TankKWh     []float64 `yaml:"tankKWh"`
	PeakFuelKW  []float64 `yaml:"peakFuelKW"`
}

type InitialStock struct {
	ID            int     `yaml:"id" validate:"required,min=1"`
	TechVehicleID int     `yaml:"techVehicle" validate:"required,min=1"`
	PurchaseYear  int     `yaml:"purchaseYear" validate:"required"`
	Count         float64 `yaml:"count" validate:"gt=0"`
}

type Odpair struct {
	ID                int       `yaml:"id" validate:"required,min=1"`
	OriginID          int       `yaml:"origin" validate:"required,min=1"`
	DestinationID     int       `yaml:"destination" validate:"required,min=1"`
	Paths             []int     `yaml:"paths" validate:"min=1"`
	Demand            []float64 `yaml:"demand" validate:"min=1"`
	ProductID         int       `yaml:"product" validate:"required,min=1"`
	FinancialStatusID int       `yaml:"financialStatus" validate:"required,min=1"`
	RegiontypeID      int       `yaml:"regiontype" validate:"required,min=1"`
	InitialStockIDs   []int     `yaml:"initialStock"`
}

type FinancialStatus struct {
	ID         int     `yaml:"id" validate:"required,min=1"`
	Name       string  `yaml:"name" validate:"required"`
	PurchaseLB float64 `yaml:"purchaseLB" validate:"min=0"`
	PurchaseUB float64 `yaml:"purchaseUB" validate:"min=0"`
	VoT        float64 `yaml:"vot" validate:"min=0"`
}

type Regiontype struct {
	ID          int     `yaml:"id" validate:"required,min=1"`
	Name        string  `yaml:"name" validate:"required"`
	SpeedFactor float64 `yaml:"speedFactor" validate:"gt=0"`
}

type InfrastructureType struct {
	ID       int     `yaml:"id" validate:"required,min=1"`
	Name     string  `yaml:"name" validate:"required"`
	FuelID   int     `yaml:"fuel" validate:"required,min=1"`
	PerRoute bool    `yaml:"perRoute"`
	Gamma    float64 `yaml:"gamma" validate:"gt=0,max=1"`
	CapexKW  float64 `yaml:"capexKW" validate:"min=0"`
	OpexRate float64 `yaml:"opexRate" validate:"min=0"`
}

type DetourReduction struct {
	ID                   int     `yaml:"id" validate:"required,min=1"`
	GeoID                int     `yaml:"geo" validate:"required,min=1"`
	FuelID               int     `yaml:"fuel" validate:"required,min=1"`
	InfrastructureTypeID int     `yaml:"infrastructureType"`
	ReductionHours       float64 `yaml:"reductionHours" validate:"gt=0"`
	ThresholdKW          float64 `yaml:"thresholdKW" validate:"gt=0"`
}

type FuelingBaseline struct {
	ID                   int     `yaml:"id" validate:"required,min=1"`
	FuelID               int     `yaml:"fuel" validate:"required,min=1"`
	InfrastructureTypeID int     `yaml:"infrastructureType"`
	GeoID                int     `yaml:"geo" validate:"required,min=1"`
	InstalledKW          float64 `yaml:"installedKW" validate:"min=0"`
}

type ModeBaseline struct {
	ID           int     `yaml:"id" validate:"required,min=1"`
	ModeID       int     `yaml:"mode" validate:"required,min=1"`
	GeoID        int     `yaml:"geo" validate:"required,min=1"`
	InstalledUkm float64 `yaml:"installedUkm" validate:"min=0"`
}

type SupplyBaseline struct {
	ID          int     `yaml:"id" validate:"required,min=1"`
	FuelID      int     `yaml:"fuel" validate:"required,min=1"`
	GeoID       int     `yaml:"geo" validate:"required,min=1"`
	InstalledKW float64 `yaml:"installedKW" validate:"min=0"`
}

type EmissionCap struct {
	ID        int     `yaml:"id" validate:"required,min=1"`
	Year      int     `yaml:"year" validate:"required"`
	CapTonnes float64 `yaml:"capTonnes" validate:"min=0"`
}

type ShareTarget struct {
	ID           int     `yaml:"id" validate:"required,min=1"`
	Kind         string  `yaml:"kind" validate:"required,oneof=mode technology purchase"`
	RefID        int     `yaml:"ref" validate:"required,min=1"`
	Year         int     `yaml:"year" validate:"required"`
	Share        float64 `yaml:"share" validate:"min=0,max=1"`
	Sense        string  `yaml:"sense" validate:"required,oneof=eq le ge"`
	RegiontypeID int     `yaml:"regiontype"`
}

// Load reads and validates a scenario file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a scenario document and runs structural validation.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("scenario: parse: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("scenario: validate: %w", err)
	}
	return &f, nil
}

// ModelHorizon resolves the effective horizon: the scenario override when
// present, the planner default otherwise.
func (f *File) ModelHorizon(def model.Horizon) model.Horizon {
	if f.Horizon == nil {
		return def
	}
	return model.Horizon{Start: f.Horizon.Start, Length: f.Horizon.Years, PreVintages: f.Horizon.PreVintages}
}

// Input converts the document into the reference-model input. Enum strings
// were validated by Parse, so conversion cannot fail.
func (f *File) Input() model.Input {
	var in model.Input
	for _, g := range f.GeographicElements {
		kind := model.GeoNode
		if g.Kind == "edge" {
			kind = model.GeoEdge
		}
		in.Geos = append(in.Geos, model.GeographicElement{
			ID: g.ID, Name: g.Name, Kind: kind, LengthKM: g.LengthKM, CarbonPrice: g.CarbonPrice,
		})
	}
	for _, p := range f.Paths {
		in.Paths = append(in.Paths, model.Path{ID: p.ID, Name: p.Name, LengthKM: p.LengthKM, ElementIDs: p.Elements})
	}
	for _, p := range f.Products {
		in.Products = append(in.Products, model.Product{ID: p.ID, Name: p.Name})
	}
	for _, fu := range f.Fuels {
		in.Fuels = append(in.Fuels, model.Fuel{
			ID: fu.ID, Name: fu.Name, CostPerKWh: fu.CostPerKWh, EmissionFactor: fu.EmissionFactor,
			FuelingCapexKW: fu.FuelingCapexKW, FuelingOpexRate: fu.FuelingOpexRate,
			SupplyCapexKW: fu.SupplyCapexKW, SupplyOpexRate: fu.SupplyOpexRate,
		})
	}
	for _, t := range f.Technologies {
		in.Technologies = append(in.Technologies, model.Technology{ID: t.ID, Name: t.Name, FuelID: t.FuelID})
	}
	for _, m := range f.Modes {
		in.Modes = append(in.Modes, model.Mode{
			ID: m.ID, Name: m.Name, QuantifyByVehs: m.QuantifyByVehs, SpeedKPH: m.SpeedKPH,
			CostPerUkm: m.CostPerUkm, EmissionPerUkm: m.EmissionPerUkm,
			InfraCapexUkm: m.InfraCapexUkm, InfraOpexRate: m.InfraOpexRate, WaitingHours: m.WaitingHours,
		})
	}
	for _, v := range f.Vehicletypes {
		in.Vehicletypes = append(in.Vehicletypes, model.Vehicletype{ID: v.ID, Name: v.Name, ModeID: v.ModeID, ProductIDs: v.Products})
	}
	for _, v := range f.TechVehicles {
		in.TechVehicles = append(in.TechVehicles, model.TechVehicle{
			ID: v.ID, Name: v.Name, VehicletypeID: v.VehicletypeID, TechnologyID: v.TechnologyID,
			CapitalCost: v.CapitalCost, Subsidy: v.Subsidy, MaintAnnual: v.MaintAnnual, MaintPerKM: v.MaintPerKM,
			PayloadT: v.PayloadT, SpecCons: v.SpecCons, Lifetime: v.Lifetime, AnnualRange: v.AnnualRange,
			TankKWh: v.TankKWh, PeakFuelKW: v.PeakFuelKW,
		})
	}
	for _, s := range f.InitialStock {
		in.InitialStock = append(in.InitialStock, model.InitialVehicleStock{
			ID: s.ID, TechVehicleID: s.TechVehicleID, PurchaseYear: s.PurchaseYear, Count: s.Count,
		})
	}
	for _, o := range f.Odpairs {
		in.Odpairs = append(in.Odpairs, model.Odpair{
			ID: o.ID, OriginID: o.OriginID, DestinationID: o.DestinationID, PathIDs: o.Paths,
			Demand: o.Demand, ProductID: o.ProductID, FinancialStatusID: o.FinancialStatusID,
			RegiontypeID: o.RegiontypeID, InitialStockIDs: o.InitialStockIDs,
		})
	}
	for _, s := range f.FinancialStatus {
		in.FinancialStatus = append(in.FinancialStatus, model.FinancialStatus{
			ID: s.ID, Name: s.Name, PurchaseLB: s.PurchaseLB, PurchaseUB: s.PurchaseUB, VoT: s.VoT,
		})
	}
	for _, r := range f.Regiontypes {
		in.Regiontypes = append(in.Regiontypes, model.Regiontype{ID: r.ID, Name: r.Name, SpeedFactor: r.SpeedFactor})
	}
	for _, it := range f.InfraTypes {
		in.InfraTypes = append(in.InfraTypes, model.InfrastructureType{
			ID: it.ID, Name: it.Name, FuelID: it.FuelID, PerRoute: it.PerRoute,
			Gamma: it.Gamma, CapexKW: it.CapexKW, OpexRate: it.OpexRate,
		})
	}
	for _, d := range f.DetourReductions {
		in.DetourReductions = append(in.DetourReductions, model.DetourReduction{
			ID: d.ID, GeoID: d.GeoID, FuelID: d.FuelID, InfrastructureTypeID: d.InfrastructureTypeID,
			ReductionHours: d.ReductionHours, ThresholdKW: d.ThresholdKW,
		})
	}
	for _, b := range f.FuelingBaseline {
		in.FuelingBaseline = append(in.FuelingBaseline, model.InitialFuelingInfr{
			ID: b.ID, FuelID: b.FuelID, InfrastructureTypeID: b.InfrastructureTypeID, GeoID: b.GeoID, InstalledKW: b.InstalledKW,
		})
	}
	for _, b := range f.ModeBaseline {
		in.ModeBaseline = append(in.ModeBaseline, model.InitialModeInfr{ID: b.ID, ModeID: b.ModeID, GeoID: b.GeoID, InstalledUkm: b.InstalledUkm})
	}
	for _, b := range f.SupplyBaseline {
		in.SupplyBaseline = append(in.SupplyBaseline, model.InitialSupplyInfr{ID: b.ID, FuelID: b.FuelID, GeoID: b.GeoID, InstalledKW: b.InstalledKW})
	}
	for _, c := range f.EmissionCaps {
		in.EmissionCaps = append(in.EmissionCaps, model.EmissionCap{ID: c.ID, Year: c.Year, CapTonnes: c.CapTonnes})
	}
	for _, t := range f.ShareTargets {
		in.ShareTargets = append(in.ShareTargets, model.ShareTarget{
			ID: t.ID, Kind: shareKind(t.Kind), RefID: t.RefID, Year: t.Year,
			Share: t.Share, Sense: targetSense(t.Sense), RegiontypeID: t.RegiontypeID,
		})
	}
	return in
}

func shareKind(s string) model.ShareKind {
	switch s {
	case "technology":
		return model.ShareTech
	case "purchase":
		return model.SharePurchase
	default:
		return model.ShareMode
	}
}

func targetSense(s string) model.TargetSense {
	switch s {
	case "le":
		return model.TargetLE
	case "ge":
		return model.TargetGE
	default:
		return model.TargetEQ
	}
}
