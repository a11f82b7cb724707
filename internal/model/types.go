package model

// Reference entities for the planning model. All records are immutable once
// the Reference is built; year-indexed slices have length Horizon.Length and
// vintage-indexed slices have length Horizon.VintageLen().

type GeoKind int

const (
	GeoNode GeoKind = iota
	GeoEdge
)

func (k GeoKind) String() string {
	if k == GeoEdge {
		return "edge"
	}
	return "node"
}

// GeographicElement is a node or edge of the transport network.
type GeographicElement struct {
	ID          int
	Name        string
	Kind        GeoKind
	LengthKM    float64   // zero for nodes
	CarbonPrice []float64 // EUR/t CO2, per modeled year
}

// Path is an ordered sequence of geographic elements between an origin and
// a destination. Paths are given, never computed.
type Path struct {
	ID         int
	Name       string
	LengthKM   float64
	ElementIDs []int
}

type Product struct {
	ID   int
	Name string
}

// Fuel carries energy pricing and the emission factor applied to the
// energy drawn by vehicles running on it.
type Fuel struct {
	ID              int
	Name            string
	CostPerKWh      []float64 // EUR/kWh, per modeled year
	EmissionFactor  float64   // t CO2 per kWh
	FuelingCapexKW  float64   // EUR per kW of fueling capacity, simple layout
	FuelingOpexRate float64   // annual O&M as a fraction of capex
	SupplyCapexKW   float64   // EUR per kW of supply capacity expansion
	SupplyOpexRate  float64   // annual O&M as a fraction of capex
}

type Technology struct {
	ID     int
	Name   string
	FuelID int
}

// Mode groups vehicle types. A mode with QuantifyByVehs=false is planned on
// flows alone; its fleet variables are pinned to zero behind a synthetic
// pseudo-vehicle id.
type Mode struct {
	ID             int
	Name           string
	QuantifyByVehs bool
	SpeedKPH       float64
	CostPerUkm     []float64 // EUR per tonne-km, per year; used when not vehicle-quantified
	EmissionPerUkm []float64 // t CO2 per tonne-km, per year; used when not vehicle-quantified
	InfraCapexUkm  float64   // EUR per tonne-km of mode infrastructure expansion
	InfraOpexRate  float64   // annual O&M as a fraction of capex
	WaitingHours   float64   // fixed access/egress time per trip
}

type Vehicletype struct {
	ID         int
	Name       string
	ModeID     int
	ProductIDs []int // products this vehicle type may carry
}

// TechVehicle is a concrete (vehicle type, drivetrain technology) offering.
// All per-unit parameters are indexed by vintage offset, not calendar year.
type TechVehicle struct {
	ID            int
	Name          string
	VehicletypeID int
	TechnologyID  int

	CapitalCost []float64 // EUR per vehicle, by vintage
	Subsidy     []float64 // EUR per vehicle purchase subsidy, by vintage
	MaintAnnual []float64 // EUR per vehicle-year, by vintage
	MaintPerKM  []float64 // EUR per vehicle-km, by vintage
	PayloadT    []float64 // tonnes per vehicle (W), by vintage
	SpecCons    []float64 // kWh per vehicle-km, by vintage
	Lifetime    []int     // years a vintage may operate, by vintage
	AnnualRange []float64 // km per vehicle-year, by vintage
	TankKWh     []float64 // usable tank/battery capacity, by vintage
	PeakFuelKW  []float64 // peak refueling/charging draw, by vintage
}

// InitialVehicleStock records pre-horizon fleet on one odpair.
type InitialVehicleStock struct {
	ID            int
	TechVehicleID int
	PurchaseYear  int // must be a valid pre-horizon vintage
	Count         float64
}

// Odpair is an origin-destination demand relation served by one or more
// candidate paths.
type Odpair struct {
	ID                int
	OriginID          int
	DestinationID     int
	PathIDs           []int
	Demand            []float64 // tonnes per year, per modeled year
	ProductID         int
	FinancialStatusID int
	RegiontypeID      int
	InitialStockIDs   []int
}

// FinancialStatus bands the discounted purchase spend allowed on routes of
// this class and prices their travel time.
type FinancialStatus struct {
	ID         int
	Name       string
	PurchaseLB float64 // EUR, lower bound per budget block (discounted)
	PurchaseUB float64 // EUR, upper bound per budget block (discounted)
	VoT        float64 // EUR per hour of travel time
}

type Regiontype struct {
	ID          int
	Name        string
	SpeedFactor float64 // scales mode speed on routes of this region type
}

// InfrastructureType disaggregates fueling capacity (e.g. depot vs. public
// charging). An empty list selects the simple, fuel-aggregated layout.
type InfrastructureType struct {
	ID       int
	Name     string
	FuelID   int
	PerRoute bool    // tracked per route, not only per location
	Gamma    float64 // utilization factor converting throughput to capacity
	CapexKW  float64 // EUR per kW of expansion
	OpexRate float64 // annual O&M as a fraction of capex
}

// DetourReduction states that installing at least ThresholdKW of fueling
// capacity for Fuel at Geo removes ReductionHours of per-trip detour time.
// InfrastructureTypeID is zero when the rule applies to any type.
type DetourReduction struct {
	ID                   int
	GeoID                int
	FuelID               int
	InfrastructureTypeID int
	ReductionHours       float64
	ThresholdKW          float64
}

// Infrastructure baselines at horizon start. Only additive expansion is
// modeled forward.

type InitialFuelingInfr struct {
	ID                   int
	FuelID               int
	InfrastructureTypeID int // zero in the simple layout
	GeoID                int
	InstalledKW          float64
}

type InitialModeInfr struct {
	ID           int
	ModeID       int
	GeoID        int
	InstalledUkm float64 // tonne-km per year of installed capacity
}

type InitialSupplyInfr struct {
	ID          int
	FuelID      int
	GeoID       int
	InstalledKW float64
}

// EmissionCap bounds total modeled emissions in one year.
type EmissionCap struct {
	ID        int
	Year      int
	CapTonnes float64
}

type ShareKind int

const (
	ShareMode ShareKind = iota
	ShareTech
	SharePurchase
)

func (k ShareKind) String() string {
	switch k {
	case ShareTech:
		return "technology"
	case SharePurchase:
		return "purchase"
	default:
		return "mode"
	}
}

type TargetSense int

const (
	TargetEQ TargetSense = iota
	TargetLE
	TargetGE
)

// ShareTarget ties a flow or purchase subset to a fraction of the matching
// reference total, scoped by region type (zero = all regions) and year.
type ShareTarget struct {
	ID           int
	Kind         ShareKind
	RefID        int // mode id or technology id, by Kind
	Year         int
	Share        float64
	Sense        TargetSense
	RegiontypeID int
}
