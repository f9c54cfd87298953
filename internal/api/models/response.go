package models

import (
	"time"

	"geyser-scheduler/internal/model"
	"geyser-scheduler/internal/schedule"
	"geyser-scheduler/internal/sizing"
)

// ScheduleResponse represents the response from a scheduling run
type ScheduleResponse struct {
	ID       string              `json:"id,omitempty"`
	Status   string              `json:"status"` // "scheduled" or "not_scheduled"
	Decision schedule.Decision   `json:"decision"`
	Runs     []schedule.Decision `json:"runs"`
	Summary  ScheduleSummary     `json:"summary"`
	Savings  *SavingsResponse    `json:"savings,omitempty"`
	Timeline []TimelineRow       `json:"timeline,omitempty"`
}

// ScheduleSummary contains aggregated results of the scan
type ScheduleSummary struct {
	Load             model.LoadSpec `json:"load"`
	Intervals        int            `json:"intervals"`
	Window           TimeWindow     `json:"window"`
	InitialEnergyKWh float64        `json:"initial_energy_kwh"`
	FinalEnergyKWh   float64        `json:"final_energy_kwh"`
	HouseholdGridKWh float64        `json:"household_grid_kwh"`
	SolarDirectKWh   float64        `json:"solar_direct_kwh"`
	BatteryUsedKWh   float64        `json:"battery_used_kwh"`
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TimelineRow represents one interval in the scheduling timeline
type TimelineRow struct {
	Index          int       `json:"index"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	PowerKW        float64   `json:"power_kw"`
	Run            int       `json:"run,omitempty"`
	ApplianceOn    bool      `json:"appliance_on"`
	Action         string    `json:"action"` // "CHARGING", "DISCHARGING", "IDLE", "SHORTFALL"
	ProducedKWh    float64   `json:"produced_kwh"`
	ConsumedKWh    float64   `json:"consumed_kwh"`
	StoredKWh      float64   `json:"stored_kwh"`
	CurtailedKWh   float64   `json:"curtailed_kwh"`
	DischargedKWh  float64   `json:"discharged_kwh"`
	GridDrawnKWh   float64   `json:"grid_drawn_kwh"`
	EnergyStartKWh float64   `json:"energy_start_kwh"`
	EnergyEndKWh   float64   `json:"energy_end_kwh"`
	SOCStart       float64   `json:"soc_start"`
	SOCEnd         float64   `json:"soc_end"`
}

// TimelineResponse is returned by the timeline lookup
type TimelineResponse struct {
	ID       string        `json:"id"`
	Timeline []TimelineRow `json:"timeline"`
}

// CompareScheduleResponse represents the response from a comparison
type CompareScheduleResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation. Error is set when the
// variation's parameters were invalid.
type ComparisonResult struct {
	Name     string              `json:"name"`
	Status   string              `json:"status"`
	Decision schedule.Decision   `json:"decision"`
	Runs     []schedule.Decision `json:"runs,omitempty"`
	Summary  *ScheduleSummary    `json:"summary,omitempty"`
	Error    *ErrorDetail        `json:"error,omitempty"`
}

// SavingsResponse carries money as fixed-point strings
type SavingsResponse struct {
	Currency  string  `json:"currency,omitempty"`
	EnergyKWh float64 `json:"energy_kwh"`
	Daily     string  `json:"daily"`
	Weekly    string  `json:"weekly"`
	Monthly   string  `json:"monthly"`
	// Avoided prices the grid energy the scheduled runs avoid.
	Avoided   string  `json:"avoided,omitempty"`
}

// SizingResponse represents the battery sizing result
type SizingResponse struct {
	Recommendation sizing.Recommendation `json:"recommendation"`
	Runtime        *RuntimeInfo          `json:"backup_runtime,omitempty"`
}

// RuntimeInfo describes how long the current battery carries the outage load
type RuntimeInfo struct {
	sizing.Runtime
	Battery string `json:"battery,omitempty"`
}

// RankResponse represents the response from ranking sites
type RankResponse struct {
	Rankings []Ranking `json:"rankings"`
}

// Ranking represents one ranked site
type Ranking struct {
	Rank            int     `json:"rank"`
	Name            string  `json:"name"`
	Count           int     `json:"count"`
	TotalKWh        float64 `json:"total_kwh"`
	PeakKW          float64 `json:"peak_kw"`
	MeanKW          float64 `json:"mean_kw"`
	P05KW           float64 `json:"p05_kw"`
	P95KW           float64 `json:"p95_kw"`
	ProductiveHours float64 `json:"productive_hours"`
}

// PresetInfo represents information about a battery preset
type PresetInfo struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	File  string      `json:"file"`
	Specs PresetSpecs `json:"specs"`
}

// PresetSpecs contains battery specifications
type PresetSpecs struct {
	CapacityKWh     float64  `json:"capacity_kwh"`
	ReserveFraction *float64 `json:"reserve_fraction,omitempty"`
	NominalVoltage  *float64 `json:"nominal_voltage,omitempty"`
}

// OptionInfo describes a scheduler option
type OptionInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "bool", "int", "string", "duration", "window"
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
