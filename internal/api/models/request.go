package models

import (
	"geyser-scheduler/internal/config"
	"geyser-scheduler/internal/model"
	"geyser-scheduler/internal/sizing"
)

// ForecastPayload carries forecast samples inline. An empty sample list is
// not an error; scheduling reports NO_FORECAST_DATA.
type ForecastPayload struct {
	Kind    string                 `json:"kind,omitempty"` // "irradiance" (default) or "power"
	Samples []model.ForecastSample `json:"samples"`
}

// ScheduleRequest represents the request body for scheduling a load
type ScheduleRequest struct {
	Forecast ForecastPayload `json:"forecast"`
	Config   config.Config   `json:"config"`
	Options  ScheduleOptions `json:"options,omitempty"`
}

// ScheduleOptions contains optional response parameters
type ScheduleOptions struct {
	IncludeTimeline bool `json:"include_timeline,omitempty"` // default: false
}

// CompareScheduleRequest runs several variations of one scenario against the same forecast
type CompareScheduleRequest struct {
	Forecast   ForecastPayload     `json:"forecast"`
	BaseConfig config.Config       `json:"base_config"`
	Variations []ScheduleVariation `json:"variations" binding:"required,min=1,dive"`
}

// ScheduleVariation overrides parts of the base config. Unset fields keep the base value.
type ScheduleVariation struct {
	Name            string                  `json:"name" binding:"required"`
	BatteryFile     string                  `json:"battery_file,omitempty"`
	Battery         config.BatteryConfig    `json:"battery,omitempty"`
	HouseholdLoadKW *float64                `json:"household_load_kw,omitempty"`
	Load            *model.LoadSpec         `json:"load,omitempty"`
	Scheduler       *config.SchedulerConfig `json:"scheduler,omitempty"`
}

// SizingRequest asks for a battery size and, optionally, the backup runtime of a current battery.
type SizingRequest struct {
	sizing.Input
	BatteryFile string                `json:"battery_file,omitempty"`
	Battery     *config.BatteryConfig `json:"battery,omitempty"`
}

// SavingsRequest prices a daily appliance run
type SavingsRequest struct {
	Load         model.LoadSpec `json:"load"`
	TariffPerKWh float64        `json:"tariff_per_kwh"`
	Currency     string         `json:"currency,omitempty"`
}

// RankRequest ranks candidate sites by forecast solar yield
type RankRequest struct {
	Sites []SiteForecast `json:"sites" binding:"required,min=1,dive"`
	Limit int            `json:"limit,omitempty"` // default: 10
}

// SiteForecast is one site's forecast. PanelKW is required for irradiance forecasts.
type SiteForecast struct {
	Name             string                 `json:"name" binding:"required"`
	Kind             string                 `json:"kind,omitempty"`
	PanelKW          float64                `json:"panel_kw,omitempty"`
	SystemEfficiency *float64               `json:"system_efficiency,omitempty"`
	Samples          []model.ForecastSample `json:"samples" binding:"required"`
}
