package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"geyser-scheduler/internal/model"
	"geyser-scheduler/internal/schedule"
	"geyser-scheduler/internal/sizing"

	"gopkg.in/yaml.v3"
)

const (
	KindIrradiance = "irradiance"
	KindPower      = "power"

	DefaultSystemEfficiency = 0.8
	DefaultChargerEff       = 0.95
	DefaultInverterEff      = 0.9
	DefaultHorizon          = 24 * time.Hour
)

// Config is the on-disk scenario shape (YAML). The API accepts the same shape as JSON.
type Config struct {
	Forecast ForecastConfig `yaml:"forecast" json:"forecast"`
	Panel    PanelConfig    `yaml:"panel" json:"panel"`
	// Optional: load battery parameters from a separate YAML (e.g. examples/batteries/*.yaml).
	// If both BatteryFile and Battery are provided, Battery overrides BatteryFile.
	BatteryFile string          `yaml:"battery_file" json:"battery_file,omitempty"`
	Battery     BatteryConfig   `yaml:"battery" json:"battery"`
	Household   HouseholdConfig `yaml:"household" json:"household"`
	Load        model.LoadSpec  `yaml:"load" json:"load"`
	Tariff      TariffConfig    `yaml:"tariff" json:"tariff"`
	Sizing      SizingConfig    `yaml:"sizing" json:"sizing"`
	Scheduler   SchedulerConfig `yaml:"scheduler" json:"scheduler"`
}

type ForecastConfig struct {
	// Path to a JSON or CSV forecast file. Relative paths resolve against the config file.
	Path string `yaml:"path" json:"path,omitempty"`
	// Kind is "irradiance" (W/m²) or "power" (kW). Empty defers to the file.
	Kind string `yaml:"kind" json:"kind,omitempty"`
}

type PanelConfig struct {
	SizeKW           float64  `yaml:"size_kw" json:"size_kw"`
	SystemEfficiency *float64 `yaml:"system_efficiency" json:"system_efficiency,omitempty"`
}

type BatteryConfig struct {
	Name               string   `yaml:"name" json:"name,omitempty"`
	CapacityKWh        float64  `yaml:"capacity_kwh" json:"capacity_kwh"`
	InitialSOC         *float64 `yaml:"initial_soc" json:"initial_soc,omitempty"`
	ReserveFraction    *float64 `yaml:"reserve_fraction" json:"reserve_fraction,omitempty"`
	ChargerEfficiency  *float64 `yaml:"charger_efficiency" json:"charger_efficiency,omitempty"`
	InverterEfficiency *float64 `yaml:"inverter_efficiency" json:"inverter_efficiency,omitempty"`
	NominalVoltage     *float64 `yaml:"nominal_voltage" json:"nominal_voltage,omitempty"`
}

type HouseholdConfig struct {
	LoadKW float64 `yaml:"load_kw" json:"load_kw"`
}

type TariffConfig struct {
	PerKWh   float64 `yaml:"per_kwh" json:"per_kwh"`
	Currency string  `yaml:"currency" json:"currency,omitempty"`
}

// SizingConfig describes the outage the battery should carry.
// The household baseline comes from Household.LoadKW.
type SizingConfig struct {
	ExtraKW      float64 `yaml:"extra_kw" json:"extra_kw"`
	DurationH    float64 `yaml:"duration_h" json:"duration_h"`
	SafetyMargin float64 `yaml:"safety_margin" json:"safety_margin"`
}

type SchedulerConfig struct {
	// Horizon is a Go duration ("24h", "48h"). Default 24h.
	Horizon string `yaml:"horizon" json:"horizon,omitempty"`
	// Now is RFC3339. Empty means the start of the forecast.
	Now             string               `yaml:"now" json:"now,omitempty"`
	ChargeDuringRun *bool                `yaml:"charge_during_run" json:"charge_during_run,omitempty"`
	BelowReserve    string               `yaml:"below_reserve" json:"below_reserve,omitempty"`
	MaxRuns         int                  `yaml:"max_runs" json:"max_runs,omitempty"`
	StartWindow     schedule.StartWindow `yaml:"start_window" json:"start_window,omitempty"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if c.BatteryFile != "" {
		loaded, err := LoadBatteryFile(resolve(dir, c.BatteryFile))
		if err != nil {
			return nil, err
		}
		c.Battery = MergeBattery(loaded, c.Battery)
	}
	if c.Forecast.Path != "" {
		c.Forecast.Path = resolve(dir, c.Forecast.Path)
	}
	return &c, nil
}

// resolve prefers interpreting relative paths as relative to the config file
// directory, but falls back to the provided path (relative to cwd) if that doesn't exist.
func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

// ApplyDefaults fills omitted optional values.
func (c *Config) ApplyDefaults() {
	if c.Panel.SystemEfficiency == nil {
		c.Panel.SystemEfficiency = ptr(DefaultSystemEfficiency)
	}
	if c.Battery.InitialSOC == nil {
		c.Battery.InitialSOC = ptr(1.0)
	}
	if c.Battery.ReserveFraction == nil {
		c.Battery.ReserveFraction = ptr(0.2)
	}
	if c.Battery.ChargerEfficiency == nil {
		c.Battery.ChargerEfficiency = ptr(DefaultChargerEff)
	}
	if c.Battery.InverterEfficiency == nil {
		c.Battery.InverterEfficiency = ptr(DefaultInverterEff)
	}
	if c.Battery.NominalVoltage == nil {
		c.Battery.NominalVoltage = ptr(sizing.DefaultNominalVoltage)
	}
	if c.Load.Name == "" {
		c.Load.Name = "geyser"
	}
	if c.Scheduler.Horizon == "" {
		c.Scheduler.Horizon = DefaultHorizon.String()
	}
	if c.Scheduler.ChargeDuringRun == nil {
		c.Scheduler.ChargeDuringRun = ptr(true)
	}
	if c.Scheduler.BelowReserve == "" {
		c.Scheduler.BelowReserve = string(schedule.BelowReserveHold)
	}
	if c.Scheduler.MaxRuns == 0 {
		c.Scheduler.MaxRuns = 1
	}
}

// Validate checks every value the scheduler will see. Call ApplyDefaults first.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	switch c.Forecast.Kind {
	case "", KindIrradiance, KindPower:
	default:
		return &model.ParamError{Field: "forecast.kind", Message: fmt.Sprintf("must be %q or %q, got %q", KindIrradiance, KindPower, c.Forecast.Kind)}
	}
	if c.Forecast.Kind == KindIrradiance {
		if err := model.CheckPositive("panel.size_kw", c.Panel.SizeKW); err != nil {
			return err
		}
		if err := model.CheckEfficiency("panel.system_efficiency", deref(c.Panel.SystemEfficiency)); err != nil {
			return err
		}
	}
	if _, err := c.BatteryState(); err != nil {
		return fmt.Errorf("battery config invalid: %w", err)
	}
	if err := c.Efficiencies().Validate(); err != nil {
		return err
	}
	if err := model.CheckPositive("battery.nominal_voltage", deref(c.Battery.NominalVoltage)); err != nil {
		return err
	}
	if err := model.CheckNonNegative("household.load_kw", c.Household.LoadKW); err != nil {
		return err
	}
	if err := c.Load.Validate(); err != nil {
		return err
	}
	if err := model.CheckNonNegative("tariff.per_kwh", c.Tariff.PerKWh); err != nil {
		return err
	}
	if _, err := c.HorizonDuration(); err != nil {
		return err
	}
	if _, err := c.NowTime(); err != nil {
		return err
	}
	return nil
}

// BatteryState builds the initial ledger state.
func (c *Config) BatteryState() (model.BatteryState, error) {
	return model.NewBatteryState(c.Battery.CapacityKWh, deref(c.Battery.InitialSOC), deref(c.Battery.ReserveFraction))
}

func (c *Config) Efficiencies() model.Efficiencies {
	return model.Efficiencies{
		ChargerEff:  deref(c.Battery.ChargerEfficiency),
		InverterEff: deref(c.Battery.InverterEfficiency),
	}
}

func (c *Config) HorizonDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Scheduler.Horizon)
	if err != nil {
		return 0, &model.ParamError{Field: "scheduler.horizon", Message: err.Error()}
	}
	if d <= 0 {
		return 0, &model.ParamError{Field: "scheduler.horizon", Message: "must be > 0"}
	}
	return d, nil
}

// NowTime parses scheduler.now; the zero time means "start of forecast".
func (c *Config) NowTime() (time.Time, error) {
	if c.Scheduler.Now == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, c.Scheduler.Now)
	if err != nil {
		return time.Time{}, &model.ParamError{Field: "scheduler.now", Message: err.Error()}
	}
	return t, nil
}

func (c *Config) ScheduleOptions() schedule.Options {
	return schedule.Options{
		ChargeDuringRun: c.Scheduler.ChargeDuringRun == nil || *c.Scheduler.ChargeDuringRun,
		BelowReserve:    schedule.BelowReservePolicy(c.Scheduler.BelowReserve),
		MaxRuns:         c.Scheduler.MaxRuns,
		StartWindow:     c.Scheduler.StartWindow,
	}
}

// Profile converts raw forecast samples into a power profile. fileKind is the
// kind declared by the forecast file, used when the config leaves it empty.
func (c *Config) Profile(samples []model.ForecastSample, fileKind string) (model.PowerProfile, error) {
	kind := c.Forecast.Kind
	if kind == "" {
		kind = fileKind
	}
	switch kind {
	case KindPower:
		return model.ProfileFromPower(samples)
	case KindIrradiance, "":
		return model.ToPowerProfile(samples, c.Panel.SizeKW, deref(c.Panel.SystemEfficiency))
	default:
		return nil, &model.ParamError{Field: "forecast.kind", Message: fmt.Sprintf("unknown kind %q", kind)}
	}
}

// ScheduleRequest assembles a scanner request around profile.
func (c *Config) ScheduleRequest(profile model.PowerProfile) (schedule.Request, error) {
	battery, err := c.BatteryState()
	if err != nil {
		return schedule.Request{}, err
	}
	horizon, err := c.HorizonDuration()
	if err != nil {
		return schedule.Request{}, err
	}
	now, err := c.NowTime()
	if err != nil {
		return schedule.Request{}, err
	}
	return schedule.Request{
		Profile:         profile,
		Battery:         battery,
		HouseholdLoadKW: c.Household.LoadKW,
		Load:            c.Load,
		Efficiencies:    c.Efficiencies(),
		Horizon:         horizon,
		Now:             now,
		Options:         c.ScheduleOptions(),
	}, nil
}

// SizingInput describes the configured outage for the sizing advisor.
func (c *Config) SizingInput() sizing.Input {
	return sizing.Input{
		BaselineKW:      c.Household.LoadKW,
		ExtraKW:         c.Sizing.ExtraKW,
		DurationH:       c.Sizing.DurationH,
		InverterEff:     deref(c.Battery.InverterEfficiency),
		ReserveFraction: deref(c.Battery.ReserveFraction),
		SafetyMargin:    c.Sizing.SafetyMargin,
		NominalVoltage:  deref(c.Battery.NominalVoltage),
	}
}

type batteryFileWrapper struct {
	Battery BatteryConfig `yaml:"battery"`
}

// LoadBatteryFile reads a battery preset file.
func LoadBatteryFile(path string) (BatteryConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BatteryConfig{}, err
	}
	var w batteryFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return BatteryConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.Battery, nil
}

// MergeBattery overlays set fields from override onto base.
// This is used when loading a battery file and then applying overrides from the scenario or request.
func MergeBattery(base, override BatteryConfig) BatteryConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.CapacityKWh != 0 {
		out.CapacityKWh = override.CapacityKWh
	}
	if override.InitialSOC != nil {
		out.InitialSOC = override.InitialSOC
	}
	if override.ReserveFraction != nil {
		out.ReserveFraction = override.ReserveFraction
	}
	if override.ChargerEfficiency != nil {
		out.ChargerEfficiency = override.ChargerEfficiency
	}
	if override.InverterEfficiency != nil {
		out.InverterEfficiency = override.InverterEfficiency
	}
	if override.NominalVoltage != nil {
		out.NominalVoltage = override.NominalVoltage
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
