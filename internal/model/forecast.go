package model

import (
	"math"
	"time"
)

// DefaultStep is the interval length assumed for a profile built from a single sample.
const DefaultStep = time.Hour

// ForecastSample is one row from a forecast provider.
// Value is GHI in W/m² or power in kW, depending on the provider.
type ForecastSample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// ForecastFile matches the JSON shape of a forecast file.
//
// Example:
//
//	{
//	  "kind": "irradiance",
//	  "samples": [ {"timestamp": "2025-01-01T06:00:00+02:00", "value": 120}, ... ]
//	}
type ForecastFile struct {
	Kind    string           `json:"kind,omitempty"`
	Samples []ForecastSample `json:"samples"`
}

// PowerSample is the available PV power over [Start, End).
type PowerSample struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	PowerKW float64   `json:"power_kw"`
}

func (s PowerSample) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

func (s PowerSample) DurationHours() float64 {
	return s.Duration().Hours()
}

// EnergyKWh is the energy produced over the whole interval.
func (s PowerSample) EnergyKWh() float64 {
	return s.PowerKW * s.DurationHours()
}

// PowerProfile is a chronologically ordered series of power samples.
type PowerProfile []PowerSample

// Start returns the start of the first interval, or the zero time for an empty profile.
func (p PowerProfile) Start() time.Time {
	if len(p) == 0 {
		return time.Time{}
	}
	return p[0].Start
}

// End returns the end of the last interval, or the zero time for an empty profile.
func (p PowerProfile) End() time.Time {
	if len(p) == 0 {
		return time.Time{}
	}
	return p[len(p)-1].End
}

// ToPowerProfile converts irradiance samples (W/m²) into available PV power:
//
//	power_kW = (irradiance / 1000) * panelKW * systemEfficiency
//
// Negative readings (sensor noise at night) are clamped to zero.
func ToPowerProfile(samples []ForecastSample, panelKW, systemEfficiency float64) (PowerProfile, error) {
	if err := CheckPositive("panel.peak_kw", panelKW); err != nil {
		return nil, err
	}
	if err := CheckEfficiency("panel.system_efficiency", systemEfficiency); err != nil {
		return nil, err
	}
	return buildProfile(samples, func(v float64) float64 {
		return (v / 1000) * panelKW * systemEfficiency
	})
}

// ProfileFromPower builds a profile from samples that are already in kW.
func ProfileFromPower(samples []ForecastSample) (PowerProfile, error) {
	return buildProfile(samples, func(v float64) float64 { return v })
}

func buildProfile(samples []ForecastSample, toKW func(float64) float64) (PowerProfile, error) {
	out := make(PowerProfile, len(samples))
	for i, s := range samples {
		if i > 0 && !s.Timestamp.After(samples[i-1].Timestamp) {
			return nil, invalid("forecast.samples", "timestamps must be strictly increasing (index %d at %s)",
				i, s.Timestamp.Format(time.RFC3339))
		}
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			return nil, invalid("forecast.samples", "non-finite value at index %d", i)
		}
		out[i] = PowerSample{
			Start:   s.Timestamp,
			PowerKW: math.Max(0, toKW(s.Value)),
		}
	}
	for i := range out {
		switch {
		case i+1 < len(out):
			out[i].End = out[i+1].Start
		case i > 0:
			// last sample reuses the previous step length
			out[i].End = out[i].Start.Add(out[i-1].Duration())
		default:
			out[i].End = out[i].Start.Add(DefaultStep)
		}
	}
	return out, nil
}
