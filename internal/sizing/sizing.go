package sizing

import "geyser-scheduler/internal/model"

// DefaultNominalVoltage is used for amp-hour figures when no bank voltage is given.
const DefaultNominalVoltage = 48.0

// Input describes an outage the battery must ride through.
// Units:
// - BaselineKW, ExtraKW: kW
// - DurationH: hours
// - InverterEff, ReserveFraction, SafetyMargin: fractions
// - NominalVoltage: V (zero means DefaultNominalVoltage)
type Input struct {
	BaselineKW      float64 `json:"baseline_kw"`
	ExtraKW         float64 `json:"extra_kw"`
	DurationH       float64 `json:"duration_h"`
	InverterEff     float64 `json:"inverter_efficiency"`
	ReserveFraction float64 `json:"reserve_fraction"`
	SafetyMargin    float64 `json:"safety_margin"`
	NominalVoltage  float64 `json:"nominal_voltage,omitempty"`
}

func (in Input) Validate() error {
	if err := model.CheckNonNegative("sizing.baseline_kw", in.BaselineKW); err != nil {
		return err
	}
	if err := model.CheckNonNegative("sizing.extra_kw", in.ExtraKW); err != nil {
		return err
	}
	if err := model.CheckPositive("sizing.duration_h", in.DurationH); err != nil {
		return err
	}
	if err := model.CheckEfficiency("sizing.inverter_efficiency", in.InverterEff); err != nil {
		return err
	}
	if err := model.CheckFraction("sizing.reserve_fraction", in.ReserveFraction); err != nil {
		return err
	}
	if err := model.CheckNonNegative("sizing.safety_margin", in.SafetyMargin); err != nil {
		return err
	}
	return model.CheckNonNegative("sizing.nominal_voltage", in.NominalVoltage)
}

// Recommendation is the battery size needed for an Input.
type Recommendation struct {
	// RequiredFromBatteryKWh is the usable energy the outage draws, inverter
	// losses and safety margin included.
	RequiredFromBatteryKWh float64 `json:"required_from_battery_kwh"`
	// RecommendedTotalKWh grosses the usable energy up by the reserve floor.
	RecommendedTotalKWh float64 `json:"recommended_total_kwh"`
	RecommendedAmpHours float64 `json:"recommended_amp_hours"`
	NominalVoltage      float64 `json:"nominal_voltage"`
	LoadKW              float64 `json:"load_kw"`
}

// RecommendCapacity sizes a battery for the outage described by in.
// The result is monotonic in load, duration and safety margin.
func RecommendCapacity(in Input) (Recommendation, error) {
	if err := in.Validate(); err != nil {
		return Recommendation{}, err
	}
	voltage := in.NominalVoltage
	if voltage == 0 {
		voltage = DefaultNominalVoltage
	}

	loadKW := in.BaselineKW + in.ExtraKW
	required := loadKW * in.DurationH / in.InverterEff * (1 + in.SafetyMargin)
	total := required / (1 - in.ReserveFraction)

	return Recommendation{
		RequiredFromBatteryKWh: required,
		RecommendedTotalKWh:    total,
		RecommendedAmpHours:    total * 1000 / voltage,
		NominalVoltage:         voltage,
		LoadKW:                 loadKW,
	}, nil
}
