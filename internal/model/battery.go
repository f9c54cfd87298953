package model

import "math"

// BatteryState captures the battery for one simulation run.
// Units:
// - CapacityKWh, EnergyKWh: kWh
// - ReserveFraction: fraction [0,1) of capacity the scheduler will not discharge below
//
// BatteryState is a value type; every Step returns a new state so a
// scheduling run never shares it with another.
type BatteryState struct {
	CapacityKWh     float64 `json:"capacity_kwh"`
	EnergyKWh       float64 `json:"energy_kwh"`
	ReserveFraction float64 `json:"reserve_fraction"`
}

// NewBatteryState builds a state from an initial SOC fraction.
func NewBatteryState(capacityKWh, initialSOC, reserveFraction float64) (BatteryState, error) {
	if initialSOC < 0 || initialSOC > 1 {
		return BatteryState{}, invalid("battery.initial_soc", "must be in [0, 1], got %g", initialSOC)
	}
	s := BatteryState{
		CapacityKWh:     capacityKWh,
		EnergyKWh:       capacityKWh * initialSOC,
		ReserveFraction: reserveFraction,
	}
	if err := s.Validate(); err != nil {
		return BatteryState{}, err
	}
	return s, nil
}

func (s BatteryState) Validate() error {
	if err := CheckPositive("battery.capacity_kwh", s.CapacityKWh); err != nil {
		return err
	}
	if err := CheckFraction("battery.reserve_fraction", s.ReserveFraction); err != nil {
		return err
	}
	if err := checkFinite("battery.energy_kwh", s.EnergyKWh); err != nil {
		return err
	}
	if s.EnergyKWh < 0 || s.EnergyKWh > s.CapacityKWh {
		return invalid("battery.energy_kwh", "must be within [0, %g], got %g", s.CapacityKWh, s.EnergyKWh)
	}
	return nil
}

// ReserveKWh is the reserve floor in kWh.
func (s BatteryState) ReserveKWh() float64 {
	return s.CapacityKWh * s.ReserveFraction
}

// AvailableKWh is the stored energy above the reserve floor (never negative).
func (s BatteryState) AvailableKWh() float64 {
	return math.Max(0, s.EnergyKWh-s.ReserveKWh())
}

// HeadroomKWh is the energy that can still be stored.
func (s BatteryState) HeadroomKWh() float64 {
	return math.Max(0, s.CapacityKWh-s.EnergyKWh)
}

// SOC is the state of charge as a fraction [0,1].
func (s BatteryState) SOC() float64 {
	return s.EnergyKWh / s.CapacityKWh
}

// BelowReserve reports whether the battery sits under its reserve floor.
func (s BatteryState) BelowReserve() bool {
	return s.EnergyKWh < s.ReserveKWh()
}

// Efficiencies are the conversion losses between PV, battery and load.
type Efficiencies struct {
	// ChargerEff applies to surplus energy on its way into the battery.
	ChargerEff float64 `json:"charger_efficiency"`
	// InverterEff applies to energy drawn out of the battery to serve a load.
	InverterEff float64 `json:"inverter_efficiency"`
}

func (e Efficiencies) Validate() error {
	if err := CheckEfficiency("battery.charger_efficiency", e.ChargerEff); err != nil {
		return err
	}
	return CheckEfficiency("battery.inverter_efficiency", e.InverterEff)
}

// StepResult captures what happened in one ledger step.
type StepResult struct {
	ProducedKWh   float64
	ConsumedKWh   float64
	StoredKWh     float64 // energy added to the battery after charger losses
	CurtailedKWh  float64 // surplus that could not be stored
	DischargedKWh float64 // energy withdrawn from the battery
	// GridDrawnKWh is battery-side energy the deficit needed beyond what the
	// battery could give while respecting its reserve. A positive value means
	// the load could not be met from solar and battery alone.
	GridDrawnKWh float64
	EnergyStart  float64
	EnergyEnd    float64
}

// Step applies one interval of production and consumption to the battery.
// producedKWh and consumedKWh must be >= 0.
func (s BatteryState) Step(producedKWh, consumedKWh float64, eff Efficiencies) (BatteryState, StepResult) {
	return s.step(producedKWh, consumedKWh, eff, true)
}

// StepWithoutCharging is Step, except that any solar surplus is curtailed
// instead of charging the battery.
func (s BatteryState) StepWithoutCharging(producedKWh, consumedKWh float64, eff Efficiencies) (BatteryState, StepResult) {
	return s.step(producedKWh, consumedKWh, eff, false)
}

func (s BatteryState) step(producedKWh, consumedKWh float64, eff Efficiencies, allowCharge bool) (BatteryState, StepResult) {
	res := StepResult{
		ProducedKWh: producedKWh,
		ConsumedKWh: consumedKWh,
		EnergyStart: s.EnergyKWh,
	}

	if producedKWh >= consumedKWh {
		surplus := producedKWh - consumedKWh
		if allowCharge {
			storeable := surplus * eff.ChargerEff
			stored := math.Min(storeable, s.HeadroomKWh())
			s.EnergyKWh += stored
			res.StoredKWh = stored
			res.CurtailedKWh = math.Max(0, surplus-stored/eff.ChargerEff)
		} else {
			res.CurtailedKWh = surplus
		}
	} else {
		deficit := consumedKWh - producedKWh
		required := deficit / eff.InverterEff
		discharged := math.Min(required, s.AvailableKWh())
		s.EnergyKWh -= discharged
		res.DischargedKWh = discharged
		res.GridDrawnKWh = required - discharged
	}

	s.EnergyKWh = clamp(s.EnergyKWh, 0, s.CapacityKWh)
	res.EnergyEnd = s.EnergyKWh
	return s, res
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
