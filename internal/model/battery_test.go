package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBatteryState(t *testing.T) {
	s, err := NewBatteryState(10, 0.5, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, s.EnergyKWh, 1e-9)
	assert.InDelta(t, 1.0, s.ReserveKWh(), 1e-9)
	assert.InDelta(t, 4.0, s.AvailableKWh(), 1e-9)
	assert.InDelta(t, 0.5, s.SOC(), 1e-9)

	for name, tc := range map[string]struct {
		capacity, soc, reserve float64
	}{
		"zero capacity":    {0, 0.5, 0.1},
		"soc above one":    {10, 1.2, 0.1},
		"negative soc":     {10, -0.1, 0.1},
		"reserve of one":   {10, 0.5, 1},
		"negative reserve": {10, 0.5, -0.2},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewBatteryState(tc.capacity, tc.soc, tc.reserve)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameter))
			var pe *ParamError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestEfficienciesValidate(t *testing.T) {
	assert.NoError(t, Efficiencies{ChargerEff: 1, InverterEff: 0.9}.Validate())
	assert.ErrorIs(t, Efficiencies{ChargerEff: 0, InverterEff: 0.9}.Validate(), ErrInvalidParameter)
	assert.ErrorIs(t, Efficiencies{ChargerEff: 0.9, InverterEff: 1.1}.Validate(), ErrInvalidParameter)
}

func TestStepSurplusCharges(t *testing.T) {
	s := BatteryState{CapacityKWh: 10, EnergyKWh: 5, ReserveFraction: 0.1}
	eff := Efficiencies{ChargerEff: 0.9, InverterEff: 0.9}

	next, res := s.Step(3, 1, eff)
	assert.InDelta(t, 1.8, res.StoredKWh, 1e-9)
	assert.InDelta(t, 6.8, next.EnergyKWh, 1e-9)
	assert.Zero(t, res.GridDrawnKWh)
	assert.InDelta(t, 0.0, res.CurtailedKWh, 1e-9)
	assert.Equal(t, ActionCharging, ActionFromStep(res))
	// the receiver is untouched
	assert.InDelta(t, 5.0, s.EnergyKWh, 1e-9)
}

func TestStepSurplusCappedAtCapacity(t *testing.T) {
	s := BatteryState{CapacityKWh: 10, EnergyKWh: 9.5, ReserveFraction: 0.1}
	eff := Efficiencies{ChargerEff: 1, InverterEff: 1}

	next, res := s.Step(4, 0, eff)
	assert.InDelta(t, 10.0, next.EnergyKWh, 1e-9)
	assert.InDelta(t, 0.5, res.StoredKWh, 1e-9)
	assert.InDelta(t, 3.5, res.CurtailedKWh, 1e-9)
}

func TestStepWithoutChargingCurtails(t *testing.T) {
	s := BatteryState{CapacityKWh: 10, EnergyKWh: 5, ReserveFraction: 0.1}
	next, res := s.StepWithoutCharging(4, 1, Efficiencies{ChargerEff: 1, InverterEff: 1})
	assert.InDelta(t, 5.0, next.EnergyKWh, 1e-9)
	assert.InDelta(t, 3.0, res.CurtailedKWh, 1e-9)
	assert.Equal(t, ActionIdle, ActionFromStep(res))
}

func TestStepDeficitDischargesToReserve(t *testing.T) {
	s := BatteryState{CapacityKWh: 10, EnergyKWh: 5, ReserveFraction: 0.1}
	eff := Efficiencies{ChargerEff: 1, InverterEff: 0.9}

	next, res := s.Step(0, 3, eff)
	assert.InDelta(t, 3.0/0.9, res.DischargedKWh, 1e-9)
	assert.InDelta(t, 5-3.0/0.9, next.EnergyKWh, 1e-9)
	assert.Zero(t, res.GridDrawnKWh)
	assert.Equal(t, ActionDischarging, ActionFromStep(res))

	// Asking for more than the 4 kWh above reserve leaves a shortfall.
	next, res = s.Step(0, 4.5, eff)
	assert.InDelta(t, 4.0, res.DischargedKWh, 1e-9)
	assert.InDelta(t, 1.0, next.EnergyKWh, 1e-9)
	assert.InDelta(t, 4.5/0.9-4.0, res.GridDrawnKWh, 1e-9)
	assert.Equal(t, ActionShortfall, ActionFromStep(res))
}

func TestStepBelowReserveNeverDischarges(t *testing.T) {
	s := BatteryState{CapacityKWh: 10, EnergyKWh: 0.5, ReserveFraction: 0.1}
	next, res := s.Step(0, 1, Efficiencies{ChargerEff: 1, InverterEff: 1})
	assert.Zero(t, res.DischargedKWh)
	assert.InDelta(t, 1.0, res.GridDrawnKWh, 1e-9)
	assert.InDelta(t, 0.5, next.EnergyKWh, 1e-9)
}

func TestStepConservation(t *testing.T) {
	eff := Efficiencies{ChargerEff: 0.95, InverterEff: 0.9}
	s := BatteryState{CapacityKWh: 7.5, EnergyKWh: 3, ReserveFraction: 0.2}
	produced := []float64{0, 0.4, 2.5, 6, 6, 6, 3, 0.1, 0, 0, 0, 0}
	consumed := []float64{0.7, 0.7, 1.2, 0.5, 0.5, 3.5, 4, 2, 2, 2, 2, 2}
	for i := range produced {
		var res StepResult
		s, res = s.Step(produced[i], consumed[i], eff)
		assert.GreaterOrEqual(t, s.EnergyKWh, 0.0, "step %d", i)
		assert.LessOrEqual(t, s.EnergyKWh, s.CapacityKWh, "step %d", i)
		assert.GreaterOrEqual(t, res.GridDrawnKWh, 0.0, "step %d", i)
		assert.GreaterOrEqual(t, s.EnergyKWh, s.ReserveKWh()-1e-9, "step %d", i)
	}
}
