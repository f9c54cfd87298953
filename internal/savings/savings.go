package savings

import (
	"github.com/shopspring/decimal"

	"geyser-scheduler/internal/model"
)

var (
	daysPerWeek  = decimal.NewFromInt(7)
	daysPerMonth = decimal.NewFromInt(30)
)

// Projection is the grid cost a daily appliance run avoids, in the tariff's currency.
// Values are exact; round only for display.
type Projection struct {
	EnergyKWh decimal.Decimal `json:"energy_kwh"`
	Tariff    decimal.Decimal `json:"tariff_per_kwh"`
	Daily     decimal.Decimal `json:"daily"`
	Weekly    decimal.Decimal `json:"weekly"`
	Monthly   decimal.Decimal `json:"monthly"`
}

// ProjectSavings prices one run per day of load at tariffPerKWh.
// A month is 30 days.
func ProjectSavings(load model.LoadSpec, tariffPerKWh float64) (Projection, error) {
	if err := load.Validate(); err != nil {
		return Projection{}, err
	}
	if err := model.CheckNonNegative("tariff.per_kwh", tariffPerKWh); err != nil {
		return Projection{}, err
	}

	energy := decimal.NewFromFloat(load.PowerKW).Mul(decimal.NewFromFloat(load.DurationH))
	tariff := decimal.NewFromFloat(tariffPerKWh)
	daily := energy.Mul(tariff)
	return Projection{
		EnergyKWh: energy,
		Tariff:    tariff,
		Daily:     daily,
		Weekly:    daily.Mul(daysPerWeek),
		Monthly:   daily.Mul(daysPerMonth),
	}, nil
}

// Rounded returns a copy with every money field rounded half away from zero.
func (p Projection) Rounded(places int32) Projection {
	p.Daily = p.Daily.Round(places)
	p.Weekly = p.Weekly.Round(places)
	p.Monthly = p.Monthly.Round(places)
	return p
}

// AvoidedCost prices energy that did not come from the grid.
func AvoidedCost(kWh, tariffPerKWh float64) (decimal.Decimal, error) {
	if err := model.CheckNonNegative("energy_kwh", kWh); err != nil {
		return decimal.Zero, err
	}
	if err := model.CheckNonNegative("tariff.per_kwh", tariffPerKWh); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(kWh).Mul(decimal.NewFromFloat(tariffPerKWh)), nil
}
