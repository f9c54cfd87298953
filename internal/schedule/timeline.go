package schedule

import (
	"time"

	"geyser-scheduler/internal/model"
)

// TimelineRow is one ledger step of a scheduling run.
// This is the primary artifact for "what happened" in a simulation.
type TimelineRow struct {
	Index int

	Start time.Time
	End   time.Time

	PowerKW float64

	// Run is the 1-based appliance run this row belongs to, 0 when the appliance is off.
	Run         int
	ApplianceOn bool

	Action model.Action

	ProducedKWh   float64
	ConsumedKWh   float64
	StoredKWh     float64
	CurtailedKWh  float64
	DischargedKWh float64
	GridDrawnKWh  float64

	EnergyStartKWh float64
	EnergyEndKWh   float64
	SOCStart       float64
	SOCEnd         float64
}

func newRow(idx int, s model.PowerSample, start, end time.Time, capacityKWh float64, res model.StepResult) TimelineRow {
	return TimelineRow{
		Index: idx,

		Start: start,
		End:   end,

		PowerKW: s.PowerKW,

		Action: model.ActionFromStep(res),

		ProducedKWh:   res.ProducedKWh,
		ConsumedKWh:   res.ConsumedKWh,
		StoredKWh:     res.StoredKWh,
		CurtailedKWh:  res.CurtailedKWh,
		DischargedKWh: res.DischargedKWh,
		GridDrawnKWh:  res.GridDrawnKWh,

		EnergyStartKWh: res.EnergyStart,
		EnergyEndKWh:   res.EnergyEnd,
		SOCStart:       res.EnergyStart / capacityKWh,
		SOCEnd:         res.EnergyEnd / capacityKWh,
	}
}
