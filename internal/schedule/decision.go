package schedule

import (
	"encoding/json"
	"time"

	"geyser-scheduler/internal/model"
)

// Reason explains why no run was scheduled. The values are stable API codes.
type Reason string

const (
	ReasonNone Reason = ""
	// ReasonNoForecastData means the profile was empty or entirely outside the horizon.
	ReasonNoForecastData Reason = "NO_FORECAST_DATA"
	// ReasonNoFeasibleWindow means the horizon was exhausted without a feasible start.
	ReasonNoFeasibleWindow Reason = "NO_FEASIBLE_WINDOW"
)

// Decision is the outcome of scheduling one appliance run.
// When Feasible is false, Start and End are zero and Reason is set.
type Decision struct {
	Feasible bool      `json:"feasible"`
	Start    time.Time `json:"start_time"`
	End      time.Time `json:"end_time"`
	Reason   Reason    `json:"reason,omitempty"`

	// BatteryAtStartKWh is the ledger energy immediately before the run.
	BatteryAtStartKWh float64 `json:"battery_at_start_kwh"`
	// BatteryRequiredKWh is the energy discharged from the battery during the run.
	BatteryRequiredKWh float64 `json:"battery_required_kwh"`
	// SolarDirectKWh is PV energy consumed directly while the run was active.
	SolarDirectKWh float64 `json:"solar_direct_kwh"`
	// GridAvoidedKWh is the appliance energy that did not come from the grid.
	GridAvoidedKWh float64 `json:"grid_avoided_kwh"`
}

// MarshalJSON leaves start_time and end_time out of infeasible decisions.
func (d Decision) MarshalJSON() ([]byte, error) {
	type plain Decision
	out := struct {
		plain
		Start *time.Time `json:"start_time,omitempty"`
		End   *time.Time `json:"end_time,omitempty"`
	}{plain: plain(d)}
	if d.Feasible {
		out.Start, out.End = &d.Start, &d.End
	}
	return json.Marshal(out)
}

func absent(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Result is a full scheduling run: every scheduled appliance run plus the
// per-interval ledger that produced them.
type Result struct {
	Runs     []Decision
	Reason   Reason
	Timeline []TimelineRow

	Load             model.LoadSpec
	InitialEnergyKWh float64
	FinalEnergyKWh   float64
	// HouseholdGridKWh is battery-side energy the household alone could not
	// get from solar or battery outside of appliance runs.
	HouseholdGridKWh float64
}

// First returns the earliest run, or an absent decision carrying the reason.
func (r *Result) First() Decision {
	if r == nil {
		return absent(ReasonNoForecastData)
	}
	if len(r.Runs) == 0 {
		return absent(r.Reason)
	}
	return r.Runs[0]
}
