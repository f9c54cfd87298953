package sizing

import (
	"math"
	"time"

	"geyser-scheduler/internal/model"
)

// Runtime is how long a battery can carry a load during an outage.
type Runtime struct {
	UsableKWh float64       `json:"usable_kwh"`
	LoadKW    float64       `json:"load_kw"`
	Hours     float64       `json:"hours"`
	Duration  time.Duration `json:"-"`
	// Unlimited is set when the load is zero.
	Unlimited bool `json:"unlimited,omitempty"`
}

// BackupRuntime estimates how long the battery can serve loadKW from the
// energy above its reserve floor, after inverter losses.
func BackupRuntime(state model.BatteryState, loadKW, inverterEff float64) (Runtime, error) {
	if err := state.Validate(); err != nil {
		return Runtime{}, err
	}
	if err := model.CheckNonNegative("load_kw", loadKW); err != nil {
		return Runtime{}, err
	}
	if err := model.CheckEfficiency("inverter_efficiency", inverterEff); err != nil {
		return Runtime{}, err
	}

	usable := state.AvailableKWh() * inverterEff
	rt := Runtime{UsableKWh: usable, LoadKW: loadKW}
	if loadKW == 0 {
		rt.Unlimited = true
		return rt, nil
	}
	rt.Hours = usable / loadKW
	if ns := rt.Hours * float64(time.Hour); ns < math.MaxInt64 {
		rt.Duration = time.Duration(ns)
	} else {
		rt.Duration = math.MaxInt64
	}
	return rt, nil
}
