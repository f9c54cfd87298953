package model

// MaxDurationH caps a single run at one leap year.
const MaxDurationH = 366 * 24

// LoadSpec is a schedulable appliance run, e.g. a geyser heating cycle.
type LoadSpec struct {
	Name      string  `json:"name,omitempty" yaml:"name"`
	PowerKW   float64 `json:"power_kw" yaml:"power_kw"`
	DurationH float64 `json:"duration_h" yaml:"duration_h"`
}

// EnergyKWh is the energy the appliance consumes over a full run.
func (l LoadSpec) EnergyKWh() float64 {
	return l.PowerKW * l.DurationH
}

func (l LoadSpec) Validate() error {
	if err := CheckPositive("load.power_kw", l.PowerKW); err != nil {
		return err
	}
	if err := CheckPositive("load.duration_h", l.DurationH); err != nil {
		return err
	}
	if l.DurationH > MaxDurationH {
		return invalid("load.duration_h", "must be <= %d, got %g", MaxDurationH, l.DurationH)
	}
	return nil
}
