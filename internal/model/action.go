package model

// Action is a human-friendly operating mode for a ledger step.
// Keep these values stable; they are intended for CSV output.
type Action string

const (
	ActionCharging    Action = "CHARGING"
	ActionIdle        Action = "IDLE"
	ActionDischarging Action = "DISCHARGING"
	// ActionShortfall means the battery could not cover the deficit above its reserve.
	ActionShortfall Action = "SHORTFALL"
)

// ActionFromStep classifies a step by what the battery did.
func ActionFromStep(r StepResult) Action {
	switch {
	case r.GridDrawnKWh > 0:
		return ActionShortfall
	case r.StoredKWh > 0:
		return ActionCharging
	case r.DischargedKWh > 0:
		return ActionDischarging
	default:
		return ActionIdle
	}
}
