package schedule

import (
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"geyser-scheduler/internal/model"
)

// gridTolerance absorbs float noise when a run needs exactly the energy available.
const gridTolerance = 1e-9

// BelowReservePolicy decides how a battery that already sits under its
// reserve floor is treated when probing a run.
type BelowReservePolicy string

const (
	// BelowReserveHold lets the run proceed on solar alone; the battery just cannot discharge.
	BelowReserveHold BelowReservePolicy = "hold"
	// BelowReserveReject treats every candidate as infeasible while the battery is below reserve.
	BelowReserveReject BelowReservePolicy = "reject"
)

// Options select between the scheduler variants.
type Options struct {
	// ChargeDuringRun lets solar surplus during an appliance run charge the battery.
	// When false, that surplus is curtailed.
	ChargeDuringRun bool `json:"charge_during_run" yaml:"charge_during_run"`
	// BelowReserve defaults to BelowReserveHold.
	BelowReserve BelowReservePolicy `json:"below_reserve,omitempty" yaml:"below_reserve"`
	// MaxRuns is the number of non-overlapping runs to schedule. Zero means one.
	MaxRuns int `json:"max_runs,omitempty" yaml:"max_runs"`
	// StartWindow restricts the clock times a run may start at.
	StartWindow StartWindow `json:"start_window,omitempty" yaml:"start_window"`
}

func (o Options) withDefaults() Options {
	if o.BelowReserve == "" {
		o.BelowReserve = BelowReserveHold
	}
	if o.MaxRuns == 0 {
		o.MaxRuns = 1
	}
	return o
}

func (o Options) validate() error {
	switch o.BelowReserve {
	case "", BelowReserveHold, BelowReserveReject:
	default:
		return &model.ParamError{Field: "scheduler.below_reserve", Message: "must be \"hold\" or \"reject\", got \"" + string(o.BelowReserve) + "\""}
	}
	if o.MaxRuns < 0 {
		return &model.ParamError{Field: "scheduler.max_runs", Message: "must be >= 0"}
	}
	_, err := o.StartWindow.parse()
	return err
}

// Request bundles everything a scheduling run needs. The battery is copied;
// the caller's value is never mutated.
type Request struct {
	Profile         model.PowerProfile
	Battery         model.BatteryState
	HouseholdLoadKW float64
	Load            model.LoadSpec
	Efficiencies    model.Efficiencies
	// Horizon bounds the candidate start times to [Now, Now+Horizon).
	Horizon time.Duration
	// Now defaults to the start of the profile.
	Now     time.Time
	Options Options
}

// Validate fails fast on any parameter outside its documented range.
func (r Request) Validate() error {
	if err := r.Battery.Validate(); err != nil {
		return err
	}
	if err := r.Efficiencies.Validate(); err != nil {
		return err
	}
	if err := r.Load.Validate(); err != nil {
		return err
	}
	if err := model.CheckNonNegative("household.load_kw", r.HouseholdLoadKW); err != nil {
		return err
	}
	if r.Horizon <= 0 {
		return &model.ParamError{Field: "scheduler.horizon", Message: "must be > 0"}
	}
	for i, s := range r.Profile {
		if s.PowerKW < 0 || math.IsNaN(s.PowerKW) || math.IsInf(s.PowerKW, 0) {
			return &model.ParamError{Field: "profile", Message: "power must be a finite value >= 0 at index " + strconv.Itoa(i)}
		}
		if !s.End.After(s.Start) {
			return &model.ParamError{Field: "profile", Message: "interval end must be after start at index " + strconv.Itoa(i)}
		}
		if i > 0 && s.Start.Before(r.Profile[i-1].End) {
			return &model.ParamError{Field: "profile", Message: "intervals must be ordered and non-overlapping at index " + strconv.Itoa(i)}
		}
	}
	return r.Options.validate()
}

// Scanner finds feasible appliance runs by walking a power profile forward.
// It holds no state between calls; the same request always yields the same result.
type Scanner struct {
	log zerolog.Logger
}

func New() *Scanner { return &Scanner{log: zerolog.Nop()} }

// WithLogger returns a scanner that writes debug output to l.
func (s *Scanner) WithLogger(l zerolog.Logger) *Scanner {
	return &Scanner{log: l}
}

// FindEarliestFeasibleStart returns the first start time at which the load can
// run for its full duration from solar and battery without touching the grid
// or discharging below the reserve floor.
func (s *Scanner) FindEarliestFeasibleStart(req Request) (Decision, error) {
	req.Options.MaxRuns = 1
	res, err := s.Plan(req)
	if err != nil {
		return Decision{}, err
	}
	return res.First(), nil
}

// Plan runs the forward scan and returns every scheduled run together with the timeline.
// Each run is committed to the ledger before scanning resumes after it.
func (s *Scanner) Plan(req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	opts := req.Options.withDefaults()
	window, err := opts.StartWindow.parse()
	if err != nil {
		return nil, err
	}

	p := req.Profile
	now := req.Now
	if now.IsZero() {
		now = p.Start()
	}
	until := now.Add(req.Horizon)

	res := &Result{
		Load:             req.Load,
		InitialEnergyKWh: req.Battery.EnergyKWh,
		FinalEnergyKWh:   req.Battery.EnergyKWh,
	}

	first := 0
	for first < len(p) && p[first].Start.Before(now) {
		first++
	}
	if first == len(p) || !p[first].Start.Before(until) {
		res.Reason = ReasonNoForecastData
		s.log.Debug().Int("samples", len(p)).Time("now", now).Dur("horizon", req.Horizon).Msg("no forecast data in horizon")
		return res, nil
	}

	state := req.Battery
	for i := first; i < len(p) && p[i].Start.Before(until); {
		sample := p[i]

		if len(res.Runs) < opts.MaxRuns && window.allows(sample.Start) {
			pr := s.probe(req, opts, state, i)
			if pr.feasible {
				runNo := len(res.Runs) + 1
				for k := range pr.rows {
					if pr.rows[k].ApplianceOn {
						pr.rows[k].Run = runNo
					}
				}
				res.Runs = append(res.Runs, pr.decision)
				res.Timeline = append(res.Timeline, pr.rows...)
				res.HouseholdGridKWh += pr.householdGrid
				state = pr.state
				s.log.Debug().
					Int("run", runNo).
					Time("start", pr.decision.Start).
					Float64("battery_at_start_kwh", pr.decision.BatteryAtStartKWh).
					Float64("battery_required_kwh", pr.decision.BatteryRequiredKWh).
					Msg("feasible run found")
				i = pr.next
				continue
			}
		}

		dtH := sample.DurationHours()
		next, step := state.Step(sample.PowerKW*dtH, req.HouseholdLoadKW*dtH, req.Efficiencies)
		res.Timeline = append(res.Timeline, newRow(i, sample, sample.Start, sample.End, state.CapacityKWh, step))
		res.HouseholdGridKWh += step.GridDrawnKWh
		state = next
		i++
	}

	res.FinalEnergyKWh = state.EnergyKWh
	if len(res.Runs) < opts.MaxRuns {
		res.Reason = ReasonNoFeasibleWindow
	}
	s.log.Debug().
		Int("runs", len(res.Runs)).
		Str("reason", string(res.Reason)).
		Float64("final_energy_kwh", res.FinalEnergyKWh).
		Msg("scan complete")
	return res, nil
}

type probeResult struct {
	feasible bool
	decision Decision
	rows     []TimelineRow
	state    model.BatteryState
	// next is the first profile index after the run's last interval.
	next          int
	householdGrid float64
}

// probe simulates the load starting at p[j].Start on a copy of the ledger.
// Any step that needs grid energy aborts the probe. On success the returned
// state is aligned to the end of the interval the run finishes in.
func (s *Scanner) probe(req Request, opts Options, state model.BatteryState, j int) probeResult {
	if opts.BelowReserve == BelowReserveReject && state.BelowReserve() {
		return probeResult{}
	}

	p := req.Profile
	out := probeResult{
		decision: Decision{
			Feasible:          true,
			Start:             p[j].Start,
			End:               p[j].Start.Add(hoursToDuration(req.Load.DurationH)),
			BatteryAtStartKWh: state.EnergyKWh,
			GridAvoidedKWh:    req.Load.EnergyKWh(),
		},
	}

	remaining := req.Load.DurationH
	cur := state
	k := j
	for remaining > 1e-12 {
		if k >= len(p) {
			return probeResult{}
		}
		sample := p[k]
		if k > j && !sample.Start.Equal(p[k-1].End) {
			// gap in the forecast
			return probeResult{}
		}
		dtH := sample.DurationHours()
		runH := math.Min(remaining, dtH)

		produced := sample.PowerKW * runH
		consumed := (req.HouseholdLoadKW + req.Load.PowerKW) * runH
		var next model.BatteryState
		var r model.StepResult
		if opts.ChargeDuringRun {
			next, r = cur.Step(produced, consumed, req.Efficiencies)
		} else {
			next, r = cur.StepWithoutCharging(produced, consumed, req.Efficiencies)
		}
		if r.GridDrawnKWh > gridTolerance {
			return probeResult{}
		}

		runEnd := sample.Start.Add(hoursToDuration(runH))
		if runH >= dtH {
			runEnd = sample.End
		}
		row := newRow(k, sample, sample.Start, runEnd, cur.CapacityKWh, r)
		row.ApplianceOn = true
		out.rows = append(out.rows, row)
		out.decision.BatteryRequiredKWh += r.DischargedKWh
		out.decision.SolarDirectKWh += math.Min(produced, consumed)
		cur = next
		remaining -= runH

		if runH < dtH {
			// the run ends inside this interval; the rest is household only
			restH := dtH - runH
			after, rr := cur.Step(sample.PowerKW*restH, req.HouseholdLoadKW*restH, req.Efficiencies)
			out.rows = append(out.rows, newRow(k, sample, runEnd, sample.End, cur.CapacityKWh, rr))
			out.householdGrid += rr.GridDrawnKWh
			cur = after
		}
		k++
	}

	out.feasible = true
	out.state = cur
	out.next = k
	return out
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(math.Round(h * float64(time.Hour)))
}
