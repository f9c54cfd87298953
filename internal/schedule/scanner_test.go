package schedule

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geyser-scheduler/internal/model"
)

var t0 = time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)

func profileOf(step time.Duration, powers ...float64) model.PowerProfile {
	p := make(model.PowerProfile, len(powers))
	for i, kw := range powers {
		start := t0.Add(time.Duration(i) * step)
		p[i] = model.PowerSample{Start: start, End: start.Add(step), PowerKW: kw}
	}
	return p
}

func repeat(n int, kw float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = kw
	}
	return out
}

func battery(t *testing.T, capacity, soc, reserve float64) model.BatteryState {
	t.Helper()
	b, err := model.NewBatteryState(capacity, soc, reserve)
	require.NoError(t, err)
	return b
}

func baseRequest(t *testing.T, p model.PowerProfile) Request {
	return Request{
		Profile:         p,
		Battery:         battery(t, 10, 0.5, 0.1),
		HouseholdLoadKW: 0,
		Load:            model.LoadSpec{Name: "geyser", PowerKW: 3, DurationH: 1},
		Efficiencies:    model.Efficiencies{ChargerEff: 1, InverterEff: 1},
		Horizon:         24 * time.Hour,
		Options:         Options{ChargeDuringRun: true},
	}
}

func TestScenarioSolarCoversRun(t *testing.T) {
	req := baseRequest(t, profileOf(time.Hour, repeat(24, 5)...))

	d, err := New().FindEarliestFeasibleStart(req)
	require.NoError(t, err)
	assert.True(t, d.Feasible)
	assert.Equal(t, t0, d.Start)
	assert.Equal(t, t0.Add(time.Hour), d.End)
	assert.Equal(t, ReasonNone, d.Reason)
	assert.InDelta(t, 5.0, d.BatteryAtStartKWh, 1e-9)
	assert.InDelta(t, 0.0, d.BatteryRequiredKWh, 1e-9)
	assert.InDelta(t, 3.0, d.SolarDirectKWh, 1e-9)
	assert.InDelta(t, 3.0, d.GridAvoidedKWh, 1e-9)
}

func TestScenarioBatteryCoversRun(t *testing.T) {
	req := baseRequest(t, profileOf(time.Hour, repeat(24, 0)...))
	req.Efficiencies.InverterEff = 0.9

	d, err := New().FindEarliestFeasibleStart(req)
	require.NoError(t, err)
	assert.True(t, d.Feasible)
	assert.Equal(t, t0, d.Start)
	assert.InDelta(t, 5.0, d.BatteryAtStartKWh, 1e-9)
	assert.InDelta(t, 3.0/0.9, d.BatteryRequiredKWh, 1e-9)
}

func TestScenarioBatteryAtReserveNoSolar(t *testing.T) {
	req := baseRequest(t, profileOf(time.Hour, repeat(24, 0)...))
	req.Battery = battery(t, 10, 0.1, 0.1)
	req.Efficiencies.InverterEff = 0.9

	d, err := New().FindEarliestFeasibleStart(req)
	require.NoError(t, err)
	assert.False(t, d.Feasible)
	assert.True(t, d.Start.IsZero())
	assert.Equal(t, ReasonNoFeasibleWindow, d.Reason)
}

func TestNoForecastData(t *testing.T) {
	s := New()

	req := baseRequest(t, nil)
	d, err := s.FindEarliestFeasibleStart(req)
	require.NoError(t, err)
	assert.False(t, d.Feasible)
	assert.Equal(t, ReasonNoForecastData, d.Reason)

	req = baseRequest(t, profileOf(time.Hour, repeat(6, 5)...))
	req.Now = t0.Add(10 * time.Hour)
	d, err = s.FindEarliestFeasibleStart(req)
	require.NoError(t, err)
	assert.Equal(t, ReasonNoForecastData, d.Reason)

	req.Now = t0.Add(-48 * time.Hour)
	d, err = s.FindEarliestFeasibleStart(req)
	require.NoError(t, err)
	assert.Equal(t, ReasonNoForecastData, d.Reason)
}

func TestInvalidParametersFailFast(t *testing.T) {
	for name, mutate := range map[string]func(*Request){
		"zero load power":       func(r *Request) { r.Load.PowerKW = 0 },
		"negative duration":     func(r *Request) { r.Load.DurationH = -1 },
		"duration over a year":  func(r *Request) { r.Load.DurationH = 3e6 },
		"nan household":         func(r *Request) { r.HouseholdLoadKW = math.NaN() },
		"negative household":    func(r *Request) { r.HouseholdLoadKW = -0.5 },
		"zero charger eff":      func(r *Request) { r.Efficiencies.ChargerEff = 0 },
		"inverter above one":    func(r *Request) { r.Efficiencies.InverterEff = 1.01 },
		"zero horizon":          func(r *Request) { r.Horizon = 0 },
		"unknown reserve rule":  func(r *Request) { r.Options.BelowReserve = "maybe" },
		"negative max runs":     func(r *Request) { r.Options.MaxRuns = -1 },
		"bad window":            func(r *Request) { r.Options.StartWindow = StartWindow{From: "25:00", To: "10:00"} },
		"half window":           func(r *Request) { r.Options.StartWindow = StartWindow{From: "10:00"} },
		"empty window":          func(r *Request) { r.Options.StartWindow = StartWindow{From: "10:00", To: "10:00"} },
		"energy above capacity": func(r *Request) { r.Battery.EnergyKWh = 11 },
		"negative power":        func(r *Request) { r.Profile[2].PowerKW = -1 },
		"overlapping intervals": func(r *Request) { r.Profile[1].Start = r.Profile[0].Start.Add(10 * time.Minute) },
	} {
		t.Run(name, func(t *testing.T) {
			req := baseRequest(t, profileOf(time.Hour, repeat(6, 5)...))
			mutate(&req)
			_, err := New().Plan(req)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrInvalidParameter)
		})
	}
}

func TestWaitsForSolar(t *testing.T) {
	powers := append(repeat(6, 0), repeat(8, 4)...)
	req := baseRequest(t, profileOf(time.Hour, powers...))
	req.Battery = battery(t, 10, 0.1, 0.1)
	req.HouseholdLoadKW = 0.5

	d, err := New().FindEarliestFeasibleStart(req)
	require.NoError(t, err)
	require.True(t, d.Feasible)
	assert.Equal(t, t0.Add(6*time.Hour), d.Start)
	assert.InDelta(t, 0.0, d.BatteryRequiredKWh, 1e-9)
}

func TestBatteryChargesBeforeRun(t *testing.T) {
	powers := append(repeat(6, 0), repeat(8, 2)...)
	req := baseRequest(t, profileOf(time.Hour, powers...))
	req.Battery = battery(t, 10, 0.1, 0.1)

	res, err := New().Plan(req)
	require.NoError(t, err)
	d := res.First()
	require.True(t, d.Feasible)
	// hour 6 can only store 2 kWh; the run fits from hour 7 with 1 kWh from the battery
	assert.Equal(t, t0.Add(7*time.Hour), d.Start)
	assert.InDelta(t, 3.0, d.BatteryAtStartKWh, 1e-9)
	assert.InDelta(t, 1.0, d.BatteryRequiredKWh, 1e-9)
}

func TestReturnedRunNeverDrawsGrid(t *testing.T) {
	powers := []float64{0, 0, 0.3, 1.2, 2.5, 3.8, 4.6, 4.9, 4.4, 3.5, 2.1, 0.8, 0.1, 0, 0, 0}
	req := baseRequest(t, profileOf(time.Hour, powers...))
	req.Battery = battery(t, 5, 0.2, 0.2)
	req.HouseholdLoadKW = 0.6
	req.Load = model.LoadSpec{Name: "geyser", PowerKW: 3, DurationH: 2}
	req.Efficiencies = model.Efficiencies{ChargerEff: 0.95, InverterEff: 0.9}
	req.Options.MaxRuns = 2

	res, err := New().Plan(req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Runs)

	reserve := req.Battery.ReserveKWh()
	onRows := 0
	for _, row := range res.Timeline {
		assert.GreaterOrEqual(t, row.EnergyEndKWh, 0.0)
		assert.LessOrEqual(t, row.EnergyEndKWh, req.Battery.CapacityKWh)
		if !row.ApplianceOn {
			continue
		}
		onRows++
		assert.LessOrEqual(t, row.GridDrawnKWh, gridTolerance, "row %d", row.Index)
		assert.GreaterOrEqual(t, row.EnergyEndKWh, reserve-1e-9, "row %d", row.Index)
		assert.NotZero(t, row.Run)
	}
	assert.Positive(t, onRows)
}

func TestIdempotent(t *testing.T) {
	powers := []float64{0, 0.5, 1.5, 3, 4, 4.5, 4, 3, 1.5, 0.5, 0}
	req := baseRequest(t, profileOf(30*time.Minute, powers...))
	req.Battery = battery(t, 10, 0.15, 0.1)
	req.HouseholdLoadKW = 0.4
	req.Options.MaxRuns = 2

	s := New()
	a, err := s.Plan(req)
	require.NoError(t, err)
	b, err := s.Plan(req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunEndingMidInterval(t *testing.T) {
	req := baseRequest(t, profileOf(time.Hour, repeat(4, 0)...))
	req.Battery = battery(t, 10, 1, 0)
	req.Load = model.LoadSpec{PowerKW: 2, DurationH: 1.5}

	res, err := New().Plan(req)
	require.NoError(t, err)
	d := res.First()
	require.True(t, d.Feasible)
	assert.Equal(t, t0.Add(90*time.Minute), d.End)
	assert.InDelta(t, 3.0, d.BatteryRequiredKWh, 1e-9)

	require.Len(t, res.Timeline, 5)
	assert.True(t, res.Timeline[0].ApplianceOn)
	assert.True(t, res.Timeline[1].ApplianceOn)
	assert.Equal(t, t0.Add(90*time.Minute), res.Timeline[1].End)
	assert.False(t, res.Timeline[2].ApplianceOn)
	assert.Equal(t, t0.Add(90*time.Minute), res.Timeline[2].Start)
	assert.Equal(t, t0.Add(2*time.Hour), res.Timeline[2].End)
	assert.Equal(t, 1, res.Timeline[2].Index)
	assert.InDelta(t, 7.0, res.FinalEnergyKWh, 1e-9)
}

func TestIrregularSteps(t *testing.T) {
	p := model.PowerProfile{
		{Start: t0, End: t0.Add(15 * time.Minute), PowerKW: 0},
		{Start: t0.Add(15 * time.Minute), End: t0.Add(45 * time.Minute), PowerKW: 4},
		{Start: t0.Add(45 * time.Minute), End: t0.Add(105 * time.Minute), PowerKW: 4},
		{Start: t0.Add(105 * time.Minute), End: t0.Add(165 * time.Minute), PowerKW: 4},
	}
	req := baseRequest(t, p)
	req.Battery = battery(t, 10, 0, 0)

	d, err := New().FindEarliestFeasibleStart(req)
	require.NoError(t, err)
	require.True(t, d.Feasible)
	assert.Equal(t, t0.Add(15*time.Minute), d.Start)
	assert.Equal(t, t0.Add(75*time.Minute), d.End)
}

func TestForecastEndingMidRunIsInfeasible(t *testing.T) {
	req := baseRequest(t, profileOf(time.Hour, repeat(2, 5)...))
	req.Load.DurationH = 3

	d, err := New().FindEarliestFeasibleStart(req)
	require.NoError(t, err)
	assert.False(t, d.Feasible)
	assert.Equal(t, ReasonNoFeasibleWindow, d.Reason)
}

func TestChargeDuringRun(t *testing.T) {
	p := profileOf(time.Hour, 5, 0, 0)

	on := baseRequest(t, p)
	on.Options.ChargeDuringRun = true
	resOn, err := New().Plan(on)
	require.NoError(t, err)

	off := baseRequest(t, p)
	off.Options.ChargeDuringRun = false
	resOff, err := New().Plan(off)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, resOn.Timeline[0].StoredKWh, 1e-9)
	assert.InDelta(t, 0.0, resOff.Timeline[0].StoredKWh, 1e-9)
	assert.InDelta(t, 2.0, resOff.Timeline[0].CurtailedKWh, 1e-9)
	assert.InDelta(t, resOn.FinalEnergyKWh-2, resOff.FinalEnergyKWh, 1e-9)
	assert.Equal(t, resOn.First().Start, resOff.First().Start)
}

func TestBelowReservePolicies(t *testing.T) {
	p := profileOf(time.Hour, repeat(4, 5)...)
	low := battery(t, 10, 0.05, 0.1)

	hold := baseRequest(t, p)
	hold.Battery = low
	d, err := New().FindEarliestFeasibleStart(hold)
	require.NoError(t, err)
	require.True(t, d.Feasible)
	assert.Equal(t, t0, d.Start)

	reject := baseRequest(t, p)
	reject.Battery = low
	reject.Options.BelowReserve = BelowReserveReject
	d, err = New().FindEarliestFeasibleStart(reject)
	require.NoError(t, err)
	require.True(t, d.Feasible)
	assert.Equal(t, t0.Add(time.Hour), d.Start)
	assert.InDelta(t, 5.5, d.BatteryAtStartKWh, 1e-9)
}

func TestMultipleRuns(t *testing.T) {
	req := baseRequest(t, profileOf(time.Hour, repeat(8, 0)...))
	req.Battery = battery(t, 10, 1, 0.1)
	req.Options.MaxRuns = 4

	res, err := New().Plan(req)
	require.NoError(t, err)
	require.Len(t, res.Runs, 3)
	assert.Equal(t, ReasonNoFeasibleWindow, res.Reason)
	for i, run := range res.Runs {
		assert.Equal(t, t0.Add(time.Duration(i)*time.Hour), run.Start)
		assert.InDelta(t, 3.0, run.BatteryRequiredKWh, 1e-9)
	}
	assert.InDelta(t, 10.0, res.Runs[0].BatteryAtStartKWh, 1e-9)
	assert.InDelta(t, 4.0, res.Runs[2].BatteryAtStartKWh, 1e-9)
	assert.InDelta(t, 1.0, res.FinalEnergyKWh, 1e-9)
	assert.Len(t, res.Timeline, 8)
	assert.Equal(t, 3, res.Timeline[2].Run)
	assert.Zero(t, res.Timeline[3].Run)

	req.Options.MaxRuns = 2
	res, err = New().Plan(req)
	require.NoError(t, err)
	assert.Len(t, res.Runs, 2)
	assert.Equal(t, ReasonNone, res.Reason)
}

func TestStartWindow(t *testing.T) {
	req := baseRequest(t, profileOf(time.Hour, repeat(24, 5)...))
	req.Options.StartWindow = StartWindow{From: "10:00", To: "12:00"}

	d, err := New().FindEarliestFeasibleStart(req)
	require.NoError(t, err)
	require.True(t, d.Feasible)
	assert.Equal(t, 10, d.Start.Hour())

	// wraps midnight; t0 is 06:00 so the first allowed start is 22:00
	req.Options.StartWindow = StartWindow{From: "22:00", To: "02:00"}
	d, err = New().FindEarliestFeasibleStart(req)
	require.NoError(t, err)
	require.True(t, d.Feasible)
	assert.Equal(t, t0.Add(16*time.Hour), d.Start)
}

func TestHorizonBoundsCandidates(t *testing.T) {
	powers := append(repeat(6, 0), repeat(6, 5)...)
	req := baseRequest(t, profileOf(time.Hour, powers...))
	req.Battery = battery(t, 10, 0.1, 0.1)
	req.Horizon = 4 * time.Hour

	res, err := New().Plan(req)
	require.NoError(t, err)
	assert.Empty(t, res.Runs)
	assert.Equal(t, ReasonNoFeasibleWindow, res.Reason)
	assert.Len(t, res.Timeline, 4)
}

func TestNowSkipsEarlierSamples(t *testing.T) {
	req := baseRequest(t, profileOf(time.Hour, repeat(12, 5)...))
	req.Now = t0.Add(150 * time.Minute)

	d, err := New().FindEarliestFeasibleStart(req)
	require.NoError(t, err)
	require.True(t, d.Feasible)
	assert.Equal(t, t0.Add(3*time.Hour), d.Start)
}

func TestEncodeTimelineCSV(t *testing.T) {
	req := baseRequest(t, profileOf(time.Hour, repeat(3, 5)...))
	res, err := New().Plan(req)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeTimelineCSV(&buf, res.Timeline))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "index,start,end,power_kw,run,appliance_on,action"))
	assert.Contains(t, lines[1], "2025-03-01T06:00:00Z")
	assert.Contains(t, lines[1], ",1,true,CHARGING,")
	assert.Contains(t, lines[2], ",0,false,CHARGING,")
}

func TestClockWindow(t *testing.T) {
	m, err := parseHHMM("07:30")
	require.NoError(t, err)
	assert.Equal(t, 450, m)
	for _, bad := range []string{"7", "24:00", "12:60", "ab:cd", ""} {
		_, err := parseHHMM(bad)
		assert.Error(t, err, bad)
	}

	assert.True(t, inWindow(600, 540, 720))
	assert.False(t, inWindow(720, 540, 720))
	assert.True(t, inWindow(1400, 1320, 120))
	assert.True(t, inWindow(60, 1320, 120))
	assert.False(t, inWindow(600, 1320, 120))

	w, err := StartWindow{}.parse()
	require.NoError(t, err)
	assert.True(t, w.allows(t0))
}
