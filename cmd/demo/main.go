package main

import (
	"flag"
	"fmt"
	"math"
	"time"

	"geyser-scheduler/internal/config"
	"geyser-scheduler/internal/model"
	"geyser-scheduler/internal/schedule"
)

// Demo:
// - Build a clear-sky irradiance day (no forecast file needed)
// - Instantiate a half-charged battery
// - Schedule a geyser run and print the interval ledger
func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	step := flag.Duration("step", 30*time.Minute, "Forecast interval")
	peak := flag.Float64("peak", 950, "Midday irradiance in W/m2")
	outCSV := flag.String("out", "", "Optional path to write timeline CSV (e.g. results/timeline.csv)")
	flag.Parse()

	// Defaults (can be overridden via --config).
	initialSOC := 0.5
	reserve := 0.2
	cfg := &config.Config{
		Panel:     config.PanelConfig{SizeKW: 5},
		Battery:   config.BatteryConfig{Name: "demo 10 kWh", CapacityKWh: 10, InitialSOC: &initialSOC, ReserveFraction: &reserve},
		Household: config.HouseholdConfig{LoadKW: 0.5},
		Load:      model.LoadSpec{Name: "geyser", PowerKW: 3, DurationH: 2},
	}
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			panic(err)
		}
		cfg = loaded
	}
	cfg.Forecast.Kind = config.KindIrradiance
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local)
	samples := clearSky(day, *step, *peak)
	profile, err := cfg.Profile(samples, "")
	if err != nil {
		panic(err)
	}
	req, err := cfg.ScheduleRequest(profile)
	if err != nil {
		panic(err)
	}

	res, err := schedule.New().Plan(req)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Battery %s: %.1f kWh, starting at %.1f kWh\n", cfg.Battery.Name, req.Battery.CapacityKWh, req.Battery.EnergyKWh)
	fmt.Printf("Load %s: %.1f kW for %.1f h\n\n", cfg.Load.Name, cfg.Load.PowerKW, cfg.Load.DurationH)

	for _, r := range res.Timeline {
		if r.ProducedKWh == 0 && !r.ApplianceOn {
			continue
		}
		on := " "
		if r.ApplianceOn {
			on = "*"
		}
		fmt.Printf(
			"%s %s pv=%5.2f kW  action=%-11s  stored=%5.2f  discharged=%5.2f  grid=%5.2f  soc=%.3f->%.3f\n",
			r.Start.Format("15:04"),
			on,
			r.PowerKW,
			string(r.Action),
			r.StoredKWh,
			r.DischargedKWh,
			r.GridDrawnKWh,
			r.SOCStart,
			r.SOCEnd,
		)
	}

	if *outCSV != "" {
		if err := schedule.WriteTimelineCSV(*outCSV, res.Timeline); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}

	d := res.First()
	if !d.Feasible {
		fmt.Printf("\nNo run scheduled: %s\n", d.Reason)
		return
	}
	fmt.Printf("\nRun %s at %s until %s, %.2f kWh from battery, %.2f kWh direct solar\n",
		cfg.Load.Name, d.Start.Format("15:04"), d.End.Format("15:04"), d.BatteryRequiredKWh, d.SolarDirectKWh)
}

// clearSky is a half-sine irradiance curve between 06:00 and 19:00.
func clearSky(day time.Time, step time.Duration, peak float64) []model.ForecastSample {
	sunrise := day.Add(6 * time.Hour)
	sunset := day.Add(19 * time.Hour)
	var out []model.ForecastSample
	for t := day; t.Before(day.Add(24 * time.Hour)); t = t.Add(step) {
		v := 0.0
		if t.After(sunrise) && t.Before(sunset) {
			frac := float64(t.Sub(sunrise)) / float64(sunset.Sub(sunrise))
			v = peak * math.Sin(math.Pi*frac)
		}
		out = append(out, model.ForecastSample{Timestamp: t, Value: v})
	}
	return out
}
