package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"geyser-scheduler/internal/config"
	"geyser-scheduler/internal/data"
	"geyser-scheduler/internal/savings"
	"geyser-scheduler/internal/schedule"
)

var scheduleFlags struct {
	forecast string
	out      string
	now      string
	asJSON   bool
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Find the earliest start that avoids the grid",
	RunE:  runSchedule,
}

func init() {
	f := scheduleCmd.Flags()
	f.StringVar(&scheduleFlags.forecast, "forecast", "", "forecast file (json or csv); overrides forecast.path")
	f.StringVar(&scheduleFlags.out, "out", "", "write the interval timeline to this CSV file")
	f.StringVar(&scheduleFlags.now, "now", "", "RFC3339 start of the scan; overrides scheduler.now")
	f.BoolVar(&scheduleFlags.asJSON, "json", false, "print the decision as JSON")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if scheduleFlags.forecast != "" {
		cfg.Forecast.Path = scheduleFlags.forecast
	}
	if scheduleFlags.now != "" {
		cfg.Scheduler.Now = scheduleFlags.now
	}
	if cfg.Forecast.Path == "" {
		return fmt.Errorf("no forecast: set forecast.path or --forecast")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("flags: %w", err)
	}

	ff, err := data.LoadForecast(cfg.Forecast.Path)
	if err != nil {
		return fmt.Errorf("load forecast: %w", err)
	}
	profile, err := cfg.Profile(ff.Samples, ff.Kind)
	if err != nil {
		return err
	}
	req, err := cfg.ScheduleRequest(profile)
	if err != nil {
		return err
	}
	log.Debug().Int("intervals", len(profile)).Str("forecast", cfg.Forecast.Path).Msg("forecast loaded")

	res, err := schedule.New().WithLogger(log).Plan(req)
	if err != nil {
		return err
	}

	if scheduleFlags.out != "" {
		if err := os.MkdirAll(filepath.Dir(scheduleFlags.out), 0o755); err != nil {
			return err
		}
		if err := schedule.WriteTimelineCSV(scheduleFlags.out, res.Timeline); err != nil {
			return err
		}
		log.Info().Int("rows", len(res.Timeline)).Str("path", scheduleFlags.out).Msg("timeline written")
	}

	out := cmd.OutOrStdout()
	if scheduleFlags.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Runs)
	}

	if len(res.Runs) == 0 {
		fmt.Fprintf(out, "No run scheduled: %s\n", res.Reason)
		return nil
	}
	for i, d := range res.Runs {
		fmt.Fprintf(out, "run %d: %s -> %s  battery at start %.2f kWh, from battery %.2f kWh, solar direct %.2f kWh\n",
			i+1,
			d.Start.Format("2006-01-02 15:04 MST"),
			d.End.Format("15:04"),
			d.BatteryAtStartKWh,
			d.BatteryRequiredKWh,
			d.SolarDirectKWh,
		)
	}
	fmt.Fprintf(out, "battery %.2f -> %.2f kWh, household grid %.2f kWh\n", res.InitialEnergyKWh, res.FinalEnergyKWh, res.HouseholdGridKWh)

	if cfg.Tariff.PerKWh > 0 {
		p, err := savings.ProjectSavings(cfg.Load, cfg.Tariff.PerKWh)
		if err != nil {
			return err
		}
		p = p.Rounded(2)
		fmt.Fprintf(out, "savings %s: daily %s, weekly %s, monthly %s\n",
			cfg.Tariff.Currency, p.Daily.StringFixed(2), p.Weekly.StringFixed(2), p.Monthly.StringFixed(2))
	}
	return nil
}
