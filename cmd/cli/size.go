package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"geyser-scheduler/internal/config"
	"geyser-scheduler/internal/sizing"
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Recommend a battery size for the configured outage",
	RunE:  runSize,
}

func init() {
	rootCmd.AddCommand(sizeCmd)
}

func runSize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rec, err := sizing.RecommendCapacity(cfg.SizingInput())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "outage load %.2f kW for %.1f h\n", rec.LoadKW, cfg.Sizing.DurationH)
	fmt.Fprintf(out, "required from battery %.2f kWh\n", rec.RequiredFromBatteryKWh)
	fmt.Fprintf(out, "recommended battery   %.2f kWh (%.0f Ah at %.1f V)\n", rec.RecommendedTotalKWh, rec.RecommendedAmpHours, rec.NominalVoltage)

	state, err := cfg.BatteryState()
	if err != nil {
		return err
	}
	rt, err := sizing.BackupRuntime(state, rec.LoadKW, *cfg.Battery.InverterEfficiency)
	if err != nil {
		return err
	}
	if rt.Unlimited {
		fmt.Fprintf(out, "current battery: no outage load\n")
		return nil
	}
	fmt.Fprintf(out, "current battery %.2f kWh usable, lasts %.1f h\n", rt.UsableKWh, rt.Hours)
	return nil
}
