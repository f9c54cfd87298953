package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"geyser-scheduler/internal/config"
	"geyser-scheduler/internal/model"
	"geyser-scheduler/internal/savings"
)

var savingsFlags struct {
	powerKW   float64
	durationH float64
	tariff    float64
	currency  string
}

var savingsCmd = &cobra.Command{
	Use:   "savings",
	Short: "Project what moving one daily run off the grid saves",
	Long:  "Flags override the load and tariff from --config. Without a config file, all three of --power-kw, --duration-h and --tariff are needed.",
	RunE:  runSavings,
}

func init() {
	f := savingsCmd.Flags()
	f.Float64Var(&savingsFlags.powerKW, "power-kw", 0, "appliance power in kW")
	f.Float64Var(&savingsFlags.durationH, "duration-h", 0, "run duration in hours")
	f.Float64Var(&savingsFlags.tariff, "tariff", 0, "grid tariff per kWh")
	f.StringVar(&savingsFlags.currency, "currency", "", "currency label")
	rootCmd.AddCommand(savingsCmd)
}

func runSavings(cmd *cobra.Command, args []string) error {
	var load model.LoadSpec
	var tariff config.TariffConfig
	if cmd.Flags().Changed("config") || !allSavingsFlags(cmd) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		load, tariff = cfg.Load, cfg.Tariff
	}
	if cmd.Flags().Changed("power-kw") {
		load.PowerKW = savingsFlags.powerKW
	}
	if cmd.Flags().Changed("duration-h") {
		load.DurationH = savingsFlags.durationH
	}
	if cmd.Flags().Changed("tariff") {
		tariff.PerKWh = savingsFlags.tariff
	}
	if savingsFlags.currency != "" {
		tariff.Currency = savingsFlags.currency
	}

	p, err := savings.ProjectSavings(load, tariff.PerKWh)
	if err != nil {
		return err
	}
	p = p.Rounded(2)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s kWh per run at %s %s/kWh\n", p.EnergyKWh.String(), p.Tariff.String(), tariff.Currency)
	fmt.Fprintf(out, "daily   %s\nweekly  %s\nmonthly %s\n", p.Daily.StringFixed(2), p.Weekly.StringFixed(2), p.Monthly.StringFixed(2))
	return nil
}

func allSavingsFlags(cmd *cobra.Command) bool {
	f := cmd.Flags()
	return f.Changed("power-kw") && f.Changed("duration-h") && f.Changed("tariff")
}
