package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"geyser-scheduler/internal/analysis"
	"geyser-scheduler/internal/config"
	"geyser-scheduler/internal/data"
	"geyser-scheduler/internal/model"
)

var sitesPath string

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank candidate sites by forecast solar yield",
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().StringVar(&sitesPath, "sites", "examples/sites.json", "site list JSON")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	list, err := data.LoadSites(sitesPath)
	if err != nil {
		return err
	}

	byName := make(map[string]model.PowerProfile, len(list.Sites))
	for _, site := range list.Sites {
		ff, err := data.LoadForecast(site.Forecast)
		if err != nil {
			return fmt.Errorf("site %s: %w", site.ID, err)
		}
		eff := config.DefaultSystemEfficiency
		cfg := config.Config{Panel: config.PanelConfig{SizeKW: site.PanelKW, SystemEfficiency: &eff}}
		p, err := cfg.Profile(ff.Samples, ff.Kind)
		if err != nil {
			return fmt.Errorf("site %s: %w", site.ID, err)
		}
		byName[site.Name] = p
	}

	ranked := analysis.RankBySolarYield(byName)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-4s %-20s %-6s %-10s %-8s %-8s %-10s\n", "rank", "site", "count", "kWh", "peak", "p95", "prod.h")
	for i, r := range ranked {
		fmt.Fprintf(out, "%-4d %-20s %-6d %-10.2f %-8.2f %-8.2f %-10.1f\n",
			i+1,
			r.Name,
			r.Count,
			r.TotalKWh,
			r.PeakKW,
			r.P95KW,
			r.ProductiveHours,
		)
	}
	return nil
}
