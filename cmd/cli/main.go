package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"geyser-scheduler/internal/logger"
)

var (
	cfgPath  string
	logLevel string
	log      zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "geyser",
	Short: "Schedule a geyser run around solar and battery state",
	Long: `geyser plans when to run a fixed-power appliance so that it draws on
forecast solar and the home battery instead of the grid.

examples:
  geyser schedule --config examples/config.yaml --out results/timeline.csv
  geyser size --config examples/config.yaml
  geyser savings --power-kw 3 --duration-h 2 --tariff 2.85
  geyser rank --sites examples/sites.json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = logger.NewTo(os.Stderr, "dev", "cli")
		return logger.SetLevel(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "examples/config.yaml", "scenario config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
