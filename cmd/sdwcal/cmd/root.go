package cmd

import (
	"github.com/spf13/cobra"

	"sdwcal/internal/config"
	"sdwcal/internal/log"
)

var (
	cfgFile     string
	verbose     bool
	keepScratch bool
)

var rootCmd = &cobra.Command{
	Use:   "sdwcal",
	Short: "Consolidate HR portal calendar exports",
	Long: `sdwcal normalizes the per-day leave/work entries an HR time-tracking
portal exports and consolidates them into fewer multi-day entries,
keeping the original hours and dates as audit notes and printing an
owner/category summary report.

Commands:
  expand  - group, sort and consolidate an export (index variant)
  merge   - normalize exact instants, then consolidate (merge variant)
  fetch   - download the portal export and run the merge pipeline`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "sdwcal.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&keepScratch, "keep-scratch", false, "keep the staging file after the run")
}

func loadConfig() (*config.Config, error) {
	if verbose {
		log.SetLevel(log.LevelDebug)
	}
	return config.Load(cfgFile)
}
