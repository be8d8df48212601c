package cmd

import (
	"github.com/spf13/cobra"

	"sdwcal/internal/pipeline"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <calendar.ics>",
	Short: "Normalize and consolidate an export into multi-day entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	_, err = pipeline.Run(pipeline.Merge, pipeline.Options{
		InputPath:    args[0],
		OutputSuffix: cfg.MergedSuffix,
		Location:     loc,
		KeepScratch:  keepScratch,
	})
	return err
}
