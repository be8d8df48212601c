package cmd

import (
	"github.com/spf13/cobra"

	"sdwcal/internal/pipeline"
)

var expandCmd = &cobra.Command{
	Use:   "expand <calendar.ics>",
	Short: "Group, sort and consolidate an export (index variant)",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpand,
}

func init() {
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	_, err = pipeline.Run(pipeline.Expand, pipeline.Options{
		InputPath:    args[0],
		OutputSuffix: cfg.ExpandedSuffix,
		KeepScratch:  keepScratch,
	})
	return err
}
