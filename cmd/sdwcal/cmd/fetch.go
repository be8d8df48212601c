package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"sdwcal/internal/fetch"
	"sdwcal/internal/log"
	"sdwcal/internal/pipeline"
)

var watch bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the portal export and run the merge pipeline",
	Args:  cobra.NoArgs,
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&watch, "watch", false, "keep running on the configured cron schedule")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Portal == nil || cfg.Portal.URL == "" {
		return errors.New("portal.url is not configured")
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	fetcher := fetch.NewFetcher(cfg.Portal.CacheDir)
	runOnce := func() error {
		res, err := fetcher.Fetch(ctx, cfg.Portal.URL)
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.Portal.DownloadPath, res.Body, 0o600); err != nil {
			return err
		}
		_, err = pipeline.Run(pipeline.Merge, pipeline.Options{
			InputPath:    cfg.Portal.DownloadPath,
			OutputSuffix: cfg.MergedSuffix,
			Location:     loc,
			KeepScratch:  keepScratch,
		})
		return err
	}

	if err := runOnce(); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Portal.RefreshCron, func() {
		if err := runOnce(); err != nil {
			log.Error("scheduled run failed", err)
		}
	}); err != nil {
		return err
	}
	c.Start()
	log.Info("watching", "schedule", cfg.Portal.RefreshCron)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
