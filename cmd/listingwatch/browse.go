package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/amishk599/listingwatch/internal/browse"
	"github.com/amishk599/listingwatch/internal/dedup"
	"github.com/amishk599/listingwatch/internal/notifier"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse current listings in the terminal",
	Long:  "Fetches the listings once and opens an interactive browser. Listings not yet notified are shown in their own pane. Nothing is sent or recorded.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		bootstrapLogger().Error("failed to load config", "error", err)
		return err
	}

	// Log only to the file so the TUI owns the terminal.
	logger, closeLog := setupFileLogger(cfg.Log, debug)
	defer closeLog()

	backend, closeStore, err := setupStore(cfg.Store)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer closeStore()
	known := dedup.NewStore(backend, logger).Load()

	src := newSource(cfg)
	listings, err := browse.RunLoader(src.URL(), cfg.Source.Timeout, src.FetchListings)
	if errors.Is(err, browse.ErrCancelled) {
		return nil
	}
	if err != nil {
		logger.Error("failed to fetch listings", "error", err)
		return err
	}

	return browse.Run(listings, known, notifier.NewFormatter(cfg.Source.JobURLTemplate))
}
