package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/listingwatch/internal/dedup"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the known-listings store and effective configuration",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		bootstrapLogger().Error("failed to load config", "error", err)
		return err
	}

	logger, closeLog := setupLogger(cfg.Log, debug, false)
	defer closeLog()

	backend, closeStore, err := setupStore(cfg.Store)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer closeStore()

	n, err := setupNotifier(cfg, logger)
	if err != nil {
		logger.Error("failed to set up notifier", "error", err)
		return err
	}

	known := dedup.NewStore(backend, logger)
	count := known.Load().Len()
	lastUpdated := "Never"
	if t := known.LastUpdated(); !t.IsZero() {
		lastUpdated = t.Format(time.DateTime)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Source\t%s\n", cfg.Source.URL)
	fmt.Fprintf(w, "Check interval\t%ds\n", int(cfg.CheckInterval.Seconds()))
	fmt.Fprintf(w, "Store\t%s (%s)\n", cfg.Store.Path, cfg.Store.Type)
	fmt.Fprintf(w, "Known listings\t%d\n", count)
	fmt.Fprintf(w, "Last update\t%s\n", lastUpdated)
	fmt.Fprintf(w, "Notifier\t%s (configured: %t)\n", cfg.Notification.Type, n.Configured())
	if cfg.Dashboard.Enabled {
		fmt.Fprintf(w, "Dashboard\thttp://%s\n", cfg.Dashboard.Addr())
	} else {
		fmt.Fprintf(w, "Dashboard\tdisabled\n")
	}
	fmt.Fprintf(w, "Log file\t%s\n", cfg.Log.File)
	return w.Flush()
}
