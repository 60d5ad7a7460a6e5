package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/listingwatch/internal/model"
	"github.com/amishk599/listingwatch/internal/notifier"
	"github.com/amishk599/listingwatch/internal/store"
)

var (
	checkDryRun      bool
	checkIgnoreKnown bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one check cycle and exit",
	Long: "One-shot check: fetches listings once, notifies about new ones and records them.\n" +
		"With --dry-run nothing is sent or recorded; new listings are only logged.",
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkDryRun, "dry-run", false, "log new listings instead of sending them, do not record them")
	checkCmd.Flags().BoolVar(&checkIgnoreKnown, "ignore-known", false, "treat every listing as new (requires --dry-run)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if checkIgnoreKnown && !checkDryRun {
		return errors.New("--ignore-known requires --dry-run")
	}

	cfg, err := loadConfig()
	if err != nil {
		bootstrapLogger().Error("failed to load config", "error", err)
		return err
	}

	logger, closeLog := setupLogger(cfg.Log, debug, true)
	defer closeLog()

	var backend model.KnownStore
	if checkIgnoreKnown {
		backend = store.NewNopStore()
	} else {
		s, closeStore, err := setupStore(cfg.Store)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			return err
		}
		defer closeStore()
		backend = s
	}

	var n model.Notifier
	if checkDryRun {
		logger.Info("dry-run mode: nothing will be sent or recorded")
		backend = readOnlyStore{backend}
		n = notifier.NewLogNotifier(logger)
	} else if n, err = setupNotifier(cfg, logger); err != nil {
		logger.Error("failed to set up notifier", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, _ := buildPoller(cfg, backend, n, nil, logger)
	res, err := p.Poll(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Skipped {
		fmt.Fprintln(out, "check skipped: source unreachable or returned no listings")
		return nil
	}
	fmt.Fprintf(out, "fetched %d listings, %d new\n", res.Fetched, len(res.NewIDs))
	for _, id := range res.NewIDs {
		fmt.Fprintf(out, "  %s\n", id)
	}
	return nil
}

// readOnlyStore loads from a backend and discards saves.
type readOnlyStore struct {
	model.KnownStore
}

func (readOnlyStore) Save(model.Snapshot) error { return nil }
