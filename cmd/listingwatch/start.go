package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/amishk599/listingwatch/internal/dashboard"
	"github.com/amishk599/listingwatch/internal/metrics"
	"github.com/amishk599/listingwatch/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the monitor and dashboard",
	Long:  "Start the check loop and the web dashboard; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		bootstrapLogger().Error("failed to load config", "error", err)
		return err
	}

	logger, closeLog := setupLogger(cfg.Log, debug, true)
	defer closeLog()

	logger.Info("config loaded",
		"source", cfg.Source.URL,
		"interval", cfg.CheckInterval.String(),
		"notifier", cfg.Notification.Type,
		"store", cfg.Store.Type,
		"store_path", cfg.Store.Path,
		"dashboard", cfg.Dashboard.Enabled,
	)

	backend, closeStore, err := setupStore(cfg.Store)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	n, err := setupNotifier(cfg, logger)
	if err != nil {
		logger.Error("failed to set up notifier", "error", err)
		return err
	}

	p, format := buildPoller(cfg, backend, n, m, logger)
	monitor := scheduler.NewMonitor(p, n, format, scheduler.Config{
		Interval:   cfg.CheckInterval,
		ErrorDelay: cfg.ErrorDelay,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The loop is stopped explicitly below so the shutdown message goes out.
	if err := monitor.Start(context.WithoutCancel(ctx)); err != nil {
		logger.Error("failed to start monitor", "error", err)
		return err
	}

	dashErr := make(chan error, 1)
	if cfg.Dashboard.Enabled {
		srv := dashboard.New(monitor, cfg.Log.File, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), logger)
		go func() {
			dashErr <- srv.ListenAndServe(ctx, cfg.Dashboard.Addr())
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-dashErr:
		logger.Error("dashboard failed", "error", runErr)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := monitor.Stop(shutdownCtx); err != nil && !errors.Is(err, scheduler.ErrNotRunning) {
		logger.Error("failed to stop monitor", "error", err)
	}

	if cfg.Dashboard.Enabled && runErr == nil {
		if err := <-dashErr; err != nil {
			logger.Error("dashboard shutdown failed", "error", err)
		}
	}

	logger.Info("goodbye")
	return runErr
}
