package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/amishk599/listingwatch/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a test notification using the configured notifier.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		bootstrapLogger().Error("failed to load config", "error", err)
		return err
	}

	logger, closeLog := setupLogger(cfg.Log, debug, false)
	defer closeLog()

	n, err := setupNotifier(cfg, logger)
	if err != nil {
		logger.Error("failed to set up notifier", "error", err)
		return err
	}
	if !n.Configured() {
		err := errors.New("notifier is not configured, check credentials")
		logger.Error("test notification failed", "type", cfg.Notification.Type, "error", err)
		return err
	}

	format := notifier.NewFormatter(cfg.Source.JobURLTemplate)
	if err := n.Send(context.Background(), format.Test()); err != nil {
		logger.Error("test notification failed", "error", err)
		return err
	}
	logger.Info("test notification sent successfully")
	return nil
}
