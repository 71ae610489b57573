package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"netwarden/internal/alert"
	"netwarden/internal/config"
)

var testAlertCmd = &cobra.Command{
	Use:   "test-alert",
	Short: "Send a test notification to the configured alert backend",
	RunE:  runTestAlert,
}

func init() {
	rootCmd.AddCommand(testAlertCmd)
}

func runTestAlert(cmd *cobra.Command, args []string) error {
	cfg, _, err := config.Load()
	if err != nil {
		return err
	}

	backend, err := alert.NewBackend(alert.Settings{
		Type:  cfg.Alerts.Type,
		URL:   cfg.Alerts.URL,
		Token: cfg.Alerts.Token,
	})
	if err != nil {
		return fmt.Errorf("configure alerts: %w", err)
	}

	dispatcher := alert.NewDispatcher(backend)
	if !dispatcher.IsConfigured() {
		return fmt.Errorf("no alert backend configured (set alerts.url in the config file or NETWARDEN_ALERT_URL)")
	}

	if err := dispatcher.SendTest(cmd.Context()); err != nil {
		return fmt.Errorf("send test alert: %w", err)
	}

	fmt.Println("Test alert sent")
	return nil
}
