package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"netwarden/internal/alert"
	"netwarden/internal/conflict"
	"netwarden/internal/config"
	"netwarden/internal/dockerd"
	"netwarden/internal/monitor"
	"netwarden/internal/render"
)

var watchOpts struct {
	noWarnings    bool
	noInitialScan bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch engine events and rescan on changes",
	Long: `Subscribe to Docker engine events and rerun conflict detection
whenever containers start, stop, or change network attachments.
Bursts of events are coalesced behind a debounce window. If an alert
backend is configured, each report with findings is pushed to it.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchOpts.noWarnings, "no-warnings", false, "suppress generic-name warnings")
	watchCmd.Flags().BoolVar(&watchOpts.noInitialScan, "no-initial-scan", false, "skip the scan before watching")
	rootCmd.AddCommand(watchCmd)
}

// dockerSource adapts engine events to the monitor's event stream.
type dockerSource struct {
	client *dockerd.Client
}

func (s *dockerSource) Events(ctx context.Context) (<-chan monitor.Event, <-chan error) {
	msgs, errs := s.client.Events(ctx)

	out := make(chan monitor.Event)
	go func() {
		defer close(out)
		for msg := range msgs {
			ev := monitor.Event{
				Type:   string(msg.Type),
				Action: string(msg.Action),
				Name:   msg.Actor.Attributes["name"],
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errs
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, path, err := config.Load()
	if err != nil {
		return err
	}
	if path != "" {
		log.Printf("Loaded config: %s", path)
	}

	client, err := dockerd.New(ctx)
	if err != nil {
		return fmt.Errorf("connect to docker: %w", err)
	}
	defer client.Close()

	backend, err := alert.NewBackend(alert.Settings{
		Type:  cfg.Alerts.Type,
		URL:   cfg.Alerts.URL,
		Token: cfg.Alerts.Token,
	})
	if err != nil {
		return fmt.Errorf("configure alerts: %w", err)
	}
	dispatcher := alert.NewDispatcher(backend)
	if dispatcher.IsConfigured() {
		log.Printf("Alerts enabled: %s", cfg.Alerts.Type)
	}

	detector := conflict.NewDetector(conflict.Config{
		WarnGenericNames: cfg.Scan.WarnGeneric() && !watchOpts.noWarnings,
	})

	r := render.New(os.Stdout)
	onReport := func(report *conflict.Report) {
		r.Report(report)
		if report.HasConflicts() && dispatcher.IsConfigured() {
			if err := dispatcher.SendReport(ctx, report); err != nil {
				log.Printf("Failed to send alert: %v", err)
			}
		}
	}

	mon := monitor.New(
		dockerd.NewScanner(client),
		&dockerSource{client: client},
		detector,
		monitor.Config{
			Debounce:       cfg.Monitor.EffectiveDebounce(),
			InitialScan:    cfg.Monitor.RunInitialScan() && !watchOpts.noInitialScan,
			IncludeDefault: cfg.Scan.IncludeDefault,
		},
		onReport,
	)

	log.Println("Watching for topology changes (Ctrl+C to stop)...")
	if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Println("Watch stopped")
	return nil
}
