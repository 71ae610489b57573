package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"netwarden/internal/alert"
	"netwarden/internal/conflict"
	"netwarden/internal/config"
	"netwarden/internal/dockerd"
	"netwarden/internal/handler"
	"netwarden/internal/hub"
	"netwarden/internal/monitor"
	"netwarden/internal/repository/sqlite"
)

//go:embed web/*
var webFS embed.FS

var webOpts struct {
	addr string
}

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the live dashboard",
	Long: `Serve a web dashboard showing the current network topology and
conflicts. The engine is watched in the background; every rescan is
pushed to connected browsers over SSE and recorded in the scan
history database.`,
	RunE: runWeb,
}

func init() {
	webCmd.Flags().StringVar(&webOpts.addr, "addr", "", "HTTP listen address (default from config, else :8080)")
	rootCmd.AddCommand(webCmd)
}

func runWeb(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, path, err := config.Load()
	if err != nil {
		return err
	}
	if path != "" {
		log.Printf("Loaded config: %s", path)
	}

	addr := cfg.Web.Addr
	if webOpts.addr != "" {
		addr = webOpts.addr
	}

	client, err := dockerd.New(ctx)
	if err != nil {
		return fmt.Errorf("connect to docker: %w", err)
	}
	defer client.Close()

	history, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer history.Close()
	log.Printf("History database: %s", cfg.Database.Path)

	backend, err := alert.NewBackend(alert.Settings{
		Type:  cfg.Alerts.Type,
		URL:   cfg.Alerts.URL,
		Token: cfg.Alerts.Token,
	})
	if err != nil {
		return fmt.Errorf("configure alerts: %w", err)
	}
	dispatcher := alert.NewDispatcher(backend)

	sseHub := hub.New()
	go sseHub.Run()

	detector := conflict.NewDetector(conflict.Config{WarnGenericNames: cfg.Scan.WarnGeneric()})
	scanner := dockerd.NewScanner(client)

	onReport := func(report *conflict.Report) {
		sseHub.BroadcastReport(report)

		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := history.SaveReport(saveCtx, time.Now().UTC(), report); err != nil {
			log.Printf("Failed to save report: %v", err)
		}

		if report.HasConflicts() && dispatcher.IsConfigured() {
			if err := dispatcher.SendReport(saveCtx, report); err != nil {
				log.Printf("Failed to send alert: %v", err)
			}
		}
	}

	mon := monitor.New(scanner, &dockerSource{client: client}, detector, monitor.Config{
		Debounce:       cfg.Monitor.EffectiveDebounce(),
		InitialScan:    cfg.Monitor.RunInitialScan(),
		IncludeDefault: cfg.Scan.IncludeDefault,
	}, onReport)

	monCtx, monCancel := context.WithCancel(ctx)
	defer monCancel()
	go func() {
		if err := mon.Run(monCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Monitor stopped: %v", err)
		}
	}()

	conflictHandler := handler.NewConflictHandler(scanner.Scan, detector, cfg.Scan.IncludeDefault)
	conflictHandler.SetHistory(history)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/conflicts", conflictHandler.GetConflicts)
	mux.HandleFunc("GET /api/cross-network", conflictHandler.GetCrossNetwork)
	mux.HandleFunc("GET /api/history", conflictHandler.GetHistory)
	mux.Handle("GET /events", sseHub)

	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		return fmt.Errorf("embedded web content: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(webContent)))

	middlewares := []handler.Middleware{
		handler.Recover,
		handler.CORS,
		handler.Logger,
	}
	if cfg.Web.Auth != nil {
		middlewares = append(middlewares, handler.BasicAuth(cfg.Web.Auth.Username, cfg.Web.Auth.PasswordHash))
	}

	// No WriteTimeout: SSE connections stay open indefinitely.
	server := &http.Server{
		Addr:        addr,
		Handler:     handler.Chain(mux, middlewares...),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Dashboard listening on %s", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	monCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	return nil
}
