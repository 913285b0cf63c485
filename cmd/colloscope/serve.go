package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"colloscope/internal/fetch"
	appLog "colloscope/internal/log"
	"colloscope/internal/model"
	"colloscope/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the schedule API and refresh colloscopes on a cron schedule",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, env, err := loadEnvironment()
	if err != nil {
		return err
	}

	appLog.Info("colloscope starting",
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"data_dir", cfg.DataDir,
		"refresh", cfg.RefreshCron,
		"sources", len(cfg.Sources),
	)

	store := model.NewStore()
	fetcher := fetch.NewFetcher(filepath.Join(cfg.DataDir, ".raw-cache"))

	sources := make([]fetch.Source, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		if src.URL == "" || src.Class == "" {
			continue
		}
		sources = append(sources, fetch.Source{Class: src.Class, URL: src.URL})
	}

	refresh := func() {
		if len(sources) > 0 {
			if errs := fetcher.Sync(ctx, sources, cfg.DataDir); len(errs) > 0 {
				appLog.Error("refresh: some sources failed", errors.Join(errs...), "failed", len(errs))
			}
		}
		if err := store.LoadDir(cfg.DataDir, env.holidays, env.loc); err != nil {
			appLog.Error("refresh: reload failed", err, "data_dir", cfg.DataDir)
			return
		}
		appLog.Info("refresh complete", "classes", len(store.Classes()))
	}

	// Initial load before serving.
	refresh()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.RefreshCron, refresh); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: web.NewServer(cfg, store, newEngine(cfg)).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("http server listening", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		appLog.Info("signal received, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("http shutdown failed", err)
	}

	appLog.Info("colloscope exiting")
	return nil
}
