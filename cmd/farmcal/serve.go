package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	appLog "farmcal/internal/log"
	"farmcal/internal/state"
	"farmcal/internal/web"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the agenda HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "HTTP listen address (overrides config if set)")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}

	svc, err := newAgenda(cfg)
	if err != nil {
		return err
	}

	appLog.Info("farmcal starting",
		"version", version,
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"offset_mode", cfg.OffsetMode,
		"refresh", cfg.RefreshCron,
		"tasks", len(cfg.Tasks),
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Prefetch the current week on the refresh schedule.
	var sched *cron.Cron
	if cfg.RefreshCron != "" {
		sched = cron.New(cron.WithLocation(svc.Normalizer().Location()))
		_, err := sched.AddFunc(cfg.RefreshCron, func() {
			wctx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			if err := svc.Warm(wctx); err != nil {
				appLog.Error("scheduled refresh failed", err)
				return
			}
			appLog.Debug("scheduled refresh done")
		})
		if err != nil {
			return err
		}
		sched.Start()
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           web.NewServer(cfg, svc, state.NewFileStore(cfg.StatePath)).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		appLog.Info("signal received, shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	if sched != nil {
		<-sched.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
		return err
	}
	appLog.Info("farmcal exiting")
	return nil
}
