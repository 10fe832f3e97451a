package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"farmcal/internal/agenda"
	"farmcal/internal/backend"
	"farmcal/internal/calendar"
	"farmcal/internal/config"
	appLog "farmcal/internal/log"
)

const version = "0.3.0"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "farmcal",
	Short: "Farm calendar agenda service and timestamp tools",
	Long: `farmcal serves the farm calendar API in front of the backend event
store and offers command-line helpers for week anchors, backend timestamps
and recurring chore schedules. All dates are in the farm's home zone
(Asia/Manila, +08:00) unless configured otherwise.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./farmcal.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info or error (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(anchorCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(displayCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(recordsCmd)
}

func main() {
	defer appLog.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads --config, applies --log-level and rejects settings the
// commands cannot run with.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return cfg, nil
}

func newNormalizer(cfg *config.Config) (*calendar.Normalizer, error) {
	loc, err := calendar.LoadZone(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	return calendar.NewNormalizer(loc, calendar.OffsetMode(cfg.OffsetMode)), nil
}

func newBackendClient(cfg *config.Config) (*backend.Client, error) {
	return backend.NewClient(cfg.Backend.BaseURL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)
}

func newEventRepository(cfg *config.Config) (*backend.EventRepository, error) {
	client, err := newBackendClient(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewEventRepository(client), nil
}

func newAgenda(cfg *config.Config) (*agenda.Service, error) {
	n, err := newNormalizer(cfg)
	if err != nil {
		return nil, err
	}
	repo, err := newEventRepository(cfg)
	if err != nil {
		return nil, err
	}
	return agenda.NewService(repo, n), nil
}
