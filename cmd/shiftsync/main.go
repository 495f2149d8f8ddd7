package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"shiftsync/internal/config"
	"shiftsync/internal/feed"
	appLog "shiftsync/internal/log"
	"shiftsync/internal/pipeline"
)

const (
	envConfigPath = "SHIFTSYNC_CONFIG"
	envFeedURL    = "SHIFTSYNC_FEED_URL"

	defaultConfigPath = "shiftsync.yaml"
)

func main() {
	// A .env next to the binary may set SHIFTSYNC_CONFIG / SHIFTSYNC_FEED_URL.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		appLog.Error("failed to load .env", err)
	}

	configPath := os.Getenv(envConfigPath)
	if configPath == "" {
		configPath = defaultConfigPath
	}

	conf, err := config.Load(configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Debug("effective config",
		"config_path", configPath,
		"url_file", conf.URLFile,
		"timezone", conf.Timezone,
		"shifts_csv", conf.ShiftsCSV,
		"hourly_csv", conf.HourlyCSV,
		"known_keys", conf.KnownKeys,
		"refresh", conf.Refresh,
	)

	var src feed.Source = &feed.CachedSource{
		Path:     conf.URLFile,
		Prompter: feed.TerminalPrompter{},
	}
	if u := os.Getenv(envFeedURL); u != "" {
		src = feed.Static(u)
	}

	opts, err := pipeline.OptionsFromConfig(conf, src)
	if err != nil {
		appLog.Error("invalid config", err, "config_path", configPath)
		os.Exit(1)
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if _, err := pipeline.Run(ctx, opts); err != nil {
		appLog.Error("sync failed", err)
		os.Exit(1)
	}

	if conf.Refresh == "" {
		return
	}

	if err := runScheduled(ctx, conf.Refresh, func(ctx context.Context) error {
		_, err := pipeline.Run(ctx, opts)
		return err
	}); err != nil {
		appLog.Error("scheduler failed", err, "refresh", conf.Refresh)
		os.Exit(1)
	}
}
