// Package cmd hosts the reusable service runner: config loading,
// bootstrap, signal handling, and logger teardown, in that order.
package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreconfig "github.com/jummai/wabot/core/config"
	"github.com/jummai/wabot/core/logger"
)

// App is a long-running service driven by Run. It must return when its
// context is cancelled, after finishing its own shutdown.
type App interface {
	Run(ctx context.Context) error
}

// Options describe how to load configuration and build the app.
type Options struct {
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (*coreconfig.Config, error)
	Build      func(cfg *coreconfig.Config) (App, error)

	ShutdownLogger func() error
}

// Run loads configuration, builds the app, and drives it until a
// terminating signal arrives. The config file is optional; with no path
// the environment is the only configuration source.
func Run(opts Options) error {
	if opts.LoadConfig == nil {
		opts.LoadConfig = coreconfig.Load
	}
	if opts.Build == nil {
		return fmt.Errorf("cmd: Build is required")
	}

	env := opts.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	cfgPath := os.Getenv(env)
	if cfgPath == "" {
		cfgPath = opts.DefaultConfigPath
	}

	if cfgPath != "" {
		log.Printf("loading config: %s", cfgPath)
	}
	cfg, err := opts.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}

	startedAt := time.Now()
	application, err := opts.Build(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}

	shutdownLogger := opts.ShutdownLogger
	if shutdownLogger == nil {
		shutdownLogger = logger.Shutdown
	}
	defer func() {
		if err := shutdownLogger(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	logger.L.With("component", "app").Info("app ready",
		slog.String("event", "ready"),
		slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = application.Run(ctx)

	logger.L.With("component", "app").Info("stopped",
		slog.String("event", "shutdown"),
	)
	return err
}
