// Package bootstrap initializes shared infrastructure in dependency
// order: logger first, then the record store for the configured driver.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	coreconfig "github.com/jummai/wabot/core/config"
	coredatabase "github.com/jummai/wabot/core/database"
	"github.com/jummai/wabot/core/logger"
	"github.com/jummai/wabot/core/store"
)

// Options control the bootstrap pipeline. The injectable funcs default
// to the production implementations and exist for tests.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
	RedisOpen  func(coreconfig.RedisConfig) (*redis.Client, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Store store.Store
}

// Run initializes the logger and opens the configured store backend.
// For the postgres driver it also applies pending migrations.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	st, err := openStore(opts)
	if err != nil {
		return nil, err
	}

	logger.Store.Info("store ready",
		slog.String("event", "store.open"),
		slog.String("driver", opts.Config.Store.Driver),
	)
	return &Result{Store: st}, nil
}

func openStore(opts Options) (store.Store, error) {
	cfg := opts.Config.Store

	switch cfg.Driver {
	case coreconfig.StoreMemory:
		return store.NewMemoryStore(), nil

	case coreconfig.StorePostgres:
		dbCfg := coredatabase.Config{
			Host:           cfg.Postgres.Host,
			Port:           cfg.Postgres.Port,
			User:           cfg.Postgres.User,
			Password:       cfg.Postgres.Password,
			Name:           cfg.Postgres.Name,
			SSLMode:        cfg.Postgres.SSLMode,
			MaxConnections: cfg.Postgres.MaxConnections,
		}

		migrate := opts.Migrate
		if migrate == nil {
			migrate = coredatabase.RunMigrations
		}
		if err := migrate(dbCfg); err != nil {
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}

		connect := opts.Connect
		if connect == nil {
			connect = coredatabase.Connect
		}
		db, err := connect(dbCfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
		}
		return store.NewPostgresStore(db), nil

	case coreconfig.StoreRedis:
		open := opts.RedisOpen
		if open == nil {
			open = openRedis
		}
		client, err := open(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: redis initialization failed: %w", err)
		}
		return store.NewRedisStore(client), nil
	}

	return nil, fmt.Errorf("bootstrap: unknown store driver %q", cfg.Driver)
}

func openRedis(cfg coreconfig.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
