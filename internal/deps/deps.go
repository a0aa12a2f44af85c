// Package deps contains the dependencies for the backend and admin-cli.
package deps

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/database-playground/account-eraser/internal/backend"
	"github.com/database-playground/account-eraser/internal/config"
	"github.com/database-playground/account-eraser/internal/erasure"
	"github.com/database-playground/account-eraser/internal/recordstore"
	"github.com/joho/godotenv"
	"github.com/redis/rueidis"
	"github.com/redis/rueidis/rueidisotel"
	"go.uber.org/fx"
)

// Config loads the environment variables from the .env file and returns a config.Config.
func Config() (config.Config, error) {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("error creating config", "error", err)
		return config.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("error validating config", "error", err)
		return config.Config{}, err
	}

	// erasures report this per request
	if err := cfg.Backend.Validate(); err != nil {
		slog.Warn("backend is not configured, every erasure will fail", "error", err)
	}

	return cfg, nil
}

// Targets parses the configured deletion targets.
func Targets(cfg config.Config) ([]erasure.Target, error) {
	targets, err := erasure.ParseTargets(cfg.Deletion.Targets)
	if err != nil {
		slog.Error("error parsing DELETION_TARGETS", "error", err)
		return nil, err
	}

	return targets, nil
}

// Sections splits out the config sections shared with other binaries.
func Sections(cfg config.Config) (config.RedisConfig, config.OTelConfig) {
	return cfg.Redis, cfg.OTel
}

// RedisClient creates a traced rueidis.Client, or nil when Redis is not configured.
func RedisClient(cfg config.RedisConfig) (rueidis.Client, error) {
	if !cfg.Enabled() {
		slog.Info("REDIS_HOST is not set, erasure progress will not be recorded")
		return nil, nil
	}

	client, err := rueidisotel.NewClient(rueidis.ClientOption{
		InitAddress: []string{
			fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		},
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		slog.Error("error creating redis client", "error", err)
		return nil, err
	}

	return client, nil
}

// ProgressStore creates the erasure.Progress backed by redisClient.
func ProgressStore(cfg config.Config, redisClient rueidis.Client) erasure.Progress {
	if redisClient == nil {
		return erasure.NopProgress{}
	}

	return erasure.NewRedisProgress(redisClient, cfg.Progress.TTL)
}

// RecordStore opens the database record store, or returns nil when rows
// are deleted through the REST API.
func RecordStore(cfg config.Config) (*recordstore.SQLStore, error) {
	if cfg.Deletion.RecordStore != config.RecordStorePostgres {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := recordstore.OpenPostgres(ctx, cfg.Database.URL)
	if err != nil {
		slog.Error("error opening record store", "error", err)
		return nil, err
	}

	return store, nil
}

// BackendFactory creates a backend.Factory.
func BackendFactory(cfg config.Config) *backend.Factory {
	return backend.NewFactory(cfg.Backend)
}

// Eraser creates an erasure.Eraser.
func Eraser(factory *backend.Factory, targets []erasure.Target, store *recordstore.SQLStore, progress erasure.Progress) *erasure.Eraser {
	opts := []erasure.Option{erasure.WithProgress(progress)}
	if store != nil {
		opts = append(opts, erasure.WithRecordStore(store))
	}

	return erasure.New(erasure.BackendClients(factory), targets, opts...)
}

var FxCommonModule = fx.Module("common",
	fx.Provide(Config),
	fx.Provide(Sections),
	fx.Provide(Targets),
	fx.Provide(RedisClient),
	fx.Provide(ProgressStore),
	fx.Provide(RecordStore),
	fx.Provide(BackendFactory),
	fx.Provide(Eraser),
)
