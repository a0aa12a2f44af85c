package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/database-playground/account-eraser/internal/config"
	"github.com/database-playground/account-eraser/internal/deps"
	"github.com/database-playground/account-eraser/internal/erasure"
	"github.com/database-playground/account-eraser/internal/metrics"
	"github.com/database-playground/account-eraser/internal/workers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/rueidis"
	"go.uber.org/fx"
)

func ExporterConfig() (config.ExporterConfig, error) {
	return config.LoadExporterConfig()
}

func OTelConfig(cfg config.ExporterConfig) config.OTelConfig {
	return cfg.OTel
}

func RedisClient(cfg config.ExporterConfig) (rueidis.Client, error) {
	return deps.RedisClient(cfg.Redis)
}

func PrometheusMetrics(redisClient rueidis.Client) prometheus.Gatherer {
	registry := prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),

		// ttl only matters when writing
		metrics.NewPendingCollector(erasure.NewRedisProgress(redisClient, 0)),
	)

	return registry
}

func PrometheusHTTPHandler(cfg config.ExporterConfig, gatherer prometheus.Gatherer, redisClient rueidis.Client, lifecycle fx.Lifecycle) {
	httpCtx, cancel := context.WithCancel(context.Background())

	lifecycle.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			mux := http.NewServeMux()
			mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("OK"))
			})

			mux.Handle("GET /metrics", promhttp.HandlerFor(
				gatherer,
				promhttp.HandlerOpts{
					MaxRequestsInFlight: 10,
					Timeout:             metrics.ScrapeTimeout + 5*time.Second,
					EnableOpenMetrics:   true,
				},
			))

			srv := &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.Port),
				Handler: mux,
			}

			workers.Global.Go("exporter-http", func() {
				slog.Info("prometheus http handler starting", "address", srv.Addr)
				if err := srv.ListenAndServe(); err != nil {
					if errors.Is(err, http.ErrServerClosed) {
						return
					}

					slog.Error("error starting prometheus http handler", "error", err)
				}
			})

			workers.Global.Go("exporter-shutdown", func() {
				<-httpCtx.Done()

				slog.Info("prometheus http handler shutting down")
				if err := srv.Shutdown(context.Background()); err != nil {
					slog.Error("error shutting down prometheus http handler", "error", err)
				}
			})

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			workers.Global.Wait()
			redisClient.Close()

			return nil
		},
	})
}
