package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Depado/ginprom"
	"github.com/database-playground/account-eraser/httpapi"
	accountservice "github.com/database-playground/account-eraser/httpapi/account"
	"github.com/database-playground/account-eraser/internal/config"
	"github.com/database-playground/account-eraser/internal/erasure"
	"github.com/database-playground/account-eraser/internal/httputils"
	"github.com/database-playground/account-eraser/internal/metrics"
	"github.com/database-playground/account-eraser/internal/recordstore"
	"github.com/database-playground/account-eraser/internal/workers"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/rueidis"
	sloggin "github.com/samber/slog-gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/fx"

	_ "github.com/database-playground/account-eraser/internal/deps/logger"
)

// TracingMiddleware creates an otelgin middleware that can be injected into gin.
func TracingMiddleware(cfg config.Config) Middleware {
	return Middleware{
		Handler: otelgin.Middleware(cfg.OTel.ServiceName),
	}
}

// AccessLogMiddleware creates a slog-gin middleware that can be injected into gin.
func AccessLogMiddleware() Middleware {
	return Middleware{
		Handler: sloggin.New(slog.Default()),
	}
}

// ClientMiddleware creates a middleware that records the requesting client.
func ClientMiddleware() Middleware {
	return Middleware{
		Handler: httputils.ClientMiddleware(),
	}
}

// CorsMiddleware creates a cors middleware that can be injected into gin.
//
// CORS is left to the reverse proxy when no origin is configured.
func CorsMiddleware(cfg config.Config) Middleware {
	if len(cfg.AllowedOrigins) == 0 {
		return Middleware{
			Handler: func(c *gin.Context) { c.Next() },
		}
	}

	return Middleware{
		Handler: cors.New(cors.Config{
			AllowOrigins: cfg.AllowedOrigins,
			AllowMethods: []string{"POST", "OPTIONS"},
			AllowHeaders: []string{"Authorization", "Content-Type", "apikey", "x-client-info"},
			MaxAge:       12 * time.Hour,
		}),
	}
}

// AccountService creates an account service.
func AccountService(eraser *erasure.Eraser) httpapi.Service {
	return accountservice.NewAccountService(eraser)
}

// PendingCollector registers the unfinished-erasure gauge when progress is recorded in Redis.
func PendingCollector(progress erasure.Progress) error {
	counter, ok := progress.(metrics.PendingCounter)
	if !ok {
		return nil
	}

	return prometheus.Register(metrics.NewPendingCollector(counter))
}

// GinEngine creates a gin engine.
func GinEngine(services []httpapi.Service, middlewares []Middleware, cfg config.Config) *gin.Engine {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoMethod(httpapi.MethodNotAllowed)

	if err := engine.SetTrustedProxies(cfg.TrustProxies); err != nil {
		slog.Error("error setting trusted proxies", "error", err)
	}

	prom := ginprom.New(
		ginprom.Engine(engine),
		ginprom.Namespace("eraser"),
		ginprom.Subsystem("gin"),
		ginprom.Path("/metrics"),
	)
	engine.Use(prom.Instrument())

	for _, middleware := range middlewares {
		engine.Use(middleware.Handler)
	}

	engine.Use(httpapi.Recovery())

	engine.GET("/healthz", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "OK")
	})

	api := engine.Group("/api")
	httpapi.Register(api, services...)

	return engine
}

// GinLifecycle starts the gin engine.
func GinLifecycle(lifecycle fx.Lifecycle, engine *gin.Engine, cfg config.Config) {
	httpCtx, cancel := context.WithCancel(context.Background())

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Port),
				Handler:           engine,
				ReadHeaderTimeout: 10 * time.Second,
			}

			workers.Global.Go("gin", func() {
				slog.Info("gin engine starting", "address", srv.Addr)

				if err := srv.ListenAndServe(); err != nil {
					if errors.Is(err, http.ErrServerClosed) {
						return
					}

					slog.Error("error running gin engine", "error", err)
				}
			})

			workers.Global.Go("gin-shutdown", func() {
				<-httpCtx.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					slog.Error("error shutting down gin engine", "error", err)
				}
			})

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			workers.Global.Wait()

			return nil
		},
	})
}

// ClientsLifecycle closes the Redis client and the record store on stop.
func ClientsLifecycle(lifecycle fx.Lifecycle, redisClient rueidis.Client, store *recordstore.SQLStore) {
	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if redisClient != nil {
				redisClient.Close()
			}

			if store != nil {
				if err := store.Close(); err != nil {
					slog.Error("error closing record store", "error", err)
				}
			}

			return nil
		},
	})
}

// Middleware is a middleware that can be injected into gin.
type Middleware struct {
	Handler gin.HandlerFunc
}

// AnnotateMiddleware annotates a middleware function to be injected into gin.
func AnnotateMiddleware(f any) any {
	return fx.Annotate(
		f,
		fx.ResultTags(`group:"middlewares"`),
	)
}

// AnnotateService annotates a service function to be injected into gin.
func AnnotateService(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(httpapi.Service)),
		fx.ResultTags(`group:"services"`),
	)
}
