package main

import (
	"github.com/database-playground/account-eraser/internal/deps"
	"go.uber.org/fx"

	_ "github.com/database-playground/account-eraser/internal/deps/logger"
)

func main() {
	app := fx.New(
		fx.Provide(
			ExporterConfig,
			OTelConfig,
			RedisClient,
			PrometheusMetrics,
		),
		fx.Invoke(deps.OTelSDK),
		fx.Invoke(PrometheusHTTPHandler),
	)

	app.Run()
}
