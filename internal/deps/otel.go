package deps

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/database-playground/account-eraser/internal/config"
	"github.com/database-playground/account-eraser/internal/deps/logger"
	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// OTelSDK sets up the global tracer and logger providers selected by
// OTEL_TRACES_EXPORTER and OTEL_LOGS_EXPORTER, and flushes them on stop.
//
// The OTLP exporters read their endpoint and headers from the standard
// OTEL_EXPORTER_OTLP_* variables.
func OTelSDK(lifecycle fx.Lifecycle, cfg config.OTelConfig) error {
	shutdown, err := setupOTelSDK(context.Background(), cfg)
	if err != nil {
		slog.Error("error setting up OpenTelemetry", "error", err)
		return err
	}

	lifecycle.Append(fx.Hook{
		OnStop: shutdown,
	})

	return nil
}

func setupOTelSDK(ctx context.Context, cfg config.OTelConfig) (func(context.Context) error, error) {
	var shutdownFuncs []func(context.Context) error

	shutdown := func(ctx context.Context) error {
		var result *multierror.Error
		for _, fn := range shutdownFuncs {
			if err := fn(ctx); err != nil {
				result = multierror.Append(result, err)
			}
		}
		shutdownFuncs = nil

		return result.ErrorOrNil()
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	spanExporter, err := newSpanExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create span exporter: %w", err)
	}
	if spanExporter != nil {
		tracerProvider := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(spanExporter),
			sdktrace.WithResource(res),
		)
		shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
		otel.SetTracerProvider(tracerProvider)
	}

	logExporter, err := newLogExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create log exporter: %w", err)
	}
	if logExporter != nil {
		loggerProvider := sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
			sdklog.WithResource(res),
		)
		shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
		global.SetLoggerProvider(loggerProvider)

		logger.Use(otelslog.NewHandler(cfg.ServiceName, otelslog.WithLoggerProvider(loggerProvider)))
	}

	return shutdown, nil
}

func newSpanExporter(ctx context.Context, cfg config.OTelConfig) (sdktrace.SpanExporter, error) {
	switch cfg.TracesExporter {
	case config.ExporterOTLP:
		if cfg.Protocol == config.ProtocolHTTP {
			return otlptracehttp.New(ctx)
		}
		return otlptracegrpc.New(ctx)
	case config.ExporterConsole:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, nil
	}
}

func newLogExporter(ctx context.Context, cfg config.OTelConfig) (sdklog.Exporter, error) {
	switch cfg.LogsExporter {
	case config.ExporterOTLP:
		if cfg.Protocol == config.ProtocolHTTP {
			return otlploghttp.New(ctx)
		}
		return otlploggrpc.New(ctx)
	case config.ExporterConsole:
		return stdoutlog.New()
	default:
		return nil, nil
	}
}
