// Package logger installs the default slog logger. Import it for its side effect.
package logger

import (
	"context"
	"log/slog"
	"os"
)

var level = new(slog.LevelVar)

func init() {
	level.Set(getLogLevel())

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}

// Use makes handler the default, keeping the LOG_LEVEL threshold.
func Use(handler slog.Handler) {
	slog.SetDefault(slog.New(leveledHandler{handler}))
}

func getLogLevel() slog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	switch levelStr {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo // Default to Info if not set or invalid
	}
}

type leveledHandler struct {
	slog.Handler
}

func (h leveledHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= level.Level() && h.Handler.Enabled(ctx, l)
}

func (h leveledHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return leveledHandler{h.Handler.WithAttrs(attrs)}
}

func (h leveledHandler) WithGroup(name string) slog.Handler {
	return leveledHandler{h.Handler.WithGroup(name)}
}
