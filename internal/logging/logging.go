package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/LavaJover/festival-order-service/internal/config"
)

type ctxKey struct{}

var (
	mu   sync.RWMutex
	base *slog.Logger
)

// Init builds the process logger from config and installs it as the slog
// default. Output "stdout" logs to stdout only; any other value is treated as
// a file path rotated by lumberjack and mirrored to stdout.
func Init(service string, cfg config.LogConfig) *slog.Logger {
	var w io.Writer = os.Stdout
	if out := strings.TrimSpace(cfg.LogOutput); out != "" && out != "stdout" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   out,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		})
	}

	l := build(w, service, cfg)
	mu.Lock()
	base = l
	mu.Unlock()
	slog.SetDefault(l)
	return l
}

// build tags every record with the service name; "component" is left for
// the child loggers returned by New.
func build(w io.Writer, service string, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With("service", service)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Base returns the logger installed by Init, or slog.Default before Init.
func Base() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if base == nil {
		return slog.Default()
	}
	return base
}

// New returns a child logger sharing the global handler.
func New(component string) *slog.Logger {
	return Base().With("component", component)
}

func WithCtx(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func FromCtx(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return Base()
}
