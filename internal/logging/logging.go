// Package logging configures the process-wide zerolog logger and hands out
// request-scoped loggers.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

const ServiceName = "morpheus-admin"

// Setup installs the global logger. format "console" switches to the human
// readable writer, anything else logs JSON.
func Setup(level, format string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(out).Level(lvl).With().Timestamp().Str("service", ServiceName).Logger()
	zlog.Logger = logger
	zerolog.DefaultContextLogger = &zlog.Logger
	return logger
}

// FromContext returns the request logger stored in ctx, falling back to the
// global logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithRequestID derives a logger tagged with the request id and stores it in ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	logger := zerolog.Ctx(ctx).With().Str("request_id", requestID).Logger()
	return logger.WithContext(ctx)
}
