package observability

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// InitLogger configures the process-wide logger. Development gets the
// human-readable console writer; every other environment logs JSON
// lines with caller information.
func InitLogger(serviceName, env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var out io.Writer = os.Stdout
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).With().Timestamp().Str("service", serviceName)
	if env != "development" {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
}

// LoggerFromContext returns the logger for a request, annotated with
// the active trace and span IDs when tracing is on.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	logger := log.With().Logger()

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		logger = logger.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Logger()
	}

	return &logger
}

// GetLogger returns the global logger.
func GetLogger() *zerolog.Logger {
	return &log.Logger
}
