package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"goa.design/clue/log"
)

// Logger is the structured logging surface the kernel writes through. It is
// satisfied by clue/log's context-scoped logger (the default), or by any
// adapter a caller wires in.
type Logger interface {
	Debug(ctx context.Context, msg string, kv ...log.KV)
	Info(ctx context.Context, msg string, kv ...log.KV)
	Error(ctx context.Context, msg string, err error, kv ...log.KV)
}

// clueLogger adapts goa.design/clue/log's package-level, context-carried
// logger to the Logger interface, matching the way the teacher's runtime
// threads a clue logger through context rather than passing a *Logger value
// explicitly.
type clueLogger struct{}

// NewClueLogger returns a Logger backed by goa.design/clue/log. Callers must
// have already installed a clue logger on ctx (log.Context) before passing
// that ctx to kernel operations; this adapter only forwards calls.
func NewClueLogger() Logger { return clueLogger{} }

func (clueLogger) Debug(ctx context.Context, msg string, kv ...log.KV) {
	log.Debug(ctx, msg, kv...)
}

func (clueLogger) Info(ctx context.Context, msg string, kv ...log.KV) {
	log.Info(ctx, msg, kv...)
}

func (clueLogger) Error(ctx context.Context, msg string, err error, kv ...log.KV) {
	log.Error(ctx, err, kv...)
}

// slogLogger adapts the standard library's slog, used by tests and by any
// caller that has not set up clue's context-carried logger.
type slogLogger struct{ l *slog.Logger }

// NewSlogLogger returns a Logger backed by l, or slog.Default() if l is nil.
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return slogLogger{l: l}
}

func kvArgs(kv []log.KV) []any {
	args := make([]any, 0, len(kv)*2)
	for _, e := range kv {
		args = append(args, e.K, e.V)
	}
	return args
}

func (s slogLogger) Debug(ctx context.Context, msg string, kv ...log.KV) {
	s.l.DebugContext(ctx, msg, kvArgs(kv)...)
}

func (s slogLogger) Info(ctx context.Context, msg string, kv ...log.KV) {
	s.l.InfoContext(ctx, msg, kvArgs(kv)...)
}

func (s slogLogger) Error(ctx context.Context, msg string, err error, kv ...log.KV) {
	args := append(kvArgs(kv), "error", err)
	s.l.ErrorContext(ctx, msg, args...)
}

// Meter and Tracer are the OpenTelemetry handles kernel components pull
// metrics and spans from. They are thin named wrappers over the global
// otel providers so call sites read "telemetry.Meter(name)" rather than
// reaching into the otel package directly, matching how the teacher's
// runtime centralizes provider access.
func Meter(name string) metric.Meter { return otel.Meter(name) }

func Tracer(name string) trace.Tracer { return otel.Tracer(name) }
