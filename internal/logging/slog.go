package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// SlogLogger adapts *slog.Logger to Logger. Records logged under a context
// that carries a valid span get trace_id and span_id attributes, so router
// log lines line up with their fetch spans.
type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{l: l}
}

func (s *SlogLogger) log(ctx context.Context, level slog.Level, msg string, args []any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !s.l.Enabled(ctx, level) {
		return
	}
	s.l.Log(ctx, level, msg, withSpan(ctx, args)...)
}

// withSpan appends the span identifiers carried by ctx, if any.
func withSpan(ctx context.Context, args []any) []any {
	if ctx == nil {
		return args
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		args = append(args[:len(args):len(args)], "trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String())
	}
	return args
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelDebug, msg, args)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelInfo, msg, args)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelWarn, msg, args)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelError, msg, args)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
