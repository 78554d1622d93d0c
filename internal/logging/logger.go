// Package logging defines the small structured-logging port the engine
// depends on (spec §6, "logging verbosity is injected via a logger
// interface passed in FormInstanceDependencies") and a default
// implementation backed by go.uber.org/zap's SugaredLogger, the structured
// logger used elsewhere in the retrieved example pack.
package logging

import "go.uber.org/zap"

// Logger is the structured-logging port the evaluator, handlers, and
// lifecycle controller depend on (the compiler does not log). It intentionally mirrors
// *zap.SugaredLogger's "w" (with) and leveled-printf methods rather than
// exposing zap types directly, so a caller can satisfy it with zerolog,
// zap, or a test double without an adapter shim leaking zap into their
// code.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
	With(keysAndValues ...any) Logger
}

// zapLogger adapts *zap.SugaredLogger to Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZap builds a production zap logger (JSON, info level) wrapped as a
// Logger.
func NewZap() (Logger, error) {
	cfg := zap.NewProductionConfig()
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{s: l.Sugar()}, nil
}

// NewDevelopmentZap builds a human-readable, debug-level logger suitable
// for the CLI's --verbose mode.
func NewDevelopmentZap() (Logger, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &zapLogger{s: l.Sugar()}, nil
}

func (z *zapLogger) Debugw(msg string, kv ...any) { z.s.Debugw(msg, kv...) }
func (z *zapLogger) Infow(msg string, kv ...any)  { z.s.Infow(msg, kv...) }
func (z *zapLogger) Warnw(msg string, kv ...any)  { z.s.Warnw(msg, kv...) }
func (z *zapLogger) Errorw(msg string, kv ...any) { z.s.Errorw(msg, kv...) }
func (z *zapLogger) With(kv ...any) Logger        { return &zapLogger{s: z.s.With(kv...)} }

// Noop is a Logger that discards everything — the default when no logger
// is supplied, so the engine never has to nil-check.
type Noop struct{}

func (Noop) Debugw(string, ...any) {}
func (Noop) Infow(string, ...any)  {}
func (Noop) Warnw(string, ...any)  {}
func (Noop) Errorw(string, ...any) {}
func (n Noop) With(...any) Logger  { return n }
