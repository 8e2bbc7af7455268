package cli

import "go.uber.org/zap"

// debugLogger wraps zap for verbose diagnostics. A zero logger is silent, so
// commands can log unconditionally.
type debugLogger struct {
	sugared *zap.SugaredLogger
}

func newDebugLogger(globals *Globals) *debugLogger {
	if globals == nil || !globals.Verbose {
		return &debugLogger{}
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.Encoding = "json"
	logger, _ := cfg.Build()
	return &debugLogger{sugared: logger.Sugar()}
}

func (l *debugLogger) Debug(format string, args ...interface{}) {
	if l == nil || l.sugared == nil {
		return
	}
	l.sugared.Debugf(format, args...)
}

// Sugar exposes the underlying logger for packages that take one directly.
// Returns nil when verbose mode is off; those packages treat nil as no-op.
func (l *debugLogger) Sugar() *zap.SugaredLogger {
	if l == nil {
		return nil
	}
	return l.sugared
}
