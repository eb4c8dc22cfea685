package log

// NoneLogger is a no-op implementation of the Logger interface.
// Components accept it when callers do not care about log output.
type NoneLogger struct{}

// Info is a no-op.
func (l *NoneLogger) Info(_ ...any) {}

// Infof is a no-op.
func (l *NoneLogger) Infof(_ string, _ ...any) {}

// Error is a no-op.
func (l *NoneLogger) Error(_ ...any) {}

// Errorf is a no-op.
func (l *NoneLogger) Errorf(_ string, _ ...any) {}

// Warn is a no-op.
func (l *NoneLogger) Warn(_ ...any) {}

// Warnf is a no-op.
func (l *NoneLogger) Warnf(_ string, _ ...any) {}

// Debug is a no-op.
func (l *NoneLogger) Debug(_ ...any) {}

// Debugf is a no-op.
func (l *NoneLogger) Debugf(_ string, _ ...any) {}

// Fatal is a no-op.
func (l *NoneLogger) Fatal(_ ...any) {}

// Fatalf is a no-op.
func (l *NoneLogger) Fatalf(_ string, _ ...any) {}

// WithFields returns the same no-op logger.
//
//nolint:ireturn
func (l *NoneLogger) WithFields(_ ...any) Logger { return l }

// Sync is a no-op and always returns nil.
func (l *NoneLogger) Sync() error { return nil }
