package log

// NoopLogger discards everything. Used as the context fallback and in tests
// that do not care about log output, mirroring the teacher's mlog.NoneLogger.
type NoopLogger struct{}

func (n *NoopLogger) Info(args ...any)                   {}
func (n *NoopLogger) Infof(format string, args ...any)   {}
func (n *NoopLogger) Error(args ...any)                  {}
func (n *NoopLogger) Errorf(format string, args ...any)  {}
func (n *NoopLogger) Warn(args ...any)                   {}
func (n *NoopLogger) Warnf(format string, args ...any)   {}
func (n *NoopLogger) Debug(args ...any)                  {}
func (n *NoopLogger) Debugf(format string, args ...any)  {}
func (n *NoopLogger) WithFields(fields ...any) Logger    { return n }
func (n *NoopLogger) Sync() error                        { return nil }
