package fecom

import "log/slog"

// SlogLogger adapts two slog loggers to Logger: messages go to InfoLog
// with a module attribute, errors to ErrorLog.
type SlogLogger struct {
	InfoLog  *slog.Logger
	ErrorLog *slog.Logger
}

func (l SlogLogger) Info(message string, module string) {
	l.InfoLog.Info(message, "module", module)
}

func (l SlogLogger) Error(message string) {
	l.ErrorLog.Error(message)
}
