// Package logger is a small facade over pluggable logging backends. The
// process installs backends once via Init; packages log through the
// package-level functions with message + keyvals pairs.
package logger

// LoggerInstance is a logging backend.
type LoggerInstance interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

var backends []LoggerInstance

// Init installs the global logging backends. Must run before any logging;
// calls before Init are dropped.
func Init(instances ...LoggerInstance) {
	backends = instances
}

func dispatch(fn func(LoggerInstance)) {
	for _, b := range backends {
		fn(b)
	}
}

// Log writes at the default level.
func Log(message string, keyvals ...any) {
	dispatch(func(b LoggerInstance) { b.Log(message, keyvals...) })
}

// Debug writes at DEBUG level.
func Debug(message string, keyvals ...any) {
	dispatch(func(b LoggerInstance) { b.Debug(message, keyvals...) })
}

// Info writes at INFO level.
func Info(message string, keyvals ...any) {
	dispatch(func(b LoggerInstance) { b.Info(message, keyvals...) })
}

// Warn writes at WARN level.
func Warn(message string, keyvals ...any) {
	dispatch(func(b LoggerInstance) { b.Warn(message, keyvals...) })
}

// Error writes at ERROR level.
func Error(message string, keyvals ...any) {
	dispatch(func(b LoggerInstance) { b.Error(message, keyvals...) })
}

// Fatal writes at FATAL level; backends are expected to terminate the
// process.
func Fatal(message string, keyvals ...any) {
	dispatch(func(b LoggerInstance) { b.Fatal(message, keyvals...) })
}
