package logger

import "log"

// A LoggerOptFn is a functional option configuring a SlintLogger when constructing a new one.
type LoggerOptFn func(*SlintLogger)

// WithEnv sets the environment SlintLogger is operating in.
func WithEnv(env string) func(*SlintLogger) {
	return func(l *SlintLogger) {
		l.env = env
	}
}

// WithLevel sets the log level SlintLogger uses.
func WithLevel(level LogLevel) func(*SlintLogger) {
	return func(l *SlintLogger) {
		l.ll = level
	}
}

// WithLogger sets the log.Logger SlintLogger uses.
func WithLogger(log *log.Logger) func(*SlintLogger) {
	return func(l *SlintLogger) {
		l.l = log
	}
}

// WithSkip sets the number of frames in the call stack
// to skip in order to log the desired file and line number
// of the calling code.
func WithSkip(skip int) func(*SlintLogger) {
	return func(l *SlintLogger) {
		l.skip = skip
	}
}
