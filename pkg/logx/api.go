package logx

import (
	"fmt"
	"io"
)

var defaultLogger *Logger

func init() {
	defaultLogger = NewLogger(LoadFromEnv())
}

// SetDefaultLogger replaces the global logger.
func SetDefaultLogger(logger *Logger) { defaultLogger = logger }

// GetDefaultLogger returns the global logger.
func GetDefaultLogger() *Logger { return defaultLogger }

// SetLevel sets the global logger's level.
func SetLevel(level Level) { defaultLogger.SetLevel(level) }

// SetOutput sets the global logger's output.
func SetOutput(w io.Writer) { defaultLogger.SetOutput(w) }

func Debug(msg string) { defaultLogger.log(LevelDebug, msg, nil, nil) }
func Info(msg string)  { defaultLogger.log(LevelInfo, msg, nil, nil) }
func Warn(msg string)  { defaultLogger.log(LevelWarn, msg, nil, nil) }
func Error(msg string) { defaultLogger.log(LevelError, msg, nil, nil) }

// Fatal logs at FATAL and exits.
func Fatal(msg string) {
	defaultLogger.log(LevelFatal, msg, nil, nil)
	defaultLogger.exit(1)
}

func Debugf(format string, args ...any) {
	defaultLogger.log(LevelDebug, fmt.Sprintf(format, args...), nil, nil)
}

func Infof(format string, args ...any) {
	defaultLogger.log(LevelInfo, fmt.Sprintf(format, args...), nil, nil)
}

func Warnf(format string, args ...any) {
	defaultLogger.log(LevelWarn, fmt.Sprintf(format, args...), nil, nil)
}

func Errorf(format string, args ...any) {
	defaultLogger.log(LevelError, fmt.Sprintf(format, args...), nil, nil)
}

// Fatalf logs a formatted message at FATAL and exits.
func Fatalf(format string, args ...any) {
	defaultLogger.log(LevelFatal, fmt.Sprintf(format, args...), nil, nil)
	defaultLogger.exit(1)
}

// WithField starts a global entry with one field.
func WithField(key string, value any) *Entry { return defaultLogger.WithField(key, value) }

// WithFields starts a global entry with several fields.
func WithFields(fields Fields) *Entry { return defaultLogger.WithFields(fields) }

// WithError starts a global entry carrying an error.
func WithError(err error) *Entry { return defaultLogger.WithError(err) }
