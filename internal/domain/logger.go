package domain

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// LogLevel represents logging severity
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  LogLevel
	Format string // json or console
	Output io.Writer
}

// Logger provides structured logging on top of zerolog
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a console logger writing to stderr
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithConfig(LogConfig{Level: level, Format: "console"})
}

// NewLoggerWithConfig creates a logger with explicit output and format
func NewLoggerWithConfig(cfg LogConfig) *Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var zl zerolog.Logger
	if cfg.Format == "json" {
		zl = zerolog.New(output)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.TimeOnly,
		})
	}

	zl = zl.Level(cfg.Level.zerolog()).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// NopLogger discards everything; used by tests and library callers that
// bring their own logging.
func NopLogger() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// ParseLogLevel converts a config string to a LogLevel, defaulting to info.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error", "fatal":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs debug-level messages
func (l *Logger) Debug(format string, v ...interface{}) {
	l.zl.Debug().Msgf(format, v...)
}

// Info logs info-level messages
func (l *Logger) Info(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

// Warn logs warning-level messages
func (l *Logger) Warn(format string, v ...interface{}) {
	l.zl.Warn().Msgf(format, v...)
}

// Error logs error-level messages
func (l *Logger) Error(format string, v ...interface{}) {
	l.zl.Error().Msgf(format, v...)
}

// WarnErr logs a warning with err attached as a structured field
func (l *Logger) WarnErr(err error, format string, v ...interface{}) {
	l.zl.Warn().Stack().Err(err).Msgf(format, v...)
}

// ErrorErr logs an error with err attached as a structured field
func (l *Logger) ErrorErr(err error, format string, v ...interface{}) {
	l.zl.Error().Stack().Err(err).Msgf(format, v...)
}

// WithPrefix returns a new logger tagged with a component name
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", prefix).Logger()}
}

// With returns a new logger carrying an extra string field
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

// Zerolog exposes the underlying logger for callers that need raw events.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

// DefaultLogger is the default logger instance
var DefaultLogger = NewLogger(LogLevelInfo)
