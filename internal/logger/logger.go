// Package logger builds the process-wide zerolog logger and the adapters
// that route gorm and mcp-go diagnostics through it.
//
// Output defaults to stderr: under the stdio transport stdout carries
// protocol frames and must never receive log lines.
package logger

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool
	Output io.Writer
}

// New creates a structured logger tagged with the service name.
func New(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "chatdesk").
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	switch name {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Gorm adapts zl to gorm's logger. SQL tracing is only emitted at debug.
func Gorm(zl zerolog.Logger) gormlogger.Interface {
	db := zl.With().Str("component", "database").Logger()

	level := gormlogger.Warn
	switch zl.GetLevel() {
	case zerolog.DebugLevel, zerolog.TraceLevel:
		level = gormlogger.Info
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		level = gormlogger.Error
	}

	return gormlogger.New(&db, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Std returns a standard library logger that writes into zl at error level.
// mcp-go's stdio transport only accepts a *log.Logger.
func Std(zl zerolog.Logger, component string) *log.Logger {
	w := zl.With().Str("component", component).Logger()
	return log.New(stdWriter{w}, "", 0)
}

type stdWriter struct {
	zl zerolog.Logger
}

func (w stdWriter) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	w.zl.Error().Msg(msg)
	return len(p), nil
}
