// Package logging builds the service logger: a kratos log.Logger backed by zap.
package logging

import (
	"fmt"
	"os"

	"go-marketplace/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ log.Logger = (*ZapLogger)(nil)

// ZapLogger adapts a zap.Logger to the kratos log.Logger interface.
type ZapLogger struct {
	log *zap.Logger
}

func NewZapLogger(z *zap.Logger) *ZapLogger {
	return &ZapLogger{log: z}
}

// Log writes keyvals as zap fields. The kratos message key becomes the zap message.
func (l *ZapLogger) Log(level log.Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}
	if len(keyvals)%2 != 0 {
		l.log.Warn(fmt.Sprint("keyvals must appear in pairs: ", keyvals))
		return nil
	}

	var msg string
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if key == log.DefaultMessageKey {
			msg = fmt.Sprint(keyvals[i+1])
			continue
		}
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}

	switch level {
	case log.LevelDebug:
		l.log.Debug(msg, fields...)
	case log.LevelWarn:
		l.log.Warn(msg, fields...)
	case log.LevelError:
		l.log.Error(msg, fields...)
	case log.LevelFatal:
		l.log.Fatal(msg, fields...)
	default:
		l.log.Info(msg, fields...)
	}
	return nil
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.log.Sync()
}

// Zap returns the underlying zap logger, used by the HTTP access log.
func (l *ZapLogger) Zap() *zap.Logger {
	return l.log
}

// NewZap builds a zap logger: human readable for the development env,
// JSON otherwise. An unknown level falls back to info.
func NewZap(c *conf.Log) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if c.GetEnv() == "development" {
		cfg = zap.NewDevelopmentConfig()
	}

	if lvl := c.GetLevel(); lvl != "" {
		level, err := zapcore.ParseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("could not parse log level %q: %w", lvl, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	// kratos adds its own caller key
	cfg.DisableCaller = true
	return cfg.Build()
}

// NewLogger returns the service logger with the standard keyvals attached.
func NewLogger(z *zap.Logger, id, name, version string) log.Logger {
	return log.With(NewZapLogger(z),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", name,
		"service.version", version,
	)
}

// Hostname returns the host name used as service id.
func Hostname() string {
	id, _ := os.Hostname()
	return id
}
