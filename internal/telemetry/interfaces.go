package telemetry

import (
	"fmt"
	"log"

	charmlog "github.com/charmbracelet/log"

	"tank-arena/server/logging"
)

// Logger exposes the logging capabilities required by server components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger to the Logger interface.
func WrapLogger(logger *log.Logger) Logger {
	return &loggerAdapter{logger: logger}
}

type loggerAdapter struct {
	logger *log.Logger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}

// StandardLogger exposes the wrapped logger for components that need *log.Logger.
func (l *loggerAdapter) StandardLogger() *log.Logger {
	if l == nil {
		return nil
	}
	return l.logger
}

// WrapCharm adapts a charmbracelet logger; lines are emitted at info level.
func WrapCharm(logger *charmlog.Logger) Logger {
	return &charmAdapter{logger: logger}
}

type charmAdapter struct {
	logger *charmlog.Logger
}

func (c *charmAdapter) Printf(format string, args ...any) {
	if c == nil || c.logger == nil {
		return
	}
	c.logger.Info(fmt.Sprintf(format, args...))
}

func (c *charmAdapter) StandardLogger() *log.Logger {
	if c == nil || c.logger == nil {
		return nil
	}
	return c.logger.StandardLog(charmlog.StandardLogOptions{ForceLevel: charmlog.WarnLevel})
}

// Metrics exposes the telemetry methods required by server components.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// WrapMetrics adapts the logging router metrics into the Metrics interface.
func WrapMetrics(metrics *logging.Metrics) Metrics {
	return &metricsAdapter{metrics: metrics}
}

type metricsAdapter struct {
	metrics *logging.Metrics
}

func (m *metricsAdapter) Add(key string, delta uint64) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.TelemetryAdd(key, delta)
}

func (m *metricsAdapter) Store(key string, value uint64) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.TelemetryStore(key, value)
}
