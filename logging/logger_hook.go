package logging

import (
	"log/slog"
)

// LoggerHook creates component-specific loggers by wrapping a base logger.
// The page client asks for one logger per component (fetch, signup,
// unregister) so diagnostics can be grouped.
type LoggerHook interface {
	// LoggerForComponent wraps the base logger for the named component.
	LoggerForComponent(baseLogger *slog.Logger, component string) *slog.Logger
}

// CapturingLoggerHook creates loggers that capture records via CapturingHandler.
type CapturingLoggerHook struct {
	collector *LogCollector
}

// NewCapturingLoggerHook creates a hook that captures all component logs into collector.
func NewCapturingLoggerHook(collector *LogCollector) LoggerHook {
	return &CapturingLoggerHook{
		collector: collector,
	}
}

// LoggerForComponent tags every record with the component name and captures it.
func (p *CapturingLoggerHook) LoggerForComponent(baseLogger *slog.Logger, component string) *slog.Logger {
	capturingHandler := NewCapturingHandler(
		baseLogger.Handler(),
		p.collector,
		component,
	)
	return slog.New(capturingHandler).With("component", component)
}

// TaggingLoggerHook only adds the component attribute.
type TaggingLoggerHook struct{}

// LoggerForComponent returns baseLogger with a component attribute.
func (TaggingLoggerHook) LoggerForComponent(baseLogger *slog.Logger, component string) *slog.Logger {
	return baseLogger.With("component", component)
}
