package tokens

import (
	"time"

	"github.com/rs/zerolog"
)

// ResolveLogEvent describes one resolution or guard evaluation for logging.
type ResolveLogEvent struct {
	Op         string
	Component  string
	Breakpoint string
	CacheHit   bool
	Duration   time.Duration
	Err        error
}

// ResolveLogger records resolver events.
type ResolveLogger interface {
	LogResolve(ResolveLogEvent)
}

// ResolveLoggerFunc adapts a function to ResolveLogger.
type ResolveLoggerFunc func(ResolveLogEvent)

// LogResolve implements ResolveLogger.
func (f ResolveLoggerFunc) LogResolve(event ResolveLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopResolveLogger struct{}

func (noopResolveLogger) LogResolve(ResolveLogEvent) {}

type zerologResolveLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger writes resolver events to logger. Failures are logged at
// error level, everything else at debug.
func NewZerologLogger(logger zerolog.Logger) ResolveLogger {
	return zerologResolveLogger{logger: logger.With().Str("component", "tokens").Logger()}
}

func (l zerologResolveLogger) LogResolve(event ResolveLogEvent) {
	entry := l.logger.Debug()
	if event.Err != nil {
		entry = l.logger.Error().Err(event.Err)
	}
	entry.
		Str("op", event.Op).
		Str("token_component", event.Component).
		Str("breakpoint", event.Breakpoint).
		Bool("cache_hit", event.CacheHit).
		Dur("duration", event.Duration).
		Msg("tokens resolve")
}
