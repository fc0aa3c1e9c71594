package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is injected into every ftpconsole component instead of using the global logger.
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	With() zerolog.Context
	// WithComponent returns a child logger whose lines carry component=name.
	WithComponent(name string) Logger
}

type impl struct {
	logger zerolog.Logger
}

// New creates a Logger from config. A nil config uses DefaultConfig.
func New(config *Config) (Logger, error) {
	zlog, err := build(config)
	if err != nil {
		return nil, err
	}

	return &impl{logger: zlog}, nil
}

// Wrap adapts an existing zerolog.Logger.
func Wrap(zlog zerolog.Logger) Logger {
	return &impl{logger: zlog}
}

func (l *impl) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *impl) Info() *zerolog.Event  { return l.logger.Info() }
func (l *impl) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *impl) Error() *zerolog.Event { return l.logger.Error() }
func (l *impl) With() zerolog.Context { return l.logger.With() }

func (l *impl) WithComponent(name string) Logger {
	return &impl{logger: l.logger.With().Str("component", name).Logger()}
}

// NewTestLogger creates a no-op logger for testing that discards all output
func NewTestLogger() Logger {
	return &impl{logger: zerolog.New(io.Discard).Level(zerolog.Disabled)}
}
