package internal

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	logger *slog.Logger
	frames <-chan time.Time
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the JSON stdout logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *application) {
		a.logger = logger
	}
}

// WithFrames drives the viewer from frames instead of a ticker at the
// configured fps.
func WithFrames(frames <-chan time.Time) Option {
	return func(a *application) {
		a.frames = frames
	}
}
