package bridge

import (
	"github.com/Iron-Ham/codedock/internal/logging"
	"github.com/Iron-Ham/codedock/internal/session"
)

// StatusFunc reports the current session for the status command.
type StatusFunc func() (session.Session, bool)

// Option configures a Bridge.
type Option func(*config)

type config struct {
	logger *logging.Logger
	status StatusFunc
}

// WithLogger sets the logger for the bridge.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithStatus sets the source answered by the status command. Without it
// status always reports Uninitialized.
func WithStatus(fn StatusFunc) Option {
	return func(c *config) {
		c.status = fn
	}
}
