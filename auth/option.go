package auth

import (
	"log/slog"

	"github.com/viant/scy/auth/flow"
)

// Option configures a Manager.
type Option func(m *Manager)

// WithAuthFlow sets the interactive flow used when no token can be reused.
func WithAuthFlow(authFlow flow.AuthFlow) Option {
	return func(m *Manager) {
		m.authFlow = authFlow
	}
}

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithFlowOptions sets options passed to the interactive flow.
func WithFlowOptions(options ...flow.Option) Option {
	return func(m *Manager) {
		m.flowOptions = options
	}
}
