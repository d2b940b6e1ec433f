package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/postip/auth/store"
	"github.com/viant/postip/scope"
	"github.com/viant/scy/auth/flow"
	"golang.org/x/oauth2"
)

// ClientConfig resolves the OAuth2 client used for a full authorization.
type ClientConfig func(ctx context.Context, scopes []string) (*oauth2.Config, error)

// Manager owns the authorization state: load, validate, refresh or authorize.
type Manager struct {
	store        store.Store
	scopes       scope.Set
	clientConfig ClientConfig
	authFlow     flow.AuthFlow
	flowOptions  []flow.Option
	logger       *slog.Logger

	mu     sync.Mutex
	record *store.Record
}

// Obtain returns a usable token, running the interactive flow when nothing
// cached can be used. Errors from client configuration are fatal.
func (m *Manager) Obtain(ctx context.Context) (*oauth2.Token, error) {
	record, err := m.obtain(ctx)
	if err != nil {
		return nil, err
	}
	return record.Token, nil
}

// Authorize discards any cached token and runs the interactive flow.
func (m *Manager) Authorize(ctx context.Context) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, err := m.authorize(ctx)
	if err != nil {
		return nil, err
	}
	return record.Token, nil
}

func (m *Manager) obtain(ctx context.Context) (*store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cached := m.cached(); cached != nil {
		if cached.Token.Valid() {
			m.logger.Debug("using cached token", "expiry", cached.Token.Expiry)
			m.record = cached
			return cached, nil
		}
		if cached.Token.RefreshToken != "" {
			refreshed, err := m.refresh(ctx, cached)
			if err == nil {
				return refreshed, nil
			}
			m.logger.Warn("failed to refresh token, re-authorizing", "error", err)
		}
	}
	return m.authorize(ctx)
}

// cached returns the persisted record when it can be reused; any load failure is
// a cache miss.
func (m *Manager) cached() *store.Record {
	record, err := m.store.Load()
	switch {
	case errors.Is(err, store.ErrNotFound):
		m.logger.Debug("no cached token")
		return nil
	case errors.Is(err, store.ErrStale):
		m.logger.Info("cached token predates scope definition, ignoring")
		return nil
	case err != nil:
		m.logger.Debug("ignoring unreadable cached token", "error", err)
		return nil
	}
	if record.Client == nil || record.Token == nil {
		m.logger.Debug("ignoring incomplete cached token")
		return nil
	}
	if !m.scopes.Equal(record.Scopes) {
		m.logger.Info("cached token was issued for other scopes, ignoring", "cached", scope.Set(record.Scopes).String())
		return nil
	}
	return record
}

func (m *Manager) refresh(ctx context.Context, cached *store.Record) (*store.Record, error) {
	config := cached.Client.Config(m.scopes)
	token, err := config.TokenSource(ctx, cached.Token).Token()
	if err != nil {
		return nil, err
	}
	if token.RefreshToken == "" {
		token.RefreshToken = cached.Token.RefreshToken
	}
	record := &store.Record{Client: cached.Client, Scopes: m.scopes, Token: token}
	if err = m.save(record); err != nil {
		return nil, err
	}
	m.logger.Info("refreshed token", "expiry", token.Expiry)
	return record, nil
}

func (m *Manager) authorize(ctx context.Context) (*store.Record, error) {
	config, err := m.clientConfig(ctx, m.scopes)
	if err != nil {
		return nil, err
	}
	m.logger.Info("authorization required, starting flow")
	token, err := m.authFlow.Token(ctx, config, m.flowOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize: %w", err)
	}
	if token == nil {
		return nil, fmt.Errorf("failed to authorize: no token issued")
	}
	record := &store.Record{Client: store.NewClient(config), Scopes: m.scopes, Token: token}
	if err = m.save(record); err != nil {
		return nil, err
	}
	m.logger.Info("authorized", "expiry", token.Expiry)
	return record, nil
}

func (m *Manager) save(record *store.Record) error {
	if err := m.store.Save(record); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	m.record = record
	return nil
}

// Scopes returns the scopes tokens are requested for.
func (m *Manager) Scopes() scope.Set {
	return m.scopes
}

// New creates a manager persisting to aStore, requesting scopes; clientConfig is
// only consulted when a full authorization is needed.
func New(aStore store.Store, scopes scope.Set, clientConfig ClientConfig, options ...Option) *Manager {
	ret := &Manager{store: aStore, scopes: scopes, clientConfig: clientConfig}
	for _, opt := range options {
		opt(ret)
	}
	if ret.authFlow == nil {
		ret.authFlow = flow.NewBrowserFlow()
	}
	if ret.flowOptions == nil {
		ret.flowOptions = []flow.Option{flow.WithPKCE(true)}
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret
}
