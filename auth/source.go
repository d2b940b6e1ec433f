package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/postip/internal/fault"
	"golang.org/x/oauth2"
)

type tokenSource struct {
	ctx     context.Context
	manager *Manager
}

// Token returns the current token, refreshing and persisting it once expired.
// A refresh rejected by the authorization server is reported as fault.IsAuth.
func (s *tokenSource) Token() (*oauth2.Token, error) {
	m := s.manager
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.record == nil {
		return nil, fmt.Errorf("not authorized")
	}
	if m.record.Token.Valid() {
		return m.record.Token, nil
	}
	if m.record.Token.RefreshToken == "" {
		return nil, fault.WrapAuth(errors.New("token expired"), "token expired and cannot be refreshed")
	}
	record, err := m.refresh(s.ctx, m.record)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fault.WrapAuth(err, "token refresh was rejected")
		}
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return record.Token, nil
}

// TokenSource returns a source serving the token last obtained, refreshed and
// persisted on expiry. Obtain or Authorize must succeed before it is used.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, manager: m}
}
