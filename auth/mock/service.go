package mock

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// AuthorizationService simulates an OAuth2 authorization server.
type AuthorizationService struct {
	PrivateKey   *rsa.PrivateKey
	Issuer       string
	ClientID     string
	ClientSecret string
	// ExpiresIn is the access token lifetime returned by the token endpoint.
	ExpiresIn time.Duration
	// RejectRefresh makes refresh_token grants fail with invalid_grant.
	RejectRefresh bool

	mu        sync.Mutex
	grants    map[string]int
	challenge string
}

// Grants returns how many token requests were served for grantType.
func (m *AuthorizationService) Grants(grantType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grants[grantType]
}

// TokenRequests returns the total number of token endpoint calls.
func (m *AuthorizationService) TokenRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, count := range m.grants {
		total += count
	}
	return total
}

func (m *AuthorizationService) count(grantType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grants[grantType]++
}

// Handler returns an http.Handler for all mock endpoints.
func (m *AuthorizationService) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/authorize", m.authorizeHandler)
	mux.HandleFunc("/token", m.tokenHandler)
	mux.HandleFunc("/device/code", m.deviceHandler)
	return mux
}

// NewAuthorizationService creates a new mock OAuth2 authorization server
func NewAuthorizationService() (*AuthorizationService, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %v", err)
	}
	return &AuthorizationService{
		PrivateKey:   privateKey,
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		ExpiresIn:    time.Hour,
		grants:       map[string]int{},
	}, nil
}

// HTTPTestAuthorizationServer runs AuthorizationService on an httptest server.
type HTTPTestAuthorizationServer struct {
	*AuthorizationService
	Server *httptest.Server
}

// NewHTTPTestAuthorizationServer starts a mock server; call Close when done.
func NewHTTPTestAuthorizationServer() (*HTTPTestAuthorizationServer, error) {
	service, err := NewAuthorizationService()
	if err != nil {
		return nil, err
	}
	ret := &HTTPTestAuthorizationServer{AuthorizationService: service}
	ret.Server = httptest.NewServer(service.Handler())
	service.Issuer = ret.Server.URL
	return ret, nil
}

func (s *HTTPTestAuthorizationServer) Close() {
	if s.Server != nil {
		s.Server.Close()
	}
}
