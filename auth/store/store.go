package store

import (
	"errors"
	"sync"

	"golang.org/x/oauth2"
)

// ErrNotFound is returned when nothing has been stored yet.
var ErrNotFound = errors.New("authorization record not found")

// Client identifies the OAuth2 client a token was issued to, so the token can be
// refreshed without reloading client credentials.
type Client struct {
	ID       string `json:"client_id"`
	Secret   string `json:"client_secret,omitempty"`
	AuthURL  string `json:"auth_uri,omitempty"`
	TokenURL string `json:"token_uri"`
}

// Config returns an oauth2 config for the client and scopes.
func (c *Client) Config(scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ID,
		ClientSecret: c.Secret,
		Endpoint:     oauth2.Endpoint{AuthURL: c.AuthURL, TokenURL: c.TokenURL},
		Scopes:       scopes,
	}
}

// NewClient captures the identity part of config.
func NewClient(config *oauth2.Config) *Client {
	return &Client{
		ID:       config.ClientID,
		Secret:   config.ClientSecret,
		AuthURL:  config.Endpoint.AuthURL,
		TokenURL: config.Endpoint.TokenURL,
	}
}

// Record is a persisted authorization.
type Record struct {
	Client *Client       `json:"client"`
	Scopes []string      `json:"scopes"`
	Token  *oauth2.Token `json:"token"`
}

// Store is a pluggable persistence layer for the authorization record.
type Store interface {
	Load() (*Record, error)
	Save(record *Record) error
}

type memoryStore struct {
	mu     sync.RWMutex
	record *Record
}

func (m *memoryStore) Load() (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.record == nil {
		return nil, ErrNotFound
	}
	return m.record, nil
}

func (m *memoryStore) Save(record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = record
	return nil
}

// NewMemoryStore creates an in-memory store, optionally seeded with record.
func NewMemoryStore(record *Record) Store {
	return &memoryStore{record: record}
}
