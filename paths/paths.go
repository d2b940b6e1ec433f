// Package paths resolves the files the agent reads and writes: the OAuth token
// cache, the last published address, the scope list and the client credentials.
//
// Locations follow the XDG base directory layout and can be overridden one by one
// with POSTIP_* environment variables. Paths are resolved once at startup and
// shared by reference.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDir = "post-ip"

	EnvToken       = "POSTIP_TOKEN"
	EnvLastAddress = "POSTIP_LASTIP"
	EnvCredentials = "POSTIP_CREDENTIALS"
	EnvScopes      = "POSTIP_SCOPES"

	// DefaultScope is written to a fresh scope file.
	DefaultScope = "https://www.googleapis.com/auth/drive.file"
)

// ErrNoHome is returned when neither XDG variables nor HOME are set.
var ErrNoHome = errors.New("neither XDG base directories nor $HOME are set")

// Env looks up an environment variable.
type Env func(key string) (string, bool)

// Paths holds resolved file locations.
type Paths struct {
	ConfigHome  string
	CacheHome   string
	Token       string
	LastAddress string
	Credentials string
	Scopes      string
}

// Resolve computes all locations from env (os.LookupEnv when nil).
func Resolve(env Env) (*Paths, error) {
	if env == nil {
		env = os.LookupEnv
	}
	configHome, err := home(env, "XDG_CONFIG_HOME", ".config")
	if err != nil {
		return nil, err
	}
	cacheHome, err := home(env, "XDG_CACHE_HOME", ".cache")
	if err != nil {
		return nil, err
	}
	ret := &Paths{ConfigHome: configHome, CacheHome: cacheHome}
	ret.Token = override(env, EnvToken, filepath.Join(cacheHome, "token.json"))
	ret.LastAddress = override(env, EnvLastAddress, filepath.Join(cacheHome, "last_ip"))
	ret.Credentials = override(env, EnvCredentials, filepath.Join(configHome, "credentials.json"))
	ret.Scopes = override(env, EnvScopes, filepath.Join(configHome, "scopes.list"))
	return ret, nil
}

// Ensure creates the parent directories of every resolved file and writes a
// default scope file when none exists.
func (p *Paths) Ensure() error {
	for _, location := range []string{p.Token, p.LastAddress, p.Credentials, p.Scopes} {
		if err := os.MkdirAll(filepath.Dir(location), 0o700); err != nil {
			return fmt.Errorf("failed to create directory for %v: %w", location, err)
		}
	}
	if _, err := os.Stat(p.Scopes); errors.Is(err, os.ErrNotExist) {
		content := "# one scope URI per line\n" + DefaultScope + "\n"
		if err = os.WriteFile(p.Scopes, []byte(content), 0o600); err != nil {
			return fmt.Errorf("failed to write default scopes %v: %w", p.Scopes, err)
		}
	}
	return nil
}

func home(env Env, xdgKey, fallback string) (string, error) {
	if value, ok := env(xdgKey); ok && value != "" {
		return filepath.Join(value, appDir), nil
	}
	if value, ok := env("HOME"); ok && value != "" {
		return filepath.Join(value, fallback, appDir), nil
	}
	return "", ErrNoHome
}

func override(env Env, key, fallback string) string {
	if value, ok := env(key); ok && value != "" {
		return value
	}
	return fallback
}
