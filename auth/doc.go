// Package auth manages the agent's OAuth2 authorization.
//
// Manager.Obtain returns a usable token: the persisted one while it is valid,
// a refreshed one once it expires, or a new one from an interactive flow when
// nothing usable is cached. Every new token is persisted. Manager.TokenSource
// keeps refreshing (and persisting) on expiry while the agent runs.
package auth
