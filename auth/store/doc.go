// Package store persists the authorization record (client identity, granted
// scopes and OAuth2 token) used by the parent `auth` package.
//
// FileStore survives process restarts; MemoryStore is sufficient for tests.
package store
