// Package mock provides an in-process OAuth2 authorization server that issues
// signed JWT tokens, for testing token acquisition and refresh without network
// access.
package mock
