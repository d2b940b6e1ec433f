// Package fault classifies agent errors as fatal or retryable.
//
// Fatal errors indicate misconfiguration or a violated service contract; retrying
// cannot fix them, so the main loop stops and the process exits. Any error not
// built here is treated as transient.
package fault

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	// CodeConfig marks invalid or missing local configuration (client credentials, paths).
	CodeConfig = "CONFIG_INVALID"
	// CodeContract marks a remote collaborator returning data outside its contract.
	CodeContract = "CONTRACT_VIOLATION"
	// CodeAuth marks a grant the authorization server rejected. It is retryable:
	// the caller re-authorizes before the next attempt.
	CodeAuth = "AUTHORIZATION_REJECTED"
)

// Config returns a fatal configuration error.
func Config(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).WithTextCode(CodeConfig)
}

// WrapConfig wraps cause as a fatal configuration error.
func WrapConfig(cause error, message string) error {
	return goerrors.Wrap(cause, goerrors.CategoryBadInput, message).WithTextCode(CodeConfig)
}

// Contract returns a fatal contract-violation error.
func Contract(message string) error {
	return goerrors.New(message, goerrors.CategoryOperation).WithTextCode(CodeContract)
}

// WrapAuth wraps cause as a rejected-authorization error.
func WrapAuth(cause error, message string) error {
	return goerrors.Wrap(cause, goerrors.CategoryAuth, message).WithTextCode(CodeAuth)
}

// IsAuth reports whether err carries a rejected authorization.
func IsAuth(err error) bool {
	return textCode(err) == CodeAuth
}

// IsFatal reports whether err (or anything it wraps) was classified non-retryable.
func IsFatal(err error) bool {
	switch textCode(err) {
	case CodeConfig, CodeContract:
		return true
	}
	return false
}

func textCode(err error) string {
	if err == nil {
		return ""
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return ""
	}
	return rich.TextCode
}
