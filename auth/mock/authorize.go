package mock

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
)

const (
	// AuthorizationCode is the code issued by /authorize.
	AuthorizationCode = "test_authorization_code"
	// DeviceCode is the device code issued by /device/code.
	DeviceCode = "test_device_code"
	// UserCode is shown to the user in the device flow.
	UserCode = "TEST-CODE"
)

// authorizeHandler approves every request and redirects with a fixed code.
func (m *AuthorizationService) authorizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("client_id") != m.ClientID {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}
	redirectURI := r.URL.Query().Get("redirect_uri")
	if redirectURI == "" {
		http.Error(w, "Missing redirect URI", http.StatusBadRequest)
		return
	}
	m.mu.Lock()
	m.challenge = r.URL.Query().Get("code_challenge")
	m.mu.Unlock()
	state := r.URL.Query().Get("state")
	http.Redirect(w, r, fmt.Sprintf("%s?code=%s&state=%s", redirectURI, AuthorizationCode, state), http.StatusFound)
}

// verifyCodeVerifier checks verifier against the PKCE challenge of the last
// authorization request, if it carried one.
func (m *AuthorizationService) verifyCodeVerifier(verifier string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.challenge == "" {
		return true
	}
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:]) == m.challenge
}

// deviceHandler starts a device authorization that is approved immediately.
func (m *AuthorizationService) deviceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"device_code":      DeviceCode,
		"user_code":        UserCode,
		"verification_uri": m.Issuer + "/device",
		"expires_in":       300,
		"interval":         1,
	})
}
