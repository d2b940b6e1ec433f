package mock

import (
	"encoding/json"
	"net/http"
	"time"
)

const deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"

// tokenHandler handles authorization_code, refresh_token and device_code grants
func (m *AuthorizationService) tokenHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	grantType := r.FormValue("grant_type")
	m.count(grantType)
	clientID, clientSecret, ok := r.BasicAuth()
	if !ok {
		clientID = r.FormValue("client_id")
		clientSecret = r.FormValue("client_secret")
	}
	if clientID != m.ClientID || clientSecret != m.ClientSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client"})
		return
	}
	switch grantType {
	case "authorization_code":
		if r.FormValue("code") != AuthorizationCode || !m.verifyCodeVerifier(r.FormValue("code_verifier")) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
			return
		}
	case "refresh_token":
		if m.RejectRefresh || r.FormValue("refresh_token") == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "Token has been expired or revoked."})
			return
		}
	case deviceGrantType:
		if r.FormValue("device_code") != DeviceCode {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
			return
		}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}
	accessToken, err := m.createJWT(clientID, "access_token", m.ExpiresIn)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	response := map[string]interface{}{
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   int(m.ExpiresIn.Seconds()),
	}
	// refresh grants keep the caller's refresh token, as Google does
	if grantType != "refresh_token" {
		refreshToken, err := m.createJWT(clientID, "refresh_token", 24*time.Hour)
		if err != nil {
			http.Error(w, "Server error", http.StatusInternalServerError)
			return
		}
		response["refresh_token"] = refreshToken
	}
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
