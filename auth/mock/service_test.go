package mock

import (
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizationService_AuthorizationCode(t *testing.T) {
	server, err := NewHTTPTestAuthorizationServer()
	require.NoError(t, err)
	defer server.Close()

	verifier := "a-code-verifier-long-enough-for-pkce-0123456789"
	sum := sha256.Sum256([]byte(verifier))
	noRedirect := &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	query := url.Values{
		"client_id":             {server.ClientID},
		"redirect_uri":          {"http://localhost:1/callback"},
		"state":                 {"xyz"},
		"code_challenge":        {base64.RawURLEncoding.EncodeToString(sum[:])},
		"code_challenge_method": {"S256"},
	}
	response, err := noRedirect.Get(server.Issuer + "/authorize?" + query.Encode())
	require.NoError(t, err)
	_ = response.Body.Close()
	require.Equal(t, http.StatusFound, response.StatusCode)
	location, err := url.Parse(response.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, AuthorizationCode, location.Query().Get("code"))
	assert.Equal(t, "xyz", location.Query().Get("state"))

	var testCases = []struct {
		description string
		verifier    string
		expect      int
	}{
		{description: "wrong verifier", verifier: "other", expect: http.StatusBadRequest},
		{description: "matching verifier", verifier: verifier, expect: http.StatusOK},
	}
	for _, testCase := range testCases {
		form := url.Values{
			"grant_type":    {"authorization_code"},
			"code":          {AuthorizationCode},
			"code_verifier": {testCase.verifier},
		}
		request, err := http.NewRequest(http.MethodPost, server.Issuer+"/token", strings.NewReader(form.Encode()))
		require.NoError(t, err, testCase.description)
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		request.SetBasicAuth(server.ClientID, server.ClientSecret)
		response, err := http.DefaultClient.Do(request)
		require.NoError(t, err, testCase.description)
		_ = response.Body.Close()
		assert.Equal(t, testCase.expect, response.StatusCode, testCase.description)
	}
	assert.Equal(t, 2, server.Grants("authorization_code"))
}
