package mock

import (
	"github.com/viant/afs/url"
	"golang.org/x/oauth2"
)

// NewTestClient returns a client config registered with the mock server at issuer.
func NewTestClient(issuer string, scopes ...string) *oauth2.Config {
	return &oauth2.Config{ClientID: "test_client_id", ClientSecret: "test_client_secret", Endpoint: oauth2.Endpoint{
		AuthURL:       url.Join(issuer, "authorize"),
		TokenURL:      url.Join(issuer, "token"),
		DeviceAuthURL: url.Join(issuer, "device/code"),
		AuthStyle:     oauth2.AuthStyleInHeader,
	}, Scopes: scopes, RedirectURL: "http://localhost:8080/callback"}
}
