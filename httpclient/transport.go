package httpclient

import (
	"fmt"
	"net/http"

	"github.com/Mattherix/hello-asso/oauth2client"
)

// OAuth2Transport is an http.RoundTripper that adds the current HelloAsso access
// token to outgoing HTTP requests.
//
// It wraps an existing transport (typically http.DefaultTransport) and injects the
// Authorization header before each request. It never refreshes: callers decide when
// to call TokenManager.Refresh.
type OAuth2Transport struct {
	// Base is the underlying HTTP transport. If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	// TokenManager provides OAuth2 access tokens.
	TokenManager *oauth2client.TokenManager
}

// RoundTrip implements http.RoundTripper interface.
// It reads the current access token and adds it as "Authorization: Bearer <token>"
// to a clone of the request before delegating to the base transport.
func (t *OAuth2Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.TokenManager == nil {
		closeRequestBody(req)
		return nil, fmt.Errorf("httpclient: TokenManager is nil")
	}

	token, err := t.TokenManager.AccessToken()
	if err != nil {
		closeRequestBody(req)
		return nil, fmt.Errorf("httpclient: failed to get token: %w", err)
	}

	// Clone the request to avoid modifying the original
	reqClone := req.Clone(req.Context())
	reqClone.Header.Set("Authorization", "Bearer "+token)

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	return base.RoundTrip(reqClone)
}

// RoundTrippers must close the body even on error.
func closeRequestBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

// NewOAuth2Transport creates a new OAuth2Transport with the given token manager.
// The base transport defaults to http.DefaultTransport if not specified.
func NewOAuth2Transport(tm *oauth2client.TokenManager, base http.RoundTripper) *OAuth2Transport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &OAuth2Transport{
		Base:         base,
		TokenManager: tm,
	}
}
