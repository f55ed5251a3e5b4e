package oauth2client

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultBaseURL is the HelloAsso OAuth2 base URL. The token endpoint is DefaultBaseURL + "/token".
const DefaultBaseURL = "https://api.helloasso.com/oauth2"

// maxExpiresIn is the largest expires_in, in seconds, a time.Duration can hold.
const maxExpiresIn = float64(math.MaxInt64 / int64(time.Second))

const (
	grantClientCredentials = "client_credentials"
	grantRefreshToken      = "refresh_token"
)

// Logger is an interface for optional logging in TokenManager.
// Only successful grants are logged, with their expiry. Failed grants are never
// logged; they are returned to the caller. Token values never reach the logger.
type Logger interface {
	Printf(format string, args ...any)
}

// TokenManager obtains and refreshes HelloAsso OAuth2 tokens.
//
// The current TokenState is held as an immutable snapshot and swapped as a whole,
// so State and AccessToken are safe to call from any goroutine. Acquire and Refresh
// are not serialized: concurrent Refresh calls on one instance would both present the
// same refresh token, and callers that share a manager must guard them with their own lock.
type TokenManager struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
	logger       Logger // optional logger

	state atomic.Pointer[TokenState]
}

// Option is a functional option for configuring TokenManager.
type Option func(*TokenManager)

// WithBaseURL overrides the OAuth2 base URL (DefaultBaseURL by default).
// Requests are sent to baseURL + "/token".
func WithBaseURL(baseURL string) Option {
	return func(tm *TokenManager) {
		tm.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for token requests.
// Its Transport is the seam for tests and for callers needing proxies, TLS settings or timeouts.
// If not set, http.DefaultClient is used.
func WithHTTPClient(client *http.Client) Option {
	return func(tm *TokenManager) {
		tm.httpClient = client
	}
}

// WithLogger sets a custom logger for token events.
// If not set, no logging will occur.
func WithLogger(logger Logger) Option {
	return func(tm *TokenManager) {
		tm.logger = logger
	}
}

// WithLoggingEnabled enables logging using the default Go log package.
// This is a convenience option that sets the logger to log.Default().
func WithLoggingEnabled() Option {
	return func(tm *TokenManager) {
		tm.logger = log.Default()
	}
}

// NewTokenManager creates a token manager and immediately performs the
// client-credentials grant. If that grant fails, no manager is returned and the
// error is an *AuthenticationError. There is no retry.
//
// Parameters:
//   - ctx: Context bounding the initial token request
//   - clientID: HelloAsso client identifier, forwarded verbatim
//   - clientSecret: HelloAsso client secret, forwarded verbatim
//   - opts: Optional configuration options (WithBaseURL, WithHTTPClient, WithLogger, WithLoggingEnabled)
func NewTokenManager(ctx context.Context, clientID, clientSecret string, opts ...Option) (*TokenManager, error) {
	tm := &TokenManager{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(tm)
	}

	if err := tm.Acquire(ctx); err != nil {
		return nil, err
	}

	return tm, nil
}

// ClientID returns the client identifier the manager authenticates with.
func (tm *TokenManager) ClientID() string {
	return tm.clientID
}

// TokenURL returns the token endpoint both grants are sent to.
func (tm *TokenManager) TokenURL() string {
	base := tm.baseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/token"
}

// Acquire performs the client-credentials grant and replaces the current state.
// On failure the previous state, if any, is left untouched.
func (tm *TokenManager) Acquire(ctx context.Context) error {
	config := &clientcredentials.Config{
		ClientID:     tm.clientID,
		ClientSecret: tm.clientSecret,
		TokenURL:     tm.TokenURL(),
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	token, err := config.Token(tm.requestContext(ctx))
	if err != nil {
		return newAuthenticationError(grantClientCredentials, err)
	}

	state, err := newTokenState(token)
	if err != nil {
		return newAuthenticationError(grantClientCredentials, err)
	}

	tm.state.Store(state)
	tm.logf("oauth2client: obtained new access token (expires: %s)", state.Expiry.Format(time.RFC3339))

	return nil
}

// Refresh exchanges the current refresh token for a new token pair.
//
// It returns a *NotInitializedError if no token was ever acquired. On success the
// rotated refresh token replaces the old one, which the server no longer accepts.
// On failure the previous state is kept and an *AuthenticationError is returned.
func (tm *TokenManager) Refresh(ctx context.Context) error {
	current := tm.state.Load()
	if current == nil {
		return &NotInitializedError{Op: "refresh"}
	}

	config := &oauth2.Config{
		ClientID: tm.clientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tm.TokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	// Only RefreshToken is set so the source always goes to the endpoint.
	source := config.TokenSource(tm.requestContext(ctx), &oauth2.Token{RefreshToken: current.RefreshToken})

	token, err := source.Token()
	if err != nil {
		return newAuthenticationError(grantRefreshToken, err)
	}

	state, err := newTokenState(token)
	if err != nil {
		return newAuthenticationError(grantRefreshToken, err)
	}

	tm.state.Store(state)
	tm.logf("oauth2client: refreshed access token (expires: %s)", state.Expiry.Format(time.RFC3339))

	return nil
}

// State returns a copy of the current token state.
func (tm *TokenManager) State() (TokenState, error) {
	state := tm.state.Load()
	if state == nil {
		return TokenState{}, &NotInitializedError{Op: "state"}
	}
	return *state, nil
}

// AccessToken returns the current access token without checking its expiry.
func (tm *TokenManager) AccessToken() (string, error) {
	state := tm.state.Load()
	if state == nil {
		return "", &NotInitializedError{Op: "access token"}
	}
	return state.AccessToken, nil
}

// requestContext attaches the configured HTTP client for golang.org/x/oauth2.
func (tm *TokenManager) requestContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if tm.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, tm.httpClient)
	}
	return ctx
}

func (tm *TokenManager) logf(format string, args ...any) {
	if tm.logger != nil {
		tm.logger.Printf(format, args...)
	}
}

// newTokenState validates a token response and builds the snapshot that replaces the current one.
// golang.org/x/oauth2 already rejects a missing access_token and, on refresh, silently
// carries the old refresh token forward, so refresh_token and expires_in are read from the raw body.
func newTokenState(token *oauth2.Token) (*TokenState, error) {
	refreshToken, _ := token.Extra("refresh_token").(string)
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: missing refresh_token", ErrMalformedResponse)
	}

	// encoding/json yields float64; x/oauth2 has already rejected non-integer values.
	expiresIn, ok := token.Extra("expires_in").(float64)
	if !ok || expiresIn < 0 {
		return nil, fmt.Errorf("%w: missing or invalid expires_in", ErrMalformedResponse)
	}
	if expiresIn > maxExpiresIn {
		return nil, fmt.Errorf("%w: expires_in %.0f out of range", ErrMalformedResponse, expiresIn)
	}

	return &TokenState{
		AccessToken:  token.AccessToken,
		RefreshToken: refreshToken,
		TokenType:    token.TokenType,
		Expiry:       time.Now().Add(time.Duration(expiresIn * float64(time.Second))),
	}, nil
}
