// Package testutil provides public test helpers for code built on hello-asso.
//
// TokenServer is an in-process stand-in for the HelloAsso token endpoint. It listens on
// IPv4 loopback, issues numbered token pairs, and enforces refresh-token rotation the
// way the real endpoint does: once a refresh token has been exchanged it is rejected.
package testutil

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
)

// NewLocalHTTPServer starts an HTTP server bound to IPv4 loopback only.
// The sandbox blocks IPv6 listeners, so force tcp4 to keep tests runnable.
func NewLocalHTTPServer(tb testing.TB, handler http.Handler) *httptest.Server {
	tb.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("failed to create IPv4 listener: %v", err)
	}

	server := httptest.NewUnstartedServer(handler)
	server.Listener = listener
	server.Start()

	return server
}

// NewLocalTLSServer is NewLocalHTTPServer over TLS, using the httptest certificate.
func NewLocalTLSServer(tb testing.TB, handler http.Handler) *httptest.Server {
	tb.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("failed to create IPv4 listener: %v", err)
	}

	server := httptest.NewUnstartedServer(handler)
	server.Listener = listener
	server.StartTLS()

	return server
}

// TokenServer fakes the HelloAsso OAuth2 token endpoint.
//
// Use URL as the OAuth2 base URL; tokens are served at URL + "/token".
type TokenServer struct {
	*httptest.Server

	ClientID     string
	ClientSecret string

	mu           sync.Mutex
	ttl          time.Duration
	issued       int
	refreshToken string
	forms        []url.Values
	failNext     int
}

// NewTokenServer starts a TokenServer accepting the given credentials.
// The server is closed through tb.Cleanup.
func NewTokenServer(tb testing.TB, clientID, clientSecret string) *TokenServer {
	tb.Helper()
	return newTokenServer(tb, clientID, clientSecret, NewLocalHTTPServer)
}

// NewTLSTokenServer is NewTokenServer over HTTPS. Clients must trust
// ts.Certificate() or skip verification.
func NewTLSTokenServer(tb testing.TB, clientID, clientSecret string) *TokenServer {
	tb.Helper()
	return newTokenServer(tb, clientID, clientSecret, NewLocalTLSServer)
}

func newTokenServer(tb testing.TB, clientID, clientSecret string, start func(testing.TB, http.Handler) *httptest.Server) *TokenServer {
	tb.Helper()

	ts := &TokenServer{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		ttl:          30 * time.Minute,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", ts.handleToken)
	ts.Server = start(tb, mux)
	tb.Cleanup(ts.Close)

	return ts
}

// SetTTL changes the expires_in value of subsequently issued tokens.
func (ts *TokenServer) SetTTL(ttl time.Duration) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.ttl = ttl
}

// FailNext makes the next n requests answer 503 without touching the issued tokens.
func (ts *TokenServer) FailNext(n int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.failNext = n
}

// Forms returns the decoded form bodies received so far, in request order.
func (ts *TokenServer) Forms() []url.Values {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]url.Values(nil), ts.forms...)
}

// RefreshToken returns the only refresh token the server currently accepts.
func (ts *TokenServer) RefreshToken() string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.refreshToken
}

// Issued returns how many token pairs were issued.
func (ts *TokenServer) Issued() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.issued
}

func (ts *TokenServer) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeOAuthError(w, http.StatusMethodNotAllowed, "invalid_request", "token endpoint requires POST")
		return
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "body must be form encoded")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.forms = append(ts.forms, r.PostForm)

	if ts.failNext > 0 {
		ts.failNext--
		writeOAuthError(w, http.StatusServiceUnavailable, "temporarily_unavailable", "try again later")
		return
	}

	form := r.PostForm
	switch form.Get("grant_type") {
	case "client_credentials":
		if form.Get("client_id") != ts.ClientID || form.Get("client_secret") != ts.ClientSecret {
			// HelloAsso blames the client_id even when the secret is wrong.
			writeOAuthError(w, http.StatusBadRequest, "unauthorized_client",
				fmt.Sprintf("Invalid client_id '%s'", form.Get("client_id")))
			return
		}
	case "refresh_token":
		if form.Get("client_id") != ts.ClientID {
			writeOAuthError(w, http.StatusBadRequest, "unauthorized_client",
				fmt.Sprintf("Invalid client_id '%s'", form.Get("client_id")))
			return
		}
		if ts.refreshToken == "" || form.Get("refresh_token") != ts.refreshToken {
			writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "Invalid refresh token")
			return
		}
	default:
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "")
		return
	}

	ts.issued++
	ts.refreshToken = fmt.Sprintf("refresh-%d", ts.issued)

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  fmt.Sprintf("access-%d", ts.issued),
		"refresh_token": ts.refreshToken,
		"token_type":    "bearer",
		"expires_in":    int(ts.ttl / time.Second),
	})
}

func writeOAuthError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, map[string]string{
		"error":             code,
		"error_description": description,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
