package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Mattherix/hello-asso/oauth2client"
)

// Builder provides a fluent interface for constructing HTTP clients for the
// HelloAsso API with optional OAuth2 authentication and TLS/mTLS support.
type Builder struct {
	tokenManager *oauth2client.TokenManager
	oauth2       *oauth2Credentials

	tls TLSConfig

	timeout         time.Duration
	baseTransport   http.RoundTripper
	followRedirects bool
}

// NewBuilder creates a new HTTP client builder.
func NewBuilder() *Builder {
	return &Builder{
		timeout:         30 * time.Second,
		followRedirects: true,
	}
}

// WithTokenManager sets the OAuth2 token manager for automatic authentication.
func (b *Builder) WithTokenManager(tm *oauth2client.TokenManager) *Builder {
	b.tokenManager = tm
	return b
}

// oauth2Credentials defers TokenManager construction to Build, where the
// client-credentials grant can fail and share the configured transport.
type oauth2Credentials struct {
	ctx          context.Context
	clientID     string
	clientSecret string
	opts         []oauth2client.Option
}

// WithOAuth2 enables OAuth2 client credentials authentication. The TokenManager is
// created by Build, which performs the initial grant through the builder's transport
// and timeout.
//
// Parameters:
//   - ctx: Context bounding the initial token request
//   - clientID: HelloAsso client identifier
//   - clientSecret: HelloAsso client secret
//   - opts: TokenManager options (e.g., oauth2client.WithBaseURL); they take precedence over the builder's HTTP client
func (b *Builder) WithOAuth2(ctx context.Context, clientID, clientSecret string, opts ...oauth2client.Option) *Builder {
	b.oauth2 = &oauth2Credentials{
		ctx:          ctx,
		clientID:     clientID,
		clientSecret: clientSecret,
		opts:         opts,
	}
	return b
}

// WithTLS trusts caFile (system roots when empty) and presents the
// certFile/keyFile pair when both are set.
func (b *Builder) WithTLS(caFile, certFile, keyFile string) *Builder {
	b.tls.CAFile = caFile
	b.tls.CertFile = certFile
	b.tls.KeyFile = keyFile
	return b
}

// WithTLSConfig replaces the whole TLS configuration.
func (b *Builder) WithTLSConfig(cfg TLSConfig) *Builder {
	b.tls = cfg
	return b
}

// WithInsecureSkipVerify disables TLS certificate verification (NOT RECOMMENDED for production).
func (b *Builder) WithInsecureSkipVerify() *Builder {
	b.tls.InsecureSkipVerify = true
	return b
}

// WithTimeout sets the request timeout for the HTTP client.
// Default is 30 seconds if not specified.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.timeout = timeout
	return b
}

// WithBaseTransport sets a custom base transport. It is used as given: TLS
// settings do not apply to it.
func (b *Builder) WithBaseTransport(transport http.RoundTripper) *Builder {
	b.baseTransport = transport
	return b
}

// WithoutRedirects disables automatic redirect following.
// By default, the client follows up to 10 redirects.
func (b *Builder) WithoutRedirects() *Builder {
	b.followRedirects = false
	return b
}

// Build constructs the HTTP client. With WithOAuth2 it also creates the
// TokenManager, whose client-credentials grant goes through the same transport
// and timeout; a failed grant fails Build.
func (b *Builder) Build() (*http.Client, error) {
	transport, err := b.roundTripper()
	if err != nil {
		return nil, err
	}

	if b.oauth2 != nil {
		opts := append([]oauth2client.Option{
			oauth2client.WithHTTPClient(&http.Client{Transport: transport, Timeout: b.timeout}),
		}, b.oauth2.opts...)

		tm, err := oauth2client.NewTokenManager(b.oauth2.ctx, b.oauth2.clientID, b.oauth2.clientSecret, opts...)
		if err != nil {
			return nil, fmt.Errorf("httpclient: OAuth2 setup failed: %w", err)
		}
		b.tokenManager = tm
	}

	if b.tokenManager != nil {
		transport = NewOAuth2Transport(b.tokenManager, transport)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   b.timeout,
	}

	if !b.followRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return client, nil
}

// roundTripper picks the base transport: the one set by WithBaseTransport, else a
// clone of http.DefaultTransport carrying the TLS settings. A default transport
// that is not an *http.Transport (a test stub) is used unchanged.
func (b *Builder) roundTripper() (http.RoundTripper, error) {
	if b.baseTransport != nil {
		return b.baseTransport, nil
	}

	def, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return http.DefaultTransport, nil
	}

	tlsConfig, err := b.tls.clientConfig()
	if err != nil {
		return nil, fmt.Errorf("httpclient: TLS config failed: %w", err)
	}

	transport := def.Clone()
	transport.TLSClientConfig = tlsConfig
	return transport, nil
}

// TokenManager returns the manager attached by WithTokenManager or created by the last Build.
func (b *Builder) TokenManager() *oauth2client.TokenManager {
	return b.tokenManager
}

// NewHTTPClient is a convenience function that creates a simple HTTP client with OAuth2 authentication.
// For more configuration options, use Builder instead.
//
// Example:
//
//	tm, err := oauth2client.NewTokenManager(ctx, clientID, clientSecret)
//	client := httpclient.NewHTTPClient(tm)
//	resp, err := client.Get("https://api.helloasso.com/v5/users/me/organizations")
func NewHTTPClient(tm *oauth2client.TokenManager) *http.Client {
	transport := NewOAuth2Transport(tm, nil)
	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}
