// Package testutil provides test helpers for hello-asso packages.
//
// It mocks the OAuth2 token endpoint without real sockets, records the decoded form
// bodies sent to it, mints JWT-shaped access tokens, and generates self-signed
// certificates for TLS/mTLS tests.
//
// # Utilities
//
//   - MockOAuth2Server: stub token endpoint that captures requests and form bodies
//   - JSONResponse, StaticJSONResponse, TokenResponse, Sequence: canned responses
//   - RoundTripFunc: inline http.RoundTripper implementations
//   - SignedAccessToken: HS256 JWT for claim-decoding tests
//   - WriteTestCACert / WriteTestCertAndKey: generate temporary CA and leaf certificates for tests
//   - WriteServerCA: export a TLS httptest server's certificate as a CA file
//
// These helpers are designed for tests and may mutate http.DefaultClient/Transport; they restore previous values via tb.Cleanup.
package testutil
