package oauth2client

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenState is one token pair issued by the token endpoint.
// It is a value: TokenManager replaces it as a whole and never edits it in place.
type TokenState struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
}

// Expired reports whether the access token is past its expiry.
func (s TokenState) Expired() bool {
	return !time.Now().Before(s.Expiry)
}

// ExpiresIn returns the time left before expiry. It is negative once expired.
func (s TokenState) ExpiresIn() time.Duration {
	return time.Until(s.Expiry)
}

// AccessClaims decodes the claims of the access token without verifying its signature.
// HelloAsso access tokens are JWTs; the claims are only meant for inspection
// (subject, expiry, roles) and must not be trusted for authorization decisions.
func (s TokenState) AccessClaims() (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return nil, fmt.Errorf("oauth2client: decode access token claims: %w", err)
	}
	return claims, nil
}

// String renders the state with both tokens shortened so it can be logged.
func (s TokenState) String() string {
	return fmt.Sprintf("access_token=%s refresh_token=%s token_type=%s expiry=%s",
		redact(s.AccessToken), redact(s.RefreshToken), s.TokenType, s.Expiry.Format(time.RFC3339))
}

func redact(token string) string {
	const visible = 6
	if len(token) <= visible {
		return "***"
	}
	return token[:visible] + "***"
}
