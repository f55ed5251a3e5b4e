package oauth2client

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// ErrMalformedResponse is wrapped by AuthenticationError when the token endpoint
// answered with a success status but the body lacks a required field.
var ErrMalformedResponse = errors.New("oauth2client: malformed token response")

// AuthenticationError reports a failed grant against the token endpoint.
//
// StatusCode is zero when no HTTP response was received (network failure,
// cancelled context). Code and Description carry the OAuth2 error body when the
// server sent one; HelloAsso answers "unauthorized_client" for both a wrong
// client_id and a wrong client_secret.
type AuthenticationError struct {
	Grant       string
	StatusCode  int
	Code        string
	Description string
	Err         error
}

func (e *AuthenticationError) Error() string {
	if e == nil {
		return "oauth2client: authentication failed"
	}

	msg := fmt.Sprintf("oauth2client: %s grant failed", e.Grant)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Code != "" {
		msg += ": " + e.Code
		if e.Description != "" {
			msg += ": " + e.Description
		}
		return msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *AuthenticationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NotInitializedError is returned when an operation needs a token that was never acquired.
type NotInitializedError struct {
	Op string
}

func (e *NotInitializedError) Error() string {
	if e == nil || e.Op == "" {
		return "oauth2client: no token acquired"
	}
	return fmt.Sprintf("oauth2client: %s: no token acquired", e.Op)
}

// newAuthenticationError wraps err, lifting status and OAuth2 error fields out of
// an *oauth2.RetrieveError when present.
func newAuthenticationError(grant string, err error) *AuthenticationError {
	authErr := &AuthenticationError{Grant: grant, Err: err}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil {
			authErr.StatusCode = retrieveErr.Response.StatusCode
		}
		authErr.Code = retrieveErr.ErrorCode
		authErr.Description = retrieveErr.ErrorDescription
	}

	return authErr
}
