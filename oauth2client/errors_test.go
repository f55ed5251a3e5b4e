package oauth2client

import (
	"errors"
	"testing"
)

func TestAuthenticationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AuthenticationError
		want string
	}{
		{
			name: "nil receiver",
			err:  nil,
			want: "oauth2client: authentication failed",
		},
		{
			name: "transport cause",
			err:  &AuthenticationError{Grant: "client_credentials", Err: errors.New("dial tcp: timeout")},
			want: "oauth2client: client_credentials grant failed: dial tcp: timeout",
		},
		{
			name: "status and cause",
			err:  &AuthenticationError{Grant: "refresh_token", StatusCode: 500, Err: errors.New("boom")},
			want: "oauth2client: refresh_token grant failed (status 500): boom",
		},
		{
			name: "oauth2 error body",
			err: &AuthenticationError{
				Grant:       "client_credentials",
				StatusCode:  400,
				Code:        "unauthorized_client",
				Description: "Invalid client_id 'abc'",
				Err:         errors.New("ignored when a code is present"),
			},
			want: "oauth2client: client_credentials grant failed (status 400): unauthorized_client: Invalid client_id 'abc'",
		},
		{
			name: "code without description",
			err:  &AuthenticationError{Grant: "refresh_token", StatusCode: 400, Code: "invalid_grant"},
			want: "oauth2client: refresh_token grant failed (status 400): invalid_grant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthenticationError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := error(&AuthenticationError{Grant: "refresh_token", Err: cause})

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}

	var nilErr *AuthenticationError
	if nilErr.Unwrap() != nil {
		t.Error("nil receiver should unwrap to nil")
	}
}

func TestNotInitializedError_Error(t *testing.T) {
	if got := (&NotInitializedError{Op: "refresh"}).Error(); got != "oauth2client: refresh: no token acquired" {
		t.Errorf("unexpected message: %q", got)
	}

	if got := (&NotInitializedError{}).Error(); got != "oauth2client: no token acquired" {
		t.Errorf("unexpected message: %q", got)
	}
}
