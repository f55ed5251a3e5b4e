// Package oauth2client obtains and refreshes OAuth2 tokens for the HelloAsso API.
//
// A TokenManager exchanges client credentials for an access/refresh token pair when it
// is constructed, and exchanges the stored refresh token for a new pair on Refresh.
// Both grants are form-encoded POSTs to the single token endpoint
// (https://api.helloasso.com/oauth2/token by default).
//
// # Features
//
//   - Client-credentials grant on construction; construction fails if it fails
//   - Refresh-token grant that always stores the rotated refresh token
//   - Immutable TokenState snapshots, replaced as a whole on every successful grant
//   - Typed errors: *AuthenticationError for endpoint failures, *NotInitializedError for missing state
//   - Optional logging (WithLogger, WithLoggingEnabled)
//
// # Quick Start
//
//	tm, err := oauth2client.NewTokenManager(ctx, clientID, clientSecret)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	state, _ := tm.State()
//	if state.Expired() {
//	    if err := tm.Refresh(ctx); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Notes
//
//   - The manager never refreshes by itself; callers inspect TokenState.Expiry and call Refresh.
//   - There are no retries, timers or background goroutines.
//   - Reads are safe for concurrent use; Refresh calls on one instance must be serialized by the caller.
package oauth2client
