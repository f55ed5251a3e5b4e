// Package httpclient builds HTTP clients that call the HelloAsso API with the access
// token held by an oauth2client.TokenManager.
//
// Builder assembles an http.Client from a timeout, a TLSConfig, an optional base
// transport and a redirect policy. When WithOAuth2 is used the TokenManager is
// created in Build over the same transport, so the token grant and the API calls
// share one TLS setup. A zero TLSConfig trusts the system roots; CAFile replaces
// them for sandboxes and intercepting proxies.
//
//	client, err := httpclient.NewBuilder().
//	    WithTLSConfig(httpclient.TLSConfig{CAFile: "/etc/helloasso/proxy-ca.pem"}).
//	    WithOAuth2(ctx, "client-id", "client-secret").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := client.Get("https://api.helloasso.com/v5/users/me/organizations")
//
// OAuth2Transport can also wrap any RoundTripper directly:
//
//	client := &http.Client{Transport: httpclient.NewOAuth2Transport(tm, nil)}
//
// The transport sends whatever access token the manager currently holds. Refreshing
// it is up to the caller.
package httpclient
