package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// TLSConfig describes how the client verifies the HelloAsso endpoints and,
// behind an mTLS proxy, authenticates itself. The zero value trusts the system roots.
type TLSConfig struct {
	// CAFile is a PEM bundle trusted instead of the system roots, e.g. a
	// corporate proxy's CA or a local sandbox.
	CAFile string

	// CertFile and KeyFile hold a client certificate. Both or neither.
	CertFile string
	KeyFile  string

	// InsecureSkipVerify disables server verification. Development only.
	InsecureSkipVerify bool
}

// IsZero reports whether c leaves the system defaults untouched.
func (c TLSConfig) IsZero() bool {
	return c == TLSConfig{}
}

// clientConfig turns c into a *tls.Config. TLS 1.2 is the floor in every case.
func (c TLSConfig) clientConfig() (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: c.InsecureSkipVerify, // #nosec G402
	}

	if c.CAFile != "" {
		pool, err := loadCertPool(c.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}

	switch {
	case c.CertFile != "" && c.KeyFile != "":
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	case c.CertFile != "" || c.KeyFile != "":
		return nil, errors.New("client certificate and key must be set together")
	}

	return cfg, nil
}

func loadCertPool(path string) (*x509.CertPool, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CA file: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pemBytes) {
		return nil, fmt.Errorf("no PEM certificate found in %s", path)
	}
	return pool, nil
}
