// Package config loads the HelloAsso client settings from the environment.
//
// Values come from process environment variables, optionally seeded from a
// .env file. Variables already set in the environment win over the file.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/Mattherix/hello-asso/httpclient"
	"github.com/Mattherix/hello-asso/oauth2client"
)

// DefaultEnvFile is the file Load reads when no path is given.
const DefaultEnvFile = ".env"

// Config holds everything needed to build a TokenManager.
type Config struct {
	ClientID     string        `env:"CLIENT_ID,required"`
	ClientSecret string        `env:"CLIENT_SECRET,required"`
	OAuthURL     string        `env:"HELLOASSO_OAUTH_URL,default=https://api.helloasso.com/oauth2"`
	Timeout      time.Duration `env:"HELLOASSO_TIMEOUT,default=30s"`

	// TLS settings for sandboxes and intercepting proxies.
	CAFile             string `env:"HELLOASSO_CA_FILE"`
	ClientCertFile     string `env:"HELLOASSO_CLIENT_CERT_FILE"`
	ClientKeyFile      string `env:"HELLOASSO_CLIENT_KEY_FILE"`
	InsecureSkipVerify bool   `env:"HELLOASSO_INSECURE_SKIP_VERIFY"`
}

// Load reads envFile into the process environment, then decodes and validates Config.
// A missing envFile is not an error.
func Load(ctx context.Context, envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", envFile, err)
	}

	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith decodes and validates Config from the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &cfg, l); err != nil {
		return nil, fmt.Errorf("config: %s%w", variableFor(err), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// variableFor returns "NAME: " for the variable behind the field go-envconfig
// names at the start of err, or "" when none matches.
func variableFor(err error) string {
	msg := err.Error()
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !strings.HasPrefix(msg, field.Name+"(") && !strings.HasPrefix(msg, field.Name+":") {
			continue
		}
		key, _, _ := strings.Cut(field.Tag.Get("env"), ",")
		return key + ": "
	}
	return ""
}

// Validate rejects blank credentials, a base URL that is not absolute, a negative
// timeout, and a client certificate without its key.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return errors.New("config: CLIENT_ID is blank")
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		return errors.New("config: CLIENT_SECRET is blank")
	}

	u, err := url.Parse(c.OAuthURL)
	if err != nil {
		return fmt.Errorf("config: HELLOASSO_OAUTH_URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("config: HELLOASSO_OAUTH_URL must be an absolute URL, got %q", c.OAuthURL)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("config: HELLOASSO_TIMEOUT must not be negative, got %s", c.Timeout)
	}

	if (c.ClientCertFile == "") != (c.ClientKeyFile == "") {
		return errors.New("config: HELLOASSO_CLIENT_CERT_FILE and HELLOASSO_CLIENT_KEY_FILE must be set together")
	}

	return nil
}

// ManagerOptions returns the TokenManager options matching c.
func (c *Config) ManagerOptions() []oauth2client.Option {
	return []oauth2client.Option{oauth2client.WithBaseURL(c.OAuthURL)}
}

// TLS returns the transport security settings for httpclient.Builder.
func (c *Config) TLS() httpclient.TLSConfig {
	return httpclient.TLSConfig{
		CAFile:             c.CAFile,
		CertFile:           c.ClientCertFile,
		KeyFile:            c.ClientKeyFile,
		InsecureSkipVerify: c.InsecureSkipVerify,
	}
}
