// Package cli implements the helloasso-token command.
package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Mattherix/hello-asso/httpclient"
	"github.com/Mattherix/hello-asso/internal/config"
	"github.com/Mattherix/hello-asso/oauth2client"
)

type rootOptions struct {
	envFile string
	verbose bool
	reveal  bool
	apiURL  string
}

// NewRootCommand returns the helloasso-token command.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "helloasso-token",
		Short: "Obtain and refresh a HelloAsso API token",
		Long: `Obtain a HelloAsso access token with the client-credentials grant,
exchange its refresh token once, and print the resulting token state.

Credentials are read from CLIENT_ID and CLIENT_SECRET, optionally seeded from
a .env file. HELLOASSO_OAUTH_URL and HELLOASSO_TIMEOUT override the endpoint
and HTTP timeout.

For sandboxes and intercepting proxies, HELLOASSO_CA_FILE trusts an extra PEM
bundle instead of the system roots, HELLOASSO_CLIENT_CERT_FILE and
HELLOASSO_CLIENT_KEY_FILE present a client certificate, and
HELLOASSO_INSECURE_SKIP_VERIFY=true disables server verification.

Examples:
  # Use ./.env
  helloasso-token

  # Show full tokens and call the API with the refreshed token
  helloasso-token --reveal --api-url https://api.helloasso.com/v5/users/me/organizations`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), newLogger(cmd.ErrOrStderr(), opts.verbose), opts)
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "Path to a .env file (ignored when missing)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log token lifecycle events to stderr")
	cmd.Flags().BoolVar(&opts.reveal, "reveal", false, "Print full token values instead of redacted ones")
	cmd.Flags().StringVar(&opts.apiURL, "api-url", "", "Issue one authenticated GET to this URL after refreshing")

	return cmd
}

func newLogger(out io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

func run(ctx context.Context, out io.Writer, logger *logrus.Logger, opts *rootOptions) error {
	cfg, err := config.Load(ctx, opts.envFile)
	if err != nil {
		return err
	}

	managerOpts := append(cfg.ManagerOptions(), oauth2client.WithLogger(logger))
	builder := httpclient.NewBuilder().
		WithTimeout(cfg.Timeout).
		WithTLSConfig(cfg.TLS()).
		WithOAuth2(ctx, cfg.ClientID, cfg.ClientSecret, managerOpts...)

	client, err := builder.Build()
	if err != nil {
		return err
	}

	tm := builder.TokenManager()
	if err := tm.Refresh(ctx); err != nil {
		return err
	}

	state, err := tm.State()
	if err != nil {
		return err
	}

	printState(out, tm.ClientID(), state, opts.reveal)

	if opts.apiURL != "" {
		return callAPI(ctx, out, logger, client, opts.apiURL)
	}

	return nil
}

func printState(out io.Writer, clientID string, state oauth2client.TokenState, reveal bool) {
	fmt.Fprintf(out, "client_id:     %s\n", clientID)
	if reveal {
		fmt.Fprintf(out, "access_token:  %s\n", state.AccessToken)
		fmt.Fprintf(out, "refresh_token: %s\n", state.RefreshToken)
	} else {
		fmt.Fprintf(out, "token:         %s\n", state)
	}
	fmt.Fprintf(out, "token_type:    %s\n", state.TokenType)
	fmt.Fprintf(out, "expires_at:    %s (in %s)\n",
		state.Expiry.UTC().Format(time.RFC3339), state.ExpiresIn().Round(time.Second))

	claims, err := state.AccessClaims()
	if err != nil {
		return
	}
	for _, key := range slices.Sorted(maps.Keys(claims)) {
		fmt.Fprintf(out, "claim %s: %v\n", key, claims[key])
	}
}

func callAPI(ctx context.Context, out io.Writer, logger *logrus.Logger, client *http.Client, apiURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", apiURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	logger.WithField("status", resp.StatusCode).Infof("GET %s", apiURL)
	fmt.Fprintf(out, "GET %s: %s\n", apiURL, resp.Status)

	return nil
}
