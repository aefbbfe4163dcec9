package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dvcrn/nmrest/internal/app"
	"github.com/dvcrn/nmrest/internal/config"
	"github.com/dvcrn/nmrest/internal/credentials"
	"github.com/dvcrn/nmrest/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	envFile  string
	keychain string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "nmrest",
		Short:         "Call the local NM REST service with a cached bearer token",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("a subcommand is required")
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before reading NM_* variables")
	rootCmd.PersistentFlags().StringVar(&flags.keychain, "keychain", "", "macOS keychain service holding the credentials JSON")

	rootCmd.AddCommand(newDoCommand(flags))
	rootCmd.AddCommand(newTokenCommand(flags))
	rootCmd.AddCommand(newLoginCommand(flags))
	return rootCmd
}

// setup loads configuration and credentials shared by every subcommand
func setup(flags *globalFlags) (*config.Config, credentials.Credentials, zerolog.Logger, error) {
	log := logger.New()

	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return nil, credentials.Credentials{}, log, err
	}

	creds, err := app.LoadCredentials(cfg, flags.keychain, log)
	if err != nil {
		return nil, credentials.Credentials{}, log, fmt.Errorf("failed to load credentials: %w", err)
	}

	log.Debug().
		Str("base_url", cfg.BaseURL).
		Dur("timeout", cfg.Timeout).
		Str("system_token", logger.Mask(creds.SystemToken)).
		Msg("Configuration loaded")
	return cfg, creds, log, nil
}

func newDoCommand(flags *globalFlags) *cobra.Command {
	var (
		method   string
		data     string
		dataFile string
		headers  []string
	)

	cmd := &cobra.Command{
		Use:   "do <url>",
		Short: "Execute an authenticated request and print the response body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			header, err := parseHeaders(headers)
			if err != nil {
				return err
			}
			body, err := readBody(cmd.InOrStdin(), data, dataFile, cmd.Flags().Changed("data"))
			if err != nil {
				return err
			}

			cfg, creds, log, err := setup(flags)
			if err != nil {
				return err
			}

			executor, _, err := app.NewExecutor(cfg, creds, app.Request{
				Method:  strings.ToUpper(method),
				URL:     args[0],
				Headers: header,
			}, log)
			if err != nil {
				return err
			}

			resp, err := executor.Execute(cmd.Context(), body)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			fmt.Fprintln(cmd.ErrOrStderr(), resp.Proto, resp.Status)
			if _, err := io.Copy(cmd.OutOrStdout(), resp.Body); err != nil {
				return fmt.Errorf("failed to read response body: %w", err)
			}
			if resp.StatusCode >= http.StatusBadRequest {
				return fmt.Errorf("request failed with status %d", resp.StatusCode)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", "", "HTTP method (default POST with a body, GET without)")
	cmd.Flags().StringVarP(&data, "data", "d", "", "request body")
	cmd.Flags().StringVar(&dataFile, "data-file", "", "read the request body from a file, - for stdin")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra header as 'Name: value', repeatable")
	return cmd
}

func newTokenCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Obtain an access token and show when it expires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, creds, log, err := setup(flags)
			if err != nil {
				return err
			}

			executor, _, err := app.NewExecutor(cfg, creds, app.Request{URL: cfg.BaseURL}, log)
			if err != nil {
				return err
			}

			tok, err := executor.TokenSource(cmd.Context()).Token()
			if err != nil {
				return err
			}

			remaining := time.Until(tok.Expiry).Round(time.Second)
			fmt.Fprintf(cmd.OutOrStdout(), "token:      %s\nexpires_at: %s\nexpires_in: %s\n",
				logger.Mask(tok.AccessToken), tok.Expiry.UTC().Format(time.RFC3339), remaining)
			if remaining <= time.Minute {
				log.Warn().Dur("expires_in", remaining).Msg("Access token expires within a minute")
			}
			return nil
		},
	}
}

func newLoginCommand(flags *globalFlags) *cobra.Command {
	var (
		path  string
		input credentials.Credentials
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the credential triple in a file or the keychain",
		Long: `Store systemToken, apiToken and refreshToken for later calls.

Values come from the flags, falling back to NM_SYSTEM_TOKEN, NM_API_TOKEN
and NM_REFRESH_TOKEN. Credentials are written to --path, NM_CREDENTIALS_FILE
or $XDG_CONFIG_HOME/nmrest/credentials.json, or to the keychain with --keychain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New()
			if err := config.LoadEnv(flags.envFile); err != nil {
				return err
			}

			creds := credentials.FromEnv()
			if input.SystemToken != "" {
				creds.SystemToken = input.SystemToken
			}
			if input.APIToken != "" {
				creds.APIToken = input.APIToken
			}
			if input.RefreshToken != "" {
				creds.RefreshToken = input.RefreshToken
			}

			target := path
			if target == "" {
				target = os.Getenv(config.EnvCredentialsFile)
			}

			var store app.CredentialsSaver
			if flags.keychain != "" {
				store = credentials.NewKeychainStoreWithLogger(flags.keychain, log)
			}

			where, err := app.SaveCredentials(creds, target, store, log)
			if err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "credentials saved to", where)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.SystemToken, "system-token", "", "system token (default $NM_SYSTEM_TOKEN)")
	cmd.Flags().StringVar(&input.APIToken, "api-token", "", "API token (default $NM_API_TOKEN)")
	cmd.Flags().StringVar(&input.RefreshToken, "refresh-token", "", "refresh token (default $NM_REFRESH_TOKEN)")
	cmd.Flags().StringVar(&path, "path", "", "credentials file (default $NM_CREDENTIALS_FILE or the XDG config path)")
	return cmd
}

// parseHeaders turns "Name: value" pairs into a header map
func parseHeaders(raw []string) (http.Header, error) {
	header := make(http.Header)
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Name: value'", h)
		}
		header.Add(name, strings.TrimSpace(value))
	}
	return header, nil
}

// readBody returns nil when no body was requested so the method defaults to GET
func readBody(stdin io.Reader, data, dataFile string, dataSet bool) ([]byte, error) {
	if dataSet && dataFile != "" {
		return nil, fmt.Errorf("--data and --data-file are mutually exclusive")
	}
	switch {
	case dataSet:
		return append([]byte{}, data...), nil
	case dataFile == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read body from stdin: %w", err)
		}
		return b, nil
	case dataFile != "":
		b, err := os.ReadFile(dataFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read body file: %w", err)
		}
		return b, nil
	}
	return nil, nil
}
