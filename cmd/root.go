package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/linkup/config"
	"github.com/s0up4200/linkup/librelinkup"
	"github.com/s0up4200/linkup/readings"
)

var (
	cfgFile string
	envFile string
	cfg     *config.Config
	logger  zerolog.Logger

	// httpClient replaces the library's default client when set
	httpClient *http.Client

	// Global overrides
	regionFlag  string
	profileFlag string
	unitsFlag   string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "linkup",
	Short: "Read glucose data shared through LibreLinkUp",
	Long: `linkup is a CLI for the LibreLinkUp follower API. It logs in with your
LibreLinkUp account and shows the connections shared with you, their current
readings, recent graphs, log books and glucose history.`,
	SilenceUsage:      true,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "load environment variables from this file")
	rootCmd.PersistentFlags().StringVar(&regionFlag, "region", "", "LibreLinkUp region, e.g. eu or us")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", fmt.Sprintf("client profile (%s)", strings.Join(librelinkup.ProfileNames(), ", ")))
	rootCmd.PersistentFlags().StringVar(&unitsFlag, "units", "", "display units (mg/dL or mmol/L)")
}

// initializeApp loads the configuration and sets up logging
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile, envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("region") {
		region := strings.ToLower(regionFlag)
		if !librelinkup.ValidRegion(region) {
			return fmt.Errorf("invalid region: %q", regionFlag)
		}
		cfg.LibreLinkUp.Region = region
	}
	if cmd.Flags().Changed("profile") {
		if _, err := librelinkup.ProfileByName(profileFlag); err != nil {
			return err
		}
		cfg.LibreLinkUp.Profile = profileFlag
	}
	if cmd.Flags().Changed("units") {
		if _, err := config.ParseUnits(unitsFlag); err != nil {
			return err
		}
		cfg.Display.Units = unitsFlag
	}

	logger = setupLogger(cfg.Logging)
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func clientOptions() ([]librelinkup.Option, error) {
	profile, err := librelinkup.ProfileByName(cfg.LibreLinkUp.Profile)
	if err != nil {
		return nil, err
	}
	opts := []librelinkup.Option{
		librelinkup.WithProfile(profile),
		librelinkup.WithTimeout(cfg.LibreLinkUp.Timeout),
	}
	if httpClient != nil {
		opts = append(opts, librelinkup.WithHTTPClient(httpClient))
	}
	return opts, nil
}

// newClient returns a client from the stored token, or logs in
func newClient(ctx context.Context) (*librelinkup.Client, error) {
	opts, err := clientOptions()
	if err != nil {
		return nil, err
	}

	if cfg.LibreLinkUp.HasToken() {
		logger.Debug().Str("region", cfg.LibreLinkUp.Region).Msg("Using stored token")
		return librelinkup.NewClientFromToken(cfg.LibreLinkUp.Token, cfg.LibreLinkUp.UserID, cfg.LibreLinkUp.Region, logger, opts...)
	}

	creds, err := resolveCredentials()
	if err != nil {
		return nil, err
	}
	session, err := login(ctx, creds, opts)
	if err != nil {
		return nil, describeLoginError(err)
	}
	return librelinkup.NewClientFromToken(session.Token, session.UserID, session.Region, logger, opts...)
}

// login authenticates at the global host and follows one region redirect
func login(ctx context.Context, creds librelinkup.Credentials, opts []librelinkup.Option) (*librelinkup.Session, error) {
	session, err := librelinkup.NewAuthenticator(cfg.LibreLinkUp.Region, logger, opts...).Authenticate(ctx, creds)

	var redirect *librelinkup.RedirectError
	if !errors.As(err, &redirect) {
		return session, err
	}

	if !librelinkup.ValidRegion(redirect.Region) {
		return nil, fmt.Errorf("refusing redirect to invalid region %q", redirect.Region)
	}
	logger.Info().Str("region", redirect.Region).Msg("Account belongs to another region, retrying")
	return librelinkup.NewRegionalAuthenticator(redirect.Region, logger, opts...).Authenticate(ctx, creds)
}

// newOperations connects and wraps the client for the reading commands
func newOperations(ctx context.Context) (*readings.Operations, error) {
	client, err := newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LibreLinkUp: %w", err)
	}

	ops := readings.NewOperations(client, logger)
	ops.SetConcurrency(cfg.Concurrency)
	return ops, nil
}

// newFormatter builds a console formatter from the display settings
func newFormatter(limit int) (*readings.ConsoleFormatter, error) {
	unit, err := config.ParseUnits(cfg.Display.Units)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = cfg.Display.Limit
	}
	return readings.NewConsoleFormatter(readings.FormatOptions{Unit: unit, Limit: limit}), nil
}
