package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goatflow/goatflow-go/config"
	"github.com/goatflow/goatflow-go/goatflow"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	client  *goatflow.Client

	version   = "dev"
	buildTime = "unknown"
)

// SetVersion sets the version information from build flags.
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "goatflowctl",
	Short: "A CLI for the GoatFlow ticketing service",
	Long: `goatflowctl is a command-line client for GoatFlow. It talks to a
GoatFlow instance using the credentials from your config file and lets
you list, inspect, and create tickets, browse users and queues, and
verify connectivity.`,
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

	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp loads the configuration and builds the API client.
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	opts := []goatflow.Option{
		goatflow.WithLogger(logger),
		goatflow.WithTimeout(cfg.HTTP.Timeout),
		goatflow.WithRefreshTimeout(cfg.HTTP.RefreshTimeout),
		goatflow.WithUserAgent("goatflowctl/" + version),
	}

	gf := cfg.Goatflow
	switch {
	case gf.HasAPIKey():
		client, err = goatflow.NewWithAPIKey(gf.URL, gf.APIKey, opts...)
	case gf.HasToken():
		client, err = goatflow.NewWithToken(gf.URL, gf.Token, gf.RefreshToken, gf.TokenExpiry(), opts...)
	case gf.HasLogin():
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTP.Timeout)
		defer cancel()

		var me *goatflow.User
		client, me, err = goatflow.Login(ctx, gf.URL, gf.Email, gf.Password, opts...)
		if err == nil {
			logger.Debug().Str("user", me.FullName()).Msg("Logged in")
		}
	}
	if err != nil {
		return fmt.Errorf("failed to create GoatFlow client: %w", err)
	}

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

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

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to GoatFlow",
	Long:  `Test the connection to your GoatFlow instance using the configured credentials.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Testing connection to GoatFlow at %s...\n", cfg.Goatflow.URL)

	ctx := cmd.Context()
	if err := client.TestConnection(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	fmt.Println("✓ Connection successful!")

	me, err := client.Users.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\nAuthenticated as: %s <%s> (role: %s)\n", me.FullName(), me.Email, me.Role)

	stats, err := client.Dashboard.Stats(ctx)
	if err != nil {
		// Stats need agent permissions; customers still get a working connection.
		logger.Debug().Err(err).Msg("Dashboard stats unavailable")
		return nil
	}

	fmt.Printf("\nGoatFlow Statistics:\n")
	fmt.Printf("- Total tickets: %d\n", stats.TotalTickets)
	fmt.Printf("- Open tickets: %d\n", stats.OpenTickets)
	fmt.Printf("- Unassigned tickets: %d\n", stats.UnassignedTickets)

	return nil
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// The root's PersistentPreRunE needs a config file; version should not.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("goatflowctl %s (built %s)\n", version, buildTime)
	},
}
