package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/joshrmcdaniel/overseerr-requests-bot/config"
	"github.com/joshrmcdaniel/overseerr-requests-bot/filter"
	"github.com/joshrmcdaniel/overseerr-requests-bot/overseerr"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	client  *overseerr.Client
	filters *filter.Manager

	// Command flags
	dryRun bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "overseerr-requests-bot",
	Short: "Search, request and moderate media in Overseerr",
	Long: `overseerr-requests-bot talks to an Overseerr instance on your behalf. It can
search for movies and shows, submit requests, list and filter existing
requests, and approve or decline them.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "d", false, "show what would change without calling Overseerr")

	rootCmd.AddCommand(testCmd)
}

// initializeApp initializes the configuration and client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	opts := []overseerr.Option{
		overseerr.WithTimeout(cfg.Overseerr.Timeout),
		overseerr.WithPageSize(cfg.Overseerr.PageSize),
		overseerr.WithRateLimit(cfg.Overseerr.RateLimit.RequestsPerSecond, cfg.Overseerr.RateLimit.Burst),
		overseerr.WithRaiseForError(true),
		overseerr.WithUserAgent("overseerr-requests-bot/" + version),
	}
	if cfg.Overseerr.UsesCredentials() {
		opts = append(opts, overseerr.WithCredentials(cfg.Overseerr.Email, cfg.Overseerr.Password))
	}

	client, err = overseerr.NewClient(cfg.Overseerr.URL, cfg.Overseerr.APIKey, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create Overseerr client: %w", err)
	}

	// Session auth needs a login before any other call
	if cfg.Overseerr.APIKey == "" {
		if err := client.Connect(cmd.Context()); err != nil {
			return err
		}
	}

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format; no colour when stderr is redirected
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to Overseerr",
	Long:  `Test the connection to your Overseerr instance and display basic information.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fmt.Printf("Testing connection to Overseerr at %s...\n", cfg.Overseerr.URL)

	me, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	fmt.Println("✓ Connection successful!")
	fmt.Printf("- Authenticated as: %s (ID: %d)\n", me.Value.GetDisplayName(), me.Value.ID)
	fmt.Printf("- Can manage requests: %s\n", boolToStatus(canManageRequests(me.Value)))

	if err := printCounts(ctx); err != nil {
		return err
	}

	if names := filters.ListFilters(); len(names) > 0 {
		fmt.Printf("\nFilter presets:\n")
		for _, name := range names {
			fmt.Printf("  • %s\n", name)
		}
	}

	return nil
}

func printCounts(ctx context.Context) error {
	counts, err := client.RequestCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to get request counts: %w", err)
	}

	c := counts.Value
	fmt.Printf("\nOverseerr Requests:\n")
	fmt.Printf("- Total: %d (movies: %d, tv: %d)\n", c.Total, c.Movie, c.TV)
	fmt.Printf("- Pending: %d\n", c.Pending)
	fmt.Printf("- Approved: %d\n", c.Approved)
	fmt.Printf("- Declined: %d\n", c.Declined)
	fmt.Printf("- Processing: %d\n", c.Processing)
	fmt.Printf("- Available: %d\n", c.Available)
	return nil
}

func boolToStatus(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func canManageRequests(u overseerr.User) bool {
	return u.Permissions.HasAny(overseerr.PermissionAdmin, overseerr.PermissionManageRequests)
}

// requireManager fails unless the authenticated user may approve or decline
func requireManager(ctx context.Context) error {
	me, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("failed to look up current user: %w", err)
	}
	if !canManageRequests(me.Value) {
		return fmt.Errorf("user %s lacks the Manage Requests permission", me.Value.GetDisplayName())
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
