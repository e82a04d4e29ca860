package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	// Bucket drivers selectable via --archive URLs.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/archive"
	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/catalog"
	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/config"
	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/fetch"
)

// Sentinel errors used for exit-code mapping.
var (
	errUsage          = errors.New("invalid arguments")
	errPartialFailure = errors.New("some downloads failed")
)

var (
	cfgFile string
	verbose bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ecmwfget",
	Short: "Download ECMWF meteorological forecast data",
	Long: `ecmwfget discovers and downloads dated forecast artifacts (GRIB, NetCDF
and index files) from the ECMWF open data store, organizing them locally
by forecast date.

Settings are read from ~/.ecmwfget.yaml, overridden by ECMWF_* environment
variables (a .env file is honored) and command-line flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default ~/.ecmwfget.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(bulkCmd)
	rootCmd.AddCommand(listDatesCmd)
	rootCmd.AddCommand(listFilesCmd)
	rootCmd.AddCommand(listConfigCmd)
	rootCmd.AddCommand(configCmd)
}

// setup resolves settings and builds the logger before any command runs.
func setup() error {
	// A .env next to the invocation is optional.
	godotenv.Load()

	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := loaded.LoadFromEnv(); err != nil {
		return err
	}
	cfg = loaded

	logger, err = newLogger(verbose)
	if err != nil {
		return err
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// signalContext returns a context cancelled on SIGINT/SIGTERM so in-flight
// transfers abort, remove their temp files and return promptly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newCatalog builds the catalog client from the resolved settings.
func newCatalog() (*catalog.Client, error) {
	return catalog.NewClient(catalog.Options{
		BaseURL: cfg.BaseURL,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
}

// newEngine wires catalog, reporter and optional archive bucket into a
// validated engine configuration.
func newEngine(ctx context.Context, reporter fetch.Reporter, archiveURL string) (*fetch.Engine, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	cat, err := newCatalog()
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var arch *archive.Archiver
	if archiveURL != "" {
		arch, err = archive.Open(ctx, archiveURL)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { arch.Close() }
	}

	engine := fetch.New(cat, fetch.Options{
		OutputDir:   cfg.OutputDir,
		Concurrency: cfg.Concurrency,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		Attempts:    cfg.Retry.Attempts,
		Backoff: fetch.Backoff{
			Base: cfg.Retry.Backoff,
			Max:  cfg.Retry.MaxBackoff,
		},
		Reporter: reporter,
		Logger:   logger,
		Archive:  arch,
	})
	return engine, cleanup, nil
}

// confirm prompts on stdin unless the command runs with --yes.
func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s (y/N): ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// parseDateArg parses a CLI date argument, tagging failures as usage errors.
func parseDateArg(arg string) (catalog.Date, error) {
	d, err := catalog.ParseDate(arg)
	if err != nil {
		return catalog.Date{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	return d, nil
}
