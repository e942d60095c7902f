// Package cli implements the cryptocore command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"errors"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/mrz1836/cryptocore/internal/config"
	"github.com/mrz1836/cryptocore/internal/metrics"
	"github.com/mrz1836/cryptocore/internal/output"
	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

// skipValidation marks commands that must run against a broken config file.
const skipValidation = "cryptocore/skip-config-validation"

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter

	helpOnce sync.Once
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cryptocore",
	Short: "Message digests and deterministic random bytes",
	Long: `cryptocore computes message digests over text, files and streams, and
produces random bytes from a CTR_DRBG seeded by the system entropy source.`,
	Example: `  cryptocore hash "hello world"
  cryptocore hash -a sha3-256 -f release.tar.gz
  cryptocore random -n 32 -e base64`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	helpOnce.Do(func() { walkCommands(rootCmd, enrichParentLong) })

	if err := rootCmd.Execute(); err != nil {
		formatErr(err)
		if logger != nil {
			logger.Error("%s: %v", coreerr.Code(err), err)
			cleanup()
		}
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return coreerr.ExitCode(err)
}

// formatErr prints err to stderr in the active output format.
func formatErr(err error) {
	format := output.FormatText
	if formatter != nil {
		format = formatter.Format()
	}
	_ = output.FormatError(os.Stderr, err, format)
}

// initGlobals initializes global configuration, logger, and formatter.
func initGlobals(cmd *cobra.Command) error {
	// Determine home directory
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	// Load config, falling back to defaults when none exists yet
	var err error
	cfg, err = config.Load(config.Path(home))
	switch {
	case err == nil:
	case errors.Is(err, coreerr.ErrConfigNotFound) || skipsValidation(cmd):
		cfg = config.Defaults()
		cfg.Home = home
	default:
		return coreerr.WithSuggestion(err, "fix the file or run 'cryptocore config init --force'")
	}

	// Apply environment variable overrides
	config.ApplyEnvironment(cfg)

	// Override with command-line flags
	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if cfg.IsVerbose() {
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	if !skipsValidation(cmd) {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// Initialize logger
	logCfg := cfg.Logging
	logCfg.File = cfg.LogFilePath()
	logger, err = config.NewLoggerFromConfig(logCfg)
	if err != nil {
		// Use null logger if we can't create the file
		logger = config.NullLogger()
	}

	// Initialize formatter
	explicitFormat, err := output.ParseFormat(cfg.GetOutputFormat())
	if err != nil {
		explicitFormat = output.FormatAuto
	}
	w := cmd.OutOrStdout()
	formatter = output.NewFormatter(output.DetectFormat(w, explicitFormat), w)

	logger.Debug("command %q (home=%s, format=%s)", cmd.CommandPath(), cfg.GetHome(), formatter.Format())
	return nil
}

func skipsValidation(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[skipValidation]; ok {
			return true
		}
	}
	return false
}

// cleanup releases resources.
func cleanup() {
	if logger == nil {
		return
	}
	s := metrics.Global.Snapshot()
	m := logger.Named("metrics")
	m.Debug("digests=%d bytes=%d error_rate=%.2f", s.DigestsTotal, s.BytesDigested, metrics.Global.DigestErrorRate())
	m.Debug("random_bytes=%d reseeds=%d (failures=%d, avg=%.3fms)",
		s.RandomBytes, s.ReseedsTotal, s.ReseedFailures, metrics.Global.ReseedLatencyAvgMs())
	_ = logger.Close()
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupCrypto, Title: "Crypto Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)
	rootCmd.SetFlagErrorFunc(flagError)

	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "cryptocore data directory (default: ~/.cryptocore)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
