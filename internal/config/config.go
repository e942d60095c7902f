// Package config provides configuration management for cryptocore.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/cryptocore/internal/fileutil"
	"github.com/mrz1836/cryptocore/pkg/digest"
	"github.com/mrz1836/cryptocore/pkg/drbg"
	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version int           `yaml:"version"`
	Home    string        `yaml:"home"`
	Digest  DigestConfig  `yaml:"digest"`
	Random  RandomConfig  `yaml:"random"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// DigestConfig defines digest defaults.
type DigestConfig struct {
	Algorithm string `yaml:"algorithm"`
}

// RandomConfig defines generator tunables.
type RandomConfig struct {
	EntropyLength        int    `yaml:"entropy_length"`
	ReseedInterval       int    `yaml:"reseed_interval"`
	PredictionResistance bool   `yaml:"prediction_resistance"`
	Custom               string `yaml:"custom,omitempty"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Encoding      string `yaml:"encoding"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings. The size, backup and age limits
// control log file rotation.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, coreerr.WithDetails(coreerr.ErrConfigNotFound, map[string]string{"path": path})
		}
		return nil, coreerr.WithCause(coreerr.ErrIO, err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, coreerr.WithCause(coreerr.ErrConfigInvalid, err)
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return coreerr.WithDetails(coreerr.WithCause(coreerr.ErrIO, err), map[string]string{"path": dir})
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return coreerr.WithCause(coreerr.ErrConfigInvalid, err)
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// Validate rejects tunables the library would refuse at runtime.
func (c *Config) Validate() error {
	invalid := func(field, value string) error {
		return coreerr.WithDetails(coreerr.ErrConfigInvalid, map[string]string{
			"field": field,
			"value": value,
		})
	}

	alg, err := digest.ParseAlgorithm(c.Digest.Algorithm)
	if err != nil || !digest.IsSupported(alg) {
		return invalid("digest.algorithm", c.Digest.Algorithm)
	}

	if c.Random.EntropyLength < 1 || c.Random.EntropyLength > drbg.MaxSeedInput {
		return invalid("random.entropy_length", itoa(c.Random.EntropyLength))
	}
	if c.Random.EntropyLength+len(c.Random.Custom) > drbg.MaxSeedInput {
		return invalid("random.custom", c.Random.Custom)
	}
	if c.Random.ReseedInterval < 1 {
		return invalid("random.reseed_interval", itoa(c.Random.ReseedInterval))
	}

	switch strings.ToLower(c.Output.DefaultFormat) {
	case "text", "json", "auto":
	default:
		return invalid("output.default_format", c.Output.DefaultFormat)
	}

	switch strings.ToLower(c.Output.Encoding) {
	case "hex", "base64", "raw", "mnemonic":
	default:
		return invalid("output.encoding", c.Output.Encoding)
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "off", "none", "error", "debug":
	default:
		return invalid("logging.level", c.Logging.Level)
	}

	return nil
}

// DigestAlgorithm returns the configured default digest algorithm.
func (c *Config) DigestAlgorithm() (digest.Algorithm, error) {
	return digest.ParseAlgorithm(c.Digest.Algorithm)
}

// GeneratorOptions translates the random section into drbg options.
func (c *Config) GeneratorOptions() []drbg.Option {
	opts := []drbg.Option{
		drbg.WithEntropyLength(c.Random.EntropyLength),
		drbg.WithReseedInterval(c.Random.ReseedInterval),
		drbg.WithPredictionResistance(c.Random.PredictionResistance),
	}
	if c.Random.Custom != "" {
		opts = append(opts, drbg.WithCustom([]byte(c.Random.Custom)))
	}
	return opts
}

// GetHome returns the cryptocore home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// LogFilePath returns the log file location. Relative names live under Home;
// an empty name disables file logging.
func (c *Config) LogFilePath() string {
	file := c.Logging.File
	if file == "" || filepath.IsAbs(file) || strings.HasPrefix(file, "~/") {
		return file
	}
	return filepath.Join(c.Home, file)
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// DefaultHome returns the default cryptocore home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cryptocore"
	}
	return filepath.Join(home, ".cryptocore")
}
