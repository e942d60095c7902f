package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/mrz1836/go-sanitize"
)

// Environment variable names.
const (
	EnvHome                 = "CRYPTOCORE_HOME"
	EnvAlgorithm            = "CRYPTOCORE_ALGORITHM"
	EnvOutputFormat         = "CRYPTOCORE_OUTPUT_FORMAT"
	EnvEncoding             = "CRYPTOCORE_ENCODING"
	EnvVerbose              = "CRYPTOCORE_VERBOSE"
	EnvLogLevel             = "CRYPTOCORE_LOG_LEVEL"
	EnvEntropyLength        = "CRYPTOCORE_ENTROPY_LENGTH"
	EnvReseedInterval       = "CRYPTOCORE_RESEED_INTERVAL"
	EnvPredictionResistance = "CRYPTOCORE_PREDICTION_RESISTANCE"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvAlgorithm); v != "" {
		cfg.Digest.Algorithm = SanitizeName(v)
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = SanitizeName(v)
	}

	if v := os.Getenv(EnvEncoding); v != "" {
		cfg.Output.Encoding = SanitizeName(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = SanitizeName(v)
	}

	if n, ok := parsePositive(os.Getenv(EnvEntropyLength)); ok {
		cfg.Random.EntropyLength = n
	}

	if n, ok := parsePositive(os.Getenv(EnvReseedInterval)); ok {
		cfg.Random.ReseedInterval = n
	}

	if v := os.Getenv(EnvPredictionResistance); v != "" {
		cfg.Random.PredictionResistance = parseBool(v)
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// parsePositive parses a strictly positive integer; anything else is ignored.
func parsePositive(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// SanitizeName lowercases an identifier such as an algorithm or format name
// and strips everything but letters, digits, '-' and '_'. Useful for values
// pasted from documentation with stray quotes or whitespace.
func SanitizeName(s string) string {
	return strings.ToLower(sanitize.PathName(strings.TrimSpace(s)))
}
