package config

import (
	"strconv"

	"github.com/mrz1836/cryptocore/pkg/drbg"
)

// Logging rotation defaults.
const (
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.cryptocore",
		Digest: DigestConfig{
			Algorithm: "sha256",
		},
		Random: RandomConfig{
			EntropyLength:        drbg.DefaultEntropyLength,
			ReseedInterval:       drbg.DefaultReseedInterval,
			PredictionResistance: false,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Encoding:      "hex",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level:      "error",
			File:       "cryptocore.log",
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
			Compress:   true,
		},
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
