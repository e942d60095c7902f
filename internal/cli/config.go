package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/cryptocore/internal/config"
	"github.com/mrz1836/cryptocore/internal/fileutil"
	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Manage configuration",
	Long:        `Create and inspect the cryptocore configuration file (<home>/config.yaml).`,
	GroupID:     groupSetup,
	Annotations: map[string]string{skipValidation: "true"},
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Write a configuration file with default settings to <home>/config.yaml.

An existing file is left untouched unless --force is given.`,
	Example: `  cryptocore config init
  cryptocore config init --force --home /etc/cryptocore`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// configShowCmd shows the effective configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long: `Display the configuration in effect: the file (or defaults when there is
none) with environment and flag overrides applied.`,
	Example: `  cryptocore config show
  CRYPTOCORE_ALGORITHM=blake3 cryptocore config show -o json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// configPathCmd prints the configuration file location.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configPathCmd = &cobra.Command{
	Use:     "path",
	Short:   "Print the configuration file path",
	Long:    `Print where cryptocore reads its configuration file from.`,
	Example: `  cryptocore config path`,
	Args:    cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		path := config.Path(cfg.Home)
		if formatter.IsJSON() {
			return formatter.Print(map[string]any{"path": path, "exists": fileutil.Exists(path)})
		}
		return formatter.Print(path)
	},
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configPathCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	configPath := config.Path(cfg.Home)

	if fileutil.Exists(configPath) && !configForce {
		return coreerr.WithSuggestion(
			coreerr.WithDetails(coreerr.ErrInvalidInput, map[string]string{"path": configPath}),
			"configuration already exists; use --force to overwrite",
		)
	}

	defaults := config.Defaults()
	defaults.Home = cfg.Home
	if err := config.Save(defaults, configPath); err != nil {
		return err
	}

	logger.Named("config").Debug("wrote defaults to %s", configPath)
	return formatter.Success(fmt.Sprintf("Configuration initialized at %s", configPath))
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return coreerr.WithCause(coreerr.ErrConfigInvalid, err)
	}

	if !formatter.IsJSON() {
		return formatter.Printf("%s", data)
	}

	// Round-trip through a map so JSON keys match the YAML file.
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return coreerr.WithCause(coreerr.ErrConfigInvalid, err)
	}
	return formatter.Print(doc)
}
