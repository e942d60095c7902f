package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/cryptocore/internal/version"
)

// versionCmd prints build information.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Show version information",
	Long:    `Show the cryptocore version, commit and build date along with the Go toolchain and platform.`,
	Example: `  cryptocore version
  cryptocore version -o json`,
	GroupID: groupSetup,
	Args:    cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		info := version.Get()
		if formatter.IsJSON() {
			return formatter.Print(info)
		}
		return formatter.Printf("cryptocore %s\n", info)
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
}
