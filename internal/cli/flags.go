package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mrz1836/cryptocore/internal/config"
	"github.com/mrz1836/cryptocore/internal/output"
	"github.com/mrz1836/cryptocore/pkg/digest"
	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

// Command group IDs for help output.
const (
	groupCrypto = "crypto"
	groupSetup  = "setup"
)

// algorithmFlag holds a digest name given on the command line. Parsing is
// deferred to run time so a typo surfaces as ErrUnsupportedAlgorithm with
// its suggestion instead of a generic flag error.
type algorithmFlag struct {
	name string
}

var _ pflag.Value = (*algorithmFlag)(nil)

func (f *algorithmFlag) String() string { return f.name }

func (f *algorithmFlag) Set(s string) error {
	f.name = config.SanitizeName(s)
	return nil
}

func (f *algorithmFlag) Type() string { return "algorithm" }

// resolve returns the flag's algorithm, or the configured default when the
// flag is unset.
func (f *algorithmFlag) resolve(c *config.Config) (digest.Algorithm, error) {
	if f.name == "" {
		return c.DigestAlgorithm()
	}
	return digest.ParseAlgorithm(f.name)
}

// completeAlgorithms offers the algorithms available in this binary.
func completeAlgorithms(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, alg := range digest.Supported() {
		if strings.HasPrefix(alg.String(), strings.ToLower(toComplete)) {
			names = append(names, alg.String())
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeEncodings offers the output encodings.
func completeEncodings(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		string(output.EncodingHex),
		string(output.EncodingBase64),
		string(output.EncodingMnemonic),
		string(output.EncodingRaw),
	}, cobra.ShellCompDirectiveNoFileComp
}

// resolveEncoding parses the --encoding flag, falling back to the configured
// default when the flag is empty.
func resolveEncoding(flagValue, fallback string) (output.Encoding, error) {
	if flagValue == "" {
		flagValue = fallback
	}
	return output.ParseEncoding(flagValue)
}

// flagError classifies cobra/pflag parse failures as invalid input.
func flagError(cmd *cobra.Command, err error) error {
	return coreerr.WithSuggestion(
		coreerr.WithCause(coreerr.ErrInvalidInput, err),
		"see '"+cmd.CommandPath()+" --help'",
	)
}
