package cli

import (
	"crypto/subtle"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/cryptocore/internal/output"
	"github.com/mrz1836/cryptocore/pkg/binview"
	"github.com/mrz1836/cryptocore/pkg/digest"
	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

// Source labels for non-file inputs.
const (
	sourceText  = "text"
	sourceStdin = "-"
)

// HashResult is the digest of one input.
type HashResult struct {
	Source string `json:"source"`
	Size   int    `json:"size"`
	Digest string `json:"digest"`
}

// HashOutput is the JSON document printed by "cryptocore hash".
type HashOutput struct {
	Algorithm string       `json:"algorithm"`
	Encoding  string       `json:"encoding"`
	Results   []HashResult `json:"results"`
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	hashAlgorithm algorithmFlag
	hashFiles     []string
	hashStdin     bool
	hashEncoding  string
	hashJobs      int
	hashExpect    string
)

// hashCmd computes message digests.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var hashCmd = &cobra.Command{
	Use:   "hash [text...]",
	Short: "Compute a message digest",
	Long: `Compute the digest of text arguments, files or standard input.

Text arguments are joined with single spaces and hashed as one message. Every
--file is hashed on its own and streamed in fixed-size chunks, up to --jobs
files at a time; results keep the order the files were given in. The
algorithm defaults to digest.algorithm from the configuration file.

With --expect every input must hash to the given digest, written in the
selected encoding; the digests are still printed and the command fails if
any input differs.`,
	Example: `  cryptocore hash "hello world"
  cryptocore hash -a blake3 -j 8 -f a.bin -f b.bin
  tar c dir | cryptocore hash --stdin -a sha512
  cryptocore hash -a sha256 -e base64 abc
  cryptocore hash -f release.tar.gz --expect 9f86d081884c7d65...`,
	GroupID: groupCrypto,
	RunE:    runHash,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(hashCmd)

	hashCmd.Flags().VarP(&hashAlgorithm, "algorithm", "a", "digest algorithm (default: digest.algorithm from config)")
	hashCmd.Flags().StringArrayVarP(&hashFiles, "file", "f", nil, "file to hash (repeatable)")
	hashCmd.Flags().BoolVar(&hashStdin, "stdin", false, "hash standard input")
	hashCmd.Flags().StringVarP(&hashEncoding, "encoding", "e", "", "digest encoding: hex, base64, mnemonic")
	hashCmd.Flags().IntVarP(&hashJobs, "jobs", "j", digest.DefaultWorkers, "files to hash concurrently")
	hashCmd.Flags().StringVar(&hashExpect, "expect", "", "fail unless every input hashes to this digest")

	_ = hashCmd.RegisterFlagCompletionFunc("algorithm", completeAlgorithms)
	_ = hashCmd.RegisterFlagCompletionFunc("encoding", completeEncodings)
}

func runHash(cmd *cobra.Command, args []string) error {
	alg, err := hashAlgorithm.resolve(cfg)
	if err != nil {
		return err
	}

	enc, err := hashOutputEncoding()
	if err != nil {
		return err
	}

	var expected []byte
	if hashExpect != "" {
		if expected, err = output.Decode(hashExpect, enc); err != nil {
			return coreerr.WithSuggestion(err, "--expect must use the same encoding as the output (-e)")
		}
	}

	if len(args) == 0 && len(hashFiles) == 0 && !hashStdin {
		return coreerr.WithSuggestion(
			coreerr.Wrap(coreerr.ErrInvalidInput, "nothing to hash"),
			"pass text arguments, --file or --stdin",
		)
	}

	results := make([]HashResult, 0, len(hashFiles)+2)
	var mismatched []string
	add := func(source string, sum []byte) error {
		encoded, err := output.Encode(sum, enc)
		if err != nil {
			return err
		}
		results = append(results, HashResult{Source: source, Size: len(sum), Digest: encoded})
		if expected != nil && subtle.ConstantTimeCompare(sum, expected) != 1 {
			mismatched = append(mismatched, source)
		}
		return nil
	}

	if len(args) > 0 {
		sum, err := digest.MakeHash(binview.FromString(strings.Join(args, " ")), alg)
		if err != nil {
			return err
		}
		if err := add(sourceText, sum); err != nil {
			return err
		}
	}

	if hashStdin {
		sum, err := digest.MakeReaderHash(cmd.InOrStdin(), alg)
		if err != nil {
			return err
		}
		if err := add(sourceStdin, sum); err != nil {
			return err
		}
	}

	files, err := digest.MakeFileHashes(cmd.Context(), hashFiles, alg, hashJobs)
	if err != nil {
		return err
	}
	for _, f := range files {
		if f.Err != nil {
			return f.Err
		}
		if err := add(f.Path, f.Sum); err != nil {
			return err
		}
	}

	logger.Named("hash").Debug("%s over %d input(s)", alg, len(results))

	if err := printHashResults(alg, enc, results); err != nil {
		return err
	}

	if len(mismatched) > 0 {
		return coreerr.WithDetails(coreerr.ErrDigestMismatch, map[string]string{
			"algorithm": alg.String(),
			"inputs":    strings.Join(mismatched, ", "),
		})
	}
	return nil
}

func printHashResults(alg digest.Algorithm, enc output.Encoding, results []HashResult) error {
	if formatter.IsJSON() {
		return formatter.Print(HashOutput{Algorithm: alg.String(), Encoding: string(enc), Results: results})
	}
	for _, r := range results {
		if err := formatter.Printf("%s  %s\n", r.Digest, r.Source); err != nil {
			return err
		}
	}
	return nil
}

// hashOutputEncoding resolves the digest encoding. A configured raw default
// falls back to hex; an explicit raw request is rejected.
func hashOutputEncoding() (output.Encoding, error) {
	if hashEncoding == "" {
		enc, err := output.ParseEncoding(cfg.Output.Encoding)
		if err != nil || !enc.IsText() {
			return output.EncodingHex, nil //nolint:nilerr // invalid defaults already rejected by Validate
		}
		return enc, nil
	}

	enc, err := output.ParseEncoding(hashEncoding)
	if err != nil {
		return "", err
	}
	if !enc.IsText() {
		return "", coreerr.WithSuggestion(
			coreerr.WithDetails(coreerr.ErrInvalidInput, map[string]string{"encoding": hashEncoding}),
			"digests are printed as text; use hex, base64 or mnemonic",
		)
	}
	return enc, nil
}
