package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/cryptocore/internal/output"
	"github.com/mrz1836/cryptocore/pkg/digest"
)

// AlgorithmInfo describes one digest algorithm.
type AlgorithmInfo struct {
	Name      string `json:"name"`
	Size      int    `json:"size"`
	Bits      int    `json:"bits"`
	Supported bool   `json:"supported"`
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var algorithmsAll bool

// algorithmsCmd lists digest algorithms.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var algorithmsCmd = &cobra.Command{
	Use:     "algorithms",
	Aliases: []string{"algs"},
	Short:   "List digest algorithms",
	Long: `List the digest algorithms available in this binary with their output
size. With --all, algorithms that are known but not compiled in (md2, and md4
and ripemd160 unless built with the legacyhash tag) are listed too.`,
	Example: `  cryptocore algorithms
  cryptocore algorithms --all -o json`,
	GroupID: groupCrypto,
	Args:    cobra.NoArgs,
	RunE:    runAlgorithms,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(algorithmsCmd)
	algorithmsCmd.Flags().BoolVar(&algorithmsAll, "all", false, "include algorithms without a backend")
}

func runAlgorithms(_ *cobra.Command, _ []string) error {
	infos := listAlgorithms(algorithmsAll)

	if formatter.IsJSON() {
		return formatter.Print(infos)
	}

	table := output.NewTable("NAME", "BYTES", "BITS", "STATUS")
	table.AlignRight(1)
	table.AlignRight(2)
	for _, info := range infos {
		size, bits, status := "-", "-", "unavailable"
		if info.Supported {
			size, bits, status = strconv.Itoa(info.Size), strconv.Itoa(info.Bits), "available"
		}
		table.AddRow(info.Name, size, bits, status)
	}
	return table.Render(formatter.Writer())
}

func listAlgorithms(all bool) []AlgorithmInfo {
	algs := digest.Supported()
	if all {
		algs = digest.Known()
	}

	infos := make([]AlgorithmInfo, 0, len(algs))
	for _, alg := range algs {
		size := alg.Size()
		infos = append(infos, AlgorithmInfo{
			Name:      alg.String(),
			Size:      size,
			Bits:      size * 8,
			Supported: digest.IsSupported(alg),
		})
	}
	return infos
}
