package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gobeaver/fileutil"
)

var algorithm string

func init() {
	hashCommand.Flags().StringVarP(&algorithm, "algorithm", "a", string(fileutil.ChecksumSHA256), "Checksum algorithm (md5, sha1, sha256, sha512, crc32, xxhash)")
	rootCmd.AddCommand(locateCommand)
	rootCmd.AddCommand(hashCommand)
}

type hashResult struct {
	Location  string `yaml:"location"`
	Algorithm string `yaml:"algorithm"`
	Sum       string `yaml:"sum"`
}

var locateCommand = &cobra.Command{
	Use:   "locate <location>",
	Short: "Prints the absolute locator of a location.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locs, err := parseLocations(args)
		if err != nil {
			return err
		}
		return withFileUtil(func(fu *fileutil.FileUtil) error {
			locator, err := fu.ResolveLocator(cmd.Context(), locs[0].Area, locs[0].Path)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), locatorResult{Location: locs[0].String(), Locator: locator}, locator)
		})
	},
}

var hashCommand = &cobra.Command{
	Use:   "hash <location>",
	Short: "Prints the checksum of a file's raw content.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locs, err := parseLocations(args)
		if err != nil {
			return err
		}
		return withFileUtil(func(fu *fileutil.FileUtil) error {
			d := fu.In(locs[0].Area)
			sum, err := d.DataFileChecksum(cmd.Context(), locs[0].Path, fileutil.ChecksumAlgorithm(algorithm))
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), hashResult{Location: locs[0].String(), Algorithm: algorithm, Sum: sum}, sum)
		})
	},
}
