package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gobeaver/fileutil"
)

func init() {
	rootCmd.AddCommand(existsCommand)
}

type existsResult struct {
	Location string `yaml:"location"`
	Kind     string `yaml:"kind"`
}

var existsCommand = &cobra.Command{
	Use:   "exists <location>",
	Short: "Reports whether a location is a file, a directory or missing.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locs, err := parseLocations(args)
		if err != nil {
			return err
		}
		return withFileUtil(func(fu *fileutil.FileUtil) error {
			kind, err := fileutil.Probe(cmd.Context(), fu.Host(), locs[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), existsResult{Location: locs[0].String(), Kind: kind.String()}, kind.String())
		})
	},
}
