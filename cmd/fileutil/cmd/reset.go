package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gobeaver/fileutil"
)

func init() {
	rootCmd.AddCommand(resetCommand)
	rootCmd.AddCommand(rmCommand)
}

type locatorResult struct {
	Location string `yaml:"location"`
	Locator  string `yaml:"locator"`
}

var resetCommand = &cobra.Command{
	Use:   "reset <location>",
	Short: "Recreates a directory empty and prints its locator.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locs, err := parseLocations(args)
		if err != nil {
			return err
		}
		return withFileUtil(func(fu *fileutil.FileUtil) error {
			locator, err := fileutil.ResetDirectory(cmd.Context(), fu.Host(), locs[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), locatorResult{Location: locs[0].String(), Locator: locator}, locator)
		})
	},
}

var rmCommand = &cobra.Command{
	Use:   "rm <location>",
	Short: "Deletes a directory and everything in it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locs, err := parseLocations(args)
		if err != nil {
			return err
		}
		return withFileUtil(func(fu *fileutil.FileUtil) error {
			return fileutil.DeleteDirectory(cmd.Context(), fu.Host(), locs[0])
		})
	},
}
