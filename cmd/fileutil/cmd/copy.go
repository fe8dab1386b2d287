package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gobeaver/fileutil"
)

var copyIgnore []string

func init() {
	copyCommand.Flags().StringSliceVar(&copyIgnore, "ignore", nil, "Extra entry names to skip")
	rootCmd.AddCommand(copyCommand)
}

var copyCommand = &cobra.Command{
	Use:   "copy <source> <destination>",
	Short: "Copies a tree, skipping .DS_Store and __MACOSX entries.",
	Long: `Copies the source tree into the destination. When the destination is an
existing directory the source entries are merged into it file by file.
Otherwise the source is copied as a whole.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		locs, err := parseLocations(args)
		if err != nil {
			return err
		}
		return withFileUtil(func(fu *fileutil.FileUtil) error {
			return fu.CopyTree(cmd.Context(), locs[0], locs[1], copyIgnore...)
		})
	},
}
