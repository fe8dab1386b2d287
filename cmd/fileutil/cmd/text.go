package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gobeaver/fileutil"
)

var encoding string

func init() {
	catCommand.Flags().StringVar(&encoding, "encoding", string(fileutil.UTF8), "Text encoding (utf8, utf16, ascii)")
	writeCommand.Flags().StringVar(&encoding, "encoding", string(fileutil.UTF8), "Text encoding (utf8, utf16, ascii)")
	rootCmd.AddCommand(catCommand)
	rootCmd.AddCommand(writeCommand)
}

var catCommand = &cobra.Command{
	Use:   "cat <location>",
	Short: "Prints a text file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locs, err := parseLocations(args)
		if err != nil {
			return err
		}
		return withFileUtil(func(fu *fileutil.FileUtil) error {
			text, err := fu.Host().ReadFile(cmd.Context(), locs[0], fileutil.Encoding(encoding))
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		})
	},
}

var writeCommand = &cobra.Command{
	Use:   "write <location> [content]",
	Short: "Writes text to a file, replacing it. Reads stdin without content.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		locs, err := parseLocations(args[:1])
		if err != nil {
			return err
		}

		var content string
		if len(args) == 2 {
			content = args[1]
		} else {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("error reading stdin: %w", err)
			}
			content = string(data)
		}

		return withFileUtil(func(fu *fileutil.FileUtil) error {
			return fu.Host().WriteFile(cmd.Context(), locs[0], content, fileutil.Encoding(encoding))
		})
	},
}
