package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gobeaver/fileutil"
)

func init() {
	rootCmd.AddCommand(rmEntriesCommand)
}

type deleteReport struct {
	Name    string `yaml:"name"`
	Outcome string `yaml:"outcome"`
	Error   string `yaml:"error,omitempty"`
}

var rmEntriesCommand = &cobra.Command{
	Use:   "rm-entries <directory> <name>...",
	Short: "Deletes the named files from a directory.",
	Long: `Deletes the named files from the directory. Names that are not existing
files are skipped. A file that cannot be deleted is reported and the rest
are still processed; the command itself does not fail.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := fileutil.ParseLocation(args[0])
		if err != nil {
			return err
		}
		return withFileUtil(func(fu *fileutil.FileUtil) error {
			d := fu.In(dir.Area)
			results := d.DeleteEntriesReport(cmd.Context(), dir.Path, args[1:])

			reports := make([]deleteReport, 0, len(results))
			var lines []string
			for _, r := range results {
				rep := deleteReport{Name: r.Name, Outcome: r.Outcome.String()}
				line := fmt.Sprintf("%s\t%s", r.Outcome, r.Name)
				if r.Err != nil {
					rep.Error = r.Err.Error()
					line += "\t" + rep.Error
				}
				reports = append(reports, rep)
				lines = append(lines, line)
			}
			return render(cmd.OutOrStdout(), reports, strings.Join(lines, "\n"))
		})
	},
}
