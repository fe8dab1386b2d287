package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gobeaver/fileutil"
)

var (
	driver   string
	root     string
	output   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "fileutil",
	Short: "Inspect and maintain application file areas",
	Long: `fileutil runs the directory and file helpers against the configured
storage areas (DATA, CACHE, DOCUMENTS, LIBRARY, EXTERNAL).

Locations are written AREA:path. A bare path is taken to be in DATA.
Configuration is read from FILEUTIL_* environment variables; the flags
below override them.

Examples:
  fileutil exists DATA:packages/app
  fileutil copy LIBRARY:bundle DATA:packages/app
  fileutil reset DATA:packages/tmp
  fileutil rm-entries DATA:packages/app old.js old.css`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "Store driver (local, memory, billy, sftp)")
	rootCmd.PersistentFlags().StringVar(&root, "root", "", "Root directory for local and billy drivers")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "Output format (text, yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openFileUtil builds a FileUtil from the environment and the global flags.
func openFileUtil() (*fileutil.FileUtil, error) {
	cfg, err := fileutil.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if driver != "" {
		cfg.Driver = driver
	}
	if root != "" {
		cfg.Root = root
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return fileutil.New(cfg)
}

// withFileUtil opens a FileUtil for the duration of fn.
func withFileUtil(fn func(fu *fileutil.FileUtil) error) error {
	fu, err := openFileUtil()
	if err != nil {
		return err
	}
	defer fu.Close()
	return fn(fu)
}

func parseLocations(args []string) ([]fileutil.Location, error) {
	locs := make([]fileutil.Location, 0, len(args))
	for _, arg := range args {
		loc, err := fileutil.ParseLocation(arg)
		if err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// render writes v as YAML, or text when the output format is text.
func render(w io.Writer, v any, text string) error {
	switch output {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		_, err := fmt.Fprintln(w, text)
		return err
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}
}
