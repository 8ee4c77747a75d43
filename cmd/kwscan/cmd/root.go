package cmd

import (
	"fmt"
	"os"

	"github.com/corey/kwscan/internal/app"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kwscan",
	Short: "kwscan — multi-keyword scanner",
	Long:  "Finds every occurrence of every keyword of a dictionary in a single pass over the text.",
}

// projectRoot returns the project root (cwd by default).
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// loadSettings reads .kwscan/config.yaml under root, falling back to defaults.
func loadSettings(root string) (*app.Paths, app.Settings, error) {
	paths := app.NewPaths(root)
	settings, err := app.LoadSettings(paths.Config)
	return paths, settings, err
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(dictCmd)
	rootCmd.AddCommand(trieCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(configCmd)
}
