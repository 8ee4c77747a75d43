package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/corey/kwscan/internal/adapters/socket"
	"github.com/corey/kwscan/internal/app"
	"github.com/spf13/cobra"
)

var (
	configInit  bool
	configForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows resolved paths, settings and daemon status. No daemon required.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write a default .kwscan/config.yaml")
	configCmd.Flags().BoolVar(&configForce, "force", false, "With --init, overwrite an existing config")
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	if configInit {
		return initConfig(cmd, app.NewPaths(root))
	}

	paths, settings, err := loadSettings(root)
	if err != nil {
		return err
	}
	sockPath := socket.SocketPath(root)

	client := socket.NewClient(sockPath)
	daemonStatus := fmt.Sprintf("%s✗ not running%s", colorYellow, colorReset)
	if client.Ping() {
		daemonStatus = fmt.Sprintf("%s✓ running%s", colorGreen, colorReset)
	}
	configStatus := "(defaults, file not found)"
	if _, err := os.Stat(paths.Config); err == nil {
		configStatus = ""
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s⚡ kwscan config%s\n", colorBold, colorReset)
	fmt.Fprintf(w, "  Project:      %s\n", filepath.Base(root))
	fmt.Fprintf(w, "  Root:         %s\n", root)
	fmt.Fprintf(w, "  Config:       %s %s\n", paths.Config, configStatus)
	fmt.Fprintf(w, "  DB:           %s\n", paths.DB)
	fmt.Fprintf(w, "  Socket:       %s\n", sockPath)
	fmt.Fprintf(w, "  Log:          %s\n", paths.DaemonLog)
	fmt.Fprintf(w, "  Daemon:       %s\n", daemonStatus)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  dictionary:    %s\n", settings.Dictionary)
	fmt.Fprintf(w, "  keywords_file: %s\n", orDash(settings.KeywordsFile))
	fmt.Fprintf(w, "  ignore_case:   %t\n", settings.IgnoreCase)
	fmt.Fprintf(w, "  whole_word:    %t\n", settings.WholeWord)
	fmt.Fprintf(w, "  max_matches:   %d\n", settings.MaxMatches)
	fmt.Fprintf(w, "  extensions:    %s\n", orDash(strings.Join(settings.Extensions, ", ")))
	fmt.Fprintf(w, "  log_level:     %s\n", settings.LogLevel)
	return nil
}

func initConfig(cmd *cobra.Command, paths *app.Paths) error {
	if _, err := os.Stat(paths.Config); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", paths.Config)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create %s: %w", paths.Root, err)
	}
	if err := app.DefaultSettings().Save(paths.Config); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ wrote %s\n", paths.Config)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
