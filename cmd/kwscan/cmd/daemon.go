package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/corey/kwscan/internal/adapters/socket"
	"github.com/corey/kwscan/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	daemonDict         string
	daemonKeywordsFile string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the kwscan daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon (runs in the foreground)",
	Long: "Compiles the configured dictionary once and serves scans over a Unix socket.\n" +
		"With a keywords file the daemon re-imports it whenever it changes.",
	Args: cobra.NoArgs,
	RunE: runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

var daemonReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Recompile the daemon's dictionary",
	Args:  cobra.NoArgs,
	RunE:  runDaemonReload,
}

func init() {
	daemonStartCmd.Flags().StringVarP(&daemonDict, "dict", "d", "", "Dictionary to serve (overrides config)")
	daemonStartCmd.Flags().StringVarP(&daemonKeywordsFile, "keywords-file", "f", "", "Import and watch this keywords file (overrides config)")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonReloadCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	sockPath := socket.SocketPath(root)

	// Check if already running
	client := socket.NewClient(sockPath)
	if client.Ping() {
		fmt.Println("⚡ daemon already running")
		return nil
	}

	paths, settings, err := loadSettings(root)
	if err != nil {
		return err
	}
	if daemonDict != "" {
		settings.Dictionary = daemonDict
	}
	if daemonKeywordsFile != "" {
		settings.KeywordsFile = daemonKeywordsFile
	}

	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create %s: %w", paths.Root, err)
	}
	log, err := app.NewLogger(paths.DaemonLog, settings.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}

	a, err := app.New(app.Config{ProjectRoot: root, Settings: settings, Logger: log})
	if err != nil {
		if storeBusy(err) {
			return errors.New(storeBusyHint(root))
		}
		return fmt.Errorf("init: %w", err)
	}

	if err := a.Start(); err != nil {
		a.Stop()
		return err
	}
	log.Info("daemon started", zap.String("socket", sockPath), zap.Int("pid", os.Getpid()))
	fmt.Printf("⚡ kwscan daemon started at %s (log: %s)\n", sockPath, paths.DaemonLog)

	// Wait for a signal or a remote shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	select {
	case sig := <-sigCh:
		log.Info("signal received", zap.Stringer("signal", sig))
	case <-a.Server.ShutdownCh():
	}

	fmt.Println("\n⚡ shutting down...")
	return a.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	sockPath := socket.SocketPath(root)
	client := socket.NewClient(sockPath)

	if !client.Ping() {
		fmt.Println("⚡ daemon is not running")
		return nil
	}

	if err := client.Shutdown(); err != nil {
		return err
	}

	fmt.Println("⚡ daemon stopped")
	return nil
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	client := socket.NewClient(socket.SocketPath(root))

	if !client.Ping() {
		fmt.Println("⚡ kwscan daemon is not running")
		return nil
	}

	health, err := client.Health()
	if err != nil {
		return err
	}
	fmt.Print(formatHealth(health))
	if pid, err := app.NewPaths(root).ReadPID(); err == nil {
		fmt.Printf("  PID:        %d\n", pid)
	}
	return nil
}

func runDaemonReload(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	client := socket.NewClient(socket.SocketPath(root))

	if !client.Ping() {
		return fmt.Errorf("daemon is not running")
	}
	result, err := client.Reload()
	if err != nil {
		return err
	}
	fmt.Printf("⚡ %s reloaded: %d keywords\n", result.Dictionary, result.KeywordCount)
	return nil
}
