// Command calpick serves and drives the date picker from the terminal, over
// HTTP and through headless Chromium snapshots.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"calpick/internal/config"
	appLog "calpick/internal/log"
)

const version = "0.1.0"

var (
	configPath string
	logLevel   string

	// conf is loaded once by the root command before any subcommand runs.
	conf *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "calpick",
	Short: "Culture-aware calendar date picker",
	Long: `calpick renders a month grid and a single-date picker with
date, month and year views.

It runs as an interactive terminal picker, as an HTTP service holding
picker sessions, or as a one-shot PNG snapshot of the picker page.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./calpick.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configPath, err)
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(c.LogLevel))
	conf = c

	appLog.Debug("effective config",
		"command", cmd.Name(),
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"locale", conf.Locale,
		"open_to", conf.OpenTo,
		"display_months", conf.DisplayMonths,
		"ics_count", len(conf.Marks.ICS),
	)
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func main() {
	err := rootCmd.Execute()
	appLog.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
