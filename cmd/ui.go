package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"dex-bridge/config"
	"dex-bridge/pkg/coordinator"
	"dex-bridge/pkg/logging"
	"dex-bridge/pkg/metrics"
	"dex-bridge/pkg/report"
	"dex-bridge/pkg/ui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive bridge view",
	Long: `Open the interactive bridge view.

The view shows the best DEX, lets you enter a token pair, wallet address and
bridge details, and refreshes the transaction status every poll interval
until you quit. Logs go to the configured log file.

Examples:
  dex-bridge ui
  dex-bridge ui --base-url http://localhost:8080
  dex-bridge ui --metrics-addr :9090`,
	Args: cobra.NoArgs,
	Run:  runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}

	logger, err := logging.New(level, cfg.LogFile)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	err = runProgram(cfg, logger)
	_ = logger.Close()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

func runProgram(cfg *config.Config, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry, logger)
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, registry, logger); err != nil {
				logger.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	failures := report.NewLatest()
	coord := coordinator.Mount(ctx, coordinator.Config{
		Backend:  newBridgeClient(cfg),
		Reporter: report.Multi(report.NewLogReporter(logger), failures),
		Interval: cfg.PollInterval,
		Logger:   logger,
		Metrics:  m,
	})
	defer coord.Close()

	updates, unsubscribe := ui.Watch(coord)
	defer unsubscribe()

	p := tea.NewProgram(
		ui.New(ctx, coord, updates, failures.C()),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run UI: %w", err)
	}
	return nil
}
