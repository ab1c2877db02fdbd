package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dex-bridge/config"
	"dex-bridge/pkg/client"
	"dex-bridge/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "dex-bridge",
	Short: "A client for the DEX/bridge service",
	Long: `dex-bridge talks to a DEX/bridge backend: it shows the best-priced DEX,
submits cross-chain bridge requests and keeps the transaction status fresh
while you watch.

Examples:
  dex-bridge ui
  dex-bridge best-dex
  dex-bridge bridge USDC from Solana to Ethereum
  dex-bridge status --watch
  dex-bridge tokens --chain sol`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("base-url", "", "Base URL of the DEX/bridge service (default http://localhost:8080)")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	_ = viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("metrics_addr", rootCmd.PersistentFlags().Lookup("metrics-addr"))
}

// loadConfig loads the configuration or exits
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	return cfg
}

// newConsoleLogger returns the stderr logger used by headless commands.
// Only errors are logged unless --verbose is set, since failures are
// already printed for the user.
func newConsoleLogger(cmd *cobra.Command) *logging.Logger {
	level := "error"
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	logger, _ := logging.New(level, "")
	return logger
}

func newBridgeClient(cfg *config.Config) *client.BridgeClient {
	return client.NewBridgeClient(cfg.BaseURL, cfg.RequestTimeout)
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}
