package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dex-bridge/pkg/client"
	"dex-bridge/pkg/poller"
	"dex-bridge/pkg/report"
	"dex-bridge/pkg/types"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the current transaction status",
	Long: `Check the status of the current transaction as reported by the backend.

The backend tracks a single current transaction, so no reference is needed.

Examples:
  dex-bridge status
  dex-bridge status --watch
  dex-bridge status --watch --interval 10`,
	Args: cobra.NoArgs,
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 0, "Polling interval in seconds when watching (default from poll_interval)")
}

func runStatus(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := loadConfig()
	apiClient := newBridgeClient(cfg)

	if watchStatus {
		interval := cfg.PollInterval
		if watchInterval > 0 {
			interval = time.Duration(watchInterval) * time.Second
		}
		watchTransactionStatus(cmd, apiClient, interval, jsonOutput)
	} else {
		checkTransactionStatus(apiClient, jsonOutput)
	}
}

func checkTransactionStatus(apiClient *client.BridgeClient, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking transaction status..."
		s.Start()
	}

	status, err := apiClient.GetTransactionStatus(context.Background())
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(map[string]string{"status": string(status)}, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayStatus(status)
	}
}

func watchTransactionStatus(cmd *cobra.Command, apiClient *client.BridgeClient, interval time.Duration, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nWatching transaction status at %s\n", color.CyanString(apiClient.BaseURL()))
	fmt.Printf("Checking every %s. Press Ctrl+C to stop.\n\n", interval)

	// Check immediately first
	status, err := apiClient.GetTransactionStatus(ctx)
	if err != nil {
		color.Red("Error: %v", err)
	} else {
		printStatusLine(status)
	}

	// Then check periodically
	p := poller.New(poller.Config{
		Source:   apiClient,
		Apply:    printStatusLine,
		Reporter: report.Func(func(op string, err error) { color.Red("Error: %v", err) }),
		Interval: interval,
		Logger:   newConsoleLogger(cmd),
	})
	p.Start(ctx)

	<-ctx.Done()
	p.Stop()
	fmt.Println("\nStopped watching.")
}

func printStatusLine(status types.TransactionStatus) {
	fmt.Printf("  [%s] Status: %s\n", time.Now().Format("15:04:05"), getColoredStatus(status))
}

func displayStatus(status types.TransactionStatus) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                     TRANSACTION STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Status:          %s\n", getColoredStatus(status))
	fmt.Printf("  Checked At:      %s\n", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

// getColoredStatus colours well-known status values and prints anything
// else exactly as the backend sent it.
func getColoredStatus(status types.TransactionStatus) string {
	s := string(status)

	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCESS", "COMPLETED":
		return color.GreenString(s)
	case "PENDING", "PROCESSING":
		return color.YellowString(s)
	case "FAILED", "REFUNDED":
		return color.RedString(s)
	default:
		return s
	}
}
