package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dex-bridge/pkg/report"
	"dex-bridge/pkg/route"
)

var bestDEXCmd = &cobra.Command{
	Use:     "best-dex",
	Aliases: []string{"dex"},
	Short:   "Show the best-priced DEX",
	Long: `Ask the backend which DEX currently offers the best price.

Examples:
  dex-bridge best-dex
  dex-bridge best-dex --json`,
	Args: cobra.NoArgs,
	Run:  runBestDEX,
}

func init() {
	rootCmd.AddCommand(bestDEXCmd)
}

func runBestDEX(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := loadConfig()
	logger := newConsoleLogger(cmd)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Finding the best DEX..."
		s.Start()
	}

	q := route.Start(context.Background(), route.Config{
		Source:   newBridgeClient(cfg),
		Reporter: report.NewLogReporter(logger),
		Logger:   logger,
	})
	<-q.Done()

	if !jsonOutput {
		s.Stop()
	}

	if err := q.Err(); err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(map[string]string{"best_dex": string(q.Value())}, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Printf("\nBest DEX: %s\n\n", color.GreenString(string(q.Value())))
}
