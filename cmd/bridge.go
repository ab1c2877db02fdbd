package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dex-bridge/pkg/bridge"
	"dex-bridge/pkg/parser"
	"dex-bridge/pkg/report"
	"dex-bridge/pkg/types"
)

var (
	bridgeToken string
	fromChain   string
	toChain     string
	noConfirm   bool
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge [<token> [from <source-chain>] [to <destination-chain>]]",
	Short: "Submit a cross-chain bridge request",
	Long: `Submit a bridge request to the backend and print the transaction reference.

The source chain defaults to Solana and the destination chain to Ethereum.
Flags override whatever the command text says.

Examples:
  dex-bridge bridge USDC from Solana to Ethereum
  dex-bridge bridge SOL to Ethereum --yes
  dex-bridge bridge --token USDC --from-chain Solana --to-chain Ethereum`,
	Run: runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)

	bridgeCmd.Flags().StringVar(&bridgeToken, "token", "", "Token to bridge")
	bridgeCmd.Flags().StringVar(&fromChain, "from-chain", "", "Source chain (default Solana)")
	bridgeCmd.Flags().StringVar(&toChain, "to-chain", "", "Destination chain (default Ethereum)")
	bridgeCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runBridge(cmd *cobra.Command, args []string) {
	req, err := buildBridgeRequest(args)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := loadConfig()
	logger := newConsoleLogger(cmd)

	submitter := bridge.NewSubmitter(bridge.Config{
		Backend:  newBridgeClient(cfg),
		Reporter: report.NewLogReporter(logger),
		Logger:   logger,
	})

	if !jsonOutput {
		displayBridgeRequest(req)
		if !noConfirm && !confirmBridge() {
			fmt.Println("\nBridge cancelled.")
			os.Exit(0)
		}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Submitting bridge request..."
		s.Start()
	}

	ref, err := submitter.Submit(context.Background(), req)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"source":      req.SourceChain,
			"destination": req.DestinationChain,
			"token":       req.Token,
			"reference":   ref,
			"status":      "submitted",
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	color.Green("\n✓ Bridge request submitted!")
	fmt.Printf("  Transaction Hash: %s\n", color.CyanString(string(ref)))

	fmt.Println("\nYou can monitor the transaction status using:")
	color.Cyan("  dex-bridge status --watch\n")
}

// buildBridgeRequest combines the command text with the flags. Either may
// be used alone; flags win when both name the same field.
func buildBridgeRequest(args []string) (types.BridgeRequest, error) {
	req := bridge.DefaultForm().Request()

	if len(args) > 0 {
		parsed, err := parser.ParseBridgeCommand(strings.Join(args, " "))
		if err != nil {
			return types.BridgeRequest{}, err
		}
		req = *parsed
	}

	if bridgeToken != "" {
		req.Token = bridgeToken
	}
	if fromChain != "" {
		req.SourceChain = fromChain
	}
	if toChain != "" {
		req.DestinationChain = toChain
	}

	if req.Token == "" {
		return types.BridgeRequest{}, fmt.Errorf("token is required. Pass it as an argument or with --token")
	}
	return req, nil
}

func displayBridgeRequest(req types.BridgeRequest) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                    BRIDGE REQUEST")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Token:       %s\n", color.YellowString(req.Token))
	fmt.Printf("  From:        %s\n", req.SourceChain)
	fmt.Printf("  To:          %s\n", req.DestinationChain)

	fmt.Println("\n" + strings.Repeat("=", 60))
}

func confirmBridge() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with bridge? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
