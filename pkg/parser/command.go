package parser

import (
	"fmt"
	"regexp"

	"dex-bridge/pkg/types"
)

var bridgePattern = regexp.MustCompile(`(?i)^\s*(?:bridge\s+)?(\S+)(?:\s+from\s+(\S+))?(?:\s+to\s+(\S+))?\s*$`)

// ParseBridgeCommand parses a natural language bridge command
// Examples:
//   - "bridge USDC from Solana to Ethereum"
//   - "USDC to Ethereum"
//   - "bridge SOL"
//
// Missing chains fall back to the form defaults. Values keep the case they
// were typed in; the backend decides what they mean.
func ParseBridgeCommand(command string) (*types.BridgeRequest, error) {
	matches := bridgePattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid bridge command format. Expected: 'bridge <token> [from <chain>] [to <chain>]' (e.g., 'bridge USDC from Solana to Ethereum')")
	}

	req := &types.BridgeRequest{
		Token:            matches[1],
		SourceChain:      types.DefaultSourceChain,
		DestinationChain: types.DefaultDestinationChain,
	}
	if matches[2] != "" {
		req.SourceChain = matches[2]
	}
	if matches[3] != "" {
		req.DestinationChain = matches[3]
	}

	return req, nil
}
