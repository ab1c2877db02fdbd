package client

import (
	"context"
	"fmt"
	"sort"
	"strings"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"
)

// TokenCatalog lists the tokens that can be bridged, using the NEAR Intents
// 1Click API as the source of truth.
type TokenCatalog struct {
	client   *oneclick.APIClient
	jwtToken string
}

// NewTokenCatalog creates a new 1Click API client
func NewTokenCatalog(jwtToken string) *TokenCatalog {
	config := oneclick.NewConfiguration()

	return &TokenCatalog{
		client:   oneclick.NewAPIClient(config),
		jwtToken: jwtToken,
	}
}

// GetSupportedTokens retrieves all supported tokens
func (c *TokenCatalog) GetSupportedTokens(ctx context.Context) ([]oneclick.TokenResponse, error) {
	authCtx := context.WithValue(ctx, oneclick.ContextAccessToken, c.jwtToken)

	resp, httpResp, err := c.client.OneClickAPI.GetTokens(authCtx).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != 200 {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	return resp, nil
}

// FilterTokens keeps tokens on the given chain (case-insensitive) whose
// symbol contains symbol. Empty filters match everything.
func FilterTokens(tokens []oneclick.TokenResponse, chain, symbol string) []oneclick.TokenResponse {
	var filtered []oneclick.TokenResponse
	for _, token := range tokens {
		if chain != "" && !strings.EqualFold(token.GetBlockchain(), chain) {
			continue
		}
		if symbol != "" && !strings.Contains(strings.ToUpper(token.GetSymbol()), strings.ToUpper(symbol)) {
			continue
		}
		filtered = append(filtered, token)
	}
	return filtered
}

// GroupByChain groups tokens by blockchain and returns the chains sorted alphabetically
func GroupByChain(tokens []oneclick.TokenResponse) (map[string][]oneclick.TokenResponse, []string) {
	byChain := make(map[string][]oneclick.TokenResponse)
	for _, token := range tokens {
		chain := token.GetBlockchain()
		byChain[chain] = append(byChain[chain], token)
	}

	chains := make([]string, 0, len(byChain))
	for chain := range byChain {
		chains = append(chains, chain)
	}
	sort.Strings(chains)

	return byChain, chains
}
