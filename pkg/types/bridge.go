package types

// TokenPair identifies the two assets being compared, e.g. "SOL/ETH".
// It is passed through to the backend without interpretation.
type TokenPair string

// WalletAddress is the user's wallet. It is never validated or checksummed.
type WalletAddress string

// DEXName is the best-priced exchange reported by the backend
type DEXName string

// TransactionReference is the opaque identifier (usually a hash) returned
// after a bridge submission. It is only ever displayed.
type TransactionReference string

// TransactionStatus is the backend-defined status string of the current transaction
type TransactionStatus string

// Default chains pre-filled in the bridge form
const (
	DefaultSourceChain      = "Solana"
	DefaultDestinationChain = "Ethereum"
)

// BridgeRequest represents a user's bridge submission
type BridgeRequest struct {
	SourceChain      string `json:"source"`
	DestinationChain string `json:"destination"`
	Token            string `json:"token"`
}
