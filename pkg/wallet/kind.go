// Package wallet guesses which chain family a wallet address belongs to.
// The result is a display hint only; addresses are never validated or
// rejected.
package wallet

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"

	"dex-bridge/pkg/types"
)

// Kind is the chain family of an address
type Kind string

const (
	KindUnknown Kind = ""
	KindEVM     Kind = "evm"
	KindSolana  Kind = "solana"
)

// Classify returns the chain family addr looks like, or KindUnknown
func Classify(addr types.WalletAddress) Kind {
	s := strings.TrimSpace(string(addr))
	if s == "" {
		return KindUnknown
	}

	if common.IsHexAddress(s) {
		return KindEVM
	}
	if _, err := solana.PublicKeyFromBase58(s); err == nil {
		return KindSolana
	}
	return KindUnknown
}

// Label returns a short human-readable name for k
func (k Kind) Label() string {
	switch k {
	case KindEVM:
		return "EVM"
	case KindSolana:
		return "Solana"
	default:
		return ""
	}
}
