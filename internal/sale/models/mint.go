package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	id "cubemint/pkg/domain"
)

// MintRequest is one mint attempt by the authenticated caller.
type MintRequest struct {
	Quantity uint64
	// Proof is only consulted in presale while the whitelist is enabled.
	Proof []common.Hash
	// Payment attached to the call; nil means zero.
	Payment *big.Int
}

// PaymentOrZero never returns nil.
func (r MintRequest) PaymentOrZero() *big.Int {
	if r.Payment == nil {
		return new(big.Int)
	}
	return r.Payment
}

// MintResult describes a committed mint.
type MintResult struct {
	TokenIDs []id.TokenID
	Phase    Phase
	// Price is what the phase required; zero in presale.
	Price   *big.Int
	Payment *big.Int
}
