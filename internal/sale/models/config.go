package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	id "cubemint/pkg/domain"
)

const (
	// DefaultFreeSupplyCap bounds the tokens issued without payment in presale.
	DefaultFreeSupplyCap uint64 = 1000
	// DefaultMaxSupply is the registry ceiling for the whole collection.
	DefaultMaxSupply uint64 = 10000
	// DefaultMetadataBase prefixes every token URI.
	DefaultMetadataBase = "ipfs://"
	// DefaultPresaleDuration places publicPhaseStart relative to deployment.
	DefaultPresaleDuration = 7 * 24 * time.Hour
)

// DefaultUnitPrice is 0.006 ether in wei.
func DefaultUnitPrice() *big.Int {
	return big.NewInt(6_000_000_000_000_000)
}

// Config is the administrator-owned sale configuration. The free supply cap
// and administrator are fixed at deployment; the other fields are set through
// the administrator setters.
type Config struct {
	Administrator    id.Identity
	PublicPhaseStart time.Time
	UnitPrice        *big.Int
	// WhitelistRoot is the zero hash when the whitelist is disabled.
	WhitelistRoot common.Hash
	MetadataBase  string
	FreeSupplyCap uint64
}

// Clone returns a copy that shares no mutable state with c.
func (c Config) Clone() Config {
	out := c
	if c.UnitPrice != nil {
		out.UnitPrice = new(big.Int).Set(c.UnitPrice)
	}
	return out
}

// WhitelistEnabled reports whether presale mints must carry a proof.
func (c Config) WhitelistEnabled() bool {
	return c.WhitelistRoot != (common.Hash{})
}

// IsAdministrator reports whether caller may change the configuration.
func (c Config) IsAdministrator(caller id.Identity) bool {
	return !caller.IsZero() && caller == c.Administrator
}

// Price is quantity times the unit price.
func (c Config) Price(quantity uint64) *big.Int {
	unit := c.UnitPrice
	if unit == nil {
		unit = new(big.Int)
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(quantity), unit)
}

// DefaultConfig returns a deployment configuration for admin starting now.
func DefaultConfig(admin id.Identity, now time.Time) Config {
	return Config{
		Administrator:    admin,
		PublicPhaseStart: now.Add(DefaultPresaleDuration),
		UnitPrice:        DefaultUnitPrice(),
		MetadataBase:     DefaultMetadataBase,
		FreeSupplyCap:    DefaultFreeSupplyCap,
	}
}

// Snapshot is the read-only view of the sale at one instant.
type Snapshot struct {
	Config          Config
	Phase           Phase
	FreeMintedTotal uint64
	TotalSupply     uint64
}
