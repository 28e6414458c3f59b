// Package store persists published whitelist identity sets keyed by root so
// proofs can be served after a restart.
package store

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	id "cubemint/pkg/domain"
)

// Record is one published commitment. Members are in leaf order; rebuilding
// from them with the named hasher reproduces Root.
type Record struct {
	Root        common.Hash
	Hasher      string
	Members     []id.Identity
	PublishedAt time.Time
}
