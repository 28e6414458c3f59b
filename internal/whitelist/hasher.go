package whitelist

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// Hasher is the 32-byte hash function used for leaves and interior nodes.
// Roots built with different hashers are not comparable.
type Hasher interface {
	Name() string
	Hash(parts ...[]byte) common.Hash
}

const (
	HasherKeccak256 = "keccak256"
	HasherBlake3    = "blake3"
)

// Keccak256 is the legacy (pre-NIST) Keccak used by EVM tooling. Roots match
// merkletreejs built with sortLeaves and sortPairs; without sortLeaves its
// root depends on input order and will differ.
type Keccak256 struct{}

func (Keccak256) Name() string { return HasherKeccak256 }

func (Keccak256) Hash(parts ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var out common.Hash
	h.Sum(out[:0])
	return out
}

type Blake3 struct{}

func (Blake3) Name() string { return HasherBlake3 }

func (Blake3) Hash(parts ...[]byte) common.Hash {
	h := blake3.New()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	var out common.Hash
	h.Sum(out[:0])
	return out
}

// ParseHasher resolves a configured hasher name. Empty selects Keccak256.
func ParseHasher(name string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", HasherKeccak256, "keccak":
		return Keccak256{}, nil
	case HasherBlake3:
		return Blake3{}, nil
	default:
		return nil, fmt.Errorf("unknown whitelist hasher %q", name)
	}
}
