// Package whitelist commits to a set of eligible identities with a Merkle
// tree and proves or verifies membership against its root.
//
// Leaves are H(identity bytes), sorted and de-duplicated before the tree is
// built. Interior nodes are H(min(a,b) || max(a,b)), so a proof is just a
// list of siblings with no left/right flags. When a level has an odd number
// of nodes the last one is promoted to the next level unchanged.
package whitelist

import (
	"bytes"
	"errors"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	id "cubemint/pkg/domain"
)

var (
	// ErrEmptySet is returned by Build for an empty identity set. The zero
	// hash stands for "no commitment" and is never a valid root.
	ErrEmptySet = errors.New("whitelist: empty identity set")
	// ErrNotFound is returned by Prove for an identity outside the set.
	ErrNotFound = errors.New("whitelist: identity not in committed set")
)

// maxProofLen bounds verification work; 64 levels covers any set that fits in memory.
const maxProofLen = 64

// Proof is the sibling path from a leaf up to the root.
type Proof []common.Hash

// Commitment is an immutable Merkle tree over a set of identities.
type Commitment struct {
	hasher Hasher
	// levels[0] holds the sorted leaves; the last level holds the root.
	levels [][]common.Hash
	index  map[common.Hash]int
	// members keeps identities in leaf order so the set can be persisted.
	members []id.Identity
}

// Build hashes every identity into a leaf and folds the sorted leaves into a
// root. Input order and duplicates do not affect the result.
func Build(h Hasher, identities []id.Identity) (*Commitment, error) {
	if h == nil {
		h = Keccak256{}
	}

	type leaf struct {
		hash     common.Hash
		identity id.Identity
	}
	leaves := make([]leaf, 0, len(identities))
	for _, identity := range identities {
		leaves = append(leaves, leaf{hash: LeafHash(h, identity), identity: identity})
	}
	slices.SortFunc(leaves, func(a, b leaf) int { return bytes.Compare(a.hash[:], b.hash[:]) })
	leaves = slices.CompactFunc(leaves, func(a, b leaf) bool { return a.hash == b.hash })
	if len(leaves) == 0 {
		return nil, ErrEmptySet
	}

	c := &Commitment{
		hasher:  h,
		index:   make(map[common.Hash]int, len(leaves)),
		members: make([]id.Identity, len(leaves)),
	}
	level := make([]common.Hash, len(leaves))
	for i, l := range leaves {
		level[i] = l.hash
		c.index[l.hash] = i
		c.members[i] = l.identity
	}
	c.levels = append(c.levels, level)

	for len(level) > 1 {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, HashPair(h, level[i], level[i+1]))
		}
		c.levels = append(c.levels, next)
		level = next
	}
	return c, nil
}

// Root returns the commitment root.
func (c *Commitment) Root() common.Hash {
	return c.levels[len(c.levels)-1][0]
}

// Len returns the number of distinct leaves.
func (c *Commitment) Len() int {
	return len(c.levels[0])
}

// Hasher returns the hash function the tree was built with.
func (c *Commitment) Hasher() Hasher {
	return c.hasher
}

// Members returns the committed identities in leaf order.
func (c *Commitment) Members() []id.Identity {
	return slices.Clone(c.members)
}

// Contains reports whether identity is a leaf of the tree.
func (c *Commitment) Contains(identity id.Identity) bool {
	_, ok := c.index[LeafHash(c.hasher, identity)]
	return ok
}

// Prove returns the sibling path for identity. A single-leaf tree yields an
// empty proof since the leaf is the root.
func (c *Commitment) Prove(identity id.Identity) (Proof, error) {
	pos, ok := c.index[LeafHash(c.hasher, identity)]
	if !ok {
		return nil, ErrNotFound
	}

	proof := make(Proof, 0, len(c.levels)-1)
	for _, level := range c.levels[:len(c.levels)-1] {
		// A promoted last node has no sibling at this level.
		if sibling := pos ^ 1; sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		pos /= 2
	}
	return proof, nil
}

// Verify recomputes the root from identity and proof. It never accepts the
// zero root, which means the whitelist is disabled.
func Verify(h Hasher, root common.Hash, identity id.Identity, proof Proof) bool {
	if root == (common.Hash{}) || len(proof) > maxProofLen {
		return false
	}
	if h == nil {
		h = Keccak256{}
	}
	node := LeafHash(h, identity)
	for _, sibling := range proof {
		node = HashPair(h, node, sibling)
	}
	return node == root
}

// LeafHash is H(identity's 20 raw bytes).
func LeafHash(h Hasher, identity id.Identity) common.Hash {
	return h.Hash(identity.Bytes())
}

// HashPair hashes two nodes in byte order.
func HashPair(h Hasher, a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return h.Hash(a[:], b[:])
}
