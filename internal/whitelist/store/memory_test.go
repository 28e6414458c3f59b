package store

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "cubemint/pkg/domain"
	"cubemint/pkg/platform/sentinel"
)

var (
	alice = id.MustIdentity("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bob   = id.MustIdentity("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	root := common.HexToHash("0xaa")

	_, err := s.FindByRoot(ctx, root)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	members := []id.Identity{alice, bob}
	require.NoError(t, s.Save(ctx, Record{Root: root, Hasher: "keccak256", Members: members, PublishedAt: time.Now()}))
	members[0] = bob

	rec, err := s.FindByRoot(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, []id.Identity{alice, bob}, rec.Members, "save copies members")

	require.NoError(t, s.Save(ctx, Record{Root: root, Hasher: "blake3", Members: []id.Identity{bob}}))
	rec, _ = s.FindByRoot(ctx, root)
	assert.Equal(t, "keccak256", rec.Hasher, "first record for a root wins")
}
