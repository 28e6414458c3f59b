package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"cubemint/internal/registry"
	salemodels "cubemint/internal/sale/models"
	"cubemint/internal/sale/ports"
	saleservice "cubemint/internal/sale/service"
	salestore "cubemint/internal/sale/store"
	"cubemint/internal/whitelist"
	"cubemint/internal/whitelist/service/mocks"
	"cubemint/internal/whitelist/store"
	id "cubemint/pkg/domain"
	dErrors "cubemint/pkg/domain-errors"
	"cubemint/pkg/requestcontext"
)

var (
	admin = id.MustIdentity("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	alice = id.MustIdentity("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bob   = id.MustIdentity("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	carol = id.MustIdentity("0x90F79bf6EB2c4f870365E785982E1f101E93b906")
	dave  = id.MustIdentity("0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65")
)

// =============================================================================
// Whitelist Service Test Suite
// =============================================================================
// Publishing goes through a real in-memory sale so the root it sets is the
// root presale mints are checked against.

type WhitelistServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemoryStore
	sale    *saleservice.Service
	service *Service
}

func TestWhitelistServiceSuite(t *testing.T) {
	suite.Run(t, new(WhitelistServiceSuite))
}

func (s *WhitelistServiceSuite) SetupTest() {
	now := time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), now)

	reg := registry.NewInMemoryRegistry(salemodels.DefaultMaxSupply)
	tx := saleservice.NewMemoryTx(ports.Stores{
		Config:   salestore.NewInMemoryConfigStore(salemodels.DefaultConfig(admin, now)),
		Ledger:   salestore.NewInMemoryClaimLedger(),
		Registry: reg,
	})
	var err error
	s.sale, err = saleservice.New(tx, reg, saleservice.WithLogger(discard()))
	s.Require().NoError(err)

	s.store = store.NewInMemoryStore()
	s.service = s.newService(s.store)
}

func (s *WhitelistServiceSuite) newService(st Store) *Service {
	svc, err := New(st, s.sale, WithLogger(discard()))
	s.Require().NoError(err)
	return svc
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *WhitelistServiceSuite) saleRoot() common.Hash {
	root, err := s.sale.WhitelistRoot(s.ctx)
	s.Require().NoError(err)
	return root
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *WhitelistServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, s.sale)
		s.ErrorContains(err, "whitelist store is required")
	})

	s.Run("nil sale returns error", func() {
		_, err := New(s.store, nil)
		s.ErrorContains(err, "sale service is required")
	})
}

// =============================================================================
// Publish
// =============================================================================

func (s *WhitelistServiceSuite) TestPublish() {
	s.Run("administrator publish sets the sale root", func() {
		pub, err := s.service.Publish(s.ctx, admin, []id.Identity{alice, bob, carol, alice})
		s.Require().NoError(err)
		s.Equal(3, pub.LeafCount, "duplicates collapse")
		s.Equal(whitelist.HasherKeccak256, pub.Hasher)
		s.Equal(pub.Root, s.saleRoot())

		rec, err := s.store.FindByRoot(s.ctx, pub.Root)
		s.Require().NoError(err)
		s.Len(rec.Members, 3)
	})

	s.Run("non-administrator is rejected without storing", func() {
		before := s.saleRoot()
		_, err := s.service.Publish(s.ctx, alice, []id.Identity{dave})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Equal(before, s.saleRoot())

		c, _ := whitelist.Build(whitelist.Keccak256{}, []id.Identity{dave})
		_, err = s.store.FindByRoot(s.ctx, c.Root())
		s.Error(err)
	})

	s.Run("empty set is a validation error", func() {
		_, err := s.service.Publish(s.ctx, admin, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("zero address is a validation error", func() {
		_, err := s.service.Publish(s.ctx, admin, []id.Identity{alice, {}})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("republish replaces the root wholesale", func() {
		first, err := s.service.Publish(s.ctx, admin, []id.Identity{alice})
		s.Require().NoError(err)
		second, err := s.service.Publish(s.ctx, admin, []id.Identity{dave})
		s.Require().NoError(err)
		s.NotEqual(first.Root, second.Root)

		_, err = s.service.Proof(s.ctx, alice)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		_, err = s.service.Proof(s.ctx, dave)
		s.NoError(err)
	})
}

func (s *WhitelistServiceSuite) TestPublishStoreFailureLeavesRootUnchanged() {
	ctrl := gomock.NewController(s.T())
	st := mocks.NewMockStore(ctrl)
	st.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	svc := s.newService(st)

	before := s.saleRoot()
	_, err := svc.Publish(s.ctx, admin, []id.Identity{alice})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Equal(before, s.saleRoot())
}

// =============================================================================
// Proof
// =============================================================================

func (s *WhitelistServiceSuite) TestProof() {
	pub, err := s.service.Publish(s.ctx, admin, []id.Identity{alice, bob, carol})
	s.Require().NoError(err)

	s.Run("member proof verifies against the live root", func() {
		res, err := s.service.Proof(s.ctx, bob)
		s.Require().NoError(err)
		s.Equal(pub.Root, res.Root)
		s.True(whitelist.Verify(whitelist.Keccak256{}, res.Root, bob, res.Proof))
	})

	s.Run("proof is accepted by presale mint", func() {
		res, err := s.service.Proof(s.ctx, carol)
		s.Require().NoError(err)
		_, err = s.sale.Mint(s.ctx, carol, salemodels.MintRequest{Quantity: 2, Proof: res.Proof})
		s.NoError(err)
	})

	s.Run("non-member is not found", func() {
		_, err := s.service.Proof(s.ctx, dave)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("fresh service rebuilds from the store", func() {
		fresh := s.newService(s.store)
		res, err := fresh.Proof(s.ctx, alice)
		s.Require().NoError(err)
		s.True(whitelist.Verify(whitelist.Keccak256{}, pub.Root, alice, res.Proof))
	})

	s.Run("root without a stored set is not found", func() {
		s.Require().NoError(s.sale.SetWhitelistRoot(s.ctx, admin, common.HexToHash("0xabcdef")))
		_, err := s.service.Proof(s.ctx, alice)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("zero root means disabled", func() {
		s.Require().NoError(s.sale.SetWhitelistRoot(s.ctx, admin, common.Hash{}))
		_, err := s.service.Proof(s.ctx, alice)
		s.True(dErrors.HasCode(err, dErrors.CodeWhitelistDisabled))
	})
}

func (s *WhitelistServiceSuite) TestProofRejectsCorruptStoredSet() {
	ctrl := gomock.NewController(s.T())
	st := mocks.NewMockStore(ctrl)
	root := common.HexToHash("0xfeed")
	st.EXPECT().FindByRoot(gomock.Any(), root).Return(&store.Record{
		Root:    root,
		Hasher:  whitelist.HasherKeccak256,
		Members: []id.Identity{alice},
	}, nil)
	s.Require().NoError(s.sale.SetWhitelistRoot(s.ctx, admin, root))

	_, err := s.newService(st).Proof(s.ctx, alice)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *WhitelistServiceSuite) TestHasherMismatchWithLiveRoot() {
	blake, err := New(s.store, s.sale, WithLogger(discard()), WithHasher(whitelist.Blake3{}))
	s.Require().NoError(err)
	pub, err := blake.Publish(s.ctx, admin, []id.Identity{alice, bob})
	s.Require().NoError(err)
	s.Equal(whitelist.HasherBlake3, pub.Hasher)

	s.Run("keccak reader refuses proofs the sale would reject", func() {
		_, err := s.service.Proof(s.ctx, bob)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict), "got %v", err)
		s.True(dErrors.HasCode(s.service.CheckLiveHasher(s.ctx), dErrors.CodeConflict))
	})

	s.Run("matching reader rebuilds the stored tree", func() {
		fresh, err := New(s.store, s.sale, WithLogger(discard()), WithHasher(whitelist.Blake3{}))
		s.Require().NoError(err)
		s.NoError(fresh.CheckLiveHasher(s.ctx))

		res, err := fresh.Proof(s.ctx, bob)
		s.Require().NoError(err)
		s.Equal(whitelist.HasherBlake3, res.Hasher)
		s.True(whitelist.Verify(whitelist.Blake3{}, pub.Root, bob, res.Proof))
	})

	s.Run("republishing with the configured hasher clears it", func() {
		_, err := s.service.Publish(s.ctx, admin, []id.Identity{alice, bob})
		s.Require().NoError(err)
		s.NoError(s.service.CheckLiveHasher(s.ctx))
	})
}

func (s *WhitelistServiceSuite) TestCheckLiveHasherWithoutStoredSet() {
	s.Run("disabled whitelist", func() {
		s.NoError(s.service.CheckLiveHasher(s.ctx))
	})

	s.Run("root set directly by the administrator", func() {
		s.Require().NoError(s.sale.SetWhitelistRoot(s.ctx, admin, common.HexToHash("0x01")))
		s.NoError(s.service.CheckLiveHasher(s.ctx))
	})
}

func (s *WhitelistServiceSuite) TestProofSaleFailure() {
	ctrl := gomock.NewController(s.T())
	sale := mocks.NewMockSale(ctrl)
	sale.EXPECT().Config(gomock.Any()).Return(nil, dErrors.New(dErrors.CodeTimeout, "aborted"))
	svc, err := New(s.store, sale)
	s.Require().NoError(err)

	_, err = svc.Proof(s.ctx, alice)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}
