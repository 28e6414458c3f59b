// Package service publishes whitelist commitments and serves membership
// proofs for the root currently configured on the sale.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	salemodels "cubemint/internal/sale/models"
	"cubemint/internal/sale/ports"
	"cubemint/internal/whitelist"
	"cubemint/internal/whitelist/store"
	id "cubemint/pkg/domain"
	dErrors "cubemint/pkg/domain-errors"
	audit "cubemint/pkg/platform/audit"
	"cubemint/pkg/platform/sentinel"
	"cubemint/pkg/requestcontext"
)

// MaxIdentities caps one published set.
const MaxIdentities = 50_000

// cacheLimit bounds the number of rebuilt trees kept in memory. Only the
// current root is normally hot, older ones linger after a republish.
const cacheLimit = 8

// Store persists published identity sets.
type Store interface {
	Save(ctx context.Context, rec store.Record) error
	FindByRoot(ctx context.Context, root common.Hash) (*store.Record, error)
}

// Sale is the part of the sale service the whitelist depends on.
type Sale interface {
	Config(ctx context.Context) (*salemodels.Snapshot, error)
	SetWhitelistRoot(ctx context.Context, caller id.Identity, root common.Hash) error
}

// Published describes a commitment accepted by Publish.
type Published struct {
	Root      common.Hash
	LeafCount int
	Hasher    string
}

// ProofResult is a proof against the sale's current root.
type ProofResult struct {
	Identity id.Identity
	Root     common.Hash
	Proof    whitelist.Proof
	Hasher   string
}

type Service struct {
	store          Store
	sale           Sale
	hasher         whitelist.Hasher
	logger         *slog.Logger
	auditPublisher ports.AuditPublisher

	mu    sync.Mutex
	cache map[common.Hash]*whitelist.Commitment
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithHasher selects the hash for newly published trees. It must be the
// hasher the sale verifies proofs with. Stored trees are rebuilt with the
// hasher recorded alongside them and served only when it matches.
func WithHasher(h whitelist.Hasher) Option {
	return func(s *Service) {
		s.hasher = h
	}
}

func New(st Store, sale Sale, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("whitelist store is required")
	}
	if sale == nil {
		return nil, errors.New("sale service is required")
	}
	s := &Service{
		store:  st,
		sale:   sale,
		hasher: whitelist.Keccak256{},
		logger: slog.Default(),
		cache:  make(map[common.Hash]*whitelist.Commitment),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Publish commits identities, stores the set, and replaces the sale's root.
// Only the sale administrator may publish.
func (s *Service) Publish(ctx context.Context, caller id.Identity, identities []id.Identity) (*Published, error) {
	if len(identities) > MaxIdentities {
		return nil, dErrors.New(dErrors.CodeValidation, "whitelist exceeds "+strconv.Itoa(MaxIdentities)+" identities")
	}
	for _, identity := range identities {
		if identity.IsZero() {
			return nil, dErrors.New(dErrors.CodeValidation, "whitelist cannot contain the zero address")
		}
	}

	snap, err := s.sale.Config(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.Config.IsAdministrator(caller) {
		s.auditPublish(ctx, caller, common.Hash{}, 0, "denied", string(dErrors.CodeForbidden))
		return nil, salemodels.ErrUnauthorized
	}

	commitment, err := whitelist.Build(s.hasher, identities)
	if errors.Is(err, whitelist.ErrEmptySet) {
		return nil, dErrors.New(dErrors.CodeValidation, "whitelist must contain at least one identity")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build whitelist")
	}
	root := commitment.Root()

	// The set is stored before the root goes live so proofs are available the
	// moment the sale starts checking them.
	err = s.store.Save(ctx, store.Record{
		Root:        root,
		Hasher:      commitment.Hasher().Name(),
		Members:     commitment.Members(),
		PublishedAt: requestcontext.Now(ctx),
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "store whitelist")
	}
	if err := s.sale.SetWhitelistRoot(ctx, caller, root); err != nil {
		return nil, err
	}
	s.remember(root, commitment)

	s.auditPublish(ctx, caller, root, commitment.Len(), "applied", "")
	return &Published{Root: root, LeafCount: commitment.Len(), Hasher: commitment.Hasher().Name()}, nil
}

// Proof returns identity's sibling path against the sale's current root.
func (s *Service) Proof(ctx context.Context, identity id.Identity) (*ProofResult, error) {
	snap, err := s.sale.Config(ctx)
	if err != nil {
		return nil, err
	}
	root := snap.Config.WhitelistRoot
	if root == (common.Hash{}) {
		return nil, dErrors.New(dErrors.CodeWhitelistDisabled, "whitelist is disabled")
	}

	commitment, err := s.commitment(ctx, root)
	if err != nil {
		return nil, err
	}
	if err := s.matchHasher(commitment.Hasher().Name()); err != nil {
		s.logger.ErrorContext(ctx, "live whitelist uses a different hasher than mints verify with",
			"root", root.Hex(),
			"stored_hasher", commitment.Hasher().Name(),
			"configured_hasher", s.hasher.Name(),
		)
		return nil, err
	}
	proof, err := commitment.Prove(identity)
	if errors.Is(err, whitelist.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "identity is not whitelisted")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build proof")
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:  string(audit.EventProofServed),
		Actor:   identity.String(),
		Subject: root.Hex(),
	})
	return &ProofResult{
		Identity: identity,
		Root:     root,
		Proof:    proof,
		Hasher:   commitment.Hasher().Name(),
	}, nil
}

// CheckLiveHasher fails when the sale's current root was published with a
// hasher other than the configured one. Mints verify with the configured
// hasher, so such a root could never admit anyone. The server runs this at
// startup; republishing the set clears the condition.
func (s *Service) CheckLiveHasher(ctx context.Context) error {
	snap, err := s.sale.Config(ctx)
	if err != nil {
		return err
	}
	root := snap.Config.WhitelistRoot
	if root == (common.Hash{}) {
		return nil
	}
	rec, err := s.store.FindByRoot(ctx, root)
	if errors.Is(err, sentinel.ErrNotFound) {
		// Set directly through the admin setter; nothing to compare against.
		s.logger.WarnContext(ctx, "no identity set stored for the live whitelist root", "root", root.Hex())
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load whitelist")
	}
	return s.matchHasher(rec.Hasher)
}

func (s *Service) matchHasher(stored string) error {
	h, err := whitelist.ParseHasher(stored)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load whitelist")
	}
	if h.Name() != s.hasher.Name() {
		return dErrors.New(dErrors.CodeConflict, fmt.Sprintf(
			"live whitelist was built with %s but mints verify with %s; republish the whitelist", h.Name(), s.hasher.Name()))
	}
	return nil
}

// commitment returns the tree for root from cache, or rebuilds it from the
// stored set and checks it still hashes to root.
func (s *Service) commitment(ctx context.Context, root common.Hash) (*whitelist.Commitment, error) {
	s.mu.Lock()
	c, ok := s.cache[root]
	s.mu.Unlock()
	if ok {
		return c, nil
	}

	rec, err := s.store.FindByRoot(ctx, root)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no identity set stored for the current whitelist root")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load whitelist")
	}
	h, err := whitelist.ParseHasher(rec.Hasher)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load whitelist")
	}
	c, err = whitelist.Build(h, rec.Members)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "rebuild whitelist")
	}
	if c.Root() != root {
		s.logger.ErrorContext(ctx, "stored whitelist does not match its root",
			"root", root.Hex(),
			"rebuilt_root", c.Root().Hex(),
		)
		return nil, dErrors.New(dErrors.CodeInternal, "stored whitelist is corrupt")
	}
	s.remember(root, c)
	return c, nil
}

func (s *Service) remember(root common.Hash, c *whitelist.Commitment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cache) >= cacheLimit {
		clear(s.cache)
	}
	s.cache[root] = c
}

func (s *Service) auditPublish(ctx context.Context, caller id.Identity, root common.Hash, count int, decision, reason string) {
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:   string(audit.EventWhitelistPublish),
		Actor:    caller.String(),
		Subject:  root.Hex(),
		Decision: decision,
		Reason:   reason,
		Quantity: uint64(count),
	})
}
