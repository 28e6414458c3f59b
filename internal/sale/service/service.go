// Package service implements the mint state machine: phase selection,
// presale gating and claim accounting, public pricing, and the
// administrator setters.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cubemint/internal/sale/metrics"
	"cubemint/internal/sale/models"
	"cubemint/internal/sale/ports"
	"cubemint/internal/whitelist"
	id "cubemint/pkg/domain"
	dErrors "cubemint/pkg/domain-errors"
	audit "cubemint/pkg/platform/audit"
	"cubemint/pkg/platform/sentinel"
	"cubemint/pkg/requestcontext"
)

// Service evaluates every call against one consistent snapshot obtained
// through the SaleTx boundary.
type Service struct {
	tx             ports.SaleTx
	registry       ports.Registry
	hasher         whitelist.Hasher
	logger         *slog.Logger
	auditPublisher ports.AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithHasher selects the hash used to verify presale proofs. It must match
// the hasher the whitelist root was built with.
func WithHasher(h whitelist.Hasher) Option {
	return func(s *Service) {
		s.hasher = h
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New wires the sale. registry serves reads outside transactions; mutations
// go through the registry handed to the RunInTx callback.
func New(tx ports.SaleTx, registry ports.Registry, opts ...Option) (*Service, error) {
	if tx == nil {
		return nil, errors.New("sale transaction boundary is required")
	}
	if registry == nil {
		return nil, errors.New("token registry is required")
	}
	s := &Service{
		tx:       tx,
		registry: registry,
		hasher:   whitelist.Keccak256{},
		logger:   slog.Default(),
		tracer:   otel.Tracer("cubemint/internal/sale"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Mint issues req.Quantity tokens to caller or rejects with no state change.
//
// Presale: proof (when the whitelist is enabled), then one claim per
// identity, then the free cap. Payment is ignored.
// Public: payment must cover quantity times the unit price; overpayment is
// accepted. The registry enforces the total supply in both phases.
func (s *Service) Mint(ctx context.Context, caller id.Identity, req models.MintRequest) (*models.MintResult, error) {
	ctx, span := s.tracer.Start(ctx, "sale.Mint", trace.WithAttributes(
		attribute.String("caller", caller.String()),
		attribute.Int64("quantity", int64(req.Quantity)),
	))
	defer span.End()
	started := time.Now()

	var phase models.Phase
	result, err := s.mint(ctx, caller, req, &phase)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		s.observeRejection(ctx, caller, req, phase, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("phase", string(result.Phase)))
	if s.metrics != nil {
		s.metrics.ObserveMint(string(result.Phase), req.Quantity, started)
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:   string(audit.EventMintSucceeded),
		Actor:    caller.String(),
		Subject:  string(result.Phase),
		Decision: "issued",
		Quantity: req.Quantity,
	}, "first_token_id", result.TokenIDs[0].String(), "price", result.Price.String())
	return result, nil
}

func (s *Service) mint(ctx context.Context, caller id.Identity, req models.MintRequest, phase *models.Phase) (*models.MintResult, error) {
	if req.Quantity == 0 {
		return nil, models.ErrInvalidQuantity
	}
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	now := requestcontext.Now(ctx)

	var result *models.MintResult
	var freeMinted uint64
	err := s.tx.RunInTx(ctx, func(ctx context.Context, stores ports.Stores) error {
		cfg, err := stores.Config.Load(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "load sale config")
		}

		*phase = models.PhaseAt(now, cfg.PublicPhaseStart)
		price := new(big.Int)
		switch *phase {
		case models.PhasePresale:
			total, err := s.admitPresale(ctx, stores.Ledger, cfg, caller, req)
			if err != nil {
				return err
			}
			freeMinted = total
		case models.PhasePublic:
			price = cfg.Price(req.Quantity)
			if req.PaymentOrZero().Cmp(price) < 0 {
				return models.ErrInsufficientPayment
			}
		}

		// Issue is the last mutation: a failure here discards the staged claim.
		tokens, err := stores.Registry.Issue(ctx, caller, req.Quantity)
		if err != nil {
			if errors.Is(err, sentinel.ErrExhausted) {
				return models.ErrSupplyExhausted
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "issue tokens")
		}

		result = &models.MintResult{
			TokenIDs: tokens,
			Phase:    *phase,
			Price:    price,
			Payment:  new(big.Int).Set(req.PaymentOrZero()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Only committed claims reach the gauge.
	if s.metrics != nil && result.Phase == models.PhasePresale {
		s.metrics.SetFreeMinted(freeMinted)
	}
	return result, nil
}

// admitPresale applies the presale checks in order and stages the claim. It
// returns the free minted total including the staged claim.
// "Whitelist disabled" only skips the proof; claims and the cap still apply.
func (s *Service) admitPresale(ctx context.Context, ledger ports.ClaimLedger, cfg models.Config, caller id.Identity, req models.MintRequest) (uint64, error) {
	if cfg.WhitelistEnabled() && !whitelist.Verify(s.hasher, cfg.WhitelistRoot, caller, whitelist.Proof(req.Proof)) {
		return 0, models.ErrNotWhitelisted
	}

	claimed, err := ledger.HasClaimed(ctx, caller)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "read claim")
	}
	if claimed {
		return 0, models.ErrAlreadyClaimed
	}

	total, err := ledger.FreeMintedTotal(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "read free minted total")
	}
	if total > cfg.FreeSupplyCap || req.Quantity > cfg.FreeSupplyCap-total {
		return 0, models.ErrFreeSupplyExhausted
	}

	// The ledger re-checks both conditions atomically.
	if err := ledger.RecordClaim(ctx, caller, req.Quantity, cfg.FreeSupplyCap); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return 0, models.ErrAlreadyClaimed
		case errors.Is(err, sentinel.ErrExhausted):
			return 0, models.ErrFreeSupplyExhausted
		default:
			return 0, dErrors.Wrap(err, dErrors.CodeInternal, "record claim")
		}
	}
	return total + req.Quantity, nil
}

func (s *Service) observeRejection(ctx context.Context, caller id.Identity, req models.MintRequest, phase models.Phase, err error) {
	code := dErrors.CodeOf(err)
	if s.metrics != nil {
		s.metrics.IncrementRejections(string(code))
	}
	if code == dErrors.CodeInternal {
		s.logger.ErrorContext(ctx, "mint failed",
			"caller", caller.String(),
			"quantity", req.Quantity,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:   string(audit.EventMintRejected),
		Actor:    caller.String(),
		Subject:  string(phase),
		Decision: "rejected",
		Reason:   string(code),
		Quantity: req.Quantity,
	})
}

// -----------------------------------------------------------------------------
// Administrator setters
// -----------------------------------------------------------------------------

// SetPublicPhaseStart overwrites the phase boundary. A past time flips the
// sale to public immediately.
func (s *Service) SetPublicPhaseStart(ctx context.Context, caller id.Identity, start time.Time) error {
	return s.updateConfig(ctx, caller, "public_phase_start", start.UTC().Format(time.RFC3339), func(cfg *models.Config) {
		cfg.PublicPhaseStart = start
	})
}

// SetUnitPrice overwrites the public unit price. Completed mints keep the
// price they paid.
func (s *Service) SetUnitPrice(ctx context.Context, caller id.Identity, price *big.Int) error {
	if price == nil || price.Sign() < 0 {
		return dErrors.New(dErrors.CodeValidation, "unit price must be a non-negative integer")
	}
	return s.updateConfig(ctx, caller, "unit_price", price.String(), func(cfg *models.Config) {
		cfg.UnitPrice = new(big.Int).Set(price)
	})
}

// SetWhitelistRoot replaces the commitment wholesale. The zero hash disables
// the proof check.
func (s *Service) SetWhitelistRoot(ctx context.Context, caller id.Identity, root common.Hash) error {
	return s.updateConfig(ctx, caller, "whitelist_root", root.Hex(), func(cfg *models.Config) {
		cfg.WhitelistRoot = root
	})
}

func (s *Service) SetMetadataBase(ctx context.Context, caller id.Identity, base string) error {
	return s.updateConfig(ctx, caller, "metadata_base", base, func(cfg *models.Config) {
		cfg.MetadataBase = base
	})
}

func (s *Service) updateConfig(ctx context.Context, caller id.Identity, field, value string, apply func(*models.Config)) error {
	ctx, span := s.tracer.Start(ctx, "sale.UpdateConfig", trace.WithAttributes(
		attribute.String("caller", caller.String()),
		attribute.String("field", field),
	))
	defer span.End()

	err := s.tx.RunInTx(ctx, func(ctx context.Context, stores ports.Stores) error {
		cfg, err := stores.Config.Load(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "load sale config")
		}
		if !cfg.IsAdministrator(caller) {
			return models.ErrUnauthorized
		}
		apply(&cfg)
		if err := stores.Config.Save(ctx, cfg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "save sale config")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		if errors.Is(err, models.ErrUnauthorized) {
			ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
				Action:   string(audit.EventSaleConfigChanged),
				Actor:    caller.String(),
				Subject:  field,
				Decision: "denied",
				Reason:   string(dErrors.CodeForbidden),
			})
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementConfigChanges(field)
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:   string(audit.EventSaleConfigChanged),
		Actor:    caller.String(),
		Subject:  field,
		Decision: "applied",
	}, "value", value)
	return nil
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// Config returns a consistent snapshot with the phase computed for now.
func (s *Service) Config(ctx context.Context) (*models.Snapshot, error) {
	now := requestcontext.Now(ctx)
	var snap models.Snapshot
	err := s.tx.RunInTx(ctx, func(ctx context.Context, stores ports.Stores) error {
		cfg, err := stores.Config.Load(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "load sale config")
		}
		total, err := stores.Ledger.FreeMintedTotal(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "read free minted total")
		}
		supply, err := stores.Registry.TotalSupply(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "read total supply")
		}
		snap = models.Snapshot{
			Config:          cfg,
			Phase:           models.PhaseAt(now, cfg.PublicPhaseStart),
			FreeMintedTotal: total,
			TotalSupply:     supply,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *Service) PublicPhaseStart(ctx context.Context) (time.Time, error) {
	snap, err := s.Config(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return snap.Config.PublicPhaseStart, nil
}

func (s *Service) UnitPrice(ctx context.Context) (*big.Int, error) {
	snap, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Config.UnitPrice, nil
}

func (s *Service) WhitelistRoot(ctx context.Context) (common.Hash, error) {
	snap, err := s.Config(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	return snap.Config.WhitelistRoot, nil
}

// TokenURI is metadataBase followed by the decimal token id.
func (s *Service) TokenURI(ctx context.Context, token id.TokenID) (string, error) {
	exists, err := s.registry.Exists(ctx, token)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "check token")
	}
	if !exists {
		return "", models.ErrTokenNotFound
	}
	snap, err := s.Config(ctx)
	if err != nil {
		return "", err
	}
	return snap.Config.MetadataBase + strconv.FormatUint(uint64(token), 10), nil
}

func (s *Service) BalanceOf(ctx context.Context, owner id.Identity) (uint64, error) {
	balance, err := s.registry.BalanceOf(ctx, owner)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "read balance")
	}
	return balance, nil
}

func (s *Service) HasClaimed(ctx context.Context, identity id.Identity) (bool, error) {
	var claimed bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context, stores ports.Stores) error {
		var err error
		claimed, err = stores.Ledger.HasClaimed(ctx, identity)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "read claim")
		}
		return nil
	})
	return claimed, err
}

func (s *Service) FreeMintedTotal(ctx context.Context) (uint64, error) {
	snap, err := s.Config(ctx)
	if err != nil {
		return 0, err
	}
	return snap.FreeMintedTotal, nil
}
