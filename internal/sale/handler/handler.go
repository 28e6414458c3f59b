// Package handler exposes the sale over HTTP.
package handler

import (
	"context"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"cubemint/internal/sale/models"
	id "cubemint/pkg/domain"
	dErrors "cubemint/pkg/domain-errors"
	"cubemint/pkg/platform/httputil"
	"cubemint/pkg/requestcontext"
)

// Service defines the sale operations exposed over HTTP.
type Service interface {
	Mint(ctx context.Context, caller id.Identity, req models.MintRequest) (*models.MintResult, error)
	Config(ctx context.Context) (*models.Snapshot, error)
	TokenURI(ctx context.Context, token id.TokenID) (string, error)
	BalanceOf(ctx context.Context, owner id.Identity) (uint64, error)
	HasClaimed(ctx context.Context, identity id.Identity) (bool, error)
	SetPublicPhaseStart(ctx context.Context, caller id.Identity, start time.Time) error
	SetUnitPrice(ctx context.Context, caller id.Identity, price *big.Int) error
	SetWhitelistRoot(ctx context.Context, caller id.Identity, root common.Hash) error
	SetMetadataBase(ctx context.Context, caller id.Identity, base string) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the read-only endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/sale", h.HandleGetSale)
	r.Get("/tokens/{id}/uri", h.HandleTokenURI)
	r.Get("/balances/{identity}", h.HandleBalance)
	r.Get("/claims/{identity}", h.HandleClaim)
}

// RegisterMint mounts POST /mint. The router wraps it with the rate limiter.
func (h *Handler) RegisterMint(r chi.Router) {
	r.Post("/mint", h.HandleMint)
}

// RegisterAdmin mounts the setters. Whether the caller is the administrator
// is decided by the service.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Put("/admin/sale/public-phase-start", h.HandleSetPublicPhaseStart)
	r.Put("/admin/sale/unit-price", h.HandleSetUnitPrice)
	r.Put("/admin/sale/whitelist-root", h.HandleSetWhitelistRoot)
	r.Put("/admin/sale/metadata-base", h.HandleSetMetadataBase)
}

// HandleMint handles POST /mint.
func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[MintRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.Mint(ctx, caller, req.toModel())
	if err != nil {
		h.logFailure(ctx, "mint rejected", err, "caller", caller.String(), "quantity", req.Quantity)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "mint completed",
		"request_id", requestID,
		"caller", caller.String(),
		"phase", res.Phase,
		"quantity", len(res.TokenIDs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, toMintResponse(res))
}

// HandleGetSale handles GET /sale.
func (h *Handler) HandleGetSale(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Config(r.Context())
	if err != nil {
		h.logFailure(r.Context(), "read sale failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSaleResponse(snap))
}

// HandleTokenURI handles GET /tokens/{id}/uri.
func (h *Handler) HandleTokenURI(w http.ResponseWriter, r *http.Request) {
	token, err := id.ParseTokenID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	uri, err := h.service.TokenURI(r.Context(), token)
	if err != nil {
		h.logFailure(r.Context(), "token uri failed", err, "token_id", token.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TokenURIResponse{TokenID: uint64(token), URI: uri})
}

// HandleBalance handles GET /balances/{identity}.
func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	owner, err := id.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	balance, err := h.service.BalanceOf(r.Context(), owner)
	if err != nil {
		h.logFailure(r.Context(), "balance lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BalanceResponse{Identity: owner.String(), Balance: balance})
}

// HandleClaim handles GET /claims/{identity}.
func (h *Handler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	identity, err := id.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	claimed, err := h.service.HasClaimed(r.Context(), identity)
	if err != nil {
		h.logFailure(r.Context(), "claim lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ClaimResponse{Identity: identity.String(), Claimed: claimed})
}

// -----------------------------------------------------------------------------
// Administrator setters
// -----------------------------------------------------------------------------

func (h *Handler) HandleSetPublicPhaseStart(w http.ResponseWriter, r *http.Request) {
	handleSetter(h, w, r, "public_phase_start", func(ctx context.Context, caller id.Identity, req *PublicPhaseStartRequest) error {
		return h.service.SetPublicPhaseStart(ctx, caller, req.parsed)
	})
}

func (h *Handler) HandleSetUnitPrice(w http.ResponseWriter, r *http.Request) {
	handleSetter(h, w, r, "unit_price", func(ctx context.Context, caller id.Identity, req *UnitPriceRequest) error {
		return h.service.SetUnitPrice(ctx, caller, req.parsed)
	})
}

func (h *Handler) HandleSetWhitelistRoot(w http.ResponseWriter, r *http.Request) {
	handleSetter(h, w, r, "whitelist_root", func(ctx context.Context, caller id.Identity, req *WhitelistRootRequest) error {
		return h.service.SetWhitelistRoot(ctx, caller, req.parsed)
	})
}

func (h *Handler) HandleSetMetadataBase(w http.ResponseWriter, r *http.Request) {
	handleSetter(h, w, r, "metadata_base", func(ctx context.Context, caller id.Identity, req *MetadataBaseRequest) error {
		return h.service.SetMetadataBase(ctx, caller, req.Base)
	})
}

// handleSetter decodes T, applies it and answers with the updated snapshot.
func handleSetter[T any](h *Handler, w http.ResponseWriter, r *http.Request, field string, apply func(context.Context, id.Identity, *T) error) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[T](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := apply(ctx, caller, req); err != nil {
		h.logFailure(ctx, "sale update rejected", err, "caller", caller.String(), "field", field)
		httputil.WriteError(w, err)
		return
	}

	snap, err := h.service.Config(ctx)
	if err != nil {
		h.logFailure(ctx, "read sale failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSaleResponse(snap))
}

func (h *Handler) requireCaller(w http.ResponseWriter, ctx context.Context) (id.Identity, bool) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.Identity{}, false
	}
	return caller, true
}

// logFailure logs internal errors at error level and rule rejections at
// info, since rejections are part of normal sale traffic.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	attrs = append(attrs, "request_id", requestcontext.RequestID(ctx), "error", err)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
		return
	}
	h.logger.InfoContext(ctx, msg, attrs...)
}
