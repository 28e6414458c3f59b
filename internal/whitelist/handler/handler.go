package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cubemint/internal/whitelist/service"
	id "cubemint/pkg/domain"
	dErrors "cubemint/pkg/domain-errors"
	"cubemint/pkg/platform/httputil"
	"cubemint/pkg/requestcontext"
)

// Service defines the whitelist operations exposed over HTTP.
type Service interface {
	Publish(ctx context.Context, caller id.Identity, identities []id.Identity) (*service.Published, error)
	Proof(ctx context.Context, identity id.Identity) (*service.ProofResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated proof lookup.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/whitelist/proofs/{identity}", h.HandleProof)
}

// RegisterAdmin mounts routes that expect an authenticated caller.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/whitelist", h.HandlePublish)
}

// HandleProof handles GET /whitelist/proofs/{identity}.
func (h *Handler) HandleProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := id.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.Proof(ctx, identity)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "whitelist proof failed",
				"request_id", requestcontext.RequestID(ctx),
				"identity", identity.String(),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProofResponse(res))
}

// HandlePublish handles POST /admin/whitelist.
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[PublishRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	pub, err := h.service.Publish(ctx, caller, req.parsed)
	if err != nil {
		h.logger.WarnContext(ctx, "whitelist publish failed",
			"request_id", requestID,
			"caller", caller.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "whitelist published",
		"request_id", requestID,
		"root", pub.Root.Hex(),
		"leaf_count", pub.LeafCount,
	)
	httputil.WriteJSON(w, http.StatusCreated, PublishResponse{
		Root:      pub.Root.Hex(),
		LeafCount: pub.LeafCount,
		Hasher:    pub.Hasher,
	})
}
