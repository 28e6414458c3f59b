package handler

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"cubemint/internal/sale/models"
	id "cubemint/pkg/domain"
	dErrors "cubemint/pkg/domain-errors"
)

const (
	maxProofLen        = 64
	maxMetadataBaseLen = 2048
)

// MintRequest is the body of POST /mint. Payment is a decimal wei amount and
// may be omitted during presale.
type MintRequest struct {
	Quantity uint64   `json:"quantity"`
	Proof    []string `json:"proof"`
	Payment  string   `json:"payment"`

	parsedProof   []common.Hash
	parsedPayment *big.Int
}

func (r *MintRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Proof) > maxProofLen {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("proof must have at most %d elements", maxProofLen))
	}

	r.parsedProof = make([]common.Hash, 0, len(r.Proof))
	for i, raw := range r.Proof {
		h, err := id.ParseHash(raw)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("proof[%d] is not a 32-byte hex hash", i))
		}
		r.parsedProof = append(r.parsedProof, h)
	}

	payment, err := id.ParseAmount(r.Payment)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "payment must be a non-negative decimal integer")
	}
	r.parsedPayment = payment
	return nil
}

func (r *MintRequest) toModel() models.MintRequest {
	return models.MintRequest{
		Quantity: r.Quantity,
		Proof:    r.parsedProof,
		Payment:  r.parsedPayment,
	}
}

// PublicPhaseStartRequest is the body of PUT /admin/sale/public-phase-start.
type PublicPhaseStartRequest struct {
	Timestamp string `json:"timestamp"`

	parsed time.Time
}

func (r *PublicPhaseStartRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(r.Timestamp))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "timestamp must be RFC3339")
	}
	r.parsed = t.UTC()
	return nil
}

// UnitPriceRequest is the body of PUT /admin/sale/unit-price.
type UnitPriceRequest struct {
	Amount string `json:"amount"`

	parsed *big.Int
}

func (r *UnitPriceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Amount) == "" {
		return dErrors.New(dErrors.CodeValidation, "amount is required")
	}
	v, err := id.ParseAmount(r.Amount)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "amount must be a non-negative decimal integer")
	}
	r.parsed = v
	return nil
}

// WhitelistRootRequest is the body of PUT /admin/sale/whitelist-root. The
// zero hash disables the whitelist.
type WhitelistRootRequest struct {
	Root string `json:"root"`

	parsed common.Hash
}

func (r *WhitelistRootRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	h, err := id.ParseHash(r.Root)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "root must be a 32-byte hex hash")
	}
	r.parsed = h
	return nil
}

// MetadataBaseRequest is the body of PUT /admin/sale/metadata-base.
type MetadataBaseRequest struct {
	Base string `json:"base"`
}

func (r *MetadataBaseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Base) > maxMetadataBaseLen {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("base must be at most %d bytes", maxMetadataBaseLen))
	}
	return nil
}
