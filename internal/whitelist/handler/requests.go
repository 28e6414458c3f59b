package handler

import (
	"fmt"

	"cubemint/internal/whitelist/service"
	id "cubemint/pkg/domain"
	dErrors "cubemint/pkg/domain-errors"
	platformstrings "cubemint/pkg/platform/strings"
)

// PublishRequest is the body of POST /admin/whitelist.
type PublishRequest struct {
	Identities []string `json:"identities"`

	parsed []id.Identity
}

func (r *PublishRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Identities) == 0 {
		return dErrors.New(dErrors.CodeValidation, "identities is required")
	}
	// Addresses repeat across case variants; the tree dedupes by bytes anyway.
	identities := platformstrings.DedupeAndTrimLower(r.Identities)
	if len(identities) == 0 {
		return dErrors.New(dErrors.CodeValidation, "identities is required")
	}
	if len(identities) > service.MaxIdentities {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("at most %d identities per whitelist", service.MaxIdentities))
	}

	r.parsed = make([]id.Identity, 0, len(identities))
	for _, raw := range identities {
		identity, err := id.ParseIdentity(raw)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("%q is not a valid identity", raw))
		}
		r.parsed = append(r.parsed, identity)
	}
	return nil
}
