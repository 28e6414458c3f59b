package testutil

import (
	"net/http"

	id "cubemint/pkg/domain"
	"cubemint/pkg/requestcontext"
)

// WithCaller attaches an authenticated caller to the request context,
// simulating what the auth middleware does after validating a token.
func WithCaller(req *http.Request, caller id.Identity) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}
