package models

import dErrors "cubemint/pkg/domain-errors"

// Rejections returned by the sale. Wrap them with dErrors.Wrap to add context;
// match with errors.Is.
var (
	ErrInvalidQuantity     = dErrors.New(dErrors.CodeInvalidQuantity, "quantity must be at least 1")
	ErrUnauthorized        = dErrors.New(dErrors.CodeForbidden, "caller is not the sale administrator")
	ErrNotWhitelisted      = dErrors.New(dErrors.CodeNotWhitelisted, "caller is not on the whitelist")
	ErrAlreadyClaimed      = dErrors.New(dErrors.CodeAlreadyClaimed, "free allocation already claimed")
	ErrFreeSupplyExhausted = dErrors.New(dErrors.CodeFreeSupplyExhausted, "free supply cap reached")
	ErrInsufficientPayment = dErrors.New(dErrors.CodeInsufficientPayment, "payment below quantity times unit price")
	ErrSupplyExhausted     = dErrors.New(dErrors.CodeSupplyExhausted, "total supply exhausted")
	ErrTokenNotFound       = dErrors.New(dErrors.CodeNotFound, "token does not exist")
)
