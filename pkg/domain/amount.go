package domain

import (
	"math/big"
	"strings"

	dErrors "cubemint/pkg/domain-errors"
)

// maxAmountDigits bounds decimal input to the width of a 256-bit integer.
const maxAmountDigits = 78

// ParseAmount parses a non-negative decimal amount in the smallest currency unit.
// An empty string is zero, so payment may be omitted on free mints.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int), nil
	}
	if len(s) > maxAmountDigits {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "amount is too large")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "amount must be a non-negative decimal integer")
		}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid amount")
	}
	return v, nil
}
