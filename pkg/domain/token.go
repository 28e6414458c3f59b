package domain

import (
	"strconv"
	"strings"

	dErrors "cubemint/pkg/domain-errors"
)

// TokenID identifies an issued token. Ids are assigned sequentially from 0.
type TokenID uint64

// ParseTokenID parses a decimal token id.
func ParseTokenID(s string) (TokenID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "token id cannot be empty")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "token id must be a non-negative decimal integer")
	}
	return TokenID(v), nil
}

func (t TokenID) String() string {
	return strconv.FormatUint(uint64(t), 10)
}
