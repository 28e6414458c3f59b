package domain

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	dErrors "cubemint/pkg/domain-errors"
)

// ParseHash parses a 0x-prefixed 32-byte hex hash. Unlike common.HexToHash it
// rejects short, long, and non-hex input instead of padding or truncating.
func ParseHash(s string) (common.Hash, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return common.Hash{}, dErrors.New(dErrors.CodeInvalidInput, "hash must be 0x-prefixed hex")
	}
	raw := s[2:]
	if len(raw) != 2*common.HashLength {
		return common.Hash{}, dErrors.New(dErrors.CodeInvalidInput, "hash must be 32 bytes")
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return common.Hash{}, dErrors.New(dErrors.CodeInvalidInput, "hash is not valid hex")
	}
	return common.BytesToHash(b), nil
}
