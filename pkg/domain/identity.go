// Package domain holds typed identifiers shared across bounded contexts.
package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	dErrors "cubemint/pkg/domain-errors"
)

// Identity is an authenticated wallet address. Distinct from common.Address
// so a raw address never reaches a service without passing ParseIdentity.
type Identity common.Address

// ParseIdentity creates an Identity from 0x-prefixed hex.
// Returns error if the input is not a 20-byte hex address or is the zero address.
func ParseIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "identity cannot be empty")
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "identity must be 0x-prefixed hex")
	}
	if !common.IsHexAddress(s) {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "invalid identity format")
	}
	id := Identity(common.HexToAddress(s))
	if id.IsZero() {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "identity cannot be the zero address")
	}
	return id, nil
}

// MustIdentity parses s and panics on failure. For tests and constants only.
func MustIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i == Identity{}
}

// Bytes returns the 20 raw address bytes. This is the Merkle leaf preimage.
func (i Identity) Bytes() []byte {
	return common.Address(i).Bytes()
}

// String returns the EIP-55 checksummed hex form.
func (i Identity) String() string {
	return common.Address(i).Hex()
}

func (i Identity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
