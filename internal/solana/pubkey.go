package solana

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// ErrInvalidAddress flags a string that is not a base58-encoded 32-byte key.
var ErrInvalidAddress = errors.New("invalid address")

const pubkeyLength = 32

// ValidatePubkey checks that the address is the base58 encoding of an
// ed25519 public key.
func ValidatePubkey(address string) error {
	if address == "" {
		return fmt.Errorf("%w: empty string", ErrInvalidAddress)
	}
	decoded, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("%w: %q is not base58", ErrInvalidAddress, address)
	}
	if len(decoded) != pubkeyLength {
		return fmt.Errorf("%w: %q decodes to %d bytes, want %d", ErrInvalidAddress, address, len(decoded), pubkeyLength)
	}
	return nil
}

// IsValidPubkey reports whether the address parses as a public key.
func IsValidPubkey(address string) bool {
	return ValidatePubkey(address) == nil
}
