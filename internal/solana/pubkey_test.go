package solana

import (
	"errors"
	"testing"
)

func TestValidatePubkey_Valid(t *testing.T) {
	addresses := []string{
		"11111111111111111111111111111111",
		"So11111111111111111111111111111111111111112",
		"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
		"4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T",
	}

	for _, addr := range addresses {
		if err := ValidatePubkey(addr); err != nil {
			t.Errorf("expected %q to validate, got %v", addr, err)
		}
	}
}

func TestValidatePubkey_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		address string
	}{
		{name: "empty", address: ""},
		{name: "not base58", address: "not-base58!"},
		{name: "excluded alphabet characters", address: "0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl"},
		{name: "too short", address: "abc"},
		{name: "too long", address: "1111111111111111111111111111111111111111111111"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePubkey(tc.address)
			if err == nil {
				t.Fatalf("expected %q to be rejected", tc.address)
			}
			if !errors.Is(err, ErrInvalidAddress) {
				t.Errorf("expected ErrInvalidAddress, got %v", err)
			}
		})
	}
}

func TestIsValidPubkey(t *testing.T) {
	if !IsValidPubkey("11111111111111111111111111111111") {
		t.Error("expected system program address to be valid")
	}
	if IsValidPubkey("bogus") {
		t.Error("expected short string to be invalid")
	}
}
