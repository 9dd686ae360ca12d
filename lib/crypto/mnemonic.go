// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package crypto

import (
	"fmt"
	"io"

	"github.com/ChainSafe/go-schnorrkel"
	bip39 "github.com/cosmos/go-bip39"
)

// GenerateMnemonic returns a new 12 words mnemonic drawing entropy from
// the context randomness source.
func GenerateMnemonic(ctx Context) (string, error) {
	entropy := make([]byte, 16)
	_, err := io.ReadFull(ctx.WithDefaults().Rand, entropy)
	if err != nil {
		return "", fmt.Errorf("reading entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}

// SeedFromMnemonic derives the 64 bytes substrate-bip39 seed of the
// mnemonic: pbkdf2 over the mnemonic entropy, not over its words.
func SeedFromMnemonic(mnemonic, password string) ([]byte, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed, err := schnorrkel.SeedFromMnemonic(mnemonic, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMnemonic, err)
	}
	return seed[:], nil
}
