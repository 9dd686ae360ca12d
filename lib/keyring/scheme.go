// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package keyring builds keypairs of every supported scheme and holds
// the well known development accounts.
package keyring

import (
	"fmt"
	"strings"

	"github.com/ChainSafe/subclient/lib/crypto"
	"github.com/ChainSafe/subclient/lib/crypto/ed25519"
	"github.com/ChainSafe/subclient/lib/crypto/secp256k1"
	"github.com/ChainSafe/subclient/lib/crypto/sr25519"
	"github.com/ChainSafe/subclient/pkg/errkind"
)

// Scheme is a key scheme together with its account flavour.
type Scheme uint8

const (
	// Sr25519 keys, accounts are public keys.
	Sr25519 Scheme = iota
	// Ed25519 keys, accounts are public keys.
	Ed25519
	// Ecdsa keys in the Substrate flavour.
	Ecdsa
	// Ethereum ECDSA keys with 20 bytes address accounts.
	Ethereum
)

// ErrUnknownScheme is returned when parsing an unknown scheme name.
var ErrUnknownScheme = fmt.Errorf("%w: unknown key scheme", errkind.ErrInvalidKey)

func (s Scheme) String() string {
	switch s {
	case Sr25519:
		return "sr25519"
	case Ed25519:
		return "ed25519"
	case Ecdsa:
		return "ecdsa"
	case Ethereum:
		return "ethereum"
	default:
		return fmt.Sprintf("Scheme(%d)", uint8(s))
	}
}

// KeyType returns the signature scheme of the keys.
func (s Scheme) KeyType() crypto.KeyType {
	switch s {
	case Ed25519:
		return crypto.Ed25519Type
	case Ecdsa, Ethereum:
		return crypto.EcdsaType
	default:
		return crypto.Sr25519Type
	}
}

// ParseScheme parses a scheme name, case insensitively.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(s) {
	case "sr25519":
		return Sr25519, nil
	case "ed25519":
		return Ed25519, nil
	case "ecdsa", "secp256k1":
		return Ecdsa, nil
	case "ethereum", "eth":
		return Ethereum, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
}

// NewKeypairFromPrivateKey returns the keypair of the private key
// material: a 32 bytes seed for sr25519 and ed25519, a 32 bytes secret
// for ECDSA.
func NewKeypairFromPrivateKey(priv []byte, scheme Scheme) (crypto.Keypair, error) {
	switch scheme {
	case Sr25519:
		kp, err := sr25519.NewKeypairFromSeed(priv)
		if err != nil {
			return nil, err
		}
		return kp, nil
	case Ed25519:
		kp, err := ed25519.NewKeypairFromSeed(priv)
		if err != nil {
			return nil, err
		}
		return kp, nil
	case Ecdsa, Ethereum:
		kp, err := secp256k1.NewKeypairFromPrivateKey(priv, flavourOf(scheme))
		if err != nil {
			return nil, err
		}
		return kp, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownScheme, scheme)
	}
}

func flavourOf(scheme Scheme) secp256k1.Flavour {
	if scheme == Ethereum {
		return secp256k1.Ethereum
	}
	return secp256k1.Substrate
}

// NewKeypairFromMnemonic derives the keypair of a bip39 mnemonic. The
// first 32 bytes of the substrate-bip39 seed are the key seed.
func NewKeypairFromMnemonic(mnemonic, password string, scheme Scheme) (crypto.Keypair, error) {
	seed, err := crypto.SeedFromMnemonic(mnemonic, password)
	if err != nil {
		return nil, err
	}
	return NewKeypairFromPrivateKey(seed[:32], scheme)
}

// GenerateKeypair returns a random keypair of the scheme.
func GenerateKeypair(ctx crypto.Context, scheme Scheme) (crypto.Keypair, error) {
	switch scheme {
	case Sr25519:
		kp, err := sr25519.GenerateKeypair(ctx)
		if err != nil {
			return nil, err
		}
		return kp, nil
	case Ed25519:
		kp, err := ed25519.GenerateKeypair(ctx)
		if err != nil {
			return nil, err
		}
		return kp, nil
	case Ecdsa, Ethereum:
		kp, err := secp256k1.GenerateKeypair(ctx, flavourOf(scheme))
		if err != nil {
			return nil, err
		}
		return kp, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownScheme, scheme)
	}
}
