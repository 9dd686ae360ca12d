// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package crypto

// KeyType is the signature scheme of a key.
type KeyType string

const (
	// Sr25519Type is schnorrkel over ristretto25519.
	Sr25519Type KeyType = "sr25519"
	// Ed25519Type is ed25519.
	Ed25519Type KeyType = "ed25519"
	// EcdsaType is ECDSA over secp256k1, in its Substrate or Ethereum flavour.
	EcdsaType KeyType = "ecdsa"
)

// Keypair is a signing key with its public key.
type Keypair interface {
	Type() KeyType
	Sign(msg []byte) ([]byte, error)
	Public() PublicKey
	Private() PrivateKey
	// AccountID returns the on-chain account identifier of the key.
	AccountID() []byte
}

// PublicKey is a verifying key.
type PublicKey interface {
	Verify(msg, sig []byte) (bool, error)
	Encode() []byte
	Decode([]byte) error
	Hex() string
}

// PrivateKey is the private part of a keypair.
type PrivateKey interface {
	Sign(msg []byte) ([]byte, error)
	Public() (PublicKey, error)
	Encode() []byte
	Decode([]byte) error
	Hex() string
}
