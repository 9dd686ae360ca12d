// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package ed25519 wraps crypto/ed25519 keys and signatures.
package ed25519

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"io"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/crypto"
)

const (
	// SeedLength is the length of a private key seed.
	SeedLength = ed25519.SeedSize
	// PublicKeyLength is the length of a public key.
	PublicKeyLength = ed25519.PublicKeySize
	// PrivateKeyLength is the length of an expanded private key.
	PrivateKeyLength = ed25519.PrivateKeySize
	// SignatureLength is the length of a signature.
	SignatureLength = ed25519.SignatureSize
)

var _ crypto.Keypair = (*Keypair)(nil)

// Keypair is an ed25519 keypair.
type Keypair struct {
	public  *PublicKey
	private *PrivateKey
}

// PublicKey is an ed25519 public key.
type PublicKey ed25519.PublicKey

// PrivateKey is an expanded ed25519 private key, seed ‖ public key.
type PrivateKey ed25519.PrivateKey

// NewKeypair returns the keypair of an expanded private key.
func NewKeypair(priv ed25519.PrivateKey) *Keypair {
	pub := PublicKey(priv.Public().(ed25519.PublicKey))
	private := PrivateKey(priv)
	return &Keypair{public: &pub, private: &private}
}

// NewKeypairFromSeed returns the keypair of a 32 bytes seed.
func NewKeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != SeedLength {
		return nil, fmt.Errorf("%w: seed is %d bytes, expected %d",
			crypto.ErrInvalidKeyLength, len(seed), SeedLength)
	}
	return NewKeypair(ed25519.NewKeyFromSeed(seed)), nil
}

// NewKeypairFromMnemonic derives the keypair of a bip39 mnemonic, the
// seed being the first 32 bytes of the substrate-bip39 seed.
func NewKeypairFromMnemonic(mnemonic, password string) (*Keypair, error) {
	seed, err := crypto.SeedFromMnemonic(mnemonic, password)
	if err != nil {
		return nil, err
	}
	return NewKeypairFromSeed(seed[:SeedLength])
}

// GenerateKeypair returns a random keypair using the context randomness.
func GenerateKeypair(ctx crypto.Context) (*Keypair, error) {
	seed := make([]byte, SeedLength)
	_, err := io.ReadFull(ctx.WithDefaults().Rand, seed)
	if err != nil {
		return nil, fmt.Errorf("reading seed: %w", err)
	}
	return NewKeypairFromSeed(seed)
}

// Type returns Ed25519Type.
func (*Keypair) Type() crypto.KeyType { return crypto.Ed25519Type }

// Sign signs the message.
func (kp *Keypair) Sign(msg []byte) ([]byte, error) {
	return kp.private.Sign(msg)
}

// Public returns the public key.
func (kp *Keypair) Public() crypto.PublicKey { return kp.public }

// Private returns the private key.
func (kp *Keypair) Private() crypto.PrivateKey { return kp.private }

// AccountID returns the public key, the account of ed25519 keys.
func (kp *Keypair) AccountID() []byte { return kp.public.Encode() }

// Sign signs the message.
func (k *PrivateKey) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(ed25519.PrivateKey(*k), msg), nil
}

// Public returns the public key.
func (k *PrivateKey) Public() (crypto.PublicKey, error) {
	pub := PublicKey(ed25519.PrivateKey(*k).Public().(ed25519.PublicKey))
	return &pub, nil
}

// Encode returns the 64 bytes expanded key.
func (k *PrivateKey) Encode() []byte {
	return bytes.Clone(*k)
}

// Decode sets the key from a 32 bytes seed or a 64 bytes expanded key.
func (k *PrivateKey) Decode(in []byte) error {
	switch len(in) {
	case SeedLength:
		*k = PrivateKey(ed25519.NewKeyFromSeed(in))
	case PrivateKeyLength:
		*k = PrivateKey(bytes.Clone(in))
	default:
		return fmt.Errorf("%w: private key is %d bytes", crypto.ErrInvalidKeyLength, len(in))
	}
	return nil
}

// Hex returns the 0x prefixed hex encoding of the expanded key.
func (k *PrivateKey) Hex() string { return common.BytesToHex(*k) }

// Verify checks the signature of the message.
func (k *PublicKey) Verify(msg, sig []byte) (bool, error) {
	if len(sig) != SignatureLength {
		return false, fmt.Errorf("%w: got %d bytes", crypto.ErrInvalidSignatureLength, len(sig))
	}
	return ed25519.Verify(ed25519.PublicKey(*k), msg, sig), nil
}

// Encode returns the 32 bytes public key.
func (k *PublicKey) Encode() []byte {
	return bytes.Clone(*k)
}

// Decode sets the key from its 32 bytes encoding.
func (k *PublicKey) Decode(in []byte) error {
	if len(in) != PublicKeyLength {
		return fmt.Errorf("%w: public key is %d bytes", crypto.ErrInvalidKeyLength, len(in))
	}
	*k = PublicKey(bytes.Clone(in))
	return nil
}

// Hex returns the 0x prefixed hex encoding of the key.
func (k *PublicKey) Hex() string { return common.BytesToHex(*k) }

// VerifySignature checks the signature of the message by the encoded public key.
func VerifySignature(publicKey, signature, message []byte) error {
	pub := new(PublicKey)
	err := pub.Decode(publicKey)
	if err != nil {
		return fmt.Errorf("ed25519: %w", err)
	}

	ok, err := pub.Verify(message, signature)
	if err != nil || !ok {
		return fmt.Errorf("ed25519: %w: for message 0x%x, signature 0x%x and public key 0x%x",
			crypto.ErrSignatureVerificationFailed, message, signature, publicKey)
	}
	return nil
}
