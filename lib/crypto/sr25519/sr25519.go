// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package sr25519 wraps schnorrkel keys and signatures.
package sr25519

import (
	"fmt"
	"io"

	"github.com/ChainSafe/go-schnorrkel"
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/crypto"
)

const (
	// SeedLength is the length of a mini secret key.
	SeedLength = 32
	// PublicKeyLength is the length of a public key.
	PublicKeyLength = 32
	// PrivateKeyLength is the length of an encoded secret key.
	PrivateKeyLength = 32
	// SignatureLength is the length of a signature.
	SignatureLength = 64
)

var _ crypto.Keypair = (*Keypair)(nil)

// Keypair is a sr25519 keypair.
type Keypair struct {
	public  *PublicKey
	private *PrivateKey
}

// PublicKey is a sr25519 public key.
type PublicKey struct {
	key            *schnorrkel.PublicKey
	signingContext []byte
}

// PrivateKey is a sr25519 secret key.
type PrivateKey struct {
	key            *schnorrkel.SecretKey
	signingContext []byte
}

func newKeypair(msc *schnorrkel.MiniSecretKey) *Keypair {
	return &Keypair{
		public:  &PublicKey{key: msc.Public(), signingContext: crypto.SigningContext},
		private: &PrivateKey{key: msc.ExpandEd25519(), signingContext: crypto.SigningContext},
	}
}

// NewKeypairFromSeed returns the keypair of a 32 bytes mini secret key,
// the seed printed by subkey.
func NewKeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != SeedLength {
		return nil, fmt.Errorf("%w: seed is %d bytes, expected %d",
			crypto.ErrInvalidKeyLength, len(seed), SeedLength)
	}

	var raw [SeedLength]byte
	copy(raw[:], seed)
	msc, err := schnorrkel.NewMiniSecretKeyFromRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", crypto.ErrInvalidKeyLength, err)
	}
	return newKeypair(msc), nil
}

// NewKeypairFromMnemonic derives the keypair of a bip39 mnemonic.
func NewKeypairFromMnemonic(mnemonic, password string) (*Keypair, error) {
	seed, err := crypto.SeedFromMnemonic(mnemonic, password)
	if err != nil {
		return nil, err
	}
	return NewKeypairFromSeed(seed[:SeedLength])
}

// GenerateKeypair returns a random keypair using the context randomness.
func GenerateKeypair(ctx crypto.Context) (*Keypair, error) {
	ctx = ctx.WithDefaults()
	seed := make([]byte, SeedLength)
	_, err := io.ReadFull(ctx.Rand, seed)
	if err != nil {
		return nil, fmt.Errorf("reading seed: %w", err)
	}
	kp, err := NewKeypairFromSeed(seed)
	if err != nil {
		return nil, err
	}
	return kp.WithContext(ctx), nil
}

// WithContext returns a copy of the keypair signing with the context label.
func (kp *Keypair) WithContext(ctx crypto.Context) *Keypair {
	label := ctx.WithDefaults().SigningContext
	return &Keypair{
		public:  &PublicKey{key: kp.public.key, signingContext: label},
		private: &PrivateKey{key: kp.private.key, signingContext: label},
	}
}

// Type returns Sr25519Type.
func (*Keypair) Type() crypto.KeyType { return crypto.Sr25519Type }

// Sign signs the message with a random nonce.
func (kp *Keypair) Sign(msg []byte) ([]byte, error) {
	return kp.private.Sign(msg)
}

// Public returns the public key.
func (kp *Keypair) Public() crypto.PublicKey { return kp.public }

// Private returns the private key.
func (kp *Keypair) Private() crypto.PrivateKey { return kp.private }

// AccountID returns the public key, the account of sr25519 keys.
func (kp *Keypair) AccountID() []byte { return kp.public.Encode() }

// Sign signs the message within the signing context.
func (k *PrivateKey) Sign(msg []byte) ([]byte, error) {
	transcript := schnorrkel.NewSigningContext(k.signingContext, msg)
	sig, err := k.key.Sign(transcript)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", crypto.ErrSigningFailed, err)
	}
	encoded := sig.Encode()
	return encoded[:], nil
}

// Public returns the public key of the secret key.
func (k *PrivateKey) Public() (crypto.PublicKey, error) {
	pub, err := k.key.Public()
	if err != nil {
		return nil, err
	}
	return &PublicKey{key: pub, signingContext: k.signingContext}, nil
}

// Encode returns the 32 bytes secret scalar.
func (k *PrivateKey) Encode() []byte {
	encoded := k.key.Encode()
	return encoded[:]
}

// Decode sets the key from a 32 bytes secret scalar.
func (k *PrivateKey) Decode(in []byte) error {
	if len(in) != PrivateKeyLength {
		return fmt.Errorf("%w: private key is %d bytes", crypto.ErrInvalidKeyLength, len(in))
	}
	var raw [PrivateKeyLength]byte
	copy(raw[:], in)
	k.key = &schnorrkel.SecretKey{}
	if k.signingContext == nil {
		k.signingContext = crypto.SigningContext
	}
	return k.key.Decode(raw)
}

// Hex returns the 0x prefixed hex encoding of the key.
func (k *PrivateKey) Hex() string { return common.BytesToHex(k.Encode()) }

// NewPublicKey decodes a 32 bytes public key.
func NewPublicKey(in []byte) (*PublicKey, error) {
	pub := &PublicKey{}
	err := pub.Decode(in)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// Verify checks the signature of the message within the signing context.
func (k *PublicKey) Verify(msg, sig []byte) (bool, error) {
	if len(sig) != SignatureLength {
		return false, fmt.Errorf("%w: got %d bytes", crypto.ErrInvalidSignatureLength, len(sig))
	}

	var raw [SignatureLength]byte
	copy(raw[:], sig)
	s := &schnorrkel.Signature{}
	err := s.Decode(raw)
	if err != nil {
		return false, err
	}

	transcript := schnorrkel.NewSigningContext(k.signingContext, msg)
	return k.key.Verify(s, transcript)
}

// Encode returns the 32 bytes compressed public key.
func (k *PublicKey) Encode() []byte {
	encoded := k.key.Encode()
	return encoded[:]
}

// Decode sets the key from its 32 bytes encoding.
func (k *PublicKey) Decode(in []byte) error {
	if len(in) != PublicKeyLength {
		return fmt.Errorf("%w: public key is %d bytes", crypto.ErrInvalidKeyLength, len(in))
	}
	var raw [PublicKeyLength]byte
	copy(raw[:], in)
	k.key = &schnorrkel.PublicKey{}
	if k.signingContext == nil {
		k.signingContext = crypto.SigningContext
	}
	return k.key.Decode(raw)
}

// Hex returns the 0x prefixed hex encoding of the key.
func (k *PublicKey) Hex() string { return common.BytesToHex(k.Encode()) }
