// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package secp256k1 implements ECDSA keys over secp256k1 in the
// Substrate flavour (blake2-256 digests, accounts are the blake2-256 of
// the compressed public key) and the Ethereum flavour (keccak-256
// digests, 20 bytes address accounts).
package secp256k1

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/crypto"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const (
	// PrivateKeyLength is the length of a private key.
	PrivateKeyLength = 32
	// PublicKeyLength is the length of a compressed public key.
	PublicKeyLength = 33
	// SignatureLength is the length of a recoverable signature, r ‖ s ‖ v.
	SignatureLength = 65
	// AddressLength is the length of an Ethereum address.
	AddressLength = 20
)

// Flavour selects the message digest and account format.
type Flavour uint8

const (
	// Substrate signs blake2-256 digests.
	Substrate Flavour = iota
	// Ethereum signs keccak-256 digests.
	Ethereum
)

func (f Flavour) String() string {
	switch f {
	case Substrate:
		return "substrate"
	case Ethereum:
		return "ethereum"
	default:
		return fmt.Sprintf("Flavour(%d)", uint8(f))
	}
}

func (f Flavour) digest(msg []byte) []byte {
	if f == Ethereum {
		return common.Keccak256(msg).ToBytes()
	}
	return common.Blake2b256(msg).ToBytes()
}

var _ crypto.Keypair = (*Keypair)(nil)

// Keypair is a secp256k1 keypair.
type Keypair struct {
	public  *PublicKey
	private *PrivateKey
}

// PublicKey is a secp256k1 public key.
type PublicKey struct {
	key     ecdsa.PublicKey
	flavour Flavour
}

// PrivateKey is a secp256k1 private key.
type PrivateKey struct {
	key     ecdsa.PrivateKey
	flavour Flavour
}

// NewKeypair returns the keypair of a private key.
func NewKeypair(priv ecdsa.PrivateKey, flavour Flavour) *Keypair {
	return &Keypair{
		public:  &PublicKey{key: priv.PublicKey, flavour: flavour},
		private: &PrivateKey{key: priv, flavour: flavour},
	}
}

// NewKeypairFromPrivateKey returns the keypair of a 32 bytes private key.
func NewKeypairFromPrivateKey(priv []byte, flavour Flavour) (*Keypair, error) {
	key, err := NewPrivateKey(priv, flavour)
	if err != nil {
		return nil, err
	}
	return NewKeypair(key.key, flavour), nil
}

// NewPrivateKey decodes a 32 bytes private key.
func NewPrivateKey(in []byte, flavour Flavour) (*PrivateKey, error) {
	priv := &PrivateKey{flavour: flavour}
	err := priv.Decode(in)
	if err != nil {
		return nil, err
	}
	return priv, nil
}

// GenerateKeypair returns a random keypair using the context randomness.
func GenerateKeypair(ctx crypto.Context, flavour Flavour) (*Keypair, error) {
	priv, err := ecdsa.GenerateKey(ethcrypto.S256(), ctx.WithDefaults().Rand)
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return NewKeypair(*priv, flavour), nil
}

// Type returns EcdsaType.
func (*Keypair) Type() crypto.KeyType { return crypto.EcdsaType }

// Flavour returns the digest and account flavour of the key.
func (kp *Keypair) Flavour() Flavour { return kp.private.flavour }

// Sign signs the digest of the message.
func (kp *Keypair) Sign(msg []byte) ([]byte, error) {
	return kp.private.Sign(msg)
}

// Public returns the public key.
func (kp *Keypair) Public() crypto.PublicKey { return kp.public }

// Private returns the private key.
func (kp *Keypair) Private() crypto.PrivateKey { return kp.private }

// AccountID returns the 20 bytes address for the Ethereum flavour and
// the blake2-256 hash of the compressed public key otherwise.
func (kp *Keypair) AccountID() []byte {
	return kp.public.AccountID()
}

// Sign returns the recoverable signature r ‖ s ‖ v of the digest of
// the message, v being the recovery id 0 or 1. Signing is deterministic.
func (k *PrivateKey) Sign(msg []byte) ([]byte, error) {
	sig, err := ethcrypto.Sign(k.flavour.digest(msg), &k.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", crypto.ErrSigningFailed, err)
	}
	return sig, nil
}

// Public returns the public key.
func (k *PrivateKey) Public() (crypto.PublicKey, error) {
	return &PublicKey{key: k.key.PublicKey, flavour: k.flavour}, nil
}

// Encode returns the 32 bytes private key.
func (k *PrivateKey) Encode() []byte {
	return ethcrypto.FromECDSA(&k.key)
}

// Decode sets the key from its 32 bytes encoding.
func (k *PrivateKey) Decode(in []byte) error {
	if len(in) != PrivateKeyLength {
		return fmt.Errorf("%w: private key is %d bytes", crypto.ErrInvalidKeyLength, len(in))
	}
	key, err := ethcrypto.ToECDSA(in)
	if err != nil {
		return fmt.Errorf("%w: %w", crypto.ErrInvalidKeyLength, err)
	}
	k.key = *key
	return nil
}

// Hex returns the 0x prefixed hex encoding of the key.
func (k *PrivateKey) Hex() string { return common.BytesToHex(k.Encode()) }

// NewPublicKey decodes a 33 bytes compressed or 65 bytes uncompressed public key.
func NewPublicKey(in []byte, flavour Flavour) (*PublicKey, error) {
	pub := &PublicKey{flavour: flavour}
	err := pub.Decode(in)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// RecoverPublicKey returns the public key which produced the recoverable
// signature of the message.
func RecoverPublicKey(msg, sig []byte, flavour Flavour) (*PublicKey, error) {
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("%w: got %d bytes", crypto.ErrInvalidSignatureLength, len(sig))
	}
	key, err := ethcrypto.SigToPub(flavour.digest(msg), sig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", crypto.ErrSignatureVerificationFailed, err)
	}
	return &PublicKey{key: *key, flavour: flavour}, nil
}

// Verify checks a 64 bytes or recoverable 65 bytes signature of the
// digest of the message.
func (k *PublicKey) Verify(msg, sig []byte) (bool, error) {
	switch len(sig) {
	case SignatureLength:
		sig = sig[:64]
	case 64:
	default:
		return false, fmt.Errorf("%w: got %d bytes", crypto.ErrInvalidSignatureLength, len(sig))
	}
	return ethcrypto.VerifySignature(k.Encode(), k.flavour.digest(msg), sig), nil
}

// Encode returns the 33 bytes compressed public key.
func (k *PublicKey) Encode() []byte {
	return ethcrypto.CompressPubkey(&k.key)
}

// Decode sets the key from a compressed or uncompressed encoding.
func (k *PublicKey) Decode(in []byte) error {
	var key *ecdsa.PublicKey
	var err error
	switch len(in) {
	case PublicKeyLength:
		key, err = ethcrypto.DecompressPubkey(in)
	case 65:
		key, err = ethcrypto.UnmarshalPubkey(in)
	default:
		return fmt.Errorf("%w: public key is %d bytes", crypto.ErrInvalidKeyLength, len(in))
	}
	if err != nil {
		return fmt.Errorf("%w: %w", crypto.ErrInvalidKeyLength, err)
	}
	k.key = *key
	return nil
}

// Hex returns the 0x prefixed hex encoding of the compressed key.
func (k *PublicKey) Hex() string { return common.BytesToHex(k.Encode()) }

// Address returns the 20 bytes Ethereum address of the key.
func (k *PublicKey) Address() []byte {
	address := ethcrypto.PubkeyToAddress(k.key)
	return address.Bytes()
}

// AccountID returns the account of the key in its flavour.
func (k *PublicKey) AccountID() []byte {
	if k.flavour == Ethereum {
		return k.Address()
	}
	return common.Blake2b256(k.Encode()).ToBytes()
}
