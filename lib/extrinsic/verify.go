// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package extrinsic

import (
	"bytes"
	"fmt"

	"github.com/ChainSafe/subclient/lib/codec"
	"github.com/ChainSafe/subclient/lib/crypto/ed25519"
	"github.com/ChainSafe/subclient/lib/crypto/secp256k1"
	"github.com/ChainSafe/subclient/lib/crypto/sr25519"
	"github.com/ChainSafe/subclient/lib/metadata"
	"github.com/ChainSafe/subclient/pkg/errkind"
)

// ErrNotSigned is returned when verifying an unsigned extrinsic.
var ErrNotSigned = fmt.Errorf("%w: extrinsic is not signed", errkind.ErrSigning)

// Verify checks the signature of a signed extrinsic against its signer.
// The options give the chain values of the additional signed data, the
// era, nonce and tip are read from the extrinsic.
func Verify(m *metadata.Metadata, e *Extrinsic, options Options) (bool, error) {
	if !e.Signed() {
		return false, ErrNotSigned
	}
	block := e.Signature
	options.Era = block.Era
	options.Nonce = block.Nonce
	options.Tip = block.Tip

	payload, err := GenerateSignaturePayload(m, e.Call, options)
	if err != nil {
		return false, err
	}

	scheme, signature, ok := signatureParts(block.Signature)
	if !ok {
		return false, fmt.Errorf("%w: signature value %T", ErrUnsupportedScheme, block.Signature)
	}

	switch scheme {
	case "Sr25519":
		public, err := sr25519.NewPublicKey(block.Signer)
		if err != nil {
			return false, err
		}
		return public.Verify(payload, signature)
	case "Ed25519":
		public := new(ed25519.PublicKey)
		err := public.Decode(block.Signer)
		if err != nil {
			return false, err
		}
		return public.Verify(payload, signature)
	case "Ecdsa", "":
		flavour := secp256k1.Substrate
		if scheme == "" {
			flavour = secp256k1.Ethereum
		}
		public, err := secp256k1.RecoverPublicKey(payload, signature, flavour)
		if err != nil {
			return false, nil //nolint:nilerr
		}
		return bytes.Equal(public.AccountID(), block.Signer), nil
	default:
		return false, fmt.Errorf("%w: %s signature", ErrUnsupportedScheme, scheme)
	}
}

// signatureParts splits a signature value into its scheme variant name,
// empty for a bare Ethereum signature, and its bytes.
func signatureParts(value any) (scheme string, signature []byte, ok bool) {
	switch v := value.(type) {
	case []byte:
		return "", v, true
	case codec.Variant:
		signature, ok = v.Value.([]byte)
		return v.Name, signature, ok
	}
	return "", nil, false
}
