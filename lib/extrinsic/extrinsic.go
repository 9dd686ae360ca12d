// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package extrinsic composes calls and builds, signs and decodes
// extrinsics following the runtime metadata.
package extrinsic

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ChainSafe/subclient/internal/log"
	"github.com/ChainSafe/subclient/lib/codec"
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/crypto"
	"github.com/ChainSafe/subclient/lib/metadata"
	"github.com/ChainSafe/subclient/pkg/errkind"
	"github.com/ChainSafe/subclient/pkg/scale"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "extrinsic"))

const (
	// Version is the supported extrinsic format version.
	Version uint8 = 4

	signedBit   = 0x80
	versionMask = 0x7f
)

// SignatureBlock is the signer part of a signed extrinsic.
type SignatureBlock struct {
	// Signer is the account id of the signer.
	Signer []byte
	// Address and Signature are values of the runtime address and signature types.
	Address   any
	Signature any
	Era       Era
	Nonce     uint64
	Tip       *big.Int
	// Extra holds the decoded extra value of each signed extension.
	Extra map[string]any

	// encoded is address ‖ signature ‖ extra.
	encoded []byte
}

// Extrinsic is a signed or unsigned transaction.
type Extrinsic struct {
	Version   uint8
	Signature *SignatureBlock
	Call      Call
}

// Signed returns true when the extrinsic carries a signature block.
func (e *Extrinsic) Signed() bool { return e.Signature != nil }

// Encode returns Compact(length) ‖ version ‖ [address ‖ signature ‖ extra] ‖ call.
func (e *Extrinsic) Encode() []byte {
	body := bytes.NewBuffer(nil)
	if e.Signed() {
		body.WriteByte(e.Version | signedBit)
		body.Write(e.Signature.encoded)
	} else {
		body.WriteByte(e.Version)
	}
	body.Write(e.Call.Encode())

	encoded := scale.CompactUint(uint64(body.Len()))
	return append(encoded, body.Bytes()...)
}

// Hex returns the 0x prefixed encoded extrinsic, as submitted to a node.
func (e *Extrinsic) Hex() string { return common.BytesToHex(e.Encode()) }

// Hash returns the blake2-256 hash of the encoded extrinsic.
func (e *Extrinsic) Hash() common.Hash {
	return common.Blake2b256(e.Encode())
}

// CreateUnsignedExtrinsic wraps a call into an unsigned extrinsic.
func CreateUnsignedExtrinsic(call Call) *Extrinsic {
	return &Extrinsic{Version: Version, Call: call}
}

// CreateSignedExtrinsic signs the call with the keypair. When signature is
// not nil it is used as is, after checking its length for the key scheme,
// so payloads signed elsewhere can be attached.
func CreateSignedExtrinsic(m *metadata.Metadata, call Call, keypair crypto.Keypair,
	options Options, signature []byte) (*Extrinsic, error) {
	extra, additional, err := signedData(m, options)
	if err != nil {
		return nil, err
	}

	if signature == nil {
		payload, err := signaturePayload(call, extra, additional)
		if err != nil {
			return nil, err
		}
		signature, err = keypair.Sign(payload)
		if err != nil {
			return nil, fmt.Errorf("signing %s: %w", call, err)
		}
	}
	err = checkSignatureLength(keypair.Type(), signature)
	if err != nil {
		return nil, err
	}

	info := m.Extrinsic()
	registry := m.Registry()
	address, err := addressValue(registry, info.AddressType, keypair.AccountID())
	if err != nil {
		return nil, err
	}
	sigValue, err := signatureValue(registry, info.SignatureType, keypair.Type(), signature)
	if err != nil {
		return nil, err
	}

	encoded := bytes.NewBuffer(nil)
	err = registry.EncodeTo(encoded, address, info.AddressType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s account of %d bytes: %w",
			ErrUnsupportedScheme, keypair.Type(), len(keypair.AccountID()), err)
	}
	err = registry.EncodeTo(encoded, sigValue, info.SignatureType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s signature: %w", ErrUnsupportedScheme, keypair.Type(), err)
	}
	encoded.Write(extra)

	logger.Debugf("signed %s with %s key, nonce %d, era %s", call, keypair.Type(), options.Nonce, options.Era)

	return &Extrinsic{
		Version: Version,
		Signature: &SignatureBlock{
			Signer:    keypair.AccountID(),
			Address:   address,
			Signature: sigValue,
			Era:       options.Era,
			Nonce:     options.Nonce,
			Tip:       options.tip(),
			encoded:   encoded.Bytes(),
		},
		Call: call,
	}, nil
}

func checkSignatureLength(keyType crypto.KeyType, signature []byte) error {
	want := 64
	if keyType == crypto.EcdsaType {
		want = 65
	}
	if len(signature) != want {
		return fmt.Errorf("%w: %d bytes for %s, want %d", ErrSignatureLength, len(signature), keyType, want)
	}
	return nil
}

// addressValue wraps the account id into the runtime address type: the Id
// variant of a MultiAddress like enum, or the account itself.
func addressValue(registry *codec.Registry, addressType codec.TypeID, accountID []byte) (any, error) {
	t, err := registry.Type(addressType)
	if err != nil {
		return nil, fmt.Errorf("%w: address type: %w", errkind.ErrMetadataParse, err)
	}
	if t.Def.Kind != codec.KindVariant {
		return accountID, nil
	}
	for _, v := range t.Def.Variants {
		if v.Name == "Id" {
			return codec.Variant{Name: "Id", Value: accountID}, nil
		}
	}
	return nil, fmt.Errorf("%w: address type %s has no Id variant", ErrUnsupportedScheme, registry.TypeName(addressType))
}

var signatureVariants = map[crypto.KeyType]string{
	crypto.Sr25519Type: "Sr25519",
	crypto.Ed25519Type: "Ed25519",
	crypto.EcdsaType:   "Ecdsa",
}

// signatureValue wraps the signature into the runtime signature type: the
// scheme variant of a MultiSignature like enum, or the raw signature.
func signatureValue(registry *codec.Registry, signatureType codec.TypeID,
	keyType crypto.KeyType, signature []byte) (any, error) {
	t, err := registry.Type(signatureType)
	if err != nil {
		return nil, fmt.Errorf("%w: signature type: %w", errkind.ErrMetadataParse, err)
	}
	if t.Def.Kind != codec.KindVariant {
		return signature, nil
	}
	name := signatureVariants[keyType]
	for _, v := range t.Def.Variants {
		if v.Name == name {
			return codec.Variant{Name: name, Value: signature}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s not in %s", ErrUnsupportedScheme, keyType, registry.TypeName(signatureType))
}

// Decode decodes an encoded extrinsic, length prefix included.
func Decode(m *metadata.Metadata, raw []byte) (*Extrinsic, error) {
	decoder := scale.NewDecoderBytes(raw)
	length, err := decoder.ReadLength()
	if err != nil {
		return nil, fmt.Errorf("decoding extrinsic length: %w", err)
	}
	body := raw[len(raw)-mustRemaining(decoder):]
	if length != len(body) {
		return nil, fmt.Errorf("%w: prefix %d for %d bytes", ErrLengthPrefix, length, len(body))
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty extrinsic", errkind.ErrCodec)
	}

	version := body[0] & versionMask
	if version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	extrinsic := &Extrinsic{Version: version}
	rest := body[1:]

	if body[0]&signedBit != 0 {
		extrinsic.Signature, rest, err = decodeSignatureBlock(m, rest)
		if err != nil {
			return nil, err
		}
	}

	call, rest, err := DecodeCall(m, rest)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingBytes, len(rest))
	}
	extrinsic.Call = call
	return extrinsic, nil
}

func mustRemaining(decoder *scale.Decoder) int {
	n, _ := decoder.Remaining()
	return n
}

func decodeSignatureBlock(m *metadata.Metadata, data []byte) (*SignatureBlock, []byte, error) {
	info := m.Extrinsic()
	registry := m.Registry()

	address, rest, err := registry.Decode(data, info.AddressType)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding signer address: %w", err)
	}
	signature, rest, err := registry.Decode(rest, info.SignatureType)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding signature: %w", err)
	}

	block := &SignatureBlock{
		Signer:    accountOf(address),
		Address:   address,
		Signature: signature,
		Tip:       new(big.Int),
		Extra:     make(map[string]any, len(info.SignedExtensions)),
	}
	for _, ext := range info.SignedExtensions {
		before := rest
		var value any
		value, rest, err = registry.Decode(rest, ext.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding %s extra: %w", ext.Identifier, err)
		}
		block.Extra[ext.Identifier] = value

		switch ext.Identifier {
		case "CheckMortality", "CheckEra":
			block.Era, _, err = DecodeEra(before[:len(before)-len(rest)])
			if err != nil {
				return nil, nil, err
			}
		case "CheckNonce":
			if n, ok := value.(*big.Int); ok {
				block.Nonce = n.Uint64()
			}
		case "ChargeTransactionPayment":
			if n, ok := value.(*big.Int); ok {
				block.Tip = n
			}
		case "ChargeAssetTxPayment":
			if fields, ok := value.(map[string]any); ok {
				if n, ok := fields["tip"].(*big.Int); ok {
					block.Tip = n
				}
			}
		}
	}

	block.encoded = append([]byte(nil), data[:len(data)-len(rest)]...)
	return block, rest, nil
}

// accountOf returns the account id of an address value when it has one.
func accountOf(address any) []byte {
	switch a := address.(type) {
	case []byte:
		return a
	case codec.Variant:
		if a.Name == "Id" {
			if id, ok := a.Value.([]byte); ok {
				return id
			}
		}
	}
	return nil
}
