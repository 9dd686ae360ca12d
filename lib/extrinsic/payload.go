// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package extrinsic

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ChainSafe/subclient/lib/codec"
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/metadata"
)

// maxPayloadLength is the length above which the signed payload is hashed.
const maxPayloadLength = 256

// Options are the values signed alongside a call.
type Options struct {
	Era   Era
	Nonce uint64
	// Tip is added to the fee, nil means zero.
	Tip                *big.Int
	SpecVersion        uint32
	TransactionVersion uint32
	GenesisHash        common.Hash
	// BlockHash is the hash of the era birth block. It is ignored for
	// immortal transactions, which check the genesis hash instead.
	BlockHash common.Hash
	// AssetID selects the fee asset for ChargeAssetTxPayment.
	AssetID *uint32
	// MetadataHash enables CheckMetadataHash when set.
	MetadataHash *common.Hash
	// Extensions provides values for signed extensions the builder does
	// not know, by identifier.
	Extensions map[string]ExtensionValues
}

// ExtensionValues are the extra and additional signed values of a signed
// extension, in the codec value model of their declared types.
type ExtensionValues struct {
	Extra      any
	Additional any
}

func (o Options) tip() *big.Int {
	if o.Tip == nil {
		return new(big.Int)
	}
	return o.Tip
}

func (o Options) checkpoint() common.Hash {
	if o.Era.IsImmortal() {
		return o.GenesisHash
	}
	return o.BlockHash
}

// signedData returns the extra data carried by the extrinsic and the
// additional data only signed, as defined by the runtime signed extensions.
func signedData(m *metadata.Metadata, options Options) (extra, additional []byte, err error) {
	registry := m.Registry()
	extraBuf := bytes.NewBuffer(nil)
	additionalBuf := bytes.NewBuffer(nil)

	for _, ext := range m.Extrinsic().SignedExtensions {
		var extraValue, additionalValue any
		switch ext.Identifier {
		case "CheckSpecVersion":
			additionalValue = options.SpecVersion
		case "CheckTxVersion":
			additionalValue = options.TransactionVersion
		case "CheckGenesis":
			additionalValue = options.GenesisHash.ToBytes()
		case "CheckMortality", "CheckEra":
			era := options.Era.Encode()
			_, err = registry.DecodeAll(era, ext.Type)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %s does not accept era %s: %w",
					ErrUnsupportedExtension, ext.Identifier, options.Era, err)
			}
			extraBuf.Write(era)
			checkpoint := options.checkpoint()
			err = encodeExtensionValue(registry, additionalBuf, checkpoint[:], ext.AdditionalSigned)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %s additional: %w", ErrUnsupportedExtension, ext.Identifier, err)
			}
			continue
		case "CheckNonce":
			extraValue = options.Nonce
		case "ChargeTransactionPayment":
			extraValue = options.tip()
		case "ChargeAssetTxPayment":
			var assetID any
			if options.AssetID != nil {
				assetID = *options.AssetID
			}
			extraValue = map[string]any{"tip": options.tip(), "asset_id": assetID}
		case "CheckMetadataHash":
			extraValue = map[string]any{"mode": "Disabled"}
			if options.MetadataHash != nil {
				extraValue = map[string]any{"mode": "Enabled"}
				additionalValue = options.MetadataHash.ToBytes()
			}
		default:
			values, ok := options.Extensions[ext.Identifier]
			switch {
			case ok:
				extraValue, additionalValue = values.Extra, values.Additional
			case !registry.IsEmpty(ext.Type) || !registry.IsEmpty(ext.AdditionalSigned):
				return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext.Identifier)
			}
		}

		err = encodeExtensionValue(registry, extraBuf, extraValue, ext.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s extra: %w", ErrUnsupportedExtension, ext.Identifier, err)
		}
		err = encodeExtensionValue(registry, additionalBuf, additionalValue, ext.AdditionalSigned)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s additional: %w", ErrUnsupportedExtension, ext.Identifier, err)
		}
	}
	return extraBuf.Bytes(), additionalBuf.Bytes(), nil
}

// encodeExtensionValue skips empty types so field-less extensions need no value.
func encodeExtensionValue(registry *codec.Registry, buf *bytes.Buffer, value any, id codec.TypeID) error {
	if registry.IsEmpty(id) {
		return nil
	}
	return registry.EncodeTo(buf, value, id)
}

// GenerateSignaturePayload returns call ‖ extra ‖ additional signed, or its
// blake2-256 hash when longer than 256 bytes. The result is deterministic.
func GenerateSignaturePayload(m *metadata.Metadata, call Call, options Options) ([]byte, error) {
	extra, additional, err := signedData(m, options)
	if err != nil {
		return nil, err
	}
	return signaturePayload(call, extra, additional)
}

func signaturePayload(call Call, extra, additional []byte) ([]byte, error) {
	encodedCall := call.Encode()
	payload := make([]byte, 0, len(encodedCall)+len(extra)+len(additional))
	payload = append(payload, encodedCall...)
	payload = append(payload, extra...)
	payload = append(payload, additional...)
	if len(payload) > maxPayloadLength {
		return common.Blake2b256(payload).ToBytes(), nil
	}
	return payload, nil
}
