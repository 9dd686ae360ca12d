// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package extrinsic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChainSafe/subclient/lib/codec"
	"github.com/ChainSafe/subclient/lib/crypto"
	"github.com/ChainSafe/subclient/lib/keyring"
	"github.com/ChainSafe/subclient/lib/metadata"
	"github.com/ChainSafe/subclient/lib/metadata/metadatatest"
	"github.com/ChainSafe/subclient/pkg/errkind"
)

func Test_Verify(t *testing.T) {
	t.Parallel()

	ethereum := metadatatest.New(t, metadatatest.Options{})
	substrate := metadatatest.New(t, metadatatest.Options{Accounts: metadatatest.Substrate})

	testCases := map[string]struct {
		m       *metadata.Metadata
		signer  crypto.Keypair
		dest    any
		tamper  func(options *Options)
		invalid bool
	}{
		"ethereum": {
			m:      ethereum,
			signer: getKeypair(t, keyring.Ethereum, "alith"),
			dest:   baltathar,
		},
		"sr25519": {
			m:      substrate,
			signer: getKeypair(t, keyring.Sr25519, "alice"),
			dest:   codec.Variant{Name: "Id", Value: getKeypair(t, keyring.Sr25519, "bob").AccountID()},
		},
		"ed25519": {
			m:      substrate,
			signer: getKeypair(t, keyring.Ed25519, "alice"),
			dest:   codec.Variant{Name: "Id", Value: getKeypair(t, keyring.Ed25519, "bob").AccountID()},
		},
		"ethereum_other_genesis": {
			m:      ethereum,
			signer: getKeypair(t, keyring.Ethereum, "alith"),
			dest:   baltathar,
			tamper: func(options *Options) {
				options.GenesisHash = testBlockHash
			},
			invalid: true,
		},
		"sr25519_other_spec_version": {
			m:      substrate,
			signer: getKeypair(t, keyring.Sr25519, "alice"),
			dest:   codec.Variant{Name: "Id", Value: getKeypair(t, keyring.Sr25519, "bob").AccountID()},
			tamper: func(options *Options) {
				options.SpecVersion++
			},
			invalid: true,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			call := transferCall(t, testCase.m, testCase.dest)
			options := testOptions()
			options.Nonce = 3
			options.Era = NewMortalEra(100, 64)
			options.BlockHash = testBlockHash
			ext, err := CreateSignedExtrinsic(testCase.m, call, testCase.signer, options, nil)
			require.NoError(t, err)

			decoded, err := Decode(testCase.m, ext.Encode())
			require.NoError(t, err)

			chain := testOptions()
			chain.BlockHash = testBlockHash
			if testCase.tamper != nil {
				testCase.tamper(&chain)
			}
			valid, err := Verify(testCase.m, decoded, chain)
			require.NoError(t, err)
			assert.Equal(t, !testCase.invalid, valid)
		})
	}
}

func Test_Verify_unsigned(t *testing.T) {
	t.Parallel()

	m := metadatatest.New(t, metadatatest.Options{})
	call, err := ComposeCall(m, "System", "remark", map[string]any{"remark": []byte("hi")})
	require.NoError(t, err)

	_, err = Verify(m, CreateUnsignedExtrinsic(call), testOptions())
	assert.ErrorIs(t, err, ErrNotSigned)
	assert.ErrorIs(t, err, errkind.ErrSigning)
}
