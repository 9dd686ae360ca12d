// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package ed25519

import (
	"fmt"
	"testing"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewKeypairFromSeed(t *testing.T) {
	t.Parallel()

	seed := common.MustHexToBytes("0xabf8e5bdbe30c65656c0a3cbd181ff8a56294a69dfedd27982aace4a76909115")

	kp, err := NewKeypairFromSeed(seed)
	require.NoError(t, err)

	assert.Equal(t, "0x88dc3417d5058ec4b4503e0c12ea1a0a89be200fe98922423d4334014fa6b0ee", kp.Public().Hex())
	assert.Equal(t, "0xabf8e5bdbe30c65656c0a3cbd181ff8a56294a69dfedd27982aace4a76909115", kp.Private().Hex()[:66])
	assert.Equal(t, crypto.Ed25519Type, kp.Type())

	_, err = NewKeypairFromSeed(seed[:31])
	assert.ErrorIs(t, err, crypto.ErrInvalidKeyLength)
}

func Test_NewKeypairFromMnemonic(t *testing.T) {
	t.Parallel()

	mnemonic := "twist sausage october vivid neglect swear crumble hawk beauty fabric egg fragile"

	kp, err := NewKeypairFromMnemonic(mnemonic, "")
	require.NoError(t, err)

	expected := common.MustHexToBytes("0xf56d9231e7b7badd3f1e10ad15ef8aa08b70839723d0a2d10d7329f0ea2b8c61")
	assert.Equal(t, expected, kp.Public().Encode())
}

func Test_SignIsDeterministic(t *testing.T) {
	t.Parallel()

	kp, err := GenerateKeypair(crypto.DefaultContext())
	require.NoError(t, err)

	first, err := kp.Sign([]byte("payload"))
	require.NoError(t, err)
	second, err := kp.Sign([]byte("payload"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func Test_EncodeAndDecode(t *testing.T) {
	t.Parallel()

	kp, err := GenerateKeypair(crypto.DefaultContext())
	require.NoError(t, err)

	priv := new(PrivateKey)
	err = priv.Decode(kp.Private().Encode())
	require.NoError(t, err)
	assert.Equal(t, kp.Private(), priv)

	fromSeed := new(PrivateKey)
	err = fromSeed.Decode(kp.Private().Encode()[:SeedLength])
	require.NoError(t, err)
	assert.Equal(t, kp.Private(), fromSeed)

	pub := new(PublicKey)
	err = pub.Decode(kp.Public().Encode())
	require.NoError(t, err)
	assert.Equal(t, kp.Public(), pub)
}

func Test_VerifySignature(t *testing.T) {
	t.Parallel()

	keypair, err := GenerateKeypair(crypto.DefaultContext())
	require.NoError(t, err)

	message := []byte("Hello world!")
	signature, err := keypair.Sign(message)
	require.NoError(t, err)

	testCases := map[string]struct {
		publicKey, signature, message []byte
		errMessage                    string
	}{
		"success": {
			publicKey: keypair.Public().Encode(),
			signature: signature,
			message:   message,
		},
		"bad public key input": {
			publicKey:  []byte{},
			signature:  signature,
			message:    message,
			errMessage: "ed25519: invalid key: invalid key length: public key is 0 bytes",
		},
		"verification failed": {
			publicKey: keypair.Public().Encode(),
			signature: []byte{},
			message:   message,
			errMessage: fmt.Sprintf("ed25519: %s: for message 0x%x, signature 0x and public key 0x%x",
				crypto.ErrSignatureVerificationFailed, message, keypair.Public().Encode()),
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := VerifySignature(testCase.publicKey, testCase.signature, testCase.message)

			if testCase.errMessage != "" {
				require.EqualError(t, err, testCase.errMessage)
				return
			}
			require.NoError(t, err)
		})
	}
}
