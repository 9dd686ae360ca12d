// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package keyring

import (
	"fmt"
	"strings"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/crypto"
	"github.com/ChainSafe/subclient/pkg/errkind"
)

// ErrUnknownAccount is returned for a development account name the keyring does not hold.
var ErrUnknownAccount = fmt.Errorf("%w: unknown development account", errkind.ErrNotFound)

var substrateNames = []string{
	"alice", "bob", "charlie", "dave", "eve", "ferdie", "george", "heather", "ian",
}

// seeds generated using `subkey inspect //Name`
var sr25519Seeds = []string{
	"0xe5be9a5092b81bca64be81d212e7f2f9eba183bb7a90954f7b76361f6edb5c0a",
	"0x398f0c28f98885e046333d4a41c19cee4c37368a9832c6502f6cfd182e2aef89",
	"0xbc1ede780f784bb6991a585e4f6e61522c14e1cae6ad0895fb57b9a205a8f938",
	"0x868020ae0687dda7d57565093a69090211449845a7e11453612800b663307246",
	"0x786ad0e2df456fe43dd1f91ebca22e235bc162e0bb8d53c633e8c85b2af68b7a",
	"0x42438b7883391c05512a938e36c2df0131e088b3756d6aa7a755fbff19d2f842",
	"0xcdb035129162df39b70e604ab75162084e176f48897cdafb7d72c4a542a86dda",
	"0x51079fc9e1817f8d4f245d66b325a94d9cafdb8691acbfe85415dce3ae7a62b9",
	"0x7c04eea9d31ce0d9ee256d7c561dc29f20d1119a125e95713c967dcd8d14f22d",
}

var ed25519Seeds = []string{
	"0xabf8e5bdbe30c65656c0a3cbd181ff8a56294a69dfedd27982aace4a76909115",
	"0x3b7b60af2abcd57ba401ab398f84f4ca54bd6b2140d2503fbcf3286535fe3ff1",
	"0x072c02fa1409dc37e03a4ed01703d4a9e6bba9c228a49a00366e9630a97cba7c",
	"0x771f47d3caf8a2ee40b0719e1c1ecbc01d73ada220cf08df12a00453ab703738",
	"0xbef5a3cd63dd36ab9792364536140e5a0cce6925969940c431934de056398556",
	"0x1441e38eb309b66e9286867a5cd05902b05413eb9723a685d4d77753d73d0a1d",
	"0x583b887078cbae4b6ac6fbee324c3d2c16f3a1f8bf18f0d234de3ac33baa4470",
	"0xb8f3de627932e28914f3bc4bc3d7d2fc95c1f95c7915343d79df68d8250de180",
	"0xfd9f15cac5ffd14ed08914c200b1744ab00bdddf45e86cd13ccf9585ffa0e3ce",
}

var ethereumNames = []string{
	"alith", "baltathar", "charleth", "dorothy", "ethan", "faith",
}

// private keys of the Moonbeam development accounts
var ethereumPrivateKeys = []string{
	"0x5fb92d6e98884f76de468fa3f6278f8807c48bebc13595d45af5bdc4da702133",
	"0x8075991ce870b93a8870eca0c0f91913d12f47948ca0fd25b49c6fa7cdbeee8b",
	"0x0b6e18cafb6ed99687ec547bd28139cafdd2bffe70e6b688025de6b445aa5c5b",
	"0x39539ab1876910bbf3a223d84a29e28f1cb4e2e456503e7e91ed39b2e7223d68",
	"0x7dce9bc8babb68fec1409be38c8e1a52650206a7ed90ff956ae8a6d15eeaaef4",
	"0xb9d2ea9a615f3165812e8d44de0d24da9bbd164b65c4f0573e1ce2c8dbd9c8df",
}

// Keyring holds the development keypairs of a scheme.
type Keyring struct {
	scheme Scheme
	names  []string
	keys   map[string]crypto.Keypair
}

// New returns the development keyring of the scheme. Sr25519 and
// Ed25519 keyrings hold alice to ian, the Ethereum keyring holds the
// Moonbeam accounts alith to faith.
func New(scheme Scheme) (*Keyring, error) {
	var names, secrets []string
	switch scheme {
	case Sr25519:
		names, secrets = substrateNames, sr25519Seeds
	case Ed25519:
		names, secrets = substrateNames, ed25519Seeds
	case Ethereum:
		names, secrets = ethereumNames, ethereumPrivateKeys
	default:
		return nil, fmt.Errorf("%w: no development keys for %s", ErrUnknownScheme, scheme)
	}

	kr := &Keyring{
		scheme: scheme,
		names:  names,
		keys:   make(map[string]crypto.Keypair, len(names)),
	}
	for i, name := range names {
		secret, err := common.HexToBytes(secrets[i])
		if err != nil {
			return nil, err
		}
		kp, err := NewKeypairFromPrivateKey(secret, scheme)
		if err != nil {
			return nil, fmt.Errorf("creating %s keypair: %w", name, err)
		}
		kr.keys[name] = kp
	}
	return kr, nil
}

// Scheme returns the scheme of the keyring.
func (kr *Keyring) Scheme() Scheme { return kr.scheme }

// Names returns the account names in their canonical order.
func (kr *Keyring) Names() []string {
	return append([]string(nil), kr.names...)
}

// Get returns the keypair of the named account, case insensitively.
func (kr *Keyring) Get(name string) (crypto.Keypair, error) {
	kp, ok := kr.keys[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s keyring", ErrUnknownAccount, name, kr.scheme)
	}
	return kp, nil
}

// Keypairs returns every keypair in the canonical order.
func (kr *Keyring) Keypairs() []crypto.Keypair {
	keypairs := make([]crypto.Keypair, len(kr.names))
	for i, name := range kr.names {
		keypairs[i] = kr.keys[name]
	}
	return keypairs
}
