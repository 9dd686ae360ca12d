// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package devnode

import (
	"context"
	"math/big"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ChainSafe/subclient/lib/crypto"
	"github.com/ChainSafe/subclient/lib/extrinsic"
	"github.com/ChainSafe/subclient/lib/rpc"
	"github.com/ChainSafe/subclient/lib/storage"
	"github.com/stretchr/testify/require"
)

// newTestNode serves a new node and returns its websocket and HTTP endpoints.
func newTestNode(t *testing.T, options ...Option) (n *Node, wsURL, httpURL string) {
	t.Helper()

	n, err := New(options...)
	require.NoError(t, err)
	server := httptest.NewServer(n)
	t.Cleanup(func() {
		n.Close()
		server.Close()
	})
	return n, "ws" + strings.TrimPrefix(server.URL, "http"), server.URL
}

func dial(t *testing.T, endpoint string) *rpc.Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := rpc.Dial(ctx, endpoint)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func keypair(t *testing.T, n *Node, name string) crypto.Keypair {
	t.Helper()

	kp, err := n.Keyring().Get(name)
	require.NoError(t, err)
	return kp
}

func signingOptions(n *Node, nonce uint64) extrinsic.Options {
	return extrinsic.Options{
		Era:                extrinsic.Immortal,
		Nonce:              nonce,
		SpecVersion:        n.SpecVersion(),
		TransactionVersion: n.TransactionVersion(),
		GenesisHash:        n.GenesisHash(),
	}
}

func signedTransfer(t *testing.T, n *Node, signer crypto.Keypair, dest any,
	value *big.Int, options extrinsic.Options) []byte {
	t.Helper()

	call, err := extrinsic.ComposeCall(n.Metadata(), "Balances", "transfer_allow_death", map[string]any{
		"dest":  dest,
		"value": value,
	})
	require.NoError(t, err)
	ext, err := extrinsic.CreateSignedExtrinsic(n.Metadata(), call, signer, options, nil)
	require.NoError(t, err)
	return ext.Encode()
}

// freeBalance reads the free balance of the account at the best block.
func freeBalance(t *testing.T, ctx context.Context, client *rpc.Client, n *Node, id []byte) *big.Int {
	t.Helper()

	m := n.Metadata()
	key, err := storage.BuildKey(m, "System", "Account", id)
	require.NoError(t, err)
	raw, err := client.GetStorage(ctx, key, nil)
	require.NoError(t, err)
	fn, err := m.StorageEntry("System", "Account")
	require.NoError(t, err)
	value, err := storage.DecodeValue(m, fn.Entry, raw)
	require.NoError(t, err)

	info, ok := value.(map[string]any)
	require.True(t, ok)
	data, ok := info["data"].(map[string]any)
	require.True(t, ok)
	free, ok := data["free"].(*big.Int)
	require.True(t, ok)
	return free
}
