// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChainSafe/subclient/config"
	"github.com/ChainSafe/subclient/internal/devnode"
	"github.com/ChainSafe/subclient/lib/codec"
)

const baltathar = "0x3Cd0A705a2DC65e5b1E1205896BaA2be8A07c6e0"

func serveNode(t *testing.T, options ...devnode.Option) (*devnode.Node, string) {
	t.Helper()

	node, err := devnode.New(options...)
	require.NoError(t, err)
	server := httptest.NewServer(node)
	t.Cleanup(func() {
		node.Close()
		server.Close()
	})
	return node, "ws" + strings.TrimPrefix(server.URL, "http")
}

// run runs the command line against the endpoint and returns its output.
func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()

	var output bytes.Buffer
	arguments := append([]string{"subclient", "--url", url, "--log", "error"}, args...)
	err := newApp(&output).Run(arguments)
	return output.String(), err
}

func Test_constant(t *testing.T) {
	_, url := serveNode(t)

	output, err := run(t, url, "constant", "Balances", "MaxLocks")
	require.NoError(t, err)
	assert.Equal(t, "50\n", output)

	_, err = run(t, url, "constant", "Balances", "Unknown")
	assert.Error(t, err)
}

func Test_constants(t *testing.T) {
	_, url := serveNode(t)

	output, err := run(t, url, "constants")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Greater(t, len(lines), 1)
	assert.Equal(t, []string{"PALLET", "NAME", "TYPE"}, strings.Fields(lines[0]))
	assert.Contains(t, output, "SS58Prefix")
}

func Test_query(t *testing.T) {
	_, url := serveNode(t)

	output, err := run(t, url, "query", "System", "Account", baltathar)
	require.NoError(t, err)

	var result struct {
		Exists bool `json:"exists"`
		Value  struct {
			Nonce uint32 `json:"nonce"`
			Data  struct {
				Free json.Number `json:"free"`
			} `json:"data"`
		} `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.True(t, result.Exists)
	assert.Equal(t, uint32(0), result.Value.Nonce)
	assert.Equal(t, "1000000000000000000000000", result.Value.Data.Free.String())
}

func Test_header(t *testing.T) {
	node, url := serveNode(t)

	output, err := run(t, url, "header", "--finalized")
	require.NoError(t, err)

	var header map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &header))
	assert.Equal(t, node.GenesisHash().String(), header["hash"])
	assert.Equal(t, float64(0), header["number"])
}

func Test_transfer(t *testing.T) {
	node, url := serveNode(t)

	output, err := run(t, url, "transfer", "--key", "alith", "--wait", baltathar, "1000")
	require.NoError(t, err)
	assert.Contains(t, output, " in block ")
	assert.Contains(t, output, "Balances.Transfer")
	assert.Equal(t, uint64(1), node.BestNumber())

	output, err = run(t, url, "block")
	require.NoError(t, err)
	var block struct {
		Number     uint64 `json:"number"`
		Extrinsics []struct {
			Signed bool   `json:"signed"`
			Call   string `json:"call"`
			Signer string `json:"signer"`
		} `json:"extrinsics"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &block))
	assert.Equal(t, uint64(1), block.Number)
	require.Len(t, block.Extrinsics, 2)
	assert.False(t, block.Extrinsics[0].Signed)
	assert.True(t, block.Extrinsics[1].Signed)
	assert.Equal(t, "Balances.transfer_allow_death", block.Extrinsics[1].Call)
	alith, err := node.Keyring().Get("alith")
	require.NoError(t, err)
	assert.True(t, strings.EqualFold(block.Extrinsics[1].Signer, addressHex(alith.AccountID())))
}

func addressHex(id []byte) string {
	encoded, _ := json.Marshal(jsonValue(id))
	return strings.Trim(string(encoded), `"`)
}

func Test_config_export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subclient.toml")

	_, err := run(t, "ws://10.0.0.1:9944", "config", "export", path)
	require.NoError(t, err)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "ws://10.0.0.1:9944", cfg.RPC.URL)
	assert.Equal(t, "error", cfg.Log.Level)
}

func Test_missingArgument(t *testing.T) {
	testCases := map[string]struct {
		args   []string
		errMsg string
	}{
		"constant_name": {
			args:   []string{"constant", "Balances"},
			errMsg: "missing name argument",
		},
		"query_item": {
			args:   []string{"query", "System"},
			errMsg: "missing item argument",
		},
		"transfer_value": {
			args:   []string{"transfer", "--key", "alith", baltathar},
			errMsg: "missing value argument",
		},
		"export_path": {
			args:   []string{"config", "export"},
			errMsg: "missing path argument",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			_, err := run(t, "ws://127.0.0.1:1", testCase.args...)
			require.Error(t, err)
			assert.EqualError(t, err, testCase.errMsg)
		})
	}
}

func Test_jsonValue(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		value    any
		expected any
	}{
		"bytes": {
			value:    []byte{0x01, 0xff},
			expected: "0x01ff",
		},
		"unit_variant": {
			value:    codec.Variant{Name: "Free"},
			expected: "Free",
		},
		"variant": {
			value:    codec.Variant{Name: "Id", Value: []byte{0xaa}},
			expected: map[string]any{"Id": "0xaa"},
		},
		"nested": {
			value: map[string]any{
				"who":    []byte{0x02},
				"amount": big.NewInt(5),
				"list":   []any{[]byte{0x03}, uint32(1)},
			},
			expected: map[string]any{
				"who":    "0x02",
				"amount": big.NewInt(5),
				"list":   []any{"0x03", uint32(1)},
			},
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, jsonValue(testCase.value))
		})
	}
}
