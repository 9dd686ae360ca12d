// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rpc

import (
	"encoding/json"
	"testing"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BlockNumber_JSON(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		json   string
		number BlockNumber
		errMsg string
	}{
		"hex":        {json: `"0x1f"`, number: 31},
		"zero":       {json: `"0x0"`, number: 0},
		"number":     {json: `42`, number: 42},
		"bad hex":    {json: `"0xzz"`, errMsg: `block number "0xzz": strconv.ParseUint: parsing "zz": invalid syntax`},
		"bad number": {json: `true`, errMsg: "block number true: json: cannot unmarshal bool into Go value of type uint64"},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var number BlockNumber
			err := json.Unmarshal([]byte(testCase.json), &number)
			if testCase.errMsg != "" {
				assert.EqualError(t, err, testCase.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.number, number)
		})
	}

	encoded, err := json.Marshal(BlockNumber(255))
	require.NoError(t, err)
	assert.Equal(t, `"0xff"`, string(encoded))
}

func Test_TransactionStatus_JSON(t *testing.T) {
	t.Parallel()

	blockHash := common.Hash{0xab}

	testCases := map[string]struct {
		json     string
		status   TransactionStatus
		terminal bool
	}{
		"ready": {
			json:   `"ready"`,
			status: TransactionStatus{Kind: StatusReady},
		},
		"broadcast": {
			json:   `{"broadcast":["peer1","peer2"]}`,
			status: TransactionStatus{Kind: StatusBroadcast, Peers: []string{"peer1", "peer2"}},
		},
		"in block": {
			json:   `{"inBlock":"` + blockHash.String() + `"}`,
			status: TransactionStatus{Kind: StatusInBlock, BlockHash: blockHash},
		},
		"finalized": {
			json:     `{"finalized":"` + blockHash.String() + `"}`,
			status:   TransactionStatus{Kind: StatusFinalized, BlockHash: blockHash},
			terminal: true,
		},
		"usurped": {
			json:     `{"usurped":"` + blockHash.String() + `"}`,
			status:   TransactionStatus{Kind: StatusUsurped, Usurper: blockHash},
			terminal: true,
		},
		"invalid": {
			json:     `"invalid"`,
			status:   TransactionStatus{Kind: StatusInvalid},
			terminal: true,
		},
		"dropped": {
			json:     `"dropped"`,
			status:   TransactionStatus{Kind: StatusDropped},
			terminal: true,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var status TransactionStatus
			err := json.Unmarshal([]byte(testCase.json), &status)
			require.NoError(t, err)
			assert.Equal(t, testCase.status, status)
			assert.Equal(t, testCase.terminal, status.IsTerminal())

			encoded, err := json.Marshal(status)
			require.NoError(t, err)
			assert.JSONEq(t, testCase.json, string(encoded))
		})
	}
}

func Test_TransactionStatus_UnmarshalJSON_errors(t *testing.T) {
	t.Parallel()

	var status TransactionStatus
	err := json.Unmarshal([]byte(`{"inBlock":"0x00","ready":null}`), &status)
	assert.ErrorContains(t, err, "want a single key")

	err = json.Unmarshal([]byte(`42`), &status)
	assert.ErrorContains(t, err, "transaction status 42")
}

func Test_Header_Hash(t *testing.T) {
	t.Parallel()

	header := Header{
		ParentHash: common.Hash{1},
		Number:     1,
		Digest:     Digest{Logs: []common.Bytes{{0x06, 0x01}}},
	}

	encoded := header.Encode()
	expected := append(append([]byte{}, header.ParentHash[:]...), 0x04)
	expected = append(expected, make([]byte, 64)...)
	expected = append(expected, 0x04, 0x06, 0x01)
	assert.Equal(t, expected, encoded)
	assert.Equal(t, common.Blake2b256(expected), header.Hash())
}

func Test_RuntimeVersion_JSON(t *testing.T) {
	t.Parallel()

	const data = `{
		"specName": "node",
		"implName": "substrate-node",
		"authoringVersion": 10,
		"specVersion": 267,
		"implVersion": 0,
		"apis": [["0xdf6acb689907609b", 4]],
		"transactionVersion": 2,
		"stateVersion": 1
	}`

	var version RuntimeVersion
	err := json.Unmarshal([]byte(data), &version)
	require.NoError(t, err)

	expected := RuntimeVersion{
		SpecName:           "node",
		ImplName:           "substrate-node",
		AuthoringVersion:   10,
		SpecVersion:        267,
		APIs:               []APIVersion{{ID: common.MustHexToBytes("0xdf6acb689907609b"), Version: 4}},
		TransactionVersion: 2,
		StateVersion:       1,
	}
	assert.Equal(t, expected, version)

	var pair APIVersion
	err = json.Unmarshal([]byte(`["0x01"]`), &pair)
	assert.EqualError(t, err, "api version has 1 members")
}
