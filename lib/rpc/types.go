// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/pkg/scale"
)

// BlockNumber is a block number, hex encoded in JSON.
type BlockNumber uint64

// MarshalJSON encodes the number as a 0x prefixed hex string.
func (n BlockNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + strconv.FormatUint(uint64(n), 16))
}

// UnmarshalJSON accepts a hex string or a JSON number.
func (n *BlockNumber) UnmarshalJSON(data []byte) error {
	var s string
	if json.Unmarshal(data, &s) != nil {
		var number uint64
		err := json.Unmarshal(data, &number)
		if err != nil {
			return fmt.Errorf("block number %s: %w", data, err)
		}
		*n = BlockNumber(number)
		return nil
	}

	number, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	if err != nil {
		return fmt.Errorf("block number %q: %w", s, err)
	}
	*n = BlockNumber(number)
	return nil
}

// Digest holds the SCALE encoded digest items of a header.
type Digest struct {
	Logs []common.Bytes `json:"logs"`
}

// Header is a block header.
type Header struct {
	ParentHash     common.Hash `json:"parentHash"`
	Number         BlockNumber `json:"number"`
	StateRoot      common.Hash `json:"stateRoot"`
	ExtrinsicsRoot common.Hash `json:"extrinsicsRoot"`
	Digest         Digest      `json:"digest"`
}

// Encode returns the SCALE encoding of the header.
func (h *Header) Encode() []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write(h.ParentHash[:])
	buf.Write(scale.CompactUint(uint64(h.Number)))
	buf.Write(h.StateRoot[:])
	buf.Write(h.ExtrinsicsRoot[:])
	buf.Write(scale.CompactUint(uint64(len(h.Digest.Logs))))
	for _, item := range h.Digest.Logs {
		buf.Write(item)
	}
	return buf.Bytes()
}

// Hash returns the blake2-256 hash of the encoded header.
func (h *Header) Hash() common.Hash {
	return common.Blake2b256(h.Encode())
}

// Block is a header with its encoded extrinsics.
type Block struct {
	Header     Header         `json:"header"`
	Extrinsics []common.Bytes `json:"extrinsics"`
}

// SignedBlock is a block with its justifications, as returned by chain_getBlock.
type SignedBlock struct {
	Block          Block           `json:"block"`
	Justifications json.RawMessage `json:"justifications"`
}

// APIVersion is a runtime API identifier with its version.
type APIVersion struct {
	ID      common.Bytes
	Version uint32
}

// MarshalJSON encodes the pair as ["0x…", version].
func (v APIVersion) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{v.ID, v.Version})
}

// UnmarshalJSON decodes a ["0x…", version] pair.
func (v *APIVersion) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	err := json.Unmarshal(data, &pair)
	if err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("api version has %d members", len(pair))
	}
	err = json.Unmarshal(pair[0], &v.ID)
	if err != nil {
		return fmt.Errorf("api id: %w", err)
	}
	return json.Unmarshal(pair[1], &v.Version)
}

// RuntimeVersion is the version of the runtime at a block.
type RuntimeVersion struct {
	SpecName           string       `json:"specName"`
	ImplName           string       `json:"implName"`
	AuthoringVersion   uint32       `json:"authoringVersion"`
	SpecVersion        uint32       `json:"specVersion"`
	ImplVersion        uint32       `json:"implVersion"`
	APIs               []APIVersion `json:"apis"`
	TransactionVersion uint32       `json:"transactionVersion"`
	StateVersion       uint8        `json:"stateVersion"`
}

// StatusKind is the kind of a transaction status notification.
type StatusKind string

// Transaction pool statuses.
const (
	StatusFuture          StatusKind = "future"
	StatusReady           StatusKind = "ready"
	StatusBroadcast       StatusKind = "broadcast"
	StatusInBlock         StatusKind = "inBlock"
	StatusRetracted       StatusKind = "retracted"
	StatusFinalityTimeout StatusKind = "finalityTimeout"
	StatusFinalized       StatusKind = "finalized"
	StatusUsurped         StatusKind = "usurped"
	StatusDropped         StatusKind = "dropped"
	StatusInvalid         StatusKind = "invalid"
)

// TransactionStatus is a notification of author_submitAndWatchExtrinsic.
type TransactionStatus struct {
	Kind StatusKind
	// BlockHash is set for inBlock, retracted, finalityTimeout and finalized.
	BlockHash common.Hash
	// Usurper is the hash of the transaction replacing this one.
	Usurper common.Hash
	// Peers is set for broadcast.
	Peers []string
}

// MarshalJSON encodes the status as a bare string or a single key object.
func (s TransactionStatus) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case StatusBroadcast:
		return json.Marshal(map[StatusKind][]string{s.Kind: s.Peers})
	case StatusInBlock, StatusRetracted, StatusFinalityTimeout, StatusFinalized:
		return json.Marshal(map[StatusKind]common.Hash{s.Kind: s.BlockHash})
	case StatusUsurped:
		return json.Marshal(map[StatusKind]common.Hash{s.Kind: s.Usurper})
	default:
		return json.Marshal(string(s.Kind))
	}
}

// UnmarshalJSON decodes "ready" like strings and {"inBlock": "0x…"} like objects.
func (s *TransactionStatus) UnmarshalJSON(data []byte) error {
	var kind string
	if json.Unmarshal(data, &kind) == nil {
		*s = TransactionStatus{Kind: StatusKind(kind)}
		return nil
	}

	var object map[StatusKind]json.RawMessage
	err := json.Unmarshal(data, &object)
	if err != nil {
		return fmt.Errorf("transaction status %s: %w", data, err)
	}
	if len(object) != 1 {
		return fmt.Errorf("transaction status %s: want a single key", data)
	}

	for kind, value := range object {
		*s = TransactionStatus{Kind: kind}
		switch kind {
		case StatusBroadcast:
			return json.Unmarshal(value, &s.Peers)
		case StatusUsurped:
			return json.Unmarshal(value, &s.Usurper)
		default:
			return json.Unmarshal(value, &s.BlockHash)
		}
	}
	return nil
}

// IsTerminal returns true for statuses ending the watch stream.
func (s TransactionStatus) IsTerminal() bool {
	switch s.Kind {
	case StatusFinalized, StatusFinalityTimeout, StatusUsurped, StatusDropped, StatusInvalid:
		return true
	}
	return false
}
