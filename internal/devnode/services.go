// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package devnode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/crypto/ss58"
	"github.com/ChainSafe/subclient/lib/rpc"
	"github.com/gorilla/rpc/v2/json2"
)

// Client errors, as returned by Substrate nodes.
const codeUnknownBlock = 4003

// Params are the positional parameters of a JSON-RPC request.
type Params []json.RawMessage

func (p Params) isSet(i int) bool {
	if i >= len(p) {
		return false
	}
	trimmed := bytes.TrimSpace(p[i])
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// decode unmarshals the parameter at index i into dst.
func (p Params) decode(i int, dst any) error {
	if !p.isSet(i) {
		return badParams("missing parameter %d", i)
	}
	err := json.Unmarshal(p[i], dst)
	if err != nil {
		return badParams("parameter %d: %s", i, err)
	}
	return nil
}

// hash returns the optional block hash parameter at index i.
func (p Params) hash(i int) (*common.Hash, error) {
	if !p.isSet(i) {
		return nil, nil //nolint:nilnil
	}
	var hash common.Hash
	err := p.decode(i, &hash)
	if err != nil {
		return nil, err
	}
	return &hash, nil
}

func badParams(format string, args ...any) *json2.Error {
	return &json2.Error{Code: json2.E_BAD_PARAMS, Message: "Invalid params: " + fmt.Sprintf(format, args...)}
}

func unknownBlock(hash *common.Hash) *json2.Error {
	return &json2.Error{Code: codeUnknownBlock, Message: fmt.Sprintf("Client error: UnknownBlock: %s", hash)}
}

// ChainService serves the chain_ methods.
type ChainService struct {
	node *Node
}

// GetBlockHash returns the hash of the block number, or of the best block.
func (s *ChainService) GetBlockHash(_ *http.Request, params *Params, reply *any) error {
	var number *rpc.BlockNumber
	if params.isSet(0) {
		number = new(rpc.BlockNumber)
		err := params.decode(0, number)
		if err != nil {
			return err
		}
	}

	n := s.node
	n.mu.Lock()
	defer n.mu.Unlock()
	switch {
	case number == nil:
		*reply = n.best().hash
	case uint64(*number) < uint64(len(n.blocks)):
		*reply = n.blocks[*number].hash
	}
	return nil
}

// GetFinalizedHead returns the hash of the last finalized block.
func (s *ChainService) GetFinalizedHead(_ *http.Request, _ *Params, reply *any) error {
	n := s.node
	n.mu.Lock()
	defer n.mu.Unlock()
	*reply = n.blocks[n.finalized].hash
	return nil
}

// GetHeader returns the header of the block, null for unknown blocks.
func (s *ChainService) GetHeader(_ *http.Request, params *Params, reply *any) error {
	hash, err := params.hash(0)
	if err != nil {
		return err
	}

	n := s.node
	n.mu.Lock()
	defer n.mu.Unlock()
	if b, ok := n.blockAt(hash); ok {
		*reply = b.header
	}
	return nil
}

// GetBlock returns the block, null for unknown blocks.
func (s *ChainService) GetBlock(_ *http.Request, params *Params, reply *any) error {
	hash, err := params.hash(0)
	if err != nil {
		return err
	}

	n := s.node
	n.mu.Lock()
	defer n.mu.Unlock()
	if b, ok := n.blockAt(hash); ok {
		*reply = b.signed()
	}
	return nil
}

// StateService serves the state_ methods.
type StateService struct {
	node *Node
}

func (s *StateService) stateAt(params *Params, i int) (*block, error) {
	hash, err := params.hash(i)
	if err != nil {
		return nil, err
	}
	b, ok := s.node.blockAt(hash)
	if !ok {
		return nil, unknownBlock(hash)
	}
	return b, nil
}

// GetRuntimeVersion returns the runtime version at the block.
func (s *StateService) GetRuntimeVersion(_ *http.Request, params *Params, reply *any) error {
	n := s.node
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := s.stateAt(params, 0)
	if err != nil {
		return err
	}
	*reply = rpc.RuntimeVersion{
		SpecName:           "moonbase",
		ImplName:           "subclient-devnode",
		AuthoringVersion:   1,
		SpecVersion:        n.settings.specVersion,
		APIs:               []rpc.APIVersion{},
		TransactionVersion: n.settings.transactionVersion,
		StateVersion:       1,
	}
	return nil
}

// GetMetadata returns the metadata blob at the block.
func (s *StateService) GetMetadata(_ *http.Request, params *Params, reply *any) error {
	n := s.node
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := s.stateAt(params, 0)
	if err != nil {
		return err
	}
	*reply = common.Bytes(n.metadata.Raw())
	return nil
}

// GetStorage returns the storage value of the key, null when absent.
func (s *StateService) GetStorage(_ *http.Request, params *Params, reply *any) error {
	var key common.Bytes
	err := params.decode(0, &key)
	if err != nil {
		return err
	}

	n := s.node
	n.mu.Lock()
	defer n.mu.Unlock()
	b, err := s.stateAt(params, 1)
	if err != nil {
		return err
	}
	if value, ok := b.state[string(key)]; ok {
		*reply = common.Bytes(value)
	}
	return nil
}

// GetKeysPaged returns up to count keys with the prefix, after the start key.
func (s *StateService) GetKeysPaged(_ *http.Request, params *Params, reply *any) error {
	var prefix common.Bytes
	var count uint32
	var start common.Bytes
	err := params.decode(0, &prefix)
	if err != nil {
		return err
	}
	err = params.decode(1, &count)
	if err != nil {
		return err
	}
	if params.isSet(2) {
		err = params.decode(2, &start)
		if err != nil {
			return err
		}
	}

	n := s.node
	n.mu.Lock()
	defer n.mu.Unlock()
	b, err := s.stateAt(params, 3)
	if err != nil {
		return err
	}
	*reply = b.state.keysPaged(prefix, count, start)
	return nil
}

// SystemService serves the system_ methods.
type SystemService struct {
	node *Node
}

// Chain returns the chain name.
func (*SystemService) Chain(_ *http.Request, _ *Params, reply *any) error {
	*reply = "Development"
	return nil
}

// Name returns the node implementation name.
func (*SystemService) Name(_ *http.Request, _ *Params, reply *any) error {
	*reply = "subclient-devnode"
	return nil
}

// Properties returns the chain properties.
func (s *SystemService) Properties(_ *http.Request, _ *Params, reply *any) error {
	prefix, _, err := s.node.metadata.Constant("System", "SS58Prefix")
	if err != nil {
		return err
	}
	*reply = map[string]any{
		"ss58Format":    prefix,
		"tokenDecimals": 18,
		"tokenSymbol":   "DEV",
	}
	return nil
}

// AccountNextIndex returns the nonce of the account at the best block.
func (s *SystemService) AccountNextIndex(_ *http.Request, params *Params, reply *any) error {
	var address string
	err := params.decode(0, &address)
	if err != nil {
		return err
	}
	id, err := parseAccount(address)
	if err != nil {
		return badParams("address %q: %s", address, err)
	}

	n := s.node
	n.mu.Lock()
	defer n.mu.Unlock()
	acc, err := store{metadata: n.metadata, state: n.best().state}.account(id)
	if err != nil {
		return err
	}
	*reply = acc.nonce
	return nil
}

// parseAccount accepts 0x hex account ids and SS58 addresses.
func parseAccount(address string) ([]byte, error) {
	if strings.HasPrefix(address, "0x") {
		return common.HexToBytes(address)
	}
	id, _, err := ss58.Decode(address)
	return id, err
}

// AuthorService serves the author_ methods.
type AuthorService struct {
	node *Node
}

// SubmitExtrinsic validates the extrinsic, seals it in a new block and
// returns its hash.
func (s *AuthorService) SubmitExtrinsic(_ *http.Request, params *Params, reply *any) error {
	var raw common.Bytes
	err := params.decode(0, &raw)
	if err != nil {
		return err
	}

	n := s.node
	n.mu.Lock()
	defer n.mu.Unlock()
	sub, err := n.check(raw)
	if err != nil {
		return err
	}
	_, err = n.seal(sub)
	if err != nil {
		return fmt.Errorf("sealing block: %w", err)
	}
	*reply = sub.hash
	return nil
}

// PendingExtrinsics returns the pool content, always empty as
// extrinsics are sealed on submission.
func (*AuthorService) PendingExtrinsics(_ *http.Request, _ *Params, reply *any) error {
	*reply = []common.Bytes{}
	return nil
}
