// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package devnode

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/metadata"
	"github.com/ChainSafe/subclient/lib/storage"
	"github.com/ChainSafe/subclient/pkg/scale"
)

// state is the storage of one block, by raw storage key.
type state map[string][]byte

func (s state) clone() state {
	cloned := make(state, len(s))
	for key, value := range s {
		cloned[key] = value
	}
	return cloned
}

func (s state) sortedKeys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// root is the blake2-256 hash of the sorted key value pairs. It is not a
// trie root but changes with any storage change.
func (s state) root() common.Hash {
	buf := bytes.NewBuffer(nil)
	for _, key := range s.sortedKeys() {
		buf.Write(scale.CompactUint(uint64(len(key))))
		buf.WriteString(key)
		buf.Write(scale.CompactUint(uint64(len(s[key]))))
		buf.Write(s[key])
	}
	return common.Blake2b256(buf.Bytes())
}

// keysPaged returns up to count keys with the prefix, sorted, strictly
// after start when start is not nil.
func (s state) keysPaged(prefix []byte, count uint32, start []byte) []common.Bytes {
	keys := make([]common.Bytes, 0)
	for _, key := range s.sortedKeys() {
		if uint32(len(keys)) == count {
			break
		}
		if !strings.HasPrefix(key, string(prefix)) {
			continue
		}
		if start != nil && key <= string(start) {
			continue
		}
		keys = append(keys, common.Bytes(key))
	}
	return keys
}

// store reads and writes typed storage values through the runtime metadata.
type store struct {
	metadata *metadata.Metadata
	state    state
}

func (s store) read(pallet, item string, params ...any) (any, error) {
	fn, err := s.metadata.StorageEntry(pallet, item)
	if err != nil {
		return nil, err
	}
	key, err := storage.BuildKey(s.metadata, pallet, item, params...)
	if err != nil {
		return nil, err
	}
	raw, ok := s.state[string(key)]
	if !ok {
		raw = nil
	}
	return storage.DecodeValue(s.metadata, fn.Entry, raw)
}

func (s store) write(value any, pallet, item string, params ...any) error {
	fn, err := s.metadata.StorageEntry(pallet, item)
	if err != nil {
		return err
	}
	key, err := storage.BuildKey(s.metadata, pallet, item, params...)
	if err != nil {
		return err
	}
	encoded, err := s.metadata.Registry().Encode(value, fn.Entry.Type.Value)
	if err != nil {
		return fmt.Errorf("encoding %s.%s: %w", pallet, item, err)
	}
	s.state[string(key)] = encoded
	return nil
}

func (s store) exists(pallet, item string, params ...any) (bool, error) {
	key, err := storage.BuildKey(s.metadata, pallet, item, params...)
	if err != nil {
		return false, err
	}
	_, ok := s.state[string(key)]
	return ok, nil
}

// account is the part of frame_system::AccountInfo the node uses.
type account struct {
	nonce     uint32
	providers uint32
	free      *big.Int
	reserved  *big.Int
	frozen    *big.Int
	flags     *big.Int
}

func newAccount(free *big.Int) account {
	return account{
		providers: 1,
		free:      new(big.Int).Set(free),
		reserved:  new(big.Int),
		frozen:    new(big.Int),
		flags:     new(big.Int),
	}
}

func (s store) account(id []byte) (account, error) {
	value, err := s.read("System", "Account", id)
	if err != nil {
		return account{}, err
	}
	info, ok := value.(map[string]any)
	if !ok {
		return account{}, fmt.Errorf("account info is %T", value)
	}
	data, ok := info["data"].(map[string]any)
	if !ok {
		return account{}, fmt.Errorf("account data is %T", info["data"])
	}

	var acc account
	acc.nonce, _ = info["nonce"].(uint32)
	acc.providers, _ = info["providers"].(uint32)
	for name, target := range map[string]**big.Int{
		"free": &acc.free, "reserved": &acc.reserved, "frozen": &acc.frozen, "flags": &acc.flags,
	} {
		n, ok := data[name].(*big.Int)
		if !ok {
			return account{}, fmt.Errorf("account %s is %T", name, data[name])
		}
		*target = n
	}
	return acc, nil
}

func (s store) putAccount(id []byte, acc account) error {
	info := map[string]any{
		"nonce":       acc.nonce,
		"consumers":   uint32(0),
		"providers":   acc.providers,
		"sufficients": uint32(0),
		"data": map[string]any{
			"free":     acc.free,
			"reserved": acc.reserved,
			"frozen":   acc.frozen,
			"flags":    acc.flags,
		},
	}
	return s.write(info, "System", "Account", id)
}
