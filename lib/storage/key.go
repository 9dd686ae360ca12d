// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package storage builds storage keys and decodes storage values
// from runtime metadata.
package storage

import (
	"fmt"

	"github.com/ChainSafe/subclient/lib/codec"
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/metadata"
	"github.com/ChainSafe/subclient/pkg/scale"
)

// Key is a raw storage key.
type Key []byte

// Hex returns the 0x prefixed hex encoding of the key.
func (k Key) Hex() string {
	return common.BytesToHex(k)
}

func (k Key) String() string {
	return k.Hex()
}

// Prefix returns twox128(pallet prefix) ‖ twox128(item name), the
// prefix shared by every key of the storage entry.
func Prefix(m *metadata.Metadata, pallet, item string) (Key, error) {
	fn, err := m.StorageEntry(pallet, item)
	if err != nil {
		return nil, err
	}
	return prefixOf(fn), nil
}

func prefixOf(fn metadata.StorageFunction) Key {
	key := make(Key, 0, 32)
	key = append(key, common.Twox128([]byte(fn.Prefix))...)
	return append(key, common.Twox128([]byte(fn.Entry.Name))...)
}

// BuildKey returns the storage key of the entry for the given
// parameters. Plain entries take no parameter, maps take one parameter
// per declared hasher. Each parameter is encoded with its key type and
// hashed with its hasher.
func BuildKey(m *metadata.Metadata, pallet, item string, params ...any) (Key, error) {
	fn, err := m.StorageEntry(pallet, item)
	if err != nil {
		return nil, err
	}

	keyTypes, err := KeyTypes(m.Registry(), fn.Entry)
	if err != nil {
		return nil, err
	}
	if len(params) != len(keyTypes) {
		return nil, fmt.Errorf("%w: %s.%s expects %d, got %d",
			ErrParamCount, pallet, item, len(keyTypes), len(params))
	}

	key := prefixOf(fn)
	for i, param := range params {
		encoded, err := m.Registry().Encode(param, keyTypes[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s parameter %d: %w", ErrParamEncoding, pallet, item, i, err)
		}
		hashed, err := Hash(fn.Entry.Type.Hashers[i], encoded)
		if err != nil {
			return nil, err
		}
		key = append(key, hashed...)
	}
	return key, nil
}

// KeyTypes returns the type of each key parameter of the entry. A map
// with several hashers has a tuple key with one member per hasher.
func KeyTypes(registry *codec.Registry, entry metadata.StorageEntry) ([]codec.TypeID, error) {
	if !entry.Type.IsMap {
		return nil, nil
	}

	hashers := entry.Type.Hashers
	if len(hashers) == 1 {
		return []codec.TypeID{entry.Type.Key}, nil
	}

	t, err := registry.Type(entry.Type.Key)
	if err != nil {
		return nil, err
	}
	if t.Def.Kind != codec.KindTuple || len(t.Def.Tuple) != len(hashers) {
		return nil, fmt.Errorf("%w: %s has %d hashers for key %s",
			ErrKeyType, entry.Name, len(hashers), registry.TypeName(entry.Type.Key))
	}
	return t.Def.Tuple, nil
}

// DecodeKey returns the key parameters readable from a full storage key
// of the entry. Parameters behind opaque hashers are returned as nil.
func DecodeKey(m *metadata.Metadata, pallet, item string, key Key) ([]any, error) {
	fn, err := m.StorageEntry(pallet, item)
	if err != nil {
		return nil, err
	}
	keyTypes, err := KeyTypes(m.Registry(), fn.Entry)
	if err != nil {
		return nil, err
	}

	prefix := prefixOf(fn)
	if len(key) < len(prefix) || string(key[:len(prefix)]) != string(prefix) {
		return nil, fmt.Errorf("%w: key %s is not under %s.%s", ErrParamEncoding, key, pallet, item)
	}

	rest := []byte(key[len(prefix):])
	params := make([]any, len(keyTypes))
	for i, id := range keyTypes {
		hasher := fn.Entry.Type.Hashers[i]
		if !Transparent(hasher) {
			if i != len(keyTypes)-1 {
				return nil, fmt.Errorf("%w: opaque %s hasher before the last parameter",
					ErrParamEncoding, hasher)
			}
			return params, nil
		}

		n := digestLen(hasher)
		if len(rest) < n {
			return nil, fmt.Errorf("%w: key parameter %d", scale.ErrTruncated, i)
		}
		params[i], rest, err = m.Registry().Decode(rest[n:], id)
		if err != nil {
			return nil, fmt.Errorf("decoding key parameter %d: %w", i, err)
		}
	}
	return params, nil
}

// DecodeValue decodes a storage value of the entry. A nil raw value
// means the key is absent: Default entries decode their declared
// default, Optional entries return nil.
func DecodeValue(m *metadata.Metadata, entry metadata.StorageEntry, raw []byte) (any, error) {
	if raw == nil {
		if entry.Modifier == metadata.Optional {
			return nil, nil
		}
		raw = entry.Default
	}

	value, err := m.Registry().DecodeAll(raw, entry.Type.Value)
	if err != nil {
		return nil, fmt.Errorf("decoding %s value: %w", entry.Name, err)
	}
	return value, nil
}
