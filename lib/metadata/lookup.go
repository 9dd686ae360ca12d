// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"
	"iter"

	"github.com/ChainSafe/subclient/lib/codec"
)

// ConstantInfo is a constant together with its pallet.
type ConstantInfo struct {
	Pallet   string
	Constant Constant
	TypeName string
}

// StorageFunction is a storage entry together with its pallet.
type StorageFunction struct {
	Pallet string
	Prefix string
	Entry  StorageEntry
}

// CallInfo describes a callable function of a pallet.
type CallInfo struct {
	Pallet      string
	PalletIndex uint8
	Name        string
	Index       uint8
	Fields      []codec.Field
	Docs        []string
}

// EventInfo describes an event of a pallet.
type EventInfo struct {
	Pallet      string
	PalletIndex uint8
	Name        string
	Index       uint8
	Fields      []codec.Field
	Docs        []string
}

// Constant returns the named constant decoded through its declared type.
func (m *Metadata) Constant(pallet, name string) (value any, info ConstantInfo, err error) {
	p, err := m.Pallet(pallet)
	if err != nil {
		return nil, info, err
	}

	for _, c := range p.Constants {
		if c.Name != name {
			continue
		}
		value, err = m.registry.DecodeAll(c.Value, c.Type)
		if err != nil {
			return nil, info, fmt.Errorf("decoding constant %s.%s: %w", pallet, name, err)
		}
		info = ConstantInfo{Pallet: p.Name, Constant: c, TypeName: m.registry.TypeName(c.Type)}
		return value, info, nil
	}
	return nil, info, fmt.Errorf("%w: %s.%s", ErrConstantNotFound, pallet, name)
}

// Constants returns every constant of every pallet. The sequence is
// lazy and can be iterated any number of times.
func (m *Metadata) Constants() iter.Seq[ConstantInfo] {
	return func(yield func(ConstantInfo) bool) {
		for _, p := range m.pallets {
			for _, c := range p.Constants {
				info := ConstantInfo{Pallet: p.Name, Constant: c, TypeName: m.registry.TypeName(c.Type)}
				if !yield(info) {
					return
				}
			}
		}
	}
}

// StorageFunctions returns every storage entry of every pallet. The
// sequence is lazy and can be iterated any number of times.
func (m *Metadata) StorageFunctions() iter.Seq[StorageFunction] {
	return func(yield func(StorageFunction) bool) {
		for _, p := range m.pallets {
			if p.Storage == nil {
				continue
			}
			for _, e := range p.Storage.Entries {
				if !yield(StorageFunction{Pallet: p.Name, Prefix: p.Storage.Prefix, Entry: e}) {
					return
				}
			}
		}
	}
}

// StorageEntry returns the named storage entry.
func (m *Metadata) StorageEntry(pallet, item string) (StorageFunction, error) {
	p, err := m.Pallet(pallet)
	if err != nil {
		return StorageFunction{}, err
	}
	if p.Storage != nil {
		for _, e := range p.Storage.Entries {
			if e.Name == item {
				return StorageFunction{Pallet: p.Name, Prefix: p.Storage.Prefix, Entry: e}, nil
			}
		}
	}
	return StorageFunction{}, fmt.Errorf("%w: %s.%s", ErrStorageNotFound, pallet, item)
}

// Call returns the named call function.
func (m *Metadata) Call(pallet, function string) (CallInfo, error) {
	p, err := m.Pallet(pallet)
	if err != nil {
		return CallInfo{}, err
	}
	if p.Calls == nil {
		return CallInfo{}, fmt.Errorf("%w: %s has no calls", ErrCallNotFound, pallet)
	}

	t, err := m.registry.Type(*p.Calls)
	if err != nil {
		return CallInfo{}, err
	}
	for _, v := range t.Def.Variants {
		if v.Name == function {
			return newCallInfo(p, v), nil
		}
	}
	return CallInfo{}, fmt.Errorf("%w: %s.%s", ErrCallNotFound, pallet, function)
}

// CallByIndex returns the call function with the given pallet and call index.
func (m *Metadata) CallByIndex(palletIndex, callIndex uint8) (CallInfo, error) {
	p, err := m.PalletByIndex(palletIndex)
	if err != nil {
		return CallInfo{}, err
	}
	if p.Calls == nil {
		return CallInfo{}, fmt.Errorf("%w: %s has no calls", ErrCallNotFound, p.Name)
	}

	t, err := m.registry.Type(*p.Calls)
	if err != nil {
		return CallInfo{}, err
	}
	for _, v := range t.Def.Variants {
		if v.Index == callIndex {
			return newCallInfo(p, v), nil
		}
	}
	return CallInfo{}, fmt.Errorf("%w: %s index %d", ErrCallNotFound, p.Name, callIndex)
}

func newCallInfo(p *Pallet, v codec.VariantDef) CallInfo {
	return CallInfo{
		Pallet:      p.Name,
		PalletIndex: p.Index,
		Name:        v.Name,
		Index:       v.Index,
		Fields:      v.Fields,
		Docs:        v.Docs,
	}
}

// Event returns the named event of a pallet.
func (m *Metadata) Event(pallet, name string) (EventInfo, error) {
	p, err := m.Pallet(pallet)
	if err != nil {
		return EventInfo{}, err
	}
	if p.Event == nil {
		return EventInfo{}, fmt.Errorf("%w: %s has no events", ErrEventNotFound, pallet)
	}

	t, err := m.registry.Type(*p.Event)
	if err != nil {
		return EventInfo{}, err
	}
	for _, v := range t.Def.Variants {
		if v.Name == name {
			return EventInfo{
				Pallet:      p.Name,
				PalletIndex: p.Index,
				Name:        v.Name,
				Index:       v.Index,
				Fields:      v.Fields,
				Docs:        v.Docs,
			}, nil
		}
	}
	return EventInfo{}, fmt.Errorf("%w: %s.%s", ErrEventNotFound, pallet, name)
}
