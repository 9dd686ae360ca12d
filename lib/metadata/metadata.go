// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package metadata parses runtime metadata V14 and V15 and answers
// pallet, storage, constant and call lookups against it.
package metadata

import (
	"bytes"
	"fmt"

	"github.com/ChainSafe/subclient/internal/log"
	"github.com/ChainSafe/subclient/lib/codec"
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/pkg/scale"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "metadata"))

// Magic is the metadata magic prefix "meta".
var Magic = [4]byte{'m', 'e', 't', 'a'}

// Supported metadata versions.
const (
	V14 uint8 = 14
	V15 uint8 = 15
)

// Pallet is the version independent view of a pallet.
type Pallet struct {
	Name      string
	Index     uint8
	Storage   *PalletStorage
	Calls     *codec.TypeID
	Event     *codec.TypeID
	Error     *codec.TypeID
	Constants []Constant
	Docs      []string
}

// ExtrinsicInfo describes the extrinsic format of the runtime.
type ExtrinsicInfo struct {
	Version          uint8
	AddressType      codec.TypeID
	CallType         codec.TypeID
	SignatureType    codec.TypeID
	ExtraType        codec.TypeID
	SignedExtensions []SignedExtension
}

// Metadata is parsed runtime metadata. It is immutable and safe for concurrent use.
type Metadata struct {
	version     uint8
	raw         []byte
	registry    *codec.Registry
	pallets     []Pallet
	byName      map[string]int
	byIndex     map[uint8]int
	extrinsic   ExtrinsicInfo
	runtimeType codec.TypeID
	apis        []RuntimeAPI
	outerEnums  *OuterEnums
}

// Load parses a metadata blob, "meta" ‖ version ‖ body. A blob wrapped
// in a compact length prefix, as returned by the Metadata_metadata
// runtime API, is accepted as well.
func Load(raw []byte) (*Metadata, error) {
	raw, err := unwrapOpaque(raw)
	if err != nil {
		return nil, err
	}

	version := raw[4]
	body := raw[5:]

	var m *Metadata
	switch version {
	case V14:
		var v14 RuntimeMetadataV14
		err = scale.Unmarshal(body, &v14)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding V14: %w", ErrInvalidStructure, err)
		}
		m, err = fromV14(v14)
	case V15:
		var v15 RuntimeMetadataV15
		err = scale.Unmarshal(body, &v15)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding V15: %w", ErrInvalidStructure, err)
		}
		m, err = fromV15(v15)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if err != nil {
		return nil, err
	}

	m.version = version
	m.raw = raw
	err = m.validate()
	if err != nil {
		return nil, err
	}

	logger.Debugf("loaded metadata V%d with %d pallets and %d types",
		version, len(m.pallets), m.registry.Len())
	return m, nil
}

// LoadHex parses a 0x prefixed hex metadata blob.
func LoadHex(s string) (*Metadata, error) {
	raw, err := common.HexToBytes(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStructure, err)
	}
	return Load(raw)
}

func unwrapOpaque(raw []byte) ([]byte, error) {
	if len(raw) >= 5 && bytes.Equal(raw[:4], Magic[:]) {
		return raw, nil
	}

	decoder := scale.NewDecoderBytes(raw)
	n, err := decoder.ReadLength()
	if err == nil {
		remaining, _ := decoder.Remaining()
		inner := raw[len(raw)-remaining:]
		if n == remaining && len(inner) >= 5 && bytes.Equal(inner[:4], Magic[:]) {
			return inner, nil
		}
	}
	return nil, ErrBadMagic
}

func fromV14(v RuntimeMetadataV14) (*Metadata, error) {
	registry, err := codec.NewRegistry(v.Types)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStructure, err)
	}

	pallets := make([]Pallet, len(v.Pallets))
	for i, p := range v.Pallets {
		pallets[i] = Pallet{
			Name:      p.Name,
			Index:     p.Index,
			Storage:   p.Storage,
			Calls:     typeOf(p.Calls),
			Event:     typeOf(p.Event),
			Error:     typeOf(p.Error),
			Constants: p.Constants,
		}
	}

	extrinsic := ExtrinsicInfo{
		Version:          v.Extrinsic.Version,
		SignedExtensions: v.Extrinsic.SignedExtensions,
	}
	params := map[string]*codec.TypeID{
		"Address":   &extrinsic.AddressType,
		"Call":      &extrinsic.CallType,
		"Signature": &extrinsic.SignatureType,
		"Extra":     &extrinsic.ExtraType,
	}
	for name, dst := range params {
		id, ok := registry.Param(v.Extrinsic.Type, name)
		if !ok {
			return nil, fmt.Errorf("%w: extrinsic type %d has no %s parameter",
				ErrInvalidStructure, v.Extrinsic.Type, name)
		}
		*dst = id
	}

	return newMetadata(registry, pallets, extrinsic, v.Type), nil
}

func fromV15(v RuntimeMetadataV15) (*Metadata, error) {
	registry, err := codec.NewRegistry(v.Types)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStructure, err)
	}

	pallets := make([]Pallet, len(v.Pallets))
	for i, p := range v.Pallets {
		pallets[i] = Pallet{
			Name:      p.Name,
			Index:     p.Index,
			Storage:   p.Storage,
			Calls:     typeOf(p.Calls),
			Event:     typeOf(p.Event),
			Error:     typeOf(p.Error),
			Constants: p.Constants,
			Docs:      p.Docs,
		}
	}

	extrinsic := ExtrinsicInfo(v.Extrinsic)
	m := newMetadata(registry, pallets, extrinsic, v.Type)
	m.apis = v.Apis
	outer := v.OuterEnums
	m.outerEnums = &outer
	return m, nil
}

func typeOf(p *PalletType) *codec.TypeID {
	if p == nil {
		return nil
	}
	id := p.Type
	return &id
}

func newMetadata(registry *codec.Registry, pallets []Pallet, extrinsic ExtrinsicInfo,
	runtimeType codec.TypeID) *Metadata {
	m := &Metadata{
		registry:    registry,
		pallets:     pallets,
		byName:      make(map[string]int, len(pallets)),
		byIndex:     make(map[uint8]int, len(pallets)),
		extrinsic:   extrinsic,
		runtimeType: runtimeType,
	}
	for i, p := range pallets {
		m.byName[p.Name] = i
		m.byIndex[p.Index] = i
	}
	return m
}

// validate checks names are unique and every type id resolves.
func (m *Metadata) validate() error {
	if len(m.byName) != len(m.pallets) || len(m.byIndex) != len(m.pallets) {
		return fmt.Errorf("%w: duplicate pallet name or index", ErrInvalidStructure)
	}

	var ids []codec.TypeID
	for _, p := range m.pallets {
		for _, id := range []*codec.TypeID{p.Calls, p.Event, p.Error} {
			if id != nil {
				ids = append(ids, *id)
			}
		}
		constants := make(map[string]struct{}, len(p.Constants))
		for _, c := range p.Constants {
			if _, dup := constants[c.Name]; dup {
				return fmt.Errorf("%w: duplicate constant %s.%s", ErrInvalidStructure, p.Name, c.Name)
			}
			constants[c.Name] = struct{}{}
			ids = append(ids, c.Type)
		}
		if p.Storage != nil {
			seen := make(map[string]struct{}, len(p.Storage.Entries))
			for _, e := range p.Storage.Entries {
				if _, dup := seen[e.Name]; dup {
					return fmt.Errorf("%w: duplicate storage entry %s.%s", ErrInvalidStructure, p.Name, e.Name)
				}
				seen[e.Name] = struct{}{}
				ids = append(ids, e.Type.Value)
				if e.Type.IsMap {
					ids = append(ids, e.Type.Key)
				}
			}
		}
	}
	x := m.extrinsic
	ids = append(ids, x.AddressType, x.CallType, x.SignatureType, x.ExtraType)
	for _, ext := range x.SignedExtensions {
		ids = append(ids, ext.Type, ext.AdditionalSigned)
	}

	for _, id := range ids {
		if _, err := m.registry.Type(id); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidStructure, err)
		}
	}

	for _, p := range m.pallets {
		if p.Calls == nil {
			continue
		}
		t, _ := m.registry.Type(*p.Calls)
		if t.Def.Kind != codec.KindVariant {
			return fmt.Errorf("%w: calls of %s are not an enum", ErrInvalidStructure, p.Name)
		}
	}
	return nil
}

// Version returns the metadata version.
func (m *Metadata) Version() uint8 { return m.version }

// Raw returns the metadata blob, "meta" ‖ version ‖ body.
func (m *Metadata) Raw() []byte { return m.raw }

// Registry returns the type registry.
func (m *Metadata) Registry() *codec.Registry { return m.registry }

// Extrinsic returns the extrinsic format description.
func (m *Metadata) Extrinsic() ExtrinsicInfo { return m.extrinsic }

// RuntimeAPIs returns the runtime APIs, only present in V15.
func (m *Metadata) RuntimeAPIs() []RuntimeAPI { return m.apis }

// OuterEnums returns the runtime wide enums, only present in V15.
func (m *Metadata) OuterEnums() (OuterEnums, bool) {
	if m.outerEnums == nil {
		return OuterEnums{}, false
	}
	return *m.outerEnums, true
}

// Pallets returns the pallets in declaration order.
func (m *Metadata) Pallets() []Pallet { return m.pallets }

// Pallet returns the named pallet.
func (m *Metadata) Pallet(name string) (*Pallet, error) {
	i, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPalletNotFound, name)
	}
	return &m.pallets[i], nil
}

// PalletByIndex returns the pallet with the given index.
func (m *Metadata) PalletByIndex(index uint8) (*Pallet, error) {
	i, ok := m.byIndex[index]
	if !ok {
		return nil, fmt.Errorf("%w: index %d", ErrPalletNotFound, index)
	}
	return &m.pallets[i], nil
}
