// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"
	"io"

	"github.com/ChainSafe/subclient/lib/codec"
	"github.com/ChainSafe/subclient/pkg/scale"
)

// Hasher is a storage key hasher.
type Hasher uint8

// Storage hashers, in their encoding order.
const (
	Blake2_128 Hasher = iota
	Blake2_256
	Blake2_128Concat
	Twox128
	Twox256
	Twox64Concat
	Identity
)

func (h Hasher) String() string {
	switch h {
	case Blake2_128:
		return "Blake2_128"
	case Blake2_256:
		return "Blake2_256"
	case Blake2_128Concat:
		return "Blake2_128Concat"
	case Twox128:
		return "Twox128"
	case Twox256:
		return "Twox256"
	case Twox64Concat:
		return "Twox64Concat"
	case Identity:
		return "Identity"
	default:
		return fmt.Sprintf("Hasher(%d)", uint8(h))
	}
}

// Modifier tells what a storage query returns when the key is absent.
type Modifier uint8

const (
	// Optional entries return nothing when absent.
	Optional Modifier = iota
	// Default entries return their declared default when absent.
	Default
)

// StorageEntryType is either a plain value or a map.
type StorageEntryType struct {
	IsMap   bool
	Hashers []Hasher
	Key     codec.TypeID
	Value   codec.TypeID
}

type storageMap struct {
	Hashers []Hasher
	Key     codec.TypeID
	Value   codec.TypeID
}

// MarshalSCALE encodes the storage entry type enum.
func (st StorageEntryType) MarshalSCALE() ([]byte, error) {
	if !st.IsMap {
		value, err := scale.Marshal(st.Value)
		return append([]byte{0}, value...), err
	}
	body, err := scale.Marshal(storageMap{Hashers: st.Hashers, Key: st.Key, Value: st.Value})
	return append([]byte{1}, body...), err
}

// UnmarshalSCALE decodes the storage entry type enum.
func (st *StorageEntryType) UnmarshalSCALE(reader io.Reader) error {
	decoder := scale.NewDecoder(reader)
	kind, err := decoder.ReadByte()
	if err != nil {
		return err
	}

	switch kind {
	case 0:
		*st = StorageEntryType{}
		return decoder.Decode(&st.Value)
	case 1:
		var m storageMap
		err = decoder.Decode(&m)
		if err != nil {
			return err
		}
		*st = StorageEntryType{IsMap: true, Hashers: m.Hashers, Key: m.Key, Value: m.Value}
		return nil
	default:
		return fmt.Errorf("%w: storage entry type %d", ErrInvalidStructure, kind)
	}
}

// StorageEntry describes a storage item of a pallet.
type StorageEntry struct {
	Name     string
	Modifier Modifier
	Type     StorageEntryType
	Default  []byte
	Docs     []string
}

// PalletStorage holds the storage items of a pallet.
type PalletStorage struct {
	Prefix  string
	Entries []StorageEntry
}

// PalletType references the calls, events or errors enum of a pallet.
type PalletType struct {
	Type codec.TypeID
}

// Constant is a pallet constant with its SCALE encoded value.
type Constant struct {
	Name  string
	Type  codec.TypeID
	Value []byte
	Docs  []string
}

// PalletV14 is a pallet of metadata V14.
type PalletV14 struct {
	Name      string
	Storage   *PalletStorage
	Calls     *PalletType
	Event     *PalletType
	Constants []Constant
	Error     *PalletType
	Index     uint8
}

// PalletV15 is a pallet of metadata V15.
type PalletV15 struct {
	Name      string
	Storage   *PalletStorage
	Calls     *PalletType
	Event     *PalletType
	Constants []Constant
	Error     *PalletType
	Index     uint8
	Docs      []string
}

// SignedExtension is a signed extension of extrinsics.
type SignedExtension struct {
	Identifier       string
	Type             codec.TypeID
	AdditionalSigned codec.TypeID
}

// ExtrinsicV14 is the extrinsic metadata of V14.
type ExtrinsicV14 struct {
	Type             codec.TypeID
	Version          uint8
	SignedExtensions []SignedExtension
}

// ExtrinsicV15 is the extrinsic metadata of V15.
type ExtrinsicV15 struct {
	Version          uint8
	AddressType      codec.TypeID
	CallType         codec.TypeID
	SignatureType    codec.TypeID
	ExtraType        codec.TypeID
	SignedExtensions []SignedExtension
}

// RuntimeAPIParam is a parameter of a runtime API method.
type RuntimeAPIParam struct {
	Name string
	Type codec.TypeID
}

// RuntimeAPIMethod is a runtime API method.
type RuntimeAPIMethod struct {
	Name   string
	Inputs []RuntimeAPIParam
	Output codec.TypeID
	Docs   []string
}

// RuntimeAPI is a runtime API trait.
type RuntimeAPI struct {
	Name    string
	Methods []RuntimeAPIMethod
	Docs    []string
}

// OuterEnums references the runtime wide call, event and error enums.
type OuterEnums struct {
	CallType  codec.TypeID
	EventType codec.TypeID
	ErrorType codec.TypeID
}

// CustomValue is a custom metadata entry.
type CustomValue struct {
	Name  string
	Type  codec.TypeID
	Value []byte
}

// RuntimeMetadataV14 is the SCALE layout of metadata V14.
type RuntimeMetadataV14 struct {
	Types     []codec.PortableType
	Pallets   []PalletV14
	Extrinsic ExtrinsicV14
	Type      codec.TypeID
}

// RuntimeMetadataV15 is the SCALE layout of metadata V15.
type RuntimeMetadataV15 struct {
	Types      []codec.PortableType
	Pallets    []PalletV15
	Extrinsic  ExtrinsicV15
	Type       codec.TypeID
	Apis       []RuntimeAPI
	OuterEnums OuterEnums
	Custom     []CustomValue
}
