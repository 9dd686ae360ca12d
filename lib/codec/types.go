// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ChainSafe/subclient/pkg/scale"
)

// TypeID references a type of a portable registry.
// It is SCALE encoded as a compact integer.
type TypeID uint32

// MarshalSCALE encodes the id as a compact integer.
func (id TypeID) MarshalSCALE() ([]byte, error) {
	return scale.CompactUint(uint64(id)), nil
}

// UnmarshalSCALE decodes a compact integer id.
func (id *TypeID) UnmarshalSCALE(reader io.Reader) error {
	n, err := scale.NewDecoder(reader).ReadCompactUint()
	if err != nil {
		return err
	}
	if n > uint64(^uint32(0)) {
		return fmt.Errorf("%w: type id %d", ErrOutOfRange, n)
	}
	*id = TypeID(n)
	return nil
}

// PortableType is a registry entry.
type PortableType struct {
	ID   TypeID
	Type Type
}

// Type describes a registry type.
type Type struct {
	Path   []string
	Params []TypeParam
	Def    TypeDef
	Docs   []string
}

// TypeParam is a generic parameter of a type. Type is nil
// for parameters which are not part of the type definition.
type TypeParam struct {
	Name string
	Type *TypeID
}

// Field is a field of a composite or of a variant.
type Field struct {
	Name     *string
	Type     TypeID
	TypeName *string
	Docs     []string
}

// VariantDef is a variant of an enum type.
type VariantDef struct {
	Name   string
	Fields []Field
	Index  uint8
	Docs   []string
}

// TypeDefKind is the kind of a type definition.
type TypeDefKind uint8

// Type definition kinds, in their encoding order.
const (
	KindComposite TypeDefKind = iota
	KindVariant
	KindSequence
	KindArray
	KindTuple
	KindPrimitive
	KindCompact
	KindBitSequence
)

func (k TypeDefKind) String() string {
	switch k {
	case KindComposite:
		return "composite"
	case KindVariant:
		return "variant"
	case KindSequence:
		return "sequence"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindPrimitive:
		return "primitive"
	case KindCompact:
		return "compact"
	case KindBitSequence:
		return "bit sequence"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Primitive is a primitive type.
type Primitive uint8

// Primitives, in their encoding order.
const (
	Bool Primitive = iota
	Char
	Str
	U8
	U16
	U32
	U64
	U128
	U256
	I8
	I16
	I32
	I64
	I128
	I256
)

var primitiveNames = [...]string{
	"bool", "char", "str", "u8", "u16", "u32", "u64", "u128", "u256",
	"i8", "i16", "i32", "i64", "i128", "i256",
}

func (p Primitive) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return fmt.Sprintf("primitive(%d)", uint8(p))
}

// size returns the byte width of integer primitives and whether they are signed.
func (p Primitive) size() (size int, signed bool) {
	switch p {
	case U8:
		return 1, false
	case U16:
		return 2, false
	case U32:
		return 4, false
	case U64:
		return 8, false
	case U128:
		return 16, false
	case U256:
		return 32, false
	case I8:
		return 1, true
	case I16:
		return 2, true
	case I32:
		return 4, true
	case I64:
		return 8, true
	case I128:
		return 16, true
	case I256:
		return 32, true
	}
	return 0, false
}

// TypeDef is the definition of a type. Only the members
// relevant to Kind are set.
type TypeDef struct {
	Kind TypeDefKind
	// Fields of a composite.
	Fields []Field
	// Variants of an enum.
	Variants []VariantDef
	// Elem is the element type of a sequence, array or compact.
	Elem TypeID
	// Len is the length of an array.
	Len uint32
	// Tuple holds the tuple member types.
	Tuple []TypeID
	// Primitive is the primitive type.
	Primitive Primitive
	// BitStore and BitOrder describe a bit sequence.
	BitStore TypeID
	BitOrder TypeID
}

type arrayDef struct {
	Len  uint32
	Elem TypeID
}

type bitSequenceDef struct {
	Store TypeID
	Order TypeID
}

// MarshalSCALE encodes the type definition as its enum representation.
func (td TypeDef) MarshalSCALE() ([]byte, error) {
	var body interface{}
	switch td.Kind {
	case KindComposite:
		body = td.Fields
	case KindVariant:
		body = td.Variants
	case KindSequence, KindCompact:
		body = td.Elem
	case KindArray:
		body = arrayDef{Len: td.Len, Elem: td.Elem}
	case KindTuple:
		body = td.Tuple
	case KindPrimitive:
		body = uint8(td.Primitive)
	case KindBitSequence:
		body = bitSequenceDef{Store: td.BitStore, Order: td.BitOrder}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownTypeDefKind, td.Kind)
	}

	encoded, err := scale.Marshal(body)
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(td.Kind)}, encoded...), nil
}

// UnmarshalSCALE decodes the enum representation of a type definition.
func (td *TypeDef) UnmarshalSCALE(reader io.Reader) (err error) {
	decoder := scale.NewDecoder(reader)
	kind, err := decoder.ReadByte()
	if err != nil {
		return err
	}

	*td = TypeDef{Kind: TypeDefKind(kind)}
	switch td.Kind {
	case KindComposite:
		return decoder.Decode(&td.Fields)
	case KindVariant:
		return decoder.Decode(&td.Variants)
	case KindSequence, KindCompact:
		return decoder.Decode(&td.Elem)
	case KindArray:
		var def arrayDef
		err = decoder.Decode(&def)
		td.Len, td.Elem = def.Len, def.Elem
		return err
	case KindTuple:
		return decoder.Decode(&td.Tuple)
	case KindPrimitive:
		var p uint8
		err = decoder.Decode(&p)
		td.Primitive = Primitive(p)
		if err == nil && int(p) >= len(primitiveNames) {
			return fmt.Errorf("%w: primitive %d", ErrUnknownTypeDefKind, p)
		}
		return err
	case KindBitSequence:
		var def bitSequenceDef
		err = decoder.Decode(&def)
		td.BitStore, td.BitOrder = def.Store, def.Order
		return err
	default:
		return fmt.Errorf("%w: %d", ErrUnknownTypeDefKind, kind)
	}
}

// references returns the type ids referenced by the definition.
func (td TypeDef) references() (ids []TypeID) {
	switch td.Kind {
	case KindComposite:
		for _, f := range td.Fields {
			ids = append(ids, f.Type)
		}
	case KindVariant:
		for _, v := range td.Variants {
			for _, f := range v.Fields {
				ids = append(ids, f.Type)
			}
		}
	case KindSequence, KindArray, KindCompact:
		ids = append(ids, td.Elem)
	case KindTuple:
		ids = append(ids, td.Tuple...)
	case KindBitSequence:
		ids = append(ids, td.BitStore, td.BitOrder)
	}
	return ids
}

// EncodeRegistry returns the SCALE encoding of a portable registry.
func EncodeRegistry(types []PortableType) ([]byte, error) {
	var buf bytes.Buffer
	err := scale.NewEncoder(&buf).Encode(types)
	return buf.Bytes(), err
}
