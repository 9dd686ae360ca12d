// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package codec

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func idPtr(id TypeID) *TypeID { return &id }

var bigIntComparer = cmp.Comparer(func(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
})

const (
	idU8 TypeID = iota
	idU32
	idU128
	idBool
	idStr
	idBytes
	idBytes4
	idCompact
	idNamed
	idOptionU32
	idEnum
	idTuple
	idVecU32
	idI16
	idI128
	idBitVec
	idLsb0
	idNewtype
	idChar
	idUnit
	idAccountID20
	idBytes20
	idUnnamed
	idBoundedVec
	idOrderedSet
	idOptionOptionU32
	idVecUnit
)

func primitive(id TypeID, p Primitive) PortableType {
	return PortableType{ID: id, Type: Type{Def: TypeDef{Kind: KindPrimitive, Primitive: p}}}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	types := []PortableType{
		primitive(idU8, U8),
		primitive(idU32, U32),
		primitive(idU128, U128),
		primitive(idBool, Bool),
		primitive(idStr, Str),
		{ID: idBytes, Type: Type{Def: TypeDef{Kind: KindSequence, Elem: idU8}}},
		{ID: idBytes4, Type: Type{Def: TypeDef{Kind: KindArray, Len: 4, Elem: idU8}}},
		{ID: idCompact, Type: Type{Def: TypeDef{Kind: KindCompact, Elem: idU128}}},
		{ID: idNamed, Type: Type{
			Path: []string{"test", "Named"},
			Def: TypeDef{Kind: KindComposite, Fields: []Field{
				{Name: strPtr("a"), Type: idU32},
				{Name: strPtr("b"), Type: idBytes},
			}},
		}},
		{ID: idOptionU32, Type: Type{
			Path:   []string{"Option"},
			Params: []TypeParam{{Name: "T", Type: idPtr(idU32)}},
			Def: TypeDef{Kind: KindVariant, Variants: []VariantDef{
				{Name: "None", Index: 0},
				{Name: "Some", Index: 1, Fields: []Field{{Type: idU32}}},
			}},
		}},
		{ID: idEnum, Type: Type{
			Path: []string{"test", "Enum"},
			Def: TypeDef{Kind: KindVariant, Variants: []VariantDef{
				{Name: "A", Index: 0},
				{Name: "B", Index: 1, Fields: []Field{{Type: idU32}}},
				{Name: "C", Index: 3, Fields: []Field{{Name: strPtr("x"), Type: idBool}}},
			}},
		}},
		{ID: idTuple, Type: Type{Def: TypeDef{Kind: KindTuple, Tuple: []TypeID{idU8, idStr}}}},
		{ID: idVecU32, Type: Type{Def: TypeDef{Kind: KindSequence, Elem: idU32}}},
		primitive(idI16, I16),
		primitive(idI128, I128),
		{ID: idBitVec, Type: Type{Def: TypeDef{Kind: KindBitSequence, BitStore: idU8, BitOrder: idLsb0}}},
		{ID: idLsb0, Type: Type{
			Path: []string{"bitvec", "order", "Lsb0"},
			Def:  TypeDef{Kind: KindComposite},
		}},
		{ID: idNewtype, Type: Type{
			Path: []string{"test", "Newtype"},
			Def:  TypeDef{Kind: KindComposite, Fields: []Field{{Type: idU32}}},
		}},
		primitive(idChar, Char),
		{ID: idUnit, Type: Type{Def: TypeDef{Kind: KindTuple}}},
		{ID: idAccountID20, Type: Type{
			Path: []string{"account", "AccountId20"},
			Def:  TypeDef{Kind: KindComposite, Fields: []Field{{Type: idBytes20, TypeName: strPtr("[u8; 20]")}}},
		}},
		{ID: idBytes20, Type: Type{Def: TypeDef{Kind: KindArray, Len: 20, Elem: idU8}}},
		{ID: idUnnamed, Type: Type{Def: TypeDef{Kind: KindComposite, Fields: []Field{
			{Type: idU8}, {Type: idBool},
		}}}},
		{ID: idBoundedVec, Type: Type{
			Path: []string{"bounded_collections", "BoundedVec"},
			Def:  TypeDef{Kind: KindComposite, Fields: []Field{{Type: idVecU32}}},
		}},
		{ID: idOrderedSet, Type: Type{
			Path: []string{"pallet_parachain_staking", "set", "BoundedOrderedSet"},
			Def:  TypeDef{Kind: KindComposite, Fields: []Field{{Type: idBoundedVec}}},
		}},
		{ID: idOptionOptionU32, Type: Type{
			Path:   []string{"Option"},
			Params: []TypeParam{{Name: "T", Type: idPtr(idOptionU32)}},
			Def: TypeDef{Kind: KindVariant, Variants: []VariantDef{
				{Name: "None", Index: 0},
				{Name: "Some", Index: 1, Fields: []Field{{Type: idOptionU32}}},
			}},
		}},
		{ID: idVecUnit, Type: Type{Def: TypeDef{Kind: KindSequence, Elem: idUnit}}},
	}

	registry, err := NewRegistry(types)
	require.NoError(t, err)
	return registry
}
