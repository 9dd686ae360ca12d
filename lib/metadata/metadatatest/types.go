// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metadatatest

import (
	"github.com/ChainSafe/subclient/lib/codec"
)

// typeBuilder accumulates registry entries, ids are assigned in order.
type typeBuilder struct {
	types      []codec.PortableType
	primitives map[codec.Primitive]codec.TypeID
}

func newTypeBuilder() *typeBuilder {
	return &typeBuilder{primitives: make(map[codec.Primitive]codec.TypeID)}
}

func (b *typeBuilder) add(t codec.Type) codec.TypeID {
	id := codec.TypeID(len(b.types))
	b.types = append(b.types, codec.PortableType{ID: id, Type: t})
	return id
}

func (b *typeBuilder) prim(p codec.Primitive) codec.TypeID {
	if id, ok := b.primitives[p]; ok {
		return id
	}
	id := b.add(codec.Type{Def: codec.TypeDef{Kind: codec.KindPrimitive, Primitive: p}})
	b.primitives[p] = id
	return id
}

func (b *typeBuilder) seq(elem codec.TypeID) codec.TypeID {
	return b.add(codec.Type{Def: codec.TypeDef{Kind: codec.KindSequence, Elem: elem}})
}

func (b *typeBuilder) array(n uint32, elem codec.TypeID) codec.TypeID {
	return b.add(codec.Type{Def: codec.TypeDef{Kind: codec.KindArray, Len: n, Elem: elem}})
}

func (b *typeBuilder) compact(elem codec.TypeID) codec.TypeID {
	return b.add(codec.Type{Def: codec.TypeDef{Kind: codec.KindCompact, Elem: elem}})
}

func (b *typeBuilder) tuple(members ...codec.TypeID) codec.TypeID {
	return b.add(codec.Type{Def: codec.TypeDef{Kind: codec.KindTuple, Tuple: members}})
}

func (b *typeBuilder) composite(path string, fields ...codec.Field) codec.TypeID {
	return b.add(codec.Type{Path: splitPath(path), Def: codec.TypeDef{Kind: codec.KindComposite, Fields: fields}})
}

func (b *typeBuilder) variant(path string, variants ...codec.VariantDef) codec.TypeID {
	return b.add(codec.Type{Path: splitPath(path), Def: codec.TypeDef{Kind: codec.KindVariant, Variants: variants}})
}

func (b *typeBuilder) option(inner codec.TypeID) codec.TypeID {
	return b.add(codec.Type{
		Path:   []string{"Option"},
		Params: []codec.TypeParam{{Name: "T", Type: &inner}},
		Def: codec.TypeDef{Kind: codec.KindVariant, Variants: []codec.VariantDef{
			{Name: "None", Index: 0},
			{Name: "Some", Index: 1, Fields: []codec.Field{unnamed(inner)}},
		}},
	})
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i+1 < len(path); i++ {
		if path[i] == ':' && path[i+1] == ':' {
			out = append(out, path[start:i])
			start = i + 2
			i++
		}
	}
	return append(out, path[start:])
}

func named(name string, id codec.TypeID, typeName string) codec.Field {
	f := codec.Field{Name: &name, Type: id}
	if typeName != "" {
		f.TypeName = &typeName
	}
	return f
}

func unnamed(id codec.TypeID) codec.Field {
	return codec.Field{Type: id}
}

func variant(name string, index uint8, fields ...codec.Field) codec.VariantDef {
	return codec.VariantDef{Name: name, Index: index, Fields: fields}
}
