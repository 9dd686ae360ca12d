// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package codec

import (
	"fmt"
	"strings"
)

// Registry is a portable type registry. It is immutable once built
// and safe for concurrent use.
type Registry struct {
	types map[TypeID]*Type
	order []TypeID
}

// NewRegistry builds a registry from its entries, checking that
// ids are unique and that every referenced id resolves.
func NewRegistry(types []PortableType) (*Registry, error) {
	r := &Registry{
		types: make(map[TypeID]*Type, len(types)),
		order: make([]TypeID, 0, len(types)),
	}
	for i := range types {
		id := types[i].ID
		if _, exists := r.types[id]; exists {
			return nil, fmt.Errorf("%w: duplicate type id %d", ErrUnknownType, id)
		}
		r.types[id] = &types[i].Type
		r.order = append(r.order, id)
	}

	for _, id := range r.order {
		for _, ref := range r.types[id].Def.references() {
			if _, ok := r.types[ref]; !ok {
				return nil, fmt.Errorf("%w: %d referenced by type %d", ErrUnknownType, ref, id)
			}
		}
		for _, param := range r.types[id].Params {
			if param.Type == nil {
				continue
			}
			if _, ok := r.types[*param.Type]; !ok {
				return nil, fmt.Errorf("%w: %d parameter of type %d", ErrUnknownType, *param.Type, id)
			}
		}
	}
	return r, nil
}

// Len returns the number of types in the registry.
func (r *Registry) Len() int { return len(r.order) }

// Type returns the type with the given id.
func (r *Registry) Type(id TypeID) (*Type, error) {
	t, ok := r.types[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, id)
	}
	return t, nil
}

// Types returns the registry entries in their original order.
func (r *Registry) Types() []PortableType {
	out := make([]PortableType, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, PortableType{ID: id, Type: *r.types[id]})
	}
	return out
}

// Param returns the type of the named generic parameter of type id.
func (r *Registry) Param(id TypeID, name string) (TypeID, bool) {
	t, ok := r.types[id]
	if !ok {
		return 0, false
	}
	for _, param := range t.Params {
		if param.Name == name && param.Type != nil {
			return *param.Type, true
		}
	}
	return 0, false
}

// OptionOf returns the inner type when id is an Option.
func (r *Registry) OptionOf(id TypeID) (inner TypeID, ok bool) {
	t, ok := r.types[id]
	if !ok {
		return 0, false
	}
	return optionInner(t)
}

func optionInner(t *Type) (inner TypeID, ok bool) {
	if len(t.Path) != 1 || t.Path[0] != "Option" || t.Def.Kind != KindVariant || len(t.Def.Variants) != 2 {
		return 0, false
	}
	for _, v := range t.Def.Variants {
		switch {
		case v.Name == "None" && v.Index == 0 && len(v.Fields) == 0:
		case v.Name == "Some" && v.Index == 1 && len(v.Fields) == 1:
			inner = v.Fields[0].Type
		default:
			return 0, false
		}
	}
	return inner, true
}

func (r *Registry) isOption(id TypeID) bool {
	t, ok := r.types[id]
	if !ok {
		return false
	}
	_, isOption := optionInner(t)
	return isOption
}

// IsEmpty returns true when values of the type encode to zero bytes.
func (r *Registry) IsEmpty(id TypeID) bool {
	return r.isEmpty(id, 0)
}

func (r *Registry) isEmpty(id TypeID, depth int) bool {
	t, ok := r.types[id]
	if !ok || depth > maxDepth {
		return false
	}
	switch t.Def.Kind {
	case KindComposite:
		for _, f := range t.Def.Fields {
			if !r.isEmpty(f.Type, depth+1) {
				return false
			}
		}
		return true
	case KindTuple:
		for _, member := range t.Def.Tuple {
			if !r.isEmpty(member, depth+1) {
				return false
			}
		}
		return true
	case KindArray:
		return t.Def.Len == 0 || r.isEmpty(t.Def.Elem, depth+1)
	default:
		return false
	}
}

// TypeName returns a human readable name of the type.
func (r *Registry) TypeName(id TypeID) string {
	return r.typeName(id, 0)
}

func (r *Registry) typeName(id TypeID, depth int) string {
	t, ok := r.types[id]
	if !ok {
		return fmt.Sprintf("<unknown %d>", id)
	}
	if depth > 8 {
		return "..."
	}
	if len(t.Path) > 0 {
		name := t.Path[len(t.Path)-1]
		var params []string
		for _, param := range t.Params {
			if param.Type != nil {
				params = append(params, r.typeName(*param.Type, depth+1))
			}
		}
		if len(params) > 0 {
			name += "<" + strings.Join(params, ", ") + ">"
		}
		return name
	}

	switch t.Def.Kind {
	case KindPrimitive:
		return t.Def.Primitive.String()
	case KindSequence:
		return "Vec<" + r.typeName(t.Def.Elem, depth+1) + ">"
	case KindArray:
		return fmt.Sprintf("[%s; %d]", r.typeName(t.Def.Elem, depth+1), t.Def.Len)
	case KindCompact:
		return "Compact<" + r.typeName(t.Def.Elem, depth+1) + ">"
	case KindTuple:
		members := make([]string, len(t.Def.Tuple))
		for i, member := range t.Def.Tuple {
			members[i] = r.typeName(member, depth+1)
		}
		return "(" + strings.Join(members, ", ") + ")"
	case KindBitSequence:
		return "BitVec"
	default:
		return t.Def.Kind.String()
	}
}
