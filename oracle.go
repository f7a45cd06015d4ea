// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package codec

import (
	"reflect"
	"strings"
)

// Oracle is the platform-supplied function yielding a [TypeDescriptor]
// for a type (§6, §9). The Go binding implements it directly on top of
// reflect, since Go's own reflection system already gives us
// structural metadata at negligible cost compared to a code-generation
// step; describeType is pure with respect to a given reflect.Type
// and is cached by [Core] (see cache.go), matching §6's "pure; may
// cache internally".
type Oracle func(typ reflect.Type) (*TypeDescriptor, error)

// defaultOracle builds a TypeDescriptor from Go's reflect package.
// registry is consulted to resolve enum registrations (§4.D); it may
// be nil, in which case no type is ever treated as an enum.
func defaultOracle(registry *Registry) Oracle {
	return func(typ reflect.Type) (*TypeDescriptor, error) {
		return describeType(typ, registry)
	}
}

func describeType(typ reflect.Type, registry *Registry) (*TypeDescriptor, error) {
	if typ == nil {
		return nil, newError(CategoryStructuralMismatch, nil, "", "nil type")
	}

	if typ.Kind() == reflect.String && typ == reflect.TypeFor[string]() {
		return &TypeDescriptor{Kind: KindString, Type: typ}, nil
	}

	if registry != nil {
		if names, ok := registry.enumNames(typ); ok {
			return &TypeDescriptor{Kind: KindEnum, Type: typ, EnumNames: names}, nil
		}
	}

	if prim, ok := primitiveKindOf(typ); ok {
		return &TypeDescriptor{Kind: KindPrimitive, Type: typ, Primitive: prim}, nil
	}

	switch typ.Kind() {
	case reflect.Ptr:
		// A pointer classifies the same as what it points to (a field
		// of type *Node inside a slice element is still, structurally,
		// an object); registry.synthesize handles the actual
		// allocation/dereferencing via a dedicated pointerCodec, so
		// the descriptor just needs to carry the pointer type through
		// for codec dispatch to key on.
		inner, err := describeType(typ.Elem(), registry)
		if err != nil {
			return nil, err
		}
		d := *inner
		d.Type = typ
		return &d, nil

	case reflect.Slice, reflect.Array:
		elemDesc, err := describeType(typ.Elem(), registry)
		if err != nil {
			return nil, err
		}
		kind := KindObjectArray
		if elemDesc.Kind == KindPrimitive {
			kind = KindPrimitiveArray
		}
		return &TypeDescriptor{Kind: kind, Type: typ, Elem: elemDesc}, nil

	case reflect.Map:
		keyDesc, err := describeType(typ.Key(), registry)
		if err != nil {
			return nil, err
		}
		valDesc, err := describeType(typ.Elem(), registry)
		if err != nil {
			return nil, err
		}
		return &TypeDescriptor{Kind: KindMap, Type: typ, MapKey: keyDesc, MapValue: valDesc}, nil

	case reflect.Struct:
		fields, err := walkFields(typ)
		if err != nil {
			return nil, err
		}
		return &TypeDescriptor{Kind: KindObject, Type: typ, Fields: fields}, nil

	case reflect.String:
		// Named string types that are not enums are treated as
		// primitives-by-proxy: string is not one of the eight
		// primitives, but it is the same builtin leaf shape.
		return &TypeDescriptor{Kind: KindString, Type: typ}, nil

	case reflect.Interface:
		// An interface has no wire shape of its own: encodeDynamic and
		// decodeDynamic route every value held in one through its
		// concrete type's codec. The descriptor lets a slice, array or
		// map of an interface type be described; synthesize still builds
		// no codec for the interface type itself (KindInvalid).
		return &TypeDescriptor{Kind: KindInvalid, Type: typ}, nil

	default:
		return nil, newError(CategoryStructuralMismatch, typ, "", "unsupported kind %s", typ.Kind())
	}
}

// walkFields enumerates the fields of a struct type in declaration
// order, with embedded ("superclass") fields preceding the struct's
// own directly declared ("subclass") fields, and name collisions
// disambiguated by prefixing '*' once per collision (§3). This differs
// from reflect.VisibleFields, which *shadows* colliding promoted
// fields instead of keeping both under distinct wire names.
//
// Unexported fields are included, not dropped: an unexported field
// can still be read via reflect's typed accessors (Int, String, ...)
// for encoding, and its name is needed on decode to route the wire
// value into a positional-arg constructor (§3, §4.E) since it can
// never be reflect.Value.Set directly. objectCodec.Decode is what
// decides, per type, whether an unexported field is fatal
// (CategoryMissingConstructor) or handled by a registered
// [ArgConstructor].
func walkFields(typ reflect.Type) ([]FieldDescriptor, error) {
	var embedded, own []FieldDescriptor

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)

		if sf.Anonymous && sf.IsExported() {
			elem := sf.Type
			for elem.Kind() == reflect.Ptr {
				elem = elem.Elem()
			}
			if elem.Kind() == reflect.Struct {
				nested, err := walkFields(elem)
				if err != nil {
					return nil, err
				}
				for _, nf := range nested {
					nf.Index = append([]int{i}, nf.Index...)
					embedded = append(embedded, nf)
				}
				continue
			}
		}

		own = append(own, FieldDescriptor{
			Name:         sf.Name,
			DeclaredType: sf.Type,
			Index:        []int{i},
			Exported:     sf.IsExported(),
		})
	}

	fields := append(embedded, own...)
	disambiguateCollisions(fields)
	return fields, nil
}

// disambiguateCollisions prefixes '*' onto the wire name of every field
// beyond the first that shares a name, stably, once per collision, in
// place. Superclass (embedded) fields were appended before subclass
// (own) fields by walkFields, so a subclass field colliding with an
// embedded one is the one that grows a prefix, matching the "*x
// (subclass)" example in §8 scenario 5.
func disambiguateCollisions(fields []FieldDescriptor) {
	seen := make(map[string]int, len(fields))
	for i := range fields {
		orig := fields[i].Name
		n := seen[orig]
		seen[orig] = n + 1
		fields[i].Name = strings.Repeat("*", n) + orig
	}
}
