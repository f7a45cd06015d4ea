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

import "reflect"

// Kind classifies a TypeDescriptor per §3 of the design: primitive,
// primitive array, object array, enum, collection, map, or object.
type Kind int

const (
	KindInvalid Kind = iota
	KindPrimitive
	KindString
	KindPrimitiveArray
	KindObjectArray
	KindEnum

	// KindCollection is reserved for a sequence-like type that isn't a
	// Go slice or array — e.g. a set or ordered-map wrapper type an
	// oracle recognizes by name or interface rather than by reflect.Kind.
	// describeType never produces it: Go's reflect.Slice/reflect.Array
	// path always yields KindPrimitiveArray or KindObjectArray, since
	// reflect has no third "collection" kind to distinguish. arrayCodec
	// already treats it identically to those two (§3: "a sequence of
	// elemType" wire shape, element kind aside), so a future oracle
	// extension can start emitting it without touching the codec.
	KindCollection

	KindMap
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindString:
		return "string"
	case KindPrimitiveArray:
		return "primitive-array"
	case KindObjectArray:
		return "object-array"
	case KindEnum:
		return "enum"
	case KindCollection:
		return "collection"
	case KindMap:
		return "map"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Primitive identifies one of the eight primitive shapes from §3.
type Primitive int

const (
	PrimitiveInvalid Primitive = iota
	PrimitiveBool
	PrimitiveByte
	PrimitiveChar
	PrimitiveShort
	PrimitiveInt
	PrimitiveLong
	PrimitiveFloat
	PrimitiveDouble
)

func (p Primitive) String() string {
	switch p {
	case PrimitiveBool:
		return "boolean"
	case PrimitiveByte:
		return "byte"
	case PrimitiveChar:
		return "char"
	case PrimitiveShort:
		return "short"
	case PrimitiveInt:
		return "int"
	case PrimitiveLong:
		return "long"
	case PrimitiveFloat:
		return "float"
	case PrimitiveDouble:
		return "double"
	default:
		return "invalid"
	}
}

// Char represents the "char" primitive. Go has no native character
// type, so codec defines one: a single Unicode code point that the
// char codec encodes as a one-code-unit string (§4.C).
type Char rune

var charType = reflect.TypeFor[Char]()

// primitiveKindOf reports which of the eight primitives, if any, typ
// maps onto. string is handled separately by the caller (it is a
// leaf codec but not one of the eight primitives per §4.C).
func primitiveKindOf(typ reflect.Type) (Primitive, bool) {
	if typ == charType {
		return PrimitiveChar, true
	}
	switch typ.Kind() {
	case reflect.Bool:
		return PrimitiveBool, true
	case reflect.Uint8:
		return PrimitiveByte, true
	case reflect.Int16:
		return PrimitiveShort, true
	case reflect.Int32:
		return PrimitiveInt, true
	case reflect.Int, reflect.Int64:
		return PrimitiveLong, true
	case reflect.Float32:
		return PrimitiveFloat, true
	case reflect.Float64:
		return PrimitiveDouble, true
	default:
		return PrimitiveInvalid, false
	}
}
