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

// primitiveCodec handles one of the eight primitive shapes (§4.C).
// A single codec type serves all eight: Encode and Decode switch on
// the stored PrimitiveKind on every call.
type primitiveCodec struct {
	typ       reflect.Type
	primitive Primitive
}

func newPrimitiveCodec(desc *TypeDescriptor) (*primitiveCodec, error) {
	return &primitiveCodec{typ: desc.Type, primitive: desc.Primitive}, nil
}

func (c *primitiveCodec) Encode(_ *EncodeContext, value reflect.Value, sink Sink) error {
	switch c.primitive {
	case PrimitiveBool:
		return sink.WriteBool(value.Bool())
	case PrimitiveByte:
		return sink.WriteByte(byte(value.Uint()))
	case PrimitiveChar:
		return sink.WriteChar(Char(value.Int()))
	case PrimitiveShort:
		return sink.WriteShort(int16(value.Int()))
	case PrimitiveInt:
		return sink.WriteInt(int32(value.Int()))
	case PrimitiveLong:
		return sink.WriteLong(value.Int())
	case PrimitiveFloat:
		return sink.WriteFloat(float32(value.Float()))
	case PrimitiveDouble:
		return sink.WriteDouble(value.Float())
	default:
		return newError(CategoryStructuralMismatch, c.typ, locationOf(sink), "unhandled primitive %s", c.primitive)
	}
}

func (c *primitiveCodec) Decode(_ *DecodeContext, source Source) (reflect.Value, error) {
	loc := locationOf(source)
	switch c.primitive {
	case PrimitiveBool:
		v, err := source.ReadBool()
		if err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, loc, err)
		}
		return c.convert(reflect.ValueOf(v)), nil
	case PrimitiveByte:
		v, err := source.ReadByte()
		if err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, loc, err)
		}
		return c.convert(reflect.ValueOf(v)), nil
	case PrimitiveChar:
		v, err := source.ReadChar()
		if err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedScalar, c.typ, loc, err)
		}
		return c.convert(reflect.ValueOf(v)), nil
	case PrimitiveShort:
		v, err := source.ReadShort()
		if err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, loc, err)
		}
		return c.convert(reflect.ValueOf(v)), nil
	case PrimitiveInt:
		v, err := source.ReadInt()
		if err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, loc, err)
		}
		return c.convert(reflect.ValueOf(v)), nil
	case PrimitiveLong:
		v, err := source.ReadLong()
		if err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, loc, err)
		}
		return c.convert(reflect.ValueOf(v)), nil
	case PrimitiveFloat:
		v, err := source.ReadFloat()
		if err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, loc, err)
		}
		return c.convert(reflect.ValueOf(v)), nil
	case PrimitiveDouble:
		v, err := source.ReadDouble()
		if err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, loc, err)
		}
		return c.convert(reflect.ValueOf(v)), nil
	default:
		return reflect.Value{}, newError(CategoryStructuralMismatch, c.typ, loc, "unhandled primitive %s", c.primitive)
	}
}

// convert coerces the decoded builtin-kind value onto the codec's
// exact static type, since named types (type Celsius float64) share a
// primitive shape with their underlying builtin but are not
// AssignableTo it.
func (c *primitiveCodec) convert(v reflect.Value) reflect.Value {
	if v.Type() == c.typ {
		return v
	}
	return v.Convert(c.typ)
}

// stringCodec handles the string leaf shape (§4.C: string is a leaf
// like a primitive, but is not counted among the eight primitives).
type stringCodec struct {
	typ reflect.Type
}

func newStringCodec(desc *TypeDescriptor) *stringCodec {
	return &stringCodec{typ: desc.Type}
}

func (c *stringCodec) Encode(_ *EncodeContext, value reflect.Value, sink Sink) error {
	return sink.WriteString(value.String())
}

func (c *stringCodec) Decode(_ *DecodeContext, source Source) (reflect.Value, error) {
	s, err := source.ReadString()
	if err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
	}
	v := reflect.New(c.typ).Elem()
	v.SetString(s)
	return v, nil
}
