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

// arrayCodec handles KindPrimitiveArray, KindObjectArray and
// KindCollection alike (§3): all three are "a sequence of elemType"
// on the wire, differing only in whether the elements are primitives
// or objects, a distinction the oracle records but the wire format
// and this codec don't need to care about.
type arrayCodec struct {
	typ      reflect.Type
	elemType reflect.Type
	isArray  bool // fixed-length [N]T rather than []T
}

func newArrayCodec(desc *TypeDescriptor) (*arrayCodec, error) {
	return &arrayCodec{
		typ:      desc.Type,
		elemType: desc.Elem.Type,
		isArray:  desc.Type.Kind() == reflect.Array,
	}, nil
}

func (c *arrayCodec) Encode(ctx *EncodeContext, value reflect.Value, sink Sink) error {
	if value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return sink.WriteNull()
		}
		value = value.Elem()
	}
	if !c.isArray && value.IsNil() {
		return sink.WriteNull()
	}

	if err := sink.StartArray(); err != nil {
		return err
	}
	for i := 0; i < value.Len(); i++ {
		if err := encodeDynamic(ctx, c.elemType, value.Index(i), sink); err != nil {
			return err
		}
	}
	return sink.EndArray()
}

func (c *arrayCodec) Decode(ctx *DecodeContext, source Source) (reflect.Value, error) {
	loc := locationOf(source)

	ev, err := source.Event(0)
	if err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, loc, err)
	}
	if ev == EventNull {
		if err := source.ReadNull(); err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, loc, err)
		}
		return reflect.Zero(c.typ), nil
	}

	if err := source.StartArray(); err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, loc, err)
	}

	var out reflect.Value
	if c.isArray {
		out = reflect.New(c.typ).Elem()
	} else {
		out = reflect.MakeSlice(c.typ, 0, 0)
	}

	for i := 0; ; i++ {
		ev, err := source.Event(0)
		if err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
		}
		if ev == EventEndArray {
			break
		}

		elem, err := decodeDynamic(ctx, c.elemType, source)
		if err != nil {
			return reflect.Value{}, err
		}

		if c.isArray {
			if i < out.Len() {
				out.Index(i).Set(elem)
			}
		} else {
			out = reflect.Append(out, elem)
		}
	}

	if err := source.EndArray(); err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
	}

	return out, nil
}
