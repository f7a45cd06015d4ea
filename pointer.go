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

// pointerCodec adapts a *T field or element onto T's codec: nil
// encodes as null, and decode allocates a fresh T before delegating.
// Every non-primitive value type in the object graph can be pointed
// to (a *Node child in a tree, say), so pointer indirection is
// resolved once here rather than duplicated in every shape-driven
// factory.
type pointerCodec struct {
	typ   reflect.Type
	inner Codec
}

func newPointerCodec(typ reflect.Type, inner Codec) *pointerCodec {
	return &pointerCodec{typ: typ, inner: inner}
}

func (c *pointerCodec) Encode(ctx *EncodeContext, value reflect.Value, sink Sink) error {
	if value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return sink.WriteNull()
		}
		value = value.Elem()
	}
	return c.inner.Encode(ctx, value, sink)
}

func (c *pointerCodec) Decode(ctx *DecodeContext, source Source) (reflect.Value, error) {
	ev, err := source.Event(0)
	if err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
	}
	if ev == EventNull {
		if err := source.ReadNull(); err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
		}
		return reflect.Zero(c.typ), nil
	}

	val, err := c.inner.Decode(ctx, source)
	if err != nil {
		return reflect.Value{}, err
	}

	ptr := reflect.New(c.typ.Elem())
	ptr.Elem().Set(val)
	return ptr, nil
}
