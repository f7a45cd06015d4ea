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

// enumCodec encodes an enum's ordinal as its registered constant name
// and decodes a name back to its ordinal (§4.D). Registration is via
// [RegisterEnum]; describeType never infers enum-ness on its own.
type enumCodec struct {
	typ   reflect.Type
	names []string
}

func newEnumCodec(desc *TypeDescriptor) *enumCodec {
	return &enumCodec{typ: desc.Type, names: desc.EnumNames}
}

func (c *enumCodec) Encode(_ *EncodeContext, value reflect.Value, sink Sink) error {
	ordinal := int(value.Int())
	if ordinal < 0 || ordinal >= len(c.names) {
		return newError(CategoryUnknownEnumConstant, c.typ, locationOf(sink), "ordinal %d out of range [0,%d)", ordinal, len(c.names))
	}
	return sink.WriteString(c.names[ordinal])
}

func (c *enumCodec) Decode(_ *DecodeContext, source Source) (reflect.Value, error) {
	name, err := source.ReadString()
	if err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
	}
	for ordinal, n := range c.names {
		if n == name {
			v := reflect.New(c.typ).Elem()
			v.SetInt(int64(ordinal))
			return v, nil
		}
	}
	return reflect.Value{}, newError(CategoryUnknownEnumConstant, c.typ, locationOf(source), "no constant named %q", name)
}
