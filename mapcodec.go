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

// mapCodec handles KindMap (§4.C). A string-keyed map serializes as a
// wire object, key-per-field, since that's the natural and most
// compact shape. A key type with a string-proxy override (native
// string, or a registered/TextMarshaler proxy — time.Time, net.IP,
// url.URL, ...) gets the same compact treatment, rendering the field
// name through the proxy. Any other key type serializes as an array of
// {KeyFieldName,ValueFieldName} entry objects, since it can't be a wire
// field name at all.
//
// Whether a key has a proxy is a per-Core registry fact, not a
// structural one (a proxy can be registered or overridden per Core), so
// it's resolved here against the registry rather than folded into
// oracle.go's Kind taxonomy, which describes shape only.
type mapCodec struct {
	typ          reflect.Type
	keyType      reflect.Type
	valType      reflect.Type
	stringKeyed  bool
	nativeString bool // keyType is itself string-kinded; no proxy needed
	keyProxy     stringProxy
}

func newMapCodec(desc *TypeDescriptor, registry *Registry) (*mapCodec, error) {
	c := &mapCodec{
		typ:     desc.Type,
		keyType: desc.MapKey.Type,
		valType: desc.MapValue.Type,
	}

	if desc.MapKey.Kind == KindString {
		c.nativeString = true
		c.stringKeyed = true
		return c, nil
	}

	if proxy, ok := registry.stringProxyFor(c.keyType); ok {
		c.keyProxy = proxy
		c.stringKeyed = true
	} else if proxy, ok := textCodecProxyFor(c.keyType); ok {
		c.keyProxy = proxy
		c.stringKeyed = true
	}
	return c, nil
}

// fieldNameFor renders a map key as a wire object field name: the
// key's own string value for a native string key, or the string-proxy
// rendering for a proxied key.
func (c *mapCodec) fieldNameFor(key reflect.Value) (string, error) {
	if c.nativeString {
		return key.String(), nil
	}
	return c.keyProxy.marshal(key)
}

// keyFromFieldName parses a wire object field name back into a map key,
// the inverse of fieldNameFor.
func (c *mapCodec) keyFromFieldName(name string) (reflect.Value, error) {
	if c.nativeString {
		key := reflect.New(c.keyType).Elem()
		key.SetString(name)
		return key, nil
	}
	return c.keyProxy.unmarshal(name)
}

func (c *mapCodec) Encode(ctx *EncodeContext, value reflect.Value, sink Sink) error {
	if value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return sink.WriteNull()
		}
		value = value.Elem()
	}
	if value.IsNil() {
		return sink.WriteNull()
	}

	if c.stringKeyed {
		if err := sink.StartObject(); err != nil {
			return err
		}
		iter := value.MapRange()
		for iter.Next() {
			name, err := c.fieldNameFor(iter.Key())
			if err != nil {
				return err
			}
			if err := sink.WriteField(name); err != nil {
				return err
			}
			if err := encodeDynamic(ctx, c.valType, iter.Value(), sink); err != nil {
				return err
			}
		}
		return sink.EndObject()
	}

	cfg := ctx.Config()
	if err := sink.StartArray(); err != nil {
		return err
	}
	iter := value.MapRange()
	for iter.Next() {
		if err := sink.StartObject(); err != nil {
			return err
		}
		if err := sink.WriteField(cfg.KeyFieldName); err != nil {
			return err
		}
		if err := encodeDynamic(ctx, c.keyType, iter.Key(), sink); err != nil {
			return err
		}
		if err := sink.WriteField(cfg.ValueFieldName); err != nil {
			return err
		}
		if err := encodeDynamic(ctx, c.valType, iter.Value(), sink); err != nil {
			return err
		}
		if err := sink.EndObject(); err != nil {
			return err
		}
	}
	return sink.EndArray()
}

// Decode dispatches on the wire shape actually present rather than on
// c.stringKeyed alone: a key with a string-proxy override tolerates
// either the compact object schema or the general 2-field array schema
// (§4.D "Decoding tolerates either schema only if the key codec has a
// string-proxy override; otherwise only the 2-field form"), since a
// producer that doesn't know about the proxy still emits the fully
// general form.
func (c *mapCodec) Decode(ctx *DecodeContext, source Source) (reflect.Value, error) {
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

	if c.nativeString {
		return c.decodeStringKeyedObject(ctx, source)
	}

	if c.stringKeyed {
		if ev == EventStartObject {
			return c.decodeStringKeyedObject(ctx, source)
		}
		return c.decodeKeyValueArray(ctx, source)
	}

	if ev != EventStartArray {
		return reflect.Value{}, newError(CategoryStructuralMismatch, c.typ, loc,
			"a non-string-keyed map with no string-proxy override must decode from the 2-field array form")
	}
	return c.decodeKeyValueArray(ctx, source)
}

func (c *mapCodec) decodeStringKeyedObject(ctx *DecodeContext, source Source) (reflect.Value, error) {
	out := reflect.MakeMap(c.typ)

	if err := source.StartObject(); err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
	}
	for {
		ev, err := source.Event(0)
		if err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
		}
		if ev == EventEndObject {
			break
		}
		name, err := source.ReadFieldName()
		if err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
		}
		val, err := decodeDynamic(ctx, c.valType, source)
		if err != nil {
			return reflect.Value{}, err
		}
		key, err := c.keyFromFieldName(name)
		if err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedScalar, c.typ, locationOf(source), err)
		}
		out.SetMapIndex(key, val)
	}
	if err := source.EndObject(); err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
	}
	return out, nil
}

func (c *mapCodec) decodeKeyValueArray(ctx *DecodeContext, source Source) (reflect.Value, error) {
	out := reflect.MakeMap(c.typ)

	cfg := ctx.Config()
	if err := source.StartArray(); err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
	}
	for {
		ev, err := source.Event(0)
		if err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
		}
		if ev == EventEndArray {
			break
		}

		if err := source.StartObject(); err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
		}

		var key, val reflect.Value
		for i := 0; i < 2; i++ {
			name, err := source.ReadFieldName()
			if err != nil {
				return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
			}
			switch name {
			case cfg.KeyFieldName:
				key, err = decodeDynamic(ctx, c.keyType, source)
			case cfg.ValueFieldName:
				val, err = decodeDynamic(ctx, c.valType, source)
			default:
				err = source.SkipNode()
			}
			if err != nil {
				return reflect.Value{}, err
			}
		}

		if err := source.EndObject(); err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
		}

		if !key.IsValid() {
			return reflect.Value{}, newError(CategoryMalformedInput, c.typ, locationOf(source), "map entry missing %q", cfg.KeyFieldName)
		}
		out.SetMapIndex(key, val)
	}
	if err := source.EndArray(); err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
	}

	return out, nil
}
