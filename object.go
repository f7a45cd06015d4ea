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

// objectCodec encodes/decodes a struct's fields against the wire
// object shape (§4.E). Field values pass through [encodeDynamic] and
// [decodeDynamic] so a field declared as an interface (or as a
// concrete type holding a differently-typed value) gets its dynamic
// type envelope handled uniformly with every other position in the
// tree.
type objectCodec struct {
	typ    reflect.Type
	fields []FieldDescriptor
	byName map[string]int // wire name -> index into fields, the builder argument-buffer slot
}

func newObjectCodec(desc *TypeDescriptor) (*objectCodec, error) {
	byName := make(map[string]int, len(desc.Fields))
	for i, f := range desc.Fields {
		byName[f.Name] = i
	}
	return &objectCodec{typ: desc.Type, fields: desc.Fields, byName: byName}, nil
}

func (c *objectCodec) Encode(ctx *EncodeContext, value reflect.Value, sink Sink) error {
	if value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return sink.WriteNull()
		}
		value = value.Elem()
	}

	if err := sink.StartObject(); err != nil {
		return err
	}
	for _, f := range c.fields {
		if err := sink.WriteField(f.Name); err != nil {
			return err
		}
		if err := encodeDynamic(ctx, f.DeclaredType, f.Read(value), sink); err != nil {
			return err
		}
	}
	return sink.EndObject()
}

func (c *objectCodec) Decode(ctx *DecodeContext, source Source) (reflect.Value, error) {
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

	argCtor, useBuilder := ctx.registry().argConstructorFor(c.typ)
	if !useBuilder {
		if unexported, name := c.firstUnexportedField(); unexported {
			return reflect.Value{}, newError(CategoryMissingConstructor, c.typ, loc,
				"field %q is unexported; register an ArgConstructor for %s to decode it", name, c.typ)
		}
	}

	var target reflect.Value
	var args []reflect.Value
	if useBuilder {
		args = make([]reflect.Value, len(c.fields))
		for i, f := range c.fields {
			args[i] = reflect.Zero(f.DeclaredType)
		}
	} else {
		target = reflect.New(c.typ).Elem()
		built := ctx.registry().constructorFor(c.typ)()
		if built.IsValid() && built.Type() == c.typ {
			target.Set(built)
		}
	}

	if err := source.StartObject(); err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, loc, err)
	}

	cfg := ctx.Config()

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

		fd, idx, ok := c.fieldByName(name)
		if !ok {
			if cfg.FailOnUnknownFields {
				return reflect.Value{}, newError(CategoryStructuralMismatch, c.typ, locationOf(source), "unknown field %q", name)
			}
			if err := source.SkipNode(); err != nil {
				return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
			}
			continue
		}

		val, err := decodeDynamic(ctx, fd.DeclaredType, source)
		if err != nil {
			return reflect.Value{}, err
		}

		if useBuilder {
			args[idx] = val
			continue
		}
		if err := fd.Write(target, val); err != nil {
			return reflect.Value{}, err
		}
	}

	if err := source.EndObject(); err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, c.typ, locationOf(source), err)
	}

	if useBuilder {
		return argCtor(args), nil
	}
	return target, nil
}

// firstUnexportedField reports whether the type has any field the
// mutate-in-place path can't Set, so Decode can fail loudly instead of
// silently dropping it.
func (c *objectCodec) firstUnexportedField() (bool, string) {
	for _, f := range c.fields {
		if !f.Exported {
			return true, f.Name
		}
	}
	return false, ""
}

// fieldByName returns the descriptor for a wire field name along with
// its position in declaration order, the index the builder-mode
// argument buffer is keyed by.
func (c *objectCodec) fieldByName(name string) (FieldDescriptor, int, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return FieldDescriptor{}, 0, false
	}
	return c.fields[idx], idx, true
}
