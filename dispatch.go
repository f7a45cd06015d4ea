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

// encodeDynamic writes value against declaredType, wrapping it in a
// {@type,@value} envelope when value's dynamic type differs from
// declaredType (§4.F). Every field, array element, and map value
// passes through here rather than calling a codec directly, so
// dynamic dispatch is uniform regardless of where the value sits in
// the tree.
func encodeDynamic(ctx *EncodeContext, declaredType reflect.Type, value reflect.Value, sink Sink) error {
	if value.Kind() == reflect.Interface {
		if value.IsNil() {
			return sink.WriteNull()
		}
		value = value.Elem()
	}
	if !value.IsValid() {
		return sink.WriteNull()
	}

	// Pointer indirection is not dynamic dispatch: *T holding a T is
	// the same static shape as declaredType == *T. pointerCodec (via
	// codecFor) does its own nil-check and dereference; unwrapping
	// here too would make every pointer field's concrete type look
	// like a mismatch against its own declared *T type.
	concrete := value.Type()
	codec, err := ctx.codecFor(concrete)
	if err != nil {
		return err
	}

	if concrete == declaredType {
		return codec.Encode(ctx, value, sink)
	}

	cfg := ctx.Config()
	if err := sink.StartObject(); err != nil {
		return err
	}
	if err := sink.WriteField(cfg.TypeFieldName); err != nil {
		return err
	}
	if err := sink.WriteString(ctx.registry().classNameFor(concrete)); err != nil {
		return err
	}
	if err := sink.WriteField(cfg.ValueFieldName); err != nil {
		return err
	}
	if err := codec.Encode(ctx, value, sink); err != nil {
		return err
	}
	return sink.EndObject()
}

// decodeDynamic reads one node against declaredType, detecting and
// unwrapping a {@type,@value} envelope if the node's shape matches one
// exactly (§4.F): an object with exactly those two fields, in either
// order. Anything else — including an ordinary object that merely
// happens to decode as declaredType — falls through to declaredType's
// own codec.
func decodeDynamic(ctx *DecodeContext, declaredType reflect.Type, source Source) (reflect.Value, error) {
	ev, err := source.Event(0)
	if err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, declaredType, locationOf(source), err)
	}

	if ev == EventNull {
		if err := source.ReadNull(); err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, declaredType, locationOf(source), err)
		}
		return reflect.Zero(declaredType), nil
	}

	if ev != EventStartObject || !looksLikeEnvelope(ctx, source) {
		codec, err := ctx.codecFor(declaredType)
		if err != nil {
			return reflect.Value{}, err
		}
		return codec.Decode(ctx, source)
	}

	ctx.core.logger.Debug("codec: dynamic-envelope detected", "declaredType", declaredType)

	cfg := ctx.Config()

	// looksLikeEnvelope already confirmed the two-field shape and
	// found where the class name sits, in whichever order the fields
	// appear on the wire; peeking it now, before either field is
	// actually consumed, means @value's own codec is already known by
	// the time @value is reached, even when @value is the field that
	// comes first (§9: "up to three lookahead events" covers the
	// common @type-first case directly; @value-first falls back to
	// peek-scanning past @value's subtree, since its shape isn't known
	// in advance).
	className, err := peekClassName(source, cfg)
	if err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, declaredType, locationOf(source), err)
	}

	concreteType, ok := ctx.registry().classForName(className)
	if !ok {
		return reflect.Value{}, newError(CategoryUnknownType, declaredType, locationOf(source), "no type registered for class name %q", className)
	}
	valueCodec, err := ctx.codecFor(concreteType)
	if err != nil {
		return reflect.Value{}, err
	}

	if err := source.StartObject(); err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, declaredType, locationOf(source), err)
	}

	var value reflect.Value
	for i := 0; i < 2; i++ {
		name, err := source.ReadFieldName()
		if err != nil {
			return reflect.Value{}, wrapError(CategoryMalformedInput, declaredType, locationOf(source), err)
		}
		switch name {
		case cfg.TypeFieldName:
			if _, err := source.ReadString(); err != nil {
				return reflect.Value{}, wrapError(CategoryMalformedInput, declaredType, locationOf(source), err)
			}
		case cfg.ValueFieldName:
			value, err = valueCodec.Decode(ctx, source)
			if err != nil {
				return reflect.Value{}, err
			}
		default:
			return reflect.Value{}, newError(CategoryStructuralMismatch, declaredType, locationOf(source), "unexpected field %q in dynamic-type envelope", name)
		}
	}

	if err := source.EndObject(); err != nil {
		return reflect.Value{}, wrapError(CategoryMalformedInput, declaredType, locationOf(source), err)
	}

	return value, nil
}

// looksLikeEnvelope peeks, without consuming, whether the object about
// to be read has the exact two-field {@type,@value} shape, in either
// order (§4.F).
func looksLikeEnvelope(ctx *DecodeContext, source Source) bool {
	cfg := ctx.Config()

	if ev, err := source.Event(1); err != nil || ev != EventFieldName {
		return false
	}
	name, err := source.PeekFieldName(1)
	if err != nil {
		return false
	}

	switch name {
	case cfg.TypeFieldName:
		// @type's value is always a string (the class name), a single
		// token, so seeing one at lookahead 2 is what distinguishes a
		// real envelope from an ordinary object that just happens to
		// have a field called @type. This is the fast path the K>=3
		// lookahead guarantee (§6, §9) exists for.
		if ev, err := source.Event(2); err != nil || ev != EventString {
			return false
		}
		if ev, err := source.Event(3); err != nil || ev != EventFieldName {
			return false
		}
		valueName, err := source.PeekFieldName(3)
		return err == nil && valueName == cfg.ValueFieldName

	case cfg.ValueFieldName:
		// @value's payload can be any shape, so there's no fixed
		// lookahead index for the second field's name; skip over
		// @value's subtree by peeking (§9 "shorter budgets force
		// object materialization") and inspect what follows it.
		afterValue, err := skipAhead(source, 2)
		if err != nil {
			return false
		}
		if ev, err := source.Event(afterValue); err != nil || ev != EventFieldName {
			return false
		}
		typeName, err := source.PeekFieldName(afterValue)
		if err != nil || typeName != cfg.TypeFieldName {
			return false
		}
		ev, err := source.Event(afterValue + 1)
		return err == nil && ev == EventString

	default:
		return false
	}
}

// peekClassName returns the dynamic-type envelope's class name without
// consuming anything, regardless of whether typeFieldName or
// valueFieldName appears first on the wire. looksLikeEnvelope must
// already have confirmed the envelope shape.
func peekClassName(source Source, cfg *Config) (string, error) {
	name, err := source.PeekFieldName(1)
	if err != nil {
		return "", err
	}
	if name == cfg.TypeFieldName {
		return source.PeekString(2)
	}
	afterValue, err := skipAhead(source, 2)
	if err != nil {
		return "", err
	}
	return source.PeekString(afterValue + 1)
}

// skipAhead returns the lookahead index of the token immediately
// following the node that starts at lookahead index from, using only
// non-consuming Event peeks: from+1 for a scalar, or the index past
// the matching EventEndObject/EventEndArray for a nested structure.
func skipAhead(source Source, from int) (int, error) {
	ev, err := source.Event(from)
	if err != nil {
		return 0, err
	}

	idx := from + 1
	depth := 0
	switch ev {
	case EventStartObject, EventStartArray:
		depth = 1
	case EventEOF:
		return 0, newError(CategoryMalformedInput, nil, "", "unexpected end of input while skipping ahead")
	default:
		return idx, nil
	}

	for depth > 0 {
		ev, err := source.Event(idx)
		if err != nil {
			return 0, err
		}
		switch ev {
		case EventStartObject, EventStartArray:
			depth++
		case EventEndObject, EventEndArray:
			depth--
		case EventEOF:
			return 0, newError(CategoryMalformedInput, nil, "", "unexpected end of input while skipping ahead")
		}
		idx++
	}
	return idx, nil
}
