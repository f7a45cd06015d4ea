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
	"encoding"
	"net"
	"net/url"
	"reflect"
	"time"
)

// TypeDescriptor is the oracle's view of a type (§3): its shape, and
// enough structural metadata to build a codec for it. It is produced
// once per type by [defaultOracle] and cached (see cache.go).
type TypeDescriptor struct {
	Kind      Kind
	Type      reflect.Type
	Primitive Primitive         // valid when Kind == KindPrimitive
	Elem      *TypeDescriptor   // element descriptor: arrays, collections
	MapKey    *TypeDescriptor   // valid when Kind == KindMap
	MapValue  *TypeDescriptor   // valid when Kind == KindMap
	EnumNames []string          // valid when Kind == KindEnum, ordered
	Fields    []FieldDescriptor // valid when Kind == KindObject, declaration order
}

// FieldDescriptor describes one field of an object type (§3): its wire
// name (after '*' collision disambiguation) and how to read/write it
// via reflection.
type FieldDescriptor struct {
	Name         string       // wire name, after disambiguation
	DeclaredType reflect.Type // the field's static type
	Index        []int        // reflect.Value.FieldByIndex path
	Exported     bool         // false for an unexported ("immutable record") field
}

// Read extracts the field's value from a struct value (need not be
// addressable).
func (f FieldDescriptor) Read(v reflect.Value) reflect.Value {
	return v.FieldByIndex(f.Index)
}

// Write sets the field's value on an addressable struct value.
func (f FieldDescriptor) Write(target reflect.Value, value reflect.Value) error {
	field := target.FieldByIndex(f.Index)
	if !field.CanSet() {
		return newError(CategoryStructuralMismatch, target.Type(), "", "field %q is not settable", f.Name)
	}
	if !value.IsValid() {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	if value.Type().AssignableTo(field.Type()) {
		field.Set(value)
		return nil
	}
	if value.Type().ConvertibleTo(field.Type()) {
		field.Set(value.Convert(field.Type()))
		return nil
	}
	return newError(CategoryStructuralMismatch, target.Type(), "", "field %q: cannot assign %s to %s", f.Name, value.Type(), field.Type())
}

// Type references for special-cased string-proxy targets (§12
// supplemented features: time.Time, time.Duration, net.IP, url.URL get
// built-in string-proxy codecs the way binding/convert.go hand-parses
// these same types from query/form strings).
var (
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	timeType            = reflect.TypeFor[time.Time]()
	durationType        = reflect.TypeFor[time.Duration]()
	urlType             = reflect.TypeFor[url.URL]()
	ipType              = reflect.TypeFor[net.IP]()
)
