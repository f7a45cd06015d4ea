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

// Constructor allocates a zero value of some object type ready for an
// object decode to populate (§4.E, §7 CategoryMissingConstructor).
type Constructor func() reflect.Value

// RegisterTypeConstructor installs ctor as T's constructor, overriding
// the default reflect.New(typ).Elem() allocation used when the
// registry has no better recipe on file.
func RegisterTypeConstructor[T any](core *Core, ctor func() T) {
	typ := reflect.TypeFor[T]()
	core.registry.ctorMu.Lock()
	core.registry.ctors[typ] = func() reflect.Value {
		return reflect.ValueOf(ctor())
	}
	core.registry.ctorMu.Unlock()
}

// constructorFor returns typ's registered constructor, or the default
// zero-value allocator if none was registered.
func (r *Registry) constructorFor(typ reflect.Type) Constructor {
	r.ctorMu.RLock()
	ctor, ok := r.ctors[typ]
	r.ctorMu.RUnlock()
	if ok {
		return ctor
	}
	return func() reflect.Value {
		return reflect.New(typ).Elem()
	}
}

// ArgConstructor is the positional-arg accumulator form of a
// constructor (§3 "optional positional-arg form for immutable
// records", §4.E "a builder with an argument buffer"). args holds one
// decoded value per field of the type's [TypeDescriptor], in
// declaration order, with a missing field left at its zero Value.
// Unlike [Constructor], this form never needs to Set a struct field
// directly, so it's the only way to populate a type whose fields are
// unexported.
type ArgConstructor func(args []reflect.Value) reflect.Value

// RegisterArgConstructor installs ctor as T's positional-arg
// constructor. Register this instead of (or in addition to)
// [RegisterTypeConstructor] for a type with unexported fields: the
// object codec has no other way to populate them, and decode fails
// with [CategoryMissingConstructor] if it finds an unexported field
// and no arg constructor on file for the type.
func RegisterArgConstructor[T any](core *Core, ctor func(args []reflect.Value) T) {
	typ := reflect.TypeFor[T]()
	core.registry.argCtorMu.Lock()
	core.registry.argCtors[typ] = func(args []reflect.Value) reflect.Value {
		return reflect.ValueOf(ctor(args))
	}
	core.registry.argCtorMu.Unlock()
}

// argConstructorFor returns typ's registered [ArgConstructor], if any.
func (r *Registry) argConstructorFor(typ reflect.Type) (ArgConstructor, bool) {
	r.argCtorMu.RLock()
	defer r.argCtorMu.RUnlock()
	ctor, ok := r.argCtors[typ]
	return ctor, ok
}
