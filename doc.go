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

// Package codec is a format-pluggable object serialization engine.
//
// It encodes and decodes arbitrary Go value trees into multiple wire
// representations while preserving enough dynamic-type information to
// reconstruct the original concrete type on decode. Callers declare a
// static type at the call site; the engine embeds a type discriminator
// only when the value's dynamic type differs from that static type.
//
// # Quick start
//
//	core := codec.New()
//
//	type Event struct {
//	    ID   int64
//	    Name string
//	}
//
//	data, err := codecjson.Marshal(core, reflect.TypeFor[Event](), Event{ID: 1, Name: "boot"})
//
//	var out Event
//	err = codecjson.Unmarshal(core, reflect.TypeFor[Event](), data, &out)
//
// # Format adapters
//
// The core never talks to a wire format directly. It drives a [Sink] on
// encode and a [Source] on decode; concrete adapters (JSON DOM, JSON
// event stream, XML, MessagePack, CBOR, YAML, TOML, and a protobuf
// structpb tree) live in sibling packages such as
// veylan.dev/codec/codecjson.
//
// # Dynamic types
//
// When a value's runtime type differs from the statically declared
// type at a field or call site, the core wraps it in a two-field
// envelope ({"@type": ..., "@value": ...} by default) so the decoder
// can reconstruct the original concrete type. Register a class name for
// each concrete type participating in a dynamic slot with
// [RegisterClassName] or [WithClassName]: decoding resolves only
// registered names, and an unregistered one fails with
// [CategoryUnknownType].
//
// # Registries are per-instance
//
// Every [Core] owns its own codec registry, type-proxy table, and
// constructor table. Construct one [Core] per distinct configuration
// (envelope field names, constructors, proxies); there is no implicit
// process-wide global, unlike the reflection-heavy binding libraries
// this package borrows its cache and registration idioms from.
package codec
