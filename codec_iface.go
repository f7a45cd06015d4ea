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

// Codec encodes and decodes values of one static type against a [Sink]
// or [Source] (§4.A). Codecs are synthesized once per type by a [Core]
// and cached in its [Registry]; user code never constructs one
// directly except through RegisterCodec.
type Codec interface {
	// Encode writes value (of the codec's static type) to sink.
	Encode(ctx *EncodeContext, value reflect.Value, sink Sink) error

	// Decode reads one node from source and returns a value of the
	// codec's static type.
	Decode(ctx *DecodeContext, source Source) (reflect.Value, error)
}

// EncodeContext carries the per-call state an encode pass threads
// through nested codec calls: the owning registry (for dynamic-type
// dispatch lookups) and the active [Config].
type EncodeContext struct {
	core   *Core
	config *Config
}

// Config exposes the active configuration to codecs that need it
// (dynamic-type dispatch needs TypeFieldName, map codecs need
// KeyFieldName/ValueFieldName).
func (c *EncodeContext) Config() *Config { return c.config }

func (c *EncodeContext) registry() *Registry { return c.core.registry }

// codecFor resolves the codec for typ through the owning [Core],
// synthesizing and caching it if this is the first request (§4.G).
func (c *EncodeContext) codecFor(typ reflect.Type) (Codec, error) {
	return c.core.registry.lookup(typ)
}

// DecodeContext is the decode-side analog of [EncodeContext].
type DecodeContext struct {
	core   *Core
	config *Config
}

func (c *DecodeContext) Config() *Config { return c.config }

func (c *DecodeContext) registry() *Registry { return c.core.registry }

func (c *DecodeContext) codecFor(typ reflect.Type) (Codec, error) {
	return c.core.registry.lookup(typ)
}
