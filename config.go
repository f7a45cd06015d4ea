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

// Config holds the tunables a [Core] is built with (§4.F, §4.E, §9).
// Assembled from functional [Option]s the way binding/options.go
// assembles its own request-binding Config, then frozen into the Core
// at construction time.
type Config struct {
	// TypeFieldName is the discriminator field of a dynamic-type
	// envelope. Defaults to "@type".
	TypeFieldName string

	// KeyFieldName and ValueFieldName name the two fields of a
	// non-string-keyed map entry's {key,value} object (§4.C) and
	// double as the payload field of a dynamic-type envelope
	// (ValueFieldName). Default to "@key" and "@value".
	KeyFieldName   string
	ValueFieldName string

	// FailOnUnknownFields makes object decode reject a field name
	// absent from the type descriptor instead of skipping it (§4.E
	// default is tolerant skip).
	FailOnUnknownFields bool

	// MaxParserLookahead records the minimum number of lookahead
	// events a [Source] adapter provides for dynamic-type envelope
	// detection (default 3). It is a floor, not a cap: nothing in this
	// module reads it, and no adapter limits how far ahead it buffers.
	MaxParserLookahead int

	classNames   map[reflect.Type]string
	constructors map[reflect.Type]Constructor
	typeProxies  map[reflect.Type]reflect.Type
	logger       Logger
}

func defaultConfig() *Config {
	return &Config{
		TypeFieldName:      "@type",
		KeyFieldName:       "@key",
		ValueFieldName:     "@value",
		MaxParserLookahead: 3,
		classNames:         make(map[reflect.Type]string),
		constructors:       make(map[reflect.Type]Constructor),
		typeProxies:        make(map[reflect.Type]reflect.Type),
	}
}

// Option configures a [Core] at construction time.
type Option func(*Config)

func WithTypeFieldName(name string) Option {
	return func(c *Config) { c.TypeFieldName = name }
}

func WithKeyFieldName(name string) Option {
	return func(c *Config) { c.KeyFieldName = name }
}

func WithValueFieldName(name string) Option {
	return func(c *Config) { c.ValueFieldName = name }
}

func WithFailOnUnknownFields(fail bool) Option {
	return func(c *Config) { c.FailOnUnknownFields = fail }
}

func WithMaxParserLookahead(n int) Option {
	return func(c *Config) { c.MaxParserLookahead = n }
}

// WithClassName registers the wire discriminator used for T in a
// dynamic-type envelope (§4.F), overriding the default of T's
// reflect.Type.String(). Register both ends of a polymorphic
// hierarchy's concrete types so encode and decode agree on names
// regardless of package path changes.
func WithClassName[T any](name string) Option {
	typ := reflect.TypeFor[T]()
	return func(c *Config) { c.classNames[typ] = name }
}

// WithTypeProxy makes T resolve to proxyType's codec instead of its
// own (§3 "TypeProxyTable", §4.A, §4.I registerTypeProxy). The usual
// case is an interface or abstract type mapped onto the one concrete
// implementation a program actually wants: registering
// WithTypeProxy[Animal](reflect.TypeFor[Dog]()) makes every lookup for
// Animal resolve to Dog's codec instead of failing on an
// unconstructable interface type.
func WithTypeProxy[T any](proxyType reflect.Type) Option {
	typ := reflect.TypeFor[T]()
	return func(c *Config) { c.typeProxies[typ] = proxyType }
}

// WithDefaultConstructor registers how to allocate a zero value of T
// before an object decode populates its fields (§4.E), for types the
// oracle can't just reflect.New because they need bespoke
// initialization (e.g. a map field that must be non-nil).
func WithDefaultConstructor[T any](ctor func() T) Option {
	typ := reflect.TypeFor[T]()
	return func(c *Config) {
		c.constructors[typ] = func() reflect.Value {
			return reflect.ValueOf(ctor())
		}
	}
}
