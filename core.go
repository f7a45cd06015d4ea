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

// Core is the façade a program holds: one Config, one codec Registry,
// one descriptor cache. Registries are per-instance (see doc.go) —
// two Cores never share synthesized codecs, so registering a type
// proxy or a codec on one never affects another.
type Core struct {
	config      *Config
	registry    *Registry
	descriptors *descriptorCache
	logger      Logger
}

// New builds a Core from the given options, applying each to a
// [defaultConfig] before wiring the registry and descriptor cache
// together (§4.G, §6).
func New(opts ...Option) *Core {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = defaultLogger()
	}
	core := &Core{config: cfg, logger: logger}
	core.registry = newRegistry()
	core.registry.core = core
	core.descriptors = newDescriptorCache(defaultOracle(core.registry))

	for typ, name := range cfg.classNames {
		core.registry.RegisterClassName(typ, name)
	}
	for typ, ctor := range cfg.constructors {
		core.registry.ctors[typ] = ctor
	}
	for typ, proxyType := range cfg.typeProxies {
		core.registry.typeProxies[typ] = proxyType
	}

	return core
}

// Encode writes value, whose static type is staticType, to sink.
// staticType need not equal reflect.TypeOf(value): passing an
// interface's element type as staticType while value holds a more
// specific concrete type is exactly how a caller opts into dynamic
// dispatch at the root of the tree (§4.F).
func (c *Core) Encode(staticType reflect.Type, value any, sink Sink) error {
	ctx := &EncodeContext{core: c, config: c.config}
	rv := reflect.ValueOf(value)
	if err := encodeDynamic(ctx, staticType, rv, sink); err != nil {
		c.logger.Debug("encode failed", "type", staticType, "error", err)
		return err
	}
	return nil
}

// Decode reads one node of static type staticType from source and
// stores it into out, which must be a non-nil pointer.
func (c *Core) Decode(staticType reflect.Type, source Source, out any) error {
	ctx := &DecodeContext{core: c, config: c.config}

	val, err := decodeDynamic(ctx, staticType, source)
	if err != nil {
		c.logger.Debug("decode failed", "type", staticType, "error", err)
		return err
	}

	outVal := reflect.ValueOf(out)
	if outVal.Kind() != reflect.Ptr || outVal.IsNil() {
		return newError(CategoryStructuralMismatch, staticType, "", "Decode requires a non-nil pointer, got %T", out)
	}
	elem := outVal.Elem()

	if !val.IsValid() {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	if val.Type().AssignableTo(elem.Type()) {
		elem.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(elem.Type()) {
		elem.Set(val.Convert(elem.Type()))
		return nil
	}
	return newError(CategoryStructuralMismatch, staticType, "", "cannot store decoded %s into %s", val.Type(), elem.Type())
}

// RegisterCodec installs an explicit codec for T, bypassing the
// oracle and any string proxy registered for T.
func RegisterCodec[T any](core *Core, codec Codec) {
	core.registry.RegisterCodec(reflect.TypeFor[T](), codec)
}

// RegisterClassName installs T's wire discriminator for dynamic-type
// envelopes after construction; equivalent to [WithClassName] at
// [New] time.
func RegisterClassName[T any](core *Core, name string) {
	core.registry.RegisterClassName(reflect.TypeFor[T](), name)
}

// DebugCacheSize reports how many distinct types have had a
// TypeDescriptor computed so far. Diagnostic only.
func (c *Core) DebugCacheSize() int {
	return c.descriptors.size()
}
