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
	"maps"
	"reflect"
	"sync"
	"sync/atomic"
)

// Registry is the per-[Core] codec cache and synthesis engine (§4.G).
// Reads are lock-free over an atomic map snapshot; synthesis of a new
// codec runs outside the lock so that recursive, self-referential
// types (§4.G, §5) don't deadlock: a codecRef forwarding placeholder
// is published before the recursive descent begins, exactly mirroring
// the double-checked atomic.Pointer[map] pattern in cache.go.
type Registry struct {
	ptr atomic.Pointer[map[reflect.Type]Codec]
	mu  sync.Mutex

	core *Core // back-reference, set once by New

	enumMu sync.RWMutex
	enums  map[reflect.Type][]string

	ctorMu sync.RWMutex
	ctors  map[reflect.Type]Constructor

	argCtorMu sync.RWMutex
	argCtors  map[reflect.Type]ArgConstructor

	proxyMu sync.RWMutex
	proxies map[reflect.Type]stringProxy

	typeProxyMu sync.RWMutex
	typeProxies map[reflect.Type]reflect.Type

	classMu       sync.RWMutex
	classNames    map[reflect.Type]string
	classesByName map[string]reflect.Type
}

func newRegistry() *Registry {
	r := &Registry{
		enums:         make(map[reflect.Type][]string),
		ctors:         make(map[reflect.Type]Constructor),
		argCtors:      make(map[reflect.Type]ArgConstructor),
		proxies:       make(map[reflect.Type]stringProxy),
		typeProxies:   make(map[reflect.Type]reflect.Type),
		classNames:    make(map[reflect.Type]string),
		classesByName: make(map[string]reflect.Type),
	}
	for typ, proxy := range builtinStringProxies() {
		r.proxies[typ] = proxy
	}
	m := make(map[reflect.Type]Codec)
	r.ptr.Store(&m)
	return r
}

// lookup returns the codec for typ, synthesizing and caching it on
// first request. Concurrent callers racing on the same never-before-seen
// type each publish a codecRef before releasing the lock; whichever
// goroutine wins the double-checked re-read reuses that ref rather than
// synthesizing twice, and cyclic type graphs bottom out on the ref
// instead of recursing forever.
func (r *Registry) lookup(typ reflect.Type) (Codec, error) {
	typ = r.remapType(typ)

	if m := r.ptr.Load(); m != nil {
		if c, ok := (*m)[typ]; ok {
			return c, nil
		}
	}

	r.mu.Lock()
	m := r.ptr.Load()
	if c, ok := (*m)[typ]; ok {
		r.mu.Unlock()
		return c, nil
	}

	ref := &codecRef{}
	newMap := make(map[reflect.Type]Codec, len(*m)+1)
	maps.Copy(newMap, *m)
	newMap[typ] = ref
	r.ptr.Store(&newMap)
	r.mu.Unlock()

	codec, err := r.synthesize(typ)
	if err != nil {
		r.evict(typ, ref)
		return nil, err
	}

	ref.resolve(codec)
	r.publish(typ, codec)
	return codec, nil
}

// publish installs codec for typ, replacing whatever is currently
// there (a codecRef being resolved, or nothing).
func (r *Registry) publish(typ reflect.Type, codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.ptr.Load()
	newMap := make(map[reflect.Type]Codec, len(*m)+1)
	maps.Copy(newMap, *m)
	newMap[typ] = codec
	r.ptr.Store(&newMap)
}

// evict removes typ's entry if it still holds the given forwarding
// ref, so that a synthesis failure doesn't wedge the type permanently
// behind an unresolved reference.
func (r *Registry) evict(typ reflect.Type, ref *codecRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.ptr.Load()
	if (*m)[typ] != Codec(ref) {
		return
	}
	newMap := make(map[reflect.Type]Codec, len(*m))
	maps.Copy(newMap, *m)
	delete(newMap, typ)
	r.ptr.Store(&newMap)
}

// RegisterCodec installs an explicit, hand-written codec for typ,
// bypassing the oracle entirely.
func (r *Registry) RegisterCodec(typ reflect.Type, codec Codec) {
	r.publish(typ, codec)
}

// synthesize builds a fresh codec for typ: a registered string proxy
// takes precedence, then the type descriptor's Kind selects the
// shape-driven factory (§4.G "shape-driven codec factories").
func (r *Registry) synthesize(typ reflect.Type) (Codec, error) {
	if typ.Kind() == reflect.Ptr {
		inner, err := r.lookup(typ.Elem())
		if err != nil {
			return nil, err
		}
		return newPointerCodec(typ, inner), nil
	}

	if proxy, ok := r.stringProxyFor(typ); ok {
		return newStringProxyCodec(typ, proxy), nil
	}
	if proxy, ok := textCodecProxyFor(typ); ok {
		return newStringProxyCodec(typ, proxy), nil
	}

	desc, err := r.core.descriptors.describe(typ)
	if err != nil {
		return nil, err
	}

	r.core.logger.Debug("codec: synthesizing type", "type", typ, "kind", desc.Kind)

	switch desc.Kind {
	case KindPrimitive:
		return newPrimitiveCodec(desc)
	case KindString:
		return newStringCodec(desc), nil
	case KindEnum:
		return newEnumCodec(desc), nil
	case KindPrimitiveArray, KindObjectArray, KindCollection:
		return newArrayCodec(desc)
	case KindMap:
		return newMapCodec(desc, r)
	case KindObject:
		return newObjectCodec(desc)
	default:
		return nil, newError(CategoryStructuralMismatch, typ, "", "cannot synthesize a codec for kind %s", desc.Kind)
	}
}

// RegisterTypeProxy makes lookups of T resolve to proxyType's codec
// instead (§3 "TypeProxyTable", §4.I registerTypeProxy). It's how a
// caller says "treat every occurrence of T as proxyType" — the usual
// case being an interface or abstract type resolved to one concrete
// implementation.
func RegisterTypeProxy[T any](core *Core, proxyType reflect.Type) {
	typ := reflect.TypeFor[T]()
	core.registry.typeProxyMu.Lock()
	defer core.registry.typeProxyMu.Unlock()
	core.registry.typeProxies[typ] = proxyType
}

// remapType applies type-proxy remapping exactly once, at codec-lookup
// entry (§4.A): lookup(T) = registry[proxy(name(T))]. A proxy target
// that itself has a proxy registered is not chased further; only the
// caller's original type is ever consulted against the table.
func (r *Registry) remapType(typ reflect.Type) reflect.Type {
	r.typeProxyMu.RLock()
	defer r.typeProxyMu.RUnlock()
	if proxy, ok := r.typeProxies[typ]; ok {
		return proxy
	}
	return typ
}

// RegisterEnum records the ordered constant names for T (§4.D). Enum
// detection is opt-in: a named int or string type is never treated as
// an enum unless registered.
func RegisterEnum[T any](core *Core, names ...string) {
	typ := reflect.TypeFor[T]()
	core.registry.enumMu.Lock()
	defer core.registry.enumMu.Unlock()
	core.registry.enums[typ] = names
}

func (r *Registry) enumNames(typ reflect.Type) ([]string, bool) {
	r.enumMu.RLock()
	defer r.enumMu.RUnlock()
	names, ok := r.enums[typ]
	return names, ok
}

// codecRef is a lazily-resolved forwarding [Codec] used to break
// synthesis cycles (§4.G, §5). Reads before resolution fail with
// [ErrUnresolvedForwardRef]; this only happens if a codec tries to use
// a self-referential field before construction finishes, which would
// indicate infinite recursion rather than a legitimate cycle (an
// object field pointing back into an in-progress ancestor is only ever
// read *after* the full object graph is built, never during
// synthesis).
type codecRef struct {
	ptr atomic.Pointer[Codec]
}

func (r *codecRef) resolve(c Codec) {
	r.ptr.Store(&c)
}

func (r *codecRef) target() (Codec, error) {
	c := r.ptr.Load()
	if c == nil {
		return nil, wrapError(CategoryStructuralMismatch, nil, "", ErrUnresolvedForwardRef)
	}
	return *c, nil
}

func (r *codecRef) Encode(ctx *EncodeContext, value reflect.Value, sink Sink) error {
	c, err := r.target()
	if err != nil {
		return err
	}
	return c.Encode(ctx, value, sink)
}

func (r *codecRef) Decode(ctx *DecodeContext, source Source) (reflect.Value, error) {
	c, err := r.target()
	if err != nil {
		return reflect.Value{}, err
	}
	return c.Decode(ctx, source)
}
