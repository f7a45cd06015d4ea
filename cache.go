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

// descriptorCache memoizes TypeDescriptor computation per type using a
// read-copy-update map: a lock-free read path over an atomic pointer to
// an immutable map, and a mutex-guarded copy-on-write path on miss.
//
// This is deliberately the same shape as the teacher library's
// struct-tag cache (double-checked atomic.Pointer[map[...]] with a
// single write-side mutex) — the concurrency requirements in §5 ("a
// lock-free fast path (double-checked)") are identical to memoizing
// parsed struct metadata, just keyed on reflect.Type alone here instead
// of (reflect.Type, tag).
//
// One descriptorCache belongs to each [Core]; it is unrelated to the
// codec [Registry]'s own RCU map, which caches synthesized codecs
// rather than raw structural metadata.
type descriptorCache struct {
	ptr atomic.Pointer[map[reflect.Type]*TypeDescriptor]
	mu  sync.Mutex
	fn  Oracle
}

func newDescriptorCache(fn Oracle) *descriptorCache {
	c := &descriptorCache{fn: fn}
	m := make(map[reflect.Type]*TypeDescriptor)
	c.ptr.Store(&m)
	return c
}

// describe returns the cached TypeDescriptor for typ, computing and
// publishing it on first request. Safe for concurrent use: multiple
// goroutines racing on the same type compute the descriptor at most
// once thanks to double-checked locking.
func (c *descriptorCache) describe(typ reflect.Type) (*TypeDescriptor, error) {
	if m := c.ptr.Load(); m != nil {
		if d, ok := (*m)[typ]; ok {
			return d, nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.ptr.Load()
	if d, ok := (*m)[typ]; ok {
		return d, nil
	}

	desc, err := c.fn(typ)
	if err != nil {
		return nil, err
	}

	newMap := make(map[reflect.Type]*TypeDescriptor, len(*m)+1)
	maps.Copy(newMap, *m)
	newMap[typ] = desc
	c.ptr.Store(&newMap)

	return desc, nil
}

// size reports how many types have been described so far. Used by
// [Core.DebugCacheSize].
func (c *descriptorCache) size() int {
	m := c.ptr.Load()
	if m == nil {
		return 0
	}
	return len(*m)
}
