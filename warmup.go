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

// WarmupTypes synthesizes and caches codecs for the types of values
// up front, the same way binding's WarmupCache pre-parses struct tags
// before request traffic arrives. Useful at process startup so the
// first real Encode/Decode of each type doesn't pay synthesis cost on
// the request path.
func WarmupTypes(core *Core, values ...any) error {
	for _, v := range values {
		typ := reflect.TypeOf(v)
		if typ == nil {
			continue
		}
		if typ.Kind() == reflect.Ptr {
			typ = typ.Elem()
		}
		if _, err := core.registry.lookup(typ); err != nil {
			return err
		}
	}
	return nil
}

// MustWarmupTypes panics if [WarmupTypes] fails. Intended for
// process-startup call sites where a synthesis failure is a
// programmer error worth crashing loudly for, not a runtime
// condition to recover from.
func MustWarmupTypes(core *Core, values ...any) {
	if err := WarmupTypes(core, values...); err != nil {
		panic(err)
	}
}

// DebugRegisteredTypes lists the wire discriminators registered via
// [WithClassName] or [RegisterClassName], for introspection/debugging.
func (c *Core) DebugRegisteredTypes() []string {
	c.registry.classMu.RLock()
	defer c.registry.classMu.RUnlock()
	names := make([]string, 0, len(c.registry.classesByName))
	for name := range c.registry.classesByName {
		names = append(names, name)
	}
	return names
}
