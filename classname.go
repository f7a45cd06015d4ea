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

// RegisterClassName installs typ's wire discriminator after Core
// construction, equivalent to passing [WithClassName] at [New] time.
func (r *Registry) RegisterClassName(typ reflect.Type, name string) {
	r.classMu.Lock()
	defer r.classMu.Unlock()
	r.classNames[typ] = name
	r.classesByName[name] = typ
}

// classNameFor returns typ's wire discriminator: its registered name,
// or its reflect.Type.String() if none was registered.
func (r *Registry) classNameFor(typ reflect.Type) string {
	r.classMu.RLock()
	name, ok := r.classNames[typ]
	r.classMu.RUnlock()
	if ok {
		return name
	}
	return typ.String()
}

// classForName resolves a wire discriminator back to a reflect.Type.
// Only names registered via WithClassName/RegisterClassName resolve:
// unlike classNameFor's fallback, there is no reflective name-to-type
// lookup, since that would let untrusted input construct arbitrary
// types (§7 CategoryUnknownType covers the failure here).
func (r *Registry) classForName(name string) (reflect.Type, bool) {
	r.classMu.RLock()
	defer r.classMu.RUnlock()
	typ, ok := r.classesByName[name]
	return typ, ok
}
