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

package codecmsgpack_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"veylan.dev/codec"
	"veylan.dev/codec/codecmsgpack"
)

type reading struct {
	Sensor string
	Value  float64
	Tags   map[string]string
}

func TestRoundTripObject(t *testing.T) {
	core := codec.New()

	in := reading{
		Sensor: "temp-1",
		Value:  21.5,
		Tags:   map[string]string{"room": "kitchen"},
	}

	data, err := codecmsgpack.Marshal(core, reflect.TypeFor[reading](), in)
	require.NoError(t, err)

	var out reading
	require.NoError(t, codecmsgpack.Unmarshal(core, reflect.TypeFor[reading](), data, &out))
	require.Equal(t, in, out)
}

func TestNestedArraysAndObjects(t *testing.T) {
	core := codec.New()

	type point struct{ X, Y int32 }
	type path struct{ Points []point }

	in := path{Points: []point{{1, 2}, {3, 4}, {5, 6}}}

	data, err := codecmsgpack.Marshal(core, reflect.TypeFor[path](), in)
	require.NoError(t, err)

	var out path
	require.NoError(t, codecmsgpack.Unmarshal(core, reflect.TypeFor[path](), data, &out))
	require.Equal(t, in, out)
}

type animal interface {
	sound() string
}

type dog struct{ Name string }
type cat struct{ Name string }

func (dog) sound() string { return "woof" }
func (cat) sound() string { return "meow" }

type kennel struct {
	Resident animal
}

func TestDynamicTypeEnvelope(t *testing.T) {
	core := codec.New()
	codec.RegisterClassName[dog](core, "dog")
	codec.RegisterClassName[cat](core, "cat")

	in := kennel{Resident: dog{Name: "Rex"}}

	data, err := codecmsgpack.Marshal(core, reflect.TypeFor[kennel](), in)
	require.NoError(t, err)

	var out kennel
	require.NoError(t, codecmsgpack.Unmarshal(core, reflect.TypeFor[kennel](), data, &out))
	require.Equal(t, in, out)
}
