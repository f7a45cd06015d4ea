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

package codecxml_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"veylan.dev/codec"
	"veylan.dev/codec/codecxml"
)

type address struct {
	City string
	Zip  string
}

type person struct {
	Name      string
	Age       int32
	Address   address
	Nicknames []string
	Pet       *address
}

func TestRoundTripObject(t *testing.T) {
	core := codec.New()

	in := person{
		Name:      "Ada",
		Age:       36,
		Address:   address{City: "London", Zip: "SW1"},
		Nicknames: []string{"Countess", "Enchantress"},
	}

	data, err := codecxml.Marshal(core, reflect.TypeFor[person](), in)
	require.NoError(t, err)

	var out person
	require.NoError(t, codecxml.Unmarshal(core, reflect.TypeFor[person](), data, &out))
	require.Equal(t, in, out)
}

func TestNilPointerRoundTrips(t *testing.T) {
	core := codec.New()

	in := person{Name: "Bea", Pet: nil}

	data, err := codecxml.Marshal(core, reflect.TypeFor[person](), in)
	require.NoError(t, err)

	var out person
	require.NoError(t, codecxml.Unmarshal(core, reflect.TypeFor[person](), data, &out))
	require.Nil(t, out.Pet)
}

func TestEmptySliceRoundTrips(t *testing.T) {
	core := codec.New()

	in := person{Name: "Cy", Nicknames: []string{}}

	data, err := codecxml.Marshal(core, reflect.TypeFor[person](), in)
	require.NoError(t, err)

	var out person
	require.NoError(t, codecxml.Unmarshal(core, reflect.TypeFor[person](), data, &out))
	require.Equal(t, []string{}, out.Nicknames)
}

type shape interface {
	kind() string
}

type circle struct{ Radius float64 }
type square struct{ Side float64 }

func (circle) kind() string { return "circle" }
func (square) kind() string { return "square" }

type drawing struct {
	Outline shape
}

func TestDynamicTypeEnvelope(t *testing.T) {
	core := codec.New()
	codec.RegisterClassName[circle](core, "circle")
	codec.RegisterClassName[square](core, "square")

	in := drawing{Outline: circle{Radius: 2.5}}

	data, err := codecxml.Marshal(core, reflect.TypeFor[drawing](), in)
	require.NoError(t, err)
	require.Contains(t, string(data), "circle")

	var out drawing
	require.NoError(t, codecxml.Unmarshal(core, reflect.TypeFor[drawing](), data, &out))
	require.Equal(t, in, out)
}
