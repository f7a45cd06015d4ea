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

package codecjson_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"veylan.dev/codec"
	"veylan.dev/codec/codecjson"
)

type address struct {
	City string
	Zip  string
}

type person struct {
	Name    string
	Age     int32
	Home    address
	Tags    []string
	Aliases map[string]string
}

func TestRoundTripObject(t *testing.T) {
	core := codec.New()

	in := person{
		Name: "Ada",
		Age:  36,
		Home: address{City: "London", Zip: "SW1"},
		Tags: []string{"math", "engineering"},
		Aliases: map[string]string{
			"maiden": "Byron",
		},
	}

	data, err := codecjson.Marshal(core, reflect.TypeFor[person](), in)
	require.NoError(t, err)

	var out person
	require.NoError(t, codecjson.Unmarshal(core, reflect.TypeFor[person](), data, &out))
	require.Equal(t, in, out)
}

func TestUnknownFieldsAreSkippedByDefault(t *testing.T) {
	core := codec.New()

	var out address
	err := codecjson.Unmarshal(core, reflect.TypeFor[address](), []byte(`{"City":"Paris","Country":"FR","Zip":"75001"}`), &out)
	require.NoError(t, err)
	require.Equal(t, address{City: "Paris", Zip: "75001"}, out)
}

func TestUnknownFieldsFailWhenConfigured(t *testing.T) {
	core := codec.New(codec.WithFailOnUnknownFields(true))

	var out address
	err := codecjson.Unmarshal(core, reflect.TypeFor[address](), []byte(`{"City":"Paris","Country":"FR"}`), &out)
	require.Error(t, err)

	var cerr *codec.CodecError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, codec.CategoryStructuralMismatch, cerr.Category)
}

func TestFieldCollisionDisambiguation(t *testing.T) {
	type Base struct {
		ID string
	}
	type Derived struct {
		Base
		ID string
	}

	core := codec.New()
	in := Derived{Base: Base{ID: "base-id"}, ID: "derived-id"}

	data, err := codecjson.Marshal(core, reflect.TypeFor[Derived](), in)
	require.NoError(t, err)
	require.Contains(t, string(data), `"ID"`)
	require.Contains(t, string(data), `"*ID"`)

	var out Derived
	require.NoError(t, codecjson.Unmarshal(core, reflect.TypeFor[Derived](), data, &out))
	require.Equal(t, in, out)
}

type shape interface {
	isShape()
}

type circle struct {
	Radius float64
}

func (circle) isShape() {}

type square struct {
	Side float64
}

func (square) isShape() {}

type drawing struct {
	Items []shape
}

func TestDynamicTypeEnvelope(t *testing.T) {
	core := codec.New()
	codec.RegisterClassName[circle](core, "circle")
	codec.RegisterClassName[square](core, "square")

	in := drawing{Items: []shape{circle{Radius: 2}, square{Side: 3}}}

	data, err := codecjson.Marshal(core, reflect.TypeFor[drawing](), in)
	require.NoError(t, err)
	require.Contains(t, string(data), `"@type":"circle"`)
	require.Contains(t, string(data), `"@type":"square"`)

	var out drawing
	require.NoError(t, codecjson.Unmarshal(core, reflect.TypeFor[drawing](), data, &out))
	require.Equal(t, in, out)
}

func TestPlainObjectFieldNeverGetsEnvelope(t *testing.T) {
	core := codec.New()

	in := person{Name: "Grace", Age: 44}
	data, err := codecjson.Marshal(core, reflect.TypeFor[person](), in)
	require.NoError(t, err)
	require.NotContains(t, string(data), "@type")
}

func TestCyclicTypeSynthesis(t *testing.T) {
	type node struct {
		Value    int32
		Children []*node
	}

	core := codec.New()
	in := node{Value: 1, Children: []*node{{Value: 2}, {Value: 3}}}

	data, err := codecjson.Marshal(core, reflect.TypeFor[node](), in)
	require.NoError(t, err)

	var out node
	require.NoError(t, codecjson.Unmarshal(core, reflect.TypeFor[node](), data, &out))
	require.Equal(t, in.Value, out.Value)
	require.Len(t, out.Children, 2)
}
