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

package codec_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"veylan.dev/codec"
	"veylan.dev/codec/codeccbor"
	"veylan.dev/codec/codecjson"
	"veylan.dev/codec/codecjsonstream"
	"veylan.dev/codec/codecmsgpack"
	"veylan.dev/codec/codecxml"
	"veylan.dev/codec/codecyaml"
)

// widget is deliberately shaped to exercise every kind every adapter
// under test needs to round-trip: a string array, a primitive array,
// and a string-keyed map.
type widget struct {
	Name    string
	Count   int32
	Tags    []string
	Sizes   []int32
	Options map[string]string
}

func sampleWidget() widget {
	return widget{
		Name:    "gizmo",
		Count:   7,
		Tags:    []string{"alpha", "beta"},
		Sizes:   []int32{1, 2, 3},
		Options: map[string]string{"color": "red"},
	}
}

// adapterUnderTest pairs a format's Marshal/Unmarshal free functions so
// the same payload can be driven through all of them identically,
// mirroring the teacher's own cross-source table-driven integration
// test shape.
type adapterUnderTest struct {
	name      string
	marshal   func(*codec.Core, reflect.Type, any) ([]byte, error)
	unmarshal func(*codec.Core, reflect.Type, []byte, any) error
}

func adaptersUnderTest() []adapterUnderTest {
	return []adapterUnderTest{
		{"json", codecjson.Marshal, codecjson.Unmarshal},
		{"json-stream", codecjsonstream.Marshal, codecjsonstream.Unmarshal},
		{"xml", codecxml.Marshal, codecxml.Unmarshal},
		{"msgpack", codecmsgpack.Marshal, codecmsgpack.Unmarshal},
		{"cbor", codeccbor.Marshal, codeccbor.Unmarshal},
		{"yaml", codecyaml.Marshal, codecyaml.Unmarshal},
	}
}

func TestEveryAdapterRoundTripsTheSamePayload(t *testing.T) {
	in := sampleWidget()

	for _, a := range adaptersUnderTest() {
		t.Run(a.name, func(t *testing.T) {
			core := codec.New()

			data, err := a.marshal(core, reflect.TypeFor[widget](), in)
			require.NoError(t, err)

			var out widget
			require.NoError(t, a.unmarshal(core, reflect.TypeFor[widget](), data, &out))
			require.Equal(t, in, out)
		})
	}
}

type shape interface {
	area() float64
}

type circle struct{ Radius float64 }
type square struct{ Side float64 }

func (c circle) area() float64 { return 3.14159 * c.Radius * c.Radius }
func (s square) area() float64 { return s.Side * s.Side }

type drawing struct {
	Shapes []shape
}

func TestEveryAdapterPreservesDynamicTypeEnvelope(t *testing.T) {
	in := drawing{Shapes: []shape{circle{Radius: 2}, square{Side: 3}}}

	for _, a := range adaptersUnderTest() {
		t.Run(a.name, func(t *testing.T) {
			core := codec.New()
			codec.RegisterClassName[circle](core, "circle")
			codec.RegisterClassName[square](core, "square")

			data, err := a.marshal(core, reflect.TypeFor[drawing](), in)
			require.NoError(t, err)

			var out drawing
			require.NoError(t, a.unmarshal(core, reflect.TypeFor[drawing](), data, &out))
			require.Equal(t, in, out)
		})
	}
}
