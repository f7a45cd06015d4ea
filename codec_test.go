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
	"net"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"veylan.dev/codec"
	"veylan.dev/codec/codecjson"
)

type primitiveGrid struct {
	Flag   bool
	B      byte
	Ch     codec.Char
	Sh     int16
	I      int32
	L      int64
	F      float32
	D      float64
	S      string
}

func TestPrimitiveGridRoundTrips(t *testing.T) {
	core := codec.New()
	in := primitiveGrid{
		Flag: true, B: 200, Ch: 'z', Sh: -12, I: 100000, L: -1 << 40,
		F: 1.5, D: 3.14159, S: "hello",
	}

	data, err := codecjson.Marshal(core, reflect.TypeFor[primitiveGrid](), in)
	require.NoError(t, err)

	var out primitiveGrid
	require.NoError(t, codecjson.Unmarshal(core, reflect.TypeFor[primitiveGrid](), data, &out))
	require.Equal(t, in, out)
}

type color int

const (
	colorRed color = iota
	colorGreen
	colorBlue
)

func TestEnumRoundTrips(t *testing.T) {
	core := codec.New()
	codec.RegisterEnum[color](core, "red", "green", "blue")

	type swatch struct{ Primary color }
	in := swatch{Primary: colorBlue}

	data, err := codecjson.Marshal(core, reflect.TypeFor[swatch](), in)
	require.NoError(t, err)
	require.Contains(t, string(data), `"blue"`)

	var out swatch
	require.NoError(t, codecjson.Unmarshal(core, reflect.TypeFor[swatch](), data, &out))
	require.Equal(t, in, out)
}

func TestUnknownEnumConstantErrors(t *testing.T) {
	core := codec.New()
	codec.RegisterEnum[color](core, "red", "green", "blue")

	type swatch struct{ Primary color }

	r, err := codecjson.NewReader([]byte(`{"Primary":"purple"}`))
	require.NoError(t, err)

	var out swatch
	err = core.Decode(reflect.TypeFor[swatch](), r, &out)
	require.Error(t, err)
	var cerr *codec.CodecError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, codec.CategoryUnknownEnumConstant, cerr.Category)
}

type node struct {
	Value    int
	Children []*node
}

func TestCyclicShapeSynthesisDoesNotDeadlock(t *testing.T) {
	core := codec.New()

	in := &node{
		Value: 1,
		Children: []*node{
			{Value: 2},
			{Value: 3, Children: []*node{{Value: 4}}},
		},
	}

	data, err := codecjson.Marshal(core, reflect.TypeFor[*node](), in)
	require.NoError(t, err)

	var out *node
	require.NoError(t, codecjson.Unmarshal(core, reflect.TypeFor[*node](), data, &out))
	require.Equal(t, in, out)
}

type animal interface {
	sound() string
}

type dog struct{ Name string }
type cat struct{ Name string }

func (dog) sound() string { return "woof" }
func (cat) sound() string { return "meow" }

type pen struct {
	Occupant animal
}

func TestDynamicTypeEnvelopeAtRoot(t *testing.T) {
	core := codec.New()
	codec.RegisterClassName[dog](core, "dog")
	codec.RegisterClassName[cat](core, "cat")

	var occupant animal = cat{Name: "Whiskers"}

	data, err := codecjson.Marshal(core, reflect.TypeFor[animal](), occupant)
	require.NoError(t, err)
	require.Contains(t, string(data), `"@type":"cat"`)

	var out animal
	require.NoError(t, codecjson.Unmarshal(core, reflect.TypeFor[animal](), data, &out))
	require.Equal(t, occupant, out)
}

func TestNestedDynamicTypeEnvelope(t *testing.T) {
	core := codec.New()
	codec.RegisterClassName[dog](core, "dog")
	codec.RegisterClassName[cat](core, "cat")

	in := pen{Occupant: dog{Name: "Rex"}}

	data, err := codecjson.Marshal(core, reflect.TypeFor[pen](), in)
	require.NoError(t, err)

	var out pen
	require.NoError(t, codecjson.Unmarshal(core, reflect.TypeFor[pen](), data, &out))
	require.Equal(t, in, out)
}

func TestOrdinaryObjectDoesNotFalsePositiveAsEnvelope(t *testing.T) {
	core := codec.New()

	type record struct {
		Type  string
		Value int
	}
	in := record{Type: "gauge", Value: 42}

	data, err := codecjson.Marshal(core, reflect.TypeFor[record](), in)
	require.NoError(t, err)

	var out record
	require.NoError(t, codecjson.Unmarshal(core, reflect.TypeFor[record](), data, &out))
	require.Equal(t, in, out)
}

func TestUnknownTypeNameErrors(t *testing.T) {
	core := codec.New()

	type wrapper struct{ Occupant animal }

	r, err := codecjson.NewReader([]byte(`{"Occupant":{"@type":"llama","@value":{}}}`))
	require.NoError(t, err)

	var out wrapper
	err = core.Decode(reflect.TypeFor[wrapper](), r, &out)
	require.Error(t, err)
	var cerr *codec.CodecError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, codec.CategoryUnknownType, cerr.Category)
}

type withMap struct {
	StringKeyed map[string]int
	IntKeyed    map[int]string
}

func TestMapCodecStringAndNonStringKeys(t *testing.T) {
	core := codec.New()
	in := withMap{
		StringKeyed: map[string]int{"a": 1, "b": 2},
		IntKeyed:    map[int]string{1: "one", 2: "two"},
	}

	data, err := codecjson.Marshal(core, reflect.TypeFor[withMap](), in)
	require.NoError(t, err)

	var out withMap
	require.NoError(t, codecjson.Unmarshal(core, reflect.TypeFor[withMap](), data, &out))
	require.Equal(t, in, out)
}

type withStringProxies struct {
	At       time.Time
	Timeout  time.Duration
	Addr     net.IP
	Endpoint url.URL
}

func TestBuiltinStringProxiesRoundTrip(t *testing.T) {
	core := codec.New()
	in := withStringProxies{
		At:       time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC),
		Timeout:  30 * time.Second,
		Addr:     net.ParseIP("192.168.1.1"),
		Endpoint: url.URL{Scheme: "https", Host: "example.com", Path: "/x"},
	}

	data, err := codecjson.Marshal(core, reflect.TypeFor[withStringProxies](), in)
	require.NoError(t, err)

	var out withStringProxies
	require.NoError(t, codecjson.Unmarshal(core, reflect.TypeFor[withStringProxies](), data, &out))
	require.True(t, in.At.Equal(out.At))
	require.Equal(t, in.Timeout, out.Timeout)
	require.Equal(t, in.Addr, out.Addr)
	require.Equal(t, in.Endpoint, out.Endpoint)
}

func TestMapCodecStringProxyKeyTolerance(t *testing.T) {
	core := codec.New()
	type withTimeKeyedMap struct {
		Readings map[time.Time]float64
	}

	at := time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC)
	in := withTimeKeyedMap{Readings: map[time.Time]float64{at: 98.6}}

	data, err := codecjson.Marshal(core, reflect.TypeFor[withTimeKeyedMap](), in)
	require.NoError(t, err)
	require.Contains(t, string(data), at.Format(time.RFC3339Nano))
	require.NotContains(t, string(data), `"@key"`)

	var out withTimeKeyedMap
	require.NoError(t, codecjson.Unmarshal(core, reflect.TypeFor[withTimeKeyedMap](), data, &out))
	require.Len(t, out.Readings, 1)
	for k, v := range out.Readings {
		require.True(t, at.Equal(k))
		require.Equal(t, 98.6, v)
	}

	// A producer unaware of the string-proxy override may still emit
	// the general 2-field array form; decode must tolerate it too.
	arrayForm := `[{"@key":"` + at.Format(time.RFC3339Nano) + `","@value":98.6}]`
	r, err := codecjson.NewReader([]byte(arrayForm))
	require.NoError(t, err)

	var fromArray withTimeKeyedMap
	require.NoError(t, core.Decode(reflect.TypeFor[map[time.Time]float64](), r, &fromArray.Readings))
	require.Len(t, fromArray.Readings, 1)
	for k, v := range fromArray.Readings {
		require.True(t, at.Equal(k))
		require.Equal(t, 98.6, v)
	}
}

func TestWarmupTypesPopulatesCache(t *testing.T) {
	core := codec.New()
	require.Zero(t, core.DebugCacheSize())

	require.NoError(t, codec.WarmupTypes(core, primitiveGrid{}, withMap{}))
	require.GreaterOrEqual(t, core.DebugCacheSize(), 2)
}

func TestDebugRegisteredTypesListsClassNames(t *testing.T) {
	core := codec.New(codec.WithClassName[dog]("dog"), codec.WithClassName[cat]("cat"))
	names := core.DebugRegisteredTypes()
	require.Contains(t, names, "dog")
	require.Contains(t, names, "cat")
}

func TestReverseOrderEnvelopeDetection(t *testing.T) {
	core := codec.New()
	codec.RegisterClassName[dog](core, "dog")
	codec.RegisterClassName[cat](core, "cat")

	r, err := codecjson.NewReader([]byte(`{"@value":{"Name":"Rex"},"@type":"dog"}`))
	require.NoError(t, err)

	var out animal
	require.NoError(t, core.Decode(reflect.TypeFor[animal](), r, &out))
	require.Equal(t, dog{Name: "Rex"}, out)
}

type legacyPoint struct {
	X int
	Y int
}

type point struct {
	X int
	Y int
}

func TestTypeProxyRedirectsLookup(t *testing.T) {
	core := codec.New(codec.WithTypeProxy[legacyPoint](reflect.TypeFor[point]()))

	in := legacyPoint{X: 3, Y: 4}
	data, err := codecjson.Marshal(core, reflect.TypeFor[legacyPoint](), in)
	require.NoError(t, err)

	var out legacyPoint
	require.NoError(t, codecjson.Unmarshal(core, reflect.TypeFor[legacyPoint](), data, &out))
	require.Equal(t, in, out)
}

type immutablePair struct {
	x int
	y int
}

func TestPositionalArgConstructorRoundTrip(t *testing.T) {
	core := codec.New()
	codec.RegisterArgConstructor[immutablePair](core, func(args []reflect.Value) immutablePair {
		return immutablePair{x: int(args[0].Int()), y: int(args[1].Int())}
	})

	in := immutablePair{x: 5, y: 7}
	data, err := codecjson.Marshal(core, reflect.TypeFor[immutablePair](), in)
	require.NoError(t, err)

	var out immutablePair
	require.NoError(t, codecjson.Unmarshal(core, reflect.TypeFor[immutablePair](), data, &out))
	require.Equal(t, in, out)
}

type undeclaredImmutablePair struct {
	x int
	y int
}

func TestMissingConstructorForUnexportedFieldErrors(t *testing.T) {
	core := codec.New()

	r, err := codecjson.NewReader([]byte(`{"x":1,"y":2}`))
	require.NoError(t, err)

	var out undeclaredImmutablePair
	err = core.Decode(reflect.TypeFor[undeclaredImmutablePair](), r, &out)
	require.Error(t, err)
	var cerr *codec.CodecError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, codec.CategoryMissingConstructor, cerr.Category)
}
