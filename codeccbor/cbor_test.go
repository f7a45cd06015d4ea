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

package codeccbor_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"veylan.dev/codec"
	"veylan.dev/codec/codeccbor"
)

type artifact struct {
	Digest string
	Size   int64
	Labels []string
}

func TestRoundTripObject(t *testing.T) {
	core := codec.New()

	in := artifact{Digest: "sha256:abc", Size: 4096, Labels: []string{"amd64", "linux"}}

	data, err := codeccbor.Marshal(core, reflect.TypeFor[artifact](), in)
	require.NoError(t, err)

	var out artifact
	require.NoError(t, codeccbor.Unmarshal(core, reflect.TypeFor[artifact](), data, &out))
	require.Equal(t, in, out)
}

func TestNullPointerRoundTrips(t *testing.T) {
	core := codec.New()

	type wrapper struct{ Inner *artifact }
	in := wrapper{}

	data, err := codeccbor.Marshal(core, reflect.TypeFor[wrapper](), in)
	require.NoError(t, err)

	var out wrapper
	require.NoError(t, codeccbor.Unmarshal(core, reflect.TypeFor[wrapper](), data, &out))
	require.Nil(t, out.Inner)
}

type transport interface {
	label() string
}

type truck struct{ Plate string }
type ship struct{ IMO string }

func (truck) label() string { return "truck" }
func (ship) label() string  { return "ship" }

type shipment struct {
	Via transport
}

func TestDynamicTypeEnvelope(t *testing.T) {
	core := codec.New()
	codec.RegisterClassName[truck](core, "truck")
	codec.RegisterClassName[ship](core, "ship")

	in := shipment{Via: ship{IMO: "9074729"}}

	data, err := codeccbor.Marshal(core, reflect.TypeFor[shipment](), in)
	require.NoError(t, err)

	var out shipment
	require.NoError(t, codeccbor.Unmarshal(core, reflect.TypeFor[shipment](), data, &out))
	require.Equal(t, in, out)
}
