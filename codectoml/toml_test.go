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

package codectoml_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"veylan.dev/codec"
	"veylan.dev/codec/codectoml"
)

type server struct {
	Host    string
	Port    int32
	Weights []float64
	Tags    map[string]string
}

func TestRoundTripObject(t *testing.T) {
	core := codec.New()

	in := server{
		Host:    "10.0.0.5",
		Port:    9090,
		Weights: []float64{0.5, 1.5, 2.5},
		Tags:    map[string]string{"az": "us-east-1a"},
	}

	data, err := codectoml.Marshal(core, reflect.TypeFor[server](), in)
	require.NoError(t, err)

	var out server
	require.NoError(t, codectoml.Unmarshal(core, reflect.TypeFor[server](), data, &out))
	require.Equal(t, in, out)
}

func TestNullFieldBecomesAbsentKey(t *testing.T) {
	core := codec.New()

	type wrapper struct {
		Name  string
		Inner *server
	}

	in := wrapper{Name: "root"}

	data, err := codectoml.Marshal(core, reflect.TypeFor[wrapper](), in)
	require.NoError(t, err)

	var out wrapper
	require.NoError(t, codectoml.Unmarshal(core, reflect.TypeFor[wrapper](), data, &out))
	require.Nil(t, out.Inner)
	require.Equal(t, "root", out.Name)
}

type endpoint interface {
	proto() string
}

type tcpEndpoint struct{ Addr string }
type udpEndpoint struct{ Addr string }

func (tcpEndpoint) proto() string { return "tcp" }
func (udpEndpoint) proto() string { return "udp" }

type binding struct {
	Endpoint endpoint
}

func TestDynamicTypeEnvelope(t *testing.T) {
	core := codec.New()
	codec.RegisterClassName[tcpEndpoint](core, "tcp")
	codec.RegisterClassName[udpEndpoint](core, "udp")

	in := binding{Endpoint: tcpEndpoint{Addr: "127.0.0.1:80"}}

	data, err := codectoml.Marshal(core, reflect.TypeFor[binding](), in)
	require.NoError(t, err)

	var out binding
	require.NoError(t, codectoml.Unmarshal(core, reflect.TypeFor[binding](), data, &out))
	require.Equal(t, in, out)
}
