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

package codecyaml_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"veylan.dev/codec"
	"veylan.dev/codec/codecyaml"
)

type service struct {
	Name     string
	Port     int32
	Replicas int32
	Enabled  bool
	Env      map[string]string
	Aliases  []string
}

func TestRoundTripObject(t *testing.T) {
	core := codec.New()

	in := service{
		Name:     "api",
		Port:     8080,
		Replicas: 3,
		Enabled:  true,
		Env:      map[string]string{"STAGE": "prod"},
		Aliases:  []string{"api-1", "api-2"},
	}

	data, err := codecyaml.Marshal(core, reflect.TypeFor[service](), in)
	require.NoError(t, err)

	var out service
	require.NoError(t, codecyaml.Unmarshal(core, reflect.TypeFor[service](), data, &out))
	require.Equal(t, in, out)
}

func TestEmptySequenceRoundTrips(t *testing.T) {
	core := codec.New()

	in := service{Name: "empty", Aliases: []string{}}

	data, err := codecyaml.Marshal(core, reflect.TypeFor[service](), in)
	require.NoError(t, err)

	var out service
	require.NoError(t, codecyaml.Unmarshal(core, reflect.TypeFor[service](), data, &out))
	require.Equal(t, []string{}, out.Aliases)
}

type backend interface {
	scheme() string
}

type httpBackend struct{ Host string }
type grpcBackend struct{ Host string }

func (httpBackend) scheme() string { return "http" }
func (grpcBackend) scheme() string { return "grpc" }

type route struct {
	Target backend
}

func TestDynamicTypeEnvelope(t *testing.T) {
	core := codec.New()
	codec.RegisterClassName[httpBackend](core, "http")
	codec.RegisterClassName[grpcBackend](core, "grpc")

	in := route{Target: grpcBackend{Host: "10.0.0.1"}}

	data, err := codecyaml.Marshal(core, reflect.TypeFor[route](), in)
	require.NoError(t, err)
	require.Contains(t, string(data), "grpc")

	var out route
	require.NoError(t, codecyaml.Unmarshal(core, reflect.TypeFor[route](), data, &out))
	require.Equal(t, in, out)
}
