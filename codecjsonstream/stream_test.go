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

package codecjsonstream_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"veylan.dev/codec"
	"veylan.dev/codec/codecjsonstream"
)

type event struct {
	Name string
	Tags []string
}

func TestStreamRoundTrip(t *testing.T) {
	core := codec.New()

	in := event{Name: "deploy", Tags: []string{"prod", "urgent"}}

	var buf bytes.Buffer
	w := codecjsonstream.NewWriter(&buf)
	require.NoError(t, core.Encode(reflect.TypeFor[event](), in, w))
	require.NoError(t, w.Flush())

	var out event
	r := codecjsonstream.NewReader(&buf)
	require.NoError(t, core.Decode(reflect.TypeFor[event](), r, &out))
	require.Equal(t, in, out)
}
