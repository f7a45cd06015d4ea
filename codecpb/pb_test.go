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

package codecpb_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"veylan.dev/codec"
	"veylan.dev/codec/codecpb"
)

type telemetry struct {
	DeviceID string
	Readings []int32
	Meta     map[string]string
}

func TestRoundTripObject(t *testing.T) {
	core := codec.New()

	in := telemetry{
		DeviceID: "dev-9",
		Readings: []int32{10, 20, 30},
		Meta:     map[string]string{"fw": "1.2.3"},
	}

	data, err := codecpb.Marshal(core, reflect.TypeFor[telemetry](), in)
	require.NoError(t, err)

	var out telemetry
	require.NoError(t, codecpb.Unmarshal(core, reflect.TypeFor[telemetry](), data, &out))
	require.Equal(t, in, out)
}

func TestNilPointerRoundTrips(t *testing.T) {
	core := codec.New()

	type wrapper struct{ Inner *telemetry }
	in := wrapper{}

	data, err := codecpb.Marshal(core, reflect.TypeFor[wrapper](), in)
	require.NoError(t, err)

	var out wrapper
	require.NoError(t, codecpb.Unmarshal(core, reflect.TypeFor[wrapper](), data, &out))
	require.Nil(t, out.Inner)
}

type notifier interface {
	channel() string
}

type emailNotifier struct{ Address string }
type smsNotifier struct{ Number string }

func (emailNotifier) channel() string { return "email" }
func (smsNotifier) channel() string   { return "sms" }

type alert struct {
	Notifier notifier
}

func TestDynamicTypeEnvelope(t *testing.T) {
	core := codec.New()
	codec.RegisterClassName[emailNotifier](core, "email")
	codec.RegisterClassName[smsNotifier](core, "sms")

	in := alert{Notifier: emailNotifier{Address: "ops@example.com"}}

	data, err := codecpb.Marshal(core, reflect.TypeFor[alert](), in)
	require.NoError(t, err)

	var out alert
	require.NoError(t, codecpb.Unmarshal(core, reflect.TypeFor[alert](), data, &out))
	require.Equal(t, in, out)
}
