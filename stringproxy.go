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

package codec

import (
	"encoding"
	"net"
	"net/url"
	"reflect"
	"time"
)

// builtinStringProxies seeds a fresh Registry with string-proxy codecs
// for the handful of standard-library types binding/convert.go already
// knew how to parse from a single query/form string: time.Time,
// time.Duration, net.IP and url.URL serialize as one wire string
// rather than as a struct of their internal fields.
func builtinStringProxies() map[reflect.Type]stringProxy {
	return map[reflect.Type]stringProxy{
		timeType: {
			marshal: func(v reflect.Value) (string, error) {
				return v.Interface().(time.Time).Format(time.RFC3339Nano), nil
			},
			unmarshal: func(s string) (reflect.Value, error) {
				t, err := time.Parse(time.RFC3339Nano, s)
				if err != nil {
					return reflect.Value{}, err
				}
				return reflect.ValueOf(t), nil
			},
		},
		durationType: {
			marshal: func(v reflect.Value) (string, error) {
				return v.Interface().(time.Duration).String(), nil
			},
			unmarshal: func(s string) (reflect.Value, error) {
				d, err := time.ParseDuration(s)
				if err != nil {
					return reflect.Value{}, err
				}
				return reflect.ValueOf(d), nil
			},
		},
		ipType: {
			marshal: func(v reflect.Value) (string, error) {
				return v.Interface().(net.IP).String(), nil
			},
			unmarshal: func(s string) (reflect.Value, error) {
				ip := net.ParseIP(s)
				if ip == nil {
					return reflect.Value{}, newError(CategoryMalformedScalar, ipType, "", "invalid IP address %q", s)
				}
				return reflect.ValueOf(ip), nil
			},
		},
		urlType: {
			marshal: func(v reflect.Value) (string, error) {
				u := v.Interface().(url.URL)
				return u.String(), nil
			},
			unmarshal: func(s string) (reflect.Value, error) {
				u, err := url.Parse(s)
				if err != nil {
					return reflect.Value{}, err
				}
				return reflect.ValueOf(*u), nil
			},
		},
	}
}

// textCodecProxyFor bridges encoding.TextMarshaler/TextUnmarshaler
// (§12 supplemented feature): any type implementing both gets a
// string-proxy codec for free, without an explicit RegisterStringProxyCodec
// call, the same way encoding/json defers to these interfaces.
func textCodecProxyFor(typ reflect.Type) (stringProxy, bool) {
	ptrType := reflect.PointerTo(typ)
	if !typ.Implements(textMarshalerType) || !ptrType.Implements(textUnmarshalerType) {
		return stringProxy{}, false
	}

	return stringProxy{
		marshal: func(v reflect.Value) (string, error) {
			b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
		unmarshal: func(s string) (reflect.Value, error) {
			ptr := reflect.New(typ)
			if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
				return reflect.Value{}, err
			}
			return ptr.Elem(), nil
		},
	}, true
}
