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

	"veylan.dev/codec"
	"veylan.dev/codec/codecjson"
)

// FuzzCharCodec exercises the char primitive's one-code-point
// constraint (§4.C) against arbitrary strings, including empty,
// multi-rune, and non-BMP input.
func FuzzCharCodec(f *testing.F) {
	f.Add("a")
	f.Add("")
	f.Add("ab")
	f.Add("日")
	f.Add("😀")
	f.Add("\x00")
	f.Add(string(rune(0x10FFFF)))

	f.Fuzz(func(t *testing.T, s string) {
		core := codec.New()

		type holder struct{ C codec.Char }

		doc := []byte(`{"C":"` + jsonEscape(s) + `"}`)

		var out holder
		reader, err := codecjson.NewReader(doc)
		if err != nil {
			return
		}
		//nolint:errcheck // fuzz test only checks for panics, not success
		_ = core.Decode(reflect.TypeFor[holder](), reader, &out)
	})
}

// FuzzEnvelopeDetection feeds arbitrary field-name/value pairs at the
// position dispatch.go's looksLikeEnvelope inspects, checking that
// detection never panics regardless of what masquerades as a
// discriminator field.
func FuzzEnvelopeDetection(f *testing.F) {
	f.Add("@type", "widget", "@value")
	f.Add("@type", "", "@value")
	f.Add("Type", "widget", "Value")
	f.Add("@type", "widget", "@val")
	f.Add("", "", "")
	f.Add("@type", "widget", "@type")
	f.Add("@value", "widget", "@type")

	f.Fuzz(func(t *testing.T, typeField, className, valueField string) {
		core := codec.New()

		doc := `{"` + jsonEscape(typeField) + `":"` + jsonEscape(className) + `","` + jsonEscape(valueField) + `":{}}`

		type inner interface{ marker() }
		type wrapper struct{ Occupant inner }

		reader, err := codecjson.NewReader([]byte(doc))
		if err != nil {
			return
		}

		var out wrapper
		//nolint:errcheck // fuzz test only checks for panics, not success
		_ = core.Decode(reflect.TypeFor[wrapper](), reader, &out)
	})
}

func jsonEscape(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch r {
		case '"', '\\':
			out = append(out, '\\', byte(r))
		case '\n', '\r', '\t':
			out = append(out, ' ')
		default:
			out = append(out, []byte(string(r))...)
		}
	}
	return string(out)
}
