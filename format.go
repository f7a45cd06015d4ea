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

// Sink is the push-style write half of the format adapter contract
// (§4.B). Codecs call these methods in a well-nested sequence; each
// adapter package (codecjson, codecxml, codecmsgpack, codeccbor, ...)
// implements Sink for its wire format.
type Sink interface {
	WriteNull() error
	WriteBool(v bool) error
	WriteByte(v byte) error
	WriteChar(v Char) error
	WriteShort(v int16) error
	WriteInt(v int32) error
	WriteLong(v int64) error
	WriteFloat(v float32) error
	WriteDouble(v float64) error
	WriteString(v string) error

	StartObject() error
	WriteField(name string) error
	EndObject() error

	StartArray() error
	EndArray() error
}

// Event identifies the shape of the node a [Source] is currently
// positioned on, per the pull-style lookahead contract in §4.B.
type Event int

const (
	EventInvalid Event = iota
	EventNull
	EventBool
	EventByte
	EventChar
	EventShort
	EventInt
	EventLong
	EventFloat
	EventDouble
	// EventNumber is a width-agnostic numeric event for formats (JSON,
	// YAML, TOML) that don't distinguish byte/short/int/long/float/double
	// on the wire. Decode never switches on Event to choose which
	// Read* method to call — the codec already knows its own static
	// primitive — so a source is free to report EventNumber for every
	// numeric token instead of guessing a width.
	EventNumber
	EventString
	EventStartObject
	EventEndObject
	EventFieldName
	EventStartArray
	EventEndArray
	EventEOF
)

// Source is the pull-style read half of the format adapter contract
// (§4.B). Codecs peek ahead with Event to decide dispatch (notably the
// two-field envelope detection in §4.F, which needs to distinguish a
// plain object from a {@type,@value} pair before consuming a token),
// then consume with the matching Read* method.
//
// Implementations must support at least a 3-event lookahead: dynamic
// dispatch inspects up to two field names before falling through to
// ordinary object decoding.
type Source interface {
	// Event reports the shape of the node `lookahead` events ahead of
	// the cursor without consuming it. Event(0) is the current node.
	Event(lookahead int) (Event, error)

	ReadNull() error
	ReadBool() (bool, error)
	ReadByte() (byte, error)
	ReadChar() (Char, error)
	ReadShort() (int16, error)
	ReadInt() (int32, error)
	ReadLong() (int64, error)
	ReadFloat() (float32, error)
	ReadDouble() (float64, error)
	ReadString() (string, error)

	StartObject() error
	// ReadFieldName consumes the next field name inside an object. It
	// fails if the next event is not a field name, so callers check
	// Event(0) for EventEndObject first.
	ReadFieldName() (string, error)
	EndObject() error

	// PeekFieldName reports the name of the field-name token at
	// lookahead without consuming anything, valid only when
	// Event(lookahead) reports EventFieldName. Dynamic-type dispatch
	// (§4.F) uses this to distinguish a two-field {@type,@value}
	// envelope from an ordinary object before committing to either
	// decode path.
	PeekFieldName(lookahead int) (string, error)

	// PeekString reports the string value at lookahead without
	// consuming anything, valid only when Event(lookahead) reports
	// EventString. Dynamic-type dispatch (§4.F) uses this to resolve a
	// {@type,@value} envelope's discriminator ahead of the cursor when
	// @value appears first on the wire, before @value's own content is
	// consumed.
	PeekString(lookahead int) (string, error)

	StartArray() error
	EndArray() error

	// SkipNode discards the current node (§4.E unknown-field
	// tolerance): a scalar, or a whole object/array subtree.
	SkipNode() error

	// NotEOF reports whether the source has more input at all,
	// distinct from Event which reports the shape of the next node.
	NotEOF() bool
}

// Locator is optionally implemented by a [Sink] or [Source] to report
// a human-readable position (line/column, byte offset, path) for error
// messages (§7). Adapters that can't cheaply track position may omit
// it; newError/wrapError treat an empty location as "unknown".
type Locator interface {
	Location() string
}

func locationOf(v any) string {
	if l, ok := v.(Locator); ok {
		return l.Location()
	}
	return ""
}
