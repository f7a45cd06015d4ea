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

// Package codectoml adapts codec.Sink/codec.Source onto TOML using
// github.com/BurntSushi/toml, the library rivaas.dev/binding/toml uses
// for struct binding. TOML has two constraints the other formats
// don't: it has no null value, and its top level must be a table, not
// a bare scalar or array. Writer therefore rejects a null written
// inside an array (there is nowhere to put it) and treats a null
// object field as an absent key, and Marshal only supports an
// object-shaped root. Its map values also give the underlying library
// no ordering to preserve, so both sides settle on sorted key order;
// dispatch.go's envelope detection accepts the discriminator and
// payload fields in either order, so the sort places no constraint on
// their names.
package codectoml

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"

	"veylan.dev/codec"
	"veylan.dev/codec/internal/wire"
)

type frame struct {
	isArray bool
	m       map[string]any
	a       []any
	key     string
}

// Writer is a codec.Sink that builds a generic TOML-representable
// value tree.
type Writer struct {
	root  any
	stack []*frame
	err   error
}

func NewWriter() *Writer {
	return &Writer{}
}

// Bytes renders the built document to TOML. The root value must be an
// object (TOML has no bare top-level scalar or array).
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	m, ok := w.root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("codectoml: TOML documents must be rooted in an object, got %T", w.root)
	}
	return toml.Marshal(m)
}

func (w *Writer) top() *frame { return w.stack[len(w.stack)-1] }

func (w *Writer) finish(v any) error {
	if len(w.stack) == 0 {
		w.root = v
		return nil
	}
	f := w.top()
	if f.isArray {
		f.a = append(f.a, v)
		return nil
	}
	if f.key == "" {
		return fmt.Errorf("codectoml: value written without a preceding field name")
	}
	f.m[f.key] = v
	f.key = ""
	return nil
}

func (w *Writer) write(v any) error {
	if w.err != nil {
		return w.err
	}
	if err := w.finish(v); err != nil {
		w.err = err
	}
	return w.err
}

func (w *Writer) WriteNull() error {
	if w.err != nil {
		return w.err
	}
	if len(w.stack) > 0 && w.top().isArray {
		w.err = fmt.Errorf("codectoml: TOML cannot represent a null array element")
		return w.err
	}
	if len(w.stack) > 0 {
		// An absent key is TOML's null: drop the pending field.
		w.top().key = ""
		return nil
	}
	w.err = fmt.Errorf("codectoml: TOML cannot represent a null document")
	return w.err
}

func (w *Writer) WriteBool(v bool) error   { return w.write(v) }
func (w *Writer) WriteByte(v byte) error   { return w.write(int64(v)) }
func (w *Writer) WriteChar(v codec.Char) error {
	return w.write(string(rune(v)))
}
func (w *Writer) WriteShort(v int16) error    { return w.write(int64(v)) }
func (w *Writer) WriteInt(v int32) error      { return w.write(int64(v)) }
func (w *Writer) WriteLong(v int64) error     { return w.write(v) }
func (w *Writer) WriteFloat(v float32) error  { return w.write(float64(v)) }
func (w *Writer) WriteDouble(v float64) error { return w.write(v) }
func (w *Writer) WriteString(v string) error  { return w.write(v) }

func (w *Writer) StartObject() error {
	if w.err != nil {
		return w.err
	}
	w.stack = append(w.stack, &frame{m: map[string]any{}})
	return nil
}

func (w *Writer) WriteField(name string) error {
	if w.err != nil {
		return w.err
	}
	w.top().key = name
	return nil
}

func (w *Writer) EndObject() error {
	if w.err != nil {
		return w.err
	}
	f := w.top()
	w.stack = w.stack[:len(w.stack)-1]
	return w.write(f.m)
}

func (w *Writer) StartArray() error {
	if w.err != nil {
		return w.err
	}
	w.stack = append(w.stack, &frame{isArray: true, a: []any{}})
	return nil
}

func (w *Writer) EndArray() error {
	if w.err != nil {
		return w.err
	}
	f := w.top()
	w.stack = w.stack[:len(w.stack)-1]
	return w.write(f.a)
}

func emitValue(v any, tokens *[]wire.Token) error {
	switch t := v.(type) {
	case nil:
		*tokens = append(*tokens, wire.Token{Event: codec.EventNull})
	case bool:
		*tokens = append(*tokens, wire.Token{Event: codec.EventBool, Bool: t})
	case int64:
		*tokens = append(*tokens, wire.Token{Event: codec.EventNumber, Str: strconv.FormatInt(t, 10)})
	case float64:
		*tokens = append(*tokens, wire.Token{Event: codec.EventNumber, Str: strconv.FormatFloat(t, 'g', -1, 64)})
	case string:
		*tokens = append(*tokens, wire.Token{Event: codec.EventString, Str: t})
	case []interface{}:
		*tokens = append(*tokens, wire.Token{Event: codec.EventStartArray})
		for _, e := range t {
			if err := emitValue(e, tokens); err != nil {
				return err
			}
		}
		*tokens = append(*tokens, wire.Token{Event: codec.EventEndArray})
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		*tokens = append(*tokens, wire.Token{Event: codec.EventStartObject})
		for _, k := range keys {
			*tokens = append(*tokens, wire.Token{Event: codec.EventFieldName, Str: k})
			if err := emitValue(t[k], tokens); err != nil {
				return err
			}
		}
		*tokens = append(*tokens, wire.Token{Event: codec.EventEndObject})
	default:
		return fmt.Errorf("codectoml: unsupported decoded value type %T", v)
	}
	return nil
}

// Reader is a codec.Source over a fully parsed TOML document.
type Reader struct {
	buf *wire.Buffer
}

// NewReader parses all of data up front. The document must decode to
// a table at the top level.
func NewReader(data []byte) (*Reader, error) {
	var m map[string]interface{}
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	var tokens []wire.Token
	if err := emitValue(m, &tokens); err != nil {
		return nil, err
	}
	return &Reader{buf: wire.FromTokens(tokens)}, nil
}

func (r *Reader) Event(lookahead int) (codec.Event, error) { return r.buf.Event(lookahead) }
func (r *Reader) PeekFieldName(lookahead int) (string, error) {
	return r.buf.PeekFieldName(lookahead)
}
func (r *Reader) PeekString(lookahead int) (string, error) {
	return r.buf.PeekString(lookahead)
}
func (r *Reader) NotEOF() bool { return r.buf.NotEOF() }

func (r *Reader) pop(want codec.Event) (wire.Token, error) {
	tok, err := r.buf.Pop()
	if err != nil {
		return wire.Token{}, err
	}
	if tok.Event != want {
		return wire.Token{}, fmt.Errorf("codectoml: expected %v, got %v", want, tok.Event)
	}
	return tok, nil
}

func (r *Reader) ReadNull() error { _, err := r.pop(codec.EventNull); return err }
func (r *Reader) ReadBool() (bool, error) {
	tok, err := r.pop(codec.EventBool)
	return tok.Bool, err
}

func (r *Reader) readNumber() (string, error) {
	tok, err := r.pop(codec.EventNumber)
	return tok.Str, err
}

func (r *Reader) ReadByte() (byte, error) {
	s, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 16)
	return byte(v), err
}

func (r *Reader) ReadChar() (codec.Char, error) {
	tok, err := r.pop(codec.EventString)
	if err != nil {
		return 0, err
	}
	runes := []rune(tok.Str)
	if len(runes) != 1 {
		return 0, fmt.Errorf("codectoml: char must be exactly one code point, got %q", tok.Str)
	}
	return codec.Char(runes[0]), nil
}

func (r *Reader) ReadShort() (int16, error) {
	s, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 16)
	return int16(v), err
}

func (r *Reader) ReadInt() (int32, error) {
	s, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 32)
	return int32(v), err
}

func (r *Reader) ReadLong() (int64, error) {
	s, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}

func (r *Reader) ReadFloat() (float32, error) {
	s, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}

func (r *Reader) ReadDouble() (float64, error) {
	s, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

func (r *Reader) ReadString() (string, error) {
	tok, err := r.pop(codec.EventString)
	return tok.Str, err
}

func (r *Reader) StartObject() error { _, err := r.pop(codec.EventStartObject); return err }
func (r *Reader) ReadFieldName() (string, error) {
	tok, err := r.pop(codec.EventFieldName)
	return tok.Str, err
}
func (r *Reader) EndObject() error  { _, err := r.pop(codec.EventEndObject); return err }
func (r *Reader) StartArray() error { _, err := r.pop(codec.EventStartArray); return err }
func (r *Reader) EndArray() error   { _, err := r.pop(codec.EventEndArray); return err }

func (r *Reader) SkipNode() error {
	depth := 0
	for {
		tok, err := r.buf.Pop()
		if err != nil {
			return err
		}
		switch tok.Event {
		case codec.EventStartObject, codec.EventStartArray:
			depth++
		case codec.EventEndObject, codec.EventEndArray:
			depth--
		case codec.EventEOF:
			return io.ErrUnexpectedEOF
		}
		if depth == 0 {
			return nil
		}
	}
}

// Marshal encodes value, whose static type is staticType, to TOML
// using core. staticType must describe an object.
func Marshal(core *codec.Core, staticType reflect.Type, value any) ([]byte, error) {
	w := NewWriter()
	if err := core.Encode(staticType, value, w); err != nil {
		return nil, err
	}
	return w.Bytes()
}

// Unmarshal decodes data, whose static type is staticType, into out
// using core.
func Unmarshal(core *codec.Core, staticType reflect.Type, data []byte, out any) error {
	r, err := NewReader(data)
	if err != nil {
		return err
	}
	return core.Decode(staticType, r, out)
}
