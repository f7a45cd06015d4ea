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

// Package codecpb adapts codec.Sink/codec.Source onto Protocol
// Buffers' own dynamic-value representation,
// google.golang.org/protobuf/types/known/structpb, rather than
// generated messages: structpb.Value is protobuf's canonical way to
// carry a schema-less JSON-like tree, so it fits this package's
// generic object model directly. structpb.Struct's Fields is a Go
// map, so — like codectoml — Reader restores a deterministic order by
// sorting field names; dispatch.go's envelope detection accepts the
// discriminator and payload fields in either order, so the sort places
// no constraint on their names. structpb.Value's NumberValue is always a float64, so
// int64/long values beyond 2^53 lose precision, the same limitation
// JSON itself has.
package codecpb

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"veylan.dev/codec"
	"veylan.dev/codec/internal/wire"
)

type frame struct {
	isArray bool
	obj     map[string]*structpb.Value
	arr     []*structpb.Value
	key     string
}

// Writer is a codec.Sink that builds a structpb.Value tree.
type Writer struct {
	root  *structpb.Value
	stack []*frame
	err   error
}

func NewWriter() *Writer {
	return &Writer{}
}

// Value returns the built root value.
func (w *Writer) Value() (*structpb.Value, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.root, nil
}

// Bytes marshals the built value as a protobuf-encoded structpb.Value.
func (w *Writer) Bytes() ([]byte, error) {
	v, err := w.Value()
	if err != nil {
		return nil, err
	}
	return proto.Marshal(v)
}

func (w *Writer) top() *frame { return w.stack[len(w.stack)-1] }

func (w *Writer) finish(v *structpb.Value) error {
	if len(w.stack) == 0 {
		w.root = v
		return nil
	}
	f := w.top()
	if f.isArray {
		f.arr = append(f.arr, v)
		return nil
	}
	if f.key == "" {
		return fmt.Errorf("codecpb: value written without a preceding field name")
	}
	f.obj[f.key] = v
	f.key = ""
	return nil
}

func (w *Writer) write(v *structpb.Value) error {
	if w.err != nil {
		return w.err
	}
	if err := w.finish(v); err != nil {
		w.err = err
	}
	return w.err
}

func (w *Writer) WriteNull() error       { return w.write(structpb.NewNullValue()) }
func (w *Writer) WriteBool(v bool) error { return w.write(structpb.NewBoolValue(v)) }
func (w *Writer) WriteByte(v byte) error { return w.write(structpb.NewNumberValue(float64(v))) }
func (w *Writer) WriteChar(v codec.Char) error {
	return w.write(structpb.NewStringValue(string(rune(v))))
}
func (w *Writer) WriteShort(v int16) error {
	return w.write(structpb.NewNumberValue(float64(v)))
}
func (w *Writer) WriteInt(v int32) error {
	return w.write(structpb.NewNumberValue(float64(v)))
}
func (w *Writer) WriteLong(v int64) error {
	return w.write(structpb.NewNumberValue(float64(v)))
}
func (w *Writer) WriteFloat(v float32) error {
	return w.write(structpb.NewNumberValue(float64(v)))
}
func (w *Writer) WriteDouble(v float64) error {
	return w.write(structpb.NewNumberValue(v))
}
func (w *Writer) WriteString(v string) error {
	return w.write(structpb.NewStringValue(v))
}

func (w *Writer) StartObject() error {
	if w.err != nil {
		return w.err
	}
	w.stack = append(w.stack, &frame{obj: map[string]*structpb.Value{}})
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
	return w.write(structpb.NewStructValue(&structpb.Struct{Fields: f.obj}))
}

func (w *Writer) StartArray() error {
	if w.err != nil {
		return w.err
	}
	w.stack = append(w.stack, &frame{isArray: true})
	return nil
}

func (w *Writer) EndArray() error {
	if w.err != nil {
		return w.err
	}
	f := w.top()
	w.stack = w.stack[:len(w.stack)-1]
	return w.write(structpb.NewListValue(&structpb.ListValue{Values: f.arr}))
}

func emitValue(v *structpb.Value, tokens *[]wire.Token) error {
	switch v.GetKind().(type) {
	case *structpb.Value_NullValue, nil:
		*tokens = append(*tokens, wire.Token{Event: codec.EventNull})
	case *structpb.Value_BoolValue:
		*tokens = append(*tokens, wire.Token{Event: codec.EventBool, Bool: v.GetBoolValue()})
	case *structpb.Value_NumberValue:
		*tokens = append(*tokens, wire.Token{
			Event: codec.EventNumber,
			Str:   strconv.FormatFloat(v.GetNumberValue(), 'g', -1, 64),
		})
	case *structpb.Value_StringValue:
		*tokens = append(*tokens, wire.Token{Event: codec.EventString, Str: v.GetStringValue()})
	case *structpb.Value_ListValue:
		*tokens = append(*tokens, wire.Token{Event: codec.EventStartArray})
		for _, e := range v.GetListValue().GetValues() {
			if err := emitValue(e, tokens); err != nil {
				return err
			}
		}
		*tokens = append(*tokens, wire.Token{Event: codec.EventEndArray})
	case *structpb.Value_StructValue:
		fields := v.GetStructValue().GetFields()
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		*tokens = append(*tokens, wire.Token{Event: codec.EventStartObject})
		for _, k := range keys {
			*tokens = append(*tokens, wire.Token{Event: codec.EventFieldName, Str: k})
			if err := emitValue(fields[k], tokens); err != nil {
				return err
			}
		}
		*tokens = append(*tokens, wire.Token{Event: codec.EventEndObject})
	default:
		return fmt.Errorf("codecpb: unsupported structpb.Value kind %T", v.GetKind())
	}
	return nil
}

// Reader is a codec.Source over a fully parsed structpb.Value tree.
type Reader struct {
	buf *wire.Buffer
}

// NewReaderFromValue builds a Reader directly from an already-decoded
// structpb.Value, for callers assembling values via protojson or a
// generated message field instead of raw bytes.
func NewReaderFromValue(v *structpb.Value) (*Reader, error) {
	var tokens []wire.Token
	if err := emitValue(v, &tokens); err != nil {
		return nil, err
	}
	return &Reader{buf: wire.FromTokens(tokens)}, nil
}

// NewReader parses all of data, a protobuf-encoded structpb.Value, up
// front.
func NewReader(data []byte) (*Reader, error) {
	var v structpb.Value
	if err := proto.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return NewReaderFromValue(&v)
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
		return wire.Token{}, fmt.Errorf("codecpb: expected %v, got %v", want, tok.Event)
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
	v, err := strconv.ParseFloat(s, 64)
	return byte(v), err
}

func (r *Reader) ReadChar() (codec.Char, error) {
	tok, err := r.pop(codec.EventString)
	if err != nil {
		return 0, err
	}
	runes := []rune(tok.Str)
	if len(runes) != 1 {
		return 0, fmt.Errorf("codecpb: char must be exactly one code point, got %q", tok.Str)
	}
	return codec.Char(runes[0]), nil
}

func (r *Reader) ReadShort() (int16, error) {
	s, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	return int16(v), err
}

func (r *Reader) ReadInt() (int32, error) {
	s, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	return int32(v), err
}

func (r *Reader) ReadLong() (int64, error) {
	s, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	return int64(v), err
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

// Marshal encodes value, whose static type is staticType, to a
// protobuf-encoded structpb.Value using core.
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
