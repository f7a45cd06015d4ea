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

// Package codecmsgpack adapts codec.Sink/codec.Source onto MessagePack
// using github.com/vmihailenco/msgpack/v5's low-level Encoder/Decoder,
// the same building blocks rivaas.dev/binding/msgpack uses for its
// struct binding. MessagePack arrays and maps are definite-length: the
// element count is written before the elements, not after. Since a
// push-style Sink only learns a container's arity once EndObject or
// EndArray is called, Writer buffers each open container's body in its
// own sub-encoder and only prepends the length header once the count
// is known.
package codecmsgpack

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"veylan.dev/codec"
	"veylan.dev/codec/internal/wire"
)

type container int

const (
	containerNone container = iota
	containerObject
	containerArray
)

type frame struct {
	kind  container
	buf   bytes.Buffer
	enc   *msgpack.Encoder
	count int
}

func newFrame(kind container) *frame {
	f := &frame{kind: kind}
	f.enc = msgpack.NewEncoder(&f.buf)
	return f
}

// Writer is a codec.Sink that renders a MessagePack document.
type Writer struct {
	stack []*frame
	err   error
}

func NewWriter() *Writer {
	return &Writer{stack: []*frame{newFrame(containerNone)}}
}

// Bytes returns the encoded document. Valid once encoding is complete.
func (w *Writer) Bytes() []byte { return w.stack[0].buf.Bytes() }

func (w *Writer) top() *frame { return w.stack[len(w.stack)-1] }

// bumpParent counts one more array element written into the current
// top frame, if that frame is an array. Object pair counts are
// tracked by WriteField itself since a pair is one key plus one value.
func (w *Writer) bumpParent() {
	if f := w.top(); f.kind == containerArray {
		f.count++
	}
}

func (w *Writer) fail(err error) error {
	if err != nil && w.err == nil {
		w.err = err
	}
	return w.err
}

func (w *Writer) WriteNull() error {
	if w.err != nil {
		return w.err
	}
	defer w.bumpParent()
	return w.fail(w.top().enc.EncodeNil())
}

func (w *Writer) WriteBool(v bool) error {
	if w.err != nil {
		return w.err
	}
	defer w.bumpParent()
	return w.fail(w.top().enc.EncodeBool(v))
}

func (w *Writer) WriteByte(v byte) error {
	if w.err != nil {
		return w.err
	}
	defer w.bumpParent()
	return w.fail(w.top().enc.EncodeUint8(v))
}

func (w *Writer) WriteChar(v codec.Char) error {
	if w.err != nil {
		return w.err
	}
	defer w.bumpParent()
	return w.fail(w.top().enc.EncodeString(string(rune(v))))
}

func (w *Writer) WriteShort(v int16) error {
	if w.err != nil {
		return w.err
	}
	defer w.bumpParent()
	return w.fail(w.top().enc.EncodeInt16(v))
}

func (w *Writer) WriteInt(v int32) error {
	if w.err != nil {
		return w.err
	}
	defer w.bumpParent()
	return w.fail(w.top().enc.EncodeInt32(v))
}

func (w *Writer) WriteLong(v int64) error {
	if w.err != nil {
		return w.err
	}
	defer w.bumpParent()
	return w.fail(w.top().enc.EncodeInt64(v))
}

func (w *Writer) WriteFloat(v float32) error {
	if w.err != nil {
		return w.err
	}
	defer w.bumpParent()
	return w.fail(w.top().enc.EncodeFloat32(v))
}

func (w *Writer) WriteDouble(v float64) error {
	if w.err != nil {
		return w.err
	}
	defer w.bumpParent()
	return w.fail(w.top().enc.EncodeFloat64(v))
}

func (w *Writer) WriteString(v string) error {
	if w.err != nil {
		return w.err
	}
	defer w.bumpParent()
	return w.fail(w.top().enc.EncodeString(v))
}

func (w *Writer) StartObject() error {
	if w.err != nil {
		return w.err
	}
	w.stack = append(w.stack, newFrame(containerObject))
	return nil
}

func (w *Writer) WriteField(name string) error {
	if w.err != nil {
		return w.err
	}
	f := w.top()
	f.count++
	return w.fail(f.enc.EncodeString(name))
}

func (w *Writer) EndObject() error {
	return w.closeContainer(func(parent *msgpack.Encoder, count int) error {
		return parent.EncodeMapLen(count)
	})
}

func (w *Writer) StartArray() error {
	if w.err != nil {
		return w.err
	}
	w.stack = append(w.stack, newFrame(containerArray))
	return nil
}

func (w *Writer) EndArray() error {
	return w.closeContainer(func(parent *msgpack.Encoder, count int) error {
		return parent.EncodeArrayLen(count)
	})
}

func (w *Writer) closeContainer(writeHeader func(*msgpack.Encoder, int) error) error {
	if w.err != nil {
		return w.err
	}
	closed := w.top()
	w.stack = w.stack[:len(w.stack)-1]
	parent := w.top()
	if err := writeHeader(parent.enc, closed.count); err != nil {
		return w.fail(err)
	}
	if _, err := parent.buf.Write(closed.buf.Bytes()); err != nil {
		return w.fail(err)
	}
	w.bumpParent()
	return nil
}

// value is an ordered, format-agnostic parse of a MessagePack
// document: an intermediate representation that lets Reader offer the
// unbounded, DOM-style lookahead codec.Source promises (§4.B) even
// though the wire format itself is a length-prefixed stream. Field
// order is preserved (unlike decoding into map[string]interface{}), so
// fields reach the codecs in wire order; dispatch.go's envelope
// detection accepts the discriminator and payload fields in either
// order.
type valueKind int

const (
	kindNull valueKind = iota
	kindBool
	kindNumber
	kindString
	kindArray
	kindObject
)

type mpValue struct {
	kind   valueKind
	b      bool
	num    string
	s      string
	array  []mpValue
	fields []mpField
}

type mpField struct {
	name string
	val  mpValue
}

func decodeValue(dec *msgpack.Decoder) (mpValue, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return mpValue{}, err
	}

	switch {
	case code == msgpcode.Nil:
		return mpValue{kind: kindNull}, dec.DecodeNil()

	case code == msgpcode.True || code == msgpcode.False:
		b, err := dec.DecodeBool()
		return mpValue{kind: kindBool, b: b}, err

	case msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return mpValue{}, err
		}
		v := mpValue{kind: kindObject, fields: make([]mpField, 0, n)}
		for i := 0; i < n; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return mpValue{}, err
			}
			fv, err := decodeValue(dec)
			if err != nil {
				return mpValue{}, err
			}
			v.fields = append(v.fields, mpField{name: key, val: fv})
		}
		return v, nil

	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return mpValue{}, err
		}
		v := mpValue{kind: kindArray, array: make([]mpValue, 0, n)}
		for i := 0; i < n; i++ {
			ev, err := decodeValue(dec)
			if err != nil {
				return mpValue{}, err
			}
			v.array = append(v.array, ev)
		}
		return v, nil

	case msgpcode.IsString(code) || msgpcode.IsBin(code):
		s, err := dec.DecodeString()
		return mpValue{kind: kindString, s: s}, err

	default:
		return decodeNumber(dec)
	}
}

// decodeNumber handles every remaining fixed/int/uint/float code by
// delegating to DecodeInterface for a single scalar, then rendering it
// back to text so ReadByte..ReadDouble can parse at their own target
// width without this package hand-rolling every numeric wire code.
func decodeNumber(dec *msgpack.Decoder) (mpValue, error) {
	iv, err := dec.DecodeInterface()
	if err != nil {
		return mpValue{}, err
	}
	var text string
	switch n := iv.(type) {
	case int64:
		text = strconv.FormatInt(n, 10)
	case uint64:
		text = strconv.FormatUint(n, 10)
	case float32:
		text = strconv.FormatFloat(float64(n), 'g', -1, 32)
	case float64:
		text = strconv.FormatFloat(n, 'g', -1, 64)
	case int8:
		text = strconv.FormatInt(int64(n), 10)
	case int16:
		text = strconv.FormatInt(int64(n), 10)
	case int32:
		text = strconv.FormatInt(int64(n), 10)
	case uint8:
		text = strconv.FormatUint(uint64(n), 10)
	case uint16:
		text = strconv.FormatUint(uint64(n), 10)
	case uint32:
		text = strconv.FormatUint(uint64(n), 10)
	default:
		return mpValue{}, fmt.Errorf("codecmsgpack: unsupported numeric type %T", iv)
	}
	return mpValue{kind: kindNumber, num: text}, nil
}

func emitValue(v mpValue, tokens *[]wire.Token) {
	switch v.kind {
	case kindNull:
		*tokens = append(*tokens, wire.Token{Event: codec.EventNull})
	case kindBool:
		*tokens = append(*tokens, wire.Token{Event: codec.EventBool, Bool: v.b})
	case kindNumber:
		*tokens = append(*tokens, wire.Token{Event: codec.EventNumber, Str: v.num})
	case kindString:
		*tokens = append(*tokens, wire.Token{Event: codec.EventString, Str: v.s})
	case kindArray:
		*tokens = append(*tokens, wire.Token{Event: codec.EventStartArray})
		for _, e := range v.array {
			emitValue(e, tokens)
		}
		*tokens = append(*tokens, wire.Token{Event: codec.EventEndArray})
	case kindObject:
		*tokens = append(*tokens, wire.Token{Event: codec.EventStartObject})
		for _, f := range v.fields {
			*tokens = append(*tokens, wire.Token{Event: codec.EventFieldName, Str: f.name})
			emitValue(f.val, tokens)
		}
		*tokens = append(*tokens, wire.Token{Event: codec.EventEndObject})
	}
}

// Reader is a codec.Source over a fully parsed MessagePack document.
type Reader struct {
	buf *wire.Buffer
}

// NewReader parses all of data up front.
func NewReader(data []byte) (*Reader, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	root, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	var tokens []wire.Token
	emitValue(root, &tokens)
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
		return wire.Token{}, fmt.Errorf("codecmsgpack: expected %v, got %v", want, tok.Event)
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
		return 0, fmt.Errorf("codecmsgpack: char must be exactly one code point, got %q", tok.Str)
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

// Marshal encodes value, whose static type is staticType, to
// MessagePack using core.
func Marshal(core *codec.Core, staticType reflect.Type, value any) ([]byte, error) {
	w := NewWriter()
	if err := core.Encode(staticType, value, w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
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
