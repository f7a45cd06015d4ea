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

// Package codeccbor adapts codec.Sink/codec.Source onto CBOR (RFC
// 8949) using github.com/fxamacker/cbor/v2 for every scalar value.
// Like codecmsgpack, CBOR arrays and maps are definite-length, so
// Writer buffers each open container and prepends its header once the
// element count is known. fxamacker/cbor exposes no streaming builder
// for nested containers, so the one-byte-to-nine-byte major-type
// header (RFC 8949 §3) is computed directly; every scalar payload and
// every leaf decode still goes through the library.
package codeccbor

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/fxamacker/cbor/v2"

	"veylan.dev/codec"
	"veylan.dev/codec/internal/wire"
)

const (
	majorUnsigned = 0
	majorNegative = 1
	majorBytes    = 2
	majorText     = 3
	majorArray    = 4
	majorMap      = 5
	majorTag      = 6
	majorSimple   = 7
)

var encMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic("codeccbor: encoder initialization failed: " + err.Error())
	}
}

func writeHeader(buf *bytes.Buffer, major byte, n uint64) {
	switch {
	case n < 24:
		buf.WriteByte(major<<5 | byte(n))
	case n <= 0xff:
		buf.WriteByte(major<<5 | 24)
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(major<<5 | 25)
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(n))
		buf.Write(b[:])
	case n <= 0xffffffff:
		buf.WriteByte(major<<5 | 26)
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(n))
		buf.Write(b[:])
	default:
		buf.WriteByte(major<<5 | 27)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], n)
		buf.Write(b[:])
	}
}

type container int

const (
	containerNone container = iota
	containerObject
	containerArray
)

type frame struct {
	kind  container
	buf   bytes.Buffer
	count int
}

// Writer is a codec.Sink that renders a CBOR document.
type Writer struct {
	stack []*frame
	err   error
}

func NewWriter() *Writer {
	return &Writer{stack: []*frame{{kind: containerNone}}}
}

func (w *Writer) Bytes() []byte { return w.stack[0].buf.Bytes() }
func (w *Writer) top() *frame   { return w.stack[len(w.stack)-1] }

func (w *Writer) bumpParent() {
	if f := w.top(); f.kind == containerArray {
		f.count++
	}
}

func (w *Writer) writeScalar(v any) error {
	if w.err != nil {
		return w.err
	}
	b, err := encMode.Marshal(v)
	if err != nil {
		w.err = err
		return err
	}
	w.top().buf.Write(b)
	w.bumpParent()
	return nil
}

func (w *Writer) WriteNull() error         { return w.writeScalar(nil) }
func (w *Writer) WriteBool(v bool) error   { return w.writeScalar(v) }
func (w *Writer) WriteByte(v byte) error   { return w.writeScalar(v) }
func (w *Writer) WriteChar(v codec.Char) error {
	return w.writeScalar(string(rune(v)))
}
func (w *Writer) WriteShort(v int16) error    { return w.writeScalar(v) }
func (w *Writer) WriteInt(v int32) error      { return w.writeScalar(v) }
func (w *Writer) WriteLong(v int64) error     { return w.writeScalar(v) }
func (w *Writer) WriteFloat(v float32) error  { return w.writeScalar(v) }
func (w *Writer) WriteDouble(v float64) error { return w.writeScalar(v) }
func (w *Writer) WriteString(v string) error  { return w.writeScalar(v) }

func (w *Writer) StartObject() error {
	if w.err != nil {
		return w.err
	}
	w.stack = append(w.stack, &frame{kind: containerObject})
	return nil
}

func (w *Writer) WriteField(name string) error {
	if w.err != nil {
		return w.err
	}
	b, err := encMode.Marshal(name)
	if err != nil {
		w.err = err
		return err
	}
	f := w.top()
	f.count++
	f.buf.Write(b)
	return nil
}

func (w *Writer) EndObject() error { return w.closeContainer(majorMap) }

func (w *Writer) StartArray() error {
	if w.err != nil {
		return w.err
	}
	w.stack = append(w.stack, &frame{kind: containerArray})
	return nil
}

func (w *Writer) EndArray() error { return w.closeContainer(majorArray) }

func (w *Writer) closeContainer(major byte) error {
	if w.err != nil {
		return w.err
	}
	closed := w.top()
	w.stack = w.stack[:len(w.stack)-1]
	parent := w.top()
	writeHeader(&parent.buf, major, uint64(closed.count))
	parent.buf.Write(closed.buf.Bytes())
	w.bumpParent()
	return nil
}

// cborValue is an ordered, format-agnostic parse tree analogous to
// codecmsgpack's mpValue: field order survives decode, so fields reach
// the codecs in wire order (dispatch.go's envelope detection accepts
// the discriminator and payload fields in either order).
type valueKind int

const (
	kindNull valueKind = iota
	kindBool
	kindNumber
	kindString
	kindArray
	kindObject
)

type cborValue struct {
	kind   valueKind
	b      bool
	num    string
	s      string
	array  []cborValue
	fields []cborField
}

type cborField struct {
	name string
	val  cborValue
}

func parseArgument(raw []byte, info byte) (count uint64, headerLen int, err error) {
	if info < 24 {
		return uint64(info), 1, nil
	}
	switch info {
	case 24:
		if len(raw) < 2 {
			return 0, 0, fmt.Errorf("codeccbor: truncated header")
		}
		return uint64(raw[1]), 2, nil
	case 25:
		if len(raw) < 3 {
			return 0, 0, fmt.Errorf("codeccbor: truncated header")
		}
		return uint64(binary.BigEndian.Uint16(raw[1:3])), 3, nil
	case 26:
		if len(raw) < 5 {
			return 0, 0, fmt.Errorf("codeccbor: truncated header")
		}
		return uint64(binary.BigEndian.Uint32(raw[1:5])), 5, nil
	case 27:
		if len(raw) < 9 {
			return 0, 0, fmt.Errorf("codeccbor: truncated header")
		}
		return binary.BigEndian.Uint64(raw[1:9]), 9, nil
	default:
		return 0, 0, fmt.Errorf("codeccbor: indefinite-length items are not supported")
	}
}

func decodeValue(raw cbor.RawMessage) (cborValue, error) {
	if len(raw) == 0 {
		return cborValue{}, fmt.Errorf("codeccbor: empty item")
	}
	major := raw[0] >> 5
	info := raw[0] & 0x1f

	switch major {
	case majorArray:
		count, headerLen, err := parseArgument(raw, info)
		if err != nil {
			return cborValue{}, err
		}
		dec := cbor.NewDecoder(bytes.NewReader(raw[headerLen:]))
		v := cborValue{kind: kindArray, array: make([]cborValue, 0, count)}
		for i := uint64(0); i < count; i++ {
			var child cbor.RawMessage
			if err := dec.Decode(&child); err != nil {
				return cborValue{}, err
			}
			cv, err := decodeValue(child)
			if err != nil {
				return cborValue{}, err
			}
			v.array = append(v.array, cv)
		}
		return v, nil

	case majorMap:
		count, headerLen, err := parseArgument(raw, info)
		if err != nil {
			return cborValue{}, err
		}
		dec := cbor.NewDecoder(bytes.NewReader(raw[headerLen:]))
		v := cborValue{kind: kindObject, fields: make([]cborField, 0, count)}
		for i := uint64(0); i < count; i++ {
			var keyRaw cbor.RawMessage
			if err := dec.Decode(&keyRaw); err != nil {
				return cborValue{}, err
			}
			var key string
			if err := cbor.Unmarshal(keyRaw, &key); err != nil {
				return cborValue{}, err
			}
			var valRaw cbor.RawMessage
			if err := dec.Decode(&valRaw); err != nil {
				return cborValue{}, err
			}
			cv, err := decodeValue(valRaw)
			if err != nil {
				return cborValue{}, err
			}
			v.fields = append(v.fields, cborField{name: key, val: cv})
		}
		return v, nil

	default:
		var iv any
		if err := cbor.Unmarshal(raw, &iv); err != nil {
			return cborValue{}, err
		}
		return classifyScalar(iv)
	}
}

func classifyScalar(iv any) (cborValue, error) {
	switch n := iv.(type) {
	case nil:
		return cborValue{kind: kindNull}, nil
	case bool:
		return cborValue{kind: kindBool, b: n}, nil
	case string:
		return cborValue{kind: kindString, s: n}, nil
	case []byte:
		return cborValue{kind: kindString, s: string(n)}, nil
	case int64:
		return cborValue{kind: kindNumber, num: strconv.FormatInt(n, 10)}, nil
	case uint64:
		return cborValue{kind: kindNumber, num: strconv.FormatUint(n, 10)}, nil
	case float64:
		return cborValue{kind: kindNumber, num: strconv.FormatFloat(n, 'g', -1, 64)}, nil
	default:
		return cborValue{}, fmt.Errorf("codeccbor: unsupported scalar type %T", iv)
	}
}

func emitValue(v cborValue, tokens *[]wire.Token) {
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

// Reader is a codec.Source over a fully parsed CBOR document.
type Reader struct {
	buf *wire.Buffer
}

// NewReader parses all of data up front.
func NewReader(data []byte) (*Reader, error) {
	var raw cbor.RawMessage
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	root, err := decodeValue(raw)
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
		return wire.Token{}, fmt.Errorf("codeccbor: expected %v, got %v", want, tok.Event)
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
		return 0, fmt.Errorf("codeccbor: char must be exactly one code point, got %q", tok.Str)
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

// Marshal encodes value, whose static type is staticType, to CBOR
// using core.
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
