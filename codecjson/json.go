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

// Package codecjson adapts codec.Sink/codec.Source onto a fully
// materialized JSON document (§4.B "JSON DOM"): Encode builds the
// whole document in memory before returning its bytes, and Decode
// tokenizes its whole input up front, giving the pull side unbounded
// lookahead for free. For large documents where that memory cost
// matters, see codecjsonstream.
package codecjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"veylan.dev/codec"
	"veylan.dev/codec/internal/wire"
)

type container int

const (
	containerObject container = iota
	containerArray
)

type frame struct {
	kind  container
	count int
}

// Writer is a codec.Sink that renders directly into a bytes.Buffer.
type Writer struct {
	buf   bytes.Buffer
	stack []frame
}

// NewWriter returns a Writer ready to receive one top-level node.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the document written so far.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) beforeValue() {
	if len(w.stack) == 0 {
		return
	}
	f := &w.stack[len(w.stack)-1]
	if f.kind == containerArray {
		if f.count > 0 {
			w.buf.WriteByte(',')
		}
		f.count++
	}
}

func (w *Writer) WriteNull() error {
	w.beforeValue()
	w.buf.WriteString("null")
	return nil
}

func (w *Writer) WriteBool(v bool) error {
	w.beforeValue()
	if v {
		w.buf.WriteString("true")
	} else {
		w.buf.WriteString("false")
	}
	return nil
}

func (w *Writer) WriteByte(v byte) error {
	w.beforeValue()
	w.buf.WriteString(strconv.Itoa(int(v)))
	return nil
}

func (w *Writer) WriteChar(v codec.Char) error {
	w.beforeValue()
	b, err := json.Marshal(string(rune(v)))
	if err != nil {
		return err
	}
	w.buf.Write(b)
	return nil
}

func (w *Writer) WriteShort(v int16) error {
	w.beforeValue()
	w.buf.WriteString(strconv.FormatInt(int64(v), 10))
	return nil
}

func (w *Writer) WriteInt(v int32) error {
	w.beforeValue()
	w.buf.WriteString(strconv.FormatInt(int64(v), 10))
	return nil
}

func (w *Writer) WriteLong(v int64) error {
	w.beforeValue()
	w.buf.WriteString(strconv.FormatInt(v, 10))
	return nil
}

func (w *Writer) WriteFloat(v float32) error {
	w.beforeValue()
	w.buf.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	return nil
}

func (w *Writer) WriteDouble(v float64) error {
	w.beforeValue()
	w.buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	return nil
}

func (w *Writer) WriteString(v string) error {
	w.beforeValue()
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.buf.Write(b)
	return nil
}

func (w *Writer) StartObject() error {
	w.beforeValue()
	w.buf.WriteByte('{')
	w.stack = append(w.stack, frame{kind: containerObject})
	return nil
}

func (w *Writer) WriteField(name string) error {
	f := &w.stack[len(w.stack)-1]
	if f.count > 0 {
		w.buf.WriteByte(',')
	}
	f.count++
	b, err := json.Marshal(name)
	if err != nil {
		return err
	}
	w.buf.Write(b)
	w.buf.WriteByte(':')
	return nil
}

func (w *Writer) EndObject() error {
	w.stack = w.stack[:len(w.stack)-1]
	w.buf.WriteByte('}')
	return nil
}

func (w *Writer) StartArray() error {
	w.beforeValue()
	w.buf.WriteByte('[')
	w.stack = append(w.stack, frame{kind: containerArray})
	return nil
}

func (w *Writer) EndArray() error {
	w.stack = w.stack[:len(w.stack)-1]
	w.buf.WriteByte(']')
	return nil
}

// Marshal encodes value, whose static type is staticType, as JSON
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

// Reader is a codec.Source over a fully tokenized JSON document,
// giving the pull side unbounded lookahead.
type Reader struct {
	buf *wire.Buffer
}

type tokenizeFrame struct {
	array     bool
	expectKey bool
}

// NewReader tokenizes all of data up front. json.Decoder.Token alone
// doesn't distinguish an object key from an ordinary string value, so
// NewReader tracks a small container stack to make that call itself.
func NewReader(data []byte) (*Reader, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var tokens []wire.Token
	var stack []tokenizeFrame

	closeValue := func() {
		if n := len(stack); n > 0 && !stack[n-1].array {
			stack[n-1].expectKey = true
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{':
				tokens = append(tokens, wire.Token{Event: codec.EventStartObject})
				stack = append(stack, tokenizeFrame{expectKey: true})
			case '}':
				tokens = append(tokens, wire.Token{Event: codec.EventEndObject})
				stack = stack[:len(stack)-1]
				closeValue()
			case '[':
				tokens = append(tokens, wire.Token{Event: codec.EventStartArray})
				stack = append(stack, tokenizeFrame{array: true})
			case ']':
				tokens = append(tokens, wire.Token{Event: codec.EventEndArray})
				stack = stack[:len(stack)-1]
				closeValue()
			default:
				return nil, fmt.Errorf("codecjson: unexpected delimiter %v", t)
			}
		case string:
			if n := len(stack); n > 0 && !stack[n-1].array && stack[n-1].expectKey {
				tokens = append(tokens, wire.Token{Event: codec.EventFieldName, Str: t})
				stack[n-1].expectKey = false
			} else {
				tokens = append(tokens, wire.Token{Event: codec.EventString, Str: t})
				closeValue()
			}
		case json.Number:
			tokens = append(tokens, wire.Token{Event: codec.EventNumber, Str: string(t)})
			closeValue()
		case bool:
			tokens = append(tokens, wire.Token{Event: codec.EventBool, Bool: t})
			closeValue()
		case nil:
			tokens = append(tokens, wire.Token{Event: codec.EventNull})
			closeValue()
		default:
			return nil, fmt.Errorf("codecjson: unexpected token %T", tok)
		}
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
		return wire.Token{}, fmt.Errorf("codecjson: expected %v, got %v", want, tok.Event)
	}
	return tok, nil
}

func (r *Reader) ReadNull() error {
	_, err := r.pop(codec.EventNull)
	return err
}

func (r *Reader) ReadBool() (bool, error) {
	tok, err := r.pop(codec.EventBool)
	return tok.Bool, err
}

func (r *Reader) readNumber() (json.Number, error) {
	tok, err := r.pop(codec.EventNumber)
	return json.Number(tok.Str), err
}

func (r *Reader) ReadByte() (byte, error) {
	n, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(string(n), 10, 16)
	return byte(v), err
}

func (r *Reader) ReadChar() (codec.Char, error) {
	tok, err := r.pop(codec.EventString)
	if err != nil {
		return 0, err
	}
	runes := []rune(tok.Str)
	if len(runes) != 1 {
		return 0, fmt.Errorf("codecjson: char must be exactly one code point, got %q", tok.Str)
	}
	return codec.Char(runes[0]), nil
}

func (r *Reader) ReadShort() (int16, error) {
	n, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(string(n), 10, 16)
	return int16(v), err
}

func (r *Reader) ReadInt() (int32, error) {
	n, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(string(n), 10, 32)
	return int32(v), err
}

func (r *Reader) ReadLong() (int64, error) {
	n, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	return n.Int64()
}

func (r *Reader) ReadFloat() (float32, error) {
	n, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(string(n), 32)
	return float32(v), err
}

func (r *Reader) ReadDouble() (float64, error) {
	n, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	return n.Float64()
}

func (r *Reader) ReadString() (string, error) {
	tok, err := r.pop(codec.EventString)
	return tok.Str, err
}

func (r *Reader) StartObject() error {
	_, err := r.pop(codec.EventStartObject)
	return err
}

func (r *Reader) ReadFieldName() (string, error) {
	tok, err := r.pop(codec.EventFieldName)
	return tok.Str, err
}

func (r *Reader) EndObject() error {
	_, err := r.pop(codec.EventEndObject)
	return err
}

func (r *Reader) StartArray() error {
	_, err := r.pop(codec.EventStartArray)
	return err
}

func (r *Reader) EndArray() error {
	_, err := r.pop(codec.EventEndArray)
	return err
}

// SkipNode discards the current node, recursing into nested
// objects/arrays by tracking their depth rather than by calling back
// into the codec layer.
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
