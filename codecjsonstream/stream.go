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

// Package codecjsonstream adapts codec.Sink/codec.Source onto JSON
// without materializing the whole document: Writer streams tokens
// straight to an io.Writer as they're produced, and Reader pulls
// tokens from an io.Reader lazily, buffering only as many as the
// active lookahead (§4.B, §9) actually needs. Prefer codecjson when
// the document comfortably fits in memory and unbounded lookahead is
// convenient; prefer this package for large inputs/outputs.
package codecjsonstream

import (
	"bufio"
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

// Writer is a codec.Sink that streams tokens to w as they arrive.
type Writer struct {
	w     *bufio.Writer
	stack []frame
	err   error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Flush flushes any buffered output. Callers must call it once
// encoding is complete.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}

func (w *Writer) beforeValue() {
	if len(w.stack) == 0 {
		return
	}
	f := &w.stack[len(w.stack)-1]
	if f.kind == containerArray {
		if f.count > 0 {
			w.write(",")
		}
		f.count++
	}
}

func (w *Writer) write(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.WriteString(s)
}

func (w *Writer) writeJSON(v any) {
	if w.err != nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		w.err = err
		return
	}
	_, w.err = w.w.Write(b)
}

func (w *Writer) WriteNull() error       { w.beforeValue(); w.write("null"); return w.err }
func (w *Writer) WriteBool(v bool) error { w.beforeValue(); w.writeJSON(v); return w.err }
func (w *Writer) WriteByte(v byte) error {
	w.beforeValue()
	w.write(strconv.Itoa(int(v)))
	return w.err
}
func (w *Writer) WriteChar(v codec.Char) error {
	w.beforeValue()
	w.writeJSON(string(rune(v)))
	return w.err
}
func (w *Writer) WriteShort(v int16) error {
	w.beforeValue()
	w.write(strconv.FormatInt(int64(v), 10))
	return w.err
}
func (w *Writer) WriteInt(v int32) error {
	w.beforeValue()
	w.write(strconv.FormatInt(int64(v), 10))
	return w.err
}
func (w *Writer) WriteLong(v int64) error {
	w.beforeValue()
	w.write(strconv.FormatInt(v, 10))
	return w.err
}
func (w *Writer) WriteFloat(v float32) error {
	w.beforeValue()
	w.write(strconv.FormatFloat(float64(v), 'g', -1, 32))
	return w.err
}
func (w *Writer) WriteDouble(v float64) error {
	w.beforeValue()
	w.write(strconv.FormatFloat(v, 'g', -1, 64))
	return w.err
}
func (w *Writer) WriteString(v string) error { w.beforeValue(); w.writeJSON(v); return w.err }

func (w *Writer) StartObject() error {
	w.beforeValue()
	w.write("{")
	w.stack = append(w.stack, frame{kind: containerObject})
	return w.err
}

func (w *Writer) WriteField(name string) error {
	f := &w.stack[len(w.stack)-1]
	if f.count > 0 {
		w.write(",")
	}
	f.count++
	w.writeJSON(name)
	w.write(":")
	return w.err
}

func (w *Writer) EndObject() error {
	w.stack = w.stack[:len(w.stack)-1]
	w.write("}")
	return w.err
}

func (w *Writer) StartArray() error {
	w.beforeValue()
	w.write("[")
	w.stack = append(w.stack, frame{kind: containerArray})
	return w.err
}

func (w *Writer) EndArray() error {
	w.stack = w.stack[:len(w.stack)-1]
	w.write("]")
	return w.err
}

// Reader is a codec.Source that pulls JSON tokens from r on demand.
type Reader struct {
	dec   *json.Decoder
	stack []tokenizeFrame
	buf   *wire.Buffer
}

type tokenizeFrame struct {
	array     bool
	expectKey bool
}

// NewReader wraps r for lazy token pulls; lookahead reads only as far
// ahead as a peek asks.
func NewReader(r io.Reader) *Reader {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	rd := &Reader{dec: dec}
	rd.buf = &wire.Buffer{Fetch: rd.fetch}
	return rd
}

func (r *Reader) closeValue() {
	if n := len(r.stack); n > 0 && !r.stack[n-1].array {
		r.stack[n-1].expectKey = true
	}
}

func (r *Reader) fetch() (wire.Token, error) {
	tok, err := r.dec.Token()
	if err != nil {
		return wire.Token{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			r.stack = append(r.stack, tokenizeFrame{expectKey: true})
			return wire.Token{Event: codec.EventStartObject}, nil
		case '}':
			r.stack = r.stack[:len(r.stack)-1]
			r.closeValue()
			return wire.Token{Event: codec.EventEndObject}, nil
		case '[':
			r.stack = append(r.stack, tokenizeFrame{array: true})
			return wire.Token{Event: codec.EventStartArray}, nil
		case ']':
			r.stack = r.stack[:len(r.stack)-1]
			r.closeValue()
			return wire.Token{Event: codec.EventEndArray}, nil
		}
		return wire.Token{}, fmt.Errorf("codecjsonstream: unexpected delimiter %v", t)
	case string:
		if n := len(r.stack); n > 0 && !r.stack[n-1].array && r.stack[n-1].expectKey {
			r.stack[n-1].expectKey = false
			return wire.Token{Event: codec.EventFieldName, Str: t}, nil
		}
		r.closeValue()
		return wire.Token{Event: codec.EventString, Str: t}, nil
	case json.Number:
		r.closeValue()
		return wire.Token{Event: codec.EventNumber, Str: string(t)}, nil
	case bool:
		r.closeValue()
		return wire.Token{Event: codec.EventBool, Bool: t}, nil
	case nil:
		r.closeValue()
		return wire.Token{Event: codec.EventNull}, nil
	default:
		return wire.Token{}, fmt.Errorf("codecjsonstream: unexpected token %T", tok)
	}
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
		return wire.Token{}, fmt.Errorf("codecjsonstream: expected %v, got %v", want, tok.Event)
	}
	return tok, nil
}

func (r *Reader) ReadNull() error { _, err := r.pop(codec.EventNull); return err }
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
		return 0, fmt.Errorf("codecjsonstream: char must be exactly one code point, got %q", tok.Str)
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

// Marshal encodes value, whose static type is staticType, to JSON
// using core, buffering the streamed output into a byte slice for
// callers that don't need the streaming path themselves.
func Marshal(core *codec.Core, staticType reflect.Type, value any) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := core.Encode(staticType, value, w); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data, whose static type is staticType, into out
// using core, reading it through the streaming Reader.
func Unmarshal(core *codec.Core, staticType reflect.Type, data []byte, out any) error {
	r := NewReader(bytes.NewReader(data))
	return core.Decode(staticType, r, out)
}
