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

// Package codecxml adapts codec.Sink/codec.Source onto XML (§4.B).
// XML has no native array or null syntax, so this package fixes a
// small convention: an object's fields become same-named child
// elements, a sequence becomes a wrapper element containing repeated
// <item> children, null is marked with a nil="true" attribute, and an
// empty object or array holds a single <empty-object> or <empty-array>
// marker child element rather than being left ambiguous with an empty
// string.
package codecxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"veylan.dev/codec"
	"veylan.dev/codec/internal/wire"
)

// DefaultRootName is the element name Marshal uses for the document
// root.
const DefaultRootName = "value"

// Marshal encodes value, whose static type is staticType, to an XML
// document rooted at DefaultRootName.
func Marshal(core *codec.Core, staticType reflect.Type, value any) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf, DefaultRootName)
	if err := core.Encode(staticType, value, w); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes an XML document produced by Marshal into out.
func Unmarshal(core *codec.Core, staticType reflect.Type, data []byte, out any) error {
	r, err := NewReader(data)
	if err != nil {
		return err
	}
	return core.Decode(staticType, r, out)
}

const (
	itemElementName   = "item"
	emptyObjectMarker = "empty-object"
	emptyArrayMarker  = "empty-array"
)

type container int

const (
	containerObject container = iota
	containerArray
)

type frame struct {
	kind container
	name string
	n    int
}

// Writer is a codec.Sink that renders an XML document with rootName
// as the outermost element.
type Writer struct {
	enc      *xml.Encoder
	rootName string
	pending  string
	stack    []frame
	err      error
}

func NewWriter(w io.Writer, rootName string) *Writer {
	return &Writer{enc: xml.NewEncoder(w), rootName: rootName}
}

func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.enc.Flush()
}

// elementName resolves the tag name for the value about to be
// written: "item" inside an array frame, the pending WriteField name
// otherwise, or the configured root name at the very top of the tree.
func (w *Writer) elementName() string {
	if n := len(w.stack); n > 0 && w.stack[n-1].kind == containerArray {
		return itemElementName
	}
	if w.pending != "" {
		name := w.pending
		w.pending = ""
		return name
	}
	return w.rootName
}

func (w *Writer) bumpParent() {
	if n := len(w.stack); n > 0 {
		w.stack[n-1].n++
	}
}

func (w *Writer) emitScalar(name, text string, attrs ...xml.Attr) {
	if w.err != nil {
		return
	}
	start := xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}
	if w.err = w.enc.EncodeToken(start); w.err != nil {
		return
	}
	if text != "" {
		if w.err = w.enc.EncodeToken(xml.CharData(text)); w.err != nil {
			return
		}
	}
	w.err = w.enc.EncodeToken(xml.EndElement{Name: start.Name})
	w.bumpParent()
}

func (w *Writer) WriteNull() error {
	name := w.elementName()
	w.emitScalar(name, "", xml.Attr{Name: xml.Name{Local: "nil"}, Value: "true"})
	return w.err
}

func (w *Writer) WriteBool(v bool) error {
	w.emitScalar(w.elementName(), strconv.FormatBool(v))
	return w.err
}

func (w *Writer) WriteByte(v byte) error {
	w.emitScalar(w.elementName(), strconv.Itoa(int(v)))
	return w.err
}

func (w *Writer) WriteChar(v codec.Char) error {
	w.emitScalar(w.elementName(), string(rune(v)))
	return w.err
}

func (w *Writer) WriteShort(v int16) error {
	w.emitScalar(w.elementName(), strconv.FormatInt(int64(v), 10))
	return w.err
}

func (w *Writer) WriteInt(v int32) error {
	w.emitScalar(w.elementName(), strconv.FormatInt(int64(v), 10))
	return w.err
}

func (w *Writer) WriteLong(v int64) error {
	w.emitScalar(w.elementName(), strconv.FormatInt(v, 10))
	return w.err
}

func (w *Writer) WriteFloat(v float32) error {
	w.emitScalar(w.elementName(), strconv.FormatFloat(float64(v), 'g', -1, 32))
	return w.err
}

func (w *Writer) WriteDouble(v float64) error {
	w.emitScalar(w.elementName(), strconv.FormatFloat(v, 'g', -1, 64))
	return w.err
}

func (w *Writer) WriteString(v string) error {
	w.emitScalar(w.elementName(), v)
	return w.err
}

func (w *Writer) StartObject() error {
	if w.err != nil {
		return w.err
	}
	name := w.elementName()
	w.err = w.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}})
	w.stack = append(w.stack, frame{kind: containerObject, name: name})
	return w.err
}

func (w *Writer) WriteField(name string) error {
	w.pending = name
	return nil
}

func (w *Writer) EndObject() error {
	f := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if w.err != nil {
		return w.err
	}
	if f.n == 0 {
		w.emitMarker(emptyObjectMarker)
	}
	if w.err != nil {
		return w.err
	}
	w.err = w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: f.name}})
	w.bumpParent()
	return w.err
}

func (w *Writer) StartArray() error {
	if w.err != nil {
		return w.err
	}
	name := w.elementName()
	w.err = w.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}})
	w.stack = append(w.stack, frame{kind: containerArray, name: name})
	return w.err
}

func (w *Writer) EndArray() error {
	f := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if w.err != nil {
		return w.err
	}
	if f.n == 0 {
		w.emitMarker(emptyArrayMarker)
	}
	if w.err != nil {
		return w.err
	}
	w.err = w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: f.name}})
	w.bumpParent()
	return w.err
}

// emitMarker writes an empty child element used to disambiguate
// an empty object or array from an empty-string scalar, since all
// three render as "<name></name>" otherwise.
func (w *Writer) emitMarker(name string) {
	if w.err != nil {
		return
	}
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if w.err = w.enc.EncodeToken(start); w.err != nil {
		return
	}
	w.err = w.enc.EncodeToken(xml.EndElement{Name: start.Name})
}

// node is the intermediate parse tree Reader builds from raw XML
// tokens before linearizing it into wire.Tokens (§4.B DOM semantics:
// unbounded lookahead, since the whole document is already in hand).
type node struct {
	name     string
	nilAttr  bool
	text     string
	children []node
}

// Reader is a codec.Source over a fully parsed XML document.
type Reader struct {
	buf *wire.Buffer
}

// NewReader parses all of data up front.
func NewReader(data []byte) (*Reader, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root *node
	var stack []*node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Local == "nil" && a.Value == "true" {
					n.nilAttr = true
				}
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, *n)
				stack = append(stack, &parent.children[len(parent.children)-1])
			} else {
				root = n
				stack = append(stack, root)
			}
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("codecxml: empty document")
	}

	var tokens []wire.Token
	emitValue(*root, &tokens)
	return &Reader{buf: wire.FromTokens(tokens)}, nil
}

func allItems(children []node) bool {
	if len(children) == 0 {
		return false
	}
	for _, c := range children {
		if c.name != itemElementName {
			return false
		}
	}
	return true
}

func emitValue(n node, tokens *[]wire.Token) {
	if n.nilAttr {
		*tokens = append(*tokens, wire.Token{Event: codec.EventNull})
		return
	}
	if len(n.children) == 1 {
		switch n.children[0].name {
		case emptyObjectMarker:
			*tokens = append(*tokens, wire.Token{Event: codec.EventStartObject}, wire.Token{Event: codec.EventEndObject})
			return
		case emptyArrayMarker:
			*tokens = append(*tokens, wire.Token{Event: codec.EventStartArray}, wire.Token{Event: codec.EventEndArray})
			return
		}
	}
	if allItems(n.children) {
		*tokens = append(*tokens, wire.Token{Event: codec.EventStartArray})
		for _, c := range n.children {
			emitValue(c, tokens)
		}
		*tokens = append(*tokens, wire.Token{Event: codec.EventEndArray})
		return
	}
	if len(n.children) > 0 {
		*tokens = append(*tokens, wire.Token{Event: codec.EventStartObject})
		for _, c := range n.children {
			*tokens = append(*tokens, wire.Token{Event: codec.EventFieldName, Str: c.name})
			emitValue(c, tokens)
		}
		*tokens = append(*tokens, wire.Token{Event: codec.EventEndObject})
		return
	}
	*tokens = append(*tokens, wire.Token{Event: codec.EventString, Str: n.text})
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
		return wire.Token{}, fmt.Errorf("codecxml: expected %v, got %v", want, tok.Event)
	}
	return tok, nil
}

func (r *Reader) ReadNull() error { _, err := r.pop(codec.EventNull); return err }

func (r *Reader) readText() (string, error) {
	tok, err := r.pop(codec.EventString)
	return tok.Str, err
}

func (r *Reader) ReadBool() (bool, error) {
	s, err := r.readText()
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(s)
}

func (r *Reader) ReadByte() (byte, error) {
	s, err := r.readText()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 16)
	return byte(v), err
}

func (r *Reader) ReadChar() (codec.Char, error) {
	s, err := r.readText()
	if err != nil {
		return 0, err
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("codecxml: char must be exactly one code point, got %q", s)
	}
	return codec.Char(runes[0]), nil
}

func (r *Reader) ReadShort() (int16, error) {
	s, err := r.readText()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 16)
	return int16(v), err
}

func (r *Reader) ReadInt() (int32, error) {
	s, err := r.readText()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 32)
	return int32(v), err
}

func (r *Reader) ReadLong() (int64, error) {
	s, err := r.readText()
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}

func (r *Reader) ReadFloat() (float32, error) {
	s, err := r.readText()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}

func (r *Reader) ReadDouble() (float64, error) {
	s, err := r.readText()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

func (r *Reader) ReadString() (string, error) { return r.readText() }

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
