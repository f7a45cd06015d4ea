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

// Package codecyaml adapts codec.Sink/codec.Source onto YAML using
// gopkg.in/yaml.v3's yaml.Node tree, the same library
// rivaas.dev/binding/yaml uses for struct binding. yaml.Node already
// gives an ordered, generic document tree with resolved scalar tags
// (!!str, !!int, !!bool, !!null, ...), so Writer builds one directly
// and Reader walks one back into wire tokens; neither side needs the
// manual header parsing the binary formats do.
package codecyaml

import (
	"fmt"
	"io"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"

	"veylan.dev/codec"
	"veylan.dev/codec/internal/wire"
)

// Writer is a codec.Sink that builds a yaml.Node document.
type Writer struct {
	root  *yaml.Node
	stack []*yaml.Node
}

func NewWriter() *Writer {
	return &Writer{}
}

// Bytes renders the built document to YAML.
func (w *Writer) Bytes() ([]byte, error) {
	return yaml.Marshal(w.root)
}

func (w *Writer) append(n *yaml.Node) {
	if len(w.stack) == 0 {
		w.root = n
		return
	}
	top := w.stack[len(w.stack)-1]
	top.Content = append(top.Content, n)
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func (w *Writer) WriteNull() error       { w.append(scalar("!!null", "null")); return nil }
func (w *Writer) WriteBool(v bool) error { w.append(scalar("!!bool", strconv.FormatBool(v))); return nil }
func (w *Writer) WriteByte(v byte) error {
	w.append(scalar("!!int", strconv.Itoa(int(v))))
	return nil
}
func (w *Writer) WriteChar(v codec.Char) error {
	w.append(scalar("!!str", string(rune(v))))
	return nil
}
func (w *Writer) WriteShort(v int16) error {
	w.append(scalar("!!int", strconv.FormatInt(int64(v), 10)))
	return nil
}
func (w *Writer) WriteInt(v int32) error {
	w.append(scalar("!!int", strconv.FormatInt(int64(v), 10)))
	return nil
}
func (w *Writer) WriteLong(v int64) error {
	w.append(scalar("!!int", strconv.FormatInt(v, 10)))
	return nil
}
func (w *Writer) WriteFloat(v float32) error {
	w.append(scalar("!!float", strconv.FormatFloat(float64(v), 'g', -1, 32)))
	return nil
}
func (w *Writer) WriteDouble(v float64) error {
	w.append(scalar("!!float", strconv.FormatFloat(v, 'g', -1, 64)))
	return nil
}
func (w *Writer) WriteString(v string) error {
	w.append(scalar("!!str", v))
	return nil
}

func (w *Writer) StartObject() error {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	w.append(n)
	w.stack = append(w.stack, n)
	return nil
}

func (w *Writer) WriteField(name string) error {
	w.append(scalar("!!str", name))
	return nil
}

func (w *Writer) EndObject() error {
	w.stack = w.stack[:len(w.stack)-1]
	return nil
}

func (w *Writer) StartArray() error {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	w.append(n)
	w.stack = append(w.stack, n)
	return nil
}

func (w *Writer) EndArray() error {
	w.stack = w.stack[:len(w.stack)-1]
	return nil
}

func emitValue(n *yaml.Node, tokens *[]wire.Token) error {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			*tokens = append(*tokens, wire.Token{Event: codec.EventNull})
			return nil
		}
		return emitValue(n.Content[0], tokens)
	}
	if n.Kind == yaml.AliasNode {
		return emitValue(n.Alias, tokens)
	}

	switch n.Kind {
	case yaml.MappingNode:
		*tokens = append(*tokens, wire.Token{Event: codec.EventStartObject})
		for i := 0; i+1 < len(n.Content); i += 2 {
			*tokens = append(*tokens, wire.Token{Event: codec.EventFieldName, Str: n.Content[i].Value})
			if err := emitValue(n.Content[i+1], tokens); err != nil {
				return err
			}
		}
		*tokens = append(*tokens, wire.Token{Event: codec.EventEndObject})
		return nil
	case yaml.SequenceNode:
		*tokens = append(*tokens, wire.Token{Event: codec.EventStartArray})
		for _, c := range n.Content {
			if err := emitValue(c, tokens); err != nil {
				return err
			}
		}
		*tokens = append(*tokens, wire.Token{Event: codec.EventEndArray})
		return nil
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!null":
			*tokens = append(*tokens, wire.Token{Event: codec.EventNull})
		case "!!bool":
			b, err := strconv.ParseBool(n.Value)
			if err != nil {
				return err
			}
			*tokens = append(*tokens, wire.Token{Event: codec.EventBool, Bool: b})
		case "!!int", "!!float":
			*tokens = append(*tokens, wire.Token{Event: codec.EventNumber, Str: n.Value})
		default:
			*tokens = append(*tokens, wire.Token{Event: codec.EventString, Str: n.Value})
		}
		return nil
	default:
		return fmt.Errorf("codecyaml: unsupported node kind %v", n.Kind)
	}
}

// Reader is a codec.Source over a fully parsed YAML document.
type Reader struct {
	buf *wire.Buffer
}

// NewReader parses all of data up front.
func NewReader(data []byte) (*Reader, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	var tokens []wire.Token
	if err := emitValue(&root, &tokens); err != nil {
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
		return wire.Token{}, fmt.Errorf("codecyaml: expected %v, got %v", want, tok.Event)
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
		return 0, fmt.Errorf("codecyaml: char must be exactly one code point, got %q", tok.Str)
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

// Marshal encodes value, whose static type is staticType, to YAML
// using core.
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
