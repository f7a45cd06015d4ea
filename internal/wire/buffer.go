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

// Package wire provides a small lookahead buffer that format adapters
// share to implement codec.Source's Event/PeekFieldName contract.
// A DOM-style adapter (codecjson) feeds it the whole tokenized
// document at once; a streaming adapter (codecjsonstream) feeds it
// lazily, one token at a time, as far ahead as a peek asks (there is
// no lookahead cap).
package wire

import (
	"fmt"
	"io"

	"veylan.dev/codec"
)

// Token is one position in a source's event stream: a shape (Event)
// plus whichever scalar payload that shape carries.
type Token struct {
	Event  codec.Event
	Bool   bool
	Byte   byte
	Char   codec.Char
	Short  int16
	Int    int32
	Long   int64
	Float  float32
	Double float64
	Str    string // EventString and EventFieldName payload
}

// FromTokens returns a Buffer over an already fully tokenized stream,
// for DOM-style adapters that tokenize their whole input up front.
func FromTokens(tokens []Token) *Buffer {
	return &Buffer{tokens: tokens, eof: true}
}

// Buffer is a pull-source's lookahead window over a Token stream
// produced on demand by Fetch. Once more than 64 positions have been
// consumed, Pop discards them, so a lazily fed buffer holds the deepest
// lookahead requested plus at most 64 consumed tokens; a FromTokens
// buffer keeps its whole stream.
type Buffer struct {
	Fetch func() (Token, error) // returns io.EOF when exhausted

	tokens []Token
	pos    int
	eof    bool
}

// ensure fills the buffer until it holds at least n+1 tokens beyond
// pos, or the underlying stream is exhausted.
func (b *Buffer) ensure(n int) error {
	for len(b.tokens)-b.pos <= n && !b.eof {
		t, err := b.Fetch()
		if err == io.EOF {
			b.eof = true
			break
		}
		if err != nil {
			return err
		}
		b.tokens = append(b.tokens, t)
	}
	return nil
}

// Event reports the shape of the token `lookahead` positions ahead of
// the cursor, or codec.EventEOF past the end of input.
func (b *Buffer) Event(lookahead int) (codec.Event, error) {
	if err := b.ensure(lookahead); err != nil {
		return codec.EventInvalid, err
	}
	idx := b.pos + lookahead
	if idx >= len(b.tokens) {
		return codec.EventEOF, nil
	}
	return b.tokens[idx].Event, nil
}

// PeekFieldName returns the field name at lookahead without consuming
// it. The token there must be an EventFieldName.
func (b *Buffer) PeekFieldName(lookahead int) (string, error) {
	if err := b.ensure(lookahead); err != nil {
		return "", err
	}
	idx := b.pos + lookahead
	if idx >= len(b.tokens) {
		return "", io.EOF
	}
	tok := b.tokens[idx]
	if tok.Event != codec.EventFieldName {
		return "", fmt.Errorf("wire: token at lookahead %d is not a field name", lookahead)
	}
	return tok.Str, nil
}

// PeekString returns the string value at lookahead without consuming
// it. The token there must be an EventString. Dynamic-type dispatch
// (§4.F) uses this to resolve a {@type,@value} envelope's class name
// ahead of the cursor when @value is the field that appears first on
// the wire, so the right codec is already known by the time @value's
// own content is actually consumed.
func (b *Buffer) PeekString(lookahead int) (string, error) {
	if err := b.ensure(lookahead); err != nil {
		return "", err
	}
	idx := b.pos + lookahead
	if idx >= len(b.tokens) {
		return "", io.EOF
	}
	tok := b.tokens[idx]
	if tok.Event != codec.EventString {
		return "", fmt.Errorf("wire: token at lookahead %d is not a string", lookahead)
	}
	return tok.Str, nil
}

// Pop consumes and returns the current token.
func (b *Buffer) Pop() (Token, error) {
	if err := b.ensure(0); err != nil {
		return Token{}, err
	}
	if b.pos >= len(b.tokens) {
		return Token{Event: codec.EventEOF}, nil
	}
	t := b.tokens[b.pos]
	b.pos++
	if b.pos > 64 && !b.eof {
		// drop consumed prefix once it's comfortably behind the
		// deepest lookahead any caller has used so far.
		b.tokens = append([]Token(nil), b.tokens[b.pos:]...)
		b.pos = 0
	}
	return t, nil
}

// NotEOF reports whether at least one more token remains.
func (b *Buffer) NotEOF() bool {
	_ = b.ensure(0)
	return b.pos < len(b.tokens)
}
