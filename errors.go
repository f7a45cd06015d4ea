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

import (
	"errors"
	"fmt"
	"reflect"
)

// Category classifies a [CodecError] per the taxonomy in §7.
type Category int

const (
	// CategoryUnknown is an unclassified failure.
	CategoryUnknown Category = iota

	// CategoryMalformedInput means the adapter reported an event
	// inconsistent with the codec's expectation.
	CategoryMalformedInput

	// CategoryUnknownType means nameToClass failed to resolve a
	// dynamic-type envelope's discriminator.
	CategoryUnknownType

	// CategoryUnknownEnumConstant means an enum name decoded from the
	// wire is not present in the type's descriptor.
	CategoryUnknownEnumConstant

	// CategoryMissingConstructor means no registered or oracle-provided
	// constructor exists for a non-primitive type.
	CategoryMissingConstructor

	// CategoryMalformedScalar means a primitive decode-time value
	// violated its shape (e.g. a multi-character "char").
	CategoryMalformedScalar

	// CategoryStructuralMismatch means an expected field was not
	// readable/writable via the oracle, or a field writer rejected a
	// value.
	CategoryStructuralMismatch
)

func (c Category) String() string {
	switch c {
	case CategoryMalformedInput:
		return "malformed-input"
	case CategoryUnknownType:
		return "unknown-type"
	case CategoryUnknownEnumConstant:
		return "unknown-enum-constant"
	case CategoryMissingConstructor:
		return "missing-constructor"
	case CategoryMalformedScalar:
		return "malformed-scalar"
	case CategoryStructuralMismatch:
		return "structural-mismatch"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per [Category], usable with errors.Is against a
// wrapped [CodecError].
var (
	ErrMalformedInput        = errors.New("codec: malformed input")
	ErrUnknownType           = errors.New("codec: unknown type")
	ErrUnknownEnumConstant   = errors.New("codec: unknown enum constant")
	ErrMissingConstructor    = errors.New("codec: missing constructor")
	ErrMalformedScalar       = errors.New("codec: malformed scalar")
	ErrStructuralMismatch    = errors.New("codec: structural mismatch")
	ErrUnresolvedForwardRef  = errors.New("codec: unresolved forwarding reference")
	ErrValueDiscarded        = errors.New("codec: partial output must be discarded")
)

func sentinelFor(c Category) error {
	switch c {
	case CategoryMalformedInput:
		return ErrMalformedInput
	case CategoryUnknownType:
		return ErrUnknownType
	case CategoryUnknownEnumConstant:
		return ErrUnknownEnumConstant
	case CategoryMissingConstructor:
		return ErrMissingConstructor
	case CategoryMalformedScalar:
		return ErrMalformedScalar
	case CategoryStructuralMismatch:
		return ErrStructuralMismatch
	default:
		return nil
	}
}

// CodecError is the single failure kind the façade surfaces (§7): a
// category, the adapter's location (when available), a message, and
// the underlying cause.
//
// Use [errors.Is] against the Category-specific sentinels
// ([ErrMalformedInput], [ErrUnknownType], ...) or [errors.As] to reach
// the structured fields:
//
//	var cerr *codec.CodecError
//	if errors.As(err, &cerr) {
//	    fmt.Println(cerr.Category, cerr.Location)
//	}
type CodecError struct {
	Category Category     // failure classification
	Location string       // adapter-reported location, if any
	Type     reflect.Type // type being encoded/decoded, if known
	Message  string       // human-readable detail
	Err      error        // underlying cause, if any
}

func (e *CodecError) Error() string {
	typeName := "?"
	if e.Type != nil {
		typeName = e.Type.String()
	}
	if e.Location != "" {
		return fmt.Sprintf("codec: %s at %s (%s): %s", e.Category, e.Location, typeName, e.Message)
	}
	return fmt.Sprintf("codec: %s (%s): %s", e.Category, typeName, e.Message)
}

// Unwrap supports errors.Is/errors.As against the underlying cause and
// the category sentinel simultaneously.
func (e *CodecError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := sentinelFor(e.Category); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// newError builds a *CodecError, capturing the adapter's location when
// the source/sink implements [Locator].
func newError(category Category, typ reflect.Type, loc string, format string, args ...any) *CodecError {
	return &CodecError{
		Category: category,
		Location: loc,
		Type:     typ,
		Message:  fmt.Sprintf(format, args...),
	}
}

func wrapError(category Category, typ reflect.Type, loc string, err error) *CodecError {
	return &CodecError{
		Category: category,
		Location: loc,
		Type:     typ,
		Message:  err.Error(),
		Err:      err,
	}
}
