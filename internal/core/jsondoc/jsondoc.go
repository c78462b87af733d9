// Package jsondoc parses, edits and re-encodes event queue documents: a JSON
// array whose elements are objects.
//
// Values are kept untyped (map[string]any, []any, json.Number, string, bool,
// nil) so any field set round-trips. Numbers are decoded as json.Number and
// re-emitted with their original literal text
package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	perr "evqmigrate/internal/platform/errors"
)

// Indent is one nesting level of encoded output
const Indent = "    "

// Entry is one element of a Document
type Entry = map[string]any

// Document is a parsed event queue file
type Document []Entry

// Issue names one element that is not an object. Index is -1 when the
// top-level value itself is the problem
type Issue struct {
	Index int    `json:"index" yaml:"index"`
	Kind  string `json:"kind" yaml:"kind"`
}

// ShapeError lists every element that breaks the array-of-objects shape
type ShapeError struct {
	Issues []Issue
}

func (e *ShapeError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		if is.Index < 0 {
			parts = append(parts, "top-level value is "+article(is.Kind))
			continue
		}
		parts = append(parts, fmt.Sprintf("entry %d is %s", is.Index, article(is.Kind)))
	}
	return strings.Join(parts, "; ")
}

// IssuesOf returns the shape issues carried by err, if any
func IssuesOf(err error) []Issue {
	var se *ShapeError
	if errors.As(err, &se) {
		return se.Issues
	}
	return nil
}

// Parse decodes b into a Document. Syntax errors, empty input, trailing
// data and unpaired surrogate escapes are ErrorCodeJSON; anything other than
// an array of objects is ErrorCodeShape wrapping a *ShapeError
func Parse(b []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, perr.JSONErrf("empty document")
		}
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "malformed JSON")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, perr.JSONErrf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}
	// the decoder would turn these into U+FFFD and the rewrite would lose them
	if off := loneSurrogate(b); off >= 0 {
		return nil, perr.JSONErrf("unpaired surrogate escape at offset %d", off)
	}

	arr, ok := v.([]any)
	if !ok {
		se := &ShapeError{Issues: []Issue{{Index: -1, Kind: KindOf(v)}}}
		return nil, perr.Wrap(se, perr.ErrorCodeShape, "document is not an array")
	}

	doc := make(Document, 0, len(arr))
	var se ShapeError
	for i, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			se.Issues = append(se.Issues, Issue{Index: i, Kind: KindOf(el)})
			continue
		}
		doc = append(doc, m)
	}
	if len(se.Issues) > 0 {
		return nil, perr.Wrap(&se, perr.ErrorCodeShape, "document entries are not objects")
	}
	return doc, nil
}

// loneSurrogate returns the offset of the first \u escape inside a string
// that encodes half of a surrogate pair without its partner, or -1.
// b must already be valid JSON
func loneSurrogate(b []byte) int {
	inStr := false
	for i := 0; i < len(b); i++ {
		c := b[i]
		if !inStr {
			inStr = c == '"'
			continue
		}
		switch c {
		case '"':
			inStr = false
		case '\\':
			if i+1 < len(b) && b[i+1] != 'u' {
				i++
				continue
			}
			r, ok := hex4(b, i+2)
			if !ok {
				return -1
			}
			switch {
			case r >= 0xd800 && r < 0xdc00:
				if i+7 < len(b) && b[i+6] == '\\' && b[i+7] == 'u' {
					if lo, ok := hex4(b, i+8); ok && lo >= 0xdc00 && lo < 0xe000 {
						i += 11
						continue
					}
				}
				return i
			case r >= 0xdc00 && r < 0xe000:
				return i
			}
			i += 5
		}
	}
	return -1
}

func hex4(b []byte, at int) (uint64, bool) {
	if at+4 > len(b) {
		return 0, false
	}
	v, err := strconv.ParseUint(string(b[at:at+4]), 16, 32)
	return v, err == nil
}

// Strip deletes keys from the top level of every entry and returns how many
// pairs were removed. Nested objects are left alone
func (d Document) Strip(keys ...string) int {
	n := 0
	for _, e := range d {
		for _, k := range keys {
			if _, ok := e[k]; ok {
				delete(e, k)
				n++
			}
		}
	}
	return n
}

// EncodeOptions controls Encode output
type EncodeOptions struct {
	// EscapeNonASCII writes every rune at or above U+007F as \uXXXX
	EscapeNonASCII bool
}

// Encode renders d with object keys sorted at every depth, Indent per level
// and no trailing newline. HTML characters are written as-is
func (d Document) Encode(opt EncodeOptions) ([]byte, error) {
	if d == nil {
		d = Document{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(d); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "encode document")
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	if opt.EscapeNonASCII {
		out = escapeNonASCII(out)
	}
	return out, nil
}

// KindOf names the JSON type of a decoded value
func KindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// escapeNonASCII rewrites runes >= U+007F as \u escapes. Encoder output only
// carries such bytes inside string literals, so a byte-level pass is safe
func escapeNonASCII(b []byte) []byte {
	ascii := true
	for _, c := range b {
		if c >= utf8.RuneSelf-1 {
			ascii = false
			break
		}
	}
	if ascii {
		return b
	}
	out := make([]byte, 0, len(b)+len(b)/4)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		switch {
		case r < 0x7f:
			out = append(out, byte(r))
		case r > 0xffff:
			r1, r2 := utf16.EncodeRune(r)
			out = fmt.Appendf(out, `\u%04x\u%04x`, r1, r2)
		default:
			out = fmt.Appendf(out, `\u%04x`, r)
		}
	}
	return out
}

func article(kind string) string {
	switch kind {
	case "array", "object":
		return "an " + kind
	case "null":
		return "null"
	default:
		return "a " + kind
	}
}
