package jsonx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Decode parses a complete JSON document from data.
//
// Objects become *Object (key order preserved), arrays []any, numbers
// float64, and the remaining scalars their usual Go forms. Trailing
// non-whitespace after the document is an error.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}

	// Reject trailing garbage so a half-JSON text response is not
	// misclassified as JSON.
	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, fmt.Errorf("jsonx: trailing input: %w", err)
		}
		return nil, fmt.Errorf("jsonx: trailing token %v after document", tok)
	}
	return v, nil
}

// decodeValue reads one JSON value from dec.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("jsonx: read token: %w", err)
	}
	return valueFromFirstToken(dec, tok)
}

// valueFromFirstToken builds a Go value for the current JSON value, given
// that its first token has already been consumed.
func valueFromFirstToken(dec *json.Decoder, tok json.Token) (any, error) {
	d, ok := tok.(json.Delim)
	if !ok {
		// Scalar token: string, float64, bool, or nil.
		return tok, nil
	}

	switch d {
	case '{':
		obj := NewObject()
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("jsonx: read object key: %w", err)
			}
			k, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("jsonx: object key not a string (got %T)", kt)
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(k, v)
		}
		if end, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("jsonx: read object end: %w", err)
		} else if end != json.Delim('}') {
			return nil, fmt.Errorf("jsonx: expected '}', got %v", end)
		}
		return obj, nil

	case '[':
		var arr []any
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if end, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("jsonx: read array end: %w", err)
		} else if end != json.Delim(']') {
			return nil, fmt.Errorf("jsonx: expected ']', got %v", end)
		}
		if arr == nil {
			arr = []any{}
		}
		return arr, nil

	default:
		return nil, fmt.Errorf("jsonx: unexpected delimiter %q", d)
	}
}

// Sniff attempts to parse data as JSON and reports success only for a
// structured root (object or array). Scalar roots are rejected: a plain
// text body like `1234` or `"OK"` is valid JSON but should stay text.
func Sniff(data []byte) (any, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, false
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, false
	}
	v, err := Decode(trimmed)
	if err != nil {
		return nil, false
	}
	return v, true
}
