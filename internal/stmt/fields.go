// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package stmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/canonical/sqlgate/internal/coerce"
)

// Field is one column name and the value to write to it.
type Field struct {
	Name  string
	Value any
}

// Fields is an ordered field map. Statements generated from it list the
// columns in the same order, so the SQL for a given payload is stable.
type Fields []Field

// Names returns the field names in order.
func (f Fields) Names() []string {
	names := make([]string, len(f))
	for i, fd := range f {
		names[i] = fd.Name
	}
	return names
}

// Values returns the field values in order.
func (f Fields) Values() []any {
	vals := make([]any, len(f))
	for i, fd := range f {
		vals[i] = fd.Value
	}
	return vals
}

// Set assigns value to name, keeping the position of an existing field.
func (f Fields) Set(name string, value any) Fields {
	for i := range f {
		if f[i].Name == name {
			f[i].Value = value
			return f
		}
	}
	return append(f, Field{Name: name, Value: value})
}

// DecodeFields reads a JSON object into Fields, keeping the keys in document
// order. Values must be scalars. Numbers become int64 when integral and
// float64 otherwise.
func DecodeFields(r io.Reader) (Fields, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty body", coerce.ErrInvalidValue)
	} else if err != nil {
		return nil, fmt.Errorf("%w: %s", coerce.ErrInvalidValue, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", coerce.ErrInvalidValue)
	}

	var fields Fields
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", coerce.ErrInvalidValue, err)
		}
		name := tok.(string)
		v, err := decodeScalar(dec)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		fields = fields.Set(name, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %s", coerce.ErrInvalidValue, err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	return fields, nil
}

// expectEOF fails if anything but white space follows the decoded value.
func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after JSON value", coerce.ErrInvalidValue)
	}
	return nil
}

// DecodeArgs reads positional arguments for a free-form statement. raw may be
// a JSON array, or an object whose values are taken in document order. An
// absent or null raw means no arguments.
func DecodeArgs(raw json.RawMessage) ([]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '{' {
		fields, err := DecodeFields(bytes.NewReader(trimmed))
		if err != nil {
			return nil, err
		}
		return fields.Values(), nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", coerce.ErrInvalidValue, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("%w: parameters must be an object or an array", coerce.ErrInvalidValue)
	}
	args := []any{}
	for dec.More() {
		v, err := decodeScalar(dec)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", len(args)+1, err)
		}
		args = append(args, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %s", coerce.ErrInvalidValue, err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	return args, nil
}

func decodeScalar(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", coerce.ErrInvalidValue, err)
	}
	switch v := tok.(type) {
	case json.Delim:
		return nil, fmt.Errorf("%w: nested %s values are not supported", coerce.ErrInvalidValue, describeDelim(v))
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", coerce.ErrInvalidValue, err)
		}
		return f, nil
	default:
		// string, bool or nil
		return v, nil
	}
}

func describeDelim(d json.Delim) string {
	if d == '[' {
		return "array"
	}
	return "object"
}
