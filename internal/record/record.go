// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package record turns tabular result sets into ordered records.
package record

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Record is one result row. Unlike a map it remembers the order of the
// columns as reported by the driver, and keeps it when encoded as JSON.
type Record struct {
	columns []string
	values  map[string]any
}

// New returns an empty record.
func New() Record {
	return Record{values: map[string]any{}}
}

// Set assigns a value to a column. A column that is already present keeps its
// position and takes the new value.
func (r *Record) Set(column string, value any) {
	if r.values == nil {
		r.values = map[string]any{}
	}
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = value
}

// Get returns the value of a column and whether the column is present.
func (r Record) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Columns returns the column names in result set order.
func (r Record) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Len returns the number of columns in the record.
func (r Record) Len() int {
	return len(r.columns)
}

// Map returns the record as a plain map, dropping the column order.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// MarshalJSON encodes the record as a JSON object with its keys in column
// order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[col])
		if err != nil {
			return nil, fmt.Errorf("cannot encode column %q: %w", col, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String returns a compact representation for debugging.
func (r Record) String() string {
	b, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Record[%v]", r.columns)
	}
	return string(b)
}

// Marshal zips every raw row with the column names. It returns an empty,
// non-nil slice when there are no rows; whether that means "not found" is up
// to the caller.
func Marshal(rows [][]any, columns []string) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		r := New()
		for i, col := range columns {
			var v any
			if i < len(row) {
				v = normalize(row[i])
			}
			r.Set(col, v)
		}
		records = append(records, r)
	}
	return records
}

// Scan reads every remaining row of rows and marshals them. It does not
// close rows.
func Scan(rows *sql.Rows) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var raw [][]any
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		raw = append(raw, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return Marshal(raw, columns), nil
}

// normalize converts driver values that do not survive JSON encoding in a
// useful form. Some drivers return text and DECIMAL columns as bytes.
func normalize(v any) any {
	switch v := v.(type) {
	case []byte:
		return string(v)
	case sql.RawBytes:
		return string(v)
	}
	return v
}
