// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package schema

import (
	"fmt"
	"strings"
)

// Category is the small type taxonomy that drives value coercion.
type Category int

const (
	Integer Category = iota + 1
	Decimal
	Boolean
	Text
	Date
)

func (c Category) String() string {
	switch c {
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Boolean:
		return "boolean"
	case Text:
		return "text"
	case Date:
		return "date"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// categories maps normalised raw type names to their category. The first
// block is the SQL Server family; the second holds the names other engines
// report for the same types.
var categories = map[string]Category{
	"int":           Integer,
	"bigint":        Integer,
	"smallint":      Integer,
	"tinyint":       Integer,
	"decimal":       Decimal,
	"numeric":       Decimal,
	"money":         Decimal,
	"smallmoney":    Decimal,
	"float":         Decimal,
	"real":          Decimal,
	"bit":           Boolean,
	"nvarchar":      Text,
	"varchar":       Text,
	"nchar":         Text,
	"char":          Text,
	"text":          Text,
	"date":          Date,
	"datetime":      Date,
	"datetime2":     Date,
	"smalldatetime": Date,

	"integer":                  Integer,
	"int2":                     Integer,
	"int4":                     Integer,
	"int8":                     Integer,
	"hugeint":                  Integer,
	"double":                   Decimal,
	"double precision":         Decimal,
	"float4":                   Decimal,
	"float8":                   Decimal,
	"boolean":                  Boolean,
	"bool":                     Boolean,
	"string":                   Text,
	"character varying":        Text,
	"clob":                     Text,
	"timestamp":                Date,
	"timestamp with time zone": Date,
	"timestamptz":              Date,
}

// Categorize maps a raw type name, as reported by the catalog, to its
// category. Matching is case insensitive and ignores any length or precision
// suffix, so "NVARCHAR(50)" is "nvarchar".
func Categorize(raw string) (Category, error) {
	if c, ok := categories[normalizeType(raw)]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, raw)
}

func normalizeType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(t, '('); i >= 0 {
		rest := ""
		if j := strings.IndexByte(t[i:], ')'); j >= 0 {
			rest = t[i+j+1:]
		}
		t = t[:i] + rest
	}
	return strings.Join(strings.Fields(t), " ")
}
