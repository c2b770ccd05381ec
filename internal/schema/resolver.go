// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package schema discovers the declared type of a column from the database
// catalog. Descriptors are derived fresh on every call and never cached, so a
// schema change is visible to the very next request.
package schema

import (
	"context"
	"errors"
	"fmt"

	logging "github.com/ipfs/go-log/v2"

	"github.com/canonical/sqlgate/internal/dialect"
	"github.com/canonical/sqlgate/internal/record"
)

var log = logging.Logger("sqlgate/schema")

var (
	// ErrColumnNotFound is returned when the catalog has no such column.
	ErrColumnNotFound = errors.New("column not found")

	// ErrUnsupportedType is returned when the column's declared type has no
	// category.
	ErrUnsupportedType = errors.New("unsupported column type")
)

// Querier runs a query and returns its records. A *conn.Conn is a Querier.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) ([]record.Record, error)
}

// Descriptor is the resolved type of a column.
type Descriptor struct {
	Table    string
	Column   string
	RawType  string
	Category Category
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s.%s %s (%s)", d.Table, d.Column, d.RawType, d.Category)
}

// Resolve looks up the declared type of column in table.
func Resolve(ctx context.Context, q Querier, d dialect.Dialect, table, column string) (Descriptor, error) {
	recs, err := q.Query(ctx, d.ColumnTypeQuery(), table, column)
	if err != nil {
		return Descriptor{}, err
	}
	if len(recs) == 0 {
		return Descriptor{}, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, table, column)
	}

	cols := recs[0].Columns()
	v, _ := recs[0].Get(cols[0])
	raw, ok := v.(string)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: catalog returned %T for %s.%s", ErrUnsupportedType, v, table, column)
	}

	cat, err := Categorize(raw)
	if err != nil {
		return Descriptor{}, err
	}
	desc := Descriptor{Table: table, Column: column, RawType: raw, Category: cat}
	log.Debugw("resolved column type", "column", desc.String())
	return desc, nil
}
