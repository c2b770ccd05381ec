// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package stmt builds parameterized statements from table names, column
// names and values supplied at request time. Names are validated and quoted;
// values are only ever bound as arguments.
package stmt

import (
	"fmt"
	"strings"

	"github.com/canonical/sqlgate/internal/coerce"
	"github.com/canonical/sqlgate/internal/dialect"
)

// Plan is a statement ready to run. SQL holds exactly len(Args) placeholders.
type Plan struct {
	SQL  string
	Args []any
}

func (p Plan) String() string {
	return fmt.Sprintf("Plan[%s] (%d args)", p.SQL, len(p.Args))
}

// Key selects rows by comparing a column with a coerced value.
type Key struct {
	Column string
	Value  coerce.Value
}

// Builder generates statements in one dialect.
type Builder struct {
	d dialect.Dialect
}

// NewBuilder returns a Builder for d.
func NewBuilder(d dialect.Dialect) *Builder {
	return &Builder{d: d}
}

// Select reads every row of table, or only the rows matching key if it is
// not nil.
func (b *Builder) Select(table string, key *Key) (Plan, error) {
	t, err := b.ident(table)
	if err != nil {
		return Plan{}, err
	}
	sql := "SELECT * FROM " + t
	if key == nil {
		return Plan{SQL: sql}, nil
	}
	where, arg, err := b.predicate(*key, 1)
	if err != nil {
		return Plan{}, err
	}
	return Plan{SQL: sql + " WHERE " + where, Args: []any{arg}}, nil
}

// Insert adds one row to table.
func (b *Builder) Insert(table string, fields Fields) (Plan, error) {
	t, err := b.ident(table)
	if err != nil {
		return Plan{}, err
	}
	if len(fields) == 0 {
		return Plan{}, fmt.Errorf("%w: no fields to insert", coerce.ErrInvalidValue)
	}
	cols := make([]string, len(fields))
	phs := make([]string, len(fields))
	for i, f := range fields {
		if cols[i], err = b.ident(f.Name); err != nil {
			return Plan{}, err
		}
		phs[i] = b.d.Placeholder(i + 1)
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t, strings.Join(cols, ", "), strings.Join(phs, ", "))
	return Plan{SQL: sql, Args: fields.Values()}, nil
}

// Update sets fields on the rows of table matching key. The key argument is
// bound last.
func (b *Builder) Update(table string, key Key, fields Fields) (Plan, error) {
	t, err := b.ident(table)
	if err != nil {
		return Plan{}, err
	}
	if len(fields) == 0 {
		return Plan{}, fmt.Errorf("%w: no fields to update", coerce.ErrInvalidValue)
	}
	sets := make([]string, len(fields))
	for i, f := range fields {
		col, err := b.ident(f.Name)
		if err != nil {
			return Plan{}, err
		}
		sets[i] = col + " = " + b.d.Placeholder(i+1)
	}
	where, arg, err := b.predicate(key, len(fields)+1)
	if err != nil {
		return Plan{}, err
	}
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s", t, strings.Join(sets, ", "), where)
	return Plan{SQL: sql, Args: append(fields.Values(), arg)}, nil
}

// Delete removes the rows of table matching key.
func (b *Builder) Delete(table string, key Key) (Plan, error) {
	t, err := b.ident(table)
	if err != nil {
		return Plan{}, err
	}
	where, arg, err := b.predicate(key, 1)
	if err != nil {
		return Plan{}, err
	}
	return Plan{SQL: "DELETE FROM " + t + " WHERE " + where, Args: []any{arg}}, nil
}

// Freeform checks that a caller supplied statement has one "?" marker per
// argument and rewrites the markers into the dialect's placeholders.
func (b *Builder) Freeform(sql string, args []any) (Plan, error) {
	if strings.TrimSpace(sql) == "" {
		return Plan{}, fmt.Errorf("%w: empty statement", ErrMalformedStatement)
	}
	chunks, err := scan(sql, b.d.BracketIdents())
	if err != nil {
		return Plan{}, err
	}
	if n := len(chunks) - 1; n != len(args) {
		return Plan{}, fmt.Errorf("%w: %d placeholders but %d arguments", ErrMalformedStatement, n, len(args))
	}

	var sb strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			sb.WriteString(b.d.Placeholder(i))
		}
		sb.WriteString(chunk)
	}
	return Plan{SQL: sb.String(), Args: args}, nil
}

func (b *Builder) ident(name string) (string, error) {
	if err := ValidIdentifier(name); err != nil {
		return "", err
	}
	return b.d.QuoteIdent(name), nil
}

// predicate returns the WHERE condition for key, using placeholder n, and its
// argument. Date keys match on the calendar date whatever the time of day
// stored in the column.
func (b *Builder) predicate(key Key, n int) (string, any, error) {
	col, err := b.ident(key.Column)
	if err != nil {
		return "", nil, err
	}
	ph := b.d.Placeholder(n)
	if key.Value.IsDate() {
		t, _ := key.Value.Time()
		return b.d.DateEquals(col, ph), b.d.DateArg(t), nil
	}
	return col + " = " + ph, key.Value.Interface(), nil
}
