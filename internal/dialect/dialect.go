// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package dialect holds the few pieces of SQL that differ between the
// database engines sqlgate can talk to. Everything else in the generated
// statements is plain ANSI SQL.
package dialect

import (
	"strconv"
	"strings"
	"time"
)

// Dialect encapsulates engine specific SQL.
type Dialect interface {
	// Name identifies the dialect in logs and errors.
	Name() string

	// Placeholder returns the bind marker for the n-th argument (1-based).
	Placeholder(n int) string

	// QuoteIdent quotes an already validated identifier.
	QuoteIdent(name string) string

	// ColumnTypeQuery returns a catalog query taking the table name and the
	// column name, in that order, and returning the declared type of the
	// column as its first result column.
	ColumnTypeQuery() string

	// DateEquals returns a predicate comparing the date part of the quoted
	// column with the placeholder.
	DateEquals(column, placeholder string) string

	// DateArg encodes a calendar date so it compares equal to the result of
	// the truncation used by DateEquals.
	DateArg(t time.Time) any

	// BracketIdents reports whether [name] quotes an identifier. Where it
	// does not, brackets are ordinary SQL, such as DuckDB list literals.
	BracketIdents() bool
}

// SQLite is the dialect of SQLite and of engines built on it, such as
// dqlite.
var SQLite Dialect = sqliteDialect{}

// DuckDB is the dialect of DuckDB.
var DuckDB Dialect = duckDialect{}

// SQLServer is the dialect of Microsoft SQL Server, including LocalDB.
var SQLServer Dialect = sqlServerDialect{}

const dateLayout = "2006-01-02"

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) QuoteIdent(name string) string { return doubleQuote(name) }

func (sqliteDialect) ColumnTypeQuery() string {
	return `SELECT type FROM pragma_table_info(?) WHERE name = ? COLLATE NOCASE`
}

// SQLite has no DATE type and CAST(x AS DATE) applies numeric affinity.
// Text values keep the calendar date they were written with, including any
// UTC offset, so their first ten characters are compared. date() would
// convert an offset to UTC and could move the value to another day. Numeric
// values are julian day numbers, which only date() understands.
func (sqliteDialect) DateEquals(column, placeholder string) string {
	return "(CASE WHEN typeof(" + column + ") = 'text' THEN substr(" + column + ", 1, 10) ELSE date(" + column + ") END) = " + placeholder
}

func (sqliteDialect) DateArg(t time.Time) any { return t.Format(dateLayout) }

// SQLite accepts [name] for compatibility with SQL Server.
func (sqliteDialect) BracketIdents() bool { return true }

type duckDialect struct{}

func (duckDialect) Name() string { return "duckdb" }

func (duckDialect) Placeholder(int) string { return "?" }

func (duckDialect) QuoteIdent(name string) string { return doubleQuote(name) }

func (duckDialect) ColumnTypeQuery() string {
	return `SELECT data_type FROM information_schema.columns
		WHERE lower(table_name) = lower(?) AND lower(column_name) = lower(?)`
}

func (duckDialect) DateEquals(column, placeholder string) string {
	return "CAST(" + column + " AS DATE) = " + placeholder
}

func (duckDialect) DateArg(t time.Time) any { return t }

func (duckDialect) BracketIdents() bool { return false }

type sqlServerDialect struct{}

func (sqlServerDialect) Name() string { return "sqlserver" }

func (sqlServerDialect) Placeholder(n int) string { return "@p" + strconv.Itoa(n) }

func (sqlServerDialect) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (sqlServerDialect) ColumnTypeQuery() string {
	return `SELECT DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_NAME = @p1 AND COLUMN_NAME = @p2`
}

func (sqlServerDialect) DateEquals(column, placeholder string) string {
	return "CAST(" + column + " AS DATE) = " + placeholder
}

func (sqlServerDialect) DateArg(t time.Time) any { return t }

func (sqlServerDialect) BracketIdents() bool { return true }

func doubleQuote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
