// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package schema_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	. "gopkg.in/check.v1"

	"github.com/canonical/sqlgate/internal/dialect"
	"github.com/canonical/sqlgate/internal/record"
	"github.com/canonical/sqlgate/internal/schema"
)

// Hook up gocheck into the "go test" runner.
func TestSchema(t *testing.T) { TestingT(t) }

type SchemaSuite struct{}

var _ = Suite(&SchemaSuite{})

func (s *SchemaSuite) TestCategorize(c *C) {
	var tests = []struct {
		raw  string
		want schema.Category
	}{
		{"int", schema.Integer},
		{"BIGINT", schema.Integer},
		{"tinyint", schema.Integer},
		{"INTEGER", schema.Integer},
		{"decimal(10,2)", schema.Decimal},
		{"Money", schema.Decimal},
		{"real", schema.Decimal},
		{"DOUBLE", schema.Decimal},
		{"bit", schema.Boolean},
		{"BOOLEAN", schema.Boolean},
		{"nvarchar(50)", schema.Text},
		{" varchar (max) ", schema.Text},
		{"text", schema.Text},
		{"VARCHAR", schema.Text},
		{"date", schema.Date},
		{"datetime2(7)", schema.Date},
		{"smalldatetime", schema.Date},
		{"TIMESTAMP WITH TIME ZONE", schema.Date},
	}
	for i, t := range tests {
		got, err := schema.Categorize(t.raw)
		c.Assert(err, IsNil, Commentf("test %d: %q", i, t.raw))
		c.Check(got, Equals, t.want, Commentf("test %d: %q", i, t.raw))
	}
}

func (s *SchemaSuite) TestCategorizeUnsupported(c *C) {
	for _, raw := range []string{"geography", "varbinary(16)", "uniqueidentifier", ""} {
		_, err := schema.Categorize(raw)
		c.Check(errors.Is(err, schema.ErrUnsupportedType), Equals, true, Commentf("%q", raw))
	}
	_, err := schema.Categorize("xml")
	c.Check(err, ErrorMatches, `unsupported column type: "xml"`)
}

// dbQuerier adapts a plain *sql.DB to the Querier interface.
type dbQuerier struct{ db *sql.DB }

func (q dbQuerier) Query(ctx context.Context, query string, args ...any) ([]record.Record, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return record.Scan(rows)
}

func (s *SchemaSuite) openDB(c *C) *sql.DB {
	db, err := sql.Open("sqlite3", filepath.Join(c.MkDir(), "schema.db"))
	c.Assert(err, IsNil)
	_, err = db.Exec(`
CREATE TABLE usuario (
	id integer,
	email nvarchar(100),
	saldo decimal(10,2),
	activo bit,
	alta datetime,
	foto blob
);`)
	c.Assert(err, IsNil)
	return db
}

func (s *SchemaSuite) TestResolve(c *C) {
	db := s.openDB(c)
	defer db.Close()
	q := dbQuerier{db}
	ctx := context.Background()

	desc, err := schema.Resolve(ctx, q, dialect.SQLite, "usuario", "email")
	c.Assert(err, IsNil)
	c.Check(desc, DeepEquals, schema.Descriptor{
		Table:    "usuario",
		Column:   "email",
		RawType:  "nvarchar(100)",
		Category: schema.Text,
	})

	desc, err = schema.Resolve(ctx, q, dialect.SQLite, "usuario", "ALTA")
	c.Assert(err, IsNil)
	c.Check(desc.Category, Equals, schema.Date)

	desc, err = schema.Resolve(ctx, q, dialect.SQLite, "usuario", "saldo")
	c.Assert(err, IsNil)
	c.Check(desc.Category, Equals, schema.Decimal)
}

func (s *SchemaSuite) TestResolveColumnNotFound(c *C) {
	db := s.openDB(c)
	defer db.Close()

	_, err := schema.Resolve(context.Background(), dbQuerier{db}, dialect.SQLite, "usuario", "missing")
	c.Check(errors.Is(err, schema.ErrColumnNotFound), Equals, true)

	_, err = schema.Resolve(context.Background(), dbQuerier{db}, dialect.SQLite, "nosuchtable", "id")
	c.Check(errors.Is(err, schema.ErrColumnNotFound), Equals, true)
}

func (s *SchemaSuite) TestResolveUnsupported(c *C) {
	db := s.openDB(c)
	defer db.Close()

	_, err := schema.Resolve(context.Background(), dbQuerier{db}, dialect.SQLite, "usuario", "foto")
	c.Check(errors.Is(err, schema.ErrUnsupportedType), Equals, true)
}

// Nothing is cached between calls.
func (s *SchemaSuite) TestResolveSeesSchemaChanges(c *C) {
	db := s.openDB(c)
	defer db.Close()
	q := dbQuerier{db}
	ctx := context.Background()

	_, err := schema.Resolve(ctx, q, dialect.SQLite, "usuario", "apodo")
	c.Assert(errors.Is(err, schema.ErrColumnNotFound), Equals, true)

	_, err = db.Exec(`ALTER TABLE usuario ADD COLUMN apodo varchar(20)`)
	c.Assert(err, IsNil)

	desc, err := schema.Resolve(ctx, q, dialect.SQLite, "usuario", "apodo")
	c.Assert(err, IsNil)
	c.Check(desc.Category, Equals, schema.Text)
}
