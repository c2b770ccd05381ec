// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package conn_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "gopkg.in/check.v1"

	"github.com/canonical/sqlgate/internal/conn"
	"github.com/canonical/sqlgate/internal/dialect"
)

// Hook up gocheck into the "go test" runner.
func TestConn(t *testing.T) { TestingT(t) }

type ConnSuite struct {
	path string
}

var _ = Suite(&ConnSuite{})

func (s *ConnSuite) SetUpTest(c *C) {
	s.path = filepath.Join(c.MkDir(), "conn.db")
	m := conn.NewManager("sqlite3", s.path)
	h, err := m.Open(context.Background())
	c.Assert(err, IsNil)
	defer h.Close()
	_, err = h.Exec(context.Background(), `CREATE TABLE persona (id integer PRIMARY KEY, nombre text NOT NULL)`)
	c.Assert(err, IsNil)
}

func (s *ConnSuite) TestConfiguration(c *C) {
	var tests = []struct {
		provider, connString string
		err                  string
	}{
		{"", s.path, `invalid connection configuration: no database provider`},
		{"sqlite3", "", `invalid connection configuration: no connection string for provider "sqlite3"`},
		{"oracle", "x", `invalid connection configuration: unknown provider "oracle"`},
	}
	for i, t := range tests {
		_, err := conn.NewManager(t.provider, t.connString).Open(context.Background())
		c.Check(err, ErrorMatches, t.err, Commentf("test %d", i))
		c.Check(errors.Is(err, conn.ErrConfiguration), Equals, true)
	}
}

func (s *ConnSuite) TestProviderNamesIgnoreCase(c *C) {
	m := conn.NewManager("SQLite3", s.path)
	d, err := m.Dialect()
	c.Assert(err, IsNil)
	c.Check(d, Equals, dialect.SQLite)

	h, err := m.Open(context.Background())
	c.Assert(err, IsNil)
	c.Check(h.Close(), IsNil)
}

func (s *ConnSuite) TestBuiltinProviders(c *C) {
	names := map[string]bool{}
	for _, n := range conn.Providers() {
		names[n] = true
	}
	for _, n := range []string{"sqlite3", "sqlite", "duckdb", "dqlite", "sqlserver", "localdb"} {
		c.Check(names[n], Equals, true, Commentf("%s", n))
	}
}

func (s *ConnSuite) TestConnectionFailure(c *C) {
	m := conn.NewManager("sqlite3", filepath.Join(c.MkDir(), "missing", "dir", "x.db"))
	_, err := m.Open(context.Background())
	c.Check(errors.Is(err, conn.ErrConnection), Equals, true)
}

func (s *ConnSuite) TestExecAndQuery(c *C) {
	ctx := context.Background()
	h, err := conn.NewManager("sqlite3", s.path).Open(ctx)
	c.Assert(err, IsNil)
	defer h.Close()

	n, err := h.Exec(ctx, `INSERT INTO persona (id, nombre) VALUES (?, ?), (?, ?)`, 1, "Ana", 2, "Luis")
	c.Assert(err, IsNil)
	c.Check(n, Equals, int64(2))

	recs, err := h.Query(ctx, `SELECT nombre, id FROM persona WHERE id > ? ORDER BY id`, 0)
	c.Assert(err, IsNil)
	c.Assert(recs, HasLen, 2)
	c.Check(recs[0].Columns(), DeepEquals, []string{"nombre", "id"})
	c.Check(recs[1].Map(), DeepEquals, map[string]any{"nombre": "Luis", "id": int64(2)})

	recs, err = h.Query(ctx, `SELECT * FROM persona WHERE id = ?`, 99)
	c.Assert(err, IsNil)
	c.Check(recs, HasLen, 0)
}

func (s *ConnSuite) TestExecFailureRollsBack(c *C) {
	ctx := context.Background()
	h, err := conn.NewManager("sqlite3", s.path).Open(ctx)
	c.Assert(err, IsNil)
	defer h.Close()

	// The second row violates NOT NULL, so neither row is kept.
	_, err = h.Exec(ctx, `INSERT INTO persona (id, nombre) VALUES (1, 'Ana'), (2, NULL)`)
	c.Assert(errors.Is(err, conn.ErrExecution), Equals, true)

	var sqliteErr sqlite3.Error
	c.Check(errors.As(err, &sqliteErr), Equals, true)
	c.Check(sqliteErr.Code, Equals, sqlite3.ErrConstraint)

	recs, err := h.Query(ctx, `SELECT * FROM persona`)
	c.Assert(err, IsNil)
	c.Check(recs, HasLen, 0)
}

func (s *ConnSuite) TestQueryFailure(c *C) {
	ctx := context.Background()
	h, err := conn.NewManager("sqlite3", s.path).Open(ctx)
	c.Assert(err, IsNil)
	defer h.Close()

	_, err = h.Query(ctx, `SELECT * FROM nosuchtable`)
	c.Check(errors.Is(err, conn.ErrExecution), Equals, true)
	c.Check(err, ErrorMatches, `statement failed: cannot run query: no such table: nosuchtable`)
}

func (s *ConnSuite) TestCloseIsIdempotent(c *C) {
	ctx := context.Background()
	opened := testutil.ToFloat64(conn.Metrics.Opened)
	closed := testutil.ToFloat64(conn.Metrics.Closed)

	h, err := conn.NewManager("sqlite3", s.path).Open(ctx)
	c.Assert(err, IsNil)
	c.Check(h.Close(), IsNil)
	c.Check(h.Close(), IsNil)

	c.Check(testutil.ToFloat64(conn.Metrics.Opened)-opened, Equals, 1.0)
	c.Check(testutil.ToFloat64(conn.Metrics.Closed)-closed, Equals, 1.0)

	_, err = h.Exec(ctx, `DELETE FROM persona`)
	c.Check(errors.Is(err, conn.ErrNotOpen), Equals, true)
	_, err = h.Query(ctx, `SELECT 1`)
	c.Check(errors.Is(err, conn.ErrNotOpen), Equals, true)
}

func (s *ConnSuite) TestStatementMetrics(c *C) {
	ctx := context.Background()
	okBefore := testutil.ToFloat64(conn.Metrics.Statements.WithLabelValues("query", "ok"))
	errBefore := testutil.ToFloat64(conn.Metrics.Statements.WithLabelValues("query", "error"))

	h, err := conn.NewManager("sqlite3", s.path).Open(ctx)
	c.Assert(err, IsNil)
	defer h.Close()
	_, err = h.Query(ctx, `SELECT 1`)
	c.Assert(err, IsNil)
	_, err = h.Query(ctx, `SELECT * FROM nosuchtable`)
	c.Assert(err, NotNil)

	c.Check(testutil.ToFloat64(conn.Metrics.Statements.WithLabelValues("query", "ok"))-okBefore, Equals, 1.0)
	c.Check(testutil.ToFloat64(conn.Metrics.Statements.WithLabelValues("query", "error"))-errBefore, Equals, 1.0)
}

// Every handle is its own connection. A change committed through one is
// visible through another that is open at the same time.
func (s *ConnSuite) TestHandlesAreIndependent(c *C) {
	ctx := context.Background()
	m := conn.NewManager("sqlite3", s.path)
	a, err := m.Open(ctx)
	c.Assert(err, IsNil)
	defer a.Close()
	b, err := m.Open(ctx)
	c.Assert(err, IsNil)
	defer b.Close()

	_, err = a.Exec(ctx, `INSERT INTO persona (id, nombre) VALUES (5, 'Eva')`)
	c.Assert(err, IsNil)
	recs, err := b.Query(ctx, `SELECT nombre FROM persona WHERE id = 5`)
	c.Assert(err, IsNil)
	c.Check(recs, HasLen, 1)
}

type DqliteSuite struct{}

var _ = Suite(&DqliteSuite{})

func (s *DqliteSuite) TestConnectionString(c *C) {
	cn, err := conn.DqliteConnector("10.0.0.1:9001, 10.0.0.2:9001/app")
	c.Assert(err, IsNil)
	c.Check(conn.ConnectorDSN(cn), Equals, "app")

	for _, bad := range []string{"10.0.0.1:9001", "10.0.0.1:9001/", "/app", " , /app"} {
		_, err := conn.DqliteConnector(bad)
		c.Check(err, NotNil, Commentf("%q", bad))
	}
}
