// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlgate

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"

	"github.com/canonical/sqlgate/internal/coerce"
	"github.com/canonical/sqlgate/internal/conn"
	"github.com/canonical/sqlgate/internal/record"
	"github.com/canonical/sqlgate/internal/sanitize"
	"github.com/canonical/sqlgate/internal/schema"
	"github.com/canonical/sqlgate/internal/stmt"
)

var log = logging.Logger("sqlgate")

// Record is one result row with its columns in result set order.
type Record = record.Record

// Fields is an ordered set of column values to write.
type Fields = stmt.Fields

// Field is one entry of Fields.
type Field = stmt.Field

// Manager opens connection handles to one database.
type Manager = conn.Manager

// NewManager returns a Manager for the named provider, one of "sqlite3",
// "sqlite", "duckdb", "dqlite", "sqlserver" or "localdb". Nothing is opened
// until an operation runs.
func NewManager(provider, connString string) *Manager {
	return conn.NewManager(provider, connString)
}

// Option configures an Engine.
type Option func(*Engine)

// Sanitizer hashes credential fields before they are written.
type Sanitizer = sanitize.Sanitizer

// NewSanitizer returns a Sanitizer that hashes with bcrypt at cost every
// field whose name contains one of substrings, ignoring case. A zero cost
// means bcrypt's default.
func NewSanitizer(substrings []string, cost int) *Sanitizer {
	return sanitize.New(substrings, sanitize.Bcrypt{Cost: cost})
}

// WithSanitizer replaces the credential sanitizer applied to writes.
func WithSanitizer(s *Sanitizer) Option {
	return func(e *Engine) {
		e.sanitizer = s
	}
}

// Engine runs table-agnostic operations against one database. Each operation
// is a unit of work with its own connection handle, opened at the start and
// released before the operation returns, whatever the outcome. An Engine
// holds no other state and is safe for concurrent use.
type Engine struct {
	m         *conn.Manager
	sanitizer *sanitize.Sanitizer
}

// New returns an Engine using m to reach the database. Unless overridden,
// fields whose name looks like a password are hashed with bcrypt before they
// are written.
func New(m *Manager, opts ...Option) *Engine {
	e := &Engine{
		m:         m,
		sanitizer: sanitize.New(sanitize.DefaultFields, sanitize.Bcrypt{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// List returns every row of table. A table without rows gives an empty
// slice.
func (e *Engine) List(ctx context.Context, table string) ([]Record, error) {
	if err := stmt.ValidIdentifier(table); err != nil {
		return nil, err
	}
	var recs []Record
	err := e.unit(ctx, func(c *conn.Conn, b *stmt.Builder) error {
		plan, err := b.Select(table, nil)
		if err != nil {
			return err
		}
		recs, err = c.Query(ctx, plan.SQL, plan.Args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Lookup returns the rows of table whose column equals value, after value is
// coerced to the column's declared type. Date columns match on the calendar
// date alone.
func (e *Engine) Lookup(ctx context.Context, table, column, value string) ([]Record, error) {
	if err := validKey(table, column, value); err != nil {
		return nil, err
	}
	var recs []Record
	err := e.unit(ctx, func(c *conn.Conn, b *stmt.Builder) error {
		key, err := resolveKey(ctx, c, table, column, value)
		if err != nil {
			return err
		}
		plan, err := b.Select(table, &key)
		if err != nil {
			return err
		}
		recs, err = c.Query(ctx, plan.SQL, plan.Args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Create inserts one row built from fields and returns the number of rows
// added.
func (e *Engine) Create(ctx context.Context, table string, fields Fields) (int64, error) {
	if err := stmt.ValidIdentifier(table); err != nil {
		return 0, err
	}
	fields, err := e.sanitizer.Sanitize(fields)
	if err != nil {
		return 0, err
	}
	var n int64
	err = e.unit(ctx, func(c *conn.Conn, b *stmt.Builder) error {
		plan, err := b.Insert(table, fields)
		if err != nil {
			return err
		}
		n, err = c.Exec(ctx, plan.SQL, plan.Args...)
		return err
	})
	return n, err
}

// Update writes fields to the rows of table whose column equals value and
// returns the number of rows changed.
func (e *Engine) Update(ctx context.Context, table, column, value string, fields Fields) (int64, error) {
	if err := validKey(table, column, value); err != nil {
		return 0, err
	}
	fields, err := e.sanitizer.Sanitize(fields)
	if err != nil {
		return 0, err
	}
	var n int64
	err = e.unit(ctx, func(c *conn.Conn, b *stmt.Builder) error {
		key, err := resolveKey(ctx, c, table, column, value)
		if err != nil {
			return err
		}
		plan, err := b.Update(table, key, fields)
		if err != nil {
			return err
		}
		n, err = c.Exec(ctx, plan.SQL, plan.Args...)
		return err
	})
	return n, err
}

// Delete removes the rows of table whose column equals value and returns the
// number of rows removed.
func (e *Engine) Delete(ctx context.Context, table, column, value string) (int64, error) {
	if err := validKey(table, column, value); err != nil {
		return 0, err
	}
	var n int64
	err := e.unit(ctx, func(c *conn.Conn, b *stmt.Builder) error {
		key, err := resolveKey(ctx, c, table, column, value)
		if err != nil {
			return err
		}
		plan, err := b.Delete(table, key)
		if err != nil {
			return err
		}
		n, err = c.Exec(ctx, plan.SQL, plan.Args...)
		return err
	})
	return n, err
}

// Run executes a caller supplied query with positional "?" arguments and
// returns its rows. The statement is checked against args before any
// connection is opened.
func (e *Engine) Run(ctx context.Context, query string, args []any) ([]Record, error) {
	d, err := e.m.Dialect()
	if err != nil {
		return nil, err
	}
	plan, err := stmt.NewBuilder(d).Freeform(query, args)
	if err != nil {
		return nil, err
	}
	var recs []Record
	err = e.unit(ctx, func(c *conn.Conn, _ *stmt.Builder) error {
		var qerr error
		recs, qerr = c.Query(ctx, plan.SQL, plan.Args...)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Ping opens a handle, checks the database answers and releases it.
func (e *Engine) Ping(ctx context.Context) error {
	return e.unit(ctx, func(c *conn.Conn, _ *stmt.Builder) error {
		return c.Ping(ctx)
	})
}

// unit runs fn with a fresh handle and releases the handle afterwards. A
// failure to release is reported along with any error from fn.
func (e *Engine) unit(ctx context.Context, fn func(*conn.Conn, *stmt.Builder) error) (err error) {
	c, err := e.m.Open(ctx)
	if err != nil {
		log.Errorw("cannot open connection", "provider", e.m.Provider(), "err", err)
		return err
	}
	defer func() {
		if cerr := c.Close(); cerr != nil {
			log.Errorw("cannot close connection", "provider", e.m.Provider(), "err", cerr)
			if err == nil {
				err = cerr
			} else {
				err = multierror.Append(err, cerr)
			}
		}
	}()
	return fn(c, stmt.NewBuilder(c.Dialect()))
}

// validKey checks the parts of a row selector before any connection is
// opened.
func validKey(table, column, value string) error {
	for _, name := range []string{table, column} {
		if err := stmt.ValidIdentifier(name); err != nil {
			return err
		}
	}
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: empty key value for column %q", coerce.ErrInvalidValue, column)
	}
	return nil
}

// resolveKey looks up the declared type of column and coerces value to it.
func resolveKey(ctx context.Context, c *conn.Conn, table, column, value string) (stmt.Key, error) {
	desc, err := schema.Resolve(ctx, c, c.Dialect(), table, column)
	if err != nil {
		return stmt.Key{}, err
	}
	v, err := coerce.Coerce(value, desc.Category)
	if err != nil {
		return stmt.Key{}, err
	}
	return stmt.Key{Column: column, Value: v}, nil
}
