// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package conn opens one database handle per unit of work.
//
// A Manager only holds configuration and may be shared freely. Each call to
// Open creates a fresh handle owned by the caller, which must Close it on
// every exit path. Handles are never pooled or reused between units of work.
package conn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	perrors "github.com/pkg/errors"

	"github.com/canonical/sqlgate/internal/dialect"
	"github.com/canonical/sqlgate/internal/record"
)

var log = logging.Logger("sqlgate/conn")

var (
	// ErrConfiguration is returned when the provider or the connection
	// string is missing or unknown.
	ErrConfiguration = errors.New("invalid connection configuration")

	// ErrConnection is returned when the database cannot be reached or a
	// handle cannot be released.
	ErrConnection = errors.New("connection failed")

	// ErrNotOpen is returned when a closed handle is used.
	ErrNotOpen = errors.New("connection is not open")

	// ErrExecution is returned when the database rejects a statement.
	ErrExecution = errors.New("statement failed")
)

// Manager opens handles to one database.
type Manager struct {
	provider   string
	connString string
}

// NewManager returns a Manager for the named provider. Nothing is checked or
// opened until Open is called.
func NewManager(provider, connString string) *Manager {
	return &Manager{
		provider:   strings.TrimSpace(provider),
		connString: strings.TrimSpace(connString),
	}
}

// Provider returns the configured provider name.
func (m *Manager) Provider() string {
	return m.provider
}

// Dialect returns the SQL dialect of the configured provider.
func (m *Manager) Dialect() (dialect.Dialect, error) {
	p, err := m.lookup()
	if err != nil {
		return nil, err
	}
	return p.Dialect, nil
}

func (m *Manager) lookup() (Provider, error) {
	if m.provider == "" {
		return Provider{}, fmt.Errorf("%w: no database provider", ErrConfiguration)
	}
	if m.connString == "" {
		return Provider{}, fmt.Errorf("%w: no connection string for provider %q", ErrConfiguration, m.provider)
	}
	p, ok := lookupProvider(m.provider)
	if !ok {
		return Provider{}, fmt.Errorf("%w: unknown provider %q", ErrConfiguration, m.provider)
	}
	return p, nil
}

// Open returns a new handle. The caller owns it and must close it.
func (m *Manager) Open(ctx context.Context) (*Conn, error) {
	p, err := m.lookup()
	if err != nil {
		return nil, err
	}

	db, err := p.open(m.connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrConnection, m.provider, err)
	}
	// A handle is exactly one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	sc, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %s: %s", ErrConnection, m.provider, err)
	}

	connectionsOpened.Inc()
	log.Debugw("opened connection", "provider", m.provider)
	return &Conn{db: db, conn: sc, provider: m.provider, dialect: p.Dialect}, nil
}

// Conn is a handle to a single database connection. It is owned by one unit
// of work and is not safe for concurrent use.
type Conn struct {
	db       *sql.DB
	conn     *sql.Conn
	provider string
	dialect  dialect.Dialect
	closed   bool
}

// Dialect returns the SQL dialect spoken over the handle.
func (c *Conn) Dialect() dialect.Dialect {
	return c.dialect
}

// Exec runs a statement that returns no rows inside its own transaction and
// returns the number of affected rows. The transaction is committed only if
// the statement succeeds.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) (n int64, err error) {
	if c.closed {
		return 0, ErrNotOpen
	}
	defer func() { countStatement("exec", err) }()

	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, executionError(err, "cannot begin transaction")
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		_ = tx.Rollback()
		return 0, executionError(err, "cannot execute statement")
	}
	n, err = res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, executionError(err, "cannot read affected rows")
	}
	if err := tx.Commit(); err != nil {
		return 0, executionError(err, "cannot commit")
	}
	log.Debugw("executed statement", "provider", c.provider, "args", len(args), "affected", n)
	return n, nil
}

// Query runs a statement and returns all of its rows. A statement matching
// nothing returns an empty slice.
func (c *Conn) Query(ctx context.Context, query string, args ...any) (recs []record.Record, err error) {
	if c.closed {
		return nil, ErrNotOpen
	}
	defer func() { countStatement("query", err) }()

	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, executionError(err, "cannot run query")
	}
	defer rows.Close()

	recs, err = record.Scan(rows)
	if err != nil {
		return nil, executionError(err, "cannot read rows")
	}
	log.Debugw("ran query", "provider", c.provider, "args", len(args), "rows", len(recs))
	return recs, nil
}

// Ping checks that the database is still reachable over the handle.
func (c *Conn) Ping(ctx context.Context) error {
	if c.closed {
		return ErrNotOpen
	}
	if err := c.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrConnection, c.provider, err)
	}
	return nil
}

// Close releases the handle. Closing a closed handle does nothing.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	connectionsClosed.Inc()

	cerr := c.conn.Close()
	derr := c.db.Close()
	if cerr == nil {
		cerr = derr
	}
	if cerr != nil {
		return fmt.Errorf("%w: cannot close: %s", ErrConnection, cerr)
	}
	log.Debugw("closed connection", "provider", c.provider)
	return nil
}

// executionError keeps the driver error available to errors.As while
// classifying it as ErrExecution.
func executionError(err error, msg string) error {
	return &execError{cause: perrors.Wrap(err, msg)}
}

type execError struct {
	cause error
}

func (e *execError) Error() string {
	return ErrExecution.Error() + ": " + e.cause.Error()
}

func (e *execError) Is(target error) bool {
	return target == ErrExecution
}

func (e *execError) Unwrap() error {
	return e.cause
}
