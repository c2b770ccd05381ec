// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package conn

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"

	"github.com/canonical/go-dqlite/client"
	dqlite "github.com/canonical/go-dqlite/driver"
	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"github.com/canonical/sqlgate/internal/dialect"
)

// Provider describes how to reach one kind of database.
type Provider struct {
	// Driver is the database/sql driver name. It is ignored when Connector
	// is set.
	Driver string

	// Dialect is the SQL dialect spoken by the database.
	Dialect dialect.Dialect

	// DSN turns the configured connection string into the driver's data
	// source name. A nil DSN passes the connection string through.
	DSN func(connString string) (string, error)

	// Connector, if set, builds a connector for drivers that need more
	// than a data source name.
	Connector func(connString string) (driver.Connector, error)
}

func (p Provider) open(connString string) (*sql.DB, error) {
	if p.Connector != nil {
		c, err := p.Connector(connString)
		if err != nil {
			return nil, err
		}
		return sql.OpenDB(c), nil
	}
	dsn := connString
	if p.DSN != nil {
		var err error
		if dsn, err = p.DSN(connString); err != nil {
			return nil, err
		}
	}
	return sql.Open(p.Driver, dsn)
}

var (
	providersMu sync.RWMutex
	providers   = map[string]Provider{}
)

// Register makes a provider available by name. Names are case insensitive.
// Registering a name twice replaces the earlier provider.
func Register(name string, p Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[strings.ToLower(name)] = p
}

// Providers returns the registered provider names.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}

func lookupProvider(name string) (Provider, bool) {
	providersMu.RLock()
	defer providersMu.RUnlock()
	p, ok := providers[strings.ToLower(name)]
	return p, ok
}

func init() {
	Register("sqlite3", Provider{Driver: "sqlite3", Dialect: dialect.SQLite})
	Register("sqlite", Provider{Driver: "sqlite", Dialect: dialect.SQLite})
	Register("duckdb", Provider{Driver: "duckdb", Dialect: dialect.DuckDB})
	Register("dqlite", Provider{Dialect: dialect.SQLite, Connector: dqliteConnector})
	Register("sqlserver", Provider{Driver: "sqlserver", Dialect: dialect.SQLServer})
	Register("localdb", Provider{Driver: "sqlserver", Dialect: dialect.SQLServer})
}

// dqliteConnector reads a connection string of the form
// "host1:port,host2:port/database" and returns a connector to that database
// on the cluster.
func dqliteConnector(connString string) (driver.Connector, error) {
	addrs, database, ok := strings.Cut(connString, "/")
	if !ok || database == "" {
		return nil, fmt.Errorf("dqlite connection string %q has no database name", connString)
	}

	var nodes []client.NodeInfo
	for _, addr := range strings.Split(addrs, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			nodes = append(nodes, client.NodeInfo{Address: addr})
		}
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("dqlite connection string %q has no node address", connString)
	}

	store := client.NewInmemNodeStore()
	if err := store.Set(context.Background(), nodes); err != nil {
		return nil, err
	}
	drv, err := dqlite.New(store, dqlite.WithLogFunc(dqliteLog))
	if err != nil {
		return nil, err
	}
	return dsnConnector{driver: drv, dsn: database}, nil
}

func dqliteLog(l client.LogLevel, format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	switch l {
	case client.LogDebug:
		log.Debug(msg)
	case client.LogInfo:
		log.Info(msg)
	case client.LogWarn:
		log.Warn(msg)
	default:
		log.Error(msg)
	}
}

// dsnConnector binds a driver to a fixed data source name.
type dsnConnector struct {
	driver driver.Driver
	dsn    string
}

func (c dsnConnector) Connect(context.Context) (driver.Conn, error) {
	return c.driver.Open(c.dsn)
}

func (c dsnConnector) Driver() driver.Driver {
	return c.driver
}
