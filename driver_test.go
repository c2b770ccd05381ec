// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlgate_test

import (
	"database/sql"
	"database/sql/driver"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"

	"github.com/canonical/sqlgate/internal/conn"
	"github.com/canonical/sqlgate/internal/dialect"
)

// This file contains a wrapper sql.Driver over the SQLite driver which counts
// the driver connections opened and closed. The counts are indexed by test
// name so the tests can check that every unit of work releases its handle.

var openedConns = map[string]int{}
var closedConns = map[string]int{}
var connCountMutex sync.RWMutex

type trackingDriver struct {
	driver.Driver
}

type trackingConn struct {
	testName string
	*sqlite3.SQLiteConn
}

func (c *trackingConn) Close() error {
	connCountMutex.Lock()
	closedConns[c.testName]++
	connCountMutex.Unlock()
	return c.SQLiteConn.Close()
}

const testNameTag = "testName"

// Open expects the DSN to contain the test name using the testNameTag
// attribute.
func (d *trackingDriver) Open(name string) (driver.Conn, error) {
	var testName string
	if _, params, ok := strings.Cut(name, "?"); ok {
		for _, p := range strings.Split(params, "&") {
			if k, v, _ := strings.Cut(p, "="); k == testNameTag {
				testName = v
			}
		}
	}
	if testName == "" {
		panic("internal error: testName is not found in the db DSN")
	}

	baseConn, err := d.Driver.Open(name)
	if err != nil {
		return nil, err
	}
	sc, ok := baseConn.(*sqlite3.SQLiteConn)
	if !ok {
		panic("internal error: base driver is not SQLite")
	}
	connCountMutex.Lock()
	openedConns[testName]++
	connCountMutex.Unlock()
	return &trackingConn{SQLiteConn: sc, testName: testName}, nil
}

// connCounts returns how many driver connections were opened and closed for
// the named test.
func connCounts(testName string) (opened, closed int) {
	connCountMutex.RLock()
	defer connCountMutex.RUnlock()
	return openedConns[testName], closedConns[testName]
}

func init() {
	sql.Register("sqlite3_tracked", &trackingDriver{
		&sqlite3.SQLiteDriver{},
	})
	conn.Register("tracked", conn.Provider{Driver: "sqlite3_tracked", Dialect: dialect.SQLite})
}
