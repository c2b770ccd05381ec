// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package conn

import "database/sql/driver"

func DqliteConnector(connString string) (driver.Connector, error) {
	return dqliteConnector(connString)
}

func ConnectorDSN(c driver.Connector) string {
	return c.(dsnConnector).dsn
}
