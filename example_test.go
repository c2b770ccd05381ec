// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlgate_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/canonical/sqlgate"
)

func Example() {
	dir, err := os.MkdirTemp("", "sqlgate-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "example.db")

	sqldb, err := sql.Open("sqlite3", path)
	if err != nil {
		panic(err)
	}
	_, err = sqldb.Exec(`
	CREATE TABLE empleado (
		id integer,
		nombre varchar(50),
		equipo text,
		alta datetime
	)`)
	sqldb.Close()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	e := sqlgate.New(sqlgate.NewManager("sqlite3", path))

	var people = []sqlgate.Fields{
		{{Name: "id", Value: int64(1)}, {Name: "nombre", Value: "Alastair"}, {Name: "equipo", Value: "engineering"}, {Name: "alta", Value: "2023-04-01 09:00:00"}},
		{{Name: "id", Value: int64(2)}, {Name: "nombre", Value: "Ed"}, {Name: "equipo", Value: "engineering"}, {Name: "alta", Value: "2023-04-01 17:30:00"}},
		{{Name: "id", Value: int64(3)}, {Name: "nombre", Value: "Pedro"}, {Name: "equipo", Value: "management"}, {Name: "alta", Value: "2024-01-15 10:00:00"}},
	}
	for _, p := range people {
		if _, err := e.Create(ctx, "empleado", p); err != nil {
			panic(err)
		}
	}

	// The value is coerced to the declared type of the column. Dates match
	// whatever the time of day.
	recs, err := e.Lookup(ctx, "empleado", "alta", "2023-04-01")
	if err != nil {
		panic(err)
	}
	for _, r := range recs {
		nombre, _ := r.Get("nombre")
		fmt.Println(nombre)
	}

	n, err := e.Update(ctx, "empleado", "id", "3", sqlgate.Fields{{Name: "equipo", Value: "leadership"}})
	if err != nil {
		panic(err)
	}
	fmt.Println("updated", n)

	recs, err = e.Run(ctx, "SELECT nombre, equipo FROM empleado WHERE equipo <> ? ORDER BY id", []any{"engineering"})
	if err != nil {
		panic(err)
	}
	b, err := json.Marshal(recs)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(b))

	// Output:
	// Alastair
	// Ed
	// updated 1
	// [{"nombre":"Pedro","equipo":"leadership"}]
}
