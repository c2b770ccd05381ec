/*
Sqlgate runs generic, table-agnostic CRUD against a relational database using only names and values supplied at request time.

The caller never declares a schema. To read the rows of a table whose column equals a value, sqlgate asks the database catalog for the declared type of the column, converts the textual value to that type, builds a parameterized statement and returns the rows as ordered records.
Table and column names are validated and quoted; values are only ever bound as arguments.

# Basics

An [Engine] is built from a [Manager] naming a provider and a connection string:

	m := sqlgate.NewManager("sqlite3", "app.db")
	e := sqlgate.New(m)

	recs, err := e.Lookup(ctx, "usuario", "email", "ana@example.com")

Every operation is a unit of work. It opens its own connection handle, runs one statement and releases the handle before it returns, whatever the outcome.
Nothing is pooled, prepared or cached between operations, so a schema change is visible to the next operation.

# Types

The declared type of a key column is mapped to one of five categories, and the value is converted accordingly:

 1. integer (int, bigint, smallint, tinyint)
    - Base 10, read as int64.

 2. decimal (decimal, numeric, money, smallmoney, float, real)
    - Read as float64.

 3. boolean (bit)
    - Exactly "true" or "false", in any case.

 4. text (nvarchar, varchar, nchar, char, text)
    - Passed through unchanged.

 5. date (date, datetime, datetime2, smalldatetime)
    - YYYY-MM-DD. Rows match on the calendar date whatever the time of day stored.

Length and precision suffixes such as varchar(50) are ignored, as is case.

# Writes

[Engine.Create] and [Engine.Update] take [Fields], an ordered list of column values, so the generated column list follows the order of the request.
Fields whose name contains "password", "contrasena" or "passw" are replaced with a salted bcrypt hash before they are written.
Each write runs in its own transaction and is committed only if it succeeds.

# Free-form queries

[Engine.Run] executes a caller supplied query with positional "?" markers.
The markers are counted outside string literals, quoted identifiers and comments and must match the number of arguments.
They are rewritten into the placeholder style of the database, so "?" works for SQL Server too.
*/
package sqlgate
