// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package stmt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidIdentifier is returned for a table or column name that cannot
	// be placed in a statement.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrMalformedStatement is returned when a free-form statement does not
	// agree with its arguments or cannot be scanned.
	ErrMalformedStatement = errors.New("malformed statement")
)

const maxIdentifierLen = 128

// reserved holds keywords that are refused as identifiers even though they
// would be quoted. A request naming one of them is almost certainly an
// attempt to smuggle SQL through a path segment.
var reserved = map[string]bool{
	"add": true, "all": true, "alter": true, "and": true, "as": true,
	"begin": true, "between": true, "by": true, "case": true, "commit": true,
	"create": true, "cross": true, "database": true, "declare": true,
	"delete": true, "distinct": true, "drop": true, "else": true, "end": true,
	"exec": true, "execute": true, "exists": true, "from": true, "grant": true,
	"group": true, "having": true, "in": true, "index": true, "inner": true,
	"insert": true, "into": true, "is": true, "join": true, "like": true,
	"limit": true, "merge": true, "not": true, "null": true, "on": true,
	"or": true, "order": true, "pragma": true, "procedure": true,
	"revoke": true, "rollback": true, "select": true, "set": true,
	"table": true, "then": true, "transaction": true, "trigger": true,
	"truncate": true, "union": true, "update": true, "values": true,
	"view": true, "when": true, "where": true, "with": true,
}

// ValidIdentifier checks that name is safe to quote and splice into a
// statement: letters, digits and underscores only, not starting with a digit,
// and not a reserved word.
func ValidIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidIdentifier)
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("%w: name longer than %d characters", ErrInvalidIdentifier, maxIdentifierLen)
	}
	for i, r := range name {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case '0' <= r && r <= '9':
			if i == 0 {
				return fmt.Errorf("%w: %q starts with a digit", ErrInvalidIdentifier, name)
			}
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidIdentifier, name, r)
		}
	}
	if reserved[strings.ToLower(name)] {
		return fmt.Errorf("%w: %q is a reserved word", ErrInvalidIdentifier, name)
	}
	return nil
}
