// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlgate

import (
	"errors"

	"github.com/canonical/sqlgate/internal/coerce"
	"github.com/canonical/sqlgate/internal/conn"
	"github.com/canonical/sqlgate/internal/schema"
	"github.com/canonical/sqlgate/internal/stmt"
)

// Errors returned by Engine operations, to be matched with errors.Is. The
// returned errors wrap them with detail about the failing table, column or
// value; driver errors are wrapped by ErrExecution and remain available to
// errors.As.
var (
	ErrConfiguration      = conn.ErrConfiguration
	ErrConnection         = conn.ErrConnection
	ErrNotOpen            = conn.ErrNotOpen
	ErrExecution          = conn.ErrExecution
	ErrColumnNotFound     = schema.ErrColumnNotFound
	ErrUnsupportedType    = schema.ErrUnsupportedType
	ErrInvalidValue       = coerce.ErrInvalidValue
	ErrMalformedStatement = stmt.ErrMalformedStatement
	ErrInvalidIdentifier  = stmt.ErrInvalidIdentifier
)

// IsClientError reports whether err was caused by the request rather than by
// the database or the configuration.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrColumnNotFound,
		ErrUnsupportedType,
		ErrInvalidValue,
		ErrMalformedStatement,
		ErrInvalidIdentifier,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
