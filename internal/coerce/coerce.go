// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package coerce converts untyped text, as it arrives in a URL path, into a
// value of the category a column was declared with.
package coerce

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/canonical/sqlgate/internal/schema"
)

// ErrInvalidValue is returned when text cannot be read as a value of the
// requested category.
var ErrInvalidValue = errors.New("invalid value")

// DateLayout is the only accepted date form.
const DateLayout = "2006-01-02"

// Value is a coerced value tagged with its category. The zero Value is not
// valid.
type Value struct {
	category schema.Category
	v        any
}

// Category returns the category the value was coerced to.
func (v Value) Category() schema.Category {
	return v.category
}

// Interface returns the Go value: int64, float64, bool, string or time.Time.
func (v Value) Interface() any {
	return v.v
}

// IsDate reports whether comparisons against this value should ignore the
// time of day.
func (v Value) IsDate() bool {
	return v.category == schema.Date
}

// Time returns the date of a date value.
func (v Value) Time() (time.Time, bool) {
	t, ok := v.v.(time.Time)
	return t, ok
}

func (v Value) String() string {
	if t, ok := v.Time(); ok {
		return t.Format(DateLayout)
	}
	return fmt.Sprint(v.v)
}

// Coerce parses raw as a value of category c.
func Coerce(raw string, c schema.Category) (Value, error) {
	switch c {
	case schema.Integer:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, invalid(raw, c)
		}
		return Value{c, n}, nil
	case schema.Decimal:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, invalid(raw, c)
		}
		return Value{c, f}, nil
	case schema.Boolean:
		switch strings.ToLower(raw) {
		case "true":
			return Value{c, true}, nil
		case "false":
			return Value{c, false}, nil
		}
		return Value{}, invalid(raw, c)
	case schema.Text:
		return Value{c, raw}, nil
	case schema.Date:
		t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
		if err != nil {
			return Value{}, invalid(raw, c)
		}
		return Value{c, t}, nil
	}
	return Value{}, fmt.Errorf("%w: unknown category %v", ErrInvalidValue, c)
}

func invalid(raw string, c schema.Category) error {
	return fmt.Errorf("%w: %q is not a valid %s", ErrInvalidValue, raw, c)
}
