// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package sanitize replaces credential fields with salted hashes before they
// are written to the database.
package sanitize

import (
	"errors"
	"fmt"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/canonical/sqlgate/internal/coerce"
	"github.com/canonical/sqlgate/internal/stmt"
)

var log = logging.Logger("sqlgate/sanitize")

// DefaultFields are the name fragments that mark a field as a credential.
var DefaultFields = []string{"password", "contrasena", "passw"}

// Hasher produces a salted one-way hash of a secret.
type Hasher interface {
	Hash(secret string) (string, error)
}

// Bcrypt hashes with bcrypt at the given cost. A zero cost means
// bcrypt.DefaultCost.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(secret string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: secret longer than 72 bytes", coerce.ErrInvalidValue)
	} else if err != nil {
		return "", err
	}
	return string(h), nil
}

// Sanitizer hashes the values of credential fields.
type Sanitizer struct {
	substrings []string
	hasher     Hasher
}

// New returns a Sanitizer that treats any field whose name contains one of
// substrings, ignoring case, as a credential.
func New(substrings []string, h Hasher) *Sanitizer {
	lower := make([]string, 0, len(substrings))
	for _, s := range substrings {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			lower = append(lower, s)
		}
	}
	return &Sanitizer{substrings: lower, hasher: h}
}

// IsCredential reports whether name marks a credential field.
func (s *Sanitizer) IsCredential(name string) bool {
	name = strings.ToLower(name)
	for _, sub := range s.substrings {
		if strings.Contains(name, sub) {
			return true
		}
	}
	return false
}

// Sanitize returns a copy of fields with every non-empty credential value
// replaced by its hash. Empty strings and nulls are left alone. The input is
// not modified.
func (s *Sanitizer) Sanitize(fields stmt.Fields) (stmt.Fields, error) {
	out := make(stmt.Fields, len(fields))
	copy(out, fields)
	for i, f := range out {
		if !s.IsCredential(f.Name) {
			continue
		}
		secret, ok := scalarText(f.Value)
		if !ok {
			continue
		}
		h, err := s.hasher.Hash(secret)
		if err != nil {
			return nil, fmt.Errorf("cannot hash field %q: %w", f.Name, err)
		}
		out[i].Value = h
		log.Debugw("hashed credential field", "field", f.Name)
	}
	return out, nil
}

func scalarText(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case bool, int64, float64:
		return fmt.Sprint(v), true
	}
	return "", false
}
