// Package id generates and checks the opaque identifiers used for entities,
// ledgers, accounts and transactions.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh random identifier.
func New() string {
	return uuid.NewString()
}

// Normalize parses s as a UUID and returns its canonical lowercase form.
func Normalize(s string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid id %q: %w", s, err)
	}
	return u.String(), nil
}

// Valid reports whether s is a well-formed identifier.
func Valid(s string) bool {
	_, err := Normalize(s)
	return err == nil
}
