// Package models defines the core data types exchanged between votekeeper
// components: voters, credentials, ledger entries and registry rows.
package models

import "strings"

// Voter is one row of the roster file.
type Voter struct {
	Name  string
	Email string
}

// NormalizeEmail trims surrounding whitespace and lowercases an address.
// Every lookup and every derivation works on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
