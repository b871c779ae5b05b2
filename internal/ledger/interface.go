// Package ledger persists the local issuance history.
//
// The ledger is the authoritative record of every credential ever issued.
// Entries are never deleted; mutations rewrite the file wholesale through an
// atomic temp-file-and-rename, so a crash can never leave it half-written.
package ledger

import "github.com/dmitrijs2005/votekeeper/internal/models"

// Repository is the persistence boundary for the issuance history.
type Repository interface {
	// Load reads the full history in file order. A missing file yields an
	// empty history, not an error.
	Load() ([]models.LedgerEntry, error)

	// SaveAll atomically replaces the history with entries. Every write
	// failure is propagated to the caller, never swallowed.
	SaveAll(entries []models.LedgerEntry) error
}
