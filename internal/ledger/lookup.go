package ledger

import "github.com/dmitrijs2005/votekeeper/internal/models"

// FindActive returns the newest active entry for email, or nil. The returned
// pointer aliases entries so callers can mutate the record in place before a
// SaveAll.
func FindActive(entries []models.LedgerEntry, email string) *models.LedgerEntry {
	email = models.NormalizeEmail(email)
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Active && models.NormalizeEmail(entries[i].Email) == email {
			return &entries[i]
		}
	}
	return nil
}

// FindLatest returns the newest entry for email regardless of state, or nil.
// The returned pointer aliases entries.
func FindLatest(entries []models.LedgerEntry, email string) *models.LedgerEntry {
	email = models.NormalizeEmail(email)
	for i := len(entries) - 1; i >= 0; i-- {
		if models.NormalizeEmail(entries[i].Email) == email {
			return &entries[i]
		}
	}
	return nil
}

// NextGeneration returns 1 plus the highest generation recorded for email,
// starting at 1 for a voter with no history.
func NextGeneration(entries []models.LedgerEntry, email string) int {
	email = models.NormalizeEmail(email)
	max := 0
	for _, e := range entries {
		if models.NormalizeEmail(e.Email) == email && e.Generation > max {
			max = e.Generation
		}
	}
	return max + 1
}
