package models

import "time"

// LedgerEntry is one issuance record in the local ledger file.
//
// Generation counts a voter's successive credentials starting at 1. At most
// one entry per email may be active at a time; an entry with Delivered=false
// is a pending marker used for crash recovery. Entries are never deleted.
type LedgerEntry struct {
	Timestamp  time.Time
	Email      string
	PublicID   string
	PublicKey  string
	Generation int
	Active     bool
	Delivered  bool
	Production bool
}

// RegistryRow is one row of the remote key registry.
//
// Row is the 1-based sheet row the values were read from; it is zero on rows
// that were never fetched. ActivatedAt and DeactivatedAt are kept as the raw
// cell text since the sheet is written by more than one tool.
type RegistryRow struct {
	Row           int
	PublicID      string
	PublicKey     string
	Active        bool
	Production    bool
	ActivatedAt   string
	DeactivatedAt string
}
