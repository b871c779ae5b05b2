// Package common defines shared constants and sentinel errors used across
// votekeeper components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Startup / configuration errors. Fatal before any issuance begins.
	ErrMissingMasterKey = errors.New("master key is not set")
	ErrMissingSalt      = errors.New("election salt is not set")

	// Roster validation: a single bad row rejects the whole file.
	ErrInvalidRoster = errors.New("invalid roster")

	// Local persistence errors.
	ErrLedgerWrite = errors.New("ledger write failed")
	ErrAuditWrite  = errors.New("audit log write failed")

	// Delivery errors. ErrAuthFailed aborts the whole run; ErrDeliveryFailed
	// skips the voter after retries are exhausted.
	ErrDeliveryFailed = errors.New("delivery failed")
	ErrAuthFailed     = errors.New("smtp authentication failed")

	// Remote registry errors.
	ErrRegistryUnavailable = errors.New("registry unavailable")
)
