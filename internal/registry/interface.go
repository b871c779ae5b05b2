// Package registry tracks active credentials in the shared key registry.
//
// The registry is a remote sheet read by the tally process. Appends are
// at-least-once: a retried append may duplicate a row, which is why
// invalidation scans and patches every matching row instead of assuming
// single-row uniqueness.
package registry

import (
	"context"

	"github.com/dmitrijs2005/votekeeper/internal/models"
)

// Registry is the client boundary for the remote key registry.
type Registry interface {
	// ListAll returns every data row of the registry sheet.
	ListAll(ctx context.Context) ([]models.RegistryRow, error)

	// Append inserts one row at the end of the sheet.
	Append(ctx context.Context, row models.RegistryRow) error

	// Invalidate deactivates every active row matching publicID and stamps
	// the deactivation time. Already-inactive rows are skipped. Reports
	// true iff at least one row was changed.
	Invalidate(ctx context.Context, publicID string) (bool, error)

	// SetTrigger writes the one-shot trigger cell that signals the
	// downstream tally process. Called at most once per run, after all
	// voters have been processed.
	SetTrigger(ctx context.Context, value string) error
}
