package registry

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/votekeeper/internal/common"
	"github.com/dmitrijs2005/votekeeper/internal/models"
)

// Mock is an in-memory Registry used by orchestrator tests. It follows the
// same at-least-once append and scan-and-patch invalidation semantics as the
// sheet-backed implementation, and records trigger writes.
type Mock struct {
	mu sync.Mutex

	Rows         []models.RegistryRow
	TriggerValue string
	TriggerCalls int

	// Failure injection: when set, the corresponding call returns the error.
	FailList       error
	FailAppend     error
	FailInvalidate error
	FailTrigger    error
}

var _ Registry = (*Mock)(nil)

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) ListAll(ctx context.Context) ([]models.RegistryRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailList != nil {
		return nil, m.FailList
	}
	out := make([]models.RegistryRow, len(m.Rows))
	copy(out, m.Rows)
	return out, nil
}

func (m *Mock) Append(ctx context.Context, row models.RegistryRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAppend != nil {
		return m.FailAppend
	}
	row.Row = len(m.Rows) + 2
	m.Rows = append(m.Rows, row)
	return nil
}

func (m *Mock) Invalidate(ctx context.Context, publicID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailInvalidate != nil {
		return false, m.FailInvalidate
	}

	changed := false
	stamp := time.Now().Format(common.TimestampLayout)
	for i := range m.Rows {
		if m.Rows[i].Active && m.Rows[i].PublicID == publicID {
			m.Rows[i].Active = false
			m.Rows[i].DeactivatedAt = stamp
			changed = true
		}
	}
	return changed, nil
}

func (m *Mock) SetTrigger(ctx context.Context, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailTrigger != nil {
		return m.FailTrigger
	}
	m.TriggerValue = value
	m.TriggerCalls++
	return nil
}

// ActiveRows returns the currently active rows, for assertions.
func (m *Mock) ActiveRows() []models.RegistryRow {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.RegistryRow
	for _, r := range m.Rows {
		if r.Active {
			out = append(out, r)
		}
	}
	return out
}
