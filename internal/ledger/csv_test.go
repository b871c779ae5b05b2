package ledger

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/votekeeper/internal/common"
	"github.com/dmitrijs2005/votekeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntries() []models.LedgerEntry {
	return []models.LedgerEntry{
		{
			Timestamp:  time.Date(2026, 9, 12, 10, 30, 0, 0, time.UTC),
			Email:      "ana@example.org",
			PublicID:   "123456",
			PublicKey:  "aa11bb22",
			Generation: 1,
			Active:     false,
			Delivered:  true,
			Production: false,
		},
		{
			Timestamp:  time.Date(2026, 9, 13, 9, 0, 5, 0, time.UTC),
			Email:      "ana@example.org",
			PublicID:   "654321",
			PublicKey:  "cc33dd44",
			Generation: 2,
			Active:     true,
			Delivered:  true,
			Production: true,
		},
	}
}

func TestCSVRepository_Load_MissingFileYieldsEmptyHistory(t *testing.T) {
	repo := NewCSVRepository(filepath.Join(t.TempDir(), "ledger.csv"))

	entries, err := repo.Load()
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestCSVRepository_SaveAllThenLoad_RoundTrip(t *testing.T) {
	repo := NewCSVRepository(filepath.Join(t.TempDir(), "ledger.csv"))

	want := testEntries()
	require.NoError(t, repo.SaveAll(want))

	got, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestCSVRepository_SaveAll_FileShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	repo := NewCSVRepository(path)

	require.NoError(t, repo.SaveAll(testEntries()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(raw)
	assert.True(t, strings.HasPrefix(content, utf8BOM), "file must carry a UTF-8 BOM")

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(content, utf8BOM)), "\n")
	require.Len(t, lines, 3, "header plus two rows")
	assert.Equal(t, "timestamp;email;public_id;public_key;generation;active;delivered;production", lines[0])
	assert.Contains(t, lines[1], "12/09/2026 10:30:00;ana@example.org;123456")
}

func TestCSVRepository_Load_ToleratesBOMAndCaseInsensitiveBooleans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	content := utf8BOM +
		"timestamp;email;public_id;public_key;generation;active;delivered;production\n" +
		"01/02/2026 08:00:00;ana@example.org;100001;abc;1;TRUE;False;0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	entries, err := NewCSVRepository(path).Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "100001", e.PublicID)
	assert.True(t, e.Active)
	assert.False(t, e.Delivered)
	assert.False(t, e.Production)
	assert.Equal(t, time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC), e.Timestamp)
}

func TestCSVRepository_Load_RejectsMalformedRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"short row", "01/02/2026 08:00:00;ana@example.org;100001\n"},
		{"bad timestamp", "2026-02-01;ana@example.org;100001;abc;1;true;true;false\n"},
		{"bad generation", "01/02/2026 08:00:00;ana@example.org;100001;abc;one;true;true;false\n"},
		{"bad boolean", "01/02/2026 08:00:00;ana@example.org;100001;abc;1;yes;true;false\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ledger.csv")
			content := "timestamp;email;public_id;public_key;generation;active;delivered;production\n" + tc.row
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			_, err := NewCSVRepository(path).Load()
			require.Error(t, err)
		})
	}
}

func TestCSVRepository_SaveAll_PropagatesWriteFailures(t *testing.T) {
	repo := NewCSVRepository(filepath.Join(t.TempDir(), "missing", "ledger.csv"))

	err := repo.SaveAll(testEntries())
	require.Error(t, err)
	require.ErrorIs(t, err, common.ErrLedgerWrite)
}

func TestCSVRepository_SaveAll_FailedWriteLeavesPriorLedgerIntact(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced here")
	}
	dir := t.TempDir()
	repo := NewCSVRepository(filepath.Join(dir, "ledger.csv"))

	want := testEntries()
	require.NoError(t, repo.SaveAll(want))

	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	err := repo.SaveAll(want[:1])
	require.ErrorIs(t, err, common.ErrLedgerWrite)

	require.NoError(t, os.Chmod(dir, 0o755))
	got, loadErr := repo.Load()
	require.NoError(t, loadErr, "prior ledger must stay readable after a failed rewrite")
	require.Equal(t, want, got, "prior ledger must be unchanged after a failed rewrite")
}

func TestCSVRepository_SaveAll_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	repo := NewCSVRepository(filepath.Join(dir, "ledger.csv"))

	require.NoError(t, repo.SaveAll(testEntries()))
	require.NoError(t, repo.SaveAll(testEntries()[:1]))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1, "only the canonical ledger file should remain")

	entries, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1, "second SaveAll must fully replace the first")
}
