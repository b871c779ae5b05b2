package registry

import (
	"testing"

	"github.com/dmitrijs2005/votekeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRows(t *testing.T) {
	values := [][]interface{}{
		{"public_id", "public_key", "active", "production", "activated_at", "deactivated_at"},
		{"123456", "aa11", "TRUE", "FALSE", "01/09/2026 10:00:00", ""},
		{"654321", "bb22", "true", "TRUE", "02/09/2026 10:00:00", "03/09/2026 12:00:00"},
		{"onlyone"},
		{"999999", "cc33", "FALSE"},
	}

	rows := parseRows(values)
	require.Len(t, rows, 3, "header and short rows are skipped")

	assert.Equal(t, models.RegistryRow{
		Row: 2, PublicID: "123456", PublicKey: "aa11",
		Active: true, Production: false,
		ActivatedAt: "01/09/2026 10:00:00",
	}, rows[0])

	assert.True(t, rows[1].Active, "boolean parse is case-insensitive")
	assert.True(t, rows[1].Production)
	assert.Equal(t, 3, rows[1].Row)

	assert.Equal(t, 5, rows[2].Row, "sheet coordinates skip ignored rows")
	assert.False(t, rows[2].Active)
}

func TestParseRows_EmptySheet(t *testing.T) {
	assert.Nil(t, parseRows(nil))
	assert.Nil(t, parseRows([][]interface{}{{"public_id", "public_key"}}), "header only")
}

func TestFormatRow(t *testing.T) {
	row := models.RegistryRow{
		PublicID:    "123456",
		PublicKey:   "aa11",
		Active:      true,
		Production:  false,
		ActivatedAt: "01/09/2026 10:00:00",
	}

	got := formatRow(row)
	require.Len(t, got, 6)
	assert.Equal(t, "123456", got[0])
	assert.Equal(t, "aa11", got[1])
	assert.Equal(t, "TRUE", got[2])
	assert.Equal(t, "FALSE", got[3])
	assert.Equal(t, "01/09/2026 10:00:00", got[4])
	assert.Equal(t, "", got[5])
}

func TestMatchActive_IncludesDuplicates(t *testing.T) {
	rows := []models.RegistryRow{
		{Row: 2, PublicID: "111111", Active: true},
		{Row: 3, PublicID: "111111", Active: true},
		{Row: 4, PublicID: "111111", Active: false},
		{Row: 5, PublicID: "222222", Active: true},
	}

	got := matchActive(rows, "111111")
	require.Len(t, got, 2, "every active duplicate must be selected")
	assert.Equal(t, 2, got[0].Row)
	assert.Equal(t, 3, got[1].Row)

	assert.Empty(t, matchActive(rows, "333333"))
}
