package registry

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/votekeeper/internal/models"
)

// parseRows converts raw sheet values into RegistryRow records. The first
// row is the header and rows with fewer than two cells are ignored; Row is
// the 1-based sheet coordinate so patches can address cells directly.
func parseRows(values [][]interface{}) []models.RegistryRow {
	if len(values) < 2 {
		return nil
	}

	rows := make([]models.RegistryRow, 0, len(values)-1)
	for i, raw := range values[1:] {
		if len(raw) < 2 {
			continue
		}
		rows = append(rows, models.RegistryRow{
			Row:           i + 2,
			PublicID:      cellString(raw, 0),
			PublicKey:     cellString(raw, 1),
			Active:        strings.EqualFold(cellString(raw, 2), "TRUE"),
			Production:    strings.EqualFold(cellString(raw, 3), "TRUE"),
			ActivatedAt:   cellString(raw, 4),
			DeactivatedAt: cellString(raw, 5),
		})
	}
	return rows
}

func cellString(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", row[i]))
}

// formatRow renders a RegistryRow in the sheet's column order A:F. Booleans
// are uppercased to match the sheet's checkbox convention.
func formatRow(row models.RegistryRow) []interface{} {
	return []interface{}{
		row.PublicID,
		row.PublicKey,
		sheetBool(row.Active),
		sheetBool(row.Production),
		row.ActivatedAt,
		row.DeactivatedAt,
	}
}

func sheetBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// matchActive selects the rows Invalidate must patch: every active row whose
// public id matches, duplicates included.
func matchActive(rows []models.RegistryRow, publicID string) []models.RegistryRow {
	var out []models.RegistryRow
	for _, r := range rows {
		if r.Active && r.PublicID == publicID {
			out = append(out, r)
		}
	}
	return out
}
