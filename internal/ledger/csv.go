package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/votekeeper/internal/common"
	"github.com/dmitrijs2005/votekeeper/internal/filex"
	"github.com/dmitrijs2005/votekeeper/internal/models"
)

// utf8BOM prefixes every file we write so spreadsheet tools pick the right
// encoding; it is tolerated (and stripped) on read.
const utf8BOM = "\xef\xbb\xbf"

var header = []string{
	"timestamp", "email", "public_id", "public_key",
	"generation", "active", "delivered", "production",
}

// CSVRepository stores the ledger as a semicolon-delimited, header-first
// CSV file.
type CSVRepository struct {
	path string
}

var _ Repository = (*CSVRepository)(nil)

func NewCSVRepository(path string) *CSVRepository {
	return &CSVRepository{path: path}
}

func (r *CSVRepository) Load() ([]models.LedgerEntry, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse ledger: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	entries := make([]models.LedgerEntry, 0, len(records)-1)
	for i, rec := range records[1:] {
		entry, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: %w", i+2, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *CSVRepository) SaveAll(entries []models.LedgerEntry) error {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(header); err != nil {
		return fmt.Errorf("%w: %w", common.ErrLedgerWrite, err)
	}
	for _, e := range entries {
		if err := w.Write(formatRecord(e)); err != nil {
			return fmt.Errorf("%w: %w", common.ErrLedgerWrite, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrLedgerWrite, err)
	}

	if err := filex.WriteFileAtomic(r.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("%w: %w", common.ErrLedgerWrite, err)
	}
	return nil
}

func parseRecord(rec []string) (models.LedgerEntry, error) {
	if len(rec) < 8 {
		return models.LedgerEntry{}, fmt.Errorf("expected 8 fields, got %d", len(rec))
	}

	ts, err := time.Parse(common.TimestampLayout, rec[0])
	if err != nil {
		return models.LedgerEntry{}, fmt.Errorf("timestamp: %w", err)
	}
	generation, err := strconv.Atoi(rec[4])
	if err != nil {
		return models.LedgerEntry{}, fmt.Errorf("generation: %w", err)
	}
	active, err := strconv.ParseBool(rec[5])
	if err != nil {
		return models.LedgerEntry{}, fmt.Errorf("active: %w", err)
	}
	delivered, err := strconv.ParseBool(rec[6])
	if err != nil {
		return models.LedgerEntry{}, fmt.Errorf("delivered: %w", err)
	}
	production, err := strconv.ParseBool(rec[7])
	if err != nil {
		return models.LedgerEntry{}, fmt.Errorf("production: %w", err)
	}

	return models.LedgerEntry{
		Timestamp:  ts,
		Email:      rec[1],
		PublicID:   rec[2],
		PublicKey:  rec[3],
		Generation: generation,
		Active:     active,
		Delivered:  delivered,
		Production: production,
	}, nil
}

func formatRecord(e models.LedgerEntry) []string {
	return []string{
		e.Timestamp.Format(common.TimestampLayout),
		e.Email,
		e.PublicID,
		e.PublicKey,
		strconv.Itoa(e.Generation),
		strconv.FormatBool(e.Active),
		strconv.FormatBool(e.Delivered),
		strconv.FormatBool(e.Production),
	}
}
