// Package roster loads and validates the voter roster file.
//
// A roster is a header-first tabular file with at least name and email
// columns. Any malformed address rejects the whole file before a single
// issuance starts; partial rosters are never processed.
package roster

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/votekeeper/internal/common"
	"github.com/dmitrijs2005/votekeeper/internal/models"
	"golang.org/x/text/encoding/charmap"
)

const utf8BOM = "\xef\xbb\xbf"

// emailShape is the conservative address check applied to every row:
// local@domain.tld with word characters, dots and dashes only.
var emailShape = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)

// Load reads the roster at path. The delimiter is sniffed from the header
// line (semicolon or comma), the encoding is UTF-8 with a tolerated BOM and
// a Windows-1252 fallback for legacy spreadsheet exports. Rows with fewer
// than two fields are skipped; the first row is always treated as a header.
func Load(path string) ([]models.Voter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	text, err := decode(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: file is empty", common.ErrInvalidRoster)
	}

	var voters []models.Voter
	var badRows []string
	for i, rec := range records[1:] {
		if len(rec) < 2 {
			continue
		}
		voter := models.Voter{
			Name:  strings.TrimSpace(rec[0]),
			Email: models.NormalizeEmail(rec[1]),
		}
		if !ValidEmail(voter.Email) {
			badRows = append(badRows, fmt.Sprintf("row %d (%q)", i+2, rec[1]))
			continue
		}
		voters = append(voters, voter)
	}

	if len(badRows) > 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidRoster, strings.Join(badRows, ", "))
	}
	return voters, nil
}

// ValidEmail reports whether email passes the conservative shape check:
// non-empty, no trailing dot, local@domain.tld.
func ValidEmail(email string) bool {
	if email == "" || strings.HasSuffix(email, ".") {
		return false
	}
	return emailShape.MatchString(email)
}

func decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, []byte(utf8BOM))
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	return decoded, nil
}

func sniffDelimiter(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	if bytes.ContainsRune(line, ';') {
		return ';'
	}
	return ','
}
