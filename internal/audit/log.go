// Package audit keeps the append-only trail of every significant issuance
// event and produces the integrity hash report operators publish before a
// run. Losing audit visibility is itself a security-relevant failure, so
// unlike most of the codebase a write error here is fatal.
package audit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/votekeeper/internal/common"
	"github.com/dmitrijs2005/votekeeper/internal/filex"
)

// Level classifies an audit entry. Fatal marks events that abort the run.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
	LevelFatal Level = "FATAL"
)

const utf8BOM = "\xef\xbb\xbf"

var logHeader = []string{"timestamp", "production", "level", "email", "user_id", "message"}

// now is a test seam for the entry timestamp.
var now = time.Now

// Log appends entries to a semicolon-delimited CSV file, creating it with a
// header on first use. The file is shared with external audit tooling and is
// never rewritten, only appended to.
type Log struct {
	path       string
	production bool
}

func NewLog(path string, production bool) *Log {
	return &Log{path: path, production: production}
}

// Append records one event. Every failure wraps common.ErrAuditWrite and
// must be treated as fatal by the caller.
func (l *Log) Append(level Level, email, userID, message string) error {
	if err := filex.EnsureDir(filepath.Dir(l.path)); err != nil {
		return fmt.Errorf("%w: %w", common.ErrAuditWrite, err)
	}

	var buf bytes.Buffer

	_, statErr := os.Stat(l.path)
	fresh := os.IsNotExist(statErr)
	if fresh {
		buf.WriteString(utf8BOM)
	}

	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if fresh {
		if err := w.Write(logHeader); err != nil {
			return fmt.Errorf("%w: %w", common.ErrAuditWrite, err)
		}
	}
	record := []string{
		now().Format(common.TimestampLayout),
		strconv.FormatBool(l.production),
		string(level),
		email,
		userID,
		// The delimiter may not appear inside a field of an append-only
		// file that is never re-quoted by external tooling.
		strings.ReplaceAll(message, ";", ","),
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("%w: %w", common.ErrAuditWrite, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrAuditWrite, err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrAuditWrite, err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", common.ErrAuditWrite, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrAuditWrite, err)
	}
	return nil
}
