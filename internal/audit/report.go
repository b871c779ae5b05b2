package audit

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/votekeeper/internal/common"
	"github.com/dmitrijs2005/votekeeper/internal/filex"
)

// FileHash is one line of the integrity report.
type FileHash struct {
	Path string
	// Hash is the lowercase hex SHA-256 of the file, empty when the file
	// was absent at report time.
	Hash string
}

// Report is the result of WriteHashReport: the per-file hashes, the path the
// report was written to, and the hash of the report file itself. Operators
// read the meta hash aloud on record before a production run; it covers the
// whole report, so no individual line can be swapped later.
type Report struct {
	Files    []FileHash
	Path     string
	MetaHash string
}

// WriteHashReport hashes every file in paths, writes the results to a
// timestamped CSV under dir and returns the report together with its meta
// hash. Missing files are recorded with an empty hash rather than failing;
// a report that cannot be written aborts the caller, since continuing with
// an incomplete audit trail defeats its purpose.
func WriteHashReport(dir string, paths []string) (*Report, error) {
	report := &Report{
		Path: filepath.Join(dir, fmt.Sprintf("audit_hashes_%s.csv", now().Format("20060102_150405"))),
	}
	stamp := now().Format(common.TimestampLayout)

	for _, p := range paths {
		h, err := hashFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			report.Files = append(report.Files, FileHash{Path: p})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", p, err)
		}
		report.Files = append(report.Files, FileHash{Path: p, Hash: h})
	}

	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.Write([]string{"timestamp", "file", "hash_sha256"}); err != nil {
		return nil, fmt.Errorf("write hash report: %w", err)
	}
	for _, fh := range report.Files {
		if err := w.Write([]string{stamp, filepath.ToSlash(fh.Path), fh.Hash}); err != nil {
			return nil, fmt.Errorf("write hash report: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write hash report: %w", err)
	}

	if err := filex.EnsureDir(dir); err != nil {
		return nil, err
	}
	if err := filex.WriteFileAtomic(report.Path, buf.Bytes(), 0o600); err != nil {
		return nil, fmt.Errorf("write hash report: %w", err)
	}

	meta, err := hashFile(report.Path)
	if err != nil {
		return nil, fmt.Errorf("meta hash: %w", err)
	}
	report.MetaHash = meta
	return report, nil
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
