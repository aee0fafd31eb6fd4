package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/finlens/backend/internal/logger"
)

// Loader discovers statement CSV files in a directory and decodes them
// into raw batches. Card exports are loaded first so the simpler shape
// anchors the combined dataset when both kinds are present.
type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads every *.csv file under the data directory. A file that
// fails to decode is logged and skipped; only an unreadable directory
// fails the call.
func (l *Loader) Load() ([]RawBatch, error) {
	paths, err := filepath.Glob(filepath.Join(l.dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", l.dir, err)
	}
	if len(paths) == 0 {
		if _, statErr := os.Stat(l.dir); statErr != nil {
			return nil, fmt.Errorf("data directory %s: %w", l.dir, statErr)
		}
		return nil, nil
	}

	// Card exports first, then the rest, each group alphabetical.
	sort.Slice(paths, func(i, j int) bool {
		ci, cj := isCardExport(paths[i]), isCardExport(paths[j])
		if ci != cj {
			return ci
		}
		return paths[i] < paths[j]
	})

	var batches []RawBatch
	for _, path := range paths {
		batch, err := l.loadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable statement file",
				"file", filepath.Base(path), "error", err)
			continue
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// isCardExport recognizes card statement exports by filename convention.
func isCardExport(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	return strings.HasPrefix(name, "nubank") || strings.Contains(name, "card")
}

func (l *Loader) loadFile(path string) (RawBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RawBatch{}, err
	}

	// Some bank exports ship as Latin-1. Transcode byte-wise when the
	// content is not valid UTF-8.
	if !utf8.Valid(data) {
		data = latin1ToUTF8(data)
	}

	text := strings.TrimPrefix(string(data), "\ufeff")
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return RawBatch{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return RawBatch{}, fmt.Errorf("%s is empty", filepath.Base(path))
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlankRow(rec) {
			continue
		}
		rows = append(rows, rec)
	}

	return RawBatch{
		Source: filepath.Base(path),
		Header: records[0],
		Rows:   rows,
	}, nil
}

// sniffDelimiter picks semicolon when the header row contains more of
// them than commas, which covers the common Brazilian export dialect.
func sniffDelimiter(text string) rune {
	firstLine := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		firstLine = text[:i]
	}
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		return ';'
	}
	return ','
}

func isBlankRow(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func latin1ToUTF8(data []byte) []byte {
	out := make([]byte, 0, len(data)*2)
	for _, b := range data {
		out = utf8.AppendRune(out, rune(b))
	}
	return out
}
