package transcript

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/lfedgeai/dubbing/pkg/common"
)

var ErrNotUTF8 = errors.New("transcript is not valid UTF-8")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row maps column name to cell value.
type Row map[string]string

// Get returns the cell for col, or def when the column is absent or the cell is empty.
func (r Row) Get(col, def string) string {
	v, ok := r[col]
	if !ok || v == "" {
		return def
	}
	return v
}

// Table is an ordered transcript. It is read-only once decoded.
type Table struct {
	columns []string
	rows    []Row
}

func NewTable(columns []string, rows []Row) *Table {
	return &Table{columns: columns, rows: rows}
}

// ReadCSV decodes a transcript whose first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading transcript: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, ErrNotUTF8
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("error reading transcript: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("error reading transcript header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading transcript row %d: %w", len(rows)+1, err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return &Table{columns: columns, rows: rows}, nil
}

func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

func (t *Table) Rows() []Row {
	return t.rows
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) HasColumn(col string) bool {
	for _, c := range t.columns {
		if c == col {
			return true
		}
	}
	return false
}

// FindTranscriptionColumn returns the first column, in header order, that
// mentions code and ends with common.TranscriptionSuffix.
func (t *Table) FindTranscriptionColumn(code string) string {
	for _, c := range t.columns {
		if strings.Contains(c, code) && strings.HasSuffix(c, common.TranscriptionSuffix) {
			return c
		}
	}
	return ""
}

// FirstValue returns the first non-blank cell of col.
func (t *Table) FirstValue(col string) (string, bool) {
	for _, r := range t.rows {
		if v := r[col]; strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}
