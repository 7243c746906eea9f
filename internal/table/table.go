// Package table reads observation tables from delimited text files.
//
// A table has a header row naming its columns followed by one row per
// observation. Cells are kept as text and parsed into numbers the first
// time a column is requested, so unused columns may hold anything.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	apperrors "github.com/agbru/gsfit/internal/errors"
)

// Missing-value markers read as NaN, matching common spreadsheet exports.
var naValues = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "NaN": {}, "nan": {}, "null": {}, "NULL": {},
}

// Table is an immutable observation table. It is safe for concurrent use.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]string

	mu     sync.Mutex
	parsed map[string][]float64
}

// Options tune how delimited text is read.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// Comment, if not zero, marks lines to skip.
	Comment rune
}

// Load reads the table stored at path.
func Load(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to open observation table")
	}
	defer f.Close()

	t, err := Read(f, opts)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to read %s", path)
	}
	return t, nil
}

// Read parses a table from r. The first record is the header.
func Read(r io.Reader, opts Options) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = false
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.Comment = opts.Comment

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.ValidationError{Field: "header", Message: "input is empty"}
	}
	if err != nil {
		return nil, apperrors.ValidationError{Field: "header", Message: err.Error()}
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := newTable(header)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.ValidationError{Field: "rows", Message: err.Error()}
		}
		t.rows = append(t.rows, record)
	}
	return t, nil
}

// New builds a table from in-memory columns, which must all have the same
// length. Columns are ordered by name.
func New(cols map[string][]float64) (*Table, error) {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	n := -1
	for _, name := range names {
		if n >= 0 && len(cols[name]) != n {
			return nil, apperrors.ValidationError{
				Field:   name,
				Message: fmt.Sprintf("has %d values, want %d", len(cols[name]), n),
			}
		}
		n = len(cols[name])
	}

	t := newTable(names)
	for i := 0; i < max(n, 0); i++ {
		row := make([]string, len(names))
		for j, name := range names {
			row[j] = strconv.FormatFloat(cols[name][i], 'g', -1, 64)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// MustNew is like New but panics on error. It is intended for tests.
func MustNew(cols map[string][]float64) *Table {
	t, err := New(cols)
	if err != nil {
		panic(err)
	}
	return t
}

func newTable(header []string) *Table {
	t := &Table{
		header: make([]string, len(header)),
		index:  make(map[string]int, len(header)),
		parsed: make(map[string][]float64),
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		t.header[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	return t
}

// Len returns the number of observations.
func (t *Table) Len() int { return len(t.rows) }

// Header returns the column names in file order.
func (t *Table) Header() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// Column returns the named column parsed as float64. Missing-value markers
// become NaN. The returned slice is shared and must not be modified.
func (t *Table) Column(name string) ([]float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if values, ok := t.parsed[name]; ok {
		return values, nil
	}
	j, ok := t.index[name]
	if !ok {
		return nil, apperrors.ColumnError{Column: name}
	}

	values := make([]float64, len(t.rows))
	for i, row := range t.rows {
		v, err := parseCell(row[j])
		if err != nil {
			return nil, apperrors.ValidationError{
				Field:   name,
				Message: fmt.Sprintf("row %d: cannot parse %q as a number", i+1, row[j]),
			}
		}
		values[i] = v
	}
	t.parsed[name] = values
	return values, nil
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if _, na := naValues[cell]; na {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}
