// Package table wraps a gota DataFrame with the small set of operations the
// football datasets need: CSV loading, date cleaning and string access to
// columns and rows. Every column is kept as text; type coercion happens when
// rows are decoded into models.
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrMissingColumn is returned when an operation names a column the table does not have.
var ErrMissingColumn = errors.New("missing column")

// missingValues are the cell contents treated as absent, mirroring the
// defaults of common CSV readers.
var missingValues = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"#N/A": {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
}

// Table is an immutable tabular dataset with named string columns.
type Table struct {
	df dataframe.DataFrame
}

// Read parses CSV content with a header line. A header without data rows
// yields an empty table with those columns.
func Read(r io.Reader) (*Table, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	df := dataframe.ReadCSV(bytes.NewReader(content),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		if header, ok := headerOnly(content); ok {
			return fromColumns(header, make([][]string, len(header)))
		}
		return nil, fmt.Errorf("failed to parse csv: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// headerOnly returns the header of CSV content that has no data rows.
func headerOnly(content []byte) ([]string, bool) {
	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	if err != nil || len(records) != 1 {
		return nil, false
	}
	return records[0], true
}

// FromRecords builds a table from a header row followed by data rows.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}
	header := records[0]
	cols := make([][]string, len(header))
	for i := range cols {
		cols[i] = make([]string, 0, len(records)-1)
	}
	for n, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", n+1, len(rec), len(header))
		}
		for i, v := range rec {
			cols[i] = append(cols[i], v)
		}
	}
	return fromColumns(header, cols)
}

func fromColumns(names []string, cols [][]string) (*Table, error) {
	ss := make([]series.Series, len(names))
	for i, name := range names {
		ss[i] = series.New(cols[i], series.String, name)
	}
	df := dataframe.New(ss...)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to build table: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// Nrow returns the number of data rows.
func (t *Table) Nrow() int { return t.df.Nrow() }

// Names returns the column names in file order.
func (t *Table) Names() []string { return t.df.Names() }

// HasColumn reports whether the table has a column called name.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.df.Names(), name)
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]string, error) {
	if !t.HasColumn(name) {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	return t.df.Col(name).Records(), nil
}

// Records returns the data rows without the header.
func (t *Table) Records() [][]string {
	recs := t.df.Records()
	if len(recs) == 0 {
		return nil
	}
	return recs[1:]
}

// Rows returns the data rows with access by column name.
func (t *Table) Rows() []Row {
	index := make(map[string]int, t.df.Ncol())
	for i, name := range t.df.Names() {
		index[name] = i
	}
	recs := t.Records()
	rows := make([]Row, len(recs))
	for i, rec := range recs {
		rows[i] = Row{index: index, values: rec}
	}
	return rows
}

// Row is a single data row.
type Row struct {
	index  map[string]int
	values []string
}

// Get returns the value of the named column, or "" if the column does not exist.
func (r Row) Get(name string) string {
	i, ok := r.index[name]
	if !ok {
		return ""
	}
	return r.values[i]
}

// IsMissing reports whether a cell value counts as absent.
func IsMissing(v string) bool {
	_, ok := missingValues[v]
	return ok
}

// Clean returns a copy of the table where every dateColumns value has been
// parsed with layout and rewritten in canonical form. Rows whose date does
// not parse, and rows holding a missing value in any column, are dropped.
// Applying Clean to its own output returns an equal table.
func (t *Table) Clean(layout string, dateColumns ...string) (*Table, error) {
	names := t.df.Names()
	dateIdx := make(map[int]bool, len(dateColumns))
	for _, c := range dateColumns {
		i := slices.Index(names, c)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
		dateIdx[i] = true
	}

	cols := make([][]string, len(names))
	for i := range cols {
		cols[i] = make([]string, 0, t.df.Nrow())
	}

	out := make([]string, len(names))
rows:
	for _, rec := range t.Records() {
		for i, v := range rec {
			if IsMissing(v) {
				continue rows
			}
			if dateIdx[i] {
				d, err := time.Parse(layout, v)
				if err != nil {
					continue rows
				}
				v = d.Format(layout)
			}
			out[i] = v
		}
		for i, v := range out {
			cols[i] = append(cols[i], v)
		}
	}
	return fromColumns(names, cols)
}
