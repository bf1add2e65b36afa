package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Options controls how a tabular file is turned into a data frame.
type Options struct {
	// Delimiter for CSV. If 0, it is chosen from the file extension.
	Delimiter rune
	// MaxRows limits data rows loaded; 0 means unlimited.
	MaxRows int
	// SheetName selects an XLSX sheet by name (case-insensitive).
	SheetName string
	// SheetIndex selects an XLSX sheet by 1-based index when SheetName is empty.
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for dataset loading.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

// ErrNoHeader is returned when a file has no header row at all.
var ErrNoHeader = errors.New("dataset has no header row")

// Load reads a CSV, TSV or XLSX file into a data frame.
func Load(path string, opt Options) (dataframe.DataFrame, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") {
		records, err := readXLSXRecords(path, opt.SheetName, opt.SheetIndex)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		return FromRecords(records, opt)
	}
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	records, err := readCSVRecords(f, delim, opt.MaxRows)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return FromRecords(records, opt)
}

func readCSVRecords(r io.Reader, delim rune, maxRows int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	var records [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if len(records) == 0 {
				return nil, fmt.Errorf("read header: %w", err)
			}
			return nil, fmt.Errorf("read row %d: %w", len(records), err)
		}
		records = append(records, rec)
		// header plus maxRows data rows
		if maxRows > 0 && len(records) > maxRows {
			break
		}
	}
	return records, nil
}

// FromRecords builds a data frame from a header row followed by data rows.
// Short rows are padded with blanks. A header without rows yields a zero-row
// frame whose columns are all strings.
func FromRecords(records [][]string, opt Options) (dataframe.DataFrame, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return dataframe.DataFrame{}, ErrNoHeader
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	rows := records[1:]
	if opt.MaxRows > 0 && len(rows) > opt.MaxRows {
		rows = rows[:opt.MaxRows]
	}
	if len(rows) == 0 {
		cols := make([]series.Series, len(header))
		for i, name := range header {
			cols[i] = series.New([]string{}, series.String, name)
		}
		df := dataframe.New(cols...)
		return df, df.Err
	}

	ncol := len(header)
	normalized := make([][]string, 0, len(rows)+1)
	normalized = append(normalized, header)
	for _, rec := range rows {
		row := make([]string, ncol)
		for j := 0; j < ncol && j < len(rec); j++ {
			row[j] = strings.TrimSpace(rec[j])
		}
		normalized = append(normalized, row)
	}
	df := dataframe.LoadRecords(normalized,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues([]string{"", "NA", "NaN", "<nil>"}),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("load records: %w", df.Err)
	}
	return df, nil
}

// HasColumn reports whether df has a column with the given name.
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	return ','
}
