package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const skuColumn = "sku"

var (
	ErrEmptyFile        = errors.New("csv file is empty")
	ErrMissingSKUColumn = errors.New(`missing required "sku" column`)
)

// RawRow is one CSV record keyed by normalized header name. Columns missing
// from a short record are absent from Fields.
type RawRow struct {
	Line   int
	Fields map[string]string
}

// Get returns the raw value of column and whether the record carried it.
func (r RawRow) Get(column string) (string, bool) {
	v, ok := r.Fields[column]
	return v, ok
}

// RowReader streams RawRows from a CSV document with a header line.
type RowReader struct {
	csv     *csv.Reader
	headers []string
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// NewRowReader reads and normalizes the header. The header must contain a
// sku column (case-insensitive).
func NewRowReader(r io.Reader) (*RowReader, error) {
	cr := newCSVReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	headers := NormalizeHeader(header)
	hasSKU := false
	for _, h := range headers {
		if h == skuColumn {
			hasSKU = true
			break
		}
	}
	if !hasSKU {
		return nil, ErrMissingSKUColumn
	}

	return &RowReader{csv: cr, headers: headers}, nil
}

// NormalizeHeader lower-cases and trims header names, dropping a UTF-8 BOM
// and the " *" required-column marker used by spreadsheet templates.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.ToLower(strings.TrimSpace(h))
		h = strings.TrimSpace(strings.TrimSuffix(h, "*"))
		out[i] = h
	}
	return out
}

// Next returns the next record, or io.EOF after the last one.
func (rr *RowReader) Next() (RawRow, error) {
	record, err := rr.csv.Read()
	if err != nil {
		return RawRow{}, err
	}

	line, _ := rr.csv.FieldPos(0)
	fields := make(map[string]string, len(rr.headers))
	for i, value := range record {
		if i >= len(rr.headers) {
			break
		}
		name := rr.headers[i]
		if name == "" {
			continue
		}
		if _, dup := fields[name]; dup {
			continue
		}
		fields[name] = value
	}
	return RawRow{Line: line, Fields: fields}, nil
}

// CountRows returns the number of data records after the header, using the
// same dialect as RowReader.
func CountRows(r io.Reader) (int, error) {
	cr := newCSVReader(r)
	cr.ReuseRecord = true

	n := -1
	for {
		_, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("count csv rows: %w", err)
		}
		n++
	}
	if n < 0 {
		return 0, nil
	}
	return n, nil
}
