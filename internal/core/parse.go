package core

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// StructuralError reports input that could not be decoded as CSV at all,
// such as an unterminated quoted field. No rows are validated when it occurs.
type StructuralError struct {
	Err error
}

func (e *StructuralError) Error() string {
	return e.Err.Error()
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// ParseAndValidate decodes raw and validates each data row. Candidates are
// returned in file order, numbered from 1 after blank lines are dropped.
// The result depends only on raw.
func ParseAndValidate(raw string) ([]ImportCandidate, error) {
	rows, err := decodeRows(NewImportReader(strings.NewReader(raw)))
	if err != nil {
		return nil, err
	}

	candidates := make([]ImportCandidate, 0, len(rows))
	for i, row := range rows {
		candidates = append(candidates, validateRow(i+1, row))
	}
	return candidates, nil
}

// decodeRows reads the header and all data rows. Records may have fewer or
// more fields than the header; missing cells read as "" and extras are ignored.
func decodeRows(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var (
		header []string
		rows   []RawRow
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &StructuralError{Err: err}
		}
		if isBlankRecord(record) {
			continue
		}
		if header == nil {
			header = normalizeHeader(record)
			continue
		}
		rows = append(rows, zipRow(header, record))
	}
	return rows, nil
}

func normalizeHeader(record []string) []string {
	header := make([]string, len(record))
	for i, h := range record {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return header
}

func zipRow(header, record []string) RawRow {
	row := make(RawRow, len(header))
	for i, key := range header {
		if i < len(record) {
			row[key] = record[i]
		} else {
			row[key] = ""
		}
	}
	return row
}

// isBlankRecord reports whether the line held nothing but whitespace.
// encoding/csv already drops empty lines; a line of separators such as ",,"
// is a data row with empty cells and is kept.
func isBlankRecord(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}
