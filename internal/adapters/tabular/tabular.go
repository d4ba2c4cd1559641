// Package tabular reads CSV exports into raw records for normalization.
// It is deliberately dumb: header-driven field names, values kept as
// strings, row order preserved. All interpretation happens downstream.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/okian/pipeaudit/internal/domain/model"
)

// ReadFile reads a CSV export from disk.
func ReadFile(path string) ([]model.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenInput, err)
	}
	defer f.Close()
	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Read parses CSV from r. The first row is the header; every following
// row becomes one RawRecord in file order. Short rows leave trailing
// fields unset rather than failing the whole file.
func Read(r io.Reader) ([]model.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
	}

	rows := make([]model.RawRecord, 0)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}
		row := make(model.RawRecord, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
}
