package fileparser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	apperrors "github.com/catalogops/import-pipeline/pkg/errors"
)

// DecodeRows incrementally reads CSV from r, treating the first row as the
// header and every later row as a record keyed by that header. fn is called
// once per decoded row; if it returns an error decoding stops and the error
// is returned as-is. The row count covers rows handed to fn.
//
// A malformed row (wrong field count, bad quoting) aborts the decode with
// ErrMalformedRow. Rows fn already received are not recalled.
func DecodeRows(r io.Reader, fn func(fields map[string]string) error) (int, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: reading header: %v", apperrors.ErrMalformedRow, err)
	}

	rows := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return rows, fmt.Errorf("%w: line %d: %v", apperrors.ErrMalformedRow, parseErr.Line, parseErr.Err)
			}
			return rows, fmt.Errorf("reading csv stream: %w", err)
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			fields[col] = record[i]
		}
		if err := fn(fields); err != nil {
			return rows, err
		}
		rows++
	}
}
