// Package rowcsv encodes and decodes the Date,Weight,SMM record table as CSV,
// the on-disk format shared by the file and hosted-file backends.
package rowcsv

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"bulktracker/internal/domain"
)

// Encode serializes rows with the canonical header line.
func Encode(rows []domain.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(domain.Header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.Date, r.Weight, r.SMM}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses CSV content. Empty content yields no rows. Content whose
// header row does not match Date,Weight,SMM exactly, or that is not valid
// CSV, is reported as domain.ErrMalformedSchema so the store can degrade to
// an empty set.
func Decode(data []byte) ([]domain.Row, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSchema, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if !headerOK(records[0]) {
		return nil, fmt.Errorf("%w: header %v", domain.ErrMalformedSchema, records[0])
	}

	rows := make([]domain.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, domain.Row{Date: rec[0], Weight: rec[1], SMM: rec[2]})
	}
	return rows, nil
}

func headerOK(got []string) bool {
	if len(got) != len(domain.Header) {
		return false
	}
	for i, col := range domain.Header {
		if got[i] != col {
			return false
		}
	}
	return true
}
