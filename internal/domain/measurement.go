// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// DayFormat is the canonical date layout used everywhere a date crosses a
// package boundary.
const DayFormat = "2006-01-02"

// Header is the required column set, in order, for every tabular backend.
var Header = []string{"Date", "Weight", "SMM"}

// Sentinel errors distinguishing the failure modes of a backend. Callers
// check them with errors.Is.
var (
	// ErrStoreUnavailable means the backend could not be reached; the
	// operation was aborted and no data was lost.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrMalformedSchema means the backend content is missing the required
	// columns; loads degrade to an empty set instead of propagating it.
	ErrMalformedSchema = errors.New("malformed schema")
	// ErrInvalidValue means a row carried a non-numeric weight or SMM and
	// the active coercion policy rejects such rows.
	ErrInvalidValue = errors.New("invalid value")
)

// Measurement is one calendar day's body-composition observation. Date is the
// natural key: the store holds at most one Measurement per date.
type Measurement struct {
	Date   string  `json:"date"`   // YYYY-MM-DD
	Weight float64 `json:"weight"` // kg
	SMM    float64 `json:"smm"`    // skeletal muscle mass, kg
}

// Day parses the measurement date.
func (m Measurement) Day() (time.Time, error) {
	return time.Parse(DayFormat, m.Date)
}

// Row returns the backend wire representation. Floats are serialized with the
// shortest exact decimal form so every backend round-trips the same bytes.
func (m Measurement) Row() Row {
	return Row{
		Date:   m.Date,
		Weight: strconv.FormatFloat(m.Weight, 'f', -1, 64),
		SMM:    strconv.FormatFloat(m.SMM, 'f', -1, 64),
	}
}

// Row is one persisted record as the backends trade it: three string cells in
// Date, Weight, SMM column order.
type Row struct {
	Date   string `json:"date"`
	Weight string `json:"weight"`
	SMM    string `json:"smm"`
}

// Backend is the port every persistence medium implements. WriteAll is a full
// overwrite and must be all-or-nothing; Append may be read-modify-write where
// the medium has no native append.
type Backend interface {
	ReadAll(ctx context.Context) ([]Row, error)
	WriteAll(ctx context.Context, rows []Row) error
	Append(ctx context.Context, row Row) error
}

// CoercePolicy decides what happens to a row whose Weight or SMM does not
// parse as a number.
type CoercePolicy int

const (
	// CoerceZero replaces an unparseable number with 0, keeping the row.
	// This matches the historical behaviour of existing stores.
	CoerceZero CoercePolicy = iota
	// DropInvalid discards the offending row.
	DropInvalid
	// Strict rejects the whole batch with ErrInvalidValue.
	Strict
)

// ParseCoercePolicy maps a config string to a policy.
func ParseCoercePolicy(s string) (CoercePolicy, error) {
	switch s {
	case "", "zero":
		return CoerceZero, nil
	case "drop":
		return DropInvalid, nil
	case "strict":
		return Strict, nil
	default:
		return CoerceZero, fmt.Errorf("unknown coerce policy %q", s)
	}
}

// ParseRow converts a wire row to a Measurement under the given policy. The
// second return is false when the row should be skipped. A row whose date does
// not parse has no key and is skipped under CoerceZero and DropInvalid.
func ParseRow(r Row, policy CoercePolicy) (Measurement, bool, error) {
	if _, err := time.Parse(DayFormat, r.Date); err != nil {
		if policy == Strict {
			return Measurement{}, false, fmt.Errorf("%w: date %q", ErrInvalidValue, r.Date)
		}
		return Measurement{}, false, nil
	}

	weight, werr := strconv.ParseFloat(r.Weight, 64)
	smm, serr := strconv.ParseFloat(r.SMM, 64)
	if werr != nil || serr != nil {
		switch policy {
		case Strict:
			return Measurement{}, false, fmt.Errorf("%w: row %s", ErrInvalidValue, r.Date)
		case DropInvalid:
			return Measurement{}, false, nil
		}
		if werr != nil {
			weight = 0
		}
		if serr != nil {
			smm = 0
		}
	}
	return Measurement{Date: r.Date, Weight: weight, SMM: smm}, true, nil
}

// ParseRows converts wire rows to measurements, resolving duplicate dates
// last-write-wins and returning the result sorted by date.
func ParseRows(rows []Row, policy CoercePolicy) ([]Measurement, error) {
	byDate := make(map[string]Measurement, len(rows))
	for _, r := range rows {
		m, ok, err := ParseRow(r, policy)
		if err != nil {
			return nil, err
		}
		if ok {
			byDate[m.Date] = m
		}
	}

	out := make([]Measurement, 0, len(byDate))
	for _, m := range byDate {
		out = append(out, m)
	}
	SortByDate(out)
	return out, nil
}

// RowsOf serializes measurements to wire rows in order.
func RowsOf(ms []Measurement) []Row {
	rows := make([]Row, len(ms))
	for i, m := range ms {
		rows[i] = m.Row()
	}
	return rows
}

// SortByDate orders measurements ascending by date in place. Dates in
// YYYY-MM-DD form sort correctly as strings.
func SortByDate(ms []Measurement) {
	sort.Slice(ms, func(i, j int) bool { return ms[i].Date < ms[j].Date })
}
