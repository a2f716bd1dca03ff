package domain

import (
	"math"
	"time"
)

// TrendWindow is the result of fitting weight against time over a trailing
// window. It is derived data and never persisted.
type TrendWindow struct {
	WindowDays      int
	Slope           float64 // kg/day
	Samples         int
	RSquared        float64
	ReferenceWeight float64 // weight of the most recent record in the window, kg
}

// WeeklyGainKg projects the slope over a week.
func (t *TrendWindow) WeeklyGainKg() float64 { return t.Slope * 7 }

// MonthlyGainKg projects the slope over 30 days.
func (t *TrendWindow) MonthlyGainKg() float64 { return t.Slope * 30 }

// MonthlyGainPercent is the projected 30-day change relative to the reference
// weight. The second return is false when the reference weight is not
// positive and the percentage is undefined.
func (t *TrendWindow) MonthlyGainPercent() (float64, bool) {
	if t.ReferenceWeight <= 0 {
		return 0, false
	}
	return t.MonthlyGainKg() / t.ReferenceWeight * 100, true
}

// AnalyzeTrend fits an ordinary-least-squares line of weight against day over
// the records dated within windowDays before now. It returns nil when fewer
// than two usable records qualify; that is the expected "insufficient data"
// state, not an error. Records are not assumed sorted, and records with an
// unparseable date or a non-finite weight are skipped. Duplicate dates must
// already have been resolved by the store.
func AnalyzeTrend(records []Measurement, windowDays int, now time.Time) *TrendWindow {
	cutoff := now.AddDate(0, 0, -windowDays)

	var (
		xs, ys  []float64
		refDay  time.Time
		refSeen bool
		ref     float64
	)
	for _, m := range records {
		day, err := m.Day()
		if err != nil || day.Before(cutoff) {
			continue
		}
		if math.IsNaN(m.Weight) || math.IsInf(m.Weight, 0) {
			continue
		}
		xs = append(xs, float64(day.Unix())/86400)
		ys = append(ys, m.Weight)
		if !refSeen || day.After(refDay) {
			refDay, refSeen = day, true
			ref = m.Weight
		}
	}

	n := len(xs)
	if n < 2 {
		return nil
	}

	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var sxx, sxy, syy float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		// All samples on the same day; the fit is undefined.
		return nil
	}

	rsq := 0.0
	if syy > 0 {
		rsq = (sxy * sxy) / (sxx * syy)
	}

	return &TrendWindow{
		WindowDays:      windowDays,
		Slope:           sxy / sxx,
		Samples:         n,
		RSquared:        rsq,
		ReferenceWeight: ref,
	}
}
