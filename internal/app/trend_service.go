package app

import (
	"context"
	"fmt"
	"time"

	"bulktracker/internal/domain"
)

// DefaultWindows are the trailing windows analyzed when the caller does not
// ask for specific ones.
var DefaultWindows = []int{14, 30}

// TrendService computes per-window trend reports over the record store.
type TrendService struct {
	records *RecordService
}

// NewTrendService creates a TrendService reading from the given store.
func NewTrendService(records *RecordService) *TrendService {
	return &TrendService{records: records}
}

// WindowReport is the analysis of one trailing window. Trend is nil when the
// window holds fewer than two usable records.
type WindowReport struct {
	WindowDays int          `json:"windowDays"`
	Trend      *TrendReport `json:"trend"`
}

// TrendReport carries the fitted slope, its projections and the coaching
// zone. MonthlyGainPercent and the zone fields are omitted when the reference
// weight is not positive.
type TrendReport struct {
	SlopeKgPerDay      float64  `json:"slopeKgPerDay"`
	WeeklyGainKg       float64  `json:"weeklyGainKg"`
	MonthlyGainKg      float64  `json:"monthlyGainKg"`
	MonthlyGainPercent *float64 `json:"monthlyGainPercent,omitempty"`
	Zone               string   `json:"zone,omitempty"`
	ZoneHint           string   `json:"zoneHint,omitempty"`
	Samples            int      `json:"samples"`
	RSquared           float64  `json:"rSquared"`
	ReferenceWeight    float64  `json:"referenceWeight"`
}

// Report analyzes each requested window against the current record set.
// windows defaults to DefaultWindows when empty.
func (s *TrendService) Report(ctx context.Context, now time.Time, windows []int) ([]WindowReport, error) {
	if len(windows) == 0 {
		windows = DefaultWindows
	}
	for _, w := range windows {
		if w <= 0 {
			return nil, fmt.Errorf("window days must be > 0, got %d", w)
		}
	}

	records, err := s.records.Load(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]WindowReport, 0, len(windows))
	for _, w := range windows {
		reports = append(reports, WindowReport{
			WindowDays: w,
			Trend:      buildReport(domain.AnalyzeTrend(records, w, now)),
		})
	}
	return reports, nil
}

func buildReport(tw *domain.TrendWindow) *TrendReport {
	if tw == nil {
		return nil
	}
	r := &TrendReport{
		SlopeKgPerDay:   tw.Slope,
		WeeklyGainKg:    tw.WeeklyGainKg(),
		MonthlyGainKg:   tw.MonthlyGainKg(),
		Samples:         tw.Samples,
		RSquared:        tw.RSquared,
		ReferenceWeight: tw.ReferenceWeight,
	}
	if pct, ok := tw.MonthlyGainPercent(); ok {
		zone := domain.ClassifyMonthlyGain(pct)
		r.MonthlyGainPercent = &pct
		r.Zone = zone.String()
		r.ZoneHint = zone.Hint()
	}
	return r
}
