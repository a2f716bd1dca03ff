package app_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"bulktracker/internal/app"
	"bulktracker/internal/domain"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DayFormat, s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestReport_DefaultWindows(t *testing.T) {
	b := &mockBackend{
		readFn: func(context.Context) ([]domain.Row, error) {
			return []domain.Row{
				{Date: "2024-01-01", Weight: "80", SMM: "35"},
				{Date: "2024-01-11", Weight: "81.4", SMM: "35.2"},
			}, nil
		},
	}
	svc := app.NewTrendService(newService(b))
	reports, err := svc.Report(context.Background(), mustDay(t, "2024-01-11"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2 (default 14/30)", len(reports))
	}
	if reports[0].WindowDays != 14 || reports[1].WindowDays != 30 {
		t.Errorf("windows = %d,%d, want 14,30", reports[0].WindowDays, reports[1].WindowDays)
	}

	tr := reports[0].Trend
	if tr == nil {
		t.Fatal("expected a trend for the 14-day window")
	}
	if math.Abs(tr.SlopeKgPerDay-0.14) > 1e-9 {
		t.Errorf("slope = %v, want 0.14", tr.SlopeKgPerDay)
	}
	if tr.MonthlyGainPercent == nil || math.Abs(*tr.MonthlyGainPercent-5.1597051597) > 1e-6 {
		t.Errorf("monthly gain percent = %v, want ~5.16", tr.MonthlyGainPercent)
	}
	if tr.Zone != "Dirty Bulk" {
		t.Errorf("zone = %q, want Dirty Bulk", tr.Zone)
	}
}

func TestReport_InsufficientData(t *testing.T) {
	b := &mockBackend{
		readFn: func(context.Context) ([]domain.Row, error) {
			return []domain.Row{{Date: "2024-01-11", Weight: "81.4", SMM: "35.2"}}, nil
		},
	}
	svc := app.NewTrendService(newService(b))
	reports, err := svc.Report(context.Background(), mustDay(t, "2024-01-11"), []int{14, 30, 90})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range reports {
		if r.Trend != nil {
			t.Errorf("window %d: expected nil trend for single record", r.WindowDays)
		}
	}
}

func TestReport_BadWindow(t *testing.T) {
	svc := app.NewTrendService(newService(&mockBackend{}))
	if _, err := svc.Report(context.Background(), time.Now(), []int{0}); err == nil {
		t.Fatal("expected error for non-positive window")
	}
	if _, err := svc.Report(context.Background(), time.Now(), []int{14, -1}); err == nil {
		t.Fatal("expected error for negative window")
	}
}

func TestReport_StoreError(t *testing.T) {
	b := &mockBackend{
		readFn: func(context.Context) ([]domain.Row, error) {
			return nil, fmt.Errorf("%w: down", domain.ErrStoreUnavailable)
		},
	}
	svc := app.NewTrendService(newService(b))
	_, err := svc.Report(context.Background(), time.Now(), nil)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
}

func TestReport_NoPercentWhenReferenceZero(t *testing.T) {
	// Zero weights survive a coerce-zero store; the slope still fits but the
	// percentage and zone are undefined.
	b := &mockBackend{
		readFn: func(context.Context) ([]domain.Row, error) {
			return []domain.Row{
				{Date: "2024-01-09", Weight: "0", SMM: "0"},
				{Date: "2024-01-10", Weight: "0", SMM: "0"},
			}, nil
		},
	}
	svc := app.NewTrendService(app.NewRecordService(b, domain.CoerceZero, nil))
	reports, err := svc.Report(context.Background(), mustDay(t, "2024-01-10"), []int{14})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr := reports[0].Trend
	if tr == nil {
		t.Fatal("expected a trend")
	}
	if tr.MonthlyGainPercent != nil || tr.Zone != "" {
		t.Errorf("expected undefined percent/zone, got %+v", tr)
	}
}
