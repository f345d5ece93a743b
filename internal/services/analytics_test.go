package services

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/eaas-dev/eaas-backend/internal/store"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

func newTestAnalyticsService(t *testing.T) (AnalyticsService, ExperimentService) {
	t.Helper()
	log := testLogger(t)
	expSvc := NewExperimentService(store.NewMemoryKV(), log)
	return NewAnalyticsService(log, expSvc, rand.New(rand.NewSource(1))), expSvc
}

func TestTimeSeriesShape(t *testing.T) {
	svc, _ := newTestAnalyticsService(t)

	points := svc.TimeSeries(30, 87, 8)
	if len(points) != 31 {
		t.Fatalf("point count = %d, want 31", len(points))
	}
	for _, p := range points {
		if p.Value < 0 || p.Value > 100 {
			t.Fatalf("value %v at %s outside [0,100]", p.Value, p.Date)
		}
		if math.Round(p.Value*100)/100 != p.Value {
			t.Fatalf("value %v at %s not rounded to two decimals", p.Value, p.Date)
		}
	}
	if points[0].Date >= points[len(points)-1].Date {
		t.Fatalf("series not chronological: %s .. %s", points[0].Date, points[len(points)-1].Date)
	}
}

func TestTimeSeriesClampsHighBase(t *testing.T) {
	svc, _ := newTestAnalyticsService(t)

	for _, p := range svc.TimeSeries(7, 99, 10) {
		if p.Value > 100 {
			t.Fatalf("value %v exceeds clamp", p.Value)
		}
	}
}

func TestOverallMetrics(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAnalyticsService(t)

	metrics := svc.OverallMetrics(ctx, "user-1")
	byID := map[string]float64{}
	for _, m := range metrics {
		byID[m.ID] = m.Value
	}

	// Seed fixtures hold two experiments with 3+1 evaluation runs.
	if byID["total-experiments"] != 2 {
		t.Fatalf("total-experiments = %v, want 2", byID["total-experiments"])
	}
	if byID["total-evaluations"] != 4+127 {
		t.Fatalf("total-evaluations = %v, want 131", byID["total-evaluations"])
	}
	if byID["models-evaluated"] != 3 {
		t.Fatalf("models-evaluated = %v, want floor 3", byID["models-evaluated"])
	}
}

func TestOverallMetricsEmptyRegistry(t *testing.T) {
	ctx := context.Background()
	svc, expSvc := newTestAnalyticsService(t)

	if !expSvc.Import(ctx, "user-1", "[]") {
		t.Fatal("could not empty the experiment registry")
	}
	metrics := svc.OverallMetrics(ctx, "user-1")
	for _, m := range metrics {
		if m.ID == "total-experiments" {
			if m.Value != 0 || m.Change != 0 {
				t.Fatalf("empty registry metric = %+v, want value 0 change 0", m)
			}
		}
	}
}

func TestModelPerformanceRowCount(t *testing.T) {
	ctx := context.Background()
	svc, expSvc := newTestAnalyticsService(t)

	// Two experiments still yields the three-row floor.
	if got := svc.ModelPerformance(ctx, "user-1"); len(got) != 3 {
		t.Fatalf("rows = %d, want 3", len(got))
	}

	for i := 0; i < 10; i++ {
		expSvc.Create(ctx, "user-1", types.CreateExperimentInput{Name: "padding"})
	}
	// Capped at the known model list.
	if got := svc.ModelPerformance(ctx, "user-1"); len(got) != 5 {
		t.Fatalf("rows = %d, want cap 5", len(got))
	}
}

func TestModelComparisonMatrix(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAnalyticsService(t)

	cmp := svc.ModelComparison(ctx, "user-1")
	if len(cmp.Categories) != 5 {
		t.Fatalf("categories = %d, want 5", len(cmp.Categories))
	}
	if len(cmp.ComparisonMatrix) != len(cmp.Models) {
		t.Fatalf("matrix rows = %d, models = %d", len(cmp.ComparisonMatrix), len(cmp.Models))
	}
	for _, row := range cmp.ComparisonMatrix {
		if len(row) != len(cmp.Categories) {
			t.Fatalf("matrix row width = %d, want %d", len(row), len(cmp.Categories))
		}
		for _, v := range row {
			if v < 60 || v > 95 {
				t.Fatalf("matrix value %v outside [60,95]", v)
			}
		}
	}
}

func TestUsagePatternsShape(t *testing.T) {
	svc, _ := newTestAnalyticsService(t)

	p := svc.UsagePatterns()
	if len(p.Hourly) != 24 {
		t.Fatalf("hourly buckets = %d, want 24", len(p.Hourly))
	}
	if p.Hourly[0].Label != "00:00" || p.Hourly[23].Label != "23:00" {
		t.Fatalf("hour labels = %q, %q", p.Hourly[0].Label, p.Hourly[23].Label)
	}
	if len(p.Daily) != 8 {
		t.Fatalf("daily points = %d, want 8", len(p.Daily))
	}
	if len(p.Weekly) != 13 {
		t.Fatalf("weekly points = %d, want 13", len(p.Weekly))
	}
}

func TestPerformanceTrendsPeriods(t *testing.T) {
	svc, _ := newTestAnalyticsService(t)

	tests := map[string]int{
		"7d":    8,
		"30d":   31,
		"90d":   91,
		"bogus": 31,
		"":      31,
	}
	for period, want := range tests {
		got := svc.PerformanceTrends(period)
		if len(got.Metrics.Accuracy) != want {
			t.Fatalf("period %q accuracy points = %d, want %d", period, len(got.Metrics.Accuracy), want)
		}
	}
}

func TestExportFormats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAnalyticsService(t)

	csv, err := svc.Export(ctx, "user-1", "csv")
	if err != nil {
		t.Fatalf("Export csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if lines[0] != "Metric,Value,Change,Trend" {
		t.Fatalf("csv header = %q", lines[0])
	}
	if len(lines) != 7 {
		t.Fatalf("csv lines = %d, want header plus six metrics", len(lines))
	}

	raw, err := svc.Export(ctx, "user-1", "json")
	if err != nil {
		t.Fatalf("Export json: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("json export not parseable: %v", err)
	}
	for _, key := range []string{"timestamp", "metrics", "trends", "models", "experiments"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("json export missing %q", key)
		}
	}
}

func TestTimeSeriesConcurrentDraws(t *testing.T) {
	svc, _ := newTestAnalyticsService(t)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				points := svc.TimeSeries(30, 87, 8)
				if len(points) != 31 {
					t.Errorf("point count = %d, want 31", len(points))
					return
				}
			}
		}()
	}
	wg.Wait()
}
