package analytics

import (
	"reflect"
	"testing"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
)

var fixedNow = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// series builds daily demand records starting 2024-01-01.
func series(productID string, values ...float64) []domain.DemandRecord {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.DemandRecord, len(values))
	for i, v := range values {
		out[i] = domain.DemandRecord{
			ProductID: productID,
			Date:      start.AddDate(0, 0, i).Format(domain.DemandDateLayout),
			Demand:    v,
		}
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestDetectDemandSpikes_ConstantSeries(t *testing.T) {
	got := DetectDemandSpikes("P1", series("P1", constant(30, 100)...))
	if len(got) != 0 {
		t.Fatalf("want no spikes for zero variance, got %d", len(got))
	}
}

func TestDetectDemandSpikes_TooShort(t *testing.T) {
	values := constant(13, 100)
	values[5] = 10000
	if got := DetectDemandSpikes("P1", series("P1", values...)); len(got) != 0 {
		t.Fatalf("want no spikes below %d points, got %d", MinSpikeHistory, len(got))
	}
}

func TestDetectDemandSpikes_SingleOutlierIsCritical(t *testing.T) {
	values := constant(30, 100)
	values[29] = 500

	got := DetectDemandSpikes("P1", series("P1", values...))
	if len(got) != 1 {
		t.Fatalf("want 1 spike, got %d: %+v", len(got), got)
	}
	a := got[0]
	if a.Type != domain.AnomalyDemandSpike || a.Severity != domain.SeverityCritical {
		t.Fatalf("unexpected anomaly: %+v", a)
	}
	if a.ProductID == nil || *a.ProductID != "P1" {
		t.Fatalf("bad product id: %v", a.ProductID)
	}
	if a.Value == nil || *a.Value != 500 {
		t.Fatalf("bad value: %v", a.Value)
	}
	wantDetected := time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC).UnixMilli()
	if a.DetectedAt != wantDetected {
		t.Fatalf("detected_at = %d, want %d", a.DetectedAt, wantDetected)
	}
	if a.Description != "Unusual demand detected: 500 units (5.39 std devs from mean)" {
		t.Fatalf("bad description: %q", a.Description)
	}
}

func TestSpikeSeverityBands(t *testing.T) {
	cases := []struct {
		z    float64
		want domain.Severity
	}{
		{2.6, domain.SeverityNormal},
		{3.0, domain.SeverityNormal},
		{3.2, domain.SeverityWarning},
		{3.5, domain.SeverityWarning},
		{3.6, domain.SeverityCritical},
	}
	for _, tc := range cases {
		if got := spikeSeverity(tc.z); got != tc.want {
			t.Fatalf("z=%.1f: severity %s, want %s", tc.z, got, tc.want)
		}
	}
}

func TestDetectTrendChange(t *testing.T) {
	cases := []struct {
		name   string
		older  float64
		recent float64
		want   *domain.Severity
	}{
		{"flat", 100, 100, nil},
		{"moderate", 100, 140, nil},
		{"warning", 100, 170, sev(domain.SeverityWarning)},
		{"critical", 100, 250, sev(domain.SeverityCritical)},
		{"drop", 100, 40, sev(domain.SeverityWarning)},
		{"zero older mean", 0, 100, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := append(constant(TrendWindow, tc.older), constant(TrendWindow, tc.recent)...)
			got := DetectTrendChange("P1", series("P1", values...), fixedNow)
			if tc.want == nil {
				if got != nil {
					t.Fatalf("want no trend anomaly, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("want trend anomaly")
			}
			if got.Severity != *tc.want || got.Type != domain.AnomalyTrendChange {
				t.Fatalf("unexpected anomaly: %+v", got)
			}
			if *got.Value != tc.recent || *got.Threshold != tc.older {
				t.Fatalf("value/threshold = %v/%v", *got.Value, *got.Threshold)
			}
			if got.DetectedAt != fixedNow.UnixMilli() {
				t.Fatalf("detected_at should be now")
			}
		})
	}
}

func TestDetectTrendChange_NeedsBothWindows(t *testing.T) {
	values := append(constant(6, 10), constant(TrendWindow, 100)...)
	if got := DetectTrendChange("P1", series("P1", values...), fixedNow); got != nil {
		t.Fatalf("older window below %d points must not emit: %+v", TrendMinPoints, got)
	}
}

func sev(s domain.Severity) *domain.Severity { return &s }

func TestCheckSupplierReliability(t *testing.T) {
	cases := []struct {
		reliability float64
		want        domain.Severity
		emit        bool
	}{
		{0.95, "", false},
		{0.8, "", false},
		{0.75, domain.SeverityWarning, true},
		{0.7, domain.SeverityWarning, true},
		{0.5, domain.SeverityCritical, true},
	}
	for _, tc := range cases {
		got := CheckSupplierReliability(domain.Supplier{SupplierID: "S1", Reliability: tc.reliability}, fixedNow)
		if (got != nil) != tc.emit {
			t.Fatalf("reliability %.2f: emit=%v", tc.reliability, got != nil)
		}
		if got != nil && got.Severity != tc.want {
			t.Fatalf("reliability %.2f: severity %s, want %s", tc.reliability, got.Severity, tc.want)
		}
	}
}

func TestCheckInventoryUtilization(t *testing.T) {
	high := CheckInventoryUtilization(domain.InventoryRecord{ProductID: "P1", CurrentStock: 950, WarehouseCapacity: 1000}, fixedNow)
	if high == nil || high.Type != domain.AnomalyHighInventory || *high.Threshold != HighUtilization {
		t.Fatalf("want high_inventory, got %+v", high)
	}
	low := CheckInventoryUtilization(domain.InventoryRecord{ProductID: "P1", CurrentStock: 50, WarehouseCapacity: 1000}, fixedNow)
	if low == nil || low.Type != domain.AnomalyLowInventory || low.Severity != domain.SeverityWarning {
		t.Fatalf("want low_inventory, got %+v", low)
	}
	if ok := CheckInventoryUtilization(domain.InventoryRecord{ProductID: "P1", CurrentStock: 500, WarehouseCapacity: 1000}, fixedNow); ok != nil {
		t.Fatalf("want no anomaly, got %+v", ok)
	}
	if zero := CheckInventoryUtilization(domain.InventoryRecord{ProductID: "P1", CurrentStock: 5}, fixedNow); zero != nil {
		t.Fatalf("zero capacity must not emit")
	}
}

func ninetyDayScenario() domain.DataSnapshot {
	values := make([]float64, 90)
	for i := range values {
		if i%2 == 0 {
			values[i] = 70
		} else {
			values[i] = 90
		}
	}
	values[44] = 500

	return domain.DataSnapshot{
		Products: []domain.Product{{ProductID: "P1", Name: "Laptop"}},
		Demand:   series("P1", values...),
	}
}

func TestDetect_NinetyDayScenario(t *testing.T) {
	d := &Detector{Clock: fixedClock}
	got := d.Detect(ninetyDayScenario())
	if len(got) != 1 {
		t.Fatalf("want 1 anomaly, got %d: %+v", len(got), got)
	}
	if got[0].Type != domain.AnomalyDemandSpike || got[0].Severity != domain.SeverityCritical {
		t.Fatalf("unexpected anomaly: %+v", got[0])
	}
	wantDate := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC).UnixMilli()
	if got[0].DetectedAt != wantDate {
		t.Fatalf("detected_at = %d, want %d", got[0].DetectedAt, wantDate)
	}
}

func TestDetect_ShortHistorySkipsProduct(t *testing.T) {
	snap := domain.DataSnapshot{
		Products: []domain.Product{{ProductID: "P1"}},
		Demand:   series("P1", append(constant(6, 1), constant(7, 1000)...)...),
	}
	d := &Detector{Clock: fixedClock}
	if got := d.Detect(snap); len(got) != 0 {
		t.Fatalf("want nothing for short history, got %+v", got)
	}
}

func TestDetect_Idempotent(t *testing.T) {
	snap := ninetyDayScenario()
	snap.Suppliers = []domain.Supplier{{SupplierID: "S1", ProductID: "P1", Reliability: 0.6, PricePerUnit: 10, LeadTime: 5}}
	snap.Inventory = []domain.InventoryRecord{{ProductID: "P1", CurrentStock: 5, WarehouseCapacity: 1000}}

	d := &Detector{Clock: fixedClock}
	first := d.Detect(snap)
	second := d.Detect(snap)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("detection not idempotent:\n%+v\n%+v", first, second)
	}
	if len(first) != 3 {
		t.Fatalf("want spike + supplier + low inventory, got %d", len(first))
	}
}

func TestSummarizeAnomalies(t *testing.T) {
	if s := SummarizeAnomalies(nil); s.Status != domain.SeverityNormal || s.Message != "No anomalies detected" {
		t.Fatalf("unexpected empty status: %+v", s)
	}
	s := SummarizeAnomalies([]domain.Anomaly{
		{Severity: domain.SeverityWarning},
		{Severity: domain.SeverityCritical},
		{Severity: domain.SeverityCritical},
		{Severity: domain.SeverityNormal},
	})
	if s.Status != domain.SeverityCritical || s.CriticalCount != 2 || s.WarningCount != 1 || s.TotalCount != 4 {
		t.Fatalf("unexpected status: %+v", s)
	}
	if s.Message != "2 critical anomalies detected" {
		t.Fatalf("bad message: %q", s.Message)
	}
	w := SummarizeAnomalies([]domain.Anomaly{{Severity: domain.SeverityWarning}})
	if w.Status != domain.SeverityWarning || w.Message != "1 warnings detected" {
		t.Fatalf("unexpected warning status: %+v", w)
	}
}
