package analytics

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
)

const (
	// MinSpikeHistory is the minimum number of demand points for spike detection.
	MinSpikeHistory = 14

	SpikeZThreshold    = 2.5
	SpikeZWarning      = 3.0
	SpikeZCritical     = 3.5
	TrendWindow        = 14
	TrendMinPoints     = 7
	TrendChangePercent = 50.0
	TrendCriticalPct   = 100.0

	ReliabilityThreshold = 0.8
	ReliabilityCritical  = 0.7
	HighUtilization      = 0.9
	LowUtilization       = 0.1
)

// Detector derives the full anomaly snapshot from the current data.
type Detector struct {
	Clock func() time.Time
}

// NewDetector returns a Detector using the wall clock.
func NewDetector() *Detector {
	return &Detector{Clock: time.Now}
}

func (d *Detector) now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock()
}

// Detect runs spike, trend, supplier and inventory checks over the snapshot.
// Products with fewer than MinSpikeHistory demand points are skipped for both
// the spike and the trend checks.
func (d *Detector) Detect(snapshot domain.DataSnapshot) []domain.Anomaly {
	idx := indexSnapshot(snapshot)
	now := d.now()

	anomalies := make([]domain.Anomaly, 0)
	for _, p := range snapshot.Products {
		history := idx.demand[p.ProductID]
		if len(history) < MinSpikeHistory {
			continue
		}
		anomalies = append(anomalies, DetectDemandSpikes(p.ProductID, history)...)
		if trend := DetectTrendChange(p.ProductID, history, now); trend != nil {
			anomalies = append(anomalies, *trend)
		}
	}

	for _, s := range snapshot.Suppliers {
		if a := CheckSupplierReliability(s, now); a != nil {
			anomalies = append(anomalies, *a)
		}
	}

	for _, inv := range snapshot.Inventory {
		if a := CheckInventoryUtilization(inv, now); a != nil {
			anomalies = append(anomalies, *a)
		}
	}

	return anomalies
}

// DetectDemandSpikes flags demand points more than SpikeZThreshold population
// standard deviations from the series mean. A constant series has no spikes.
func DetectDemandSpikes(productID string, history []domain.DemandRecord) []domain.Anomaly {
	if len(history) < MinSpikeHistory {
		return nil
	}

	sorted := sortedByDate(history)
	values := demands(sorted)
	m := mean(values)
	sd := populationStdDev(values, m)
	if sd == 0 || math.IsNaN(sd) || math.IsInf(sd, 0) {
		return nil
	}

	threshold := m + SpikeZThreshold*sd
	var out []domain.Anomaly
	for _, rec := range sorted {
		z := math.Abs(rec.Demand-m) / sd
		if z <= SpikeZThreshold {
			continue
		}

		out = append(out, domain.Anomaly{
			Type:        domain.AnomalyDemandSpike,
			Severity:    spikeSeverity(z),
			ProductID:   domain.StringPtr(productID),
			Description: fmt.Sprintf("Unusual demand detected: %s units (%.2f std devs from mean)", formatNumber(rec.Demand), z),
			DetectedAt:  rec.Time().UnixMilli(),
			Value:       domain.Float64Ptr(rec.Demand),
			Threshold:   domain.Float64Ptr(threshold),
		})
	}
	return out
}

func spikeSeverity(z float64) domain.Severity {
	switch {
	case z > SpikeZCritical:
		return domain.SeverityCritical
	case z > SpikeZWarning:
		return domain.SeverityWarning
	default:
		return domain.SeverityNormal
	}
}

// DetectTrendChange compares the mean of the last TrendWindow points with the
// TrendWindow points before them. It returns nil when either window holds
// fewer than TrendMinPoints points or the older mean is zero.
func DetectTrendChange(productID string, history []domain.DemandRecord, now time.Time) *domain.Anomaly {
	sorted := sortedByDate(history)
	n := len(sorted)

	recent := sorted[max(0, n-TrendWindow):]
	older := sorted[max(0, n-2*TrendWindow):max(0, n-TrendWindow)]
	if len(recent) < TrendMinPoints || len(older) < TrendMinPoints {
		return nil
	}

	recentMean := mean(demands(recent))
	olderMean := mean(demands(older))
	if olderMean == 0 {
		return nil
	}

	pct := math.Abs((recentMean-olderMean)/olderMean) * 100
	if pct <= TrendChangePercent {
		return nil
	}

	severity := domain.SeverityWarning
	if pct > TrendCriticalPct {
		severity = domain.SeverityCritical
	}

	return &domain.Anomaly{
		Type:        domain.AnomalyTrendChange,
		Severity:    severity,
		ProductID:   domain.StringPtr(productID),
		Description: fmt.Sprintf("Significant trend change detected: %.1f%% change in demand pattern", pct),
		DetectedAt:  now.UnixMilli(),
		Value:       domain.Float64Ptr(recentMean),
		Threshold:   domain.Float64Ptr(olderMean),
	}
}

// CheckSupplierReliability flags suppliers below ReliabilityThreshold.
func CheckSupplierReliability(s domain.Supplier, now time.Time) *domain.Anomaly {
	if s.Reliability >= ReliabilityThreshold {
		return nil
	}

	severity := domain.SeverityWarning
	if s.Reliability < ReliabilityCritical {
		severity = domain.SeverityCritical
	}

	return &domain.Anomaly{
		Type:        domain.AnomalySupplierReliability,
		Severity:    severity,
		SupplierID:  domain.StringPtr(s.SupplierID),
		Description: fmt.Sprintf("Low supplier reliability: %.1f%%", s.Reliability*100),
		DetectedAt:  now.UnixMilli(),
		Value:       domain.Float64Ptr(s.Reliability),
		Threshold:   domain.Float64Ptr(ReliabilityThreshold),
	}
}

// CheckInventoryUtilization flags inventory above HighUtilization or below
// LowUtilization of warehouse capacity.
func CheckInventoryUtilization(inv domain.InventoryRecord, now time.Time) *domain.Anomaly {
	if inv.WarehouseCapacity <= 0 {
		return nil
	}

	rate := inv.CurrentStock / inv.WarehouseCapacity
	switch {
	case rate > HighUtilization:
		return &domain.Anomaly{
			Type:        domain.AnomalyHighInventory,
			Severity:    domain.SeverityWarning,
			ProductID:   domain.StringPtr(inv.ProductID),
			Description: fmt.Sprintf("High inventory utilization: %.1f%%", rate*100),
			DetectedAt:  now.UnixMilli(),
			Value:       domain.Float64Ptr(rate),
			Threshold:   domain.Float64Ptr(HighUtilization),
		}
	case rate < LowUtilization:
		return &domain.Anomaly{
			Type:        domain.AnomalyLowInventory,
			Severity:    domain.SeverityWarning,
			ProductID:   domain.StringPtr(inv.ProductID),
			Description: fmt.Sprintf("Very low inventory: %.1f%% capacity used", rate*100),
			DetectedAt:  now.UnixMilli(),
			Value:       domain.Float64Ptr(rate),
			Threshold:   domain.Float64Ptr(LowUtilization),
		}
	}
	return nil
}

// SummarizeAnomalies reduces a snapshot to the status shown in the notification bar.
func SummarizeAnomalies(anomalies []domain.Anomaly) domain.AnomalyStatus {
	status := domain.AnomalyStatus{
		Status:     domain.SeverityNormal,
		Message:    "No anomalies detected",
		TotalCount: len(anomalies),
	}
	for _, a := range anomalies {
		switch a.Severity {
		case domain.SeverityCritical:
			status.CriticalCount++
		case domain.SeverityWarning:
			status.WarningCount++
		}
	}

	if status.CriticalCount > 0 {
		status.Status = domain.SeverityCritical
		status.Message = fmt.Sprintf("%d critical anomalies detected", status.CriticalCount)
	} else if status.WarningCount > 0 {
		status.Status = domain.SeverityWarning
		status.Message = fmt.Sprintf("%d warnings detected", status.WarningCount)
	}
	return status
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
