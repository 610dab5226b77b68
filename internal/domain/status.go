package domain

import "strings"

// AnomalyType classifies a detected anomaly.
type AnomalyType string

const (
	AnomalyDemandSpike         AnomalyType = "demand_spike"
	AnomalyTrendChange         AnomalyType = "trend_change"
	AnomalySupplierReliability AnomalyType = "supplier_reliability"
	AnomalyHighInventory       AnomalyType = "high_inventory"
	AnomalyLowInventory        AnomalyType = "low_inventory"
	AnomalySupplyChain         AnomalyType = "supply_chain_anomaly"
)

var anomalyTypes = map[string]AnomalyType{
	"demand_spike":         AnomalyDemandSpike,
	"trend_change":         AnomalyTrendChange,
	"supplier_reliability": AnomalySupplierReliability,
	"high_inventory":       AnomalyHighInventory,
	"low_inventory":        AnomalyLowInventory,
	"supply_chain_anomaly": AnomalySupplyChain,
}

// ParseAnomalyType returns the anomaly type for a label (case-insensitive).
func ParseAnomalyType(label string) (AnomalyType, bool) {
	t, ok := anomalyTypes[strings.ToLower(strings.TrimSpace(label))]
	return t, ok
}

// Severity grades an anomaly.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

var severityRanks = map[Severity]int{
	SeverityNormal:   0,
	SeverityWarning:  1,
	SeverityCritical: 2,
}

// Rank orders severities from normal (0) to critical (2). Unknown values rank as normal.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// ParseSeverity returns the severity for a label (case-insensitive),
// defaulting to normal for unknown labels.
func ParseSeverity(label string) Severity {
	s := Severity(strings.ToLower(strings.TrimSpace(label)))
	if _, ok := severityRanks[s]; ok {
		return s
	}
	return SeverityNormal
}

// Priority ranks procurement suggestions.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

var priorityRanks = map[Priority]int{
	PriorityHigh:   3,
	PriorityMedium: 2,
	PriorityLow:    1,
}

// Rank returns 3 for High, 2 for Medium, 1 for Low and 0 otherwise.
func (p Priority) Rank() int {
	return priorityRanks[p]
}

// InventoryStatus is the outcome of inventory optimization for a product.
type InventoryStatus string

const (
	InventoryOptimal    InventoryStatus = "Optimal"
	InventoryUnderstock InventoryStatus = "Understock"
	InventoryOverstock  InventoryStatus = "Overstock"
	InventoryLowStock   InventoryStatus = "Low Stock"
)

var inventoryWarnings = map[InventoryStatus]string{
	InventoryUnderstock: "Current stock below reorder point",
	InventoryOverstock:  "Excessive inventory - consider reducing orders",
	InventoryLowStock:   "Stock levels may be insufficient",
}

// Warning returns the human-readable warning for a non-optimal status, or nil.
func (s InventoryStatus) Warning() *string {
	if w, ok := inventoryWarnings[s]; ok {
		return &w
	}
	return nil
}
