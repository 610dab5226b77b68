// backend-go/internal/domain/models.go
package domain

import (
	"fmt"
	"time"
)

// DemandDateLayout is the layout used for demand and forecast dates.
const DemandDateLayout = "2006-01-02"

// Product is a catalog entry keyed by its business identifier.
type Product struct {
	ProductID string  `json:"product_id" db:"product_id"`
	Name      string  `json:"name" db:"name"`
	Category  *string `json:"category" db:"category"`
}

// DemandRecord is one day of demand for a product.
type DemandRecord struct {
	ProductID string  `json:"product_id" db:"product_id"`
	Date      string  `json:"date" db:"date"`
	Demand    float64 `json:"demand" db:"demand"`
}

// Time parses the record date. Unparseable dates return the zero time.
func (r DemandRecord) Time() time.Time {
	t, err := ParseDemandDate(r.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseDemandDate accepts a plain date or a timestamp and returns
// the date at UTC midnight.
func ParseDemandDate(s string) (time.Time, error) {
	if t, err := time.Parse(DemandDateLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid demand date %q", s)
}

// Timestamps without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Supplier serves a single product at a fixed unit price.
type Supplier struct {
	SupplierID   string  `json:"supplier_id" db:"supplier_id"`
	Name         string  `json:"name" db:"name"`
	PricePerUnit float64 `json:"price_per_unit" db:"price_per_unit"`
	LeadTime     float64 `json:"lead_time" db:"lead_time"`
	Reliability  float64 `json:"reliability" db:"reliability"`
	ProductID    string  `json:"product_id" db:"product_id"`
}

// InventoryRecord is the current stock position of a product.
type InventoryRecord struct {
	ProductID         string   `json:"product_id" db:"product_id"`
	CurrentStock      float64  `json:"current_stock" db:"current_stock"`
	WarehouseCapacity float64  `json:"warehouse_capacity" db:"warehouse_capacity"`
	ReorderPoint      *float64 `json:"reorder_point" db:"reorder_point"`
}

// StockUpdate changes part of an inventory row. Nil fields keep the stored value.
type StockUpdate struct {
	CurrentStock      *float64
	WarehouseCapacity *float64
	ReorderPoint      *float64
}

// DefaultReorderPoint applies when an inventory row has no reorder point.
const DefaultReorderPoint = 20.0

// EffectiveReorderPoint returns the reorder point, falling back to the default.
// A zero reorder point is treated as unset.
func (i InventoryRecord) EffectiveReorderPoint() float64 {
	if i.ReorderPoint == nil || *i.ReorderPoint == 0 {
		return DefaultReorderPoint
	}
	return *i.ReorderPoint
}

// Forecast is one predicted day of demand for a product.
type Forecast struct {
	ProductID       string  `json:"product_id" db:"product_id"`
	ForecastDate    string  `json:"forecast_date" db:"forecast_date"`
	PredictedDemand float64 `json:"predicted_demand" db:"predicted_demand"`
	ConfidenceLower float64 `json:"confidence_lower" db:"confidence_lower"`
	ConfidenceUpper float64 `json:"confidence_upper" db:"confidence_upper"`
	CreatedAt       int64   `json:"created_at" db:"created_at"`
}

// Anomaly is a detected irregularity. DetectedAt is epoch milliseconds.
type Anomaly struct {
	ID          string      `json:"id" db:"id"`
	Type        AnomalyType `json:"type" db:"type"`
	Severity    Severity    `json:"severity" db:"severity"`
	ProductID   *string     `json:"product_id" db:"product_id"`
	SupplierID  *string     `json:"supplier_id" db:"supplier_id"`
	Description string      `json:"description" db:"description"`
	DetectedAt  int64       `json:"detected_at" db:"detected_at"`
	Value       *float64    `json:"value" db:"value"`
	Threshold   *float64    `json:"threshold" db:"threshold"`
}

// ProcurementSuggestion recommends ordering a quantity from a supplier.
type ProcurementSuggestion struct {
	ID                  string   `json:"id" db:"id"`
	ProductID           string   `json:"product_id" db:"product_id"`
	SupplierID          string   `json:"supplier_id" db:"supplier_id"`
	RecommendedQuantity float64  `json:"recommended_quantity" db:"recommended_quantity"`
	EstimatedCost       float64  `json:"estimated_cost" db:"estimated_cost"`
	ETADays             float64  `json:"eta_days" db:"eta_days"`
	Priority            Priority `json:"priority" db:"priority"`
	CreatedAt           int64    `json:"created_at" db:"created_at"`
}

// DataSnapshot is a consistent read of the source tables used by the
// detection, optimization and procurement computations.
type DataSnapshot struct {
	Products  []Product
	Demand    []DemandRecord
	Suppliers []Supplier
	Inventory []InventoryRecord
}

// Dataset is a complete replacement of the source tables.
type Dataset struct {
	Products  []Product         `json:"products"`
	Demand    []DemandRecord    `json:"demand"`
	Suppliers []Supplier        `json:"suppliers"`
	Inventory []InventoryRecord `json:"inventory"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 {
	return &f
}
