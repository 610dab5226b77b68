package domain

// EnrichedAnomaly is an anomaly joined with display names. Names are nil when
// the referenced product or supplier no longer exists.
type EnrichedAnomaly struct {
	Anomaly
	ProductName  *string `json:"product_name"`
	SupplierName *string `json:"supplier_name"`
}

// AnomalyStatus summarizes the current anomaly snapshot for the notification bar.
type AnomalyStatus struct {
	Status        Severity `json:"status"`
	Message       string   `json:"message"`
	CriticalCount int      `json:"critical_count"`
	WarningCount  int      `json:"warning_count"`
	TotalCount    int      `json:"total_count"`
}

// EnrichedSuggestion is a procurement suggestion joined with product and supplier details.
type EnrichedSuggestion struct {
	ProcurementSuggestion
	ProductName         string  `json:"product_name"`
	SupplierName        string  `json:"supplier_name"`
	SupplierReliability float64 `json:"supplier_reliability"`
}

// OptimizationResult is the EOQ recommendation for one product.
type OptimizationResult struct {
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	CurrentStock    float64         `json:"current_stock"`
	OptimalQuantity float64         `json:"optimal_quantity"`
	TotalCost       float64         `json:"total_cost"`
	SupplierName    string          `json:"supplier_name"`
	DaysOfStock     float64         `json:"days_of_stock"`
	Status          InventoryStatus `json:"status"`
	Warning         *string         `json:"warning"`
}

// InventoryStatusRow is an inventory row enriched with demand-derived metrics.
type InventoryStatusRow struct {
	InventoryRecord
	ProductName     string  `json:"product_name"`
	DaysOfStock     float64 `json:"days_of_stock"`
	UtilizationRate float64 `json:"utilization_rate"`
	AvgDailyDemand  float64 `json:"avg_daily_demand"`
}

// DashboardInventoryStatus is one row of the dashboard summary's inventory table.
type DashboardInventoryStatus struct {
	ProductID         string  `json:"product_id"`
	ProductName       string  `json:"product_name"`
	CurrentStock      float64 `json:"current_stock"`
	WarehouseCapacity float64 `json:"warehouse_capacity"`
	DaysOfStock       float64 `json:"days_of_stock"`
	UtilizationRate   float64 `json:"utilization_rate"`
	AvgDailyDemand    float64 `json:"avg_daily_demand"`
}

// DashboardSummary aggregates the headline numbers of the dashboard.
type DashboardSummary struct {
	TotalProducts     int                        `json:"total_products"`
	LowStockItems     int                        `json:"low_stock_items"`
	UrgentProcurement int                        `json:"urgent_procurement"`
	AvgUtilization    float64                    `json:"avg_utilization"`
	InventoryStatus   []DashboardInventoryStatus `json:"inventory_status"`
}

// MutationResult is returned by operations that replace a snapshot table.
type MutationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// SyncResult reports a catalog replacement from an external source.
type SyncResult struct {
	Success               bool `json:"success"`
	ProductsInserted      int  `json:"products_inserted"`
	DemandRecordsInserted int  `json:"demand_records_inserted"`
	TotalAvailable        int  `json:"total_available,omitempty"`
}
