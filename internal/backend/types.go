package backend

import "github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"

// ModelAnomaly is one row flagged by the backend's anomaly model.
type ModelAnomaly struct {
	ProductID    string   `json:"product_id"`
	ProductName  string   `json:"product_name,omitempty"`
	Severity     string   `json:"severity"`
	Description  string   `json:"description"`
	Reason       string   `json:"reason,omitempty"`
	AnomalyScore *float64 `json:"anomaly_score,omitempty"`
	Value        *float64 `json:"value,omitempty"`
	Threshold    *float64 `json:"threshold,omitempty"`
}

type DetectAnomaliesResponse struct {
	Anomalies    []ModelAnomaly   `json:"anomalies"`
	Products     []domain.Product `json:"products"`
	TotalChecked int              `json:"total_checked"`
}

// RawAnomalyRow is one input row of the backend's anomaly dataset.
type RawAnomalyRow struct {
	ProductID         string  `json:"product_id"`
	CurrentDemand     float64 `json:"current_demand"`
	CurrentStock      float64 `json:"current_stock"`
	WarehouseCapacity float64 `json:"warehouse_capacity"`
	LeadTimeDays      float64 `json:"lead_time_days"`
	PricePerUnit      float64 `json:"price_per_unit"`
}

type rawAnomalyResponse struct {
	Rows []RawAnomalyRow `json:"rows"`
}

// ForecastPoint is one predicted day returned by /api/predict.
type ForecastPoint struct {
	ForecastDate    string  `json:"forecast_date"`
	PredictedDemand float64 `json:"predicted_demand"`
	ConfidenceLower float64 `json:"confidence_lower"`
	ConfidenceUpper float64 `json:"confidence_upper"`
}

type PredictResponse struct {
	ProductID string          `json:"product_id"`
	Forecasts []ForecastPoint `json:"forecasts"`
}

type HistoryPoint struct {
	Date   string  `json:"date"`
	Demand float64 `json:"demand"`
}

type HistoryResponse struct {
	ProductID string         `json:"product_id"`
	History   []HistoryPoint `json:"history"`
}

// RemoteOptimization extends the local optimization result with the extra
// fields the backend reports.
type RemoteOptimization struct {
	domain.OptimizationResult
	ReorderPoint      float64 `json:"reorder_point,omitempty"`
	SafetyStock       float64 `json:"safety_stock,omitempty"`
	WarehouseCapacity float64 `json:"warehouse_capacity,omitempty"`
	AvgDailyDemand    float64 `json:"avg_daily_demand,omitempty"`
	DemandVariability float64 `json:"demand_variability,omitempty"`
}

type OptimizeResponse struct {
	Results    []RemoteOptimization `json:"results"`
	TotalCount int                  `json:"total_count"`
	Message    string               `json:"message"`
}

type SupplierRecommendation struct {
	SupplierID         string  `json:"supplier_id"`
	ProductID          string  `json:"product_id"`
	ProductName        string  `json:"product_name"`
	Reliability        float64 `json:"reliability"`
	LeadTime           float64 `json:"lead_time"`
	TransportationCost float64 `json:"transportation_cost"`
	SupplierPrice      float64 `json:"supplier_price"`
	TotalCost          float64 `json:"total_cost"`
	MinOrderQuantity   float64 `json:"min_order_quantity"`
	DeliveryDays       float64 `json:"delivery_days"`
	MeetsReliability   bool    `json:"meets_reliability"`
	MeetsLeadTime      bool    `json:"meets_lead_time"`
	WeightedScore      float64 `json:"weighted_score"`
	Explanation        string  `json:"explanation"`
}

type RecommendThresholds struct {
	ReliabilityMin float64 `json:"reliability_min"`
	LeadTimeMax    float64 `json:"lead_time_max"`
}

type RecommendResponse struct {
	Success        bool                     `json:"success"`
	ProductID      string                   `json:"product_id"`
	ProductName    string                   `json:"product_name"`
	BestSupplier   SupplierRecommendation   `json:"best_supplier"`
	OtherSuppliers []SupplierRecommendation `json:"other_suppliers"`
	Thresholds     RecommendThresholds      `json:"thresholds"`
}

// RemoteSuggestion is a procurement suggestion computed by the backend.
type RemoteSuggestion struct {
	ProductID           string          `json:"product_id"`
	ProductName         string          `json:"product_name"`
	SupplierID          string          `json:"supplier_id"`
	SupplierName        string          `json:"supplier_name"`
	RecommendedQuantity float64         `json:"recommended_quantity"`
	EstimatedCost       float64         `json:"estimated_cost"`
	ETADays             float64         `json:"eta_days"`
	SupplierReliability float64         `json:"supplier_reliability"`
	Priority            domain.Priority `json:"priority"`
	PricePerUnit        float64         `json:"price_per_unit"`
}

type SuggestionsResponse struct {
	Suggestions []RemoteSuggestion `json:"suggestions"`
	TotalCount  int                `json:"total_count"`
	Message     string             `json:"message"`
}

type UploadResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	ProductsCount int    `json:"products_count,omitempty"`
	Error         string `json:"error,omitempty"`
}

type askRequest struct {
	Question      string `json:"question"`
	ScreenContent string `json:"screen_content"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

type productsResponse struct {
	Products []domain.Product `json:"products"`
}

// LoadDataResponse is the catalog and demand export of the backend's dataset.
type LoadDataResponse struct {
	Success            bool                  `json:"success"`
	Products           []domain.Product      `json:"products"`
	DemandData         []domain.DemandRecord `json:"demand_data"`
	TotalDemandRecords int                   `json:"total_demand_records"`
}

type productRequest struct {
	ProductID string `json:"product_id"`
}
