package analytics

import (
	"math"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// DefaultDailyDemand is assumed when a product has no demand history.
	DefaultDailyDemand = 50.0

	OptimizerDemandWindow = 30
	DaysPerYear           = 365
	HoldingCostRate       = 0.2
	OrderingCost          = 50.0

	OverstockDays = 60
	LowStockDays  = 14

	// noDemandDaysOfStock is reported when average demand is zero.
	noDemandDaysOfStock = 999
)

// Optimizer computes EOQ-based order quantities per product.
type Optimizer struct{}

func NewOptimizer() *Optimizer {
	return &Optimizer{}
}

// EOQ returns the economic order quantity for the given average daily demand
// and unit price, using the fixed holding cost rate and ordering cost.
func EOQ(avgDailyDemand, pricePerUnit float64) float64 {
	holdingCost := pricePerUnit * HoldingCostRate
	if holdingCost <= 0 {
		return 0
	}
	annualDemand := avgDailyDemand * DaysPerYear
	return math.Sqrt(2 * annualDemand * OrderingCost / holdingCost)
}

// SupplierValueScore weighs reliability against unit price when picking the
// supplier an EOQ is computed for.
func SupplierValueScore(s domain.Supplier) float64 {
	return s.Reliability*0.6 + (1/s.PricePerUnit)*0.4
}

// SelectSupplier returns the supplier with the highest value score. The first
// supplier wins ties. Suppliers with a non-positive price are ignored.
func SelectSupplier(suppliers []domain.Supplier) (domain.Supplier, bool) {
	var (
		best  domain.Supplier
		score float64
		found bool
	)
	for _, s := range suppliers {
		if s.PricePerUnit <= 0 {
			continue
		}
		sc := SupplierValueScore(s)
		if !found || sc > score {
			best, score, found = s, sc, true
		}
	}
	return best, found
}

// ClassifyInventory picks the status for a stock position. The reorder point
// check always wins over the days-of-stock checks.
func ClassifyInventory(currentStock, reorderPoint, daysOfStock float64) domain.InventoryStatus {
	switch {
	case currentStock < reorderPoint:
		return domain.InventoryUnderstock
	case daysOfStock > OverstockDays:
		return domain.InventoryOverstock
	case daysOfStock < LowStockDays:
		return domain.InventoryLowStock
	default:
		return domain.InventoryOptimal
	}
}

// Optimize returns one result per product that has both an inventory row and
// at least one supplier. Other products are skipped silently.
func (o *Optimizer) Optimize(snapshot domain.DataSnapshot) []domain.OptimizationResult {
	idx := indexSnapshot(snapshot)
	results := make([]domain.OptimizationResult, 0, len(snapshot.Products))

	for _, p := range snapshot.Products {
		inv, ok := idx.inventory[p.ProductID]
		if !ok {
			continue
		}
		supplier, ok := SelectSupplier(idx.suppliers[p.ProductID])
		if !ok {
			continue
		}

		results = append(results, OptimizeProduct(p, inv, supplier, idx.demand[p.ProductID]))
	}
	return results
}

// OptimizeProduct computes the EOQ recommendation for a single product.
func OptimizeProduct(p domain.Product, inv domain.InventoryRecord, supplier domain.Supplier, history []domain.DemandRecord) domain.OptimizationResult {
	avgDaily := recentAverage(history, OptimizerDemandWindow, DefaultDailyDemand)

	eoq := EOQ(avgDaily, supplier.PricePerUnit)
	maxOrderQty := math.Max(0, inv.WarehouseCapacity-inv.CurrentStock)
	optimalQty := math.Min(math.Ceil(eoq), maxOrderQty)

	totalCost := decimal.NewFromFloat(optimalQty).
		Mul(decimal.NewFromFloat(supplier.PricePerUnit)).
		Round(2).
		InexactFloat64()

	daysOfStock := math.Inf(1)
	if avgDaily > 0 {
		daysOfStock = (inv.CurrentStock + optimalQty) / avgDaily
	}

	status := ClassifyInventory(inv.CurrentStock, inv.EffectiveReorderPoint(), daysOfStock)

	reported := float64(noDemandDaysOfStock)
	if !math.IsInf(daysOfStock, 0) {
		reported = round(daysOfStock)
	}

	return domain.OptimizationResult{
		ProductID:       p.ProductID,
		ProductName:     p.Name,
		CurrentStock:    inv.CurrentStock,
		OptimalQuantity: optimalQty,
		TotalCost:       totalCost,
		SupplierName:    supplier.Name,
		DaysOfStock:     reported,
		Status:          status,
		Warning:         status.Warning(),
	}
}

// InventoryStatusRows enriches every inventory row that has a product with
// 7-day average demand, days of stock and utilization percentage.
func InventoryStatusRows(snapshot domain.DataSnapshot) []domain.InventoryStatusRow {
	idx := indexSnapshot(snapshot)
	rows := make([]domain.InventoryStatusRow, 0, len(snapshot.Inventory))

	for _, inv := range snapshot.Inventory {
		p, ok := idx.products[inv.ProductID]
		if !ok {
			continue
		}

		avgDaily := recentAverage(idx.demand[inv.ProductID], ProcurementDemandWindow, 0)
		daysOfStock := float64(noDemandDaysOfStock)
		if avgDaily > 0 {
			daysOfStock = inv.CurrentStock / avgDaily
		}

		var utilization float64
		if inv.WarehouseCapacity > 0 {
			utilization = inv.CurrentStock / inv.WarehouseCapacity * 100
		}

		rows = append(rows, domain.InventoryStatusRow{
			InventoryRecord: inv,
			ProductName:     p.Name,
			DaysOfStock:     round(daysOfStock),
			UtilizationRate: round(utilization),
			AvgDailyDemand:  round(avgDaily),
		})
	}
	return rows
}
