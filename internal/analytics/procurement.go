package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// ProcurementDemandWindow is the number of recent days used to decide
	// whether a product needs reordering.
	ProcurementDemandWindow = 7
	// OrderCoverDays is how many days of demand a suggested order covers.
	OrderCoverDays        = 30
	ReorderDaysOfStock    = 7
	SuggestionsPerProduct = 2
)

// ScoredSupplier pairs a supplier with its weighted procurement score.
type ScoredSupplier struct {
	domain.Supplier
	Score float64 `json:"score"`
}

// ScoreSupplier weighs reliability (40%), price (30%) and lead time (30%).
// Higher is better.
func ScoreSupplier(s domain.Supplier) float64 {
	reliabilityScore := s.Reliability * 100
	priceScore := 100 / s.PricePerUnit
	leadTimeScore := 100 / s.LeadTime
	return reliabilityScore*0.4 + priceScore*0.3 + leadTimeScore*0.3
}

// RankSuppliers scores suppliers and sorts them best first. Equal scores keep
// their input order. Suppliers without a positive price and lead time cannot
// be scored and are left out.
func RankSuppliers(suppliers []domain.Supplier) []ScoredSupplier {
	scored := make([]ScoredSupplier, 0, len(suppliers))
	for _, s := range suppliers {
		if s.PricePerUnit <= 0 || s.LeadTime <= 0 {
			continue
		}
		scored = append(scored, ScoredSupplier{Supplier: s, Score: ScoreSupplier(s)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Scorer builds the procurement suggestion snapshot.
type Scorer struct {
	Clock func() time.Time
}

func NewScorer() *Scorer {
	return &Scorer{Clock: time.Now}
}

func (s *Scorer) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

// NeedsReorder reports whether stock is at or below the reorder point or
// covers fewer than ReorderDaysOfStock days at the given daily demand.
func NeedsReorder(inv domain.InventoryRecord, avgDailyDemand float64) bool {
	if inv.CurrentStock <= inv.EffectiveReorderPoint() {
		return true
	}
	if avgDailyDemand <= 0 {
		return false
	}
	return inv.CurrentStock/avgDailyDemand < ReorderDaysOfStock
}

// Generate returns suggestions for the top suppliers of every product that
// needs reordering. Products without an inventory row are skipped.
func (s *Scorer) Generate(snapshot domain.DataSnapshot) []domain.ProcurementSuggestion {
	idx := indexSnapshot(snapshot)
	createdAt := s.now().UnixMilli()
	suggestions := make([]domain.ProcurementSuggestion, 0)

	for _, p := range snapshot.Products {
		inv, ok := idx.inventory[p.ProductID]
		if !ok {
			continue
		}

		history := idx.demand[p.ProductID]
		avg7 := recentAverage(history, ProcurementDemandWindow, DefaultDailyDemand)
		if !NeedsReorder(inv, avg7) {
			continue
		}

		avg30 := recentAverage(history, OptimizerDemandWindow, DefaultDailyDemand)
		qty := math.Ceil(avg30 * OrderCoverDays)
		qty = math.Min(qty, math.Max(0, inv.WarehouseCapacity-inv.CurrentStock))

		priority := domain.PriorityMedium
		if inv.CurrentStock <= inv.EffectiveReorderPoint() {
			priority = domain.PriorityHigh
		}

		ranked := RankSuppliers(idx.suppliers[p.ProductID])
		for i := 0; i < len(ranked) && i < SuggestionsPerProduct; i++ {
			sup := ranked[i]
			cost := decimal.NewFromFloat(qty).
				Mul(decimal.NewFromFloat(sup.PricePerUnit)).
				Round(2).
				InexactFloat64()

			suggestions = append(suggestions, domain.ProcurementSuggestion{
				ProductID:           p.ProductID,
				SupplierID:          sup.SupplierID,
				RecommendedQuantity: qty,
				EstimatedCost:       cost,
				ETADays:             sup.LeadTime,
				Priority:            priority,
				CreatedAt:           createdAt,
			})
		}
	}
	return suggestions
}
