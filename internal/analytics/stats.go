package analytics

import (
	"math"
	"sort"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
)

// mean returns the arithmetic mean of values, or 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStdDev returns the population standard deviation around m.
func populationStdDev(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

func demands(records []domain.DemandRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Demand
	}
	return out
}

// sortedByDate returns a copy of records ordered oldest first.
func sortedByDate(records []domain.DemandRecord) []domain.DemandRecord {
	out := append([]domain.DemandRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time().Before(out[j].Time())
	})
	return out
}

// recentAverage is the mean demand of the n most recent records, or fallback
// when there are none.
func recentAverage(records []domain.DemandRecord, n int, fallback float64) float64 {
	if len(records) == 0 {
		return fallback
	}
	sorted := sortedByDate(records)
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return mean(demands(sorted))
}

// snapshotIndex groups a snapshot's rows by product for per-product passes.
type snapshotIndex struct {
	demand    map[string][]domain.DemandRecord
	suppliers map[string][]domain.Supplier
	inventory map[string]domain.InventoryRecord
	products  map[string]domain.Product
}

func indexSnapshot(s domain.DataSnapshot) snapshotIndex {
	idx := snapshotIndex{
		demand:    make(map[string][]domain.DemandRecord),
		suppliers: make(map[string][]domain.Supplier),
		inventory: make(map[string]domain.InventoryRecord, len(s.Inventory)),
		products:  make(map[string]domain.Product, len(s.Products)),
	}
	for _, d := range s.Demand {
		idx.demand[d.ProductID] = append(idx.demand[d.ProductID], d)
	}
	for _, sup := range s.Suppliers {
		idx.suppliers[sup.ProductID] = append(idx.suppliers[sup.ProductID], sup)
	}
	for _, inv := range s.Inventory {
		// first row wins, mirroring an indexed .first() lookup
		if _, ok := idx.inventory[inv.ProductID]; !ok {
			idx.inventory[inv.ProductID] = inv
		}
	}
	for _, p := range s.Products {
		idx.products[p.ProductID] = p
	}
	return idx
}

func round(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return math.Round(v)
}
