package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/repository"
	"github.com/google/uuid"
)

// Store is an in-process repository.Store. Replacements build the new table
// outside the lock and swap it in under the write lock.
type Store struct {
	mu          sync.RWMutex
	products    []domain.Product
	demand      []domain.DemandRecord
	suppliers   []domain.Supplier
	inventory   []domain.InventoryRecord
	forecasts   map[string][]domain.Forecast
	anomalies   []domain.Anomaly
	suggestions []domain.ProcurementSuggestion
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{forecasts: make(map[string][]domain.Forecast)}
}

func clone[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return append(make([]T, 0, len(in)), in...)
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.products), nil
}

func (s *Store) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ProductID == productID {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ListDemandHistory(ctx context.Context, productID string) ([]domain.DemandRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DemandRecord, 0)
	for _, d := range s.demand {
		if productID == "" || d.ProductID == productID {
			out = append(out, d)
		}
	}
	sortDemand(out)
	return out, nil
}

func (s *Store) ListDemandRange(ctx context.Context, productID string, from, to time.Time) ([]domain.DemandRecord, error) {
	all, err := s.ListDemandHistory(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DemandRecord, 0, len(all))
	for _, d := range all {
		t := d.Time()
		if !from.IsZero() && t.Before(from) {
			continue
		}
		if !to.IsZero() && t.After(to) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func sortDemand(records []domain.DemandRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].ProductID != records[j].ProductID {
			return records[i].ProductID < records[j].ProductID
		}
		return records[i].Time().Before(records[j].Time())
	})
}

func (s *Store) ListSuppliers(ctx context.Context, productID string) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Supplier, 0)
	for _, sup := range s.suppliers {
		if productID == "" || sup.ProductID == productID {
			out = append(out, sup)
		}
	}
	return out, nil
}

func (s *Store) GetSupplier(ctx context.Context, supplierID string) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sup := range s.suppliers {
		if sup.SupplierID == supplierID {
			sup := sup
			return &sup, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ListInventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.inventory), nil
}

func (s *Store) GetInventory(ctx context.Context, productID string) (*domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.inventory {
		if inv.ProductID == productID {
			inv := inv
			return &inv, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) UpsertInventory(ctx context.Context, inv domain.InventoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := clone(s.inventory)
	for i := range next {
		if next[i].ProductID == inv.ProductID {
			next[i] = inv
			s.inventory = next
			return nil
		}
	}
	s.inventory = append(next, inv)
	return nil
}

func (s *Store) ListForecasts(ctx context.Context, productID string) ([]domain.Forecast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.forecasts[productID]), nil
}

func (s *Store) ReplaceForecasts(ctx context.Context, productID string, forecasts []domain.Forecast) error {
	next := make([]domain.Forecast, 0, len(forecasts))
	for _, f := range forecasts {
		f.ProductID = productID
		next = append(next, f)
	}
	sort.SliceStable(next, func(i, j int) bool { return next[i].ForecastDate < next[j].ForecastDate })

	s.mu.Lock()
	s.forecasts[productID] = next
	s.mu.Unlock()
	return nil
}

func (s *Store) ListAnomalies(ctx context.Context) ([]domain.Anomaly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.anomalies), nil
}

func (s *Store) ReplaceAnomalies(ctx context.Context, anomalies []domain.Anomaly) error {
	next := make([]domain.Anomaly, 0, len(anomalies))
	for _, a := range anomalies {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		next = append(next, a)
	}

	s.mu.Lock()
	s.anomalies = next
	s.mu.Unlock()
	return nil
}

func (s *Store) ListSuggestions(ctx context.Context) ([]domain.ProcurementSuggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.suggestions), nil
}

func (s *Store) ReplaceSuggestions(ctx context.Context, suggestions []domain.ProcurementSuggestion) error {
	next := make([]domain.ProcurementSuggestion, 0, len(suggestions))
	for _, sg := range suggestions {
		if sg.ID == "" {
			sg.ID = uuid.NewString()
		}
		next = append(next, sg)
	}

	s.mu.Lock()
	s.suggestions = next
	s.mu.Unlock()
	return nil
}

func (s *Store) ReplaceCatalog(ctx context.Context, products []domain.Product, demand []domain.DemandRecord) error {
	nextProducts := clone(products)
	nextDemand := clone(demand)

	s.mu.Lock()
	s.products = nextProducts
	s.demand = nextDemand
	s.mu.Unlock()
	return nil
}

func (s *Store) LoadDataset(ctx context.Context, ds domain.Dataset) error {
	products := clone(ds.Products)
	demand := clone(ds.Demand)
	suppliers := clone(ds.Suppliers)
	inventory := clone(ds.Inventory)

	s.mu.Lock()
	s.products = products
	s.demand = demand
	s.suppliers = suppliers
	s.inventory = inventory
	s.mu.Unlock()
	return nil
}

func (s *Store) Snapshot(ctx context.Context) (domain.DataSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.DataSnapshot{
		Products:  clone(s.products),
		Demand:    clone(s.demand),
		Suppliers: clone(s.suppliers),
		Inventory: clone(s.inventory),
	}, nil
}
