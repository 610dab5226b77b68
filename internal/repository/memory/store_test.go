package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/repository"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	err := s.LoadDataset(context.Background(), domain.Dataset{
		Products: []domain.Product{{ProductID: "P1", Name: "Laptop"}, {ProductID: "P2", Name: "Mouse"}},
		Demand: []domain.DemandRecord{
			{ProductID: "P2", Date: "2024-01-02", Demand: 5},
			{ProductID: "P1", Date: "2024-01-03", Demand: 30},
			{ProductID: "P1", Date: "2024-01-01", Demand: 10},
			{ProductID: "P1", Date: "2024-01-02", Demand: 20},
		},
		Suppliers: []domain.Supplier{
			{SupplierID: "S1", ProductID: "P1", PricePerUnit: 10, LeadTime: 3, Reliability: 0.9},
			{SupplierID: "S2", ProductID: "P2", PricePerUnit: 2, LeadTime: 1, Reliability: 0.8},
		},
		Inventory: []domain.InventoryRecord{{ProductID: "P1", CurrentStock: 100, WarehouseCapacity: 1000}},
	})
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	return s
}

func TestKeyedLookups(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	p, err := s.GetProduct(ctx, "P1")
	if err != nil || p.Name != "Laptop" {
		t.Fatalf("GetProduct: %+v %v", p, err)
	}
	if _, err := s.GetProduct(ctx, "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := s.GetSupplier(ctx, "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := s.GetInventory(ctx, "P2"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListDemandHistory_SortedAndFiltered(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	p1, _ := s.ListDemandHistory(ctx, "P1")
	if len(p1) != 3 || p1[0].Date != "2024-01-01" || p1[2].Date != "2024-01-03" {
		t.Fatalf("unexpected P1 history: %+v", p1)
	}
	all, _ := s.ListDemandHistory(ctx, "")
	if len(all) != 4 || all[3].ProductID != "P2" {
		t.Fatalf("unexpected full history: %+v", all)
	}

	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	ranged, _ := s.ListDemandRange(ctx, "P1", from, time.Time{})
	if len(ranged) != 2 || ranged[0].Demand != 20 {
		t.Fatalf("unexpected range: %+v", ranged)
	}
}

func TestReplaceAnomalies_SwapsWholeTable(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	first := []domain.Anomaly{{Type: domain.AnomalyDemandSpike}, {Type: domain.AnomalyTrendChange}}
	if err := s.ReplaceAnomalies(ctx, first); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := s.ReplaceAnomalies(ctx, []domain.Anomaly{{Type: domain.AnomalyLowInventory}}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, _ := s.ListAnomalies(ctx)
	if len(got) != 1 || got[0].Type != domain.AnomalyLowInventory {
		t.Fatalf("snapshot accumulated: %+v", got)
	}
	if got[0].ID == "" {
		t.Fatalf("replace must assign ids")
	}
}

func TestReplaceForecasts_PerProduct(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_ = s.ReplaceForecasts(ctx, "P1", []domain.Forecast{{ForecastDate: "2024-02-02"}, {ForecastDate: "2024-02-01"}})
	_ = s.ReplaceForecasts(ctx, "P2", []domain.Forecast{{ForecastDate: "2024-02-01"}})
	_ = s.ReplaceForecasts(ctx, "P1", []domain.Forecast{{ForecastDate: "2024-03-01"}})

	p1, _ := s.ListForecasts(ctx, "P1")
	if len(p1) != 1 || p1[0].ForecastDate != "2024-03-01" || p1[0].ProductID != "P1" {
		t.Fatalf("unexpected P1 forecasts: %+v", p1)
	}
	p2, _ := s.ListForecasts(ctx, "P2")
	if len(p2) != 1 {
		t.Fatalf("P2 forecasts must survive P1 replacement: %+v", p2)
	}
}

func TestUpsertInventory(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	_ = s.UpsertInventory(ctx, domain.InventoryRecord{ProductID: "P1", CurrentStock: 5, WarehouseCapacity: 1000})
	_ = s.UpsertInventory(ctx, domain.InventoryRecord{ProductID: "P2", CurrentStock: 7, WarehouseCapacity: 100})

	inv, _ := s.ListInventory(ctx)
	if len(inv) != 2 || inv[0].CurrentStock != 5 || inv[1].ProductID != "P2" {
		t.Fatalf("unexpected inventory: %+v", inv)
	}
}

func TestListsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	products, _ := s.ListProducts(ctx)
	products[0].Name = "changed"
	again, _ := s.ListProducts(ctx)
	if again[0].Name != "Laptop" {
		t.Fatalf("caller mutation leaked into store")
	}
}

func TestConcurrentReplaceAndRead(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	full := make([]domain.Anomaly, 50)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.ReplaceAnomalies(ctx, full)
		}()
		go func() {
			defer wg.Done()
			got, _ := s.ListAnomalies(ctx)
			if len(got) != 0 && len(got) != len(full) {
				t.Errorf("observed partial snapshot of %d rows", len(got))
			}
		}()
	}
	wg.Wait()
}
