package service

import (
	"context"
	"errors"
	"testing"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/repository"
)

func TestInventoryService_OptimizeAndStatus(t *testing.T) {
	ctx := context.Background()
	svc := NewInventoryService(fixtureStore(t), nil)

	results, err := svc.Optimize(ctx)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if len(results) != 1 || results[0].ProductName != "Laptop" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].OptimalQuantity <= 0 || results[0].OptimalQuantity > 950 {
		t.Fatalf("optimal quantity must respect free capacity, got %v", results[0].OptimalQuantity)
	}

	rows, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(rows) != 1 || rows[0].AvgDailyDemand != 100 || rows[0].DaysOfStock != 1 || rows[0].UtilizationRate != 5 {
		t.Fatalf("unexpected status rows: %+v", rows)
	}
}

func TestInventoryService_UpdateStock(t *testing.T) {
	ctx := context.Background()
	store := fixtureStore(t)
	svc := NewInventoryService(store, nil)
	f := domain.Float64Ptr

	tests := []struct {
		name    string
		product string
		upd     domain.StockUpdate
		wantErr error
	}{
		{"negative stock", "P1", domain.StockUpdate{CurrentStock: f(-1)}, ErrInvalidInput},
		{"empty update", "P1", domain.StockUpdate{}, ErrInvalidInput},
		{"zero capacity", "P1", domain.StockUpdate{WarehouseCapacity: f(0)}, ErrInvalidInput},
		{"unknown product", "NOPE", domain.StockUpdate{CurrentStock: f(1)}, repository.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.UpdateStock(ctx, tt.product, tt.upd); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	_, _ = svc.UpdateStock(ctx, "P1", domain.StockUpdate{ReorderPoint: f(40)})
	got, err := svc.UpdateStock(ctx, "P1", domain.StockUpdate{CurrentStock: f(400)})
	if err != nil {
		t.Fatalf("UpdateStock: %v", err)
	}
	inv, _ := store.GetInventory(ctx, "P1")
	if inv.CurrentStock != 400 || inv.WarehouseCapacity != 1000 || inv.ReorderPoint == nil || *inv.ReorderPoint != 40 {
		t.Fatalf("partial update must keep stored fields: %+v", inv)
	}
	if got.WarehouseCapacity != 1000 {
		t.Fatalf("returned row = %+v", got)
	}
}

func TestInventoryService_UpdateStockCreatesRow(t *testing.T) {
	ctx := context.Background()
	store := fixtureStore(t)
	_ = store.LoadDataset(ctx, domain.Dataset{Products: []domain.Product{{ProductID: "P2", Name: "Mouse"}}})
	svc := NewInventoryService(store, nil)

	if _, err := svc.UpdateStock(ctx, "P2", domain.StockUpdate{CurrentStock: domain.Float64Ptr(5)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("new row without capacity must be rejected, got %v", err)
	}
	if _, err := svc.UpdateStock(ctx, "P2", domain.StockUpdate{CurrentStock: domain.Float64Ptr(5), WarehouseCapacity: domain.Float64Ptr(50)}); err != nil {
		t.Fatalf("UpdateStock: %v", err)
	}
	if inv, err := store.GetInventory(ctx, "P2"); err != nil || inv.WarehouseCapacity != 50 {
		t.Fatalf("row not created: %+v %v", inv, err)
	}
}
