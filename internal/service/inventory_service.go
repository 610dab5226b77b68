package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/analytics"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/backend"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/repository"
)

type InventoryService struct {
	store     repository.Store
	backend   Backend
	optimizer *analytics.Optimizer
}

func NewInventoryService(store repository.Store, be Backend) *InventoryService {
	return &InventoryService{store: store, backend: be, optimizer: analytics.NewOptimizer()}
}

// Optimize computes EOQ order recommendations for every product that has an
// inventory row and at least one supplier.
func (s *InventoryService) Optimize(ctx context.Context) ([]domain.OptimizationResult, error) {
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return s.optimizer.Optimize(snapshot), nil
}

// OptimizeRemote returns the backend solver's recommendations.
func (s *InventoryService) OptimizeRemote(ctx context.Context) (*backend.OptimizeResponse, error) {
	return s.backend.OptimizeInventory(ctx)
}

// Status returns inventory rows with days of stock and utilization.
func (s *InventoryService) Status(ctx context.Context) ([]domain.InventoryStatusRow, error) {
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return analytics.InventoryStatusRows(snapshot), nil
}

// UpdateStock applies a partial stock update over the product's inventory
// row. A product without a row needs a positive warehouse capacity.
func (s *InventoryService) UpdateStock(ctx context.Context, productID string, upd domain.StockUpdate) (*domain.InventoryRecord, error) {
	if productID == "" {
		return nil, invalid("product_id is required")
	}
	if upd.CurrentStock == nil && upd.WarehouseCapacity == nil && upd.ReorderPoint == nil {
		return nil, invalid("no inventory fields to update")
	}
	if negative(upd.CurrentStock) || negative(upd.ReorderPoint) {
		return nil, invalid("current_stock and reorder_point must not be negative")
	}
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	inv := domain.InventoryRecord{ProductID: productID}
	existing, err := s.store.GetInventory(ctx, productID)
	switch {
	case err == nil:
		inv = *existing
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	if upd.CurrentStock != nil {
		inv.CurrentStock = *upd.CurrentStock
	}
	if upd.WarehouseCapacity != nil {
		inv.WarehouseCapacity = *upd.WarehouseCapacity
	}
	if upd.ReorderPoint != nil {
		rp := *upd.ReorderPoint
		inv.ReorderPoint = &rp
	}
	if inv.WarehouseCapacity <= 0 {
		return nil, invalid("warehouse_capacity must be greater than 0")
	}

	if err := s.store.UpsertInventory(ctx, inv); err != nil {
		return nil, fmt.Errorf("update inventory for %s: %w", productID, err)
	}
	return &inv, nil
}

func negative(v *float64) bool { return v != nil && *v < 0 }
