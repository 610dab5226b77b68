// backend-go/internal/repository/store.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
)

// ErrNotFound is returned by keyed lookups when no row matches.
var ErrNotFound = errors.New("not found")

// Store owns the supply-chain tables. Every Replace*/Load* call swaps the
// affected tables as a whole: readers see either the previous rows or the new
// ones, never a partially cleared table.
type Store interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)

	// ListDemandHistory returns demand for one product, or for all products
	// when productID is empty, ordered by product then date.
	ListDemandHistory(ctx context.Context, productID string) ([]domain.DemandRecord, error)
	ListDemandRange(ctx context.Context, productID string, from, to time.Time) ([]domain.DemandRecord, error)

	ListSuppliers(ctx context.Context, productID string) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, supplierID string) (*domain.Supplier, error)

	ListInventory(ctx context.Context) ([]domain.InventoryRecord, error)
	GetInventory(ctx context.Context, productID string) (*domain.InventoryRecord, error)
	UpsertInventory(ctx context.Context, inv domain.InventoryRecord) error

	ListForecasts(ctx context.Context, productID string) ([]domain.Forecast, error)
	ReplaceForecasts(ctx context.Context, productID string, forecasts []domain.Forecast) error

	ListAnomalies(ctx context.Context) ([]domain.Anomaly, error)
	ReplaceAnomalies(ctx context.Context, anomalies []domain.Anomaly) error

	ListSuggestions(ctx context.Context) ([]domain.ProcurementSuggestion, error)
	ReplaceSuggestions(ctx context.Context, suggestions []domain.ProcurementSuggestion) error

	// ReplaceCatalog clears products and demand history and inserts the given rows.
	ReplaceCatalog(ctx context.Context, products []domain.Product, demand []domain.DemandRecord) error
	// LoadDataset clears products, demand, suppliers and inventory and inserts ds.
	LoadDataset(ctx context.Context, ds domain.Dataset) error

	// Snapshot reads the source tables used by the analytics passes.
	Snapshot(ctx context.Context) (domain.DataSnapshot, error)
}
