package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/repository"
	"github.com/google/uuid"
)

const (
	productColumns   = `product_id, name, category`
	demandColumns    = `product_id, to_char(date, 'YYYY-MM-DD') AS date, demand`
	supplierColumns  = `supplier_id, name, price_per_unit, lead_time, reliability, product_id`
	inventoryColumns = `product_id, current_stock, warehouse_capacity, reorder_point`
	forecastColumns  = `product_id, to_char(forecast_date, 'YYYY-MM-DD') AS forecast_date, predicted_demand, confidence_lower, confidence_upper, created_at`
	anomalyColumns   = `id, type, severity, product_id, supplier_id, description, detected_at, value, threshold`
	suggestColumns   = `id, product_id, supplier_id, recommended_quantity, estimated_cost, eta_days, priority, created_at`
)

type store struct {
	db *DB
}

var _ repository.Store = (*store)(nil)

// NewStore returns a repository.Store backed by Postgres.
func NewStore(db *DB) repository.Store {
	return &store{db: db}
}

func (r *store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	if err := r.db.SelectContext(ctx, &out, `SELECT `+productColumns+` FROM products ORDER BY product_id`); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (r *store) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productColumns+` FROM products WHERE product_id = $1`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}
	return &p, nil
}

func (r *store) ListDemandHistory(ctx context.Context, productID string) ([]domain.DemandRecord, error) {
	return r.ListDemandRange(ctx, productID, time.Time{}, time.Time{})
}

func (r *store) ListDemandRange(ctx context.Context, productID string, from, to time.Time) ([]domain.DemandRecord, error) {
	var (
		conds []string
		args  []interface{}
	)
	if productID != "" {
		args = append(args, productID)
		conds = append(conds, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if !from.IsZero() {
		args = append(args, from.Format(domain.DemandDateLayout))
		conds = append(conds, fmt.Sprintf("date >= $%d::date", len(args)))
	}
	if !to.IsZero() {
		args = append(args, to.Format(domain.DemandDateLayout))
		conds = append(conds, fmt.Sprintf("date <= $%d::date", len(args)))
	}

	query := `SELECT ` + demandColumns + ` FROM demand_history` + whereClause(conds) + ` ORDER BY product_id, date`

	out := []domain.DemandRecord{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list demand history: %w", err)
	}
	return out, nil
}

func (r *store) ListSuppliers(ctx context.Context, productID string) ([]domain.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers`
	var args []interface{}
	if productID != "" {
		query += ` WHERE product_id = $1`
		args = append(args, productID)
	}
	query += ` ORDER BY supplier_id`

	out := []domain.Supplier{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return out, nil
}

func (r *store) GetSupplier(ctx context.Context, supplierID string) (*domain.Supplier, error) {
	var s domain.Supplier
	err := r.db.GetContext(ctx, &s, `SELECT `+supplierColumns+` FROM suppliers WHERE supplier_id = $1`, supplierID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get supplier %s: %w", supplierID, err)
	}
	return &s, nil
}

func (r *store) ListInventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	out := []domain.InventoryRecord{}
	if err := r.db.SelectContext(ctx, &out, `SELECT `+inventoryColumns+` FROM inventory ORDER BY product_id`); err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return out, nil
}

func (r *store) GetInventory(ctx context.Context, productID string) (*domain.InventoryRecord, error) {
	var inv domain.InventoryRecord
	err := r.db.GetContext(ctx, &inv, `SELECT `+inventoryColumns+` FROM inventory WHERE product_id = $1`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory %s: %w", productID, err)
	}
	return &inv, nil
}

func (r *store) UpsertInventory(ctx context.Context, inv domain.InventoryRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory (product_id, current_stock, warehouse_capacity, reorder_point)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id)
		DO UPDATE SET
			current_stock = EXCLUDED.current_stock,
			warehouse_capacity = EXCLUDED.warehouse_capacity,
			reorder_point = EXCLUDED.reorder_point
	`, inv.ProductID, inv.CurrentStock, inv.WarehouseCapacity, inv.ReorderPoint)
	if err != nil {
		return fmt.Errorf("upsert inventory %s: %w", inv.ProductID, err)
	}
	return nil
}

func (r *store) ListForecasts(ctx context.Context, productID string) ([]domain.Forecast, error) {
	out := []domain.Forecast{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+forecastColumns+` FROM forecasts WHERE product_id = $1 ORDER BY forecast_date`, productID)
	if err != nil {
		return nil, fmt.Errorf("list forecasts %s: %w", productID, err)
	}
	return out, nil
}

func (r *store) ReplaceForecasts(ctx context.Context, productID string, forecasts []domain.Forecast) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM forecasts WHERE product_id = $1`, productID); err != nil {
			return fmt.Errorf("clear forecasts: %w", err)
		}
		return insertEach(ctx, tx, `
			INSERT INTO forecasts (product_id, forecast_date, predicted_demand, confidence_lower, confidence_upper, created_at)
			VALUES ($1, $2::date, $3, $4, $5, $6)
		`, forecasts, func(f domain.Forecast) []interface{} {
			return []interface{}{productID, f.ForecastDate, f.PredictedDemand, f.ConfidenceLower, f.ConfidenceUpper, f.CreatedAt}
		})
	})
}

func (r *store) ListAnomalies(ctx context.Context) ([]domain.Anomaly, error) {
	out := []domain.Anomaly{}
	if err := r.db.SelectContext(ctx, &out, `SELECT `+anomalyColumns+` FROM anomalies ORDER BY detected_at DESC`); err != nil {
		return nil, fmt.Errorf("list anomalies: %w", err)
	}
	return out, nil
}

func (r *store) ReplaceAnomalies(ctx context.Context, anomalies []domain.Anomaly) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM anomalies`); err != nil {
			return fmt.Errorf("clear anomalies: %w", err)
		}
		return insertEach(ctx, tx, `
			INSERT INTO anomalies (`+anomalyColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, anomalies, func(a domain.Anomaly) []interface{} {
			return []interface{}{newID(a.ID), string(a.Type), string(a.Severity), a.ProductID, a.SupplierID, a.Description, a.DetectedAt, a.Value, a.Threshold}
		})
	})
}

func (r *store) ListSuggestions(ctx context.Context) ([]domain.ProcurementSuggestion, error) {
	out := []domain.ProcurementSuggestion{}
	if err := r.db.SelectContext(ctx, &out, `SELECT `+suggestColumns+` FROM procurement_suggestions ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("list procurement suggestions: %w", err)
	}
	return out, nil
}

func (r *store) ReplaceSuggestions(ctx context.Context, suggestions []domain.ProcurementSuggestion) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM procurement_suggestions`); err != nil {
			return fmt.Errorf("clear procurement suggestions: %w", err)
		}
		return insertEach(ctx, tx, `
			INSERT INTO procurement_suggestions (`+suggestColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, suggestions, func(s domain.ProcurementSuggestion) []interface{} {
			return []interface{}{newID(s.ID), s.ProductID, s.SupplierID, s.RecommendedQuantity, s.EstimatedCost, s.ETADays, string(s.Priority), s.CreatedAt}
		})
	})
}

func (r *store) ReplaceCatalog(ctx context.Context, products []domain.Product, demand []domain.DemandRecord) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := clearTables(ctx, tx, "demand_history", "products"); err != nil {
			return err
		}
		if err := insertProducts(ctx, tx, products); err != nil {
			return err
		}
		return insertDemand(ctx, tx, demand)
	})
}

func (r *store) LoadDataset(ctx context.Context, ds domain.Dataset) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := clearTables(ctx, tx, "demand_history", "suppliers", "inventory", "products"); err != nil {
			return err
		}
		if err := insertProducts(ctx, tx, ds.Products); err != nil {
			return err
		}
		if err := insertDemand(ctx, tx, ds.Demand); err != nil {
			return err
		}
		err := insertEach(ctx, tx, `
			INSERT INTO suppliers (`+supplierColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, ds.Suppliers, func(s domain.Supplier) []interface{} {
			return []interface{}{s.SupplierID, s.Name, s.PricePerUnit, s.LeadTime, s.Reliability, s.ProductID}
		})
		if err != nil {
			return err
		}
		return insertEach(ctx, tx, `
			INSERT INTO inventory (`+inventoryColumns+`)
			VALUES ($1, $2, $3, $4)
		`, ds.Inventory, func(inv domain.InventoryRecord) []interface{} {
			return []interface{}{inv.ProductID, inv.CurrentStock, inv.WarehouseCapacity, inv.ReorderPoint}
		})
	})
}

// Snapshot reads the source tables inside one repeatable-read transaction.
func (r *store) Snapshot(ctx context.Context) (domain.DataSnapshot, error) {
	var snap domain.DataSnapshot

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return snap, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	snap.Products = []domain.Product{}
	snap.Demand = []domain.DemandRecord{}
	snap.Suppliers = []domain.Supplier{}
	snap.Inventory = []domain.InventoryRecord{}

	if err := tx.SelectContext(ctx, &snap.Products, `SELECT `+productColumns+` FROM products ORDER BY product_id`); err != nil {
		return snap, fmt.Errorf("snapshot products: %w", err)
	}
	if err := tx.SelectContext(ctx, &snap.Demand, `SELECT `+demandColumns+` FROM demand_history ORDER BY product_id, date`); err != nil {
		return snap, fmt.Errorf("snapshot demand: %w", err)
	}
	if err := tx.SelectContext(ctx, &snap.Suppliers, `SELECT `+supplierColumns+` FROM suppliers ORDER BY supplier_id`); err != nil {
		return snap, fmt.Errorf("snapshot suppliers: %w", err)
	}
	if err := tx.SelectContext(ctx, &snap.Inventory, `SELECT `+inventoryColumns+` FROM inventory ORDER BY product_id`); err != nil {
		return snap, fmt.Errorf("snapshot inventory: %w", err)
	}

	return snap, tx.Commit()
}

func insertProducts(ctx context.Context, tx *sql.Tx, products []domain.Product) error {
	return insertEach(ctx, tx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3)
	`, products, func(p domain.Product) []interface{} {
		return []interface{}{p.ProductID, p.Name, p.Category}
	})
}

func insertDemand(ctx context.Context, tx *sql.Tx, demand []domain.DemandRecord) error {
	return insertEach(ctx, tx, `
		INSERT INTO demand_history (product_id, date, demand)
		VALUES ($1, $2::date, $3)
		ON CONFLICT (product_id, date) DO UPDATE SET demand = EXCLUDED.demand
	`, demand, func(d domain.DemandRecord) []interface{} {
		return []interface{}{d.ProductID, d.Date, d.Demand}
	})
}

func clearTables(ctx context.Context, tx *sql.Tx, tables ...string) error {
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// insertEach runs one prepared insert per row inside tx.
func insertEach[T any](ctx context.Context, tx *sql.Tx, query string, rows []T, args func(T) []interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, args(row)...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}
	return nil
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}
