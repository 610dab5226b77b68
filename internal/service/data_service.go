package service

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"path"
	"sync"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/backend"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/cache"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/ingest"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/repository"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	catalogLock = "catalog"
	// MaxSyncedDemandRecords caps how many backend demand rows a sync stores.
	MaxSyncedDemandRecords = 5000
)

type DataService struct {
	store   repository.Store
	backend Backend
	locker  cache.Locker
	objects storage.Archiver
	prefix  string
	clock   func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewDataService wires the data service. objects may be nil, in which case
// uploads are not archived.
func NewDataService(store repository.Store, be Backend, locker cache.Locker, objects storage.Archiver, archivePrefix string) *DataService {
	return &DataService{
		store:   store,
		backend: be,
		locker:  orNoopLocker(locker),
		objects: objects,
		prefix:  archivePrefix,
		clock:   time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand replaces the random source used for synthetic data.
func (s *DataService) WithRand(rng *rand.Rand) *DataService {
	s.rngMu.Lock()
	s.rng = rng
	s.rngMu.Unlock()
	return s
}

func (s *DataService) Products(ctx context.Context) ([]domain.Product, error) {
	return s.store.ListProducts(ctx)
}

// DemandHistory returns demand for one product, or all products when
// productID is empty. Zero from/to leave that side of the range open.
func (s *DataService) DemandHistory(ctx context.Context, productID string, from, to time.Time) ([]domain.DemandRecord, error) {
	if from.IsZero() && to.IsZero() {
		return s.store.ListDemandHistory(ctx, productID)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, invalid("to must not be before from")
	}
	return s.store.ListDemandRange(ctx, productID, from, to)
}

func (s *DataService) Suppliers(ctx context.Context, productID string) ([]domain.Supplier, error) {
	return s.store.ListSuppliers(ctx, productID)
}

func (s *DataService) Inventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	return s.store.ListInventory(ctx)
}

// LoadSynthetic replaces products, demand, suppliers and inventory with the
// generated demo dataset.
func (s *DataService) LoadSynthetic(ctx context.Context) (*domain.MutationResult, error) {
	s.rngMu.Lock()
	ds := SyntheticDataset(s.clock(), s.rng)
	s.rngMu.Unlock()

	err := withLock(ctx, s.locker, catalogLock, func() error {
		return s.store.LoadDataset(ctx, ds)
	})
	if err != nil {
		return nil, fmt.Errorf("load synthetic data: %w", err)
	}

	log.Info().
		Int("products", len(ds.Products)).
		Int("demand", len(ds.Demand)).
		Int("suppliers", len(ds.Suppliers)).
		Msg("synthetic data loaded")

	return &domain.MutationResult{
		Success: true,
		Message: "Synthetic data loaded successfully",
		Count:   len(ds.Demand),
	}, nil
}

// SyncProducts replaces the catalog with the backend's products. Demand
// history is kept.
func (s *DataService) SyncProducts(ctx context.Context) (*domain.SyncResult, error) {
	products, err := s.backend.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sync products: %w", err)
	}
	products = normalizeProducts(products)

	var kept int
	err = withLock(ctx, s.locker, catalogLock, func() error {
		demand, err := s.store.ListDemandHistory(ctx, "")
		if err != nil {
			return err
		}
		kept = len(demand)
		return s.store.ReplaceCatalog(ctx, products, demand)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sync products: %w", err)
	}

	log.Info().Int("products", len(products)).Int("demand_kept", kept).Msg("products synced from backend")
	return &domain.SyncResult{Success: true, ProductsInserted: len(products)}, nil
}

// SyncDemand replaces products and demand with the backend's dataset,
// storing at most MaxSyncedDemandRecords demand rows.
func (s *DataService) SyncDemand(ctx context.Context) (*domain.SyncResult, error) {
	resp, err := s.backend.LoadData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sync demand data: %w", err)
	}

	products := normalizeProducts(resp.Products)
	demand := resp.DemandData
	if len(demand) > MaxSyncedDemandRecords {
		demand = demand[:MaxSyncedDemandRecords]
	}
	demand, err = normalizeDemand(demand)
	if err != nil {
		return nil, fmt.Errorf("backend returned invalid demand data: %w", err)
	}

	err = withLock(ctx, s.locker, catalogLock, func() error {
		return s.store.ReplaceCatalog(ctx, products, demand)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sync demand data: %w", err)
	}

	total := resp.TotalDemandRecords
	if total == 0 {
		total = len(resp.DemandData)
	}
	log.Info().Int("products", len(products)).Int("demand", len(demand)).Int("available", total).Msg("demand synced from backend")

	return &domain.SyncResult{
		Success:               true,
		ProductsInserted:      len(products),
		DemandRecordsInserted: len(demand),
		TotalAvailable:        total,
	}, nil
}

// backend products carry no category
func normalizeProducts(in []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(in))
	for _, p := range in {
		p.Category = nil
		out = append(out, p)
	}
	return out
}

// normalizeDemand rewrites every date as YYYY-MM-DD so stored rows sort and
// parse consistently.
func normalizeDemand(demand []domain.DemandRecord) ([]domain.DemandRecord, error) {
	out := make([]domain.DemandRecord, 0, len(demand))
	for i, d := range demand {
		if d.ProductID == "" {
			return nil, fmt.Errorf("demand[%d]: product_id is required", i)
		}
		t, err := domain.ParseDemandDate(d.Date)
		if err != nil {
			return nil, fmt.Errorf("demand[%d]: %v", i, err)
		}
		d.Date = t.Format(domain.DemandDateLayout)
		out = append(out, d)
	}
	return out, nil
}

// InsertSalesData replaces products and demand with parsed sales rows.
func (s *DataService) InsertSalesData(ctx context.Context, products []domain.Product, demand []domain.DemandRecord) (*domain.SyncResult, error) {
	for i, p := range products {
		if p.ProductID == "" {
			return nil, invalid("products[%d]: product_id is required", i)
		}
	}
	normalized, err := normalizeDemand(demand)
	if err != nil {
		return nil, invalid("%v", err)
	}
	products = normalizeProducts(products)

	err = withLock(ctx, s.locker, catalogLock, func() error {
		return s.store.ReplaceCatalog(ctx, products, normalized)
	})
	if err != nil {
		return nil, fmt.Errorf("insert sales data: %w", err)
	}

	return &domain.SyncResult{
		Success:               true,
		ProductsInserted:      len(products),
		DemandRecordsInserted: len(normalized),
	}, nil
}

// ImportSalesFile parses a CSV or XLSX sales file and stores its catalog and demand.
func (s *DataService) ImportSalesFile(ctx context.Context, name string, data []byte) (*domain.SyncResult, error) {
	parsed, err := ingest.ParseSalesFile(name, data)
	if err != nil {
		return nil, invalid("%v", err)
	}
	return s.InsertSalesData(ctx, parsed.Products, parsed.Demand)
}

// UploadCSV archives the upload when object storage is configured and
// forwards it to the backend. Spreadsheets are converted to CSV first.
func (s *DataService) UploadCSV(ctx context.Context, name string, data []byte) (*backend.UploadResponse, error) {
	if name == "" || len(data) == 0 {
		return nil, invalid("a non-empty file is required")
	}

	csvName, csvData, err := ingest.ToCSV(name, data)
	if err != nil {
		return nil, invalid("%v", err)
	}

	if s.objects != nil {
		key := path.Join(s.prefix, s.clock().UTC().Format("20060102T150405")+"_"+path.Base(csvName))
		if err := s.objects.UploadObject(ctx, key, csvData); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("upload: archive to object storage failed")
		} else {
			log.Info().Str("key", key).Int("bytes", len(csvData)).Msg("upload archived")
		}
	}

	return s.backend.UploadCSV(ctx, csvName, bytes.NewReader(csvData))
}
