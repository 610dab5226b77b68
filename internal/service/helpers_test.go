package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/backend"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/metrics"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/repository/memory"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/storage"
)

var fixedNow = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// fakeBackend implements only the calls a test sets; anything else panics
// through the nil embedded interface.
type fakeBackend struct {
	Backend

	detect      func(ctx context.Context) (*backend.DetectAnomaliesResponse, error)
	predict     func(ctx context.Context, productID string) (*backend.PredictResponse, error)
	summary     func(ctx context.Context) (*domain.DashboardSummary, error)
	products    func(ctx context.Context) ([]domain.Product, error)
	loadData    func(ctx context.Context) (*backend.LoadDataResponse, error)
	upload      func(ctx context.Context, filename string, r io.Reader) (*backend.UploadResponse, error)
	recommend   func(ctx context.Context, productID string) (*backend.RecommendResponse, error)
	askQuestion func(ctx context.Context, question, screen string) (*backend.AskResponse, error)
}

func (f *fakeBackend) DetectAnomalies(ctx context.Context) (*backend.DetectAnomaliesResponse, error) {
	return f.detect(ctx)
}

func (f *fakeBackend) Predict(ctx context.Context, productID string) (*backend.PredictResponse, error) {
	return f.predict(ctx, productID)
}

func (f *fakeBackend) DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	return f.summary(ctx)
}

func (f *fakeBackend) Products(ctx context.Context) ([]domain.Product, error) {
	return f.products(ctx)
}

func (f *fakeBackend) LoadData(ctx context.Context) (*backend.LoadDataResponse, error) {
	return f.loadData(ctx)
}

func (f *fakeBackend) UploadCSV(ctx context.Context, filename string, r io.Reader) (*backend.UploadResponse, error) {
	return f.upload(ctx, filename, r)
}

func (f *fakeBackend) RecommendProcurement(ctx context.Context, productID string) (*backend.RecommendResponse, error) {
	return f.recommend(ctx, productID)
}

func (f *fakeBackend) Ask(ctx context.Context, question, screen string) (*backend.AskResponse, error) {
	return f.askQuestion(ctx, question, screen)
}

type memoryStatusCache struct {
	mu            sync.Mutex
	status        *domain.AnomalyStatus
	sets          int
	invalidations int
}

func (c *memoryStatusCache) GetStatus(ctx context.Context) (*domain.AnomalyStatus, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == nil {
		return nil, false, nil
	}
	s := *c.status
	return &s, true, nil
}

func (c *memoryStatusCache) SetStatus(ctx context.Context, status *domain.AnomalyStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := *status
	c.status = &s
	c.sets++
	return nil
}

func (c *memoryStatusCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = nil
	c.invalidations++
	return nil
}

type memorySummaryCache struct {
	summary *domain.DashboardSummary
}

func (c *memorySummaryCache) GetSummary(ctx context.Context) (*domain.DashboardSummary, bool, error) {
	if c.summary == nil {
		return nil, false, nil
	}
	return c.summary, true, nil
}

func (c *memorySummaryCache) SetSummary(ctx context.Context, summary *domain.DashboardSummary) error {
	c.summary = summary
	return nil
}

func (c *memorySummaryCache) InvalidateAll(ctx context.Context) error {
	c.summary = nil
	return nil
}

var _ storage.Archiver = (*memoryObjects)(nil)

type memoryObjects struct {
	objects map[string][]byte
	err     error
}

func (m *memoryObjects) UploadObject(ctx context.Context, key string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

// fixtureStore holds one product with a demand spike on its first day, a
// low-reliability supplier, a reliable supplier and a nearly empty warehouse.
func fixtureStore(t *testing.T) *memory.Store {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	demand := make([]domain.DemandRecord, 30)
	for i := range demand {
		demand[i] = domain.DemandRecord{
			ProductID: "P1",
			Date:      start.AddDate(0, 0, i).Format(domain.DemandDateLayout),
			Demand:    100,
		}
	}
	demand[0].Demand = 500

	s := memory.NewStore()
	err := s.LoadDataset(context.Background(), domain.Dataset{
		Products: []domain.Product{{ProductID: "P1", Name: "Laptop"}},
		Demand:   demand,
		Suppliers: []domain.Supplier{
			{SupplierID: "S1", Name: "Shaky", ProductID: "P1", PricePerUnit: 10, LeadTime: 3, Reliability: 0.75},
			{SupplierID: "S2", Name: "Solid", ProductID: "P1", PricePerUnit: 12, LeadTime: 2, Reliability: 0.95},
		},
		Inventory: []domain.InventoryRecord{{ProductID: "P1", CurrentStock: 50, WarehouseCapacity: 1000}},
	})
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	return s
}

func newTestRegistry() *metrics.Registry {
	return metrics.NewRegistry()
}
