package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/backend"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/cache"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/metrics"
)

// ErrInvalidInput marks requests rejected before any work was done.
var ErrInvalidInput = errors.New("invalid input")

// Backend is the forecasting/optimization/chatbot service the dashboard proxies to.
type Backend interface {
	DetectAnomalies(ctx context.Context) (*backend.DetectAnomaliesResponse, error)
	RawAnomalyRows(ctx context.Context) ([]backend.RawAnomalyRow, error)
	Predict(ctx context.Context, productID string) (*backend.PredictResponse, error)
	History(ctx context.Context, productID string) (*backend.HistoryResponse, error)
	OptimizeInventory(ctx context.Context) (*backend.OptimizeResponse, error)
	RecommendProcurement(ctx context.Context, productID string) (*backend.RecommendResponse, error)
	ProcurementSuggestions(ctx context.Context) (*backend.SuggestionsResponse, error)
	DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error)
	Ask(ctx context.Context, question, screenContent string) (*backend.AskResponse, error)
	Products(ctx context.Context) ([]domain.Product, error)
	LoadData(ctx context.Context) (*backend.LoadDataResponse, error)
	UploadCSV(ctx context.Context, filename string, r io.Reader) (*backend.UploadResponse, error)
}

var _ Backend = (*backend.Client)(nil)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// withLock runs fn while holding the named mutation lock.
func withLock(ctx context.Context, locker cache.Locker, name string, fn func() error) error {
	release, err := locker.Acquire(ctx, name)
	if err != nil {
		return fmt.Errorf("acquire %s lock: %w", name, err)
	}
	defer release(context.WithoutCancel(ctx))
	return fn()
}

func orNoopLocker(l cache.Locker) cache.Locker {
	if l == nil {
		return cache.NewNoopLocker()
	}
	return l
}

func orRegistry(reg *metrics.Registry) *metrics.Registry {
	if reg == nil {
		return metrics.NewRegistry()
	}
	return reg
}
