package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/backend"
)

func predictResponse(productID string) *backend.PredictResponse {
	return &backend.PredictResponse{
		ProductID: productID,
		Forecasts: []backend.ForecastPoint{
			{ForecastDate: "2024-04-03", PredictedDemand: 90, ConfidenceLower: 80, ConfidenceUpper: 100},
			{ForecastDate: "2024-04-02", PredictedDemand: 85, ConfidenceLower: 75, ConfidenceUpper: 95},
		},
	}
}

func TestForecastService_GenerateReplacesProductForecasts(t *testing.T) {
	ctx := context.Background()
	store := fixtureStore(t)
	be := &fakeBackend{
		predict: func(ctx context.Context, productID string) (*backend.PredictResponse, error) {
			return predictResponse(productID), nil
		},
	}
	svc := NewForecastService(store, be, nil, nil)
	svc.clock = fixedClock

	for i := 0; i < 2; i++ {
		res, err := svc.Generate(ctx, "P1")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if res.Count != 2 {
			t.Fatalf("expected 2 points, got %+v", res)
		}
	}

	got, err := svc.List(ctx, "P1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ForecastDate != "2024-04-02" {
		t.Fatalf("unexpected forecasts: %+v", got)
	}
	if got[0].ProductID != "P1" || got[0].CreatedAt != fixedNow.UnixMilli() {
		t.Fatalf("unexpected forecast row: %+v", got[0])
	}
}

func TestForecastService_GenerateFailureKeepsForecasts(t *testing.T) {
	ctx := context.Background()
	store := fixtureStore(t)
	fail := false
	be := &fakeBackend{
		predict: func(ctx context.Context, productID string) (*backend.PredictResponse, error) {
			if fail {
				return nil, &backend.APIError{Endpoint: "/api/predict", StatusCode: 404, Message: "Product not found"}
			}
			return predictResponse(productID), nil
		},
	}
	svc := NewForecastService(store, be, nil, nil)

	if _, err := svc.Generate(ctx, "P1"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	fail = true
	_, err := svc.Generate(ctx, "P1")
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Product not found" {
		t.Fatalf("expected wrapped APIError, got %v", err)
	}

	got, _ := svc.List(ctx, "P1")
	if len(got) != 2 {
		t.Fatalf("failed generation must keep previous forecasts, got %d", len(got))
	}
}

func TestForecastService_ConcurrentGenerateSharesRequest(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	var calls int32
	be := &fakeBackend{
		predict: func(ctx context.Context, productID string) (*backend.PredictResponse, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			return predictResponse(productID), nil
		},
	}
	svc := NewForecastService(fixtureStore(t), be, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Generate(ctx, "P1"); err != nil {
				t.Errorf("Generate: %v", err)
			}
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one backend call, got %d", got)
	}
}

func TestForecastService_CancelledCallerDoesNotFailOthers(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	be := &fakeBackend{
		predict: func(ctx context.Context, productID string) (*backend.PredictResponse, error) {
			once.Do(func() { close(entered) })
			select {
			case <-release:
				return predictResponse(productID), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	store := fixtureStore(t)
	svc := NewForecastService(store, be, nil, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.Generate(ctxA, "P1")
		errA <- err
	}()
	<-entered

	errB := make(chan error, 1)
	go func() {
		_, err := svc.Generate(context.Background(), "P1")
		errB <- err
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: want context.Canceled, got %v", err)
	}
	close(release)

	if err := <-errB; err != nil {
		t.Fatalf("second caller must not inherit the cancellation: %v", err)
	}
	if got, _ := svc.List(context.Background(), "P1"); len(got) != 2 {
		t.Fatalf("expected stored forecasts, got %+v", got)
	}
}

func TestForecastService_SharedGenerationIsBounded(t *testing.T) {
	be := &fakeBackend{
		predict: func(ctx context.Context, productID string) (*backend.PredictResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	svc := NewForecastService(fixtureStore(t), be, nil, nil)
	svc.timeout = 20 * time.Millisecond

	if _, err := svc.Generate(context.Background(), "P1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want DeadlineExceeded, got %v", err)
	}
}

func TestForecastService_RequiresProduct(t *testing.T) {
	svc := NewForecastService(fixtureStore(t), &fakeBackend{}, nil, nil)
	if _, err := svc.Generate(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.List(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
