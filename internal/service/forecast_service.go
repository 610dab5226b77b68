package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/backend"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/cache"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/metrics"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// defaultForecastTimeout bounds a shared generation once it no longer follows
// the caller's context.
const defaultForecastTimeout = 2 * time.Minute

type ForecastService struct {
	store   repository.Store
	backend Backend
	locker  cache.Locker
	metrics *metrics.Registry
	clock   func() time.Time
	timeout time.Duration

	inflight singleflight.Group
}

func NewForecastService(store repository.Store, be Backend, locker cache.Locker, reg *metrics.Registry) *ForecastService {
	return &ForecastService{
		store:   store,
		backend: be,
		locker:  orNoopLocker(locker),
		metrics: orRegistry(reg),
		clock:   time.Now,
		timeout: defaultForecastTimeout,
	}
}

// Generate fetches a fresh forecast for the product and replaces its stored
// forecasts. Concurrent calls for the same product share one backend request;
// a caller that gives up does not cancel the shared request for the others.
func (s *ForecastService) Generate(ctx context.Context, productID string) (*domain.MutationResult, error) {
	if productID == "" {
		return nil, invalid("product_id is required")
	}

	ch := s.inflight.DoChan(productID, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.generate(shared, productID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Debug().Str("product_id", productID).Msg("forecast generation shared with concurrent caller")
		}
		result := *res.Val.(*domain.MutationResult)
		return &result, nil
	}
}

func (s *ForecastService) generate(ctx context.Context, productID string) (*domain.MutationResult, error) {
	resp, err := s.backend.Predict(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("generate forecast for %s: %w", productID, err)
	}

	createdAt := s.clock().UnixMilli()
	forecasts := make([]domain.Forecast, 0, len(resp.Forecasts))
	for _, f := range resp.Forecasts {
		forecasts = append(forecasts, domain.Forecast{
			ProductID:       productID,
			ForecastDate:    f.ForecastDate,
			PredictedDemand: f.PredictedDemand,
			ConfidenceLower: f.ConfidenceLower,
			ConfidenceUpper: f.ConfidenceUpper,
			CreatedAt:       createdAt,
		})
	}

	err = withLock(ctx, s.locker, "forecasts:"+productID, func() error {
		if err := s.store.ReplaceForecasts(ctx, productID, forecasts); err != nil {
			return fmt.Errorf("replace forecasts for %s: %w", productID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ForecastsGenerated.Inc()
	log.Info().Str("product_id", productID).Int("points", len(forecasts)).Msg("forecast generated")

	return &domain.MutationResult{
		Success: true,
		Message: "Forecast generated successfully",
		Count:   len(forecasts),
	}, nil
}

func (s *ForecastService) List(ctx context.Context, productID string) ([]domain.Forecast, error) {
	if productID == "" {
		return nil, invalid("product_id is required")
	}
	return s.store.ListForecasts(ctx, productID)
}

// History returns the demand history the backend trained on.
func (s *ForecastService) History(ctx context.Context, productID string) (*backend.HistoryResponse, error) {
	if productID == "" {
		return nil, invalid("product_id is required")
	}
	return s.backend.History(ctx, productID)
}
