package service

import (
	"context"
	"strings"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/backend"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/cache"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/metrics"
	"github.com/rs/zerolog/log"
)

type DashboardService struct {
	backend Backend
	cache   cache.DashboardSummaryCache
	metrics *metrics.Registry
}

func NewDashboardService(be Backend, cacheImpl cache.DashboardSummaryCache, reg *metrics.Registry) *DashboardService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &DashboardService{backend: be, cache: cacheImpl, metrics: orRegistry(reg)}
}

// Summary returns the backend dashboard summary, served from the cache while fresh.
func (s *DashboardService) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	if summary, ok, err := s.cache.GetSummary(ctx); err == nil && ok {
		s.metrics.CacheHits.WithLabelValues("dashboard", "hit").Inc()
		return summary, nil
	} else if err != nil {
		s.metrics.CacheHits.WithLabelValues("dashboard", "error").Inc()
		log.Warn().Err(err).Msg("dashboard: cache get summary failed")
	} else {
		s.metrics.CacheHits.WithLabelValues("dashboard", "miss").Inc()
	}

	summary, err := s.backend.DashboardSummary(ctx)
	if err != nil {
		return nil, err
	}
	if summary.InventoryStatus == nil {
		summary.InventoryStatus = make([]domain.DashboardInventoryStatus, 0)
	}

	if err := s.cache.SetSummary(ctx, summary); err != nil {
		log.Warn().Err(err).Msg("dashboard: cache set summary failed")
	}
	return summary, nil
}

// Refresh drops the cached summary so the next read goes to the backend.
func (s *DashboardService) Refresh(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

// Ask forwards a chatbot question with the text of the screen the user is on.
func (s *DashboardService) Ask(ctx context.Context, question, screenContent string) (*backend.AskResponse, error) {
	if strings.TrimSpace(question) == "" {
		return nil, invalid("question is required")
	}
	return s.backend.Ask(ctx, question, screenContent)
}
