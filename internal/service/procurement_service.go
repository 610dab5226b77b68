package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/analytics"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/backend"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/cache"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/metrics"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

const procurementLock = "procurement"

type ProcurementService struct {
	store   repository.Store
	backend Backend
	locker  cache.Locker
	metrics *metrics.Registry
	scorer  *analytics.Scorer
}

func NewProcurementService(store repository.Store, be Backend, locker cache.Locker, reg *metrics.Registry) *ProcurementService {
	return &ProcurementService{
		store:   store,
		backend: be,
		locker:  orNoopLocker(locker),
		metrics: orRegistry(reg),
		scorer:  analytics.NewScorer(),
	}
}

// Generate replaces the suggestion snapshot with fresh reorder suggestions.
func (s *ProcurementService) Generate(ctx context.Context) (*domain.MutationResult, error) {
	var suggestions []domain.ProcurementSuggestion
	err := withLock(ctx, s.locker, procurementLock, func() error {
		snapshot, err := s.store.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		suggestions = s.scorer.Generate(snapshot)
		if err := s.store.ReplaceSuggestions(ctx, suggestions); err != nil {
			return fmt.Errorf("replace suggestions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SuggestionsGenerated.Add(float64(len(suggestions)))
	log.Info().Int("suggestions", len(suggestions)).Msg("procurement suggestions generated")

	return &domain.MutationResult{
		Success: true,
		Message: fmt.Sprintf("Generated %d procurement suggestions", len(suggestions)),
		Count:   len(suggestions),
	}, nil
}

// List returns the suggestion snapshot joined with product and supplier
// details, highest priority first. Suggestions whose product or supplier no
// longer exists are left out.
func (s *ProcurementService) List(ctx context.Context) ([]domain.EnrichedSuggestion, error) {
	suggestions, err := s.store.ListSuggestions(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	suppliers, err := s.store.ListSuppliers(ctx, "")
	if err != nil {
		return nil, err
	}

	productNames := make(map[string]string, len(products))
	for _, p := range products {
		productNames[p.ProductID] = p.Name
	}
	supplierByID := make(map[string]domain.Supplier, len(suppliers))
	for _, sup := range suppliers {
		if _, seen := supplierByID[sup.SupplierID]; !seen {
			supplierByID[sup.SupplierID] = sup
		}
	}

	out := make([]domain.EnrichedSuggestion, 0, len(suggestions))
	for _, sg := range suggestions {
		name, ok := productNames[sg.ProductID]
		if !ok {
			continue
		}
		sup, ok := supplierByID[sg.SupplierID]
		if !ok {
			continue
		}
		out = append(out, domain.EnrichedSuggestion{
			ProcurementSuggestion: sg,
			ProductName:           name,
			SupplierName:          sup.Name,
			SupplierReliability:   sup.Reliability,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() > out[j].Priority.Rank()
	})
	return out, nil
}

// Recommend asks the backend for the best supplier of a product.
func (s *ProcurementService) Recommend(ctx context.Context, productID string) (*backend.RecommendResponse, error) {
	if productID == "" {
		return nil, invalid("product_id is required")
	}
	return s.backend.RecommendProcurement(ctx, productID)
}

// RemoteSuggestions returns the backend's procurement suggestions.
func (s *ProcurementService) RemoteSuggestions(ctx context.Context) (*backend.SuggestionsResponse, error) {
	return s.backend.ProcurementSuggestions(ctx)
}
