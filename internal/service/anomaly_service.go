package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/analytics"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/backend"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/cache"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/metrics"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

const anomaliesLock = "anomalies"

type AnomalyService struct {
	store    repository.Store
	backend  Backend
	cache    cache.AnomalyStatusCache
	locker   cache.Locker
	metrics  *metrics.Registry
	detector *analytics.Detector
}

func NewAnomalyService(store repository.Store, be Backend, statusCache cache.AnomalyStatusCache, locker cache.Locker, reg *metrics.Registry) *AnomalyService {
	if statusCache == nil {
		statusCache = cache.NewNoopAnomalyStatusCache()
	}
	return &AnomalyService{
		store:    store,
		backend:  be,
		cache:    statusCache,
		locker:   orNoopLocker(locker),
		metrics:  orRegistry(reg),
		detector: analytics.NewDetector(),
	}
}

// Detect recomputes the anomaly snapshot from the current data and replaces
// the stored one.
func (s *AnomalyService) Detect(ctx context.Context) (*domain.MutationResult, error) {
	var anomalies []domain.Anomaly
	err := withLock(ctx, s.locker, anomaliesLock, func() error {
		snapshot, err := s.store.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		anomalies = s.detector.Detect(snapshot)
		return s.replace(ctx, anomalies)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.DetectionRuns.Inc()
	for _, a := range anomalies {
		s.metrics.AnomaliesDetected.WithLabelValues(string(a.Type), string(a.Severity)).Inc()
	}
	log.Info().Int("anomalies", len(anomalies)).Msg("anomaly detection completed")

	return &domain.MutationResult{
		Success: true,
		Message: fmt.Sprintf("Detected %d anomalies", len(anomalies)),
		Count:   len(anomalies),
	}, nil
}

// DetectWithModel asks the backend's anomaly model for flagged products and
// stores them as the anomaly snapshot.
func (s *AnomalyService) DetectWithModel(ctx context.Context) (*domain.MutationResult, error) {
	resp, err := s.backend.DetectAnomalies(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect anomalies with model: %w", err)
	}

	now := s.detector.Clock
	if now == nil {
		now = time.Now
	}
	anomalies := fromModel(resp.Anomalies, now())

	err = withLock(ctx, s.locker, anomaliesLock, func() error {
		return s.replace(ctx, anomalies)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.DetectionRuns.Inc()
	for _, a := range anomalies {
		s.metrics.AnomaliesDetected.WithLabelValues(string(a.Type), string(a.Severity)).Inc()
	}
	log.Info().Int("anomalies", len(anomalies)).Int("checked", resp.TotalChecked).Msg("model anomaly detection completed")

	return &domain.MutationResult{
		Success: true,
		Message: fmt.Sprintf("Model flagged %d of %d products", len(anomalies), resp.TotalChecked),
		Count:   len(anomalies),
	}, nil
}

func fromModel(rows []backend.ModelAnomaly, now time.Time) []domain.Anomaly {
	out := make([]domain.Anomaly, 0, len(rows))
	for _, r := range rows {
		description := r.Description
		if description == "" {
			description = r.Reason
		}
		value := r.Value
		if value == nil {
			value = r.AnomalyScore
		}

		a := domain.Anomaly{
			Type:        domain.AnomalySupplyChain,
			Severity:    domain.ParseSeverity(r.Severity),
			Description: description,
			DetectedAt:  now.UnixMilli(),
			Value:       value,
			Threshold:   r.Threshold,
		}
		if r.ProductID != "" {
			a.ProductID = domain.StringPtr(r.ProductID)
		}
		out = append(out, a)
	}
	return out
}

func (s *AnomalyService) replace(ctx context.Context, anomalies []domain.Anomaly) error {
	if err := s.store.ReplaceAnomalies(ctx, anomalies); err != nil {
		return fmt.Errorf("replace anomalies: %w", err)
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("anomalies: cache invalidate status failed")
	}
	return nil
}

// List returns the anomaly snapshot, newest first, with product and supplier
// names resolved. Names are nil when the referenced row no longer exists.
func (s *AnomalyService) List(ctx context.Context) ([]domain.EnrichedAnomaly, error) {
	anomalies, err := s.store.ListAnomalies(ctx)
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
	supplierNames := make(map[string]string, len(suppliers))
	for _, sup := range suppliers {
		if _, seen := supplierNames[sup.SupplierID]; !seen {
			supplierNames[sup.SupplierID] = sup.Name
		}
	}

	out := make([]domain.EnrichedAnomaly, 0, len(anomalies))
	for _, a := range anomalies {
		e := domain.EnrichedAnomaly{Anomaly: a}
		if a.ProductID != nil {
			if name, ok := productNames[*a.ProductID]; ok {
				e.ProductName = domain.StringPtr(name)
			}
		}
		if a.SupplierID != nil {
			if name, ok := supplierNames[*a.SupplierID]; ok {
				e.SupplierName = domain.StringPtr(name)
			}
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DetectedAt > out[j].DetectedAt
	})
	return out, nil
}

// Status summarizes the anomaly snapshot for the notification bar.
func (s *AnomalyService) Status(ctx context.Context) (*domain.AnomalyStatus, error) {
	if status, ok, err := s.cache.GetStatus(ctx); err == nil && ok {
		s.metrics.CacheHits.WithLabelValues("anomaly_status", "hit").Inc()
		return status, nil
	} else if err != nil {
		s.metrics.CacheHits.WithLabelValues("anomaly_status", "error").Inc()
		log.Warn().Err(err).Msg("anomalies: cache get status failed")
	} else {
		s.metrics.CacheHits.WithLabelValues("anomaly_status", "miss").Inc()
	}

	anomalies, err := s.store.ListAnomalies(ctx)
	if err != nil {
		return nil, err
	}
	status := analytics.SummarizeAnomalies(anomalies)

	if err := s.cache.SetStatus(ctx, &status); err != nil {
		log.Warn().Err(err).Msg("anomalies: cache set status failed")
	}
	return &status, nil
}

// RawRows returns the backend's anomaly model input rows.
func (s *AnomalyService) RawRows(ctx context.Context) ([]backend.RawAnomalyRow, error) {
	return s.backend.RawAnomalyRows(ctx)
}
