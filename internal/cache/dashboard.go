package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	dashboardSummaryKeyPrefix = "dashboard:summary"
	anomalyStatusKey          = "anomalies:status"
)

// DashboardSummaryCache holds the backend dashboard summary between refreshes.
type DashboardSummaryCache interface {
	GetSummary(ctx context.Context) (*domain.DashboardSummary, bool, error)
	SetSummary(ctx context.Context, summary *domain.DashboardSummary) error
	InvalidateAll(ctx context.Context) error
}

// AnomalyStatusCache holds the notification-bar status of the current
// anomaly snapshot. It is invalidated whenever detection replaces the snapshot.
type AnomalyStatusCache interface {
	GetStatus(ctx context.Context) (*domain.AnomalyStatus, bool, error)
	SetStatus(ctx context.Context, status *domain.AnomalyStatus) error
	Invalidate(ctx context.Context) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

func NewDashboardCache(cfg config.CacheConfig) (DashboardSummaryCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisDashboardCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopDashboardCache() DashboardSummaryCache {
	return &noopDashboardCache{}
}

func (c *redisDashboardCache) GetSummary(ctx context.Context) (*domain.DashboardSummary, bool, error) {
	var summary domain.DashboardSummary
	ok, err := getJSON(ctx, c.client, dashboardSummaryKeyPrefix+":default", &summary)
	if err != nil || !ok {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *redisDashboardCache) SetSummary(ctx context.Context, summary *domain.DashboardSummary) error {
	return setJSON(ctx, c.client, dashboardSummaryKeyPrefix+":default", summary, c.ttl)
}

func (c *redisDashboardCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, dashboardSummaryKeyPrefix, scanBatchSize)
}

func (n *noopDashboardCache) GetSummary(ctx context.Context) (*domain.DashboardSummary, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) SetSummary(ctx context.Context, summary *domain.DashboardSummary) error {
	return nil
}

func (n *noopDashboardCache) InvalidateAll(ctx context.Context) error {
	return nil
}

type redisAnomalyStatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnomalyStatusCache struct{}

func NewAnomalyStatusCache(cfg config.CacheConfig) (AnomalyStatusCache, error) {
	if !cfg.Enabled {
		return &noopAnomalyStatusCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnomalyStatusCache{client: client, ttl: ttl}, nil
}

func NewNoopAnomalyStatusCache() AnomalyStatusCache {
	return &noopAnomalyStatusCache{}
}

func (c *redisAnomalyStatusCache) GetStatus(ctx context.Context) (*domain.AnomalyStatus, bool, error) {
	var status domain.AnomalyStatus
	ok, err := getJSON(ctx, c.client, anomalyStatusKey, &status)
	if err != nil || !ok {
		return nil, false, err
	}
	return &status, true, nil
}

func (c *redisAnomalyStatusCache) SetStatus(ctx context.Context, status *domain.AnomalyStatus) error {
	return setJSON(ctx, c.client, anomalyStatusKey, status, c.ttl)
}

func (c *redisAnomalyStatusCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, anomalyStatusKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (n *noopAnomalyStatusCache) GetStatus(ctx context.Context) (*domain.AnomalyStatus, bool, error) {
	return nil, false, nil
}

func (n *noopAnomalyStatusCache) SetStatus(ctx context.Context, status *domain.AnomalyStatus) error {
	return nil
}

func (n *noopAnomalyStatusCache) Invalidate(ctx context.Context) error {
	return nil
}
