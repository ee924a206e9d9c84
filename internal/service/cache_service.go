package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/uniplan/timetable-api/pkg/errors"
)

// Cache key tags. Every successful mutation invalidates whole tags rather
// than patching entries; the next read re-fetches authoritative state.
const (
	CacheKeyPeriodAllocations   = "allocations:period:"   // + periodID
	CacheKeyProposalAllocations = "allocations:proposal:" // + proposalID
	CacheKeyProposal            = "proposal:"             // + proposalID
	CacheKeyProposalList        = "proposals:"            // list queries
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	catalogTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL, catalogTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if catalogTTL <= 0 {
		catalogTTL = time.Hour
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, catalogTTL: catalogTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// CatalogTTL returns the slot catalog retention period.
func (s *CacheService) CatalogTTL() time.Duration {
	if s == nil {
		return time.Hour
	}
	return s.catalogTTL
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(false, duration)
			}
			return false, nil
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false, duration)
		}
		if s.logger != nil {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false, err
	}
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(true, duration)
	}
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	if s.metrics != nil {
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		if s.logger != nil {
			s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		}
		return err
	}
	return nil
}

// InvalidateAllocationScope drops every cache entry an allocation mutation
// can stale: the period listing, the proposal listing (when scoped), the
// proposal record itself and the proposal list aggregates.
func (s *CacheService) InvalidateAllocationScope(ctx context.Context, periodID string, proposalID *string) {
	_ = s.Invalidate(ctx, CacheKeyPeriodAllocations+periodID+"*")
	if proposalID != nil && *proposalID != "" {
		_ = s.Invalidate(ctx, CacheKeyProposalAllocations+*proposalID+"*")
		_ = s.Invalidate(ctx, CacheKeyProposal+*proposalID)
	}
	_ = s.Invalidate(ctx, CacheKeyProposalList+"*")
}

// InvalidateProposal drops the proposal record and every list containing it.
func (s *CacheService) InvalidateProposal(ctx context.Context, proposalID string) {
	_ = s.Invalidate(ctx, CacheKeyProposal+proposalID)
	_ = s.Invalidate(ctx, CacheKeyProposalList+"*")
}
