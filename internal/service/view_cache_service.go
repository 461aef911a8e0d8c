package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/perum-adp-api/internal/dto"
	"github.com/noah-isme/perum-adp-api/internal/models"
	appErrors "github.com/noah-isme/perum-adp-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheMetrics interface {
	RecordCacheOperation(hit bool, duration time.Duration)
	ObserveCacheWrite(duration time.Duration)
}

// ViewCacheService keeps the assembled, unfiltered list views of each kind
// and state. Filters are applied per request after the cached view is read,
// so one entry serves every criteria combination.
//
// The cache is best effort: read and write failures degrade to direct store
// reads with a warning log and never fail the request.
type ViewCacheService struct {
	repo    CacheRepository
	metrics cacheMetrics
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewViewCacheService constructs the view cache.
func NewViewCacheService(repo CacheRepository, metrics cacheMetrics, ttl time.Duration, logger *zap.Logger, enabled bool) *ViewCacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ViewCacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *ViewCacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// GetViews returns the cached view for one kind and state, reporting a hit.
func (s *ViewCacheService) GetViews(ctx context.Context, kind models.RecordKind, state models.RecordState) ([]dto.RecordView, bool) {
	if !s.Enabled() {
		return nil, false
	}
	start := time.Now()
	var views []dto.RecordView
	err := s.repo.Get(ctx, viewCacheKey(kind, state), &views)
	duration := time.Since(start)
	if err != nil {
		s.recordRead(false, duration)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("view cache read failed",
				zap.String("kind", string(kind)),
				zap.String("state", string(state)),
				zap.Error(err))
		}
		return nil, false
	}
	s.recordRead(true, duration)
	return views, true
}

// SetViews stores the assembled view for one kind and state.
func (s *ViewCacheService) SetViews(ctx context.Context, kind models.RecordKind, state models.RecordState, views []dto.RecordView) {
	if !s.Enabled() {
		return
	}
	start := time.Now()
	err := s.repo.Set(ctx, viewCacheKey(kind, state), views, s.ttl)
	if s.metrics != nil {
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
	if err != nil {
		s.logger.Warn("view cache write failed",
			zap.String("kind", string(kind)),
			zap.String("state", string(state)),
			zap.Error(err))
	}
}

// InvalidateKind drops both cached views of a kind. Called after every
// effective transition; failed transitions leave the cache untouched.
func (s *ViewCacheService) InvalidateKind(ctx context.Context, kind models.RecordKind) {
	if !s.Enabled() {
		return
	}
	pattern := fmt.Sprintf("records:view:%s:*", kind)
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("view cache invalidation failed",
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}

func (s *ViewCacheService) recordRead(hit bool, duration time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit, duration)
	}
}

func viewCacheKey(kind models.RecordKind, state models.RecordState) string {
	return fmt.Sprintf("records:view:%s:%s", kind, state)
}
