package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/room-booking-api/pkg/errors"
)

// Room cache keys are versioned by a generation counter. Mutations bump the counter, so a
// listing read before a write can only be stored under a retired key.
const (
	roomGenerationKey     = "rooms:generation"
	roomKeyFmt            = "rooms:v%d:%s"
	roomListCacheKey      = "list"
	roomScheduleCacheKey  = "list:events"
	roomEventsCacheKeyFmt = "%d:events"
)

func roomEventsCacheKey(roomID int64) string {
	return fmt.Sprintf(roomEventsCacheKeyFmt, roomID)
}

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Generation(ctx context.Context, key string) (int64, error)
	Bump(ctx context.Context, key string) (int64, error)
}

// CacheService is a read-through cache for room listings. A nil or disabled service turns every
// call into a miss or no-op.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get reports whether dest was filled from the cache. Backend failures count as misses.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

// Set stores the value. Failures are logged and otherwise ignored.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) {
	if !s.Enabled() {
		return
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, s.defaultTTL)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// RoomKey qualifies base with the current room generation. It must be called before the
// database read whose result will be cached. ok is false when caching is off or the generation
// cannot be read; the caller then bypasses the cache.
func (s *CacheService) RoomKey(ctx context.Context, base string) (string, bool) {
	if !s.Enabled() {
		return "", false
	}
	gen, err := s.repo.Generation(ctx, roomGenerationKey)
	if err != nil {
		s.logger.Warn("cache generation read failed", zap.Error(err))
		return "", false
	}
	return fmt.Sprintf(roomKeyFmt, gen, base), true
}

// InvalidateRooms retires every room listing and schedule by bumping the generation.
func (s *CacheService) InvalidateRooms(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	if _, err := s.repo.Bump(ctx, roomGenerationKey); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("key", roomGenerationKey), zap.Error(err))
	}
}
