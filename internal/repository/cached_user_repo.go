package repository

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fittogether/server/internal/cache"
	"github.com/fittogether/server/internal/domain"
	"github.com/fittogether/server/pkg/log"
)

// CachedUserRepository serves nickname lookups from a read-through cache.
// Users are never mutated after sign-up, so entries only expire by TTL.
// Cached users carry no password hash; credential checks go through
// GetByEmail, which is never cached.
type CachedUserRepository struct {
	UserRepository
	cache cache.UserCache
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedUserRepository wraps repo with cache.
func NewCachedUserRepository(repo UserRepository, c cache.UserCache, ttl time.Duration) *CachedUserRepository {
	return &CachedUserRepository{
		UserRepository: repo,
		cache:          c,
		ttl:            ttl,
	}
}

// GetByNickname checks the cache first and coalesces concurrent misses.
func (r *CachedUserRepository) GetByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	l := log.Ctx(ctx)

	cached, err := r.cache.GetByNickname(ctx, nickname)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l.Warn().Err(err).Str(log.FieldNickname, nickname).Msg("user cache read failed")
	}

	v, err, _ := r.group.Do(nickname, func() (interface{}, error) {
		// The fill is shared with other callers and must outlive this request.
		fillCtx := context.WithoutCancel(ctx)
		user, err := r.UserRepository.GetByNickname(fillCtx, nickname)
		if err != nil {
			return nil, err
		}
		if err := r.cache.Set(fillCtx, user, r.ttl); err != nil {
			l.Warn().Err(err).Str(log.FieldNickname, nickname).Msg("user cache write failed")
		}
		return user, nil
	})
	if err != nil {
		return nil, err
	}

	user := *v.(*domain.User)
	return &user, nil
}
