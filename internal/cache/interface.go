package cache

import (
	"context"
	"errors"
	"time"

	"github.com/fittogether/server/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// UserCache holds public user profiles keyed by nickname.
// Password hashes are never stored.
type UserCache interface {
	GetByNickname(ctx context.Context, nickname string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User, ttl time.Duration) error
	Close() error
}
