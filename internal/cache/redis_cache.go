package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fittogether/server/internal/config"
	"github.com/fittogether/server/internal/domain"
)

const (
	fieldID         = "id"
	fieldNickname   = "nickname"
	fieldEmail      = "email"
	fieldGender     = "gender"
	fieldIsPublic   = "is_public"
	fieldSignUpType = "sign_up_type"
	fieldProviderID = "provider_id"
	fieldCreatedAt  = "created_at"
)

// RedisUserCache stores each user as a Redis hash.
type RedisUserCache struct {
	client *redis.Client
	prefix string
}

func NewRedisUserCache(cfg config.RedisConfig, prefix string) (*RedisUserCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisUserCacheWithClient(client, prefix), nil
}

// NewRedisUserCacheWithClient wraps an existing client.
func NewRedisUserCacheWithClient(client *redis.Client, prefix string) *RedisUserCache {
	return &RedisUserCache{client: client, prefix: prefix}
}

func (c *RedisUserCache) key(nickname string) string {
	return fmt.Sprintf("%s:nickname:%s", c.prefix, nickname)
}

func (c *RedisUserCache) GetByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	fields, err := c.client.HGetAll(ctx, c.key(nickname)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read user hash: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrCacheMiss
	}
	return decodeUser(fields)
}

// Set writes the hash and its TTL in one round trip.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User, ttl time.Duration) error {
	key := c.key(user.Nickname)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, encodeUser(user))
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write user hash: %w", err)
	}
	return nil
}

func (c *RedisUserCache) Close() error {
	return c.client.Close()
}

func encodeUser(u *domain.User) map[string]interface{} {
	return map[string]interface{}{
		fieldID:         u.ID,
		fieldNickname:   u.Nickname,
		fieldEmail:      u.Email,
		fieldGender:     strconv.FormatBool(u.Gender),
		fieldIsPublic:   strconv.FormatBool(u.IsPublic),
		fieldSignUpType: string(u.SignUpType),
		fieldProviderID: u.ProviderID,
		fieldCreatedAt:  u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func decodeUser(fields map[string]string) (*domain.User, error) {
	if fields[fieldID] == "" || fields[fieldNickname] == "" {
		return nil, ErrCacheMiss
	}

	gender, _ := strconv.ParseBool(fields[fieldGender])
	isPublic, _ := strconv.ParseBool(fields[fieldIsPublic])
	createdAt, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("bad created_at in user hash: %w", err)
	}

	return &domain.User{
		ID:         fields[fieldID],
		Nickname:   fields[fieldNickname],
		Email:      fields[fieldEmail],
		Gender:     gender,
		IsPublic:   isPublic,
		SignUpType: domain.SignUpType(fields[fieldSignUpType]),
		ProviderID: fields[fieldProviderID],
		CreatedAt:  createdAt,
	}, nil
}
