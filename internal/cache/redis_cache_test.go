package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fittogether/server/internal/domain"
)

func TestEncodeDecodeUser(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	u := &domain.User{
		ID:           "u-1",
		Nickname:     "alice",
		Email:        "alice@x.com",
		PasswordHash: "secret-hash",
		Gender:       true,
		SignUpType:   domain.SignUpTypeEmail,
		CreatedAt:    created,
	}

	encoded := encodeUser(u)
	assert.NotContains(t, encoded, "password_hash")

	fields := make(map[string]string, len(encoded))
	for k, v := range encoded {
		fields[k] = v.(string)
	}

	got, err := decodeUser(fields)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, "alice", got.Nickname)
	assert.True(t, got.Gender)
	assert.False(t, got.IsPublic)
	assert.Empty(t, got.PasswordHash)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestDecodeUserPartialHash(t *testing.T) {
	_, err := decodeUser(map[string]string{fieldNickname: "alice"})
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisUserCacheUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	c := NewRedisUserCacheWithClient(client, "user")
	defer c.Close()

	assert.Equal(t, "user:nickname:alice", c.key("alice"))

	_, err := c.GetByNickname(context.Background(), "alice")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
