package data

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshTokenStore 管理刷新令牌的 JTI
// 每个用户同一时间只有一个有效的刷新令牌：签发即覆盖，
// 修改密码时整体作废
type RefreshTokenStore struct {
	rdb *redis.Client
}

func NewRefreshTokenStore(rdb *redis.Client) *RefreshTokenStore {
	return &RefreshTokenStore{rdb: rdb}
}

func refreshKey(userID uint) string {
	return fmt.Sprintf("refresh_jti:%d", userID)
}

func (s *RefreshTokenStore) Set(ctx context.Context, userID uint, jti string, ttl time.Duration) error {
	return s.rdb.Set(ctx, refreshKey(userID), jti, ttl).Err()
}

// Get 返回用户当前有效的 JTI，不存在时返回空串
func (s *RefreshTokenStore) Get(ctx context.Context, userID uint) (string, error) {
	val, err := s.rdb.Get(ctx, refreshKey(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RefreshTokenStore) Delete(ctx context.Context, userID uint) error {
	return s.rdb.Del(ctx, refreshKey(userID)).Err()
}
