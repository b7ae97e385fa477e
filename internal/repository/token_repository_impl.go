package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	domainRepo "go-clinic-management/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

type redisTokenRepository struct {
	client *redis.Client
}

func NewRedisTokenRepository(client *redis.Client) domainRepo.TokenRepository {
	return &redisTokenRepository{client: client}
}

func tokenKey(tokenType, userID, tokenID string) string {
	return fmt.Sprintf("%s_token:%s:%s", tokenType, userID, tokenID)
}

func (r *redisTokenRepository) Store(ctx context.Context, tokenType, userID, tokenID string, ttl time.Duration) error {
	return r.client.Set(ctx, tokenKey(tokenType, userID, tokenID), "valid", ttl).Err()
}

func (r *redisTokenRepository) Exists(ctx context.Context, tokenType, userID, tokenID string) (bool, error) {
	exists, err := r.client.Exists(ctx, tokenKey(tokenType, userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (r *redisTokenRepository) Delete(ctx context.Context, tokenType, userID, tokenID string) error {
	return r.client.Del(ctx, tokenKey(tokenType, userID, tokenID)).Err()
}

// DeleteAll revokes every access and refresh token of a user
func (r *redisTokenRepository) DeleteAll(ctx context.Context, userID string) error {
	for _, pattern := range []string{
		tokenKey("access", userID, "*"),
		tokenKey("refresh", userID, "*"),
	} {
		keys, err := r.client.Keys(ctx, pattern).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
	}
	return nil
}

type memoryTokenRepository struct {
	mu     sync.Mutex
	now    func() time.Time
	tokens map[string]time.Time
}

func NewMemoryTokenRepository() domainRepo.TokenRepository {
	return &memoryTokenRepository{
		now:    time.Now,
		tokens: make(map[string]time.Time),
	}
}

func (r *memoryTokenRepository) Store(ctx context.Context, tokenType, userID, tokenID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[tokenKey(tokenType, userID, tokenID)] = r.now().Add(ttl)
	return nil
}

func (r *memoryTokenRepository) Exists(ctx context.Context, tokenType, userID, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := tokenKey(tokenType, userID, tokenID)
	expiresAt, ok := r.tokens[key]
	if !ok {
		return false, nil
	}
	if !r.now().Before(expiresAt) {
		delete(r.tokens, key)
		return false, nil
	}
	return true, nil
}

func (r *memoryTokenRepository) Delete(ctx context.Context, tokenType, userID, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, tokenKey(tokenType, userID, tokenID))
	return nil
}

func (r *memoryTokenRepository) DeleteAll(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.tokens {
		if strings.Contains(key, "_token:"+userID+":") {
			delete(r.tokens, key)
		}
	}
	return nil
}
