package repository

import (
	"context"
	"time"
)

// TokenRepository tracks issued session tokens so they can be revoked before expiry.
// tokenType is "access" or "refresh".
type TokenRepository interface {
	Store(ctx context.Context, tokenType, userID, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, tokenType, userID, tokenID string) (bool, error)
	Delete(ctx context.Context, tokenType, userID, tokenID string) error
	DeleteAll(ctx context.Context, userID string) error
}
