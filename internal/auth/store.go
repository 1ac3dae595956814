package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const redisCacheTTL = 5 * time.Minute
const redisKeyPrefix = "docuchat:token:"

// TokenStore looks up access token metadata by hash.
type TokenStore interface {
	Lookup(ctx context.Context, tokenHash string) (*TokenMetadata, error)
}

// CachedTokenStore implements TokenStore with PostgreSQL + Redis cache.
type CachedTokenStore struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewCachedTokenStore(db *pgxpool.Pool, rdb *redis.Client) *CachedTokenStore {
	return &CachedTokenStore{db: db, redis: rdb}
}

func (s *CachedTokenStore) Lookup(ctx context.Context, tokenHash string) (*TokenMetadata, error) {
	// Check Redis cache first
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, redisKeyPrefix+tokenHash).Bytes()
		if err == nil {
			var meta TokenMetadata
			if err := json.Unmarshal(cached, &meta); err == nil {
				return &meta, nil
			}
		}
	}

	meta, err := s.lookupDB(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, nil
	}

	// Cache in Redis
	if s.redis != nil {
		data, err := json.Marshal(meta)
		if err == nil {
			s.redis.Set(ctx, redisKeyPrefix+tokenHash, data, redisCacheTTL)
		}
	}

	return meta, nil
}

func (s *CachedTokenStore) lookupDB(ctx context.Context, tokenHash string) (*TokenMetadata, error) {
	var meta TokenMetadata

	err := s.db.QueryRow(ctx, `
		SELECT t.id, t.user_id, u.email, t.name, t.rpm_limit, t.expires_at
		FROM access_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token_hash = $1
		  AND t.status = 'active'
		  AND t.expires_at > NOW()
	`, tokenHash).Scan(
		&meta.ID,
		&meta.UserID,
		&meta.Email,
		&meta.Name,
		&meta.RPMLimit,
		&meta.ExpiresAt,
	)
	if err != nil {
		if err.Error() == "no rows in result set" {
			return nil, nil
		}
		return nil, fmt.Errorf("query access_tokens: %w", err)
	}

	// Update last_used_at asynchronously (fire-and-forget)
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.db.Exec(bgCtx, `UPDATE access_tokens SET last_used_at = NOW() WHERE id = $1`, meta.ID)
	}()

	return &meta, nil
}
