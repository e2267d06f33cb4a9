package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fisa/matjip-backend/pkg/redis"
)

// TokenBlacklist 로그아웃된 세션 토큰(jti) 목록
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NewTokenBlacklist redis 연결이 있으면 redis, 없으면 프로세스 메모리
func NewTokenBlacklist() TokenBlacklist {
	if redis.Enabled() {
		return redisBlacklist{}
	}
	return NewMemoryBlacklist()
}

type redisBlacklist struct{}

func (redisBlacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return redis.BlacklistToken(ctx, tokenID, ttl)
}

func (redisBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return redis.IsTokenBlacklisted(ctx, tokenID)
}

type MemoryBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{revoked: make(map[string]time.Time), now: time.Now}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	// 만료된 항목 정리
	for id, until := range b.revoked {
		if !now.Before(until) {
			delete(b.revoked, id)
		}
	}
	if ttl > 0 {
		b.revoked[tokenID] = now.Add(ttl)
	}
	return nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	until, ok := b.revoked[tokenID]
	return ok && b.now().Before(until), nil
}
