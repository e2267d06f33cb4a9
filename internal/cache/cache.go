package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/fisa/matjip-backend/config"
	"github.com/fisa/matjip-backend/pkg/logger"
	"github.com/fisa/matjip-backend/pkg/redis"
)

// Cache 읽기 전용 조회 결과 캐시
// 쓰기 후에는 관련 prefix를 Invalidate 해야 함
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	Invalidate(ctx context.Context, prefixes ...string)
}

// New 설정에 따라 redis / 메모리 / noop 캐시 선택
func New(cfg config.CacheConfig) Cache {
	if !cfg.Enabled || cfg.TTL <= 0 {
		return Noop{}
	}
	if redis.Enabled() {
		return &redisCache{prefix: cfg.Prefix, ttl: cfg.TTL}
	}
	return NewMemory(cfg.Prefix, cfg.TTL)
}

// Noop 캐시 비활성화
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) bool { return false }
func (Noop) Set(context.Context, string, interface{}) {}
func (Noop) Invalidate(context.Context, ...string) {}

type redisCache struct {
	prefix string
	ttl    time.Duration
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	ok, err := redis.GetJSON(ctx, c.prefix+key, dest)
	if err != nil {
		logger.Warn("Cache get failed", logger.Fields{"key": key, "error": err.Error()})
		return false
	}
	return ok
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}) {
	if err := redis.SetJSON(ctx, c.prefix+key, value, c.ttl); err != nil {
		logger.Warn("Cache set failed", logger.Fields{"key": key, "error": err.Error()})
	}
}

func (c *redisCache) Invalidate(ctx context.Context, prefixes ...string) {
	for _, p := range prefixes {
		if err := redis.DeleteByPrefix(ctx, c.prefix+p); err != nil {
			logger.Warn("Cache invalidate failed", logger.Fields{"prefix": p, "error": err.Error()})
		}
	}
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// Memory 단일 프로세스용 TTL 캐시 (JSON 직렬화로 복사본을 보관)
type Memory struct {
	mu      sync.Mutex
	prefix  string
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory(prefix string, ttl time.Duration) *Memory {
	return &Memory{
		prefix:  prefix,
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string, dest interface{}) bool {
	m.mu.Lock()
	entry, ok := m.entries[m.prefix+key]
	if ok && !m.now().Before(entry.expiresAt) {
		delete(m.entries, m.prefix+key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	return json.Unmarshal(entry.raw, dest) == nil
}

func (m *Memory) Set(_ context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Cache set failed", logger.Fields{"key": key, "error": err.Error()})
		return
	}
	m.mu.Lock()
	m.entries[m.prefix+key] = memoryEntry{raw: raw, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
}

func (m *Memory) Invalidate(_ context.Context, prefixes ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		for _, p := range prefixes {
			if strings.HasPrefix(key, m.prefix+p) {
				delete(m.entries, key)
				break
			}
		}
	}
}
