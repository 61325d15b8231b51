package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
)

const sessionKeyPrefix = "survey:session:"

func SessionKey(id string) string {
	return sessionKeyPrefix + id
}

// SessionCache keeps recently used session snapshots in front of the
// repository. A failing cache never fails the caller; Get then reports a miss.
type SessionCache struct {
	cache CacheService
	ttl   time.Duration
}

func NewSessionCache(cache CacheService, ttl time.Duration) *SessionCache {
	return &SessionCache{cache: cache, ttl: ttl}
}

func (c *SessionCache) Get(ctx context.Context, id string) (*models.SurveySession, bool) {
	var s models.SurveySession
	if err := c.cache.Get(ctx, SessionKey(id), &s); err != nil {
		return nil, false
	}
	return &s, true
}

func (c *SessionCache) Put(ctx context.Context, s *models.SurveySession) {
	_ = c.cache.Set(ctx, SessionKey(s.ID), s, c.ttl)
}

func (c *SessionCache) Invalidate(ctx context.Context, id string) {
	_ = c.cache.Delete(ctx, SessionKey(id))
}

func (c *SessionCache) Flush(ctx context.Context) error {
	return c.cache.DeletePattern(ctx, sessionKeyPrefix+"*")
}

// MemoryCache is an in-process CacheService for development and tests.
// Values are stored in their JSON form so reads behave like redis.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	e := memoryEntry{data: data}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(e.data, dest)
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryCache) DeletePattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		ok, err := matchPattern(pattern, key)
		if err != nil {
			return err
		}
		if ok {
			delete(m.entries, key)
		}
	}
	return nil
}

var errBadPattern = errors.New("unsupported cache key pattern")

// matchPattern supports the redis glob subset used here: a literal prefix
// optionally followed by a single trailing '*'.
func matchPattern(pattern, key string) (bool, error) {
	n := len(pattern)
	if n == 0 {
		return false, errBadPattern
	}
	if pattern[n-1] != '*' {
		return pattern == key, nil
	}
	prefix := pattern[:n-1]
	for i := 0; i < len(prefix); i++ {
		if prefix[i] == '*' || prefix[i] == '?' || prefix[i] == '[' {
			return false, errBadPattern
		}
	}
	return len(key) >= len(prefix) && key[:len(prefix)] == prefix, nil
}
