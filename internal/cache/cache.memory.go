package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache cache trong bộ nhớ với thời gian sống từng key và vòng dọn dẹp định kỳ
type MemoryCache struct {
	items    map[string]memoryItem
	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewMemoryCache tạo cache trong bộ nhớ; cleanup <= 0 thì không chạy vòng dọn dẹp
func NewMemoryCache(cleanup time.Duration) *MemoryCache {
	c := &MemoryCache{
		items:    make(map[string]memoryItem),
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
	if cleanup > 0 {
		go c.cleanupLoop(cleanup)
	}
	return c
}

// Get lấy giá trị từ cache
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || (!item.expiresAt.IsZero() && c.now().After(item.expiresAt)) {
		return nil, ErrMiss
	}
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

// Set lưu giá trị vào cache; ttl <= 0 là không hết hạn
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = item
	c.mu.Unlock()
	return nil
}

// Delete xóa key
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// Close dừng vòng dọn dẹp
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stopChan) })
	return nil
}

// cleanupLoop xóa các key đã hết hạn định kỳ
func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := c.now()
			c.mu.Lock()
			for k, item := range c.items {
				if !item.expiresAt.IsZero() && now.After(item.expiresAt) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		case <-c.stopChan:
			return
		}
	}
}
