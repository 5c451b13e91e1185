// Package cache cung cấp lớp cache key/value có TTL dùng cho dữ liệu lấy từ công cụ thiết kế
// (file, design tokens). Có hai bản: Redis (nhiều instance dùng chung) và bộ nhớ trong process.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrMiss key không có trong cache hoặc đã hết hạn
var ErrMiss = errors.New("cache: miss")

// Cache là interface chung cho các backend cache
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON đọc và giải mã JSON; trả về ErrMiss nếu không có
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, error) {
	var out T
	raw, err := c.Get(ctx, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		// Dữ liệu hỏng coi như miss và xóa luôn
		_ = c.Delete(ctx, key)
		return out, ErrMiss
	}
	return out, nil
}

// SetJSON mã hóa JSON rồi lưu
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, ttl)
}
