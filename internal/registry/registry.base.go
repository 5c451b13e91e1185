// Package registry cung cấp registry generic, thread-safe, dùng để giữ các handle
// được tạo một lần lúc khởi động (collections MongoDB, ...).
package registry

import (
	"fmt"
	"sort"
	"sync"

	"content_studio/internal/common"
)

// Registry là một thread-safe generic registry.
//
// Example:
//
//	colls := NewRegistry[*mongo.Collection]()
//	colls.Register("contents", db.Collection("contents"))
//	if c, ok := colls.Get("contents"); ok { ... }
type Registry[T any] struct {
	items map[string]T // Map lưu trữ các items theo key
	mu    sync.RWMutex // Mutex để đảm bảo thread-safety
}

// NewRegistry tạo và trả về một registry mới.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		items: make(map[string]T),
	}
}

// Register đăng ký một item mới vào registry, ghi đè nếu đã tồn tại.
// isNew = false khi ghi đè item cũ.
func (r *Registry[T]) Register(name string, item T) (isNew bool, err error) {
	if name == "" {
		return false, fmt.Errorf("registry: %w", common.NewValidationError("name cannot be empty", nil))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.items[name]
	r.items[name] = item
	return !exists, nil
}

// Get lấy item theo tên.
func (r *Registry[T]) Get(name string) (item T, exists bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, exists = r.items[name]
	return item, exists
}

// MustGet dùng trong giai đoạn khởi động, panic nếu chưa đăng ký
func (r *Registry[T]) MustGet(name string) T {
	item, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("registry: %q is not registered", name))
	}
	return item
}

// GetOrCreate lấy item theo tên, nếu không tồn tại sẽ tạo mới thông qua creator.
// Creator được gọi khi đang giữ lock nên không được gọi ngược vào registry.
func (r *Registry[T]) GetOrCreate(name string, creator func() (T, error)) (item T, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[name]; ok {
		return existing, nil
	}
	item, err = creator()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("registry: create %q: %w", name, err)
	}
	r.items[name] = item
	return item, nil
}

// Keys trả về danh sách tên đã đăng ký (đã sắp xếp)
func (r *Registry[T]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.items))
	for k := range r.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ClearAll xóa toàn bộ item, gọi cleanup cho từng item (nếu có).
// Lỗi cleanup đầu tiên được trả về nhưng các item còn lại vẫn được xóa.
func (r *Registry[T]) ClearAll(cleanup func(T) error) (count int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, item := range r.items {
		if cleanup != nil {
			if cerr := cleanup(item); cerr != nil && err == nil {
				err = fmt.Errorf("registry: cleanup %q: %w", name, cerr)
			}
		}
		delete(r.items, name)
		count++
	}
	return count, err
}
