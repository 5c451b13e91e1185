package basesvc

import (
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basemodels "content_studio/internal/api/base/models"
	"content_studio/internal/common"
)

// MemoryCollection lưu document trong bộ nhớ theo ObjectID, dùng cho STORE_DRIVER=memory và test.
// Mỗi lần đọc/ghi đều sao chép qua BSON nên caller không thể sửa dữ liệu đã lưu.
type MemoryCollection[T any] struct {
	mu    sync.RWMutex
	docs  map[primitive.ObjectID]T
	order []primitive.ObjectID
	idOf  func(*T) primitive.ObjectID
}

// NewMemoryCollection tạo collection; idOf trả về con trỏ tới khóa chính của document
func NewMemoryCollection[T any](idOf func(*T) primitive.ObjectID) *MemoryCollection[T] {
	return &MemoryCollection[T]{
		docs: make(map[primitive.ObjectID]T),
		idOf: idOf,
	}
}

// clone sao chép sâu document giống vòng encode/decode của driver
func clone[T any](v T) (T, error) {
	var out T
	raw, err := bson.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("clone document: %w", err)
	}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("clone document: %w", err)
	}
	return out, nil
}

// Insert thêm document; trùng ID trả về ConflictError
func (m *MemoryCollection[T]) Insert(doc T) error {
	cp, err := clone(doc)
	if err != nil {
		return common.NewInternalError(err)
	}
	id := m.idOf(&cp)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[id]; exists {
		return common.NewConflictError("Document đã tồn tại", id.Hex())
	}
	m.docs[id] = cp
	m.order = append(m.order, id)
	return nil
}

// Get lấy bản sao document theo ID
func (m *MemoryCollection[T]) Get(id primitive.ObjectID) (T, error) {
	m.mu.RLock()
	doc, ok := m.docs[id]
	m.mu.RUnlock()
	if !ok {
		var zero T
		return zero, common.ErrNotFound
	}
	return clone(doc)
}

// FindFirst trả về document đầu tiên (theo thứ tự insert) thỏa match
func (m *MemoryCollection[T]) FindFirst(match func(*T) bool) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		doc := m.docs[id]
		if match(&doc) {
			return clone(doc)
		}
	}
	var zero T
	return zero, common.ErrNotFound
}

// Filter trả về bản sao các document thỏa match, theo thứ tự insert
func (m *MemoryCollection[T]) Filter(match func(*T) bool) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []T{}
	for _, id := range m.order {
		doc := m.docs[id]
		if match != nil && !match(&doc) {
			continue
		}
		cp, err := clone(doc)
		if err != nil {
			return nil, common.NewInternalError(err)
		}
		out = append(out, cp)
	}
	return out, nil
}

// Update sửa document tại chỗ dưới khóa ghi; fn trả lỗi thì không ghi gì
func (m *MemoryCollection[T]) Update(id primitive.ObjectID, fn func(*T) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return common.ErrNotFound
	}
	cp, err := clone(doc)
	if err != nil {
		return common.NewInternalError(err)
	}
	if err := fn(&cp); err != nil {
		return err
	}
	m.docs[id] = cp
	return nil
}

// Delete xóa document theo id; không tồn tại thì ErrNotFound
func (m *MemoryCollection[T]) Delete(id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return common.ErrNotFound
	}
	delete(m.docs, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// UpdateWhere áp dụng fn cho mọi document thỏa match, trả về (matched, modified).
// fn trả về false nghĩa là document khớp nhưng không thay đổi.
func (m *MemoryCollection[T]) UpdateWhere(match func(*T) bool, fn func(*T) bool) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched, modified int64
	for _, id := range m.order {
		doc := m.docs[id]
		if !match(&doc) {
			continue
		}
		matched++
		cp, err := clone(doc)
		if err != nil {
			return matched, modified, common.NewInternalError(err)
		}
		if fn(&cp) {
			m.docs[id] = cp
			modified++
		}
	}
	return matched, modified, nil
}

// Paginate lọc, sắp xếp (less) và cắt trang
func (m *MemoryCollection[T]) Paginate(match func(*T) bool, less func(a, b *T) bool, page, limit int64) (*basemodels.PaginateResult[T], error) {
	items, err := m.Filter(match)
	if err != nil {
		return nil, err
	}
	if less != nil {
		sort.SliceStable(items, func(i, j int) bool { return less(&items[i], &items[j]) })
	}
	page, limit = basemodels.NormalizePage(page, limit)
	total := int64(len(items))
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return basemodels.NewPaginateResult(items[start:end], page, limit, total), nil
}
