package contentsvc

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "content_studio/internal/api/base/models"
	basesvc "content_studio/internal/api/base/service"
	contentmodels "content_studio/internal/api/content/models"
	"content_studio/internal/common"
	"content_studio/internal/global"
	"content_studio/internal/utility"
)

// ListFilter điều kiện lọc danh sách nội dung (luôn giới hạn trong một công ty)
type ListFilter struct {
	CompanyID primitive.ObjectID
	Status    string
	Type      string
	Search    string
	Tag       string
	AuthorID  primitive.ObjectID
}

// BulkChange thay đổi áp dụng cho thao tác hàng loạt.
// Document đã archive được tính là matched nhưng không bị sửa.
type BulkChange struct {
	Status    string
	Archive   bool
	Channels  []contentmodels.Channel
	UpdatedAt int64
}

// ContentStore lưu trữ nội dung
type ContentStore interface {
	Create(ctx context.Context, content *contentmodels.Content) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*contentmodels.Content, error)
	// Replace ghi đè document nếu version đang lưu bằng expectedVersion, ngược lại ErrVersionConflict
	Replace(ctx context.Context, content *contentmodels.Content, expectedVersion int64) error
	List(ctx context.Context, filter ListFilter, page, limit int64) (*basemodels.PaginateResult[contentmodels.Content], error)
	ListCompany(ctx context.Context, companyID primitive.ObjectID, from, to int64) ([]contentmodels.Content, error)
	FindDue(ctx context.Context, now int64) ([]contentmodels.Content, error)
	BulkApply(ctx context.Context, companyID primitive.ObjectID, ids []primitive.ObjectID, change BulkChange) (int64, int64, error)
	UpdateStats(ctx context.Context, id primitive.ObjectID, stats contentmodels.Stats) error
	// Delete chỉ dùng để gỡ nội dung vừa tạo khi bước tạo kèm theo thất bại
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ====================================
// MONGODB
// ====================================

// MongoContentStore ContentStore trên collection contents
type MongoContentStore struct {
	*basesvc.BaseServiceMongoImpl[contentmodels.Content]
}

// NewMongoContentStore lấy collection từ registry
func NewMongoContentStore() (*MongoContentStore, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Contents)
	if !exist {
		return nil, fmt.Errorf("failed to get contents collection: %v", common.ErrNotFound)
	}
	return &MongoContentStore{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[contentmodels.Content](collection),
	}, nil
}

// Create thêm nội dung mới
func (s *MongoContentStore) Create(ctx context.Context, content *contentmodels.Content) error {
	if content.ID.IsZero() {
		content.ID = primitive.NewObjectID()
	}
	created, err := s.InsertOne(ctx, *content)
	if err != nil {
		return err
	}
	*content = created
	return nil
}

// Delete xóa theo ID
func (s *MongoContentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	deleted, err := s.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return common.ErrNotFound
	}
	return nil
}

// FindByID tìm theo ID
func (s *MongoContentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*contentmodels.Content, error) {
	content, err := s.FindOneById(ctx, id)
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// Replace ghi đè có điều kiện version
func (s *MongoContentStore) Replace(ctx context.Context, content *contentmodels.Content, expectedVersion int64) error {
	matched, err := s.ReplaceOne(ctx, bson.M{"_id": content.ID, "version": expectedVersion}, *content)
	if err != nil {
		return err
	}
	if matched > 0 {
		return nil
	}
	exists, err := s.DocumentExists(ctx, bson.M{"_id": content.ID})
	if err != nil {
		return err
	}
	if !exists {
		return common.NewNotFoundError("nội dung", content.ID.Hex())
	}
	return common.ErrVersionConflict
}

func listFilterQuery(f ListFilter) bson.M {
	query := bson.M{"companyId": f.CompanyID}
	if f.Status != "" {
		query["status"] = f.Status
	} else {
		query["isArchived"] = false
	}
	if f.Type != "" {
		query["type"] = f.Type
	}
	if f.Tag != "" {
		query["tags"] = f.Tag
	}
	if !f.AuthorID.IsZero() {
		query["authorId"] = f.AuthorID
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{bson.M{"title": pattern}, bson.M{"body": pattern}}
	}
	return query
}

// List danh sách có phân trang, mới nhất trước
func (s *MongoContentStore) List(ctx context.Context, filter ListFilter, page, limit int64) (*basemodels.PaginateResult[contentmodels.Content], error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.FindWithPagination(ctx, listFilterQuery(filter), page, limit, opts)
}

// ListCompany toàn bộ nội dung của công ty tạo trong [from, to] (0 = không giới hạn)
func (s *MongoContentStore) ListCompany(ctx context.Context, companyID primitive.ObjectID, from, to int64) ([]contentmodels.Content, error) {
	query := bson.M{"companyId": companyID}
	created := bson.M{}
	if from > 0 {
		created["$gte"] = from
	}
	if to > 0 {
		created["$lte"] = to
	}
	if len(created) > 0 {
		query["createdAt"] = created
	}
	opts := options.Find().SetProjection(bson.M{"revisions": 0})
	return s.Find(ctx, query, opts)
}

// FindDue nội dung chưa archive có lịch đăng đã đến hạn
func (s *MongoContentStore) FindDue(ctx context.Context, now int64) ([]contentmodels.Content, error) {
	return s.Find(ctx, bson.M{
		"isArchived":                      false,
		"distribution.schedule.publishAt": bson.M{"$lte": now},
	}, nil)
}

// BulkApply áp dụng thay đổi cho các nội dung của công ty, trả về (matched, modified)
func (s *MongoContentStore) BulkApply(ctx context.Context, companyID primitive.ObjectID, ids []primitive.ObjectID, change BulkChange) (int64, int64, error) {
	scope := bson.M{"_id": bson.M{"$in": ids}, "companyId": companyID}
	matched, err := s.CountDocuments(ctx, scope)
	if err != nil {
		return 0, 0, err
	}

	set := bson.M{"status": change.Status, "updatedAt": change.UpdatedAt}
	if change.Archive {
		set["isArchived"] = true
	}
	if change.Channels != nil {
		set["distribution.channels"] = change.Channels
	}
	update := bson.M{"$set": set}
	if !change.Archive {
		update["$unset"] = bson.M{"distribution.schedule": ""}
	}
	_, modified, err := s.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}, "companyId": companyID, "isArchived": false}, update)
	if err != nil {
		return 0, 0, err
	}
	return matched, modified, nil
}

// UpdateStats ghi số liệu tóm tắt
func (s *MongoContentStore) UpdateStats(ctx context.Context, id primitive.ObjectID, stats contentmodels.Stats) error {
	_, err := s.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"stats": stats}})
	return err
}

// ====================================
// IN-MEMORY
// ====================================

// MemoryContentStore ContentStore trong bộ nhớ
type MemoryContentStore struct {
	docs *basesvc.MemoryCollection[contentmodels.Content]
}

// NewMemoryContentStore tạo store rỗng
func NewMemoryContentStore() *MemoryContentStore {
	return &MemoryContentStore{
		docs: basesvc.NewMemoryCollection(func(c *contentmodels.Content) primitive.ObjectID { return c.ID }),
	}
}

// Create thêm nội dung mới
func (s *MemoryContentStore) Create(_ context.Context, content *contentmodels.Content) error {
	if content.ID.IsZero() {
		content.ID = primitive.NewObjectID()
	}
	return s.docs.Insert(*content)
}

// Delete xóa theo ID
func (s *MemoryContentStore) Delete(_ context.Context, id primitive.ObjectID) error {
	return s.docs.Delete(id)
}

// FindByID tìm theo ID
func (s *MemoryContentStore) FindByID(_ context.Context, id primitive.ObjectID) (*contentmodels.Content, error) {
	content, err := s.docs.Get(id)
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// Replace ghi đè có điều kiện version
func (s *MemoryContentStore) Replace(_ context.Context, content *contentmodels.Content, expectedVersion int64) error {
	err := s.docs.Update(content.ID, func(doc *contentmodels.Content) error {
		if doc.Version != expectedVersion {
			return common.ErrVersionConflict
		}
		*doc = *content
		return nil
	})
	if errors.Is(err, common.ErrNotFound) {
		return common.NewNotFoundError("nội dung", content.ID.Hex())
	}
	return err
}

func matchList(f ListFilter) func(*contentmodels.Content) bool {
	search := strings.ToLower(f.Search)
	return func(c *contentmodels.Content) bool {
		if c.CompanyID != f.CompanyID {
			return false
		}
		if f.Status != "" && c.Status != f.Status {
			return false
		}
		if f.Status == "" && c.IsArchived {
			return false
		}
		if f.Type != "" && c.Type != f.Type {
			return false
		}
		if f.Tag != "" && !utility.Contains(c.Tags, f.Tag) {
			return false
		}
		if !f.AuthorID.IsZero() && c.AuthorID != f.AuthorID {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Title), search) && !strings.Contains(strings.ToLower(c.Body), search) {
			return false
		}
		return true
	}
}

// List danh sách có phân trang, mới nhất trước
func (s *MemoryContentStore) List(_ context.Context, filter ListFilter, page, limit int64) (*basemodels.PaginateResult[contentmodels.Content], error) {
	return s.docs.Paginate(matchList(filter), func(a, b *contentmodels.Content) bool {
		return a.CreatedAt > b.CreatedAt
	}, page, limit)
}

// ListCompany toàn bộ nội dung của công ty tạo trong [from, to]
func (s *MemoryContentStore) ListCompany(_ context.Context, companyID primitive.ObjectID, from, to int64) ([]contentmodels.Content, error) {
	return s.docs.Filter(func(c *contentmodels.Content) bool {
		if c.CompanyID != companyID {
			return false
		}
		if from > 0 && c.CreatedAt < from {
			return false
		}
		return to <= 0 || c.CreatedAt <= to
	})
}

// FindDue nội dung chưa archive có lịch đăng đã đến hạn
func (s *MemoryContentStore) FindDue(_ context.Context, now int64) ([]contentmodels.Content, error) {
	return s.docs.Filter(func(c *contentmodels.Content) bool {
		return !c.IsArchived && c.Distribution.Schedule != nil && c.Distribution.Schedule.PublishAt <= now
	})
}

// BulkApply áp dụng thay đổi cho các nội dung của công ty
func (s *MemoryContentStore) BulkApply(_ context.Context, companyID primitive.ObjectID, ids []primitive.ObjectID, change BulkChange) (int64, int64, error) {
	return s.docs.UpdateWhere(func(c *contentmodels.Content) bool {
		return c.CompanyID == companyID && utility.Contains(ids, c.ID)
	}, func(c *contentmodels.Content) bool {
		if c.IsArchived {
			return false
		}
		c.Status = change.Status
		c.UpdatedAt = change.UpdatedAt
		if change.Archive {
			c.IsArchived = true
		} else {
			c.Distribution.Schedule = nil
		}
		if change.Channels != nil {
			c.Distribution.Channels = append([]contentmodels.Channel(nil), change.Channels...)
		}
		return true
	})
}

// UpdateStats ghi số liệu tóm tắt
func (s *MemoryContentStore) UpdateStats(_ context.Context, id primitive.ObjectID, stats contentmodels.Stats) error {
	return s.docs.Update(id, func(c *contentmodels.Content) error {
		c.Stats = stats
		return nil
	})
}
