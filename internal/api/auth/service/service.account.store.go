package authsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	authmodels "content_studio/internal/api/auth/models"
	basesvc "content_studio/internal/api/base/service"
	"content_studio/internal/common"
	"content_studio/internal/global"
)

// AccountStore lưu trữ tài khoản. Ghi theo kiểu nạp toàn bộ document, sửa, ghi đè.
type AccountStore interface {
	Create(ctx context.Context, account *authmodels.Account) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*authmodels.Account, error)
	FindByEmail(ctx context.Context, email string) (*authmodels.Account, error)
	FindByAPIKeyHash(ctx context.Context, hash string) (*authmodels.Account, error)
	FindByResetTokenHash(ctx context.Context, hash string) (*authmodels.Account, error)
	Save(ctx context.Context, account *authmodels.Account) error
	ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]authmodels.Account, error)
}

// ====================================
// MONGODB
// ====================================

// MongoAccountStore AccountStore trên collection accounts
type MongoAccountStore struct {
	*basesvc.BaseServiceMongoImpl[authmodels.Account]
}

// NewMongoAccountStore lấy collection từ registry
func NewMongoAccountStore() (*MongoAccountStore, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Accounts)
	if !exist {
		return nil, fmt.Errorf("failed to get accounts collection: %v", common.ErrNotFound)
	}
	return &MongoAccountStore{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[authmodels.Account](collection),
	}, nil
}

// Create thêm tài khoản; email trùng trả về ConflictError
func (s *MongoAccountStore) Create(ctx context.Context, account *authmodels.Account) error {
	if account.ID.IsZero() {
		account.ID = primitive.NewObjectID()
	}
	created, err := s.InsertOne(ctx, *account)
	if err != nil {
		return err
	}
	*account = created
	return nil
}

func (s *MongoAccountStore) findOne(ctx context.Context, filter bson.M) (*authmodels.Account, error) {
	account, err := s.FindOne(ctx, filter, nil)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByID tìm theo ID
func (s *MongoAccountStore) FindByID(ctx context.Context, id primitive.ObjectID) (*authmodels.Account, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail tìm theo email (đã chuẩn hóa)
func (s *MongoAccountStore) FindByEmail(ctx context.Context, email string) (*authmodels.Account, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// FindByAPIKeyHash tìm theo giá trị băm của API key
func (s *MongoAccountStore) FindByAPIKeyHash(ctx context.Context, hash string) (*authmodels.Account, error) {
	return s.findOne(ctx, bson.M{"apiKeyHash": hash})
}

// FindByResetTokenHash tìm theo giá trị băm của token đặt lại mật khẩu
func (s *MongoAccountStore) FindByResetTokenHash(ctx context.Context, hash string) (*authmodels.Account, error) {
	return s.findOne(ctx, bson.M{"resetTokenHash": hash})
}

// Save ghi đè toàn bộ document
func (s *MongoAccountStore) Save(ctx context.Context, account *authmodels.Account) error {
	matched, err := s.ReplaceOne(ctx, bson.M{"_id": account.ID}, *account)
	if err != nil {
		return err
	}
	if matched == 0 {
		return common.NewNotFoundError("tài khoản", account.ID.Hex())
	}
	return nil
}

// ListByCompany danh sách thành viên của công ty, cũ nhất trước
func (s *MongoAccountStore) ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]authmodels.Account, error) {
	return s.Find(ctx, bson.M{"companyId": companyID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

// ====================================
// IN-MEMORY
// ====================================

// MemoryAccountStore AccountStore trong bộ nhớ, kiểm tra unique email / API key như index của MongoDB
type MemoryAccountStore struct {
	docs *basesvc.MemoryCollection[authmodels.Account]
}

// NewMemoryAccountStore tạo store rỗng
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		docs: basesvc.NewMemoryCollection(func(a *authmodels.Account) primitive.ObjectID { return a.ID }),
	}
}

func (s *MemoryAccountStore) checkUnique(account *authmodels.Account) error {
	_, err := s.docs.FindFirst(func(a *authmodels.Account) bool {
		if a.ID == account.ID {
			return false
		}
		return a.Email == account.Email || (account.APIKeyHash != "" && a.APIKeyHash == account.APIKeyHash)
	})
	if err == nil {
		return common.ErrMongoDuplicate
	}
	return nil
}

// Create thêm tài khoản
func (s *MemoryAccountStore) Create(_ context.Context, account *authmodels.Account) error {
	if account.ID.IsZero() {
		account.ID = primitive.NewObjectID()
	}
	if err := s.checkUnique(account); err != nil {
		return err
	}
	return s.docs.Insert(*account)
}

func (s *MemoryAccountStore) first(match func(*authmodels.Account) bool) (*authmodels.Account, error) {
	account, err := s.docs.FindFirst(match)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByID tìm theo ID
func (s *MemoryAccountStore) FindByID(_ context.Context, id primitive.ObjectID) (*authmodels.Account, error) {
	account, err := s.docs.Get(id)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByEmail tìm theo email
func (s *MemoryAccountStore) FindByEmail(_ context.Context, email string) (*authmodels.Account, error) {
	return s.first(func(a *authmodels.Account) bool { return a.Email == email })
}

// FindByAPIKeyHash tìm theo API key đã băm
func (s *MemoryAccountStore) FindByAPIKeyHash(_ context.Context, hash string) (*authmodels.Account, error) {
	if hash == "" {
		return nil, common.ErrNotFound
	}
	return s.first(func(a *authmodels.Account) bool { return a.APIKeyHash == hash })
}

// FindByResetTokenHash tìm theo reset token đã băm
func (s *MemoryAccountStore) FindByResetTokenHash(_ context.Context, hash string) (*authmodels.Account, error) {
	if hash == "" {
		return nil, common.ErrNotFound
	}
	return s.first(func(a *authmodels.Account) bool { return a.ResetTokenHash == hash })
}

// Save ghi đè toàn bộ document
func (s *MemoryAccountStore) Save(_ context.Context, account *authmodels.Account) error {
	if err := s.checkUnique(account); err != nil {
		return err
	}
	err := s.docs.Update(account.ID, func(doc *authmodels.Account) error {
		*doc = *account
		return nil
	})
	if err != nil && common.IsKind(err, common.KindNotFound) {
		return common.NewNotFoundError("tài khoản", account.ID.Hex())
	}
	return err
}

// ListByCompany danh sách thành viên của công ty
func (s *MemoryAccountStore) ListByCompany(_ context.Context, companyID primitive.ObjectID) ([]authmodels.Account, error) {
	return s.docs.Filter(func(a *authmodels.Account) bool { return a.CompanyID == companyID })
}
