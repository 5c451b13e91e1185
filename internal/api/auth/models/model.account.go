// Package models - model tài khoản (Account) thuộc domain auth.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vai trò trong công ty
const (
	RoleUser   = "user"
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// Preferences giọng văn / ngôn ngữ mặc định khi sinh nội dung
type Preferences struct {
	Tone     string `json:"tone" bson:"tone"`
	Language string `json:"language" bson:"language"`
}

// Notifications các cờ nhận thông báo
type Notifications struct {
	Email    bool `json:"email" bson:"email"`
	Weekly   bool `json:"weekly" bson:"weekly"`
	Mentions bool `json:"mentions" bson:"mentions"`
}

// DesignIntegration thông tin kết nối công cụ thiết kế.
// Token không bao giờ được serialize ra JSON.
type DesignIntegration struct {
	AccessToken  string `json:"-" bson:"accessToken"`
	RefreshToken string `json:"-" bson:"refreshToken,omitempty"`
	ExpiresAt    int64  `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
	LastSyncAt   int64  `json:"lastSyncAt,omitempty" bson:"lastSyncAt,omitempty"`
	ConnectedAt  int64  `json:"connectedAt" bson:"connectedAt"`
}

// Account tài khoản người dùng. CompanyID trỏ về tài khoản chủ công ty (chủ công ty: CompanyID = ID).
// Collection: accounts
type Account struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email" index:"unique"`
	PasswordHash string             `json:"-" bson:"passwordHash"`
	Name         string             `json:"name" bson:"name"`
	Role         string             `json:"role" bson:"role" index:"compound:company_role"`
	CompanyID    primitive.ObjectID `json:"companyId" bson:"companyId" index:"compound:company_role"`
	CompanyName  string             `json:"companyName,omitempty" bson:"companyName,omitempty"`
	Position     string             `json:"position,omitempty" bson:"position,omitempty"`

	Preferences   Preferences        `json:"preferences" bson:"preferences"`
	Notifications Notifications      `json:"notifications" bson:"notifications"`
	Integration   *DesignIntegration `json:"integration,omitempty" bson:"integration,omitempty"`

	// API key chỉ lưu giá trị băm; prefix giúp người dùng nhận ra key nào đang dùng
	APIKeyHash   string `json:"-" bson:"apiKeyHash,omitempty" index:"unique,sparse"`
	APIKeyPrefix string `json:"apiKeyPrefix,omitempty" bson:"apiKeyPrefix,omitempty"`

	ResetTokenHash string `json:"-" bson:"resetTokenHash,omitempty" index:"single:1"`
	ResetExpiresAt int64  `json:"-" bson:"resetExpiresAt,omitempty"`

	IsActive    bool  `json:"isActive" bson:"isActive"`
	LastLoginAt int64 `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`
	CreatedAt   int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt   int64 `json:"updatedAt" bson:"updatedAt"`
}

// HasIntegration tài khoản đã kết nối công cụ thiết kế
func (a *Account) HasIntegration() bool {
	return a.Integration != nil && a.Integration.AccessToken != ""
}
