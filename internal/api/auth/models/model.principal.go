package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal người gọi đã xác thực, được truyền tường minh xuống service
type Principal struct {
	AccountID primitive.ObjectID `json:"accountId"`
	CompanyID primitive.ObjectID `json:"companyId"`
	Role      string             `json:"role"`
	Email     string             `json:"email"`
}

// PrincipalOf dựng Principal từ tài khoản
func PrincipalOf(a *Account) Principal {
	return Principal{AccountID: a.ID, CompanyID: a.CompanyID, Role: a.Role, Email: a.Email}
}

// IsAdmin có vai trò admin
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanManage admin hoặc editor: được sửa nội dung của người khác trong cùng công ty
func (p Principal) CanManage() bool {
	return p.Role == RoleAdmin || p.Role == RoleEditor
}

// SameCompany cùng công ty với companyID
func (p Principal) SameCompany(companyID primitive.ObjectID) bool {
	return !p.CompanyID.IsZero() && p.CompanyID == companyID
}
