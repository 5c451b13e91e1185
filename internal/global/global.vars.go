package global

import (
	"content_studio/config"
	"content_studio/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Accounts         string // Tài khoản, thông tin công ty, tích hợp công cụ thiết kế
	Contents         string // Nội dung được sinh ra cùng lịch sử revision
	ContentAnalytics string // Bản ghi analytics, 1-1 với nội dung
}

// Các biến toàn cục
var Validate *validator.Validate       // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client      // Phiên kết nối tới MongoDB (nil khi STORE_DRIVER=memory)
var ServerConfig *config.Configuration // Cấu hình của server

// MongoDB_ColNames tên các collection
var MongoDB_ColNames = MongoDB_CollectionName{
	Accounts:         "accounts",
	Contents:         "contents",
	ContentAnalytics: "content_analytics",
}

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
